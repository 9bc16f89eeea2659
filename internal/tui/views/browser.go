package views

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/browser"

	"github.com/moritamori/machimap/internal/dataset"
	"github.com/moritamori/machimap/internal/engine/filter"
	"github.com/moritamori/machimap/internal/engine/source"
	"github.com/moritamori/machimap/internal/model"
	"github.com/moritamori/machimap/internal/tui/components"
	"github.com/moritamori/machimap/internal/tui/styles"
)

// noTitle is rendered when a record's title is empty.
const noTitle = "(No Title)"

type phase int

const (
	phaseUnselected phase = iota
	phaseLoading
	phaseReady
	phaseError
)

type focusArea int

const (
	focusTable focusArea = iota
	focusControls
	focusMap
)

// control is one focusable filter control derived from a declaration.
type control struct {
	decl  filter.Decl
	input int // index into inputs for text-backed kinds, -1 otherwise
}

// datasetLoadedMsg carries one settled load. Seq identifies the activation
// that issued it; stale responses are discarded, never applied.
type datasetLoadedMsg struct {
	seq     int
	records []model.Record
	stamp   string
	err     error
}

// BrowserModel owns the active config's whole browsing state: full and
// filtered record sets, filter controls, the table, and the shared map panel.
type BrowserModel struct {
	cfg     dataset.Config
	phase   phase
	loadSeq int

	fetcher *source.Fetcher
	logger  *log.Logger

	full    []model.Record
	results []model.Record
	stamp   string
	loadErr error

	st         filter.State
	controls   []control
	inputs     []textinput.Model
	selectIdx  map[string]int // select decl ID -> option index, -1 = any
	selectOpts map[string][]string
	tagOpts    []string
	tagCursor  int

	focus     focusArea
	ctrlFocus int

	tbl        table.Model
	mapPanel   components.MapPanel
	mapReady   bool
	pendSync   bool
	showDetail bool
	spin       spinner.Model

	width, height int
	exportMsg     string
}

func NewBrowserModel(logger *log.Logger) BrowserModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	return BrowserModel{
		phase:    phaseUnselected,
		fetcher:  source.NewFetcher(),
		logger:   logger,
		st:       filter.NewState(),
		mapPanel: components.NewMapPanel(0, 0),
		spin:     sp,
	}
}

// Switch activates a config: all filter state, record sets, markers and any
// open popup are discarded before the load starts. A load still in flight
// for a previous activation is superseded by bumping the sequence number.
func (m *BrowserModel) Switch(cfg dataset.Config) tea.Cmd {
	m.cfg = cfg
	m.phase = phaseLoading
	m.loadSeq++
	m.loadErr = nil
	m.exportMsg = ""

	m.full = nil
	m.results = nil
	m.stamp = source.StampUnknown
	m.st = filter.NewState()
	m.controls = nil
	m.inputs = nil
	m.selectIdx = map[string]int{}
	m.selectOpts = map[string][]string{}
	m.tagOpts = nil
	m.tagCursor = 0
	m.focus = focusTable
	m.ctrlFocus = 0
	m.showDetail = false

	// The shared map panel survives the switch but is recentered to the
	// new config's defaults even if nothing ends up plotted.
	m.mapPanel.SetDefaults(cfg.Center, cfg.Zoom)
	m.mapPanel.SyncMarkers(nil)

	m.buildControls()
	m.buildTable()

	seq := m.loadSeq
	fetcher := m.fetcher
	logger := m.logger
	return tea.Batch(m.spin.Tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		data, err := fetcher.Fetch(ctx, cfg.Source)
		if err != nil {
			return datasetLoadedMsg{seq: seq, err: err}
		}
		records := cfg.Normalize(data)

		stamp, serr := source.FetchStamp(ctx, fetcher, cfg.Stamp)
		if serr != nil {
			logger.Printf("stamp %s: %v", cfg.Stamp, serr)
		}
		return datasetLoadedMsg{seq: seq, records: records, stamp: stamp}
	})
}

func (m BrowserModel) Init() tea.Cmd {
	return m.spin.Tick
}

func (m BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.mapReady = true
		m.updateLayout()
		if m.pendSync {
			m.pendSync = false
			m.resyncMarkers()
		}
		return m, nil

	case datasetLoadedMsg:
		if msg.seq != m.loadSeq {
			m.logger.Printf("discarding stale load (seq %d, current %d)", msg.seq, m.loadSeq)
			return m, nil
		}
		if msg.err != nil {
			m.phase = phaseError
			m.loadErr = msg.err
			m.full = nil
			m.results = nil
			m.buildTable()
			m.mapPanel.SyncMarkers(nil)
			return m, nil
		}
		m.phase = phaseReady
		m.full = msg.records
		m.stamp = msg.stamp
		m.populateOptions()
		m.apply()
		return m, nil

	case spinner.TickMsg:
		if m.phase != phaseLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m BrowserModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return m, tea.Quit
	}

	// Config hotkeys work from any focus; typing in a text control wins.
	if !m.typing() && len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		configs := dataset.All()
		if i := int(key[0] - '1'); i < len(configs) {
			cmd := m.Switch(configs[i])
			return m, cmd
		}
	}

	switch m.focus {
	case focusTable:
		switch key {
		case "esc":
			return m, func() tea.Msg { return NavigateToHome{} }
		case "q":
			return m, tea.Quit
		case "/", "f", "tab":
			m.focus = focusControls
			m.ctrlFocus = 0
			m.focusControl()
			return m, textinput.Blink
		case "m":
			m.focus = focusMap
			return m, nil
		case "enter":
			m.showDetail = !m.showDetail
			return m, nil
		case "e":
			m.exportCSV()
			return m, nil
		case "o":
			m.openSelected()
			return m, nil
		}
		var cmd tea.Cmd
		m.tbl, cmd = m.tbl.Update(msg)
		return m, cmd

	case focusControls:
		return m.handleControlKey(key, msg)

	case focusMap:
		switch key {
		case "esc", "tab":
			m.focus = focusTable
			return m, nil
		case "n", "right":
			m.mapPanel.SelectNext()
		case "p", "left":
			m.mapPanel.SelectPrev()
		case "enter", " ":
			m.mapPanel.TogglePopup()
		case "+", "=":
			m.mapPanel.ZoomIn()
		case "-":
			m.mapPanel.ZoomOut()
		case "up", "k":
			m.mapPanel.Pan(1, 0)
		case "down", "j":
			m.mapPanel.Pan(-1, 0)
		case "h":
			m.mapPanel.Pan(0, -1)
		case "l":
			m.mapPanel.Pan(0, 1)
		}
		return m, nil
	}

	return m, nil
}

func (m BrowserModel) handleControlKey(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if len(m.controls) == 0 {
		m.focus = focusTable
		return m, nil
	}
	c := m.controls[m.ctrlFocus]

	switch key {
	case "esc":
		m.blurControls()
		m.focus = focusTable
		return m, nil
	case "tab", "down":
		m.ctrlFocus++
		if m.ctrlFocus >= len(m.controls) {
			m.blurControls()
			m.focus = focusTable
			return m, nil
		}
		m.focusControl()
		return m, textinput.Blink
	case "shift+tab", "up":
		if m.ctrlFocus == 0 {
			m.blurControls()
			m.focus = focusTable
			return m, nil
		}
		m.ctrlFocus--
		m.focusControl()
		return m, textinput.Blink
	case "enter":
		m.blurControls()
		m.focus = focusTable
		return m, nil
	}

	switch c.decl.Kind {
	case filter.Select:
		opts := m.selectOpts[c.decl.ID]
		switch key {
		case "left":
			if m.selectIdx[c.decl.ID] > -1 {
				m.selectIdx[c.decl.ID]--
				m.apply()
			}
		case "right":
			if m.selectIdx[c.decl.ID] < len(opts)-1 {
				m.selectIdx[c.decl.ID]++
				m.apply()
			}
		}
		return m, nil

	case filter.Tags:
		switch key {
		case "left":
			if m.tagCursor > 0 {
				m.tagCursor--
			}
		case "right":
			if m.tagCursor < len(m.tagOpts)-1 {
				m.tagCursor++
			}
		case " ":
			if m.tagCursor < len(m.tagOpts) {
				m.st.ToggleTag(c.decl.ID, m.tagOpts[m.tagCursor])
				m.apply()
			}
		}
		return m, nil
	}

	// Text-backed controls (search, thresholds).
	var cmd tea.Cmd
	m.inputs[c.input], cmd = m.inputs[c.input].Update(msg)
	m.apply()
	return m, cmd
}

// typing reports whether a focused text control is consuming keystrokes.
func (m BrowserModel) typing() bool {
	if m.focus != focusControls || m.ctrlFocus >= len(m.controls) {
		return false
	}
	return m.controls[m.ctrlFocus].input >= 0
}

func (m *BrowserModel) buildControls() {
	for _, d := range m.cfg.Filters {
		c := control{decl: d, input: -1}
		switch d.Kind {
		case filter.Search:
			ti := textinput.New()
			ti.Placeholder = "keyword..."
			ti.CharLimit = 50
			ti.Width = 24
			c.input = len(m.inputs)
			m.inputs = append(m.inputs, ti)
		case filter.MinThreshold, filter.MaxThreshold:
			ti := textinput.New()
			ti.Placeholder = "number"
			ti.CharLimit = 10
			ti.Width = 8
			c.input = len(m.inputs)
			m.inputs = append(m.inputs, ti)
		case filter.Select:
			m.selectIdx[d.ID] = -1
		}
		m.controls = append(m.controls, c)
	}
}

func (m *BrowserModel) focusControl() {
	m.blurControls()
	c := m.controls[m.ctrlFocus]
	if c.input >= 0 {
		m.inputs[c.input].Focus()
	}
}

func (m *BrowserModel) blurControls() {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

// populateOptions derives select options and the tag palette from the new
// full set.
func (m *BrowserModel) populateOptions() {
	for _, c := range m.controls {
		if c.decl.Kind == filter.Select {
			m.selectOpts[c.decl.ID] = filter.Options(m.full, c.decl)
			m.selectIdx[c.decl.ID] = -1
		}
	}
	m.tagOpts = filter.TagOptions(m.full)
	m.tagCursor = 0
}

// apply re-reads every control into the filter state, evaluates, and
// re-renders both views from the identical result set.
func (m *BrowserModel) apply() {
	for _, c := range m.controls {
		switch c.decl.Kind {
		case filter.Select:
			idx := m.selectIdx[c.decl.ID]
			opts := m.selectOpts[c.decl.ID]
			if idx >= 0 && idx < len(opts) {
				m.st.SetValue(c.decl.ID, opts[idx])
			} else {
				m.st.SetValue(c.decl.ID, "")
			}
		case filter.Tags:
			// Tag toggles write into the state directly.
		default:
			m.st.SetValue(c.decl.ID, m.inputs[c.input].Value())
		}
	}

	m.results = filter.Evaluate(m.full, m.cfg.Filters, m.st)
	m.buildTable()
	m.resyncMarkers()
}

// resyncMarkers rebuilds the marker set from the current results, deferred
// until the panel has a size if the terminal has not reported one yet.
func (m *BrowserModel) resyncMarkers() {
	if !m.mapReady {
		m.pendSync = true
		return
	}
	var markers []components.Marker
	for _, r := range m.results {
		if !r.HasCoords {
			continue
		}
		markers = append(markers, components.Marker{
			ID:    r.ID,
			Point: r.Point,
			Title: displayTitle(r),
			Info:  m.markerInfo(r),
		})
	}
	m.mapPanel.SyncMarkers(markers)
}

func (m BrowserModel) markerInfo(r model.Record) []string {
	var lines []string
	for _, col := range m.cfg.Columns {
		if col.Link {
			continue
		}
		if v := col.Value(r); v != dataset.Placeholder {
			lines = append(lines, fmt.Sprintf("%s: %s", col.Title, v))
		}
	}
	if r.Address != "" {
		lines = append(lines, "Address: "+r.Address)
	}
	lines = append(lines, "Maps: "+r.MapURL)
	return lines
}

func displayTitle(r model.Record) string {
	if r.Title == "" {
		return noTitle
	}
	return r.Title
}

func (m *BrowserModel) buildTable() {
	cols := make([]table.Column, len(m.cfg.Columns))
	for i, c := range m.cfg.Columns {
		cols[i] = table.Column{Title: c.Title, Width: c.Width}
	}

	rows := make([]table.Row, len(m.results))
	for i, r := range m.results {
		row := make(table.Row, len(m.cfg.Columns))
		for j, c := range m.cfg.Columns {
			v := c.Value(r)
			if c.Link && v == "" {
				v = noTitle
			}
			row[j] = v
		}
		rows[i] = row
	}

	h := m.tableHeight()
	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(h),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Muted).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.Secondary)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(styles.Primary).
		Bold(true)
	t.SetStyles(s)
	m.tbl = t
}

func (m BrowserModel) tableHeight() int {
	h := m.height - 14
	if h < 5 {
		h = 5
	}
	return h
}

func (m *BrowserModel) updateLayout() {
	mapW := m.width * 2 / 5
	if mapW < 24 {
		mapW = 24
	}
	m.mapPanel.SetSize(mapW-4, m.tableHeight())
	m.buildTable()
}

func (m *BrowserModel) exportCSV() {
	if m.phase != phaseReady {
		return
	}
	path := fmt.Sprintf("machimap_%s_%s.csv", m.cfg.ID, time.Now().Format("20060102_150405"))
	f, err := os.Create(path)
	if err != nil {
		m.exportMsg = fmt.Sprintf("Export error: %v", err)
		return
	}
	defer f.Close()

	if err := dataset.WriteCSV(f, m.cfg, m.results); err != nil {
		m.exportMsg = fmt.Sprintf("Export error: %v", err)
		return
	}
	m.exportMsg = fmt.Sprintf("Exported %d rows to %s", len(m.results), path)
}

func (m *BrowserModel) openSelected() {
	cursor := m.tbl.Cursor()
	if cursor < 0 || cursor >= len(m.results) {
		return
	}
	url := m.results[cursor].MapURL
	if err := browser.OpenURL(url); err != nil {
		m.exportMsg = fmt.Sprintf("Open failed: %v", err)
		return
	}
	m.exportMsg = "Opened " + url
}

// statusLine is the "<matched> of <total> shown" summary.
func (m BrowserModel) statusLine() string {
	return fmt.Sprintf("%d of %d shown", len(m.results), len(m.full))
}

func (m BrowserModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render(m.cfg.Name))
	b.WriteString(lipgloss.NewStyle().Foreground(styles.Muted).
		Render(fmt.Sprintf("  Updated: %s", m.stamp)))
	b.WriteString("\n")

	switch m.phase {
	case phaseLoading:
		b.WriteString(fmt.Sprintf("%s Loading %s...\n", m.spin.View(), m.cfg.Name))
		b.WriteString("\n")
		b.WriteString(styles.StatusBar.Render("1-3 switch dataset • esc back • q quit"))
		return b.String()
	case phaseError:
		b.WriteString(styles.ErrorText.Render(fmt.Sprintf("Load failed: %v", m.loadErr)))
		b.WriteString("\n\n")
		b.WriteString(styles.StatusBar.Render("1-3 switch dataset • esc back • q quit"))
		return b.String()
	case phaseUnselected:
		b.WriteString(lipgloss.NewStyle().Foreground(styles.Muted).Render("No dataset selected"))
		return b.String()
	}

	b.WriteString(lipgloss.NewStyle().Foreground(styles.Secondary).Render(m.statusLine()))
	b.WriteString("\n")
	b.WriteString(m.viewControls())
	b.WriteString("\n")

	left := m.viewTable()
	right := m.viewMap()
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right))
	b.WriteString("\n")

	if card := m.viewDetail(); card != "" {
		b.WriteString(card)
		b.WriteString("\n")
	}

	if m.exportMsg != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(styles.Success).Render(m.exportMsg))
		b.WriteString("\n")
	}

	var statusText string
	switch m.focus {
	case focusTable:
		statusText = "↑↓ rows • enter detail • / filters • m map • o open link • e export • 1-3 dataset • esc back"
	case focusControls:
		statusText = "tab next • ←→ choose • space toggle tag • enter done • esc back"
	case focusMap:
		statusText = "n/p marker • enter popup • +/- zoom • hjkl pan • esc back"
	}
	b.WriteString(styles.StatusBar.Render(statusText))

	return b.String()
}

func (m BrowserModel) viewControls() string {
	var parts []string
	for i, c := range m.controls {
		label := c.decl.Label
		lblStyle := lipgloss.NewStyle().Foreground(styles.Muted)
		if m.focus == focusControls && i == m.ctrlFocus {
			lblStyle = lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
		}

		var body string
		switch c.decl.Kind {
		case filter.Select:
			idx := m.selectIdx[c.decl.ID]
			opts := m.selectOpts[c.decl.ID]
			choice := "any"
			if idx >= 0 && idx < len(opts) {
				choice = opts[idx]
			}
			body = "‹" + choice + "›"
		case filter.Tags:
			body = m.viewTags(c.decl.ID, m.focus == focusControls && i == m.ctrlFocus)
		default:
			body = m.inputs[c.input].View()
		}
		parts = append(parts, lblStyle.Render(label+": ")+body)
	}
	return strings.Join(parts, "   ")
}

func (m BrowserModel) viewTags(declID string, focused bool) string {
	if len(m.tagOpts) == 0 {
		return lipgloss.NewStyle().Foreground(styles.Muted).Italic(true).Render("none")
	}
	var parts []string
	for i, tag := range m.tagOpts {
		style := styles.InactiveItem
		if m.st.TagActive(declID, tag) {
			style = lipgloss.NewStyle().Foreground(styles.Success).Bold(true)
		}
		chip := "[" + tag + "]"
		if focused && i == m.tagCursor {
			chip = "▸" + chip
		}
		parts = append(parts, style.Render(chip))
	}
	return strings.Join(parts, " ")
}

func (m BrowserModel) viewTable() string {
	if len(m.results) == 0 {
		w := m.width*3/5 - 4
		if w < 30 {
			w = 30
		}
		return lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.Muted).
			Width(w).
			Height(m.tableHeight()).
			Align(lipgloss.Center, lipgloss.Center).
			Render(lipgloss.NewStyle().Foreground(styles.Muted).Italic(true).
				Render("No results"))
	}
	return m.tbl.View()
}

// viewDetail renders the card for the table's selected record.
func (m BrowserModel) viewDetail() string {
	if !m.showDetail {
		return ""
	}
	cursor := m.tbl.Cursor()
	if cursor < 0 || cursor >= len(m.results) {
		return ""
	}
	r := m.results[cursor]

	var rows []string
	rows = append(rows, styles.Subtitle.Render(displayTitle(r)))
	for _, col := range m.cfg.Columns {
		if col.Link {
			continue
		}
		rows = append(rows, styles.Label.Render(col.Title)+styles.Value.Render(col.Value(r)))
	}
	if r.Description != "" {
		rows = append(rows, styles.Label.Render("About")+styles.Value.Render(r.Description))
	}
	if r.HasCoords {
		coords := fmt.Sprintf("%.5f, %.5f", r.Lat(), r.Lng())
		rows = append(rows, styles.Label.Render("Coords")+styles.Value.Render(coords))
	}
	rows = append(rows, styles.Label.Render("Maps")+styles.Value.Render(r.MapURL))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Secondary).
		Padding(0, 1).
		Render(strings.Join(rows, "\n"))
}

func (m BrowserModel) viewMap() string {
	label := lipgloss.NewStyle().Bold(true).Foreground(styles.Muted)
	if m.focus == focusMap {
		label = label.Foreground(styles.Primary)
	}
	return label.Render("Map") + "\n" + m.mapPanel.View()
}
