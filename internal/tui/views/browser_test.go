package views

import (
	"io"
	"log"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/paulmach/orb"

	"github.com/moritamori/machimap/internal/dataset"
	"github.com/moritamori/machimap/internal/engine/filter"
	"github.com/moritamori/machimap/internal/model"
)

func testConfig() dataset.Config {
	return dataset.Config{
		ID:        "test",
		Name:      "Test Shops",
		Source:    "testdata/none.json",
		Normalize: func([]byte) []model.Record { return nil },
		Filters: []filter.Decl{
			{ID: "q", Label: "Search", Kind: filter.Search,
				Fields: []filter.Field{filter.FieldTitle, filter.FieldDescription}},
			{ID: "tags", Label: "Tags", Kind: filter.Tags,
				Fields: []filter.Field{filter.FieldTags}},
		},
		Columns: []dataset.Column{
			{Title: "Name", Width: 20, Link: true, Value: func(r model.Record) string { return r.Title }},
			{Title: "Area", Width: 12, Value: func(r model.Record) string { return r.Area }},
		},
		Center: orb.Point{139.7671, 35.6812},
		Zoom:   12,
	}
}

func testRecords() []model.Record {
	return []model.Record{
		{ID: "1", Title: "Ramen Gold", Area: "Shinjuku", Tags: []string{"late"},
			Point: orb.Point{139.70, 35.69}, HasCoords: true},
		{ID: "2", Title: "Golden Teahouse", Area: "Gion"}, // no coordinates
		{ID: "3", Title: "Sushi Dan", Area: "Shibuya",
			Point: orb.Point{139.70, 35.66}, HasCoords: true},
	}
}

func update(t *testing.T, m BrowserModel, msg tea.Msg) BrowserModel {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(BrowserModel)
}

func loadedModel(t *testing.T) BrowserModel {
	t.Helper()
	m := NewBrowserModel(log.New(io.Discard, "", 0))
	m.Switch(testConfig())
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m = update(t, m, datasetLoadedMsg{seq: m.loadSeq, records: testRecords(), stamp: "Mar 5, 2024"})
	return m
}

func TestLoadTransitionsToReady(t *testing.T) {
	m := loadedModel(t)
	if m.phase != phaseReady {
		t.Fatalf("phase = %d, want ready", m.phase)
	}
	if got := m.statusLine(); got != "3 of 3 shown" {
		t.Errorf("status = %q", got)
	}
	// Only the two coordinate-bearing records become markers.
	if n := len(m.mapPanel.Markers()); n != 2 {
		t.Errorf("markers = %d, want 2", n)
	}
}

func TestSearchNarrowsTableAndMarkers(t *testing.T) {
	m := loadedModel(t)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("gold")})

	if got := m.statusLine(); got != "2 of 3 shown" {
		t.Errorf("status = %q, want \"2 of 3 shown\"", got)
	}
	if n := len(m.tbl.Rows()); n != 2 {
		t.Errorf("table rows = %d, want 2", n)
	}
	// Of the two matches only Ramen Gold has coordinates.
	if n := len(m.mapPanel.Markers()); n != 1 {
		t.Errorf("markers = %d, want 1", n)
	}
}

func TestZeroResultsRendersNoResultsRow(t *testing.T) {
	m := loadedModel(t)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("zzzz")})

	if got := m.statusLine(); got != "0 of 3 shown" {
		t.Errorf("status = %q, want \"0 of 3 shown\"", got)
	}
	if !strings.Contains(m.View(), "No results") {
		t.Error("empty result set must render the no-results row")
	}
	if n := len(m.mapPanel.Markers()); n != 0 {
		t.Errorf("markers = %d, want 0", n)
	}
}

func TestLoadErrorEntersErrorPhase(t *testing.T) {
	m := NewBrowserModel(log.New(io.Discard, "", 0))
	m.Switch(testConfig())
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m = update(t, m, datasetLoadedMsg{seq: m.loadSeq, err: io.ErrUnexpectedEOF})
	if m.phase != phaseError {
		t.Fatalf("phase = %d, want error", m.phase)
	}
	if len(m.full) != 0 || len(m.mapPanel.Markers()) != 0 {
		t.Error("error phase must not retain partial data")
	}
}

func TestStaleLoadIsDiscarded(t *testing.T) {
	m := loadedModel(t)
	stale := m.loadSeq

	m.Switch(testConfig()) // supersedes the settled load
	if m.phase != phaseLoading {
		t.Fatalf("phase = %d, want loading", m.phase)
	}

	m = update(t, m, datasetLoadedMsg{seq: stale, records: testRecords(), stamp: "old"})
	if m.phase != phaseLoading {
		t.Errorf("stale response must not settle the new activation")
	}
	if len(m.full) != 0 {
		t.Errorf("stale records applied: %d", len(m.full))
	}
}

func TestSwitchClearsFilterAndTagState(t *testing.T) {
	m := loadedModel(t)
	m.st.ToggleTag("tags", "late")
	m.apply()
	if got := m.statusLine(); got != "1 of 3 shown" {
		t.Fatalf("tag filter setup: %q", got)
	}

	m.Switch(testConfig())
	if len(m.st.ActiveTags("tags")) != 0 {
		t.Error("switch must clear active tags")
	}
	m = update(t, m, datasetLoadedMsg{seq: m.loadSeq, records: testRecords(), stamp: ""})
	if got := m.statusLine(); got != "3 of 3 shown" {
		t.Errorf("fresh config must start unfiltered, got %q", got)
	}
}

func TestDetailCardToggles(t *testing.T) {
	m := loadedModel(t)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.showDetail {
		t.Fatal("enter must open the detail card")
	}
	if view := m.View(); !strings.Contains(view, "Ramen Gold") || !strings.Contains(view, "Maps") {
		t.Error("detail card must show the selected record")
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.showDetail {
		t.Error("enter must close the detail card again")
	}
}

func TestMarkersDeferredUntilSized(t *testing.T) {
	m := NewBrowserModel(log.New(io.Discard, "", 0))
	m.Switch(testConfig())

	// Data arrives before the terminal reports a size.
	m = update(t, m, datasetLoadedMsg{seq: m.loadSeq, records: testRecords(), stamp: ""})
	if len(m.mapPanel.Markers()) != 0 {
		t.Fatal("markers must wait for readiness")
	}

	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	if n := len(m.mapPanel.Markers()); n != 2 {
		t.Errorf("deferred resync placed %d markers, want 2", n)
	}
}
