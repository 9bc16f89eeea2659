package tui

import (
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/moritamori/machimap/internal/dataset"
	"github.com/moritamori/machimap/internal/tui/views"
)

type viewID int

const (
	viewHome viewID = iota
	viewBrowser
)

// App is the root bubbletea model.
type App struct {
	currentView viewID
	width       int
	height      int
	logger      *log.Logger
	home        views.HomeModel
	browser     views.BrowserModel
}

func NewApp(logger *log.Logger) App {
	return App{
		currentView: viewHome,
		logger:      logger,
		home:        views.NewHomeModel(),
		browser:     views.NewBrowserModel(logger),
	}
}

func (a App) Init() tea.Cmd {
	// Reopen the config browsed last time, when there is one.
	if id := LoadLastConfig(); id != "" {
		if _, ok := dataset.ByID(id); ok {
			return func() tea.Msg { return views.NavigateToBrowser{ConfigID: id} }
		}
	}
	return a.home.Init()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
	case views.NavigateToBrowser:
		cfg, ok := dataset.ByID(msg.ConfigID)
		if !ok {
			return a, nil
		}
		a.currentView = viewBrowser
		if err := SaveLastConfig(cfg.ID); err != nil {
			a.logger.Printf("saving last config: %v", err)
		}
		cmd := a.browser.Switch(cfg)
		return a, tea.Batch(cmd, a.sizeCmd())
	case views.NavigateToHome:
		a.currentView = viewHome
		return a, nil
	}

	var cmd tea.Cmd
	switch a.currentView {
	case viewHome:
		var m tea.Model
		m, cmd = a.home.Update(msg)
		a.home = m.(views.HomeModel)
	case viewBrowser:
		var m tea.Model
		m, cmd = a.browser.Update(msg)
		a.browser = m.(views.BrowserModel)
	}

	return a, cmd
}

func (a App) View() string {
	var content string
	switch a.currentView {
	case viewHome:
		content = a.home.View()
	case viewBrowser:
		content = a.browser.View()
	}

	return lipgloss.Place(
		a.width, a.height,
		lipgloss.Center, lipgloss.Top,
		content,
	)
}

// sizeCmd sends a WindowSizeMsg so a freshly activated view gets the current
// terminal size.
func (a App) sizeCmd() tea.Cmd {
	w, h := a.width, a.height
	return func() tea.Msg {
		return tea.WindowSizeMsg{Width: w, Height: h}
	}
}

// Run starts the TUI with a session log file for background noise.
func Run() error {
	logger := newSessionLogger()
	p := tea.NewProgram(NewApp(logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func newSessionLogger() *log.Logger {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return log.New(io.Discard, "", 0)
	}
	dir := filepath.Join(cfg, "machimap")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return log.New(io.Discard, "", 0)
	}
	f, err := os.OpenFile(filepath.Join(dir, "session.log"),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(io.Discard, "", 0)
	}
	return log.New(f, "", log.LstdFlags)
}
