package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/moritamori/machimap/internal/dataset"
	"github.com/moritamori/machimap/internal/tui/styles"
)

// NavigateToBrowser asks the root app to activate a config.
type NavigateToBrowser struct {
	ConfigID string
}

// NavigateToHome returns to the config picker.
type NavigateToHome struct{}

// HomeModel is the dataset picker.
type HomeModel struct {
	configs []dataset.Config
	cursor  int
}

func NewHomeModel() HomeModel {
	return HomeModel{configs: dataset.All()}
}

func (m HomeModel) Init() tea.Cmd {
	return nil
}

func (m HomeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.configs)-1 {
				m.cursor++
			}
		case "enter":
			id := m.configs[m.cursor].ID
			return m, func() tea.Msg { return NavigateToBrowser{ConfigID: id} }
		case "q":
			return m, tea.Quit
		default:
			// Number keys jump straight to a config.
			if len(key) == 1 && key[0] >= '1' && int(key[0]-'1') < len(m.configs) {
				id := m.configs[key[0]-'1'].ID
				return m, func() tea.Msg { return NavigateToBrowser{ConfigID: id} }
			}
		}
	}
	return m, nil
}

func (m HomeModel) View() string {
	var b strings.Builder

	logo := lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Render("  machimap")
	tagline := lipgloss.NewStyle().
		Foreground(styles.Secondary).
		Italic(true).
		Render("  Shop & restaurant directory browser")

	b.WriteString(logo + "\n")
	b.WriteString(tagline + "\n\n")

	for i, cfg := range m.configs {
		cursor := "  "
		style := styles.InactiveItem
		if i == m.cursor {
			cursor = "> "
			style = styles.ActiveItem
		}
		key := lipgloss.NewStyle().
			Foreground(styles.Secondary).
			Bold(true).
			Render(fmt.Sprintf("[%d]", i+1))
		b.WriteString(fmt.Sprintf("%s%s %s\n", cursor, key, style.Render(cfg.Name)))
	}

	b.WriteString("\n")
	b.WriteString(styles.StatusBar.Render("↑↓ navigate • enter open • q quit"))

	return styles.Border.Render(b.String())
}
