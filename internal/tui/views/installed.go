package views

import (
	"fmt"

	"spool/internal/domain"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// InstalledModsMsg replaces the view's mod list
type InstalledModsMsg struct {
	Mods []domain.InstalledMod
}

// UninstallModMsg is sent to uninstall a mod
type UninstallModMsg struct {
	Mod domain.InstalledMod
}

// Installed is the installed mods view
type Installed struct {
	mods     []domain.InstalledMod
	selected int
	width    int
	height   int
}

// NewInstalled creates a new installed mods view
func NewInstalled(mods []domain.InstalledMod) Installed {
	return Installed{
		mods:     mods,
		selected: 0,
		width:    80,
		height:   24,
	}
}

// Selected returns the currently selected index
func (m Installed) Selected() int {
	return m.selected
}

// ModCount returns the number of installed mods
func (m Installed) ModCount() int {
	return len(m.mods)
}

// SelectedMod returns the currently selected mod
func (m Installed) SelectedMod() *domain.InstalledMod {
	if len(m.mods) == 0 || m.selected >= len(m.mods) {
		return nil
	}
	return &m.mods[m.selected]
}

// Init implements tea.Model
func (m Installed) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Installed) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case InstalledModsMsg:
		m.mods = msg.Mods
		if m.selected >= len(m.mods) {
			m.selected = 0
		}
		return m, nil
	}

	return m, nil
}

func (m Installed) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if len(m.mods) == 0 {
		return m, nil
	}

	switch msg.String() {
	case "up", "k":
		m.selected--
		if m.selected < 0 {
			m.selected = len(m.mods) - 1
		}
		return m, nil

	case "down", "j":
		m.selected++
		if m.selected >= len(m.mods) {
			m.selected = 0
		}
		return m, nil

	case "d", "delete":
		mod := m.SelectedMod()
		if mod != nil {
			return m, func() tea.Msg {
				return UninstallModMsg{Mod: *mod}
			}
		}
		return m, nil

	case "home", "g":
		m.selected = 0
		return m, nil

	case "end", "G":
		m.selected = len(m.mods) - 1
		return m, nil
	}

	return m, nil
}

// View implements tea.Model
func (m Installed) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("69")).
		MarginBottom(1)

	infoStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	itemStyle := lipgloss.NewStyle().
		PaddingLeft(2)

	selectedStyle := lipgloss.NewStyle().
		PaddingLeft(2).
		Foreground(lipgloss.Color("205")).
		Bold(true)

	detailStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		PaddingLeft(4)

	output := titleStyle.Render("Installed Mods") + "\n"

	if len(m.mods) == 0 {
		output += itemStyle.Render("No mods installed.") + "\n\n"
		output += infoStyle.Render("Browse mods with [1] or search with 'spool search <query>'") + "\n"
		return output
	}

	output += infoStyle.Render(fmt.Sprintf("%d mods installed:", len(m.mods))) + "\n\n"

	for i, mod := range m.mods {
		cursor := "  "
		style := itemStyle

		if i == m.selected {
			cursor = "▸ "
			style = selectedStyle
		}

		line := fmt.Sprintf("%s%s v%s", cursor, mod.ModTitle, mod.Version)
		output += style.Render(line) + "\n"

		if i == m.selected {
			output += detailStyle.Render(fmt.Sprintf("ID: %s", mod.ModID)) + "\n"
			output += detailStyle.Render(fmt.Sprintf("Installed: %s", mod.InstalledAt)) + "\n"
			output += detailStyle.Render(fmt.Sprintf("Files: %d", len(mod.InstalledFiles))) + "\n"
			output += "\n"
		}
	}

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		MarginTop(1)
	output += helpStyle.Render("↑/↓: navigate  d: uninstall")

	return output
}
