package views

import (
	"fmt"
	"strings"

	"spool/internal/domain"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SearchRequestMsg asks the parent to run a catalog search
type SearchRequestMsg struct {
	Query string
}

// SearchResultsMsg contains search results
type SearchResultsMsg struct {
	Mods []domain.Mod
}

// SearchErrorMsg indicates a search error
type SearchErrorMsg struct {
	Err error
}

// InstallModMsg is sent when user wants to install a mod
type InstallModMsg struct {
	Mod domain.Mod
}

// Browser is the catalog browsing/search view
type Browser struct {
	searchInput   textinput.Model
	searchFocused bool
	results       []domain.Mod
	selected      int
	loading       bool
	err           error
	width         int
	height        int
}

// NewBrowser creates a new catalog browser view
func NewBrowser() Browser {
	ti := textinput.New()
	ti.Placeholder = "Search mods..."
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 40

	return Browser{
		searchInput:   ti,
		searchFocused: true,
		selected:      0,
		width:         80,
		height:        24,
	}
}

// SearchQuery returns the current search query
func (m Browser) SearchQuery() string {
	return m.searchInput.Value()
}

// IsSearchFocused returns whether the search input is focused
func (m Browser) IsSearchFocused() bool {
	return m.searchFocused
}

// ResultCount returns the number of search results
func (m Browser) ResultCount() int {
	return len(m.results)
}

// Selected returns the currently selected result index
func (m Browser) Selected() int {
	return m.selected
}

// SelectedMod returns the currently selected mod
func (m Browser) SelectedMod() *domain.Mod {
	if len(m.results) == 0 || m.selected >= len(m.results) {
		return nil
	}
	return &m.results[m.selected]
}

// Init implements tea.Model
func (m Browser) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (m Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case SearchResultsMsg:
		m.results = msg.Mods
		m.loading = false
		m.err = nil
		m.selected = 0
		return m, nil

	case SearchErrorMsg:
		m.err = msg.Err
		m.loading = false
		return m, nil
	}

	if m.searchFocused {
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Browser) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searchFocused {
		switch msg.Type {
		case tea.KeyEsc:
			m.searchFocused = false
			m.searchInput.Blur()
			return m, nil

		case tea.KeyEnter:
			m.loading = true
			query := m.searchInput.Value()
			return m, func() tea.Msg {
				return SearchRequestMsg{Query: query}
			}

		default:
			var cmd tea.Cmd
			m.searchInput, cmd = m.searchInput.Update(msg)
			return m, cmd
		}
	}

	switch msg.String() {
	case "/":
		m.searchFocused = true
		m.searchInput.Focus()
		return m, nil

	case "up", "k":
		if len(m.results) > 0 {
			m.selected--
			if m.selected < 0 {
				m.selected = len(m.results) - 1
			}
		}
		return m, nil

	case "down", "j":
		if len(m.results) > 0 {
			m.selected++
			if m.selected >= len(m.results) {
				m.selected = 0
			}
		}
		return m, nil

	case "enter", " ":
		mod := m.SelectedMod()
		if mod != nil {
			return m, func() tea.Msg {
				return InstallModMsg{Mod: *mod}
			}
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model
func (m Browser) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("69")).
		MarginBottom(1)

	itemStyle := lipgloss.NewStyle().
		PaddingLeft(2)

	selectedStyle := lipgloss.NewStyle().
		PaddingLeft(2).
		Foreground(lipgloss.Color("205")).
		Bold(true)

	detailStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		PaddingLeft(4)

	loadingStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("214"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("196"))

	output := titleStyle.Render("Browse Mods") + "\n"

	searchLabel := "Search: "
	if m.searchFocused {
		searchLabel = "Search (esc to exit): "
	}
	output += searchLabel + m.searchInput.View() + "\n\n"

	if m.loading {
		output += loadingStyle.Render("Searching...") + "\n"
		return output
	}

	if m.err != nil {
		output += errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n"
		return output
	}

	if len(m.results) == 0 {
		if m.SearchQuery() != "" {
			output += itemStyle.Render("No mods found.") + "\n"
		} else {
			output += itemStyle.Render("Press Enter to list all mods.") + "\n"
		}
	} else {
		output += fmt.Sprintf("Found %d mods:\n\n", len(m.results))

		for i, mod := range m.results {
			cursor := "  "
			style := itemStyle

			if i == m.selected {
				cursor = "▸ "
				style = selectedStyle
			}

			line := fmt.Sprintf("%s%s", cursor, mod.Title)
			output += style.Render(line) + "\n"

			if i == m.selected {
				if len(mod.Authors) > 0 {
					output += detailStyle.Render(fmt.Sprintf("by %s", strings.Join(mod.Authors, ", "))) + "\n"
				}
				if mod.Description != "" {
					output += detailStyle.Render(mod.Description) + "\n"
				}
				output += detailStyle.Render(fmt.Sprintf("Game version: %s  Updated: %s", mod.GameVersion, mod.UpdatedAt)) + "\n"
				if len(mod.Requirements) > 0 {
					output += detailStyle.Render(fmt.Sprintf("Requires: %s", strings.Join(mod.Requirements, ", "))) + "\n"
				}
				output += "\n"
			}
		}
	}

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		MarginTop(1)

	if m.searchFocused {
		output += helpStyle.Render("enter: search  esc: exit search")
	} else {
		output += helpStyle.Render("/: search  ↑/↓: navigate  enter: install")
	}

	return output
}
