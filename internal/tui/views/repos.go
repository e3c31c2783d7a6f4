package views

import (
	"fmt"

	"spool/internal/domain"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// RepositoriesMsg replaces the view's repository list
type RepositoriesMsg struct {
	Repos []domain.RepositoryInfo
}

// RefreshReposMsg asks the parent to re-fetch all configured repositories
type RefreshReposMsg struct{}

// Repos is the repository sources view
type Repos struct {
	repos    []domain.RepositoryInfo
	selected int
	width    int
	height   int
}

// NewRepos creates a new repository sources view
func NewRepos(repos []domain.RepositoryInfo) Repos {
	return Repos{
		repos:  repos,
		width:  80,
		height: 24,
	}
}

// RepoCount returns the number of listed repositories
func (m Repos) RepoCount() int {
	return len(m.repos)
}

// Selected returns the currently selected index
func (m Repos) Selected() int {
	return m.selected
}

// Init implements tea.Model
func (m Repos) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Repos) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case RepositoriesMsg:
		m.repos = msg.Repos
		if m.selected >= len(m.repos) {
			m.selected = 0
		}
		return m, nil
	}

	return m, nil
}

func (m Repos) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "r":
		return m, func() tea.Msg {
			return RefreshReposMsg{}
		}

	case "up", "k":
		if len(m.repos) > 0 {
			m.selected--
			if m.selected < 0 {
				m.selected = len(m.repos) - 1
			}
		}
		return m, nil

	case "down", "j":
		if len(m.repos) > 0 {
			m.selected++
			if m.selected >= len(m.repos) {
				m.selected = 0
			}
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model
func (m Repos) View() string {
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

	output := titleStyle.Render("Repositories") + "\n"

	if len(m.repos) == 0 {
		output += itemStyle.Render("No repositories available.") + "\n\n"
		output += infoStyle.Render("Add one with 'spool repo add <url>'") + "\n"
		return output
	}

	for i, repo := range m.repos {
		cursor := "  "
		style := itemStyle

		if i == m.selected {
			cursor = "▸ "
			style = selectedStyle
		}

		line := fmt.Sprintf("%s%s (%d mods)", cursor, repo.Name, repo.ModCount)
		output += style.Render(line) + "\n"

		if i == m.selected {
			output += detailStyle.Render(fmt.Sprintf("ID: %s  Version: %d", repo.ID, repo.Version)) + "\n"
			if repo.URL != "" {
				output += detailStyle.Render(repo.URL) + "\n"
			}
			if repo.LastUpdated != "" {
				output += detailStyle.Render(fmt.Sprintf("Last updated: %s", repo.LastUpdated)) + "\n"
			}
			output += "\n"
		}
	}

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		MarginTop(1)
	output += helpStyle.Render("↑/↓: navigate  r: refresh")

	return output
}
