// Package tui implements the interactive terminal frontend: a tabbed
// catalog browser, installed-mods list, and repository manager wired to
// the notification hub.
package tui

import (
	"context"
	"fmt"

	"spool/internal/domain"
	"spool/internal/installer"
	"spool/internal/notify"
	"spool/internal/repo"
	"spool/internal/search"
	"spool/internal/store"
	"spool/internal/tui/views"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ViewType represents different screens in the TUI
type ViewType int

const (
	ViewBrowser ViewType = iota
	ViewInstalled
	ViewRepos
)

// NotificationMsg carries a hub event into the update loop
type NotificationMsg struct {
	Event notify.Event
}

// Deps are the services the TUI operates on
type Deps struct {
	Catalog   *repo.Aggregator
	Store     *store.Store
	Installer *installer.Orchestrator
	Hub       *notify.Hub
	GamePath  string
}

// App is the main TUI application model
type App struct {
	deps        Deps
	currentView ViewType
	width       int
	height      int

	statusID   int64
	statusLine string
	statusType notify.Type

	browser   tea.Model
	installed tea.Model
	repos     tea.Model
}

// NewApp creates a new TUI application
func NewApp(deps Deps) App {
	return App{
		deps:        deps,
		currentView: ViewBrowser,
		width:       80,
		height:      24,
		browser:     views.NewBrowser(),
		installed:   views.NewInstalled(deps.Store.GetInstalledMods()),
		repos:       views.NewRepos(nil),
	}
}

// CurrentView returns the current view type
func (a App) CurrentView() ViewType {
	return a.currentView
}

// StatusLine returns the rendered notification text, if any
func (a App) StatusLine() string {
	return a.statusLine
}

// Init implements tea.Model
func (a App) Init() tea.Cmd {
	return tea.Batch(a.browser.Init(), a.searchCmd(""), a.reposCmd())
}

// Update implements tea.Model
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a.updateAllViews(msg)

	case NotificationMsg:
		return a.handleNotification(msg.Event), nil

	case views.SearchRequestMsg:
		return a, a.searchCmd(msg.Query)

	case views.SearchResultsMsg, views.SearchErrorMsg:
		var cmd tea.Cmd
		a.browser, cmd = a.browser.Update(msg)
		return a, cmd

	case views.InstallModMsg:
		return a, a.installCmd(msg.Mod)

	case views.UninstallModMsg:
		return a, a.uninstallCmd(msg.Mod)

	case views.InstalledModsMsg:
		var cmd tea.Cmd
		a.installed, cmd = a.installed.Update(msg)
		return a, cmd

	case views.RefreshReposMsg:
		return a, a.reposCmd()

	case views.RepositoriesMsg:
		var cmd tea.Cmd
		a.repos, cmd = a.repos.Update(msg)
		return a, cmd
	}

	return a.updateCurrentView(msg)
}

func (a App) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keybindings. The browser's search input swallows plain
	// characters, so tab switching uses digits only outside of it.
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	}

	inSearch := false
	if b, ok := a.browser.(views.Browser); ok {
		inSearch = a.currentView == ViewBrowser && b.IsSearchFocused()
	}

	if !inSearch {
		switch msg.String() {
		case "q":
			return a, tea.Quit
		case "1":
			a.currentView = ViewBrowser
			return a, nil
		case "2":
			a.currentView = ViewInstalled
			return a, nil
		case "3":
			a.currentView = ViewRepos
			return a, nil
		}
	}

	return a.updateCurrentView(msg)
}

func (a App) handleNotification(ev notify.Event) App {
	switch ev.Kind {
	case notify.EventPosted:
		a.statusID = ev.ID
		a.statusType = ev.Notification.Type
		a.statusLine = fmt.Sprintf("%s: %s", ev.Notification.Title, ev.Notification.Message)
		if ev.Notification.HasProgress {
			a.statusLine += fmt.Sprintf(" (%d%%)", ev.Notification.Progress)
		}

	case notify.EventProgress:
		if ev.ID == a.statusID {
			a.statusLine = fmt.Sprintf("%s: %s (%d%%)",
				ev.Notification.Title, ev.Notification.Message, ev.Notification.Progress)
		}

	case notify.EventDismissed:
		if ev.ID == a.statusID {
			a.statusLine = ""
		}
	}
	return a
}

func (a App) updateCurrentView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch a.currentView {
	case ViewBrowser:
		a.browser, cmd = a.browser.Update(msg)
	case ViewInstalled:
		a.installed, cmd = a.installed.Update(msg)
	case ViewRepos:
		a.repos, cmd = a.repos.Update(msg)
	}

	return a, cmd
}

func (a App) updateAllViews(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	a.browser, cmd = a.browser.Update(msg)
	cmds = append(cmds, cmd)
	a.installed, cmd = a.installed.Update(msg)
	cmds = append(cmds, cmd)
	a.repos, cmd = a.repos.Update(msg)
	cmds = append(cmds, cmd)

	return a, tea.Batch(cmds...)
}

func (a App) searchCmd(query string) tea.Cmd {
	catalog := a.deps.Catalog
	return func() tea.Msg {
		mods := catalog.GetAllMods(context.Background())
		mods = search.SearchMods(mods, query, search.DefaultFilters())
		return views.SearchResultsMsg{Mods: mods}
	}
}

func (a App) installCmd(mod domain.Mod) tea.Cmd {
	deps := a.deps
	return func() tea.Msg {
		if len(mod.Downloads) == 0 {
			deps.Hub.Error("Installation Failed", fmt.Sprintf("%s has no downloads", mod.Title))
			return views.InstalledModsMsg{Mods: deps.Store.GetInstalledMods()}
		}
		deps.Installer.Install(context.Background(), mod, mod.Downloads[0], deps.GamePath)
		return views.InstalledModsMsg{Mods: deps.Store.GetInstalledMods()}
	}
}

func (a App) uninstallCmd(mod domain.InstalledMod) tea.Cmd {
	deps := a.deps
	return func() tea.Msg {
		deps.Installer.Uninstall(context.Background(), domain.Mod{ID: mod.ModID, Title: mod.ModTitle}, mod.GamePath)
		return views.InstalledModsMsg{Mods: deps.Store.GetInstalledMods()}
	}
}

func (a App) reposCmd() tea.Cmd {
	catalog := a.deps.Catalog
	return func() tea.Msg {
		return views.RepositoriesMsg{Repos: catalog.GetAllRepositories(context.Background())}
	}
}

// View implements tea.Model
func (a App) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		MarginBottom(1)

	tabStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	activeTabStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")).
		Bold(true)

	header := titleStyle.Render("spool - Silksong Mod Manager")

	tabs := []string{"[1]Browse", "[2]Installed", "[3]Repos"}
	tabBar := ""
	for i, tab := range tabs {
		if ViewType(i) == a.currentView {
			tabBar += activeTabStyle.Render(tab) + "  "
		} else {
			tabBar += tabStyle.Render(tab) + "  "
		}
	}

	content := a.renderCurrentView()

	status := ""
	if a.statusLine != "" {
		statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("70"))
		switch a.statusType {
		case notify.TypeError:
			statusStyle = statusStyle.Foreground(lipgloss.Color("196"))
		case notify.TypeWarning:
			statusStyle = statusStyle.Foreground(lipgloss.Color("214"))
		case notify.TypeInfo:
			statusStyle = statusStyle.Foreground(lipgloss.Color("69"))
		}
		status = statusStyle.Render(a.statusLine) + "\n"
	}

	footerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		MarginTop(1)
	footer := footerStyle.Render("q: quit")

	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s%s", header, tabBar, content, status, footer)
}

func (a App) renderCurrentView() string {
	switch a.currentView {
	case ViewBrowser:
		return a.browser.View()
	case ViewInstalled:
		return a.installed.View()
	case ViewRepos:
		return a.repos.View()
	default:
		return "Unknown view"
	}
}

// Run starts the TUI application. Hub events are forwarded into the
// program so notifications render as they happen.
func Run(deps Deps) error {
	app := NewApp(deps)
	p := tea.NewProgram(app, tea.WithAltScreen())

	unsubscribe := deps.Hub.Subscribe(func(ev notify.Event) {
		p.Send(NotificationMsg{Event: ev})
	})
	defer unsubscribe()

	_, err := p.Run()
	return err
}
