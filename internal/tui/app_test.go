package tui_test

import (
	"context"
	"testing"

	"spool/internal/domain"
	"spool/internal/installer"
	"spool/internal/notify"
	"spool/internal/repo"
	"spool/internal/store"
	"spool/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

type stubRepoBackend struct{}

func (stubRepoBackend) FetchRepository(ctx context.Context, url string) (domain.Repository, error) {
	return domain.Repository{}, domain.ErrFetchFailed
}

func (stubRepoBackend) GetCachedRepositories(ctx context.Context) ([]domain.RepositoryInfo, error) {
	return nil, nil
}

func (stubRepoBackend) LoadCachedRepository(ctx context.Context, repoID string) (domain.Repository, error) {
	return domain.Repository{}, domain.ErrRepoNotFound
}

func (stubRepoBackend) ClearRepositoryCache(ctx context.Context, repoID string) error { return nil }
func (stubRepoBackend) ClearAllCache(ctx context.Context) error                       { return nil }
func (stubRepoBackend) AddRepositoryURL(ctx context.Context, url string) error        { return nil }
func (stubRepoBackend) RemoveRepositoryURL(ctx context.Context, url string) error     { return nil }

type stubRecordStore struct{}

func (stubRecordStore) LoadRecord(ctx context.Context) (domain.InstalledModsRecord, error) {
	return domain.InstalledModsRecord{}, nil
}

func (stubRecordStore) SaveRecord(ctx context.Context, record domain.InstalledModsRecord) error {
	return nil
}

type stubInstallBackend struct{}

func (stubInstallBackend) Install(ctx context.Context, downloadURL, gamePath, modTitle string) (domain.InstallResult, error) {
	return domain.InstallResult{Success: true}, nil
}

func (stubInstallBackend) Uninstall(ctx context.Context, gamePath, modTitle string) (domain.InstallResult, error) {
	return domain.InstallResult{Success: true}, nil
}

func (stubInstallBackend) ListInstalled(ctx context.Context, gamePath string) ([]string, error) {
	return nil, nil
}

func newTestApp() tui.App {
	hub := notify.NewHub()
	mods := store.New(stubRecordStore{}, hub, nil)
	catalog := repo.NewAggregator(stubRepoBackend{}, repo.Options{})
	orch := installer.New(stubInstallBackend{}, mods, hub, nil)

	return tui.NewApp(tui.Deps{
		Catalog:   catalog,
		Store:     mods,
		Installer: orch,
		Hub:       hub,
		GamePath:  "/games/silksong",
	})
}

func TestApp_InitialView(t *testing.T) {
	app := newTestApp()

	assert.Equal(t, tui.ViewBrowser, app.CurrentView())
	assert.NotEmpty(t, app.View())
}

func TestApp_DigitsSwitchTabsOutsideSearch(t *testing.T) {
	app := newTestApp()

	// Leave the search input first; digits are text while it has focus.
	newModel, _ := app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	newModel, _ = newModel.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})

	updated := newModel.(tui.App)
	assert.Equal(t, tui.ViewInstalled, updated.CurrentView())

	newModel, _ = updated.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'3'}})
	updated = newModel.(tui.App)
	assert.Equal(t, tui.ViewRepos, updated.CurrentView())
}

func TestApp_DigitsAreTextWhileSearching(t *testing.T) {
	app := newTestApp()

	newModel, _ := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	updated := newModel.(tui.App)

	assert.Equal(t, tui.ViewBrowser, updated.CurrentView())
}

func TestApp_CtrlCQuits(t *testing.T) {
	app := newTestApp()

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.NotNil(t, cmd)
}

func TestApp_NotificationLifecycleOnStatusLine(t *testing.T) {
	app := newTestApp()

	posted := notify.Event{
		Kind: notify.EventPosted,
		ID:   7,
		Notification: notify.Notification{
			ID: 7, Type: notify.TypeInfo, Title: "Installing Mod",
			Message: "Starting installation of Lightbringer...", HasProgress: true,
		},
	}
	newModel, _ := app.Update(tui.NotificationMsg{Event: posted})
	updated := newModel.(tui.App)
	assert.Contains(t, updated.StatusLine(), "Installing Mod")
	assert.Contains(t, updated.StatusLine(), "0%")

	progress := posted
	progress.Kind = notify.EventProgress
	progress.Notification.Progress = 25
	newModel, _ = updated.Update(tui.NotificationMsg{Event: progress})
	updated = newModel.(tui.App)
	assert.Contains(t, updated.StatusLine(), "25%")

	dismissed := notify.Event{Kind: notify.EventDismissed, ID: 7}
	newModel, _ = updated.Update(tui.NotificationMsg{Event: dismissed})
	updated = newModel.(tui.App)
	assert.Empty(t, updated.StatusLine())
}

func TestApp_DismissOfOtherNotificationKeepsStatus(t *testing.T) {
	app := newTestApp()

	posted := notify.Event{
		Kind:         notify.EventPosted,
		ID:           1,
		Notification: notify.Notification{ID: 1, Type: notify.TypeSuccess, Title: "Mod Installed", Message: "done"},
	}
	newModel, _ := app.Update(tui.NotificationMsg{Event: posted})
	updated := newModel.(tui.App)

	other := notify.Event{Kind: notify.EventDismissed, ID: 99}
	newModel, _ = updated.Update(tui.NotificationMsg{Event: other})
	updated = newModel.(tui.App)

	assert.Contains(t, updated.StatusLine(), "Mod Installed")
}
