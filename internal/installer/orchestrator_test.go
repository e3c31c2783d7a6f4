package installer_test

import (
	"context"
	"errors"
	"testing"

	"spool/internal/domain"
	"spool/internal/installer"
	"spool/internal/notify"
	"spool/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memRecordStore keeps the installed-mods record in memory.
type memRecordStore struct {
	record domain.InstalledModsRecord
}

func (m *memRecordStore) LoadRecord(context.Context) (domain.InstalledModsRecord, error) {
	return m.record, nil
}

func (m *memRecordStore) SaveRecord(_ context.Context, record domain.InstalledModsRecord) error {
	m.record = record
	return nil
}

// fakeBackend records calls and returns canned results.
type fakeBackend struct {
	installResult   domain.InstallResult
	installErr      error
	uninstallResult domain.InstallResult
	uninstallErr    error
	installed       []string

	installCalls   int
	uninstallCalls int
}

func (f *fakeBackend) Install(context.Context, string, string, string) (domain.InstallResult, error) {
	f.installCalls++
	return f.installResult, f.installErr
}

func (f *fakeBackend) Uninstall(context.Context, string, string) (domain.InstallResult, error) {
	f.uninstallCalls++
	return f.uninstallResult, f.uninstallErr
}

func (f *fakeBackend) ListInstalled(context.Context, string) ([]string, error) {
	return f.installed, nil
}

type fixture struct {
	orch    *installer.Orchestrator
	store   *store.Store
	hub     *notify.Hub
	backend *fakeBackend
	events  *[]notify.Event
}

func newFixture(t *testing.T, backend *fakeBackend) fixture {
	t.Helper()
	hub := notify.NewHub()
	st := store.New(&memRecordStore{}, hub, nil)

	var events []notify.Event
	hub.Subscribe(func(ev notify.Event) { events = append(events, ev) })

	return fixture{
		orch:    installer.New(backend, st, hub, nil),
		store:   st,
		hub:     hub,
		backend: backend,
		events:  &events,
	}
}

func alphaMod() domain.Mod {
	return domain.Mod{ID: "m1", Title: "Alpha", GameVersion: "1.0.0"}
}

func TestInstall_Success(t *testing.T) {
	backend := &fakeBackend{
		installResult: domain.InstallResult{
			Success:        true,
			Message:        "Extracted 3 files",
			InstalledFiles: []string{"Alpha/a.dll", "Alpha/b.dll", "Alpha/readme.txt"},
		},
	}
	fx := newFixture(t, backend)

	download := domain.Download{Label: "Download v2.0.2", URL: "http://x/a.zip"}
	result := fx.orch.Install(context.Background(), alphaMod(), download, "/game")

	require.True(t, result.Success)
	assert.Equal(t, 1, backend.installCalls)

	// The store recorded the label-derived version, not the game version.
	mod, ok := fx.store.GetInstalledMod("m1")
	require.True(t, ok)
	assert.Equal(t, "2.0.2", mod.Version)
	assert.Equal(t, []string{"Alpha/a.dll", "Alpha/b.dll", "Alpha/readme.txt"}, mod.InstalledFiles)
	assert.Equal(t, "/game", mod.GamePath)
	assert.Equal(t, "http://x/a.zip", mod.DownloadURL)
}

func TestInstall_ProgressIsMonotonicThenDismissed(t *testing.T) {
	backend := &fakeBackend{installResult: domain.InstallResult{Success: true, Message: "ok"}}
	fx := newFixture(t, backend)

	fx.orch.Install(context.Background(), alphaMod(), domain.Download{URL: "http://x/a.zip"}, "/game")

	var progress []int
	var progressID int64
	dismissed := false
	for _, ev := range *fx.events {
		switch ev.Kind {
		case notify.EventPosted:
			if ev.Notification.HasProgress {
				progressID = ev.ID
				progress = append(progress, ev.Notification.Progress)
			}
		case notify.EventProgress:
			progress = append(progress, ev.Notification.Progress)
		case notify.EventDismissed:
			if ev.ID == progressID {
				dismissed = true
			}
		}
	}

	assert.Equal(t, []int{0, 10, 25, 100}, progress)
	assert.True(t, dismissed, "progress notification must be dismissed")
}

func TestInstall_BackendReportsFailure(t *testing.T) {
	backend := &fakeBackend{installResult: domain.InstallResult{Success: false, Message: "disk full"}}
	fx := newFixture(t, backend)

	result := fx.orch.Install(context.Background(), alphaMod(), domain.Download{URL: "http://x/a.zip"}, "/game")

	assert.False(t, result.Success)
	assert.False(t, fx.store.IsModInstalled("m1"), "failed install must not be recorded")

	var errMessages []string
	for _, ev := range *fx.events {
		if ev.Kind == notify.EventPosted && ev.Notification.Type == notify.TypeError {
			errMessages = append(errMessages, ev.Notification.Message)
		}
	}
	require.Len(t, errMessages, 1)
	assert.Contains(t, errMessages[0], "disk full")
}

func TestInstall_BackendError(t *testing.T) {
	backend := &fakeBackend{installErr: errors.New("connection reset")}
	fx := newFixture(t, backend)

	result := fx.orch.Install(context.Background(), alphaMod(), domain.Download{URL: "http://x/a.zip"}, "/game")

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "connection reset")
	assert.False(t, fx.store.IsModInstalled("m1"))
}

func TestInstall_VersionFallsBackToGameVersion(t *testing.T) {
	backend := &fakeBackend{installResult: domain.InstallResult{Success: true}}
	fx := newFixture(t, backend)

	download := domain.Download{Label: "Latest build", URL: "http://x/a.zip"}
	fx.orch.Install(context.Background(), alphaMod(), download, "/game")

	mod, ok := fx.store.GetInstalledMod("m1")
	require.True(t, ok)
	assert.Equal(t, "1.0.0", mod.Version)
}

func TestResolveVersion(t *testing.T) {
	mod := domain.Mod{GameVersion: "1.0.0"}

	assert.Equal(t, "2.0.2", installer.ResolveVersion(domain.Download{Label: "Download v2.0.2"}, mod))
	assert.Equal(t, "3.1.4", installer.ResolveVersion(domain.Download{Label: "Alpha 3.1.4 (stable)"}, mod))
	assert.Equal(t, "1.0.0", installer.ResolveVersion(domain.Download{Label: "Download"}, mod))
	assert.Equal(t, "1.0.0", installer.ResolveVersion(domain.Download{Label: "v2.0"}, mod))
}

func TestUninstall_RequiresStoreEntry(t *testing.T) {
	backend := &fakeBackend{}
	fx := newFixture(t, backend)

	result := fx.orch.Uninstall(context.Background(), alphaMod(), "/game")

	assert.False(t, result.Success)
	assert.Zero(t, backend.uninstallCalls, "backend must not be called for unknown mods")
}

func TestUninstall_Success(t *testing.T) {
	backend := &fakeBackend{uninstallResult: domain.InstallResult{Success: true, Message: "removed"}}
	fx := newFixture(t, backend)

	require.NoError(t, fx.store.AddInstalledMod(context.Background(), "m1", "Alpha", "1.0.0", []string{"Alpha/a.dll"}, "/game", ""))

	result := fx.orch.Uninstall(context.Background(), alphaMod(), "/game")

	assert.True(t, result.Success)
	assert.False(t, fx.store.IsModInstalled("m1"))
}

func TestUninstall_BackendFailureLeavesStoreUntouched(t *testing.T) {
	backend := &fakeBackend{uninstallResult: domain.InstallResult{Success: false, Message: "permission denied"}}
	fx := newFixture(t, backend)

	require.NoError(t, fx.store.AddInstalledMod(context.Background(), "m1", "Alpha", "1.0.0", nil, "/game", ""))

	result := fx.orch.Uninstall(context.Background(), alphaMod(), "/game")

	assert.False(t, result.Success)
	assert.True(t, fx.store.IsModInstalled("m1"), "store entry survives a failed uninstall")
}

func TestIsModInstalledOnDisk(t *testing.T) {
	backend := &fakeBackend{installed: []string{"Alpha", "Beta"}}
	fx := newFixture(t, backend)
	ctx := context.Background()

	assert.True(t, fx.orch.IsModInstalledOnDisk(ctx, "/game", "Alpha"))
	assert.False(t, fx.orch.IsModInstalledOnDisk(ctx, "/game", "Gamma"))
}
