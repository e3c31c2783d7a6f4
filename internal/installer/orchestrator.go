// Package installer drives a single mod's install/uninstall life cycle:
// progress notifications out, backend call, installed-mods bookkeeping on
// success.
package installer

import (
	"context"
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"spool/internal/domain"
	"spool/internal/notify"
	"spool/internal/store"
)

// Backend is the installation half of the native backend. It identifies a
// mod's on-disk footprint by title, so titles must round-trip unchanged
// between install and uninstall.
type Backend interface {
	Install(ctx context.Context, downloadURL, gamePath, modTitle string) (domain.InstallResult, error)
	Uninstall(ctx context.Context, gamePath, modTitle string) (domain.InstallResult, error)
	ListInstalled(ctx context.Context, gamePath string) ([]string, error)
}

// Orchestrator coordinates the hub, the installed-mods store and the
// installation backend for one operation at a time. It keeps no state across
// calls.
type Orchestrator struct {
	backend Backend
	store   *store.Store
	hub     *notify.Hub
	log     *zap.Logger
}

// New creates an orchestrator. A nil logger falls back to zap.NewNop.
func New(backend Backend, st *store.Store, hub *notify.Hub, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{backend: backend, store: st, hub: hub, log: log}
}

// versionPattern matches a v-prefixed or bare MAJOR.MINOR.PATCH anywhere in a
// download label, e.g. "Download v2.0.2".
var versionPattern = regexp.MustCompile(`v?(\d+\.\d+\.\d+)`)

// ResolveVersion extracts the installed version from a download label,
// falling back to the mod's game version when the label carries none.
func ResolveVersion(download domain.Download, mod domain.Mod) string {
	if m := versionPattern.FindStringSubmatch(download.Label); m != nil {
		return m[1]
	}
	return mod.GameVersion
}

// Install downloads and installs mod's given download into gamePath. All
// failures are reported through the hub and the returned result; Install
// never returns an error for a failed installation, so UI callers can react
// without exception handling.
func (o *Orchestrator) Install(ctx context.Context, mod domain.Mod, download domain.Download, gamePath string) domain.InstallResult {
	progressID := o.hub.Progress("Installing Mod", fmt.Sprintf("Starting installation of %s...", mod.Title), 0)

	// Coarse synthetic progress; the backend call is not instrumented with
	// real transfer progress.
	o.hub.UpdateProgress(progressID, 10)
	o.hub.UpdateProgress(progressID, 25)

	result, err := o.backend.Install(ctx, download.URL, gamePath, mod.Title)
	if err != nil {
		o.log.Warn("install failed", zap.String("mod", mod.Title), zap.Error(err))
		o.hub.Dismiss(progressID)
		o.hub.Error("Installation Failed", fmt.Sprintf("Failed to install %s: %v", mod.Title, err))
		return domain.InstallResult{Success: false, Message: fmt.Sprintf("Installation failed: %v", err)}
	}
	if !result.Success {
		o.hub.Dismiss(progressID)
		o.hub.Error("Installation Failed", fmt.Sprintf("Failed to install %s: %s", mod.Title, result.Message))
		return result
	}

	o.hub.UpdateProgress(progressID, 100)
	o.hub.Dismiss(progressID)

	version := ResolveVersion(download, mod)
	if err := o.store.AddInstalledMod(ctx, mod.ID, mod.Title, version, result.InstalledFiles, gamePath, download.URL); err != nil {
		o.log.Warn("recording install failed", zap.String("mod", mod.Title), zap.Error(err))
		o.hub.Error("Installation Failed", fmt.Sprintf("Installed %s but could not record it: %v", mod.Title, err))
		return domain.InstallResult{Success: false, Message: fmt.Sprintf("Recording installation failed: %v", err)}
	}

	o.hub.Success("Installation Complete", fmt.Sprintf("Successfully installed %s. %s", mod.Title, result.Message))
	return result
}

// Uninstall removes mod from gamePath. The mod must be present in the
// installed-mods store; on backend failure the store entry is left untouched.
func (o *Orchestrator) Uninstall(ctx context.Context, mod domain.Mod, gamePath string) domain.InstallResult {
	if !o.store.IsModInstalled(mod.ID) {
		o.hub.Error("Uninstallation Failed", fmt.Sprintf("%s is not installed", mod.Title))
		return domain.InstallResult{Success: false, Message: domain.ErrNotInstalled.Error()}
	}

	result, err := o.backend.Uninstall(ctx, gamePath, mod.Title)
	if err != nil {
		o.log.Warn("uninstall failed", zap.String("mod", mod.Title), zap.Error(err))
		o.hub.Error("Uninstallation Failed", fmt.Sprintf("Failed to uninstall %s: %v", mod.Title, err))
		return domain.InstallResult{Success: false, Message: fmt.Sprintf("Uninstallation failed: %v", err)}
	}
	if !result.Success {
		o.hub.Error("Uninstallation Failed", fmt.Sprintf("Failed to uninstall %s: %s", mod.Title, result.Message))
		return result
	}

	if err := o.store.RemoveInstalledMod(ctx, mod.ID); err != nil {
		o.log.Warn("removing install record failed", zap.String("mod", mod.Title), zap.Error(err))
		o.hub.Error("Uninstallation Failed", fmt.Sprintf("Uninstalled %s but could not update the record: %v", mod.Title, err))
		return domain.InstallResult{Success: false, Message: fmt.Sprintf("Recording uninstallation failed: %v", err)}
	}

	o.hub.Success("Uninstallation Complete", fmt.Sprintf("Successfully uninstalled %s", mod.Title))
	return result
}

// IsModInstalledOnDisk asks the backend whether a mod directory with the
// given title exists under gamePath, independent of the store's record.
func (o *Orchestrator) IsModInstalledOnDisk(ctx context.Context, gamePath, modTitle string) bool {
	titles, err := o.backend.ListInstalled(ctx, gamePath)
	if err != nil {
		o.log.Warn("listing installed mods failed", zap.Error(err))
		return false
	}
	for _, title := range titles {
		if title == modTitle {
			return true
		}
	}
	return false
}
