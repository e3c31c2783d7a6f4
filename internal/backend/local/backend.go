// Package local implements the installation backend on the local filesystem:
// it downloads mod archives, extracts them into the game's mod-loader
// directory, and owns the durable installed-mods record.
package local

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"spool/internal/domain"
)

// modsSubdir is where the mod loader picks up mods, relative to the game
// root.
const modsSubdir = "BepInEx/mods"

// Backend installs and uninstalls mods under a game path. Mods are addressed
// by title: each one owns the directory <gamePath>/BepInEx/mods/<title>.
type Backend struct {
	dataDir    string
	httpClient *http.Client
	log        *zap.Logger
}

// New creates a backend that keeps its installed-mods record under dataDir.
// A nil httpClient falls back to http.DefaultClient, a nil logger to
// zap.NewNop.
func New(dataDir string, httpClient *http.Client, log *zap.Logger) *Backend {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Backend{dataDir: dataDir, httpClient: httpClient, log: log}
}

// Install downloads the archive at downloadURL and extracts it into the
// mod's directory. Returned file paths are relative to the mods root and
// include the title directory.
func (b *Backend) Install(ctx context.Context, downloadURL, gamePath, modTitle string) (domain.InstallResult, error) {
	title := sanitizeTitle(modTitle)
	if title == "" {
		return domain.InstallResult{}, fmt.Errorf("mod title %q is not installable", modTitle)
	}

	tmpDir, err := os.MkdirTemp("", "spool-download-")
	if err != nil {
		return domain.InstallResult{}, fmt.Errorf("creating download dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	archivePath := filepath.Join(tmpDir, "mod.zip")
	if err := b.download(ctx, downloadURL, archivePath); err != nil {
		return domain.InstallResult{}, err
	}

	modDir := filepath.Join(gamePath, filepath.FromSlash(modsSubdir), title)

	// Reinstalling replaces the previous footprint wholesale.
	if err := os.RemoveAll(modDir); err != nil {
		return domain.InstallResult{}, fmt.Errorf("clearing previous install: %w", err)
	}

	files, err := extractZip(archivePath, modDir)
	if err != nil {
		os.RemoveAll(modDir)
		return domain.InstallResult{}, err
	}

	installed := make([]string, len(files))
	for i, f := range files {
		installed[i] = filepath.ToSlash(filepath.Join(title, f))
	}

	b.log.Info("installed mod", zap.String("title", modTitle), zap.Int("files", len(installed)))
	return domain.InstallResult{
		Success:        true,
		Message:        fmt.Sprintf("Extracted %d files", len(installed)),
		InstalledFiles: installed,
	}, nil
}

// Uninstall removes the mod's directory. A missing directory is reported as
// an unsuccessful result, not an error: the caller's record was stale.
func (b *Backend) Uninstall(ctx context.Context, gamePath, modTitle string) (domain.InstallResult, error) {
	title := sanitizeTitle(modTitle)
	modDir := filepath.Join(gamePath, filepath.FromSlash(modsSubdir), title)

	info, err := os.Stat(modDir)
	if err != nil || !info.IsDir() {
		return domain.InstallResult{
			Success: false,
			Message: fmt.Sprintf("%s is not installed", modTitle),
		}, nil
	}

	var removed []string
	err = filepath.WalkDir(modDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(modDir, path)
		if err != nil {
			return err
		}
		removed = append(removed, filepath.ToSlash(filepath.Join(title, rel)))
		return nil
	})
	if err != nil {
		return domain.InstallResult{}, fmt.Errorf("listing installed files: %w", err)
	}

	if err := os.RemoveAll(modDir); err != nil {
		return domain.InstallResult{}, fmt.Errorf("removing mod directory: %w", err)
	}

	b.log.Info("uninstalled mod", zap.String("title", modTitle), zap.Int("files", len(removed)))
	return domain.InstallResult{
		Success:        true,
		Message:        fmt.Sprintf("Removed %d files", len(removed)),
		InstalledFiles: removed,
	}, nil
}

// ListInstalled returns the mod titles present under the game's mod
// directory, sorted. A missing mods directory means nothing is installed.
func (b *Backend) ListInstalled(ctx context.Context, gamePath string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(gamePath, filepath.FromSlash(modsSubdir)))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing mods directory: %w", err)
	}

	var titles []string
	for _, entry := range entries {
		if entry.IsDir() {
			titles = append(titles, entry.Name())
		}
	}
	sort.Strings(titles)
	return titles, nil
}

// sanitizeTitle reduces a mod title to a safe single directory name.
func sanitizeTitle(title string) string {
	title = strings.TrimSpace(title)
	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_")
	title = replacer.Replace(title)
	for strings.Contains(title, "..") {
		title = strings.ReplaceAll(title, "..", ".")
	}
	return strings.Trim(title, ". ")
}
