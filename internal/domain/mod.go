package domain

import "time"

// RepoOfficial and RepoBuiltin are the reserved repository IDs for the two
// sources every installation has; user-added repositories get backend-assigned
// cache IDs instead.
const (
	RepoOfficial = "official"
	RepoBuiltin  = "built-in"
)

// Download is a single downloadable artifact offered by a mod.
// Labels are display text ("Download v2.0.2") and are not guaranteed unique.
type Download struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Mod is one catalog entry as published by a repository. Mods are immutable
// once loaded; ID is only unique within the repository that published it.
type Mod struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Requirements []string   `json:"requirements"`
	Images       []string   `json:"images"`
	Downloads    []Download `json:"downloads"`
	Homepage     string     `json:"homepage"`
	Authors      []string   `json:"authors"`
	GameVersion  string     `json:"game_version"`
	UpdatedAt    string     `json:"updated_at"` // ISO-8601
}

// Repository is a named, versioned collection of mods. Version is a content
// version used for cache-freshness comparison, not semantic versioning.
type Repository struct {
	RepoID  string `json:"repo_id"`
	Name    string `json:"name"`
	Version int    `json:"version"`
	Mods    []Mod  `json:"mods"`
}

// RepositoryInfo is the list-view projection of a Repository. It is derived
// on demand and never persisted on its own.
type RepositoryInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Version     int    `json:"version"`
	ModCount    int    `json:"mod_count"`
	LastUpdated string `json:"last_updated,omitempty"`
}

// InstalledMod asserts that a mod's files are present at GamePath. The store
// keeps at most one entry per ModID; re-installing supersedes the old entry.
type InstalledMod struct {
	ModID          string   `json:"modId"`
	ModTitle       string   `json:"modTitle"`
	Version        string   `json:"version"`
	InstalledAt    string   `json:"installedAt"`
	InstalledFiles []string `json:"installedFiles"`
	GamePath       string   `json:"gamePath"`
	DownloadURL    string   `json:"downloadUrl,omitempty"`
}

// InstalledModsRecord is the persisted-state layout owned by the installation
// backend: the full installed set plus the time it was last written.
type InstalledModsRecord struct {
	Mods        []InstalledMod `json:"mods"`
	LastUpdated string         `json:"lastUpdated"`
}

// InstallResult is the installation backend's response for install and
// uninstall requests.
type InstallResult struct {
	Success        bool     `json:"success"`
	Message        string   `json:"message"`
	InstalledFiles []string `json:"installed_files"`
}

// Timestamp formats t the way repository documents and the installed-mods
// record carry timestamps.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
