// Package repo merges the official, built-in and user-added mod repositories
// into one queryable catalog. Every read degrades to "fewer mods shown"
// rather than failing: a broken third-party repository must never hide the
// official catalog.
package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"spool/internal/domain"
)

// DefaultOfficialURL is the fixed location of the official repository index.
const DefaultOfficialURL = "https://raw.githubusercontent.com/silksong-modding/repository/main/repository.json"

// Aggregator exposes the unified mod catalog. Construct with NewAggregator.
type Aggregator struct {
	backend     Backend
	officialURL string
	builtinPath string
	log         *zap.Logger
}

// Options configures an Aggregator. Zero-value fields fall back to defaults;
// an empty BuiltinPath disables the built-in source.
type Options struct {
	OfficialURL string
	BuiltinPath string
	Logger      *zap.Logger
}

// NewAggregator creates an aggregator over the given backend.
func NewAggregator(backend Backend, opts Options) *Aggregator {
	if opts.OfficialURL == "" {
		opts.OfficialURL = DefaultOfficialURL
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Aggregator{
		backend:     backend,
		officialURL: opts.OfficialURL,
		builtinPath: opts.BuiltinPath,
		log:         opts.Logger,
	}
}

// resolvedSource pairs a repository projection with its mod list so listing
// and catalog reads stay consistent with each other.
type resolvedSource struct {
	info domain.RepositoryInfo
	mods []domain.Mod
}

// GetAllRepositories lists the available sources in fixed priority order:
// official first (when fetchable), then the built-in bundle (when non-empty),
// then user repositories in backend order. Failed sources are omitted.
func (a *Aggregator) GetAllRepositories(ctx context.Context) []domain.RepositoryInfo {
	sources := a.resolve(ctx)
	infos := make([]domain.RepositoryInfo, len(sources))
	for i, src := range sources {
		infos[i] = src.info
	}
	return infos
}

// GetAllMods concatenates every source's mods in the same priority order as
// GetAllRepositories. Duplicate IDs across repositories are preserved.
func (a *Aggregator) GetAllMods(ctx context.Context) []domain.Mod {
	var mods []domain.Mod
	for _, src := range a.resolve(ctx) {
		mods = append(mods, src.mods...)
	}
	return mods
}

// GetModsFromRepository returns the mods of one source, identified by the
// reserved tokens "official" and "built-in" or a backend cache ID. Errors and
// unknown IDs yield an empty list.
func (a *Aggregator) GetModsFromRepository(ctx context.Context, repoID string) []domain.Mod {
	switch repoID {
	case domain.RepoOfficial:
		repository, err := a.backend.FetchRepository(ctx, a.officialURL)
		if err != nil {
			a.log.Warn("official repository unavailable", zap.Error(err))
			return []domain.Mod{}
		}
		return repository.Mods
	case domain.RepoBuiltin:
		repository, err := a.loadBuiltin()
		if err != nil {
			a.log.Warn("built-in repository unavailable", zap.Error(err))
			return []domain.Mod{}
		}
		return repository.Mods
	default:
		repository, err := a.backend.LoadCachedRepository(ctx, repoID)
		if err != nil {
			a.log.Warn("cached repository unavailable", zap.String("repo_id", repoID), zap.Error(err))
			return []domain.Mod{}
		}
		return repository.Mods
	}
}

// FetchRepository validates a candidate repository URL with a one-shot fetch
// through the backend, without persisting anything. Used to preview a
// repository before AddRepository.
func (a *Aggregator) FetchRepository(ctx context.Context, url string) FetchResult {
	if err := ValidateURL(url); err != nil {
		return FetchResult{Success: false, Error: err.Error()}
	}

	repository, err := a.backend.FetchRepository(ctx, url)
	if err != nil {
		return FetchResult{Success: false, Error: fmt.Sprintf("Failed to fetch repository: %v", err)}
	}
	return FetchResult{Success: true, Data: &repository}
}

// AddRepository persists a user repository URL. Returns false on validation
// or backend failure so callers show an error instead of crashing.
func (a *Aggregator) AddRepository(ctx context.Context, url string) bool {
	if err := ValidateURL(url); err != nil {
		a.log.Warn("rejecting repository url", zap.String("url", url), zap.Error(err))
		return false
	}
	if err := a.backend.AddRepositoryURL(ctx, url); err != nil {
		a.log.Warn("adding repository failed", zap.String("url", url), zap.Error(err))
		return false
	}
	return true
}

// RemoveRepository forgets a user repository URL. Returns false on backend
// failure.
func (a *Aggregator) RemoveRepository(ctx context.Context, url string) bool {
	if err := a.backend.RemoveRepositoryURL(ctx, url); err != nil {
		a.log.Warn("removing repository failed", zap.String("url", url), zap.Error(err))
		return false
	}
	return true
}

// SearchMods is a convenience case-insensitive substring search over the full
// catalog's title, description and author fields. Callers needing filters and
// sorting use the search package on a GetAllMods snapshot instead.
func (a *Aggregator) SearchMods(ctx context.Context, query string) []domain.Mod {
	lower := strings.ToLower(query)
	var results []domain.Mod
	for _, m := range a.GetAllMods(ctx) {
		if modMatches(m, lower) {
			results = append(results, m)
		}
	}
	return results
}

// ModByID returns the first catalog mod with the given ID in aggregation
// order. Which duplicate wins when repositories share an ID is undefined
// beyond that ordering.
func (a *Aggregator) ModByID(ctx context.Context, modID string) (domain.Mod, bool) {
	for _, m := range a.GetAllMods(ctx) {
		if m.ID == modID {
			return m, true
		}
	}
	return domain.Mod{}, false
}

// ValidateURL rejects empty and non-HTTP repository URLs before any network
// traffic happens.
func ValidateURL(url string) error {
	if strings.TrimSpace(url) == "" {
		return fmt.Errorf("%w: URL is empty", domain.ErrInvalidURL)
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return fmt.Errorf("%w: must start with http:// or https://", domain.ErrInvalidURL)
	}
	return nil
}

func (a *Aggregator) resolve(ctx context.Context) []resolvedSource {
	var sources []resolvedSource

	if official, err := a.backend.FetchRepository(ctx, a.officialURL); err != nil {
		a.log.Warn("official repository unavailable", zap.Error(err))
	} else {
		sources = append(sources, resolvedSource{
			info: domain.RepositoryInfo{
				ID:       domain.RepoOfficial,
				Name:     official.Name,
				URL:      a.officialURL,
				Version:  official.Version,
				ModCount: len(official.Mods),
			},
			mods: official.Mods,
		})
	}

	if builtin, err := a.loadBuiltin(); err != nil {
		a.log.Warn("built-in repository unavailable", zap.Error(err))
	} else if len(builtin.Mods) > 0 {
		// An empty bundle stays hidden.
		sources = append(sources, resolvedSource{
			info: domain.RepositoryInfo{
				ID:       domain.RepoBuiltin,
				Name:     builtin.Name,
				Version:  builtin.Version,
				ModCount: len(builtin.Mods),
			},
			mods: builtin.Mods,
		})
	}

	cached, err := a.backend.GetCachedRepositories(ctx)
	if err != nil {
		a.log.Warn("listing cached repositories failed", zap.Error(err))
		return sources
	}
	for _, info := range cached {
		repository, err := a.backend.LoadCachedRepository(ctx, info.ID)
		if err != nil {
			a.log.Warn("cached repository unavailable", zap.String("repo_id", info.ID), zap.Error(err))
			repository = domain.Repository{}
		}
		sources = append(sources, resolvedSource{info: info, mods: repository.Mods})
	}

	return sources
}

func (a *Aggregator) loadBuiltin() (domain.Repository, error) {
	if a.builtinPath == "" {
		return domain.Repository{}, fmt.Errorf("%w: no built-in repository bundled", domain.ErrRepoNotFound)
	}

	data, err := os.ReadFile(a.builtinPath)
	if err != nil {
		return domain.Repository{}, fmt.Errorf("reading built-in repository: %w", err)
	}

	var repository domain.Repository
	if err := json.Unmarshal(data, &repository); err != nil {
		return domain.Repository{}, fmt.Errorf("parsing built-in repository: %w", err)
	}
	return repository, nil
}

func modMatches(m domain.Mod, lowerQuery string) bool {
	if strings.Contains(strings.ToLower(m.Title), lowerQuery) {
		return true
	}
	if strings.Contains(strings.ToLower(m.Description), lowerQuery) {
		return true
	}
	for _, author := range m.Authors {
		if strings.Contains(strings.ToLower(author), lowerQuery) {
			return true
		}
	}
	return false
}
