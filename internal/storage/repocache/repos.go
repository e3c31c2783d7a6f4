package repocache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"spool/internal/domain"
)

// AddRepositoryURL validates url with a live fetch, persists it, and primes
// its cache entry. Re-adding a known URL refreshes its cached content.
func (c *Cache) AddRepositoryURL(ctx context.Context, url string) error {
	repository, err := c.FetchRepository(ctx, url)
	if err != nil {
		return err
	}

	cacheID, err := c.cacheIDForURL(ctx, url)
	if errors.Is(err, sql.ErrNoRows) {
		cacheID = uuid.NewString()
		if _, err := c.db.ExecContext(ctx,
			"INSERT INTO repository_urls (cache_id, url) VALUES (?, ?)", cacheID, url); err != nil {
			return fmt.Errorf("persisting repository url: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("looking up repository url: %w", err)
	}

	return c.storeRepository(ctx, cacheID, repository)
}

// RemoveRepositoryURL forgets a user repository and its cached content.
// Removing an unknown URL is a no-op.
func (c *Cache) RemoveRepositoryURL(ctx context.Context, url string) error {
	if _, err := c.db.ExecContext(ctx, "DELETE FROM repository_urls WHERE url = ?", url); err != nil {
		return fmt.Errorf("removing repository url: %w", err)
	}
	return nil
}

// RepositoryURLs returns the persisted user repository URLs in added order.
func (c *Cache) RepositoryURLs(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, "SELECT url FROM repository_urls ORDER BY added_at, cache_id")
	if err != nil {
		return nil, fmt.Errorf("listing repository urls: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("scanning repository url: %w", err)
		}
		urls = append(urls, url)
	}
	return urls, rows.Err()
}

// GetCachedRepositories lists cached user repositories in added order.
// URLs whose cache has been cleared are skipped until the next refresh.
func (c *Cache) GetCachedRepositories(ctx context.Context) ([]domain.RepositoryInfo, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT r.cache_id, r.name, u.url, r.version, r.mod_count, COALESCE(r.last_updated, '')
		FROM repositories r
		JOIN repository_urls u ON u.cache_id = r.cache_id
		ORDER BY u.added_at, u.cache_id
	`)
	if err != nil {
		return nil, fmt.Errorf("listing cached repositories: %w", err)
	}
	defer rows.Close()

	var infos []domain.RepositoryInfo
	for rows.Next() {
		var info domain.RepositoryInfo
		if err := rows.Scan(&info.ID, &info.Name, &info.URL, &info.Version, &info.ModCount, &info.LastUpdated); err != nil {
			return nil, fmt.Errorf("scanning cached repository: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// LoadCachedRepository returns the cached repository for a cache ID, or,
// failing that, the first cache entry whose document declares repoID as its
// own repo_id.
func (c *Cache) LoadCachedRepository(ctx context.Context, repoID string) (domain.Repository, error) {
	var payload []byte
	err := c.db.QueryRowContext(ctx,
		"SELECT payload FROM repositories WHERE cache_id = ?", repoID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		err = c.db.QueryRowContext(ctx,
			"SELECT payload FROM repositories WHERE repo_id = ? LIMIT 1", repoID).Scan(&payload)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Repository{}, fmt.Errorf("%w: %s", domain.ErrRepoNotFound, repoID)
	}
	if err != nil {
		return domain.Repository{}, fmt.Errorf("loading cached repository: %w", err)
	}

	var repository domain.Repository
	if err := json.Unmarshal(payload, &repository); err != nil {
		return domain.Repository{}, fmt.Errorf("%w: corrupt cache payload: %v", domain.ErrInvalidRepo, err)
	}
	return repository, nil
}

// ClearRepositoryCache drops one cached repository document, keeping its URL
// registered for the next refresh.
func (c *Cache) ClearRepositoryCache(ctx context.Context, repoID string) error {
	if _, err := c.db.ExecContext(ctx, "DELETE FROM repositories WHERE cache_id = ?", repoID); err != nil {
		return fmt.Errorf("clearing repository cache: %w", err)
	}
	return nil
}

// ClearAllCache drops every cached repository document, keeping the URL set.
func (c *Cache) ClearAllCache(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, "DELETE FROM repositories"); err != nil {
		return fmt.Errorf("clearing repository cache: %w", err)
	}
	return nil
}

// RefreshAll re-fetches every persisted repository URL and updates its cache
// entry. Per-URL failures are logged and skipped so one dead repository does
// not block the rest; the error reports how many failed.
func (c *Cache) RefreshAll(ctx context.Context) error {
	urls, err := c.RepositoryURLs(ctx)
	if err != nil {
		return err
	}

	var failed int
	for _, url := range urls {
		repository, err := c.FetchRepository(ctx, url)
		if err != nil {
			c.log.Warn("refreshing repository failed", zap.String("url", url), zap.Error(err))
			failed++
			continue
		}

		cacheID, err := c.cacheIDForURL(ctx, url)
		if err != nil {
			c.log.Warn("refreshing repository failed", zap.String("url", url), zap.Error(err))
			failed++
			continue
		}
		if err := c.storeRepository(ctx, cacheID, repository); err != nil {
			c.log.Warn("refreshing repository failed", zap.String("url", url), zap.Error(err))
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d repositories failed to refresh", domain.ErrFetchFailed, failed, len(urls))
	}
	return nil
}

func (c *Cache) cacheIDForURL(ctx context.Context, url string) (string, error) {
	var cacheID string
	err := c.db.QueryRowContext(ctx, "SELECT cache_id FROM repository_urls WHERE url = ?", url).Scan(&cacheID)
	return cacheID, err
}

// storeRepository upserts a cache entry unless the cached content version is
// newer than the incoming one.
func (c *Cache) storeRepository(ctx context.Context, cacheID string, repository domain.Repository) error {
	var cachedVersion int
	err := c.db.QueryRowContext(ctx,
		"SELECT version FROM repositories WHERE cache_id = ?", cacheID).Scan(&cachedVersion)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking cached version: %w", err)
	}
	if err == nil && repository.Version < cachedVersion {
		c.log.Debug("keeping newer cached repository",
			zap.String("cache_id", cacheID),
			zap.Int("cached", cachedVersion),
			zap.Int("incoming", repository.Version))
		return nil
	}

	payload, err := json.Marshal(repository)
	if err != nil {
		return fmt.Errorf("serializing repository: %w", err)
	}

	lastUpdated := latestUpdate(repository)
	if _, err := c.db.ExecContext(ctx, `
		INSERT INTO repositories (cache_id, repo_id, name, version, mod_count, last_updated, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(cache_id) DO UPDATE SET
			repo_id = excluded.repo_id,
			name = excluded.name,
			version = excluded.version,
			mod_count = excluded.mod_count,
			last_updated = excluded.last_updated,
			payload = excluded.payload
	`, cacheID, repository.RepoID, repository.Name, repository.Version, len(repository.Mods), lastUpdated, payload); err != nil {
		return fmt.Errorf("caching repository: %w", err)
	}
	return nil
}

// latestUpdate returns the most recent mod updated_at in the repository, or
// empty when nothing parses.
func latestUpdate(repository domain.Repository) string {
	var latest time.Time
	var out string
	for _, mod := range repository.Mods {
		t, err := time.Parse(time.RFC3339, mod.UpdatedAt)
		if err != nil {
			continue
		}
		if t.After(latest) {
			latest = t
			out = mod.UpdatedAt
		}
	}
	return out
}
