package repo

import (
	"context"

	"spool/internal/domain"
)

// Backend is the repository half of the native backend: remote fetch plus the
// local cache of user-added repositories. Implementations live in
// internal/storage/repocache; tests substitute fakes.
type Backend interface {
	// FetchRepository performs a one-shot fetch+parse+validate of the
	// repository document at url. It never touches the cache.
	FetchRepository(ctx context.Context, url string) (domain.Repository, error)

	// GetCachedRepositories lists the cached user repositories in the order
	// they were added.
	GetCachedRepositories(ctx context.Context) ([]domain.RepositoryInfo, error)

	// LoadCachedRepository returns the cached repository for a cache ID (or
	// the repository's own repo_id).
	LoadCachedRepository(ctx context.Context, repoID string) (domain.Repository, error)

	// ClearRepositoryCache drops one cached repository; ClearAllCache drops
	// them all. Neither touches the persisted URL set.
	ClearRepositoryCache(ctx context.Context, repoID string) error
	ClearAllCache(ctx context.Context) error

	// AddRepositoryURL persists a user repository URL and primes its cache;
	// RemoveRepositoryURL forgets the URL and its cached content.
	AddRepositoryURL(ctx context.Context, url string) error
	RemoveRepositoryURL(ctx context.Context, url string) error
}

// FetchResult reports a repository validation fetch to UI callers without
// making them handle errors: Error carries the display message when Success
// is false.
type FetchResult struct {
	Success bool
	Data    *domain.Repository
	Error   string
}
