package repocache

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"spool/internal/domain"
)

// maxRepositorySize caps how much of a repository document we read; anything
// larger is a broken or hostile endpoint, not a mod catalog.
const maxRepositorySize = 32 << 20

// FetchRepository downloads and validates the repository document at url
// without touching the cache.
func (c *Cache) FetchRepository(ctx context.Context, url string) (domain.Repository, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return domain.Repository{}, fmt.Errorf("%w: must start with http:// or https://", domain.ErrInvalidURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.Repository{}, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Repository{}, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Repository{}, fmt.Errorf("%w: status %d", domain.ErrFetchFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRepositorySize))
	if err != nil {
		return domain.Repository{}, fmt.Errorf("reading response: %w", err)
	}

	var repository domain.Repository
	if err := json.Unmarshal(body, &repository); err != nil {
		return domain.Repository{}, fmt.Errorf("%w: parsing repository JSON: %v", domain.ErrInvalidRepo, err)
	}

	if err := Validate(repository); err != nil {
		return domain.Repository{}, err
	}

	return repository, nil
}

// Validate checks the structural rules a repository document must satisfy
// before it is shown or cached.
func Validate(repository domain.Repository) error {
	if repository.RepoID == "" {
		return fmt.Errorf("%w: repository ID cannot be empty", domain.ErrInvalidRepo)
	}
	if repository.Name == "" {
		return fmt.Errorf("%w: repository name cannot be empty", domain.ErrInvalidRepo)
	}
	if repository.Version <= 0 {
		return fmt.Errorf("%w: repository version must be greater than 0", domain.ErrInvalidRepo)
	}

	for i, mod := range repository.Mods {
		switch {
		case mod.ID == "":
			return fmt.Errorf("%w: mod at index %d has empty ID", domain.ErrInvalidRepo, i)
		case mod.Title == "":
			return fmt.Errorf("%w: mod %q has empty title", domain.ErrInvalidRepo, mod.ID)
		case mod.Description == "":
			return fmt.Errorf("%w: mod %q has empty description", domain.ErrInvalidRepo, mod.ID)
		case mod.GameVersion == "":
			return fmt.Errorf("%w: mod %q has empty game version", domain.ErrInvalidRepo, mod.ID)
		case mod.UpdatedAt == "":
			return fmt.Errorf("%w: mod %q has empty updated_at", domain.ErrInvalidRepo, mod.ID)
		}
	}

	return nil
}
