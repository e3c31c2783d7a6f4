package repo_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"spool/internal/domain"
	"spool/internal/repo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend serves canned repositories keyed by URL and cache ID.
type fakeBackend struct {
	byURL    map[string]domain.Repository
	cached   []domain.RepositoryInfo
	byCache  map[string]domain.Repository
	urls     []string
	fetchErr error
	addErr   error
	remErr   error
	fetches  []string
}

func (f *fakeBackend) FetchRepository(_ context.Context, url string) (domain.Repository, error) {
	f.fetches = append(f.fetches, url)
	if f.fetchErr != nil {
		return domain.Repository{}, f.fetchErr
	}
	repository, ok := f.byURL[url]
	if !ok {
		return domain.Repository{}, domain.ErrFetchFailed
	}
	return repository, nil
}

func (f *fakeBackend) GetCachedRepositories(context.Context) ([]domain.RepositoryInfo, error) {
	return f.cached, nil
}

func (f *fakeBackend) LoadCachedRepository(_ context.Context, repoID string) (domain.Repository, error) {
	repository, ok := f.byCache[repoID]
	if !ok {
		return domain.Repository{}, domain.ErrRepoNotFound
	}
	return repository, nil
}

func (f *fakeBackend) ClearRepositoryCache(context.Context, string) error { return nil }
func (f *fakeBackend) ClearAllCache(context.Context) error                { return nil }

func (f *fakeBackend) AddRepositoryURL(_ context.Context, url string) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.urls = append(f.urls, url)
	return nil
}

func (f *fakeBackend) RemoveRepositoryURL(context.Context, string) error {
	return f.remErr
}

func officialRepo() domain.Repository {
	return domain.Repository{
		RepoID:  "silksong-official",
		Name:    "Official Repository",
		Version: 3,
		Mods: []domain.Mod{
			{ID: "m1", Title: "Alpha", UpdatedAt: "2024-01-01T00:00:00Z"},
			{ID: "m2", Title: "Beta", UpdatedAt: "2024-02-01T00:00:00Z"},
		},
	}
}

func writeBuiltin(t *testing.T, repository domain.Repository) string {
	t.Helper()
	data, err := json.Marshal(repository)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "builtin.json")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

const officialURL = "https://example.com/official.json"

func TestGetAllRepositories_PriorityOrder(t *testing.T) {
	builtinPath := writeBuiltin(t, domain.Repository{
		RepoID:  "bundled",
		Name:    "Bundled Mods",
		Version: 1,
		Mods:    []domain.Mod{{ID: "b1", Title: "Bundled One"}},
	})

	backend := &fakeBackend{
		byURL:  map[string]domain.Repository{officialURL: officialRepo()},
		cached: []domain.RepositoryInfo{{ID: "cache-1", Name: "User Repo", URL: "https://example.com/user.json", ModCount: 1}},
		byCache: map[string]domain.Repository{
			"cache-1": {RepoID: "user", Name: "User Repo", Version: 1, Mods: []domain.Mod{{ID: "u1", Title: "User One"}}},
		},
	}

	agg := repo.NewAggregator(backend, repo.Options{OfficialURL: officialURL, BuiltinPath: builtinPath})
	infos := agg.GetAllRepositories(context.Background())

	require.Len(t, infos, 3)
	assert.Equal(t, domain.RepoOfficial, infos[0].ID)
	assert.Equal(t, 2, infos[0].ModCount)
	assert.Equal(t, domain.RepoBuiltin, infos[1].ID)
	assert.Equal(t, "cache-1", infos[2].ID)
}

func TestGetAllRepositories_OfficialFailureIsOmitted(t *testing.T) {
	backend := &fakeBackend{fetchErr: errors.New("network down")}

	agg := repo.NewAggregator(backend, repo.Options{OfficialURL: officialURL})
	infos := agg.GetAllRepositories(context.Background())

	assert.Empty(t, infos)
}

func TestGetAllRepositories_EmptyBuiltinIsHidden(t *testing.T) {
	builtinPath := writeBuiltin(t, domain.Repository{RepoID: "bundled", Name: "Bundled", Version: 1})

	backend := &fakeBackend{byURL: map[string]domain.Repository{officialURL: officialRepo()}}
	agg := repo.NewAggregator(backend, repo.Options{OfficialURL: officialURL, BuiltinPath: builtinPath})

	infos := agg.GetAllRepositories(context.Background())

	require.Len(t, infos, 1)
	assert.Equal(t, domain.RepoOfficial, infos[0].ID)
}

func TestGetAllMods_ConcatenatesWithoutDeduplication(t *testing.T) {
	// The user repo republishes m1; both copies survive.
	backend := &fakeBackend{
		byURL:  map[string]domain.Repository{officialURL: officialRepo()},
		cached: []domain.RepositoryInfo{{ID: "cache-1"}},
		byCache: map[string]domain.Repository{
			"cache-1": {RepoID: "user", Name: "User", Version: 1, Mods: []domain.Mod{{ID: "m1", Title: "Alpha Fork"}}},
		},
	}

	agg := repo.NewAggregator(backend, repo.Options{OfficialURL: officialURL})
	mods := agg.GetAllMods(context.Background())

	require.Len(t, mods, 3)
	assert.Equal(t, "Alpha", mods[0].Title)
	assert.Equal(t, "Alpha Fork", mods[2].Title)
}

func TestRoundTrip_AllModsMatchPerRepositoryConcatenation(t *testing.T) {
	builtinPath := writeBuiltin(t, domain.Repository{
		RepoID: "bundled", Name: "Bundled", Version: 1,
		Mods: []domain.Mod{{ID: "b1", Title: "Bundled One"}},
	})
	backend := &fakeBackend{
		byURL:  map[string]domain.Repository{officialURL: officialRepo()},
		cached: []domain.RepositoryInfo{{ID: "cache-1"}},
		byCache: map[string]domain.Repository{
			"cache-1": {RepoID: "user", Name: "User", Version: 1, Mods: []domain.Mod{{ID: "u1", Title: "User One"}}},
		},
	}

	agg := repo.NewAggregator(backend, repo.Options{OfficialURL: officialURL, BuiltinPath: builtinPath})
	ctx := context.Background()

	var concatenated []domain.Mod
	for _, info := range agg.GetAllRepositories(ctx) {
		concatenated = append(concatenated, agg.GetModsFromRepository(ctx, info.ID)...)
	}

	assert.Equal(t, agg.GetAllMods(ctx), concatenated)
}

func TestGetModsFromRepository_UnknownIDYieldsEmpty(t *testing.T) {
	backend := &fakeBackend{byURL: map[string]domain.Repository{officialURL: officialRepo()}}
	agg := repo.NewAggregator(backend, repo.Options{OfficialURL: officialURL})

	assert.Empty(t, agg.GetModsFromRepository(context.Background(), "no-such-cache"))
}

func TestFetchRepository_ValidatesBeforeBackendCall(t *testing.T) {
	backend := &fakeBackend{}
	agg := repo.NewAggregator(backend, repo.Options{OfficialURL: officialURL})
	ctx := context.Background()

	result := agg.FetchRepository(ctx, "")
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)

	result = agg.FetchRepository(ctx, "ftp://example.com/repo.json")
	assert.False(t, result.Success)

	assert.Empty(t, backend.fetches, "invalid URLs must not reach the backend")
}

func TestFetchRepository_Success(t *testing.T) {
	backend := &fakeBackend{byURL: map[string]domain.Repository{"https://example.com/r.json": officialRepo()}}
	agg := repo.NewAggregator(backend, repo.Options{OfficialURL: officialURL})

	result := agg.FetchRepository(context.Background(), "https://example.com/r.json")

	require.True(t, result.Success)
	require.NotNil(t, result.Data)
	assert.Equal(t, "Official Repository", result.Data.Name)
}

func TestAddRemoveRepository_ReturnFalseOnFailure(t *testing.T) {
	backend := &fakeBackend{}
	agg := repo.NewAggregator(backend, repo.Options{OfficialURL: officialURL})
	ctx := context.Background()

	assert.True(t, agg.AddRepository(ctx, "https://example.com/user.json"))
	assert.False(t, agg.AddRepository(ctx, "not-a-url"))

	backend.addErr = errors.New("cache unwritable")
	assert.False(t, agg.AddRepository(ctx, "https://example.com/other.json"))

	assert.True(t, agg.RemoveRepository(ctx, "https://example.com/user.json"))
	backend.remErr = errors.New("cache unwritable")
	assert.False(t, agg.RemoveRepository(ctx, "https://example.com/user.json"))
}

func TestSearchMods_MatchesTitleDescriptionAuthors(t *testing.T) {
	repository := domain.Repository{
		RepoID: "r1", Name: "Test", Version: 1,
		Mods: []domain.Mod{
			{ID: "m1", Title: "Alpha", Description: "first", Authors: []string{"Ann"}},
			{ID: "m2", Title: "Beta", Description: "second alpha-adjacent", Authors: []string{"Bob"}},
			{ID: "m3", Title: "Gamma", Description: "third", Authors: []string{"Carol"}},
		},
	}
	backend := &fakeBackend{byURL: map[string]domain.Repository{officialURL: repository}}
	agg := repo.NewAggregator(backend, repo.Options{OfficialURL: officialURL})
	ctx := context.Background()

	assert.Len(t, agg.SearchMods(ctx, "alpha"), 2)
	assert.Len(t, agg.SearchMods(ctx, "carol"), 1)
	assert.Empty(t, agg.SearchMods(ctx, "zzz"))
}

func TestModByID_ResolvesFirstInAggregationOrder(t *testing.T) {
	backend := &fakeBackend{
		byURL:  map[string]domain.Repository{officialURL: officialRepo()},
		cached: []domain.RepositoryInfo{{ID: "cache-1"}},
		byCache: map[string]domain.Repository{
			"cache-1": {RepoID: "user", Name: "User", Version: 1, Mods: []domain.Mod{{ID: "m1", Title: "Alpha Fork"}}},
		},
	}
	agg := repo.NewAggregator(backend, repo.Options{OfficialURL: officialURL})

	mod, ok := agg.ModByID(context.Background(), "m1")
	require.True(t, ok)
	assert.Equal(t, "Alpha", mod.Title, "official repository wins for duplicate IDs")

	_, ok = agg.ModByID(context.Background(), "missing")
	assert.False(t, ok)
}
