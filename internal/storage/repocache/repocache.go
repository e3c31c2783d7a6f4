// Package repocache implements the repository backend: one-shot HTTP fetches
// of repository documents plus a SQLite cache of user-added repositories.
package repocache

import (
	"database/sql"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Cache is the SQLite-backed repository cache. It satisfies repo.Backend.
type Cache struct {
	db         *sql.DB
	httpClient *http.Client
	log        *zap.Logger
}

// New opens (or creates) the cache database at path and runs migrations.
// A nil httpClient falls back to http.DefaultClient, a nil logger to
// zap.NewNop.
func New(path string, httpClient *http.Client, log *zap.Logger) (*Cache, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if log == nil {
		log = zap.NewNop()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	// Single connection: the cache has one writer, and :memory: databases
	// exist per-connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting pragmas: %w", err)
	}

	cache := &Cache{db: db, httpClient: httpClient, log: log}
	if err := cache.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return cache, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) migrate() error {
	if _, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	var version int
	if err := c.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version); err != nil {
		return fmt.Errorf("getting schema version: %w", err)
	}

	migrations := []func(*Cache) error{
		migrateV1,
	}

	for i := version; i < len(migrations); i++ {
		if err := migrations[i](c); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		if _, err := c.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", i+1); err != nil {
			return fmt.Errorf("recording migration %d: %w", i+1, err)
		}
	}

	return nil
}

func migrateV1(c *Cache) error {
	statements := []string{
		`CREATE TABLE repository_urls (
			cache_id TEXT PRIMARY KEY,
			url TEXT NOT NULL UNIQUE,
			added_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE repositories (
			cache_id TEXT PRIMARY KEY REFERENCES repository_urls(cache_id) ON DELETE CASCADE,
			repo_id TEXT NOT NULL,
			name TEXT NOT NULL,
			version INTEGER NOT NULL,
			mod_count INTEGER NOT NULL,
			last_updated TEXT,
			payload BLOB NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := c.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
