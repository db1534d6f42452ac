// Package cache stores downloaded poster images in a local SQLite
// database so repeat posts of the same movie skip the image fetch.
package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Nomadcxx/cinepost/internal/paths"
)

// DefaultTTL is how long a cached poster stays valid.
const DefaultTTL = 24 * time.Hour

// DefaultMaxEntries bounds the cache size; the least recently used
// entries are evicted past it.
const DefaultMaxEntries = 512

// PosterCache is a TTL + LRU cache of poster image bytes keyed by URL.
type PosterCache struct {
	db         *sql.DB
	path       string
	ttl        time.Duration
	maxEntries int
	mu         sync.Mutex
}

// Open opens or creates the poster cache at the default location.
func Open(ttl time.Duration, maxEntries int) (*PosterCache, error) {
	path, err := paths.CachePath()
	if err != nil {
		return nil, fmt.Errorf("resolving cache path: %w", err)
	}
	return OpenPath(path, ttl, maxEntries)
}

// OpenPath opens or creates the poster cache at a specific path.
func OpenPath(path string, ttl time.Duration, maxEntries int) (*PosterCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	// WAL mode for concurrent reads while the bot writes.
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging cache database: %w", err)
	}

	return initCache(db, path, ttl, maxEntries)
}

// OpenInMemory opens an in-memory poster cache for testing.
func OpenInMemory(ttl time.Duration, maxEntries int) (*PosterCache, error) {
	db, err := sql.Open("sqlite", ":memory:?_cache=shared")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory cache: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging in-memory cache: %w", err)
	}

	return initCache(db, ":memory:", ttl, maxEntries)
}

func initCache(db *sql.DB, path string, ttl time.Duration, maxEntries int) (*PosterCache, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	c := &PosterCache{
		db:         db,
		path:       path,
		ttl:        ttl,
		maxEntries: maxEntries,
	}

	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating cache database: %w", err)
	}
	return c, nil
}

func (c *PosterCache) migrate() error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS posters (
			url          TEXT PRIMARY KEY,
			data         BLOB NOT NULL,
			created_at   TIMESTAMP NOT NULL,
			last_used_at TIMESTAMP NOT NULL
		)
	`)
	return err
}

// Get returns cached poster bytes for a URL, or (nil, nil) on a miss.
// Expired entries count as misses and are removed.
func (c *PosterCache) Get(url string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var data []byte
	var createdAt time.Time
	err := c.db.QueryRow(
		`SELECT data, created_at FROM posters WHERE url = ?`, url,
	).Scan(&data, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying poster cache: %w", err)
	}

	if time.Since(createdAt) > c.ttl {
		if _, err := c.db.Exec(`DELETE FROM posters WHERE url = ?`, url); err != nil {
			return nil, fmt.Errorf("evicting expired poster: %w", err)
		}
		return nil, nil
	}

	if _, err := c.db.Exec(
		`UPDATE posters SET last_used_at = ? WHERE url = ?`, time.Now(), url,
	); err != nil {
		return nil, fmt.Errorf("touching poster entry: %w", err)
	}
	return data, nil
}

// Put stores poster bytes for a URL, evicting the least recently used
// entries if the cache is over capacity.
func (c *PosterCache) Put(url string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	_, err := c.db.Exec(`
		INSERT INTO posters (url, data, created_at, last_used_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			data = excluded.data,
			created_at = excluded.created_at,
			last_used_at = excluded.last_used_at
	`, url, data, now, now)
	if err != nil {
		return fmt.Errorf("storing poster: %w", err)
	}

	return c.evictLRU()
}

// evictLRU removes the least recently used entries past maxEntries.
// Callers must hold c.mu.
func (c *PosterCache) evictLRU() error {
	var count int
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM posters`).Scan(&count); err != nil {
		return fmt.Errorf("counting cache entries: %w", err)
	}
	if count <= c.maxEntries {
		return nil
	}

	_, err := c.db.Exec(`
		DELETE FROM posters WHERE url IN (
			SELECT url FROM posters ORDER BY last_used_at ASC LIMIT ?
		)
	`, count-c.maxEntries)
	if err != nil {
		return fmt.Errorf("evicting cache entries: %w", err)
	}
	return nil
}

// Count returns the number of cached posters.
func (c *PosterCache) Count() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var count int
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM posters`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting cache entries: %w", err)
	}
	return count, nil
}

// Purge removes every cached poster.
func (c *PosterCache) Purge() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.db.Exec(`DELETE FROM posters`); err != nil {
		return fmt.Errorf("purging poster cache: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (c *PosterCache) Close() error {
	return c.db.Close()
}
