package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteCache persists entries across runs in a single SQLite file.
type SQLiteCache struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// OpenSQLite opens or creates the cache database at path. A ttl of zero
// keeps entries forever.
func OpenSQLite(path string, ttl time.Duration) (*SQLiteCache, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	const schema = `
		CREATE TABLE IF NOT EXISTS extraction_cache (
			key        TEXT PRIMARY KEY,
			value      BLOB NOT NULL,
			created_at INTEGER NOT NULL,
			expires_at INTEGER
		);
		CREATE INDEX IF NOT EXISTS idx_extraction_cache_expires ON extraction_cache(expires_at);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return &SQLiteCache{db: db, ttl: ttl, now: time.Now}, nil
}

func (c *SQLiteCache) Get(key string) ([]byte, bool) {
	var (
		value   []byte
		expires sql.NullInt64
	)
	err := c.db.QueryRow(`SELECT value, expires_at FROM extraction_cache WHERE key = ?`, key).Scan(&value, &expires)
	if err != nil {
		return nil, false
	}
	if expires.Valid && c.now().UnixNano() > expires.Int64 {
		_, _ = c.db.Exec(`DELETE FROM extraction_cache WHERE key = ?`, key)
		return nil, false
	}
	return value, true
}

// Set upserts value; a zero ttl uses the cache default.
func (c *SQLiteCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.ttl
	}
	now := c.now()
	var expires sql.NullInt64
	if ttl > 0 {
		expires = sql.NullInt64{Int64: now.Add(ttl).UnixNano(), Valid: true}
	}
	_, err := c.db.Exec(`
		INSERT INTO extraction_cache (key, value, created_at, expires_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, created_at = excluded.created_at, expires_at = excluded.expires_at`,
		key, value, now.UnixNano(), expires)
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

func (c *SQLiteCache) Delete(key string) error {
	_, err := c.db.Exec(`DELETE FROM extraction_cache WHERE key = ?`, key)
	return err
}

func (c *SQLiteCache) Clear() error {
	_, err := c.db.Exec(`DELETE FROM extraction_cache`)
	return err
}

// Prune removes expired entries and reports how many were deleted.
func (c *SQLiteCache) Prune() (int64, error) {
	res, err := c.db.Exec(`DELETE FROM extraction_cache WHERE expires_at IS NOT NULL AND expires_at < ?`, c.now().UnixNano())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (c *SQLiteCache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

var (
	_ Cache = (*SQLiteCache)(nil)
	_ Cache = (*MemoryCache)(nil)
	_ Cache = (*LayeredCache)(nil)
)
