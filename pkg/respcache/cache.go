// Package respcache is a persistent TTL cache for Last.fm API responses,
// backed by SQLite. It implements lastfm.Cache.
package respcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Cache stores response bodies keyed by request URL.
type Cache struct {
	db  *sql.DB
	now func() time.Time
}

// Stats describes the cache contents.
type Stats struct {
	Entries int
	Expired int
	Bytes   int64
}

// Open opens or creates the cache database at path. Use ":memory:" for a
// cache that lives only as long as the process.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA journal_mode = WAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS responses (
			url TEXT PRIMARY KEY,
			body BLOB NOT NULL,
			expires_at INTEGER NOT NULL,
			created_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_expires_at ON responses(expires_at);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Cache{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Get returns the body stored under key. Expired entries are misses.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var body []byte
	err := c.db.QueryRowContext(ctx,
		"SELECT body FROM responses WHERE url = ? AND expires_at > ?",
		key, c.now().UnixNano(),
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached response: %w", err)
	}
	return body, true, nil
}

// Set stores body under key until ttl has passed, replacing any previous
// entry.
func (c *Cache) Set(ctx context.Context, key string, body []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	now := c.now()

	query := `
		INSERT INTO responses (url, body, expires_at, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			body = excluded.body,
			expires_at = excluded.expires_at,
			created_at = excluded.created_at
	`
	if _, err := c.db.ExecContext(ctx, query, key, body, now.Add(ttl).UnixNano(), now.UnixNano()); err != nil {
		return fmt.Errorf("failed to store response: %w", err)
	}
	return nil
}

// Delete removes the entry stored under key, if any.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx, "DELETE FROM responses WHERE url = ?", key); err != nil {
		return fmt.Errorf("failed to delete cached response: %w", err)
	}
	return nil
}

// Purge removes expired entries and returns how many were deleted.
func (c *Cache) Purge(ctx context.Context) (int64, error) {
	result, err := c.db.ExecContext(ctx, "DELETE FROM responses WHERE expires_at <= ?", c.now().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired responses: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}

// Clear removes every entry and returns how many were deleted.
func (c *Cache) Clear(ctx context.Context) (int64, error) {
	result, err := c.db.ExecContext(ctx, "DELETE FROM responses")
	if err != nil {
		return 0, fmt.Errorf("failed to clear responses: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}

// Stats counts live and expired entries.
func (c *Cache) Stats(ctx context.Context) (Stats, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN expires_at <= ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(LENGTH(body)), 0)
		FROM responses
	`

	var s Stats
	if err := c.db.QueryRowContext(ctx, query, c.now().UnixNano()).Scan(&s.Entries, &s.Expired, &s.Bytes); err != nil {
		return Stats{}, fmt.Errorf("failed to count responses: %w", err)
	}
	return s, nil
}
