package scrobbler

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jfmyers9/lastkit/pkg/lastfm"
)

// MaxAge is how far back Last.fm accepts scrobbles.
const MaxAge = 14 * 24 * time.Hour

// Queue is a persistent store of scrobbles waiting to be submitted, backed
// by SQLite.
type Queue struct {
	db  *sql.DB
	now func() time.Time
}

// Entry is a queued scrobble.
type Entry struct {
	ID       int64
	Scrobble lastfm.Scrobble
	Attempts int
	Error    string // last submission failure, if any
}

// NewQueue opens or creates the queue database at dbPath.
func NewQueue(dbPath string) (*Queue, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps :memory: databases consistent.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA journal_mode = WAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS pending (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			artist TEXT NOT NULL,
			track TEXT NOT NULL,
			album TEXT NOT NULL DEFAULT '',
			album_artist TEXT NOT NULL DEFAULT '',
			duration INTEGER NOT NULL DEFAULT 0,
			track_number INTEGER NOT NULL DEFAULT 0,
			mbid TEXT NOT NULL DEFAULT '',
			played_at INTEGER NOT NULL,
			attempts INTEGER NOT NULL DEFAULT 0,
			error TEXT,
			created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
		);

		CREATE INDEX IF NOT EXISTS idx_pending_played_at ON pending(played_at);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Queue{db: db, now: time.Now}, nil
}

// Close closes the database connection
func (q *Queue) Close() error {
	if q.db != nil {
		return q.db.Close()
	}
	return nil
}

// Add queues a scrobble and returns its id. The track needs an artist and a
// title.
func (q *Queue) Add(ctx context.Context, s lastfm.Scrobble) (int64, error) {
	t := s.Track
	if strings.TrimSpace(t.Artist) == "" || strings.TrimSpace(t.Track) == "" {
		return 0, fmt.Errorf("%w: artist and track are required", lastfm.ErrInvalidArgument)
	}

	result, err := q.db.ExecContext(ctx, `
		INSERT INTO pending (artist, track, album, album_artist, duration, track_number, mbid, played_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Artist, t.Track, t.Album, t.AlbumArtist, t.Duration, t.TrackNumber, t.MBTrackID,
		s.Timestamp.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert scrobble: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get insert id: %w", err)
	}
	return id, nil
}

// Pending returns queued scrobbles, oldest play first. A limit of zero or
// less returns all of them.
func (q *Queue) Pending(ctx context.Context, limit int) ([]Entry, error) {
	query := `
		SELECT id, artist, track, album, album_artist, duration, track_number, mbid,
			played_at, attempts, COALESCE(error, '')
		FROM pending
		ORDER BY played_at ASC, id ASC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending scrobbles: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var playedAt int64
		t := &e.Scrobble.Track
		err := rows.Scan(
			&e.ID,
			&t.Artist,
			&t.Track,
			&t.Album,
			&t.AlbumArtist,
			&t.Duration,
			&t.TrackNumber,
			&t.MBTrackID,
			&playedAt,
			&e.Attempts,
			&e.Error,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scrobble: %w", err)
		}
		e.Scrobble.Timestamp = time.Unix(playedAt, 0)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scrobbles: %w", err)
	}
	return entries, nil
}

// Remove deletes submitted scrobbles from the queue.
func (q *Queue) Remove(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, "DELETE FROM pending WHERE id = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, id); err != nil {
			return fmt.Errorf("failed to remove scrobble %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// MarkFailed records a failed submission attempt for the given scrobbles.
func (q *Queue) MarkFailed(ctx context.Context, ids []int64, errMsg string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, "UPDATE pending SET attempts = attempts + 1, error = ? WHERE id = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, id := range ids {
		result, err := stmt.ExecContext(ctx, errMsg, id)
		if err != nil {
			return fmt.Errorf("failed to mark scrobble %d: %w", id, err)
		}
		if n, err := result.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("scrobble with id %d not found", id)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DropExpired removes scrobbles Last.fm would reject for being older than
// MaxAge.
func (q *Queue) DropExpired(ctx context.Context) (int64, error) {
	cutoff := q.now().Add(-MaxAge).Unix()

	result, err := q.db.ExecContext(ctx, "DELETE FROM pending WHERE played_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to drop expired scrobbles: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}

// Count returns the number of queued scrobbles.
func (q *Queue) Count(ctx context.Context) (int, error) {
	var count int
	if err := q.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM pending").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count scrobbles: %w", err)
	}
	return count, nil
}
