package scrobbler

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jfmyers9/lastkit/pkg/lastfm"
)

// createTestQueue creates an in-memory SQLite queue for testing
func createTestQueue(t *testing.T) *Queue {
	t.Helper()

	queue, err := NewQueue(":memory:")
	if err != nil {
		t.Fatalf("failed to create test queue: %v", err)
	}

	t.Cleanup(func() {
		_ = queue.Close()
	})

	return queue
}

func play(artist, track string, at time.Time) lastfm.Scrobble {
	return lastfm.Scrobble{
		Track:     lastfm.ScrobbleTrack{Artist: artist, Track: track, Duration: 180},
		Timestamp: at,
	}
}

func TestNewQueue(t *testing.T) {
	t.Run("in-memory database", func(t *testing.T) {
		queue, err := NewQueue(":memory:")
		if err != nil {
			t.Fatalf("failed to create in-memory queue: %v", err)
		}
		defer func() { _ = queue.Close() }()

		if queue.db == nil {
			t.Error("queue database is nil")
		}
	})

	t.Run("file-based database survives reopening", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "queue.db")
		ctx := context.Background()

		queue, err := NewQueue(path)
		if err != nil {
			t.Fatalf("failed to create file-based queue: %v", err)
		}
		if _, err := queue.Add(ctx, play("Muse", "Hysteria", time.Now())); err != nil {
			t.Fatalf("failed to add scrobble: %v", err)
		}
		_ = queue.Close()

		queue, err = NewQueue(path)
		if err != nil {
			t.Fatalf("failed to reopen queue: %v", err)
		}
		defer func() { _ = queue.Close() }()

		count, err := queue.Count(ctx)
		if err != nil {
			t.Fatalf("failed to count scrobbles: %v", err)
		}
		if count != 1 {
			t.Errorf("expected 1 queued scrobble after reopening, got %d", count)
		}
	})
}

func TestQueueAdd(t *testing.T) {
	queue := createTestQueue(t)
	ctx := context.Background()

	at := time.Unix(1700000000, 0)
	s := lastfm.Scrobble{
		Track: lastfm.ScrobbleTrack{
			Artist:      "Muse",
			Track:       "Hysteria",
			Album:       "Absolution",
			AlbumArtist: "Muse",
			Duration:    227,
			TrackNumber: 8,
			MBTrackID:   "mbid-1",
		},
		Timestamp: at,
	}

	id, err := queue.Add(ctx, s)
	if err != nil {
		t.Fatalf("failed to add scrobble: %v", err)
	}
	if id <= 0 {
		t.Errorf("expected positive id, got %d", id)
	}

	pending, err := queue.Pending(ctx, 0)
	if err != nil {
		t.Fatalf("failed to get pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending scrobble, got %d", len(pending))
	}

	got := pending[0]
	if got.ID != id {
		t.Errorf("expected id %d, got %d", id, got.ID)
	}
	if got.Scrobble.Track != s.Track {
		t.Errorf("expected track %+v, got %+v", s.Track, got.Scrobble.Track)
	}
	if !got.Scrobble.Timestamp.Equal(at) {
		t.Errorf("expected timestamp %v, got %v", at, got.Scrobble.Timestamp)
	}
	if got.Attempts != 0 || got.Error != "" {
		t.Errorf("expected a fresh entry, got attempts=%d error=%q", got.Attempts, got.Error)
	}
}

func TestQueueAdd_RequiresArtistAndTrack(t *testing.T) {
	queue := createTestQueue(t)

	_, err := queue.Add(context.Background(), play("Muse", " ", time.Now()))
	if !errors.Is(err, lastfm.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestQueuePending_OrderAndLimit(t *testing.T) {
	queue := createTestQueue(t)
	ctx := context.Background()

	base := time.Unix(1700000000, 0)
	for i, name := range []string{"third", "first", "second"} {
		offset := []time.Duration{2, 0, 1}[i] * time.Minute
		if _, err := queue.Add(ctx, play("Artist", name, base.Add(offset))); err != nil {
			t.Fatalf("failed to add scrobble: %v", err)
		}
	}

	pending, err := queue.Pending(ctx, 2)
	if err != nil {
		t.Fatalf("failed to get pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 scrobbles, got %d", len(pending))
	}
	if pending[0].Scrobble.Track.Track != "first" || pending[1].Scrobble.Track.Track != "second" {
		t.Errorf("expected oldest plays first, got %q then %q",
			pending[0].Scrobble.Track.Track, pending[1].Scrobble.Track.Track)
	}
}

func TestQueueRemove(t *testing.T) {
	queue := createTestQueue(t)
	ctx := context.Background()

	var ids []int64
	for i := range 5 {
		id, err := queue.Add(ctx, play("Artist", "Track", time.Now().Add(time.Duration(i)*time.Second)))
		if err != nil {
			t.Fatalf("failed to add scrobble: %v", err)
		}
		ids = append(ids, id)
	}

	if err := queue.Remove(ctx, ids[:3]); err != nil {
		t.Fatalf("failed to remove scrobbles: %v", err)
	}
	if err := queue.Remove(ctx, nil); err != nil {
		t.Fatalf("removing nothing failed: %v", err)
	}

	count, err := queue.Count(ctx)
	if err != nil {
		t.Fatalf("failed to count scrobbles: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 queued scrobbles, got %d", count)
	}
}

func TestQueueMarkFailed(t *testing.T) {
	queue := createTestQueue(t)
	ctx := context.Background()

	id, err := queue.Add(ctx, play("Muse", "Hysteria", time.Now()))
	if err != nil {
		t.Fatalf("failed to add scrobble: %v", err)
	}

	for _, msg := range []string{"network timeout", "service offline"} {
		if err := queue.MarkFailed(ctx, []int64{id}, msg); err != nil {
			t.Fatalf("failed to mark failure: %v", err)
		}
	}

	pending, err := queue.Pending(ctx, 0)
	if err != nil {
		t.Fatalf("failed to get pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected the scrobble to stay queued, got %d entries", len(pending))
	}
	if pending[0].Attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", pending[0].Attempts)
	}
	if pending[0].Error != "service offline" {
		t.Errorf("expected the latest error, got %q", pending[0].Error)
	}

	if err := queue.MarkFailed(ctx, []int64{id + 100}, "boom"); err == nil {
		t.Error("expected an error for an unknown id")
	}
}

func TestQueueDropExpired(t *testing.T) {
	queue := createTestQueue(t)
	ctx := context.Background()

	now := time.Unix(1700000000, 0)
	queue.now = func() time.Time { return now }

	for _, age := range []time.Duration{15 * 24 * time.Hour, MaxAge + time.Second, time.Hour} {
		if _, err := queue.Add(ctx, play("Artist", "Track", now.Add(-age))); err != nil {
			t.Fatalf("failed to add scrobble: %v", err)
		}
	}

	dropped, err := queue.DropExpired(ctx)
	if err != nil {
		t.Fatalf("failed to drop expired scrobbles: %v", err)
	}
	if dropped != 2 {
		t.Errorf("expected 2 dropped scrobbles, got %d", dropped)
	}

	count, err := queue.Count(ctx)
	if err != nil {
		t.Fatalf("failed to count scrobbles: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 queued scrobble, got %d", count)
	}
}

func TestQueueConcurrentAdds(t *testing.T) {
	queue := createTestQueue(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := queue.Add(ctx, play("Artist", "Track", time.Now().Add(time.Duration(i)*time.Second)))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("concurrent add failed: %v", err)
		}
	}

	count, err := queue.Count(ctx)
	if err != nil {
		t.Fatalf("failed to count scrobbles: %v", err)
	}
	if count != 20 {
		t.Errorf("expected 20 queued scrobbles, got %d", count)
	}
}
