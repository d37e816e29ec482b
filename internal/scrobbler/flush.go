package scrobbler

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/lastkit/pkg/lastfm"
)

// Submitter sends scrobbles to Last.fm. *lastfm.ScrobbleService satisfies
// it.
type Submitter interface {
	ScrobbleBatch(ctx context.Context, scrobbles []lastfm.Scrobble) (*lastfm.ScrobbleResponse, error)
}

// FlushResult summarizes a Flush.
type FlushResult struct {
	Accepted int   // scrobbles Last.fm recorded
	Ignored  int   // scrobbles Last.fm refused; these are not retried
	Expired  int64 // scrobbles too old to submit
}

// Flush submits every queued scrobble in batches of lastfm.MaxBatchSize.
// Submitted scrobbles leave the queue whether Last.fm accepted or ignored
// them. When a batch fails, its scrobbles stay queued with the error
// recorded and Flush stops.
func Flush(ctx context.Context, q *Queue, sub Submitter, logger zerolog.Logger) (FlushResult, error) {
	var result FlushResult

	expired, err := q.DropExpired(ctx)
	if err != nil {
		return result, err
	}
	result.Expired = expired
	if expired > 0 {
		logger.Warn().Int64("count", expired).Msg("Dropped scrobbles older than two weeks")
	}

	for {
		batch, err := q.Pending(ctx, lastfm.MaxBatchSize)
		if err != nil {
			return result, err
		}
		if len(batch) == 0 {
			return result, nil
		}

		ids := make([]int64, len(batch))
		scrobbles := make([]lastfm.Scrobble, len(batch))
		for i, e := range batch {
			ids[i] = e.ID
			scrobbles[i] = e.Scrobble
		}

		resp, err := sub.ScrobbleBatch(ctx, scrobbles)
		if err != nil {
			if markErr := q.MarkFailed(ctx, ids, err.Error()); markErr != nil {
				logger.Error().Err(markErr).Msg("Failed to record submission error")
			}
			return result, fmt.Errorf("failed to submit %d queued scrobbles: %w", len(batch), err)
		}

		for i, r := range resp.Scrobbles {
			if r.IgnoredMessage.Code == 0 || i >= len(batch) {
				continue
			}
			logger.Info().
				Str("artist", batch[i].Scrobble.Track.Artist).
				Str("track", batch[i].Scrobble.Track.Track).
				Int("code", r.IgnoredMessage.Code).
				Str("reason", r.IgnoredMessage.Text).
				Msg("Last.fm ignored queued scrobble")
		}

		if err := q.Remove(ctx, ids); err != nil {
			return result, err
		}
		result.Accepted += resp.Accepted
		result.Ignored += resp.Ignored
		logger.Debug().
			Int("accepted", resp.Accepted).
			Int("ignored", resp.Ignored).
			Msg("Submitted queued scrobbles")
	}
}
