package scrobbler

import (
	"errors"
	"fmt"
	"time"
)

// Last.fm scrobbling rules
const (
	// MinimumTrackDuration is the shortest track Last.fm accepts.
	MinimumTrackDuration = 30 * time.Second

	// ScrobblePercentage is the share of a track that must be played.
	ScrobblePercentage = 0.5

	// MaxScrobbleThreshold caps the required play time for long tracks.
	MaxScrobbleThreshold = 4 * time.Minute
)

var (
	// ErrTrackTooShort means the track is under MinimumTrackDuration.
	ErrTrackTooShort = errors.New("track is shorter than 30 seconds")

	// ErrNotPlayedLongEnough means too little of the track was played.
	ErrNotPlayedLongEnough = errors.New("track was not played long enough")
)

// Threshold returns how long a track of the given length must play before it
// counts as a scrobble: half its length, capped at four minutes. It returns
// -1 for tracks too short to ever scrobble.
func Threshold(length time.Duration) time.Duration {
	if length < MinimumTrackDuration {
		return -1
	}
	return min(time.Duration(float64(length)*ScrobblePercentage), MaxScrobbleThreshold)
}

// CheckPlay reports whether playing a track of the given length for played
// earns a scrobble. A zero length means the length is unknown and the play
// is accepted.
func CheckPlay(length, played time.Duration) error {
	if length == 0 {
		return nil
	}
	threshold := Threshold(length)
	if threshold < 0 {
		return ErrTrackTooShort
	}
	if played < threshold {
		return fmt.Errorf("%w: played %s of the required %s", ErrNotPlayedLongEnough,
			played.Round(time.Second), threshold.Round(time.Second))
	}
	return nil
}
