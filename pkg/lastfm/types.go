package lastfm

import (
	"time"
)

// ScrobbleTrack describes a track for scrobbling or now playing updates.
type ScrobbleTrack struct {
	Artist      string // Required: Artist name
	Track       string // Required: Track name
	Album       string // Optional: Album name
	AlbumArtist string // Optional: Album artist (if different from track artist)
	Duration    int    // Optional: Track duration in seconds
	TrackNumber int    // Optional: Track number on album
	MBTrackID   string // Optional: MusicBrainz track ID
}

// Scrobble represents a single scrobble with timestamp.
type Scrobble struct {
	Track     ScrobbleTrack // The track being scrobbled
	Timestamp time.Time     // When the track was played
}

// Token represents an authentication token from auth.getToken.
type Token struct {
	Token string // The authentication token
}

// Session represents an authenticated session from auth.getSession.
type Session struct {
	Key        string // Session key for authenticated requests
	Username   string // Last.fm username
	Subscriber bool   // Whether user is a subscriber
}

// IgnoredMessage explains why Last.fm ignored or corrected a submission.
type IgnoredMessage struct {
	Code int
	Text string
}

// NowPlayingResponse represents the response from track.updateNowPlaying.
type NowPlayingResponse struct {
	Artist         string
	Track          string
	Album          string
	AlbumArtist    string
	IgnoredMessage IgnoredMessage
}

// ScrobbleResult is the outcome of one scrobble in a batch.
type ScrobbleResult struct {
	Artist         string
	Track          string
	Album          string
	Timestamp      int64
	IgnoredMessage IgnoredMessage
}

// ScrobbleResponse represents the response from track.scrobble.
type ScrobbleResponse struct {
	Accepted  int // Number of scrobbles accepted
	Ignored   int // Number of scrobbles ignored
	Scrobbles []ScrobbleResult
}

// TopItem pairs an entity with its weight in a ranking: a playcount, a
// listener count or a tag count depending on the listing.
type TopItem[T any] struct {
	Item   T
	Weight int64
}

// SimilarItem pairs an entity with its similarity score in [0, 1].
type SimilarItem[T any] struct {
	Item  T
	Match float64
}

// PlayedTrack is a scrobble from a user's history.
type PlayedTrack struct {
	Track    *Track
	Album    string
	PlayedAt time.Time
}

// LovedTrack is a track a user marked as loved.
type LovedTrack struct {
	Track   *Track
	LovedAt time.Time
}

// Images maps an image size ("small", "medium", "large", "extralarge",
// "mega") to its URL.
type Images map[string]string

// Largest returns the URL of the largest available image.
func (im Images) Largest() string {
	for _, size := range []string{"mega", "extralarge", "large", "medium", "small"} {
		if u := im[size]; u != "" {
			return u
		}
	}
	return ""
}

// Wiki is the editorial text attached to artists, albums, tracks and tags.
type Wiki struct {
	Published string
	Summary   string
	Content   string
}

// Period selects the time range of a user's top charts.
type Period string

// Periods accepted by user.getTop* methods.
const (
	PeriodOverall  Period = "overall"
	PeriodWeek     Period = "7day"
	PeriodMonth    Period = "1month"
	PeriodQuarter  Period = "3month"
	PeriodHalfYear Period = "6month"
	PeriodYear     Period = "12month"
)

// AttendanceStatus is a user's response to an event invitation.
type AttendanceStatus int

// Statuses accepted by event.attend.
const (
	Attending AttendanceStatus = iota
	MaybeAttending
	NotAttending
)
