package lastfm

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ScrobbleService provides scrobbling operations for the Last.fm API.
type ScrobbleService struct {
	client *Client
}

const (
	// MaxBatchSize is the maximum number of scrobbles allowed in a single batch.
	MaxBatchSize = 50
)

// UpdateNowPlaying updates the "now playing" status on Last.fm.
//
// This should be called when a track starts playing. It does not count
// as a scrobble and does not affect play counts.
//
// Requires authentication (session key must be set via SetSessionKey).
//
// Example:
//
//	track := lastfm.ScrobbleTrack{
//	    Artist: "The Beatles",
//	    Track:  "Yesterday",
//	    Album:  "Help!",
//	}
//	resp, err := client.Scrobble().UpdateNowPlaying(ctx, track)
func (s *ScrobbleService) UpdateNowPlaying(ctx context.Context, track ScrobbleTrack) (*NowPlayingResponse, error) {
	if err := validateTrack(track); err != nil {
		return nil, err
	}

	params := Params{}
	addTrackParams(params, track, "")

	inner, err := s.client.post(ctx, "track.updateNowPlaying", params, true)
	if err != nil {
		return nil, err
	}

	var resp xmlNowPlaying
	if err := unmarshalInner(inner, &resp); err != nil {
		return nil, fmt.Errorf("lastfm: failed to parse now playing response: %w", err)
	}

	np := resp.NowPlaying
	return &NowPlayingResponse{
		Artist:         strings.TrimSpace(np.Artist.Text),
		Track:          strings.TrimSpace(np.Track.Text),
		Album:          strings.TrimSpace(np.Album.Text),
		AlbumArtist:    strings.TrimSpace(np.AlbumArtist.Text),
		IgnoredMessage: np.IgnoredMessage.message(),
	}, nil
}

// Scrobble submits a single scrobble to Last.fm.
//
// A track should only be scrobbled when:
//   - The track is longer than 30 seconds, AND
//   - The track has been played for at least 50% of its duration OR 4 minutes
//     (whichever comes first)
//
// Requires authentication (session key must be set via SetSessionKey).
func (s *ScrobbleService) Scrobble(ctx context.Context, track ScrobbleTrack, timestamp time.Time) (*ScrobbleResponse, error) {
	return s.ScrobbleBatch(ctx, []Scrobble{{Track: track, Timestamp: timestamp}})
}

// ScrobbleBatch submits up to MaxBatchSize scrobbles in a single request.
// Larger batches are rejected with ErrInvalidArgument; split them first.
//
// Requires authentication (session key must be set via SetSessionKey).
//
// Example:
//
//	resp, err := client.Scrobble().ScrobbleBatch(ctx, scrobbles)
//	if err != nil {
//	    log.Printf("Failed to scrobble batch: %v", err)
//	}
//	fmt.Printf("Accepted: %d, Ignored: %d\n", resp.Accepted, resp.Ignored)
func (s *ScrobbleService) ScrobbleBatch(ctx context.Context, scrobbles []Scrobble) (*ScrobbleResponse, error) {
	if len(scrobbles) == 0 {
		return &ScrobbleResponse{}, nil
	}
	if len(scrobbles) > MaxBatchSize {
		return nil, fmt.Errorf("%w: %d scrobbles exceeds batch limit of %d", ErrInvalidArgument, len(scrobbles), MaxBatchSize)
	}

	params := Params{}
	for i, sc := range scrobbles {
		if err := validateTrack(sc.Track); err != nil {
			return nil, fmt.Errorf("scrobble %d: %w", i, err)
		}
		idx := "[" + strconv.Itoa(i) + "]"
		addTrackParams(params, sc.Track, idx)
		params["timestamp"+idx] = strconv.FormatInt(sc.Timestamp.Unix(), 10)
	}

	inner, err := s.client.post(ctx, "track.scrobble", params, true)
	if err != nil {
		return nil, err
	}

	var resp xmlScrobbles
	if err := unmarshalInner(inner, &resp); err != nil {
		return nil, fmt.Errorf("lastfm: failed to parse scrobble response: %w", err)
	}

	result := &ScrobbleResponse{
		Accepted:  int(num(resp.Scrobbles.Accepted)),
		Ignored:   int(num(resp.Scrobbles.Ignored)),
		Scrobbles: make([]ScrobbleResult, 0, len(resp.Scrobbles.Items)),
	}
	for _, x := range resp.Scrobbles.Items {
		result.Scrobbles = append(result.Scrobbles, ScrobbleResult{
			Artist:         strings.TrimSpace(x.Artist.Text),
			Track:          strings.TrimSpace(x.Track.Text),
			Album:          strings.TrimSpace(x.Album.Text),
			Timestamp:      num(x.Timestamp),
			IgnoredMessage: x.IgnoredMessage.message(),
		})
	}
	return result, nil
}

func validateTrack(t ScrobbleTrack) error {
	if strings.TrimSpace(t.Artist) == "" || strings.TrimSpace(t.Track) == "" {
		return fmt.Errorf("%w: artist and track are required", ErrInvalidArgument)
	}
	return nil
}

// addTrackParams sets the track fields of a submission. idx is "" for a
// single track or "[i]" for a batch entry.
func addTrackParams(p Params, t ScrobbleTrack, idx string) {
	p["artist"+idx] = t.Artist
	p["track"+idx] = t.Track
	p.SetOpt("album"+idx, t.Album)
	p.SetOpt("albumArtist"+idx, t.AlbumArtist)
	p.SetInt("duration"+idx, t.Duration)
	p.SetInt("trackNumber"+idx, t.TrackNumber)
	p.SetOpt("mbid"+idx, t.MBTrackID)
}

// xmlCorrected is a submitted field as echoed back, possibly corrected.
type xmlCorrected struct {
	Corrected string `xml:"corrected,attr"`
	Text      string `xml:",chardata"`
}

type xmlIgnored struct {
	Code int    `xml:"code,attr"`
	Text string `xml:",chardata"`
}

func (x xmlIgnored) message() IgnoredMessage {
	return IgnoredMessage{Code: x.Code, Text: strings.TrimSpace(x.Text)}
}

type xmlNowPlaying struct {
	NowPlaying struct {
		Artist         xmlCorrected `xml:"artist"`
		Track          xmlCorrected `xml:"track"`
		Album          xmlCorrected `xml:"album"`
		AlbumArtist    xmlCorrected `xml:"albumArtist"`
		IgnoredMessage xmlIgnored   `xml:"ignoredMessage"`
	} `xml:"nowplaying"`
}

type xmlScrobbles struct {
	Scrobbles struct {
		Accepted string `xml:"accepted,attr"`
		Ignored  string `xml:"ignored,attr"`
		Items    []struct {
			Artist         xmlCorrected `xml:"artist"`
			Track          xmlCorrected `xml:"track"`
			Album          xmlCorrected `xml:"album"`
			Timestamp      string       `xml:"timestamp"`
			IgnoredMessage xmlIgnored   `xml:"ignoredMessage"`
		} `xml:"scrobble"`
	} `xml:"scrobbles"`
}
