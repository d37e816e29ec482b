package lastfm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"
)

func newScrobbleClient(api *fakeAPI) *Client {
	return api.client(Config{
		APISecret:  "test-secret",
		SessionKey: "test-session-key",
	})
}

// TestScrobbleService_UpdateNowPlaying tests the UpdateNowPlaying method.
func TestScrobbleService_UpdateNowPlaying(t *testing.T) {
	tests := []struct {
		name        string
		response    string
		track       ScrobbleTrack
		wantIgnored IgnoredMessage
		wantErr     bool
		errContains string
	}{
		{
			name: "success",
			response: lfmOK(`
	<nowplaying>
		<artist corrected="0">The Beatles</artist>
		<track corrected="0">Yesterday</track>
		<album corrected="0">Help!</album>
		<albumArtist corrected="0">The Beatles</albumArtist>
		<ignoredMessage code="0"></ignoredMessage>
	</nowplaying>`),
			track: ScrobbleTrack{
				Artist: "The Beatles",
				Track:  "Yesterday",
				Album:  "Help!",
			},
		},
		{
			name: "with all optional fields",
			response: lfmOK(`
	<nowplaying>
		<artist corrected="0">The Beatles</artist>
		<track corrected="0">Yesterday</track>
		<album corrected="0">Help!</album>
		<albumArtist corrected="0">The Beatles</albumArtist>
	</nowplaying>`),
			track: ScrobbleTrack{
				Artist:      "The Beatles",
				Track:       "Yesterday",
				Album:       "Help!",
				AlbumArtist: "The Beatles",
				Duration:    125,
				TrackNumber: 1,
				MBTrackID:   "mbid-123",
			},
		},
		{
			name: "ignored",
			response: lfmOK(`
	<nowplaying>
		<artist corrected="0">The Beatles</artist>
		<track corrected="0">Yesterday</track>
		<ignoredMessage code="1">Artist was ignored</ignoredMessage>
	</nowplaying>`),
			track: ScrobbleTrack{
				Artist: "The Beatles",
				Track:  "Yesterday",
			},
			wantIgnored: IgnoredMessage{Code: 1, Text: "Artist was ignored"},
		},
		{
			name:     "api error - invalid session key",
			response: lfmFailed(ErrCodeInvalidSessionKey, "Invalid session key"),
			track: ScrobbleTrack{
				Artist: "The Beatles",
				Track:  "Yesterday",
			},
			wantErr:     true,
			errContains: "error 9",
		},
		{
			name:        "missing track name",
			track:       ScrobbleTrack{Artist: "The Beatles"},
			wantErr:     true,
			errContains: "artist and track are required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI(t).on("track.updateNowPlaying", tt.response)
			client := newScrobbleClient(api)

			resp, err := client.Scrobble().UpdateNowPlaying(context.Background(), tt.track)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("expected error to contain %q, got %v", tt.errContains, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			form := api.lastForm()
			if m := api.lastHTTPMethod(); m != http.MethodPost {
				t.Errorf("expected POST request, got %s", m)
			}
			if sk := form.Get("sk"); sk != "test-session-key" {
				t.Errorf("expected sk test-session-key, got %s", sk)
			}
			if form.Get("api_sig") == "" {
				t.Error("expected api_sig to be present")
			}
			if artist := form.Get("artist"); artist != tt.track.Artist {
				t.Errorf("expected artist %s, got %s", tt.track.Artist, artist)
			}
			if tt.track.Duration > 0 {
				if duration := form.Get("duration"); duration != fmt.Sprintf("%d", tt.track.Duration) {
					t.Errorf("expected duration %d, got %s", tt.track.Duration, duration)
				}
			} else if form.Has("duration") {
				t.Error("expected no duration parameter")
			}
			if tt.track.MBTrackID != "" && form.Get("mbid") != tt.track.MBTrackID {
				t.Errorf("expected mbid %s, got %s", tt.track.MBTrackID, form.Get("mbid"))
			}

			if resp.Artist != tt.track.Artist {
				t.Errorf("expected artist %s, got %s", tt.track.Artist, resp.Artist)
			}
			if resp.Track != tt.track.Track {
				t.Errorf("expected track %s, got %s", tt.track.Track, resp.Track)
			}
			if resp.IgnoredMessage != tt.wantIgnored {
				t.Errorf("expected ignored message %+v, got %+v", tt.wantIgnored, resp.IgnoredMessage)
			}
		})
	}
}

// TestScrobbleService_Scrobble tests the Scrobble method (single scrobble).
func TestScrobbleService_Scrobble(t *testing.T) {
	timestamp := time.Unix(1234567890, 0)
	api := newFakeAPI(t).on("track.scrobble", lfmOK(`
	<scrobbles accepted="1" ignored="0">
		<scrobble>
			<track corrected="0">Yesterday</track>
			<artist corrected="0">The Beatles</artist>
			<album corrected="0">Help!</album>
			<timestamp>1234567890</timestamp>
			<ignoredMessage code="0"></ignoredMessage>
		</scrobble>
	</scrobbles>`))
	client := newScrobbleClient(api)

	track := ScrobbleTrack{Artist: "The Beatles", Track: "Yesterday", Album: "Help!"}
	resp, err := client.Scrobble().Scrobble(context.Background(), track, timestamp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	form := api.lastForm()
	if got := form.Get("artist[0]"); got != "The Beatles" {
		t.Errorf("expected artist[0] The Beatles, got %s", got)
	}
	if got := form.Get("timestamp[0]"); got != "1234567890" {
		t.Errorf("expected timestamp[0] 1234567890, got %s", got)
	}

	if resp.Accepted != 1 || resp.Ignored != 0 {
		t.Errorf("expected 1 accepted, 0 ignored, got %d, %d", resp.Accepted, resp.Ignored)
	}
	if len(resp.Scrobbles) != 1 {
		t.Fatalf("expected 1 scrobble result, got %d", len(resp.Scrobbles))
	}
	if got := resp.Scrobbles[0]; got.Track != "Yesterday" || got.Timestamp != 1234567890 {
		t.Errorf("unexpected scrobble result %+v", got)
	}
}

// TestScrobbleService_ScrobbleBatch tests batch submission.
func TestScrobbleService_ScrobbleBatch(t *testing.T) {
	api := newFakeAPI(t).on("track.scrobble", lfmOK(`
	<scrobbles accepted="1" ignored="1">
		<scrobble>
			<track corrected="0">Yesterday</track>
			<artist corrected="0">The Beatles</artist>
			<timestamp>1234567890</timestamp>
			<ignoredMessage code="0"></ignoredMessage>
		</scrobble>
		<scrobble>
			<track corrected="0">Let It Be</track>
			<artist corrected="0">The Beatles</artist>
			<timestamp>1234567950</timestamp>
			<ignoredMessage code="3">Timestamp too old</ignoredMessage>
		</scrobble>
	</scrobbles>`))
	client := newScrobbleClient(api)

	scrobbles := []Scrobble{
		{
			Track:     ScrobbleTrack{Artist: "The Beatles", Track: "Yesterday", TrackNumber: 13},
			Timestamp: time.Unix(1234567890, 0),
		},
		{
			Track:     ScrobbleTrack{Artist: "The Beatles", Track: "Let It Be"},
			Timestamp: time.Unix(1234567950, 0),
		},
	}

	resp, err := client.Scrobble().ScrobbleBatch(context.Background(), scrobbles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	form := api.lastForm()
	for i, s := range scrobbles {
		idx := "[" + strconv.Itoa(i) + "]"
		if got := form.Get("track" + idx); got != s.Track.Track {
			t.Errorf("expected track%s %s, got %s", idx, s.Track.Track, got)
		}
		if got := form.Get("timestamp" + idx); got != strconv.FormatInt(s.Timestamp.Unix(), 10) {
			t.Errorf("expected timestamp%s %d, got %s", idx, s.Timestamp.Unix(), got)
		}
	}
	if got := form.Get("trackNumber[0]"); got != "13" {
		t.Errorf("expected trackNumber[0] 13, got %s", got)
	}
	if form.Has("trackNumber[1]") {
		t.Error("expected no trackNumber[1] parameter")
	}

	if resp.Accepted != 1 || resp.Ignored != 1 {
		t.Errorf("expected 1 accepted, 1 ignored, got %d, %d", resp.Accepted, resp.Ignored)
	}
	want := IgnoredMessage{Code: 3, Text: "Timestamp too old"}
	if got := resp.Scrobbles[1].IgnoredMessage; got != want {
		t.Errorf("expected ignored message %+v, got %+v", want, got)
	}
}

// TestScrobbleService_ScrobbleBatch_MaxBatchSize tests the batch limit.
func TestScrobbleService_ScrobbleBatch_MaxBatchSize(t *testing.T) {
	api := newFakeAPI(t)
	client := newScrobbleClient(api)

	scrobbles := make([]Scrobble, MaxBatchSize+1)
	for i := range scrobbles {
		scrobbles[i] = Scrobble{
			Track:     ScrobbleTrack{Artist: "Artist", Track: fmt.Sprintf("Track %d", i)},
			Timestamp: time.Now(),
		}
	}

	_, err := client.Scrobble().ScrobbleBatch(context.Background(), scrobbles)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if n := api.calls("track.scrobble"); n != 0 {
		t.Errorf("expected no requests, got %d", n)
	}
}

// TestScrobbleService_EmptyBatch tests that an empty batch is a no-op.
func TestScrobbleService_EmptyBatch(t *testing.T) {
	api := newFakeAPI(t)
	client := newScrobbleClient(api)

	resp, err := client.Scrobble().ScrobbleBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Accepted != 0 || len(resp.Scrobbles) != 0 {
		t.Errorf("expected empty response, got %+v", resp)
	}
}

// TestScrobbleService_NoSessionKey tests that scrobbling needs a session.
func TestScrobbleService_NoSessionKey(t *testing.T) {
	client, err := NewClient(Config{
		APIKey:    "test-api-key",
		APISecret: "test-secret",
	})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	ctx := context.Background()
	track := ScrobbleTrack{Artist: "Artist", Track: "Track"}

	_, err = client.Scrobble().UpdateNowPlaying(ctx, track)
	if !errors.Is(err, ErrNoSessionKey) {
		t.Errorf("UpdateNowPlaying: expected ErrNoSessionKey, got %v", err)
	}

	_, err = client.Scrobble().Scrobble(ctx, track, time.Now())
	if !errors.Is(err, ErrNoSessionKey) {
		t.Errorf("Scrobble: expected ErrNoSessionKey, got %v", err)
	}
}

// ExampleScrobbleService_Scrobble demonstrates scrobbling a finished track.
func ExampleScrobbleService_Scrobble() {
	client, err := NewClient(Config{
		APIKey:     "your-api-key",
		APISecret:  "your-api-secret",
		SessionKey: "your-session-key",
	})
	if err != nil {
		log.Fatal(err)
	}

	track := ScrobbleTrack{
		Artist:   "The Beatles",
		Track:    "Yesterday",
		Album:    "Help!",
		Duration: 123,
	}

	resp, err := client.Scrobble().Scrobble(context.Background(), track, time.Now().Add(-2*time.Minute))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Accepted: %d, Ignored: %d\n", resp.Accepted, resp.Ignored)
}
