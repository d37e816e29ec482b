package lastfm

import (
	"context"
	"strings"
	"time"
)

var kindTrack = &Kind{Name: "track", Fields: []string{"artist", "title"}, SubjectScoped: true}

// Track is a Last.fm track, identified by its artist and title.
type Track struct {
	entity
	artist *Artist
	title  string

	id        string
	mbid      string
	url       string
	duration  time.Duration
	listeners int64
	playcount int64
	images    Images

	info    lazy[*TrackInfo]
	topTags lazy[[]TopItem[*Tag]]
}

// TrackInfo is the result of track.getInfo.
type TrackInfo struct {
	Title         string
	Artist        *Artist
	ID            string
	MBID          string
	URL           string
	Duration      time.Duration
	Listeners     int64
	Playcount     int64
	UserPlaycount int64
	UserLoved     bool
	Album         *Album
	Tags          []*Tag
	Wiki          Wiki
}

// Track returns the canonical track by artistName titled title.
func (c *Client) Track(artistName, title string) (*Track, error) {
	return c.track(artistName, title, nil)
}

func (c *Client) track(artistName, title string, subject Entity) (*Track, error) {
	artist, err := c.artist(artistName, subject)
	if err != nil {
		return nil, &IdentityError{Kind: kindTrack.Name, Field: "artist"}
	}
	return c.trackOf(artist, title, subject)
}

func (c *Client) trackOf(artist *Artist, title string, subject Entity) (*Track, error) {
	title = strings.TrimSpace(title)
	fields := Fields{"artist": string(artist.Key()), "title": title}
	return resolve(c.registry, kindTrack, fields, subject, func(key Key) *Track {
		return &Track{
			entity: entity{client: c, kind: kindTrack, key: key},
			artist: artist,
			title:  title,
		}
	})
}

// trackFrom builds a track from a listing element. fallbackArtist is used
// when the element carries no artist of its own, as in album track lists.
func (c *Client) trackFrom(x xmlTrack, fallbackArtist string, subject Entity) (*Track, error) {
	artistName := x.Artist.name()
	if artistName == "" {
		artistName = fallbackArtist
	}

	artist, err := c.artist(artistName, subject)
	if err != nil {
		return nil, &IdentityError{Kind: kindTrack.Name, Field: "artist"}
	}
	if x.Artist.name() != "" {
		artist.seed(artistSeed{mbid: x.Artist.mbid(), url: strings.TrimSpace(x.Artist.URL)})
	}

	track, err := c.trackOf(artist, x.Name, subject)
	if err != nil {
		return nil, err
	}
	track.seed(x)
	return track, nil
}

func (t *Track) seed(x xmlTrack) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.id == "" {
		t.id = strings.TrimSpace(x.ID)
	}
	if t.mbid == "" {
		t.mbid = strings.TrimSpace(x.MBID)
	}
	if t.url == "" {
		t.url = strings.TrimSpace(x.URL)
	}
	if t.duration == 0 {
		t.duration = trackDuration(x.Duration)
	}
	if t.listeners == 0 {
		t.listeners = num(x.Listeners)
	}
	if t.playcount == 0 {
		t.playcount = num(x.Playcount)
	}
	if len(t.images) == 0 && len(x.Images) > 0 {
		t.images = images(x.Images)
	}
}

// trackDuration parses a duration in milliseconds. Album track lists report
// seconds instead, so values below 10000 are read as seconds.
func trackDuration(s string) time.Duration {
	n := num(s)
	if n <= 0 {
		return 0
	}
	if n < 10000 {
		return time.Duration(n) * time.Second
	}
	return time.Duration(n) * time.Millisecond
}

// Artist returns the track artist.
func (t *Track) Artist() *Artist { return t.artist }

// Title returns the track title as first seen.
func (t *Track) Title() string { return t.title }

func (t *Track) String() string { return t.artist.Name() + " - " + t.title }

// URL returns the track's Last.fm page.
func (t *Track) URL() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.url != "" {
		return t.url
	}
	return webURL + "/music/" + webName(t.artist.Name()) + "/_/" + webName(t.title)
}

// Images returns the track images known so far.
func (t *Track) Images() Images {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.images
}

func (t *Track) identity() identity {
	t.mu.Lock()
	defer t.mu.Unlock()

	return identity{
		id:       t.id,
		mbid:     t.mbid,
		url:      t.url,
		names:    []string{t.artist.Name(), t.title},
		sortName: t.title,
	}
}

func (t *Track) params() Params {
	return Params{"artist": t.artist.Name(), "track": t.title}
}

// Info returns track.getInfo details, fetching them on first use.
func (t *Track) Info(ctx context.Context) (*TrackInfo, error) {
	return t.info.get(ctx, t.fetchInfo)
}

func (t *Track) fetchInfo(ctx context.Context) (*TrackInfo, error) {
	c := t.client
	var resp struct {
		Track struct {
			xmlTrack
			UserPlaycount string   `xml:"userplaycount"`
			UserLoved     string   `xml:"userloved"`
			Tags          []xmlTag `xml:"toptags>tag"`
			Wiki          xmlWiki  `xml:"wiki"`
		} `xml:"track"`
	}

	params := t.params().SetOpt("username", c.username)
	if err := c.fetchInto(ctx, "track.getInfo", params, &resp); err != nil {
		return nil, err
	}

	x := resp.Track
	t.seed(x.xmlTrack)

	info := &TrackInfo{
		Title:         strings.TrimSpace(x.Name),
		Artist:        t.artist,
		ID:            strings.TrimSpace(x.ID),
		MBID:          strings.TrimSpace(x.MBID),
		URL:           strings.TrimSpace(x.URL),
		Duration:      trackDuration(x.Duration),
		Listeners:     num(x.Listeners),
		Playcount:     num(x.Playcount),
		UserPlaycount: num(x.UserPlaycount),
		UserLoved:     flag(x.UserLoved),
		Wiki:          wiki(x.Wiki),
	}

	if x.Album.name() != "" {
		if album, err := c.albumFrom(x.Album, t.artist.Name(), nil); err == nil {
			info.Album = album
		}
	}
	for _, tx := range x.Tags {
		tag, err := c.tagFrom(tx, nil)
		if err != nil {
			continue
		}
		info.Tags = append(info.Tags, tag)
	}
	return info, nil
}

// MBID returns the MusicBrainz id, fetching track info if needed.
func (t *Track) MBID(ctx context.Context) (string, error) {
	t.mu.Lock()
	mbid := t.mbid
	t.mu.Unlock()
	if mbid != "" {
		return mbid, nil
	}

	info, err := t.Info(ctx)
	if err != nil {
		return "", err
	}
	return info.MBID, nil
}

// Duration returns the track length, fetching track info if needed.
func (t *Track) Duration(ctx context.Context) (time.Duration, error) {
	t.mu.Lock()
	d := t.duration
	t.mu.Unlock()
	if d > 0 {
		return d, nil
	}

	info, err := t.Info(ctx)
	if err != nil {
		return 0, err
	}
	return info.Duration, nil
}

// Similar returns up to limit similar tracks (track.getSimilar).
func (t *Track) Similar(ctx context.Context, limit int) ([]SimilarItem[*Track], error) {
	var resp struct {
		Tracks []xmlTrack `xml:"similartracks>track"`
	}
	params := t.params().SetInt("limit", limit)
	if err := t.client.fetchInto(ctx, "track.getSimilar", params, &resp); err != nil {
		return nil, err
	}

	out := make([]SimilarItem[*Track], 0, len(resp.Tracks))
	for _, x := range resp.Tracks {
		similar, err := t.client.trackFrom(x, "", nil)
		if err != nil {
			continue
		}
		out = append(out, SimilarItem[*Track]{Item: similar, Match: fnum(x.Match)})
	}
	return out, nil
}

// TopTags returns the track's top tags, cached after the first fetch.
func (t *Track) TopTags(ctx context.Context) ([]TopItem[*Tag], error) {
	return t.topTags.get(ctx, func(ctx context.Context) ([]TopItem[*Tag], error) {
		return t.client.topTags(ctx, "track.getTopTags", t.params())
	})
}

// Love marks the track as loved by the authenticated user.
func (t *Track) Love(ctx context.Context) error {
	_, err := t.client.post(ctx, "track.love", t.params(), true)
	return err
}

// Unlove removes the track from the authenticated user's loved tracks.
func (t *Track) Unlove(ctx context.Context) error {
	_, err := t.client.post(ctx, "track.unlove", t.params(), true)
	return err
}

// AddTags tags the track for the authenticated user.
func (t *Track) AddTags(ctx context.Context, tags ...string) error {
	return t.client.addTags(ctx, "track.addTags", t.params(), tags)
}

// RemoveTag removes one of the authenticated user's tags from the track.
func (t *Track) RemoveTag(ctx context.Context, tag string) error {
	return t.client.removeTag(ctx, "track.removeTag", t.params(), tag)
}
