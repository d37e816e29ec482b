package lastfm

import (
	"context"
	"strings"

	"github.com/jfmyers9/lastkit/pkg/lazyseq"
)

var kindArtist = &Kind{Name: "artist", Fields: []string{"name"}, SubjectScoped: true}

// Artist is a Last.fm artist, identified by name.
type Artist struct {
	entity
	name string

	// Seeded from listings; guarded by entity.mu.
	mbid      string
	url       string
	listeners int64
	playcount int64
	images    Images

	info    lazy[*ArtistInfo]
	topTags lazy[[]TopItem[*Tag]]
}

// ArtistInfo is the result of artist.getInfo.
type ArtistInfo struct {
	Name          string
	MBID          string
	URL           string
	Listeners     int64
	Playcount     int64
	UserPlaycount int64
	Streamable    bool
	OnTour        bool
	Images        Images
	Bio           Wiki
	Tags          []*Tag
	Similar       []*Artist
}

// artistSeed carries descriptive fields found in a listing.
type artistSeed struct {
	mbid      string
	url       string
	listeners int64
	playcount int64
	images    Images
}

// Artist returns the canonical artist with the given name. Names are
// matched case-insensitively.
func (c *Client) Artist(name string) (*Artist, error) {
	return c.artist(name, nil)
}

func (c *Client) artist(name string, subject Entity) (*Artist, error) {
	name = strings.TrimSpace(name)
	return resolve(c.registry, kindArtist, Fields{"name": name}, subject, func(key Key) *Artist {
		return &Artist{
			entity: entity{client: c, kind: kindArtist, key: key},
			name:   name,
		}
	})
}

// artistFrom builds an artist from a listing element and seeds it.
func (c *Client) artistFrom(x xmlArtist, subject Entity) (*Artist, error) {
	a, err := c.artist(x.name(), subject)
	if err != nil {
		return nil, err
	}
	a.seed(artistSeed{
		mbid:      x.mbid(),
		url:       strings.TrimSpace(x.URL),
		listeners: num(x.Listeners),
		playcount: num(x.Playcount),
		images:    images(x.Images),
	})
	return a, nil
}

// seed fills descriptive fields that are still unset.
func (a *Artist) seed(s artistSeed) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.mbid == "" {
		a.mbid = s.mbid
	}
	if a.url == "" {
		a.url = s.url
	}
	if a.listeners == 0 {
		a.listeners = s.listeners
	}
	if a.playcount == 0 {
		a.playcount = s.playcount
	}
	if len(a.images) == 0 && len(s.images) > 0 {
		a.images = s.images
	}
}

// Name returns the artist name as first seen.
func (a *Artist) Name() string { return a.name }

func (a *Artist) String() string { return a.name }

// URL returns the artist's Last.fm page.
func (a *Artist) URL() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.url != "" {
		return a.url
	}
	return webURL + "/music/" + webName(a.name)
}

func (a *Artist) identity() identity {
	a.mu.Lock()
	defer a.mu.Unlock()

	return identity{mbid: a.mbid, url: a.url, names: []string{a.name}, sortName: a.name}
}

func (a *Artist) params() Params {
	return Params{"artist": a.name}
}

// Info returns artist.getInfo details, fetching them on first use.
func (a *Artist) Info(ctx context.Context) (*ArtistInfo, error) {
	return a.info.get(ctx, a.fetchInfo)
}

func (a *Artist) fetchInfo(ctx context.Context) (*ArtistInfo, error) {
	c := a.client
	var resp struct {
		Artist struct {
			xmlArtist
			Streamable string `xml:"streamable"`
			OnTour     string `xml:"ontour"`
			Stats      struct {
				Listeners     string `xml:"listeners"`
				Playcount     string `xml:"playcount"`
				UserPlaycount string `xml:"userplaycount"`
			} `xml:"stats"`
			Similar []xmlArtist `xml:"similar>artist"`
			Tags    []xmlTag    `xml:"tags>tag"`
			Bio     xmlWiki     `xml:"bio"`
		} `xml:"artist"`
	}

	params := a.params().SetOpt("username", c.username)
	if err := c.fetchInto(ctx, "artist.getInfo", params, &resp); err != nil {
		return nil, err
	}

	x := resp.Artist
	info := &ArtistInfo{
		Name:          x.name(),
		MBID:          x.mbid(),
		URL:           strings.TrimSpace(x.URL),
		Listeners:     num(x.Stats.Listeners),
		Playcount:     num(x.Stats.Playcount),
		UserPlaycount: num(x.Stats.UserPlaycount),
		Streamable:    flag(x.Streamable),
		OnTour:        flag(x.OnTour),
		Images:        images(x.Images),
		Bio:           wiki(x.Bio),
	}

	for _, t := range x.Tags {
		tag, err := c.tagFrom(t, nil)
		if err != nil {
			continue
		}
		info.Tags = append(info.Tags, tag)
	}
	for _, s := range x.Similar {
		similar, err := c.artistFrom(s, nil)
		if err != nil {
			continue
		}
		info.Similar = append(info.Similar, similar)
	}

	a.seed(artistSeed{
		mbid:      info.MBID,
		url:       info.URL,
		listeners: info.Listeners,
		playcount: info.Playcount,
		images:    info.Images,
	})
	return info, nil
}

// MBID returns the MusicBrainz id, fetching artist info if it is not
// already known.
func (a *Artist) MBID(ctx context.Context) (string, error) {
	a.mu.Lock()
	mbid := a.mbid
	a.mu.Unlock()
	if mbid != "" {
		return mbid, nil
	}

	info, err := a.Info(ctx)
	if err != nil {
		return "", err
	}
	return info.MBID, nil
}

// Listeners returns the listener count, fetching artist info if needed.
func (a *Artist) Listeners(ctx context.Context) (int64, error) {
	a.mu.Lock()
	n := a.listeners
	a.mu.Unlock()
	if n > 0 {
		return n, nil
	}

	info, err := a.Info(ctx)
	if err != nil {
		return 0, err
	}
	return info.Listeners, nil
}

// Images returns the artist images known so far.
func (a *Artist) Images() Images {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.images
}

// Similar returns up to limit similar artists (artist.getSimilar). A limit
// of zero uses the service default.
func (a *Artist) Similar(ctx context.Context, limit int) ([]SimilarItem[*Artist], error) {
	var resp struct {
		Artists []xmlArtist `xml:"similarartists>artist"`
	}
	params := a.params().SetInt("limit", limit)
	if err := a.client.fetchInto(ctx, "artist.getSimilar", params, &resp); err != nil {
		return nil, err
	}

	out := make([]SimilarItem[*Artist], 0, len(resp.Artists))
	for _, x := range resp.Artists {
		similar, err := a.client.artistFrom(x, nil)
		if err != nil {
			continue
		}
		out = append(out, SimilarItem[*Artist]{Item: similar, Match: fnum(x.Match)})
	}
	return out, nil
}

// TopTags returns the artist's top tags, cached after the first fetch.
func (a *Artist) TopTags(ctx context.Context) ([]TopItem[*Tag], error) {
	return a.topTags.get(ctx, func(ctx context.Context) ([]TopItem[*Tag], error) {
		return a.client.topTags(ctx, "artist.getTopTags", a.params())
	})
}

// TopAlbums returns the artist's albums by playcount. Pages are fetched as
// the sequence is consumed.
func (a *Artist) TopAlbums() *lazyseq.Seq[TopItem[*Album]] {
	return pagedSeq(a.client, "artist.getTopAlbums", a.params(), func(inner []byte) ([]TopItem[*Album], int, error) {
		var resp struct {
			List struct {
				xmlPaging
				Albums []xmlAlbum `xml:"album"`
			} `xml:"topalbums"`
		}
		if err := unmarshalInner(inner, &resp); err != nil {
			return nil, 0, err
		}
		items := make([]TopItem[*Album], 0, len(resp.List.Albums))
		for _, x := range resp.List.Albums {
			album, err := a.client.albumFrom(x, a.name, nil)
			if err != nil {
				continue
			}
			items = append(items, TopItem[*Album]{Item: album, Weight: num(x.Playcount)})
		}
		return items, resp.List.totalPages(), nil
	})
}

// TopTracks returns the artist's tracks by playcount, paged lazily.
func (a *Artist) TopTracks() *lazyseq.Seq[TopItem[*Track]] {
	return pagedSeq(a.client, "artist.getTopTracks", a.params(), func(inner []byte) ([]TopItem[*Track], int, error) {
		var resp struct {
			List struct {
				xmlPaging
				Tracks []xmlTrack `xml:"track"`
			} `xml:"toptracks"`
		}
		if err := unmarshalInner(inner, &resp); err != nil {
			return nil, 0, err
		}
		items := make([]TopItem[*Track], 0, len(resp.List.Tracks))
		for _, x := range resp.List.Tracks {
			track, err := a.client.trackFrom(x, a.name, nil)
			if err != nil {
				continue
			}
			items = append(items, TopItem[*Track]{Item: track, Weight: num(x.Playcount)})
		}
		return items, resp.List.totalPages(), nil
	})
}

// Events returns the artist's upcoming events (artist.getEvents).
func (a *Artist) Events(ctx context.Context) ([]*Event, error) {
	var resp struct {
		Events []xmlEvent `xml:"events>event"`
	}
	if err := a.client.fetchInto(ctx, "artist.getEvents", a.params(), &resp); err != nil {
		return nil, err
	}
	return a.client.eventsFrom(resp.Events), nil
}

// Correction returns the canonical artist Last.fm suggests for this name,
// or the artist itself when there is no correction.
func (a *Artist) Correction(ctx context.Context) (*Artist, error) {
	var resp struct {
		Artists []xmlArtist `xml:"corrections>correction>artist"`
	}
	if err := a.client.fetchInto(ctx, "artist.getCorrection", a.params(), &resp); err != nil {
		return nil, err
	}
	if len(resp.Artists) == 0 {
		return a, nil
	}
	return a.client.artistFrom(resp.Artists[0], nil)
}

// AddTags tags the artist for the authenticated user (artist.addTags).
func (a *Artist) AddTags(ctx context.Context, tags ...string) error {
	return a.client.addTags(ctx, "artist.addTags", a.params(), tags)
}

// RemoveTag removes one of the authenticated user's tags (artist.removeTag).
func (a *Artist) RemoveTag(ctx context.Context, tag string) error {
	return a.client.removeTag(ctx, "artist.removeTag", a.params(), tag)
}
