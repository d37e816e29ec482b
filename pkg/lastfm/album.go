package lastfm

import (
	"context"
	"strings"
)

var kindAlbum = &Kind{Name: "album", Fields: []string{"artist", "name"}, SubjectScoped: true}

// Album is a Last.fm album, identified by its artist and title.
type Album struct {
	entity
	artist *Artist
	title  string

	mbid      string
	url       string
	listeners int64
	playcount int64
	images    Images

	info    lazy[*AlbumInfo]
	topTags lazy[[]TopItem[*Tag]]
}

// AlbumInfo is the result of album.getInfo.
type AlbumInfo struct {
	Title         string
	Artist        *Artist
	MBID          string
	URL           string
	ReleaseDate   string
	Listeners     int64
	Playcount     int64
	UserPlaycount int64
	Images        Images
	Tracks        []*Track
	Tags          []*Tag
	Wiki          Wiki
}

// Album returns the canonical album by artistName titled title.
func (c *Client) Album(artistName, title string) (*Album, error) {
	return c.album(artistName, title, nil)
}

func (c *Client) album(artistName, title string, subject Entity) (*Album, error) {
	artist, err := c.artist(artistName, subject)
	if err != nil {
		return nil, &IdentityError{Kind: kindAlbum.Name, Field: "artist"}
	}
	return c.albumOf(artist, title, subject)
}

// albumOf returns the canonical album for an already-resolved artist.
func (c *Client) albumOf(artist *Artist, title string, subject Entity) (*Album, error) {
	title = strings.TrimSpace(title)
	fields := Fields{"artist": string(artist.Key()), "name": title}
	return resolve(c.registry, kindAlbum, fields, subject, func(key Key) *Album {
		return &Album{
			entity: entity{client: c, kind: kindAlbum, key: key},
			artist: artist,
			title:  title,
		}
	})
}

// albumFrom builds an album from a listing element. fallbackArtist is used
// when the element carries no artist of its own.
func (c *Client) albumFrom(x xmlAlbum, fallbackArtist string, subject Entity) (*Album, error) {
	artistName := x.Artist.name()
	if artistName == "" {
		artistName = fallbackArtist
	}

	artist, err := c.artist(artistName, subject)
	if err != nil {
		return nil, &IdentityError{Kind: kindAlbum.Name, Field: "artist"}
	}
	if x.Artist.name() != "" {
		artist.seed(artistSeed{mbid: x.Artist.mbid(), url: strings.TrimSpace(x.Artist.URL)})
	}

	album, err := c.albumOf(artist, x.name(), subject)
	if err != nil {
		return nil, err
	}
	album.seed(x)
	return album, nil
}

func (al *Album) seed(x xmlAlbum) {
	al.mu.Lock()
	defer al.mu.Unlock()

	if al.mbid == "" {
		al.mbid = x.mbid()
	}
	if al.url == "" {
		al.url = strings.TrimSpace(x.URL)
	}
	if al.listeners == 0 {
		al.listeners = num(x.Listeners)
	}
	if al.playcount == 0 {
		al.playcount = num(x.Playcount)
	}
	if len(al.images) == 0 && len(x.Images) > 0 {
		al.images = images(x.Images)
	}
}

// Artist returns the album artist.
func (al *Album) Artist() *Artist { return al.artist }

// Title returns the album title as first seen.
func (al *Album) Title() string { return al.title }

func (al *Album) String() string { return al.artist.Name() + " - " + al.title }

// URL returns the album's Last.fm page.
func (al *Album) URL() string {
	al.mu.Lock()
	defer al.mu.Unlock()

	if al.url != "" {
		return al.url
	}
	return webURL + "/music/" + webName(al.artist.Name()) + "/" + webName(al.title)
}

// Images returns the album images known so far.
func (al *Album) Images() Images {
	al.mu.Lock()
	defer al.mu.Unlock()
	return al.images
}

func (al *Album) identity() identity {
	al.mu.Lock()
	defer al.mu.Unlock()

	return identity{
		mbid:     al.mbid,
		url:      al.url,
		names:    []string{al.artist.Name(), al.title},
		sortName: al.title,
	}
}

func (al *Album) params() Params {
	return Params{"artist": al.artist.Name(), "album": al.title}
}

// Info returns album.getInfo details, fetching them on first use.
func (al *Album) Info(ctx context.Context) (*AlbumInfo, error) {
	return al.info.get(ctx, al.fetchInfo)
}

func (al *Album) fetchInfo(ctx context.Context) (*AlbumInfo, error) {
	c := al.client
	var resp struct {
		Album struct {
			xmlAlbum
			ReleaseDate   string     `xml:"releasedate"`
			UserPlaycount string     `xml:"userplaycount"`
			Tracks        []xmlTrack `xml:"tracks>track"`
			Tags          []xmlTag   `xml:"toptags>tag"`
			Tags2         []xmlTag   `xml:"tags>tag"`
			Wiki          xmlWiki    `xml:"wiki"`
		} `xml:"album"`
	}

	params := al.params().SetOpt("username", c.username)
	if err := c.fetchInto(ctx, "album.getInfo", params, &resp); err != nil {
		return nil, err
	}

	x := resp.Album
	al.seed(x.xmlAlbum)

	info := &AlbumInfo{
		Title:         x.name(),
		Artist:        al.artist,
		MBID:          x.mbid(),
		URL:           strings.TrimSpace(x.URL),
		ReleaseDate:   strings.TrimSpace(x.ReleaseDate),
		Listeners:     num(x.Listeners),
		Playcount:     num(x.Playcount),
		UserPlaycount: num(x.UserPlaycount),
		Images:        images(x.Images),
		Wiki:          wiki(x.Wiki),
	}

	for _, t := range x.Tracks {
		track, err := c.trackFrom(t, al.artist.Name(), nil)
		if err != nil {
			continue
		}
		info.Tracks = append(info.Tracks, track)
	}
	for _, t := range append(x.Tags, x.Tags2...) {
		tag, err := c.tagFrom(t, nil)
		if err != nil {
			continue
		}
		info.Tags = append(info.Tags, tag)
	}
	return info, nil
}

// MBID returns the MusicBrainz id, fetching album info if needed.
func (al *Album) MBID(ctx context.Context) (string, error) {
	al.mu.Lock()
	mbid := al.mbid
	al.mu.Unlock()
	if mbid != "" {
		return mbid, nil
	}

	info, err := al.Info(ctx)
	if err != nil {
		return "", err
	}
	return info.MBID, nil
}

// Tracks returns the album's track list.
func (al *Album) Tracks(ctx context.Context) ([]*Track, error) {
	info, err := al.Info(ctx)
	if err != nil {
		return nil, err
	}
	return info.Tracks, nil
}

// TopTags returns the album's top tags, cached after the first fetch.
func (al *Album) TopTags(ctx context.Context) ([]TopItem[*Tag], error) {
	return al.topTags.get(ctx, func(ctx context.Context) ([]TopItem[*Tag], error) {
		return al.client.topTags(ctx, "album.getTopTags", al.params())
	})
}

// AddTags tags the album for the authenticated user.
func (al *Album) AddTags(ctx context.Context, tags ...string) error {
	return al.client.addTags(ctx, "album.addTags", al.params(), tags)
}

// RemoveTag removes one of the authenticated user's tags from the album.
func (al *Album) RemoveTag(ctx context.Context, tag string) error {
	return al.client.removeTag(ctx, "album.removeTag", al.params(), tag)
}
