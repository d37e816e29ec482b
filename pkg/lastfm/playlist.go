package lastfm

import (
	"context"
	"strings"
	"time"
)

var (
	kindPlaylist     = &Kind{Name: "playlist", Fields: []string{"user", "id"}, SubjectScoped: true}
	kindPlaylistPage = &Kind{Name: "playlistpage", Fields: []string{"url"}}
)

type xmlPlaylist struct {
	ID          string     `xml:"id"`
	Title       string     `xml:"title"`
	Description string     `xml:"description"`
	Date        string     `xml:"date"`
	Size        string     `xml:"size"`
	Duration    string     `xml:"duration"`
	Creator     string     `xml:"creator"`
	URL         string     `xml:"url"`
	Images      []xmlImage `xml:"image"`
}

// Playlist is a user's saved playlist.
type Playlist struct {
	entity
	owner *User
	id    string

	title       string
	description string
	size        int
	duration    time.Duration

	page lazy[*PlaylistPage]
}

// Playlist returns the canonical playlist id owned by user.
func (c *Client) Playlist(user, id string) (*Playlist, error) {
	owner, err := c.User(user)
	if err != nil {
		return nil, &IdentityError{Kind: kindPlaylist.Name, Field: "user"}
	}
	return c.playlistOf(owner, id)
}

func (c *Client) playlistOf(owner *User, id string) (*Playlist, error) {
	id = strings.TrimSpace(id)
	fields := Fields{"user": string(owner.Key()), "id": id}
	return resolve(c.registry, kindPlaylist, fields, nil, func(key Key) *Playlist {
		return &Playlist{
			entity: entity{client: c, kind: kindPlaylist, key: key},
			owner:  owner,
			id:     id,
		}
	})
}

func (c *Client) playlistFrom(owner *User, x xmlPlaylist) (*Playlist, error) {
	p, err := c.playlistOf(owner, x.ID)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.title == "" {
		p.title = strings.TrimSpace(x.Title)
	}
	if p.description == "" {
		p.description = strings.TrimSpace(x.Description)
	}
	if p.size == 0 {
		p.size = int(num(x.Size))
	}
	if p.duration == 0 {
		p.duration = time.Duration(num(x.Duration)) * time.Second
	}
	return p, nil
}

// ID returns the playlist id.
func (p *Playlist) ID() string { return p.id }

// Owner returns the user the playlist belongs to.
func (p *Playlist) Owner() *User { return p.owner }

// Title returns the playlist title if it has been seen in a listing.
func (p *Playlist) Title() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.title
}

// Size returns the track count reported by the playlist listing.
func (p *Playlist) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.size
}

// Duration returns the total length reported by the playlist listing.
func (p *Playlist) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.duration
}

func (p *Playlist) String() string {
	if t := p.Title(); t != "" {
		return t
	}
	return "playlist " + p.id
}

func (p *Playlist) identity() identity {
	return identity{id: p.id, names: []string{p.owner.Name(), p.id}, sortName: p.Title()}
}

// URI returns the lastfm:// URI accepted by playlist.fetch.
func (p *Playlist) URI() string {
	return "lastfm://playlist/" + p.id
}

// Tracks returns the playlist's tracks, fetching its XSPF page on first use.
func (p *Playlist) Tracks(ctx context.Context) ([]*Track, error) {
	page, err := p.page.get(ctx, func(ctx context.Context) (*PlaylistPage, error) {
		return p.client.FetchPlaylist(ctx, p.URI())
	})
	if err != nil {
		return nil, err
	}
	return page.Tracks, nil
}

// PlaylistPage is one fetched XSPF playlist. Pages are values: every fetch
// yields a new instance, even for the same URI.
type PlaylistPage struct {
	entity
	URI        string
	Title      string
	Annotation string
	Creator    string
	Date       time.Time
	Tracks     []*Track
}

// identity carries no comparable fields, so pages are equal only to
// themselves.
func (pp *PlaylistPage) identity() identity {
	return identity{sortName: pp.Title}
}

type xmlXSPFTrack struct {
	Title      string `xml:"title"`
	Creator    string `xml:"creator"`
	Album      string `xml:"album"`
	Duration   string `xml:"duration"`
	Identifier string `xml:"identifier"`
}

// FetchPlaylist fetches an XSPF playlist by lastfm:// URI (playlist.fetch).
func (c *Client) FetchPlaylist(ctx context.Context, uri string) (*PlaylistPage, error) {
	var resp struct {
		Playlist struct {
			Title      string         `xml:"title"`
			Annotation string         `xml:"annotation"`
			Creator    string         `xml:"creator"`
			Date       string         `xml:"date"`
			Tracks     []xmlXSPFTrack `xml:"trackList>track"`
		} `xml:"playlist"`
	}
	if err := c.fetchInto(ctx, "playlist.fetch", Params{"playlistURL": uri}, &resp); err != nil {
		return nil, err
	}

	x := resp.Playlist
	key, _ := kindPlaylistPage.Key(Fields{"url": uri})
	page := c.registry.Bypass(func() Entity {
		return &PlaylistPage{
			entity:     entity{client: c, kind: kindPlaylistPage, key: key},
			URI:        uri,
			Title:      strings.TrimSpace(x.Title),
			Annotation: strings.TrimSpace(x.Annotation),
			Creator:    strings.TrimSpace(x.Creator),
		}
	}).(*PlaylistPage)

	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(x.Date)); err == nil {
		page.Date = t
	}
	for _, xt := range x.Tracks {
		track, err := c.Track(xt.Creator, xt.Title)
		if err != nil {
			continue
		}
		track.seed(xmlTrack{Duration: xt.Duration})
		page.Tracks = append(page.Tracks, track)
	}
	return page, nil
}
