package lastfm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jfmyers9/lastkit/pkg/lazyseq"
)

var kindUser = &Kind{Name: "user", Fields: []string{"name"}, SubjectScoped: true}

// User is a Last.fm user. User names are matched case-insensitively.
type User struct {
	entity
	*chartSource
	name string

	realName string
	url      string
	images   Images

	info lazy[*UserInfo]
}

// UserInfo is the result of user.getInfo.
type UserInfo struct {
	ID         string
	Name       string
	RealName   string
	URL        string
	Country    string
	Age        int64
	Gender     string
	Subscriber bool
	Playcount  int64
	Playlists  int64
	Registered time.Time
	Images     Images
}

// User returns the canonical user with the given name.
func (c *Client) User(name string) (*User, error) {
	name = strings.TrimSpace(name)
	return resolve(c.registry, kindUser, Fields{"name": name}, nil, func(key Key) *User {
		u := &User{
			entity: entity{client: c, kind: kindUser, key: key},
			name:   name,
		}
		u.chartSource = newChartSource(c, u, "user", Params{"user": name})
		return u
	})
}

func (c *Client) userFrom(x xmlUser) (*User, error) {
	u, err := c.User(x.Name)
	if err != nil {
		return nil, err
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	if u.realName == "" {
		u.realName = strings.TrimSpace(x.RealName)
	}
	if u.url == "" {
		u.url = strings.TrimSpace(x.URL)
	}
	if len(u.images) == 0 && len(x.Images) > 0 {
		u.images = images(x.Images)
	}
	return u, nil
}

func (c *Client) usersFrom(xs []xmlUser) []*User {
	out := make([]*User, 0, len(xs))
	for _, x := range xs {
		u, err := c.userFrom(x)
		if err != nil {
			continue
		}
		out = append(out, u)
	}
	return out
}

// Name returns the user name as first seen.
func (u *User) Name() string { return u.name }

func (u *User) String() string { return u.name }

// URL returns the user's Last.fm profile page.
func (u *User) URL() string {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.url != "" {
		return u.url
	}
	return webURL + "/user/" + webName(u.name)
}

func (u *User) identity() identity {
	u.mu.Lock()
	defer u.mu.Unlock()

	return identity{url: u.url, names: []string{u.name}, sortName: u.name}
}

func (u *User) params() Params {
	return Params{"user": u.name}
}

// Info returns user.getInfo details, fetching them on first use.
func (u *User) Info(ctx context.Context) (*UserInfo, error) {
	return u.info.get(ctx, func(ctx context.Context) (*UserInfo, error) {
		var resp struct {
			User xmlUser `xml:"user"`
		}
		if err := u.client.fetchInto(ctx, "user.getInfo", u.params(), &resp); err != nil {
			return nil, err
		}

		x := resp.User
		return &UserInfo{
			ID:         strings.TrimSpace(x.ID),
			Name:       strings.TrimSpace(x.Name),
			RealName:   strings.TrimSpace(x.RealName),
			URL:        strings.TrimSpace(x.URL),
			Country:    strings.TrimSpace(x.Country),
			Age:        num(x.Age),
			Gender:     strings.TrimSpace(x.Gender),
			Subscriber: flag(x.Subscriber),
			Playcount:  num(x.Playcount),
			Playlists:  num(x.Playlists),
			Registered: x.Registered.at(),
			Images:     images(x.Images),
		}, nil
	})
}

// Friends returns the user's friends, paged lazily.
func (u *User) Friends() *lazyseq.Seq[*User] {
	return pagedSeq(u.client, "user.getFriends", u.params(), func(inner []byte) ([]*User, int, error) {
		var resp struct {
			List struct {
				xmlPaging
				Users []xmlUser `xml:"user"`
			} `xml:"friends"`
		}
		if err := unmarshalInner(inner, &resp); err != nil {
			return nil, 0, err
		}
		return u.client.usersFrom(resp.List.Users), resp.List.totalPages(), nil
	})
}

type xmlRecentTracks struct {
	List struct {
		xmlPaging
		Tracks []xmlTrack `xml:"track"`
	} `xml:"recenttracks"`
}

// RecentTracks returns the user's scrobbles, most recent first, paged
// lazily. A zero from or to leaves that end of the range open. The
// currently playing track is not included; see NowPlaying.
func (u *User) RecentTracks(from, to time.Time) *lazyseq.Seq[PlayedTrack] {
	params := u.params().SetTime("from", from).SetTime("to", to)
	return pagedSeq(u.client, "user.getRecentTracks", params, func(inner []byte) ([]PlayedTrack, int, error) {
		var resp xmlRecentTracks
		if err := unmarshalInner(inner, &resp); err != nil {
			return nil, 0, err
		}

		items := make([]PlayedTrack, 0, len(resp.List.Tracks))
		for _, x := range resp.List.Tracks {
			if flag(x.NowPlaying) {
				continue
			}
			track, err := u.client.trackFrom(x, "", nil)
			if err != nil {
				continue
			}
			items = append(items, PlayedTrack{
				Track:    track,
				Album:    x.Album.name(),
				PlayedAt: x.Date.at(),
			})
		}
		return items, resp.List.totalPages(), nil
	})
}

// NowPlaying returns the track the user is playing right now. It returns
// ErrNotFound when nothing is playing.
func (u *User) NowPlaying(ctx context.Context) (PlayedTrack, error) {
	var resp xmlRecentTracks
	params := u.params().SetInt("limit", 1)
	if err := u.client.fetchInto(ctx, "user.getRecentTracks", params, &resp); err != nil {
		return PlayedTrack{}, err
	}

	for _, x := range resp.List.Tracks {
		if !flag(x.NowPlaying) {
			continue
		}
		track, err := u.client.trackFrom(x, "", nil)
		if err != nil {
			return PlayedTrack{}, err
		}
		return PlayedTrack{Track: track, Album: x.Album.name()}, nil
	}
	return PlayedTrack{}, fmt.Errorf("%w: %s is not playing anything", ErrNotFound, u.name)
}

// LovedTracks returns the user's loved tracks, most recent first, paged
// lazily.
func (u *User) LovedTracks() *lazyseq.Seq[LovedTrack] {
	return pagedSeq(u.client, "user.getLovedTracks", u.params(), func(inner []byte) ([]LovedTrack, int, error) {
		var resp struct {
			List struct {
				xmlPaging
				Tracks []xmlTrack `xml:"track"`
			} `xml:"lovedtracks"`
		}
		if err := unmarshalInner(inner, &resp); err != nil {
			return nil, 0, err
		}

		items := make([]LovedTrack, 0, len(resp.List.Tracks))
		for _, x := range resp.List.Tracks {
			track, err := u.client.trackFrom(x, "", nil)
			if err != nil {
				continue
			}
			items = append(items, LovedTrack{Track: track, LovedAt: x.Date.at()})
		}
		return items, resp.List.totalPages(), nil
	})
}

func (u *User) periodParams(period Period) Params {
	return u.params().SetOpt("period", string(period))
}

// TopArtists returns the user's most played artists over period, paged
// lazily. An empty period means PeriodOverall.
func (u *User) TopArtists(period Period) *lazyseq.Seq[TopItem[*Artist]] {
	return pagedSeq(u.client, "user.getTopArtists", u.periodParams(period), func(inner []byte) ([]TopItem[*Artist], int, error) {
		var resp struct {
			List struct {
				xmlPaging
				Artists []xmlArtist `xml:"artist"`
			} `xml:"topartists"`
		}
		if err := unmarshalInner(inner, &resp); err != nil {
			return nil, 0, err
		}
		return u.client.topArtistsFrom(resp.List.Artists, nil), resp.List.totalPages(), nil
	})
}

// TopAlbums returns the user's most played albums over period.
func (u *User) TopAlbums(period Period) *lazyseq.Seq[TopItem[*Album]] {
	return pagedSeq(u.client, "user.getTopAlbums", u.periodParams(period), func(inner []byte) ([]TopItem[*Album], int, error) {
		var resp struct {
			List struct {
				xmlPaging
				Albums []xmlAlbum `xml:"album"`
			} `xml:"topalbums"`
		}
		if err := unmarshalInner(inner, &resp); err != nil {
			return nil, 0, err
		}
		return u.client.topAlbumsFrom(resp.List.Albums, nil), resp.List.totalPages(), nil
	})
}

// TopTracks returns the user's most played tracks over period.
func (u *User) TopTracks(period Period) *lazyseq.Seq[TopItem[*Track]] {
	return pagedSeq(u.client, "user.getTopTracks", u.periodParams(period), func(inner []byte) ([]TopItem[*Track], int, error) {
		var resp struct {
			List struct {
				xmlPaging
				Tracks []xmlTrack `xml:"track"`
			} `xml:"toptracks"`
		}
		if err := unmarshalInner(inner, &resp); err != nil {
			return nil, 0, err
		}
		return u.client.topTracksFrom(resp.List.Tracks, nil), resp.List.totalPages(), nil
	})
}

// TopTags returns the tags the user has applied most.
func (u *User) TopTags(ctx context.Context) ([]TopItem[*Tag], error) {
	return u.client.topTags(ctx, "user.getTopTags", u.params())
}

// Playlists returns the user's playlists (user.getPlaylists).
func (u *User) Playlists(ctx context.Context) ([]*Playlist, error) {
	var resp struct {
		Playlists []xmlPlaylist `xml:"playlists>playlist"`
	}
	if err := u.client.fetchInto(ctx, "user.getPlaylists", u.params(), &resp); err != nil {
		return nil, err
	}

	out := make([]*Playlist, 0, len(resp.Playlists))
	for _, x := range resp.Playlists {
		p, err := u.client.playlistFrom(u, x)
		if err != nil {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}
