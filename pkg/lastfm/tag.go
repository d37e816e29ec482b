package lastfm

import (
	"context"
	"fmt"
	"strings"

	"github.com/jfmyers9/lastkit/pkg/lazyseq"
)

var kindTag = &Kind{Name: "tag", Fields: []string{"name"}, SubjectScoped: true}

// Tag is a Last.fm tag. Tag names are matched case-insensitively.
type Tag struct {
	entity
	name string
	url  string

	info   lazy[*TagInfo]
	charts *chartSource
}

// TagInfo is the result of tag.getInfo.
type TagInfo struct {
	Name     string
	URL      string
	Reach    int64
	Taggings int64
	Wiki     Wiki
}

// Tag returns the canonical tag with the given name.
func (c *Client) Tag(name string) (*Tag, error) {
	return c.tag(name, nil)
}

func (c *Client) tag(name string, subject Entity) (*Tag, error) {
	name = strings.TrimSpace(name)
	return resolve(c.registry, kindTag, Fields{"name": name}, subject, func(key Key) *Tag {
		t := &Tag{
			entity: entity{client: c, kind: kindTag, key: key},
			name:   name,
		}
		t.charts = newChartSource(c, t, "tag", Params{"tag": name})
		return t
	})
}

func (c *Client) tagFrom(x xmlTag, subject Entity) (*Tag, error) {
	t, err := c.tag(x.Name, subject)
	if err != nil {
		return nil, err
	}
	if u := strings.TrimSpace(x.URL); u != "" {
		t.mu.Lock()
		if t.url == "" {
			t.url = u
		}
		t.mu.Unlock()
	}
	return t, nil
}

// Name returns the tag name as first seen.
func (t *Tag) Name() string { return t.name }

func (t *Tag) String() string { return t.name }

// URL returns the tag's Last.fm page.
func (t *Tag) URL() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.url != "" {
		return t.url
	}
	return webURL + "/tag/" + webName(t.name)
}

func (t *Tag) identity() identity {
	t.mu.Lock()
	defer t.mu.Unlock()

	return identity{url: t.url, names: []string{t.name}, sortName: t.name}
}

func (t *Tag) params() Params {
	return Params{"tag": t.name}
}

// Info returns tag.getInfo details, fetching them on first use.
func (t *Tag) Info(ctx context.Context) (*TagInfo, error) {
	return t.info.get(ctx, func(ctx context.Context) (*TagInfo, error) {
		var resp struct {
			Tag struct {
				xmlTag
				Total string  `xml:"total"`
				Wiki  xmlWiki `xml:"wiki"`
			} `xml:"tag"`
		}
		if err := t.client.fetchInto(ctx, "tag.getInfo", t.params(), &resp); err != nil {
			return nil, err
		}

		x := resp.Tag
		info := &TagInfo{
			Name:     strings.TrimSpace(x.Name),
			URL:      strings.TrimSpace(x.URL),
			Reach:    num(x.Reach),
			Taggings: num(x.Taggings),
			Wiki:     wiki(x.Wiki),
		}
		if info.Taggings == 0 {
			info.Taggings = num(x.Total)
		}
		return info, nil
	})
}

// Similar returns tags similar to this one (tag.getSimilar).
func (t *Tag) Similar(ctx context.Context) ([]*Tag, error) {
	var resp struct {
		Tags []xmlTag `xml:"similartags>tag"`
	}
	if err := t.client.fetchInto(ctx, "tag.getSimilar", t.params(), &resp); err != nil {
		return nil, err
	}
	return t.client.tagsFrom(resp.Tags), nil
}

// TopArtists returns the artists most tagged with this tag, paged lazily.
func (t *Tag) TopArtists() *lazyseq.Seq[TopItem[*Artist]] {
	return pagedSeq(t.client, "tag.getTopArtists", t.params(), func(inner []byte) ([]TopItem[*Artist], int, error) {
		var resp struct {
			List struct {
				xmlPaging
				Artists []xmlArtist `xml:"artist"`
			} `xml:"topartists"`
		}
		if err := unmarshalInner(inner, &resp); err != nil {
			return nil, 0, err
		}
		return t.client.topArtistsFrom(resp.List.Artists, nil), resp.List.totalPages(), nil
	})
}

// TopAlbums returns the albums most tagged with this tag, paged lazily.
func (t *Tag) TopAlbums() *lazyseq.Seq[TopItem[*Album]] {
	return pagedSeq(t.client, "tag.getTopAlbums", t.params(), func(inner []byte) ([]TopItem[*Album], int, error) {
		var resp struct {
			List struct {
				xmlPaging
				Albums []xmlAlbum `xml:"album"`
			} `xml:"albums"`
		}
		if err := unmarshalInner(inner, &resp); err != nil {
			return nil, 0, err
		}
		return t.client.topAlbumsFrom(resp.List.Albums, nil), resp.List.totalPages(), nil
	})
}

// TopTracks returns the tracks most tagged with this tag, paged lazily.
func (t *Tag) TopTracks() *lazyseq.Seq[TopItem[*Track]] {
	return pagedSeq(t.client, "tag.getTopTracks", t.params(), func(inner []byte) ([]TopItem[*Track], int, error) {
		var resp struct {
			List struct {
				xmlPaging
				Tracks []xmlTrack `xml:"track"`
			} `xml:"tracks"`
		}
		if err := unmarshalInner(inner, &resp); err != nil {
			return nil, 0, err
		}
		return t.client.topTracksFrom(resp.List.Tracks, nil), resp.List.totalPages(), nil
	})
}

// WeeklyChartDates returns the windows for which weekly charts exist. The
// list is fetched once.
func (t *Tag) WeeklyChartDates(ctx context.Context) ([]ChartWindow, error) {
	return t.charts.WeeklyChartDates(ctx)
}

// WeeklyArtistChart returns the tag's artist chart for window w.
func (t *Tag) WeeklyArtistChart(w ChartWindow) (*WeeklyArtistChart, error) {
	return t.charts.WeeklyArtistChart(w)
}

// WeeklyArtistCharts returns every weekly artist chart of the tag.
func (t *Tag) WeeklyArtistCharts() *lazyseq.Seq[*WeeklyArtistChart] {
	return t.charts.WeeklyArtistCharts()
}

func (c *Client) tagsFrom(xs []xmlTag) []*Tag {
	out := make([]*Tag, 0, len(xs))
	for _, x := range xs {
		tag, err := c.tagFrom(x, nil)
		if err != nil {
			continue
		}
		out = append(out, tag)
	}
	return out
}

// topTags decodes a toptags listing from any *.getTopTags method.
func (c *Client) topTags(ctx context.Context, method string, params Params) ([]TopItem[*Tag], error) {
	var resp struct {
		Tags []xmlTag `xml:"toptags>tag"`
	}
	if err := c.fetchInto(ctx, method, params, &resp); err != nil {
		return nil, err
	}

	out := make([]TopItem[*Tag], 0, len(resp.Tags))
	for _, x := range resp.Tags {
		tag, err := c.tagFrom(x, nil)
		if err != nil {
			continue
		}
		out = append(out, TopItem[*Tag]{Item: tag, Weight: num(x.Count)})
	}
	return out, nil
}

// maxTagsPerCall is the most tags one *.addTags call accepts.
const maxTagsPerCall = 10

func (c *Client) addTags(ctx context.Context, method string, params Params, tags []string) error {
	cleaned := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	if len(cleaned) == 0 {
		return fmt.Errorf("%w: %s: no tags given", ErrInvalidArgument, method)
	}
	if len(cleaned) > maxTagsPerCall {
		return fmt.Errorf("%w: %s: at most %d tags per call, got %d", ErrInvalidArgument, method, maxTagsPerCall, len(cleaned))
	}

	p := params.clone().Set("tags", strings.Join(cleaned, ","))
	_, err := c.post(ctx, method, p, true)
	return err
}

func (c *Client) removeTag(ctx context.Context, method string, params Params, tag string) error {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return fmt.Errorf("%w: %s: empty tag", ErrInvalidArgument, method)
	}
	_, err := c.post(ctx, method, params.clone().Set("tag", tag), true)
	return err
}
