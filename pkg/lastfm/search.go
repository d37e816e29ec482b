package lastfm

import (
	"encoding/xml"
	"strings"

	"github.com/jfmyers9/lastkit/pkg/lazyseq"
)

// Search results are paged by opensearch counters rather than the paging
// attributes of other listings. Each page is fetched only when the previous
// one has been consumed and more results are demanded.

// searchSeq runs method and collects the children of the <matches> element
// under <results>. Results that cannot be identified are skipped.
func searchSeq[X, T any](c *Client, method string, params Params, matches string, build func(X) (T, error)) *lazyseq.Seq[T] {
	return pagedSeq(c, method, params, func(inner []byte) ([]T, int, error) {
		var resp struct {
			Results struct {
				xmlOpenSearch
				Groups []struct {
					XMLName xml.Name
					Items   []X `xml:",any"`
				} `xml:",any"`
			} `xml:"results"`
		}
		if err := unmarshalInner(inner, &resp); err != nil {
			return nil, 0, err
		}

		var items []T
		for _, g := range resp.Results.Groups {
			if g.XMLName.Local != matches {
				continue
			}
			for _, x := range g.Items {
				item, err := build(x)
				if err != nil {
					continue
				}
				items = append(items, item)
			}
		}
		return items, resp.Results.totalPages(), nil
	})
}

// SearchArtists searches artists by name.
func (c *Client) SearchArtists(query string) *lazyseq.Seq[*Artist] {
	params := Params{"artist": strings.TrimSpace(query)}
	return searchSeq(c, "artist.search", params, "artistmatches", func(x xmlArtist) (*Artist, error) {
		return c.artistFrom(x, nil)
	})
}

// SearchAlbums searches albums by title.
func (c *Client) SearchAlbums(query string) *lazyseq.Seq[*Album] {
	params := Params{"album": strings.TrimSpace(query)}
	return searchSeq(c, "album.search", params, "albummatches", func(x xmlAlbum) (*Album, error) {
		return c.albumFrom(x, "", nil)
	})
}

// SearchTracks searches tracks by title, optionally narrowed to an artist.
func (c *Client) SearchTracks(query, artist string) *lazyseq.Seq[*Track] {
	params := Params{"track": strings.TrimSpace(query)}.SetOpt("artist", strings.TrimSpace(artist))
	return searchSeq(c, "track.search", params, "trackmatches", func(x xmlTrack) (*Track, error) {
		return c.trackFrom(x, "", nil)
	})
}

// SearchTags searches tags by name.
func (c *Client) SearchTags(query string) *lazyseq.Seq[*Tag] {
	params := Params{"tag": strings.TrimSpace(query)}
	return searchSeq(c, "tag.search", params, "tagmatches", func(x xmlTag) (*Tag, error) {
		return c.tagFrom(x, nil)
	})
}

// SearchVenues searches venues by name, optionally narrowed to a country.
func (c *Client) SearchVenues(query, country string) *lazyseq.Seq[*Venue] {
	params := Params{"venue": strings.TrimSpace(query)}.SetOpt("country", strings.TrimSpace(country))
	return searchSeq(c, "venue.search", params, "venuematches", c.venueFrom)
}
