package lastfm

import (
	"github.com/jfmyers9/lastkit/pkg/lazyseq"
)

// TopArtists returns the site-wide artist chart (chart.getTopArtists), paged
// lazily.
func (c *Client) TopArtists() *lazyseq.Seq[TopItem[*Artist]] {
	return pagedSeq(c, "chart.getTopArtists", Params{}, func(inner []byte) ([]TopItem[*Artist], int, error) {
		var resp struct {
			List struct {
				xmlPaging
				Artists []xmlArtist `xml:"artist"`
			} `xml:"artists"`
		}
		if err := unmarshalInner(inner, &resp); err != nil {
			return nil, 0, err
		}
		return c.topArtistsFrom(resp.List.Artists, nil), resp.List.totalPages(), nil
	})
}

// TopTracks returns the site-wide track chart (chart.getTopTracks).
func (c *Client) TopTracks() *lazyseq.Seq[TopItem[*Track]] {
	return pagedSeq(c, "chart.getTopTracks", Params{}, func(inner []byte) ([]TopItem[*Track], int, error) {
		var resp struct {
			List struct {
				xmlPaging
				Tracks []xmlTrack `xml:"track"`
			} `xml:"tracks"`
		}
		if err := unmarshalInner(inner, &resp); err != nil {
			return nil, 0, err
		}
		return c.topTracksFrom(resp.List.Tracks, nil), resp.List.totalPages(), nil
	})
}

// TopTags returns the site-wide tag chart (chart.getTopTags), weighted by
// reach.
func (c *Client) TopTags() *lazyseq.Seq[TopItem[*Tag]] {
	return pagedSeq(c, "chart.getTopTags", Params{}, func(inner []byte) ([]TopItem[*Tag], int, error) {
		var resp struct {
			List struct {
				xmlPaging
				Tags []xmlTag `xml:"tag"`
			} `xml:"tags"`
		}
		if err := unmarshalInner(inner, &resp); err != nil {
			return nil, 0, err
		}

		items := make([]TopItem[*Tag], 0, len(resp.List.Tags))
		for _, x := range resp.List.Tags {
			tag, err := c.tagFrom(x, nil)
			if err != nil {
				continue
			}
			items = append(items, TopItem[*Tag]{Item: tag, Weight: weight(x.Reach, x.Taggings, x.Count)})
		}
		return items, resp.List.totalPages(), nil
	})
}
