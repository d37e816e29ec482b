package lastfm

// Builders for the ranked listings shared by tag, user, geo, chart and
// weekly chart methods. Elements that cannot be identified are dropped.

// weight returns the first non-zero count among vals.
func weight(vals ...string) int64 {
	for _, v := range vals {
		if n := num(v); n != 0 {
			return n
		}
	}
	return 0
}

func (c *Client) topArtistsFrom(xs []xmlArtist, subject Entity) []TopItem[*Artist] {
	out := make([]TopItem[*Artist], 0, len(xs))
	for _, x := range xs {
		a, err := c.artistFrom(x, subject)
		if err != nil {
			continue
		}
		out = append(out, TopItem[*Artist]{Item: a, Weight: weight(x.Playcount, x.Count, x.Listeners)})
	}
	return out
}

func (c *Client) topAlbumsFrom(xs []xmlAlbum, subject Entity) []TopItem[*Album] {
	out := make([]TopItem[*Album], 0, len(xs))
	for _, x := range xs {
		al, err := c.albumFrom(x, "", subject)
		if err != nil {
			continue
		}
		out = append(out, TopItem[*Album]{Item: al, Weight: weight(x.Playcount, x.Listeners)})
	}
	return out
}

func (c *Client) topTracksFrom(xs []xmlTrack, subject Entity) []TopItem[*Track] {
	out := make([]TopItem[*Track], 0, len(xs))
	for _, x := range xs {
		t, err := c.trackFrom(x, "", subject)
		if err != nil {
			continue
		}
		out = append(out, TopItem[*Track]{Item: t, Weight: weight(x.Playcount, x.Listeners)})
	}
	return out
}
