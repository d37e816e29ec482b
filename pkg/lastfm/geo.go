package lastfm

import (
	"strings"

	"github.com/jfmyers9/lastkit/pkg/lazyseq"
)

var (
	kindCountry  = &Kind{Name: "country", Fields: []string{"name"}, SubjectScoped: true}
	kindLocation = &Kind{Name: "location", Fields: []string{"city"}, SubjectScoped: true}
)

// Country is an ISO 3166-1 country name as Last.fm spells it, e.g. "Spain".
type Country struct {
	entity
	name string
}

// Country returns the canonical country with the given name.
func (c *Client) Country(name string) (*Country, error) {
	name = strings.TrimSpace(name)
	return resolve(c.registry, kindCountry, Fields{"name": name}, nil, func(key Key) *Country {
		return &Country{
			entity: entity{client: c, kind: kindCountry, key: key},
			name:   name,
		}
	})
}

// Name returns the country name as first seen.
func (co *Country) Name() string { return co.name }

func (co *Country) String() string { return co.name }

func (co *Country) identity() identity {
	return identity{names: []string{co.name}, sortName: co.name}
}

// TopArtists returns the most listened artists in the country, paged
// lazily.
func (co *Country) TopArtists() *lazyseq.Seq[TopItem[*Artist]] {
	params := Params{"country": co.name}
	return pagedSeq(co.client, "geo.getTopArtists", params, func(inner []byte) ([]TopItem[*Artist], int, error) {
		var resp struct {
			List struct {
				xmlPaging
				Artists []xmlArtist `xml:"artist"`
			} `xml:"topartists"`
		}
		if err := unmarshalInner(inner, &resp); err != nil {
			return nil, 0, err
		}
		return co.client.topArtistsFrom(resp.List.Artists, nil), resp.List.totalPages(), nil
	})
}

// TopTracks returns the most listened tracks in the country, paged lazily.
func (co *Country) TopTracks() *lazyseq.Seq[TopItem[*Track]] {
	params := Params{"country": co.name}
	return pagedSeq(co.client, "geo.getTopTracks", params, func(inner []byte) ([]TopItem[*Track], int, error) {
		var resp struct {
			List struct {
				xmlPaging
				Tracks []xmlTrack `xml:"track"`
			} `xml:"toptracks"`
		}
		if err := unmarshalInner(inner, &resp); err != nil {
			return nil, 0, err
		}
		return co.client.topTracksFrom(resp.List.Tracks, nil), resp.List.totalPages(), nil
	})
}

// Location is a city that events can be searched in.
type Location struct {
	entity
	city string
}

// Location returns the canonical location for city.
func (c *Client) Location(city string) (*Location, error) {
	city = strings.TrimSpace(city)
	return resolve(c.registry, kindLocation, Fields{"city": city}, nil, func(key Key) *Location {
		return &Location{
			entity: entity{client: c, kind: kindLocation, key: key},
			city:   city,
		}
	})
}

// City returns the city name as first seen.
func (l *Location) City() string { return l.city }

func (l *Location) String() string { return l.city }

func (l *Location) identity() identity {
	return identity{names: []string{l.city}, sortName: l.city}
}

// Events returns upcoming events near the location (geo.getEvents), paged
// lazily.
func (l *Location) Events() *lazyseq.Seq[*Event] {
	params := Params{"location": l.city}
	return pagedSeq(l.client, "geo.getEvents", params, l.client.eventPage)
}
