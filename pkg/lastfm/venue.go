package lastfm

import (
	"context"
	"strings"

	"github.com/jfmyers9/lastkit/pkg/lazyseq"
)

var kindVenue = &Kind{Name: "venue", Fields: []string{"id"}, SubjectScoped: true}

type xmlVenue struct {
	ID       string      `xml:"id"`
	Name     string      `xml:"name"`
	URL      string      `xml:"url"`
	Website  string      `xml:"website"`
	Phone    string      `xml:"phonenumber"`
	Location xmlLocation `xml:"location"`
	Images   []xmlImage  `xml:"image"`
}

type xmlLocation struct {
	City       string `xml:"city"`
	Country    string `xml:"country"`
	Street     string `xml:"street"`
	PostalCode string `xml:"postalcode"`
	Lat        string `xml:"point>lat"`
	Long       string `xml:"point>long"`
}

// Address is where a venue is.
type Address struct {
	City       string
	Country    string
	Street     string
	PostalCode string
	Lat        float64
	Long       float64
}

// Venue is a place that hosts events.
type Venue struct {
	entity
	id string

	name     string
	url      string
	location Address
}

// Venue returns the canonical venue with the given numeric id.
func (c *Client) Venue(id string) (*Venue, error) {
	id = strings.TrimSpace(id)
	return resolve(c.registry, kindVenue, Fields{"id": id}, nil, func(key Key) *Venue {
		return &Venue{
			entity: entity{client: c, kind: kindVenue, key: key},
			id:     id,
		}
	})
}

func (c *Client) venueFrom(x xmlVenue) (*Venue, error) {
	v, err := c.Venue(x.ID)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.name == "" {
		v.name = strings.TrimSpace(x.Name)
	}
	if v.url == "" {
		v.url = strings.TrimSpace(x.URL)
	}
	if v.location == (Address{}) {
		v.location = Address{
			City:       strings.TrimSpace(x.Location.City),
			Country:    strings.TrimSpace(x.Location.Country),
			Street:     strings.TrimSpace(x.Location.Street),
			PostalCode: strings.TrimSpace(x.Location.PostalCode),
			Lat:        fnum(x.Location.Lat),
			Long:       fnum(x.Location.Long),
		}
	}
	return v, nil
}

// ID returns the venue id.
func (v *Venue) ID() string { return v.id }

// Name returns the venue name if it has been seen in a listing.
func (v *Venue) Name() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.name
}

// Location returns the venue address if it has been seen in a listing.
func (v *Venue) Location() Address {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.location
}

func (v *Venue) String() string {
	if n := v.Name(); n != "" {
		return n
	}
	return "venue " + v.id
}

// URL returns the venue's Last.fm page.
func (v *Venue) URL() string {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.url != "" {
		return v.url
	}
	return webURL + "/venue/" + v.id
}

func (v *Venue) identity() identity {
	v.mu.Lock()
	defer v.mu.Unlock()

	return identity{id: v.id, url: v.url, names: []string{v.id}, sortName: v.name}
}

func (v *Venue) params() Params {
	return Params{"venue": v.id}
}

// Events returns the venue's upcoming events (venue.getEvents).
func (v *Venue) Events(ctx context.Context) ([]*Event, error) {
	var resp struct {
		Events []xmlEvent `xml:"events>event"`
	}
	if err := v.client.fetchInto(ctx, "venue.getEvents", v.params(), &resp); err != nil {
		return nil, err
	}
	return v.client.eventsFrom(resp.Events), nil
}

// PastEvents returns the venue's past events, most recent first, paged
// lazily.
func (v *Venue) PastEvents() *lazyseq.Seq[*Event] {
	return pagedSeq(v.client, "venue.getPastEvents", v.params(), v.client.eventPage)
}

// eventPage decodes one page of an <events> listing.
func (c *Client) eventPage(inner []byte) ([]*Event, int, error) {
	var resp struct {
		List struct {
			xmlPaging
			Events []xmlEvent `xml:"event"`
		} `xml:"events"`
	}
	if err := unmarshalInner(inner, &resp); err != nil {
		return nil, 0, err
	}
	return c.eventsFrom(resp.List.Events), resp.List.totalPages(), nil
}
