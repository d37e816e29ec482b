package lastfm

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jfmyers9/lastkit/pkg/lazyseq"
)

var kindEvent = &Kind{Name: "event", Fields: []string{"id"}, SubjectScoped: true}

// eventTimeLayout is the format of <startDate>, e.g. "Sat, 14 Jun 2008 20:00:00".
const eventTimeLayout = "Mon, 02 Jan 2006 15:04:05"

type xmlEvent struct {
	ID          string     `xml:"id"`
	Title       string     `xml:"title"`
	Artists     []string   `xml:"artists>artist"`
	Headliner   string     `xml:"artists>headliner"`
	Venue       xmlVenue   `xml:"venue"`
	StartDate   string     `xml:"startDate"`
	Description string     `xml:"description"`
	Attendance  string     `xml:"attendance"`
	Reviews     string     `xml:"reviews"`
	URL         string     `xml:"url"`
	Website     string     `xml:"website"`
	Cancelled   string     `xml:"cancelled"`
	Tags        []string   `xml:"tags>tag"`
	Images      []xmlImage `xml:"image"`
}

// Event is a concert or festival listed on Last.fm.
type Event struct {
	entity
	id    string
	title string

	info lazy[*EventInfo]
}

// EventInfo is the result of event.getInfo. Event listings carry the same
// details, so events found through a listing never need a separate fetch.
type EventInfo struct {
	ID          string
	Title       string
	Artists     []*Artist
	Headliner   *Artist
	Venue       *Venue
	StartDate   time.Time
	Description string
	Attendance  int64
	Reviews     int64
	URL         string
	Website     string
	Cancelled   bool
	Tags        []*Tag
	Images      Images
}

// Event returns the canonical event with the given numeric id.
func (c *Client) Event(id string) (*Event, error) {
	id = strings.TrimSpace(id)
	return resolve(c.registry, kindEvent, Fields{"id": id}, nil, func(key Key) *Event {
		return &Event{
			entity: entity{client: c, kind: kindEvent, key: key},
			id:     id,
		}
	})
}

func (c *Client) eventFrom(x xmlEvent) (*Event, error) {
	e, err := c.Event(x.ID)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	if e.title == "" {
		e.title = strings.TrimSpace(x.Title)
	}
	e.mu.Unlock()

	e.info.prime(c.eventInfo(x))
	return e, nil
}

func (c *Client) eventsFrom(xs []xmlEvent) []*Event {
	out := make([]*Event, 0, len(xs))
	for _, x := range xs {
		e, err := c.eventFrom(x)
		if err != nil {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (c *Client) eventInfo(x xmlEvent) *EventInfo {
	info := &EventInfo{
		ID:          strings.TrimSpace(x.ID),
		Title:       strings.TrimSpace(x.Title),
		Description: strings.TrimSpace(x.Description),
		Attendance:  num(x.Attendance),
		Reviews:     num(x.Reviews),
		URL:         strings.TrimSpace(x.URL),
		Website:     strings.TrimSpace(x.Website),
		Cancelled:   flag(x.Cancelled),
		Images:      images(x.Images),
	}
	if t, err := time.Parse(eventTimeLayout, strings.TrimSpace(x.StartDate)); err == nil {
		info.StartDate = t
	}

	for _, name := range x.Artists {
		if a, err := c.artist(name, nil); err == nil {
			info.Artists = append(info.Artists, a)
		}
	}
	if a, err := c.artist(x.Headliner, nil); err == nil {
		info.Headliner = a
	}
	if v, err := c.venueFrom(x.Venue); err == nil {
		info.Venue = v
	}
	for _, name := range x.Tags {
		if t, err := c.tag(name, nil); err == nil {
			info.Tags = append(info.Tags, t)
		}
	}
	return info
}

// ID returns the event id.
func (e *Event) ID() string { return e.id }

// Title returns the event title if it is known without a fetch.
func (e *Event) Title() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.title
}

func (e *Event) String() string {
	if t := e.Title(); t != "" {
		return t
	}
	return "event " + e.id
}

// URL returns the event's Last.fm page.
func (e *Event) URL() string {
	return webURL + "/event/" + e.id
}

func (e *Event) identity() identity {
	return identity{id: e.id, names: []string{e.id}, sortName: e.Title()}
}

func (e *Event) params() Params {
	return Params{"event": e.id}
}

// Info returns event.getInfo details, fetching them on first use.
func (e *Event) Info(ctx context.Context) (*EventInfo, error) {
	return e.info.get(ctx, func(ctx context.Context) (*EventInfo, error) {
		var resp struct {
			Event xmlEvent `xml:"event"`
		}
		if err := e.client.fetchInto(ctx, "event.getInfo", e.params(), &resp); err != nil {
			return nil, err
		}

		info := e.client.eventInfo(resp.Event)
		e.mu.Lock()
		if e.title == "" {
			e.title = info.Title
		}
		e.mu.Unlock()
		return info, nil
	})
}

// Attendees returns the users attending the event, paged lazily.
func (e *Event) Attendees() *lazyseq.Seq[*User] {
	return pagedSeq(e.client, "event.getAttendees", e.params(), func(inner []byte) ([]*User, int, error) {
		var resp struct {
			List struct {
				xmlPaging
				Users []xmlUser `xml:"user"`
			} `xml:"attendees"`
		}
		if err := unmarshalInner(inner, &resp); err != nil {
			return nil, 0, err
		}
		return e.client.usersFrom(resp.List.Users), resp.List.totalPages(), nil
	})
}

// Attend records the authenticated user's attendance status.
func (e *Event) Attend(ctx context.Context, status AttendanceStatus) error {
	p := e.params().Set("status", strconv.Itoa(int(status)))
	_, err := e.client.post(ctx, "event.attend", p, true)
	return err
}
