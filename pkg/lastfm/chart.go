package lastfm

import (
	"context"
	"strconv"
	"time"

	"github.com/jfmyers9/lastkit/pkg/lazyseq"
)

// Chart kinds are the subjects of their own entries, so they are never
// scoped themselves.
var (
	kindWeeklyArtistChart = &Kind{Name: "weeklyartistchart", Fields: chartFields}
	kindWeeklyAlbumChart  = &Kind{Name: "weeklyalbumchart", Fields: chartFields}
	kindWeeklyTrackChart  = &Kind{Name: "weeklytrackchart", Fields: chartFields}

	chartFields = []string{"subject", "from", "to"}
)

// ChartWindow is the time range a weekly chart covers.
type ChartWindow struct {
	From time.Time
	To   time.Time
}

func (w ChartWindow) String() string {
	return w.From.Format(time.DateOnly) + ".." + w.To.Format(time.DateOnly)
}

func (w ChartWindow) fields(subject Entity) Fields {
	return Fields{
		"subject": subjectKey(subject),
		"from":    strconv.FormatInt(w.From.Unix(), 10),
		"to":      strconv.FormatInt(w.To.Unix(), 10),
	}
}

// ChartSubject is an entity that publishes weekly charts: a User, Group or
// Tag.
type ChartSubject interface {
	Entity
	WeeklyChartDates(ctx context.Context) ([]ChartWindow, error)
	WeeklyArtistChart(w ChartWindow) (*WeeklyArtistChart, error)
	WeeklyArtistCharts() *lazyseq.Seq[*WeeklyArtistChart]
}

// weeklyChart is the shared body of the weekly chart types.
type weeklyChart[T Entity] struct {
	entity
	subject Entity
	window  ChartWindow
	method  string
	params  Params
	decode  func(c *Client, inner []byte, chart Entity) ([]TopItem[T], error)

	entries lazy[[]TopItem[T]]
}

// Subject returns the user, group or tag the chart belongs to.
func (ch *weeklyChart[T]) Subject() Entity { return ch.subject }

// Window returns the time range the chart covers.
func (ch *weeklyChart[T]) Window() ChartWindow { return ch.window }

// Entries returns the ranked chart entries, fetching them on first use.
// Entries are scoped to this chart: the same artist in two different charts
// is two different instances.
func (ch *weeklyChart[T]) Entries(ctx context.Context) ([]TopItem[T], error) {
	return ch.entries.get(ctx, func(ctx context.Context) ([]TopItem[T], error) {
		p := ch.params.clone().
			Set("from", strconv.FormatInt(ch.window.From.Unix(), 10)).
			Set("to", strconv.FormatInt(ch.window.To.Unix(), 10))
		inner, err := ch.client.get(ctx, ch.method, p)
		if err != nil {
			return nil, err
		}
		return ch.decode(ch.client, inner, ch)
	})
}

func (ch *weeklyChart[T]) identity() identity {
	subject := ch.subject.identity().sortName
	return identity{
		names:    []string{subjectKey(ch.subject), ch.window.From.String(), ch.window.To.String()},
		sortName: subject,
		chart: &chartOrder{
			subject:     subject,
			subjectKind: ch.subject.Kind().Name,
			from:        ch.window.From,
			to:          ch.window.To,
		},
	}
}

// WeeklyArtistChart ranks the artists of one weekly window.
type WeeklyArtistChart struct {
	weeklyChart[*Artist]
}

// WeeklyAlbumChart ranks the albums of one weekly window.
type WeeklyAlbumChart struct {
	weeklyChart[*Album]
}

// WeeklyTrackChart ranks the tracks of one weekly window.
type WeeklyTrackChart struct {
	weeklyChart[*Track]
}

// chartSource implements the weekly chart methods of a subject. Callers
// reach it through the subject's promoted or delegating methods.
type chartSource struct {
	api    *Client
	owner  Entity
	prefix string
	query  Params

	dates lazy[[]ChartWindow]
}

func newChartSource(c *Client, owner Entity, prefix string, params Params) *chartSource {
	return &chartSource{api: c, owner: owner, prefix: prefix, query: params}
}

// WeeklyChartDates returns the windows for which weekly charts exist. The
// list is fetched once.
func (s *chartSource) WeeklyChartDates(ctx context.Context) ([]ChartWindow, error) {
	return s.dates.get(ctx, func(ctx context.Context) ([]ChartWindow, error) {
		var resp struct {
			Charts []struct {
				From string `xml:"from,attr"`
				To   string `xml:"to,attr"`
			} `xml:"weeklychartlist>chart"`
		}
		if err := s.api.fetchInto(ctx, s.prefix+".getWeeklyChartList", s.query, &resp); err != nil {
			return nil, err
		}

		out := make([]ChartWindow, 0, len(resp.Charts))
		for _, x := range resp.Charts {
			out = append(out, ChartWindow{
				From: time.Unix(num(x.From), 0).UTC(),
				To:   time.Unix(num(x.To), 0).UTC(),
			})
		}
		return out, nil
	})
}

// WeeklyArtistChart returns the artist chart for window w. Nothing is
// fetched until its entries are read.
func (s *chartSource) WeeklyArtistChart(w ChartWindow) (*WeeklyArtistChart, error) {
	return resolve(s.api.registry, kindWeeklyArtistChart, w.fields(s.owner), nil, func(key Key) *WeeklyArtistChart {
		return &WeeklyArtistChart{weeklyChart[*Artist]{
			entity:  entity{client: s.api, kind: kindWeeklyArtistChart, key: key},
			subject: s.owner,
			window:  w,
			method:  s.prefix + ".getWeeklyArtistChart",
			params:  s.query,
			decode:  decodeArtistChart,
		}}
	})
}

// WeeklyAlbumChart returns the album chart for window w.
func (s *chartSource) WeeklyAlbumChart(w ChartWindow) (*WeeklyAlbumChart, error) {
	return resolve(s.api.registry, kindWeeklyAlbumChart, w.fields(s.owner), nil, func(key Key) *WeeklyAlbumChart {
		return &WeeklyAlbumChart{weeklyChart[*Album]{
			entity:  entity{client: s.api, kind: kindWeeklyAlbumChart, key: key},
			subject: s.owner,
			window:  w,
			method:  s.prefix + ".getWeeklyAlbumChart",
			params:  s.query,
			decode:  decodeAlbumChart,
		}}
	})
}

// WeeklyTrackChart returns the track chart for window w.
func (s *chartSource) WeeklyTrackChart(w ChartWindow) (*WeeklyTrackChart, error) {
	return resolve(s.api.registry, kindWeeklyTrackChart, w.fields(s.owner), nil, func(key Key) *WeeklyTrackChart {
		return &WeeklyTrackChart{weeklyChart[*Track]{
			entity:  entity{client: s.api, kind: kindWeeklyTrackChart, key: key},
			subject: s.owner,
			window:  w,
			method:  s.prefix + ".getWeeklyTrackChart",
			params:  s.query,
			decode:  decodeTrackChart,
		}}
	})
}

// WeeklyArtistCharts returns one artist chart per available window, oldest
// first. Only the chart list is fetched while iterating; entries are
// fetched per chart when read.
func (s *chartSource) WeeklyArtistCharts() *lazyseq.Seq[*WeeklyArtistChart] {
	return chartSeq(s, s.WeeklyArtistChart)
}

// WeeklyAlbumCharts returns one album chart per available window.
func (s *chartSource) WeeklyAlbumCharts() *lazyseq.Seq[*WeeklyAlbumChart] {
	return chartSeq(s, s.WeeklyAlbumChart)
}

// WeeklyTrackCharts returns one track chart per available window.
func (s *chartSource) WeeklyTrackCharts() *lazyseq.Seq[*WeeklyTrackChart] {
	return chartSeq(s, s.WeeklyTrackChart)
}

func chartSeq[C any](s *chartSource, build func(ChartWindow) (C, error)) *lazyseq.Seq[C] {
	next := 0
	return lazyseq.New(func(ctx context.Context) (C, bool, error) {
		var zero C
		dates, err := s.WeeklyChartDates(ctx)
		if err != nil {
			return zero, false, err
		}
		if next >= len(dates) {
			return zero, false, nil
		}

		chart, err := build(dates[next])
		if err != nil {
			return zero, false, err
		}
		next++
		return chart, true, nil
	})
}

func decodeArtistChart(c *Client, inner []byte, chart Entity) ([]TopItem[*Artist], error) {
	var resp struct {
		Artists []xmlArtist `xml:"weeklyartistchart>artist"`
	}
	if err := unmarshalInner(inner, &resp); err != nil {
		return nil, err
	}
	return c.topArtistsFrom(resp.Artists, chart), nil
}

func decodeAlbumChart(c *Client, inner []byte, chart Entity) ([]TopItem[*Album], error) {
	var resp struct {
		Albums []xmlAlbum `xml:"weeklyalbumchart>album"`
	}
	if err := unmarshalInner(inner, &resp); err != nil {
		return nil, err
	}
	return c.topAlbumsFrom(resp.Albums, chart), nil
}

func decodeTrackChart(c *Client, inner []byte, chart Entity) ([]TopItem[*Track], error) {
	var resp struct {
		Tracks []xmlTrack `xml:"weeklytrackchart>track"`
	}
	if err := unmarshalInner(inner, &resp); err != nil {
		return nil, err
	}
	return c.topTracksFrom(resp.Tracks, chart), nil
}
