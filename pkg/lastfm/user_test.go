package lastfm

import (
	"context"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const recentTracks = `
<recenttracks user="alice" page="1" perPage="50" totalPages="1" total="2">
	<track nowplaying="true">
		<artist mbid="">Muse</artist>
		<name>Hysteria</name>
		<album mbid="">Absolution</album>
	</track>
	<track>
		<artist mbid="">Placebo</artist>
		<name>Every You Every Me</name>
		<album mbid="">Without You I'm Nothing</album>
		<date uts="1700000000">14 Nov 2023, 22:13</date>
	</track>
</recenttracks>`

func TestUser_NowPlaying(t *testing.T) {
	api := newFakeAPI(t).on("user.getRecentTracks", lfmOK(recentTracks))
	c := api.client(Config{})

	user, err := c.User("alice")
	require.NoError(t, err)

	played, err := user.NowPlaying(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Hysteria", played.Track.Title())
	assert.Equal(t, "Muse", played.Track.Artist().Name())
	assert.Equal(t, "Absolution", played.Album)
	assert.Equal(t, "1", api.lastForm().Get("limit"))
	assert.Equal(t, "alice", api.lastForm().Get("user"))
}

func TestUser_NowPlayingNothing(t *testing.T) {
	api := newFakeAPI(t).on("user.getRecentTracks", lfmOK(`<recenttracks user="alice" totalPages="0"></recenttracks>`))
	c := api.client(Config{})

	user, err := c.User("alice")
	require.NoError(t, err)

	_, err = user.NowPlaying(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUser_RecentTracksSkipsNowPlaying(t *testing.T) {
	api := newFakeAPI(t).on("user.getRecentTracks", lfmOK(recentTracks))
	c := api.client(Config{})

	user, err := c.User("alice")
	require.NoError(t, err)

	from := time.Unix(1600000000, 0)
	plays, err := user.RecentTracks(from, time.Time{}).Take(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, plays, 1)

	assert.Equal(t, "Every You Every Me", plays[0].Track.Title())
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), plays[0].PlayedAt)

	form := api.lastForm()
	assert.Equal(t, "1600000000", form.Get("from"))
	assert.False(t, form.Has("to"))
}

func TestUser_RecentTracksContinuesPastFilteredPage(t *testing.T) {
	api := newFakeAPI(t).onFunc("user.getRecentTracks", func(form url.Values) string {
		if form.Get("page") == "1" {
			return lfmOK(`
<recenttracks user="alice" page="1" totalPages="3">
	<track nowplaying="true">
		<artist mbid="">Muse</artist>
		<name>Hysteria</name>
	</track>
</recenttracks>`)
		}
		return lfmOK(fmt.Sprintf(`
<recenttracks user="alice" page="%[1]s" totalPages="3">
	<track>
		<artist mbid="">Placebo</artist>
		<name>Song %[1]s</name>
		<date uts="1700000000">14 Nov 2023, 22:13</date>
	</track>
</recenttracks>`, form.Get("page")))
	})
	c := api.client(Config{})

	user, err := c.User("alice")
	require.NoError(t, err)

	plays, err := user.RecentTracks(time.Time{}, time.Time{}).Take(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, plays, 2)
	assert.Equal(t, "Song 2", plays[0].Track.Title())
	assert.Equal(t, "Song 3", plays[1].Track.Title())
	assert.Equal(t, 3, api.calls("user.getRecentTracks"))
}

const chartList = `
<weeklychartlist user="alice">
	<chart from="1000" to="2000"/>
	<chart from="2000" to="3000"/>
	<chart from="3000" to="4000"/>
</weeklychartlist>`

func weeklyArtistChart(form url.Values) string {
	return lfmOK(fmt.Sprintf(`
<weeklyartistchart user="alice" from="%s" to="%s">
	<artist rank="1"><name>Muse</name><playcount>12</playcount></artist>
	<artist rank="2"><name>Placebo</name><playcount>4</playcount></artist>
</weeklyartistchart>`, form.Get("from"), form.Get("to")))
}

func TestUser_WeeklyChartsAreLazy(t *testing.T) {
	api := newFakeAPI(t).
		on("user.getWeeklyChartList", lfmOK(chartList)).
		onFunc("user.getWeeklyArtistChart", weeklyArtistChart)
	c := api.client(Config{})

	user, err := c.User("alice")
	require.NoError(t, err)
	ctx := context.Background()

	charts := user.WeeklyArtistCharts()
	n, err := charts.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 1, api.calls("user.getWeeklyChartList"))
	assert.Zero(t, api.calls("user.getWeeklyArtistChart"), "entries are not fetched by listing charts")

	first, err := charts.At(ctx, 0)
	require.NoError(t, err)
	assert.Same(t, Entity(user), first.Subject())
	assert.Equal(t, time.Unix(1000, 0).UTC(), first.Window().From)

	direct, err := user.WeeklyArtistChart(first.Window())
	require.NoError(t, err)
	assert.Same(t, first, direct)

	entries, err := first.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Muse", entries[0].Item.Name())
	assert.Equal(t, int64(12), entries[0].Weight)
	assert.Equal(t, "1000", api.lastForm().Get("from"))
	assert.Equal(t, "2000", api.lastForm().Get("to"))

	_, err = first.Entries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, api.calls("user.getWeeklyArtistChart"))

	second, err := charts.At(ctx, 1)
	require.NoError(t, err)
	later, err := second.Entries(ctx)
	require.NoError(t, err)

	// The same artist in two charts is two instances, and neither is the
	// unscoped artist.
	plain, err := c.Artist("Muse")
	require.NoError(t, err)
	assert.NotSame(t, entries[0].Item, later[0].Item)
	assert.NotSame(t, plain, entries[0].Item)
	assert.True(t, Equal(plain, entries[0].Item))
}

func TestUser_TopArtistsByPeriod(t *testing.T) {
	api := newFakeAPI(t).on("user.getTopArtists", lfmOK(`
<topartists user="alice" page="1" perPage="50" totalPages="1">
	<artist rank="1"><name>Muse</name><playcount>99</playcount></artist>
</topartists>`))
	c := api.client(Config{})

	user, err := c.User("alice")
	require.NoError(t, err)

	top, err := user.TopArtists(PeriodMonth).Take(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, int64(99), top[0].Weight)
	assert.Equal(t, "1month", api.lastForm().Get("period"))
}

func TestSearchArtists(t *testing.T) {
	api := newFakeAPI(t).on("artist.search", lfmOK(`
<results for="mu" xmlns:opensearch="http://a9.com/-/spec/opensearch/1.1/">
	<opensearch:Query role="request" searchTerms="mu" startPage="1"/>
	<opensearch:totalResults>2</opensearch:totalResults>
	<opensearch:startIndex>0</opensearch:startIndex>
	<opensearch:itemsPerPage>30</opensearch:itemsPerPage>
	<artistmatches>
		<artist><name>Muse</name><listeners>100</listeners></artist>
		<artist><name></name></artist>
		<artist><name>Mumford &amp; Sons</name></artist>
	</artistmatches>
</results>`))
	c := api.client(Config{})

	results := c.SearchArtists(" mu ")
	found, err := results.Take(context.Background(), 10)
	require.NoError(t, err)

	require.Len(t, found, 2, "unidentifiable results are skipped")
	assert.Equal(t, "Muse", found[0].Name())
	assert.Equal(t, "Mumford & Sons", found[1].Name())
	assert.Equal(t, "mu", api.lastForm().Get("artist"))
	assert.Equal(t, 1, api.calls("artist.search"))
}

func TestFetchPlaylistBypassesRegistry(t *testing.T) {
	api := newFakeAPI(t).on("playlist.fetch", lfmOK(`
<playlist version="1" xmlns="http://xspf.org/ns/0/">
	<title>Loved tracks</title>
	<creator>alice</creator>
	<date>2024-01-02T03:04:05Z</date>
	<trackList>
		<track>
			<title>Hysteria</title>
			<creator>Muse</creator>
			<duration>227000</duration>
		</track>
	</trackList>
</playlist>`))
	c := api.client(Config{})
	ctx := context.Background()

	before := c.Registry().Len()
	a, err := c.FetchPlaylist(ctx, "lastfm://playlist/1")
	require.NoError(t, err)
	b, err := c.FetchPlaylist(ctx, "lastfm://playlist/1")
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.False(t, Equal(a, b))
	assert.Equal(t, "Loved tracks", a.Title)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), a.Date)

	// Tracks are canonical even though the pages are not.
	require.Len(t, a.Tracks, 1)
	assert.Same(t, a.Tracks[0], b.Tracks[0])
	d, err := a.Tracks[0].Duration(ctx)
	require.NoError(t, err)
	assert.Equal(t, 227*time.Second, d)

	// One artist and one track were registered, no pages.
	assert.Equal(t, before+2, c.Registry().Len())
}
