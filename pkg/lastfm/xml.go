package lastfm

import (
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// XML shapes shared by several methods. Numbers are decoded as strings
// because Last.fm pads some of them with whitespace or leaves them empty.

type xmlImage struct {
	Size string `xml:"size,attr"`
	URL  string `xml:",chardata"`
}

type xmlWiki struct {
	Published string `xml:"published"`
	Summary   string `xml:"summary"`
	Content   string `xml:"content"`
}

// xmlPaging holds the paging attributes of a listing element.
type xmlPaging struct {
	Page       string `xml:"page,attr"`
	PerPage    string `xml:"perPage,attr"`
	TotalPages string `xml:"totalPages,attr"`
	Total      string `xml:"total,attr"`
}

func (p xmlPaging) totalPages() int {
	return int(num(p.TotalPages))
}

// xmlOpenSearch holds the opensearch counters of a search response.
type xmlOpenSearch struct {
	TotalResults string `xml:"totalResults"`
	StartIndex   string `xml:"startIndex"`
	ItemsPerPage string `xml:"itemsPerPage"`
}

func (o xmlOpenSearch) totalPages() int {
	total, per := num(o.TotalResults), num(o.ItemsPerPage)
	if per <= 0 {
		return 1
	}
	return int(math.Ceil(float64(total) / float64(per)))
}

// xmlArtist covers both <artist>Name</artist> and
// <artist><name>Name</name>...</artist>.
type xmlArtist struct {
	Text      string     `xml:",chardata"`
	MBIDAttr  string     `xml:"mbid,attr"`
	Rank      string     `xml:"rank,attr"`
	Name      string     `xml:"name"`
	MBID      string     `xml:"mbid"`
	URL       string     `xml:"url"`
	Listeners string     `xml:"listeners"`
	Playcount string     `xml:"playcount"`
	Count     string     `xml:"tagcount"`
	Match     string     `xml:"match"`
	Images    []xmlImage `xml:"image"`
}

func (x xmlArtist) name() string {
	if n := strings.TrimSpace(x.Name); n != "" {
		return n
	}
	return strings.TrimSpace(x.Text)
}

func (x xmlArtist) mbid() string {
	if m := strings.TrimSpace(x.MBID); m != "" {
		return m
	}
	return strings.TrimSpace(x.MBIDAttr)
}

// xmlAlbum covers album listings, album.getInfo and the nested <album> of
// tracks, which uses <title> and a plain-text <artist>.
type xmlAlbum struct {
	Text      string     `xml:",chardata"`
	MBIDAttr  string     `xml:"mbid,attr"`
	Rank      string     `xml:"rank,attr"`
	Name      string     `xml:"name"`
	Title     string     `xml:"title"`
	Artist    xmlArtist  `xml:"artist"`
	MBID      string     `xml:"mbid"`
	URL       string     `xml:"url"`
	Playcount string     `xml:"playcount"`
	Listeners string     `xml:"listeners"`
	Images    []xmlImage `xml:"image"`
}

func (x xmlAlbum) name() string {
	for _, s := range []string{x.Name, x.Title, x.Text} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

func (x xmlAlbum) mbid() string {
	if m := strings.TrimSpace(x.MBID); m != "" {
		return m
	}
	return strings.TrimSpace(x.MBIDAttr)
}

// xmlDate is a timestamp element. Listings use a uts attribute and
// user.getInfo uses unixtime.
type xmlDate struct {
	UTS      string `xml:"uts,attr"`
	UnixTime string `xml:"unixtime,attr"`
	Text     string `xml:",chardata"`
}

func (d xmlDate) at() time.Time {
	if n := weight(d.UTS, d.UnixTime); n > 0 {
		return time.Unix(n, 0).UTC()
	}
	return time.Time{}
}

type xmlTrack struct {
	Rank       string     `xml:"rank,attr"`
	NowPlaying string     `xml:"nowplaying,attr"`
	ID         string     `xml:"id"`
	Name       string     `xml:"name"`
	MBID       string     `xml:"mbid"`
	URL        string     `xml:"url"`
	Duration   string     `xml:"duration"`
	Listeners  string     `xml:"listeners"`
	Playcount  string     `xml:"playcount"`
	Match      string     `xml:"match"`
	Artist     xmlArtist  `xml:"artist"`
	Album      xmlAlbum   `xml:"album"`
	Date       xmlDate    `xml:"date"`
	Images     []xmlImage `xml:"image"`
}

type xmlTag struct {
	Name     string `xml:"name"`
	URL      string `xml:"url"`
	Count    string `xml:"count"`
	Reach    string `xml:"reach"`
	Taggings string `xml:"taggings"`
}

type xmlUser struct {
	ID         string     `xml:"id"`
	Name       string     `xml:"name"`
	RealName   string     `xml:"realname"`
	URL        string     `xml:"url"`
	Country    string     `xml:"country"`
	Age        string     `xml:"age"`
	Gender     string     `xml:"gender"`
	Subscriber string     `xml:"subscriber"`
	Playcount  string     `xml:"playcount"`
	Playlists  string     `xml:"playlists"`
	Registered xmlDate    `xml:"registered"`
	Images     []xmlImage `xml:"image"`
}

func images(xs []xmlImage) Images {
	out := make(Images, len(xs))
	for _, x := range xs {
		if u := strings.TrimSpace(x.URL); u != "" {
			out[x.Size] = u
		}
	}
	return out
}

func wiki(x xmlWiki) Wiki {
	return Wiki{
		Published: strings.TrimSpace(x.Published),
		Summary:   strings.TrimSpace(x.Summary),
		Content:   strings.TrimSpace(x.Content),
	}
}

// num parses an integer, returning 0 for empty or malformed input.
func num(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// fnum parses a float, returning 0 for empty or malformed input.
func fnum(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

// flag parses Last.fm's "1"/"0" and "true"/"false" booleans.
func flag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

// webName escapes a name the way Last.fm website URLs do: spaces become
// "+" and reserved characters are percent-encoded.
func webName(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "%2F", "%252F")
}
