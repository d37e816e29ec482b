// Package lastfm provides a client library for the Last.fm API 2.0.
//
// # Overview
//
// The client exposes Last.fm's catalogue as typed entities: artists,
// albums, tracks, tags, users, groups, countries, locations, venues,
// events, playlists and weekly charts. Entities are cheap handles. Building
// one costs no request; details are fetched the first time they are asked
// for and kept on the entity afterwards.
//
// # Quick Start
//
//	client, err := lastfm.NewClient(lastfm.Config{
//	    APIKey: "your-api-key",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	artist, err := client.Artist("Radiohead")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	info, err := artist.Info(ctx)
//
// # Identity
//
// Every entity is canonical per client. Asking for the same artist twice,
// in any letter case, returns the same *Artist:
//
//	a, _ := client.Artist("Muse")
//	b, _ := client.Artist("MUSE")
//	// a == b
//
// Entities reached through a listing are the same instances as those built
// directly, so details fetched through one path are visible through the
// other. Chart entries are the exception: entries are scoped to the chart
// they belong to, so the same artist in two weekly charts is two
// instances.
//
// Identities live in a Registry that never evicts. Long-running processes
// that touch many entities should create clients (or registries) per unit
// of work.
//
// # Sequences
//
// Paginated listings return a *lazyseq.Seq. Nothing is fetched until the
// sequence is read, and each page is fetched only when earlier elements
// have been consumed and more are needed. Elements are buffered, so
// iterating twice costs no further requests:
//
//	top := artist.TopTracks()
//	first, err := top.Take(ctx, 10) // one request
//	for item, err := range top.All(ctx) {
//	    if err != nil {
//	        break
//	    }
//	    fmt.Println(item.Item, item.Weight)
//	}
//
// # Authentication
//
// Reads only need an API key. Writes (scrobbling, loving, tagging) need the
// API secret and a session key from the desktop token flow:
//
//  1. Get a token with Auth().GetToken
//  2. Direct the user to Auth().GetAuthURL(token)
//  3. Exchange the token with Auth().GetSession
//  4. Store the session key and pass it as Config.SessionKey
//
// # Scrobbling
//
//	track := lastfm.ScrobbleTrack{Artist: "The Beatles", Track: "Yesterday"}
//	_, err := client.Scrobble().UpdateNowPlaying(ctx, track)
//	_, err = client.Scrobble().Scrobble(ctx, track, time.Now())
//
// # Caching and Rate Limiting
//
// Config.Cache stores unsigned GET responses keyed by their full request
// URL; see package respcache for a SQLite-backed implementation.
// Config.MinRequestInterval spaces out requests; Last.fm asks for no more
// than five per second (DefaultMinRequestInterval).
//
// # Error Handling
//
// API failures are returned as *Error with the Last.fm error code.
// Temporary failures (codes 11, 16 and 29) and network errors are retried
// with exponential backoff:
//
//	_, err := artist.Info(ctx)
//	var apiErr *lastfm.Error
//	if errors.As(err, &apiErr) && apiErr.Code == lastfm.ErrCodeInvalidParameters {
//	    // unknown artist
//	}
package lastfm
