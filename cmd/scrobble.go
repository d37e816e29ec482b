package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/lastkit/internal/scrobbler"
	"github.com/jfmyers9/lastkit/pkg/lastfm"
)

var scrobbleCmd = &cobra.Command{
	Use:   "scrobble <artist> <track>",
	Short: "Scrobble a track to Last.fm",
	Long: `Submit a play to the authenticated user's Last.fm history.

By default the track is scrobbled as played just now. Use --at to backdate
it (Last.fm rejects scrobbles older than two weeks), or --now-playing to
update the "now playing" status instead of scrobbling.

With --played, the play is checked against Last.fm's rules first: the track
must be at least 30 seconds long and have played for half its length or
four minutes, whichever is shorter.

If Last.fm cannot be reached, the scrobble is saved to the offline queue.
Use --queue to skip submitting entirely, and 'lastkit queue flush' to
submit queued scrobbles later.`,
	Args: cobra.ExactArgs(2),
	RunE: runScrobble,
}

func init() {
	rootCmd.AddCommand(scrobbleCmd)

	scrobbleCmd.Flags().String("album", "", "Album name")
	scrobbleCmd.Flags().String("album-artist", "", "Album artist, if different from the track artist")
	scrobbleCmd.Flags().Duration("duration", 0, "Track length (e.g. 3m25s)")
	scrobbleCmd.Flags().Duration("at", 0, "How long ago the track was played (e.g. 10m)")
	scrobbleCmd.Flags().Duration("played", 0, "How long the track was played; checked against --duration")
	scrobbleCmd.Flags().Bool("now-playing", false, "Update now playing instead of scrobbling")
	scrobbleCmd.Flags().Bool("queue", false, "Save to the offline queue without submitting")
	scrobbleCmd.MarkFlagsMutuallyExclusive("now-playing", "queue")
}

func runScrobble(cmd *cobra.Command, args []string) error {
	ctx, cancel := lookupContext()
	defer cancel()

	album, _ := cmd.Flags().GetString("album")
	albumArtist, _ := cmd.Flags().GetString("album-artist")
	length, _ := cmd.Flags().GetDuration("duration")
	since, _ := cmd.Flags().GetDuration("at")
	played, _ := cmd.Flags().GetDuration("played")
	nowPlaying, _ := cmd.Flags().GetBool("now-playing")
	queueOnly, _ := cmd.Flags().GetBool("queue")

	if cmd.Flags().Changed("played") {
		if err := scrobbler.CheckPlay(length, played); err != nil {
			return fmt.Errorf("not scrobbling %s - %s: %w", args[0], args[1], err)
		}
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	if s.cfg.LastFM.APISecret == "" || s.cfg.LastFM.SessionKey == "" {
		return fmt.Errorf("Last.fm credentials not configured. Run 'lastkit auth' first")
	}

	track := lastfm.ScrobbleTrack{
		Artist:      args[0],
		Track:       args[1],
		Album:       album,
		AlbumArtist: albumArtist,
		Duration:    int(length.Seconds()),
	}

	out := cmd.OutOrStdout()
	if nowPlaying {
		resp, err := s.client.Scrobble().UpdateNowPlaying(ctx, track)
		if err != nil {
			return fmt.Errorf("failed to update now playing: %w", err)
		}
		if reportIgnored(out, resp.IgnoredMessage) {
			return nil
		}
		fmt.Fprintf(out, "✓ Now playing %s - %s\n", resp.Artist, resp.Track)
		return nil
	}

	at := time.Now().Add(-since)
	play := lastfm.Scrobble{Track: track, Timestamp: at}
	if queueOnly {
		return enqueue(ctx, s, out, play)
	}

	resp, err := s.client.Scrobble().Scrobble(ctx, track, at)
	if retryable(err) {
		s.logger.Warn().Err(err).Msg("Scrobble failed, queueing for later")
		return enqueue(ctx, s, out, play)
	}
	if err != nil {
		return fmt.Errorf("failed to scrobble: %w", err)
	}
	s.logger.Debug().
		Int("accepted", resp.Accepted).
		Int("ignored", resp.Ignored).
		Msg("Scrobble submitted")

	for _, r := range resp.Scrobbles {
		if reportIgnored(out, r.IgnoredMessage) {
			continue
		}
		fmt.Fprintf(out, "✓ Scrobbled %s - %s (%s)\n", r.Artist, r.Track, ago(at))
	}
	return nil
}

// retryable reports whether a failed submission may succeed later: network
// failures and temporary Last.fm errors.
func retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, lastfm.ErrInvalidArgument) || errors.Is(err, lastfm.ErrNoSessionKey) ||
		errors.Is(err, lastfm.ErrNoAPISecret) {
		return false
	}
	var apiErr *lastfm.Error
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	return true
}

func enqueue(ctx context.Context, s *session, out io.Writer, play lastfm.Scrobble) error {
	q, err := openQueue(s.cfg.Queue.Path)
	if err != nil {
		return err
	}
	defer q.Close()

	if _, err := q.Add(ctx, play); err != nil {
		return fmt.Errorf("failed to queue scrobble: %w", err)
	}
	n, err := q.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Queued %s - %s (%d waiting; run 'lastkit queue flush')\n",
		play.Track.Artist, play.Track.Track, n)
	return nil
}

// reportIgnored prints why Last.fm ignored a submission and reports whether
// it did.
func reportIgnored(out io.Writer, msg lastfm.IgnoredMessage) bool {
	if msg.Code == 0 {
		return false
	}
	text := msg.Text
	if text == "" {
		text = fmt.Sprintf("code %d", msg.Code)
	}
	fmt.Fprintf(out, "✗ Ignored by Last.fm: %s\n", text)
	return true
}
