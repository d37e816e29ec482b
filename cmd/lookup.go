package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/lastkit/pkg/lastfm"
)

var artistCmd = &cobra.Command{
	Use:   "artist <name>",
	Short: "Show an artist's details",
	Long: `Show an artist's listener and play counts, tags and biography.

With --similar, also list similar artists. With --top-tracks, list the
artist's most played tracks.`,
	Args: cobra.ExactArgs(1),
	RunE: runArtist,
}

var albumCmd = &cobra.Command{
	Use:   "album <artist> <title>",
	Short: "Show an album and its track list",
	Args:  cobra.ExactArgs(2),
	RunE:  runAlbum,
}

var trackCmd = &cobra.Command{
	Use:   "track <artist> <title>",
	Short: "Show a track's details",
	Long: `Show a track's details. With --love or --unlove, update the
authenticated user's loved tracks instead.`,
	Args: cobra.ExactArgs(2),
	RunE: runTrack,
}

func init() {
	rootCmd.AddCommand(artistCmd, albumCmd, trackCmd)

	artistCmd.Flags().Int("similar", 0, "Number of similar artists to list")
	artistCmd.Flags().Int("top-tracks", 0, "Number of top tracks to list")
	trackCmd.Flags().Bool("love", false, "Love the track")
	trackCmd.Flags().Bool("unlove", false, "Unlove the track")
	trackCmd.MarkFlagsMutuallyExclusive("love", "unlove")
}

func lookupContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

func runArtist(cmd *cobra.Command, args []string) error {
	ctx, cancel := lookupContext()
	defer cancel()

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	artist, err := s.client.Artist(args[0])
	if err != nil {
		return err
	}
	info, err := artist.Info(ctx)
	if err != nil {
		return fmt.Errorf("failed to get artist info: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, info.Name)
	printFields(out,
		"Listeners", count(info.Listeners),
		"Scrobbles", count(info.Playcount),
		"Your plays", count(info.UserPlaycount),
		"Tags", tagNames(info.Tags),
		"URL", info.URL,
	)
	if bio := summary(info.Bio.Summary); bio != "" {
		fmt.Fprintf(out, "\n%s\n", bio)
	}

	if n, _ := cmd.Flags().GetInt("similar"); n > 0 {
		similar, err := artist.Similar(ctx, n)
		if err != nil {
			return fmt.Errorf("failed to get similar artists: %w", err)
		}
		fmt.Fprintln(out, "\nSimilar artists:")
		rows := make([]row, 0, len(similar))
		for _, sim := range similar {
			rows = append(rows, row{Label: sim.Item.Name(), Note: fmt.Sprintf("%.0f%%", sim.Match*100)})
		}
		printRows(out, rows, "")
	}

	if n, _ := cmd.Flags().GetInt("top-tracks"); n > 0 {
		top, err := artist.TopTracks().Take(ctx, n)
		if err != nil {
			return fmt.Errorf("failed to get top tracks: %w", err)
		}
		fmt.Fprintln(out, "\nTop tracks:")
		printRows(out, trackRows(top), "plays")
	}
	return nil
}

func runAlbum(cmd *cobra.Command, args []string) error {
	ctx, cancel := lookupContext()
	defer cancel()

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	album, err := s.client.Album(args[0], args[1])
	if err != nil {
		return err
	}
	info, err := album.Info(ctx)
	if err != nil {
		return fmt.Errorf("failed to get album info: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s - %s\n", info.Artist.Name(), info.Title)
	printFields(out,
		"Released", info.ReleaseDate,
		"Listeners", count(info.Listeners),
		"Scrobbles", count(info.Playcount),
		"Your plays", count(info.UserPlaycount),
		"Tags", tagNames(info.Tags),
		"URL", info.URL,
	)

	if len(info.Tracks) > 0 {
		fmt.Fprintln(out, "\nTracks:")
		rows := make([]row, 0, len(info.Tracks))
		for _, t := range info.Tracks {
			d, _ := t.Duration(ctx)
			rows = append(rows, row{Label: t.Title(), Note: duration(d)})
		}
		printRows(out, rows, "")
	}
	return nil
}

func runTrack(cmd *cobra.Command, args []string) error {
	ctx, cancel := lookupContext()
	defer cancel()

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	track, err := s.client.Track(args[0], args[1])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	love, _ := cmd.Flags().GetBool("love")
	unlove, _ := cmd.Flags().GetBool("unlove")
	switch {
	case love:
		if err := track.Love(ctx); err != nil {
			return fmt.Errorf("failed to love track: %w", err)
		}
		fmt.Fprintf(out, "✓ Loved %s\n", track)
		return nil
	case unlove:
		if err := track.Unlove(ctx); err != nil {
			return fmt.Errorf("failed to unlove track: %w", err)
		}
		fmt.Fprintf(out, "✓ Unloved %s\n", track)
		return nil
	}

	info, err := track.Info(ctx)
	if err != nil {
		return fmt.Errorf("failed to get track info: %w", err)
	}
	printTrackInfo(out, info)
	return nil
}

func printTrackInfo(out io.Writer, info *lastfm.TrackInfo) {
	fmt.Fprintf(out, "%s - %s\n", info.Artist.Name(), info.Title)
	album := ""
	if info.Album != nil {
		album = info.Album.Title()
	}
	loved := ""
	if info.UserLoved {
		loved = "yes"
	}
	printFields(out,
		"Album", album,
		"Duration", duration(info.Duration),
		"Listeners", count(info.Listeners),
		"Scrobbles", count(info.Playcount),
		"Your plays", count(info.UserPlaycount),
		"Loved", loved,
		"Tags", tagNames(info.Tags),
		"URL", info.URL,
	)
}

func tagNames(tags []*lastfm.Tag) string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name())
	}
	return strings.Join(names, ", ")
}

// duration formats d as m:ss, or "" for zero.
func duration(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	secs := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func trackRows(items []lastfm.TopItem[*lastfm.Track]) []row {
	rows := make([]row, 0, len(items))
	for _, it := range items {
		rows = append(rows, row{Label: it.Item.String(), Count: it.Weight})
	}
	return rows
}

func artistRows(items []lastfm.TopItem[*lastfm.Artist]) []row {
	rows := make([]row, 0, len(items))
	for _, it := range items {
		rows = append(rows, row{Label: it.Item.Name(), Count: it.Weight})
	}
	return rows
}

func albumRows(items []lastfm.TopItem[*lastfm.Album]) []row {
	rows := make([]row, 0, len(items))
	for _, it := range items {
		rows = append(rows, row{Label: it.Item.Artist().Name() + " - " + it.Item.Title(), Count: it.Weight})
	}
	return rows
}

func tagRows(items []lastfm.TopItem[*lastfm.Tag]) []row {
	rows := make([]row, 0, len(items))
	for _, it := range items {
		rows = append(rows, row{Label: it.Item.Name(), Count: it.Weight})
	}
	return rows
}

// limitFlag returns the --limit flag, which must be positive.
func limitFlag(cmd *cobra.Command) (int, error) {
	n, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("--limit must be positive, got %d", n)
	}
	return n, nil
}
