package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/lastkit/pkg/lastfm"
	"github.com/jfmyers9/lastkit/pkg/lazyseq"
)

var searchCmd = &cobra.Command{
	Use:       "search {artist|album|track|tag} <query>",
	Short:     "Search Last.fm",
	Long:      `Search artists, albums, tracks or tags by name. Results are fetched page by page until --limit is reached.`,
	Args:      cobra.MinimumNArgs(2),
	ValidArgs: []string{"artist", "album", "track", "tag"},
	RunE:      runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntP("limit", "n", 10, "Maximum number of results")
	searchCmd.Flags().String("artist", "", "Narrow a track search to this artist")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, cancel := lookupContext()
	defer cancel()

	limit, err := limitFlag(cmd)
	if err != nil {
		return err
	}
	query := strings.Join(args[1:], " ")

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	var labels []string
	switch args[0] {
	case "artist":
		labels, err = takeLabels(ctx, s.client.SearchArtists(query), limit, (*lastfm.Artist).Name)
	case "album":
		labels, err = takeLabels(ctx, s.client.SearchAlbums(query), limit, func(a *lastfm.Album) string {
			return a.Artist().Name() + " - " + a.Title()
		})
	case "track":
		artist, _ := cmd.Flags().GetString("artist")
		labels, err = takeLabels(ctx, s.client.SearchTracks(query, artist), limit, (*lastfm.Track).String)
	case "tag":
		labels, err = takeLabels(ctx, s.client.SearchTags(query), limit, (*lastfm.Tag).Name)
	default:
		return fmt.Errorf("unknown search type %q (want artist, album, track or tag)", args[0])
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(labels) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "No results.")
		return nil
	}
	rows := make([]row, len(labels))
	for i, l := range labels {
		rows[i] = row{Label: l}
	}
	printRows(cmd.OutOrStdout(), rows, "")
	return nil
}

// takeLabels forces up to limit results and renders each with label.
func takeLabels[T any](ctx context.Context, seq *lazyseq.Seq[T], limit int, label func(T) string) ([]string, error) {
	items, err := seq.Take(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = label(it)
	}
	return out, nil
}
