package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/lastkit/pkg/lastfm"
)

var chartCmd = &cobra.Command{
	Use:       "chart {artists|tracks|tags}",
	Short:     "Show Last.fm's global charts",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"artists", "tracks", "tags"},
	RunE:      runChart,
}

var chartWeeklyCmd = &cobra.Command{
	Use:   "weekly",
	Short: "Show weekly artist charts of a user, tag or group",
	Long: `List the weeks a user, tag or group has charts for. With --week, show
the artist chart of that week (0 is the most recent).

Exactly one of --user, --tag or --group selects the chart subject.`,
	Args: cobra.NoArgs,
	RunE: runChartWeekly,
}

func init() {
	rootCmd.AddCommand(chartCmd)
	chartCmd.AddCommand(chartWeeklyCmd)

	chartCmd.PersistentFlags().IntP("limit", "n", 10, "Maximum number of entries")
	chartWeeklyCmd.Flags().String("user", "", "User whose charts to show")
	chartWeeklyCmd.Flags().String("tag", "", "Tag whose charts to show")
	chartWeeklyCmd.Flags().String("group", "", "Group whose charts to show")
	chartWeeklyCmd.Flags().IntP("week", "w", -1, "Show the chart of this week (0 = most recent)")
	chartWeeklyCmd.MarkFlagsMutuallyExclusive("user", "tag", "group")
	chartWeeklyCmd.MarkFlagsOneRequired("user", "tag", "group")
}

func runChart(cmd *cobra.Command, args []string) error {
	ctx, cancel := lookupContext()
	defer cancel()

	limit, err := limitFlag(cmd)
	if err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	var rows []row
	unit := "listeners"
	switch args[0] {
	case "artists":
		var items []lastfm.TopItem[*lastfm.Artist]
		items, err = s.client.TopArtists().Take(ctx, limit)
		rows = artistRows(items)
	case "tracks":
		var items []lastfm.TopItem[*lastfm.Track]
		items, err = s.client.TopTracks().Take(ctx, limit)
		rows = trackRows(items)
	case "tags":
		var items []lastfm.TopItem[*lastfm.Tag]
		items, err = s.client.TopTags().Take(ctx, limit)
		rows = tagRows(items)
		unit = "taggings"
	default:
		return fmt.Errorf("unknown chart %q (want artists, tracks or tags)", args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to get top %s: %w", args[0], err)
	}

	printRows(cmd.OutOrStdout(), rows, unit)
	return nil
}

func runChartWeekly(cmd *cobra.Command, args []string) error {
	ctx, cancel := lookupContext()
	defer cancel()

	limit, err := limitFlag(cmd)
	if err != nil {
		return err
	}
	week, _ := cmd.Flags().GetInt("week")
	userName, _ := cmd.Flags().GetString("user")
	tagName, _ := cmd.Flags().GetString("tag")
	groupName, _ := cmd.Flags().GetString("group")

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	var subject lastfm.ChartSubject
	switch {
	case userName != "":
		subject, err = s.client.User(userName)
	case tagName != "":
		subject, err = s.client.Tag(tagName)
	default:
		subject, err = s.client.Group(groupName)
	}
	if err != nil {
		return err
	}

	return printCharts(ctx, cmd.OutOrStdout(), subject, limit, week)
}

// printCharts lists the subject's chart weeks, newest first, or the artist
// chart of one week when week >= 0.
func printCharts(ctx context.Context, out io.Writer, subject lastfm.ChartSubject, limit, week int) error {
	charts := subject.WeeklyArtistCharts()
	n, err := charts.Len(ctx)
	if err != nil {
		return fmt.Errorf("failed to get chart list: %w", err)
	}
	if n == 0 {
		return errors.New("no weekly charts available")
	}

	if week < 0 {
		rows := make([]row, 0, min(limit, n))
		for i := n - 1; i >= 0 && len(rows) < limit; i-- {
			chart, err := charts.At(ctx, i)
			if err != nil {
				return err
			}
			rows = append(rows, row{Label: chart.Window().String()})
		}
		printRows(out, rows, "")
		return nil
	}

	if week >= n {
		return fmt.Errorf("week %d out of range: %s has %d weekly charts", week, subject, n)
	}
	chart, err := charts.At(ctx, n-1-week)
	if err != nil {
		return err
	}
	entries, err := chart.Entries(ctx)
	if err != nil {
		return fmt.Errorf("failed to get chart %s: %w", chart.Window(), err)
	}

	fmt.Fprintf(out, "%s, week of %s\n", subject, chart.Window())
	printRows(out, artistRows(entries[:min(limit, len(entries))]), "plays")
	return nil
}
