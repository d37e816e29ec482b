package cmd

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/lastkit/pkg/lastfm"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Browse a Last.fm user's profile and history",
	Long: `Browse a Last.fm user's profile, scrobble history, loved tracks, top
lists and weekly charts. The user defaults to the one saved by 'lastkit auth'.`,
}

var userInfoCmd = &cobra.Command{
	Use:   "info [user]",
	Short: "Show a user's profile",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runUserInfo,
}

var userRecentCmd = &cobra.Command{
	Use:   "recent [user]",
	Short: "List recent scrobbles",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runUserRecent,
}

var userLovedCmd = &cobra.Command{
	Use:   "loved [user]",
	Short: "List loved tracks",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runUserLoved,
}

var userTopCmd = &cobra.Command{
	Use:       "top {artists|albums|tracks|tags} [user]",
	Short:     "List a user's most played artists, albums, tracks or tags",
	Args:      cobra.RangeArgs(1, 2),
	ValidArgs: []string{"artists", "albums", "tracks", "tags"},
	RunE:      runUserTop,
}

var userChartsCmd = &cobra.Command{
	Use:   "charts [user]",
	Short: "Show weekly artist charts",
	Long: `List the weeks a user has charts for. With --week, show the artist chart
of that week (0 is the most recent).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUserCharts,
}

var periods = []string{
	string(lastfm.PeriodOverall),
	string(lastfm.PeriodWeek),
	string(lastfm.PeriodMonth),
	string(lastfm.PeriodQuarter),
	string(lastfm.PeriodHalfYear),
	string(lastfm.PeriodYear),
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userInfoCmd, userRecentCmd, userLovedCmd, userTopCmd, userChartsCmd)

	for _, c := range []*cobra.Command{userRecentCmd, userLovedCmd, userTopCmd, userChartsCmd} {
		c.Flags().IntP("limit", "n", 10, "Maximum number of entries")
	}
	userRecentCmd.Flags().Duration("since", 0, "Only scrobbles newer than this (e.g. 24h)")
	userTopCmd.Flags().StringP("period", "p", string(lastfm.PeriodOverall),
		"Time range: "+strings.Join(periods, ", "))
	userChartsCmd.Flags().IntP("week", "w", -1, "Show the chart of this week (0 = most recent)")
}

// openUser opens a session and resolves the user named by args.
func openUser(args []string) (*session, *lastfm.User, error) {
	s, err := openSession()
	if err != nil {
		return nil, nil, err
	}
	name, err := s.username(args)
	if err != nil {
		s.Close()
		return nil, nil, err
	}
	user, err := s.client.User(name)
	if err != nil {
		s.Close()
		return nil, nil, err
	}
	return s, user, nil
}

func runUserInfo(cmd *cobra.Command, args []string) error {
	ctx, cancel := lookupContext()
	defer cancel()

	s, user, err := openUser(args)
	if err != nil {
		return err
	}
	defer s.Close()

	info, err := user.Info(ctx)
	if err != nil {
		return fmt.Errorf("failed to get user info: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, info.Name)
	registered := ""
	if !info.Registered.IsZero() {
		registered = info.Registered.Format(time.DateOnly) + " (" + ago(info.Registered) + ")"
	}
	printFields(out,
		"Name", info.RealName,
		"Country", info.Country,
		"Scrobbles", count(info.Playcount),
		"Playlists", count(info.Playlists),
		"Registered", registered,
		"URL", info.URL,
	)
	return nil
}

func runUserRecent(cmd *cobra.Command, args []string) error {
	ctx, cancel := lookupContext()
	defer cancel()

	s, user, err := openUser(args)
	if err != nil {
		return err
	}
	defer s.Close()

	limit, err := limitFlag(cmd)
	if err != nil {
		return err
	}
	var from time.Time
	if since, _ := cmd.Flags().GetDuration("since"); since > 0 {
		from = time.Now().Add(-since)
	}

	plays, err := user.RecentTracks(from, time.Time{}).Take(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to get recent tracks: %w", err)
	}

	rows := make([]row, 0, len(plays))
	for _, p := range plays {
		rows = append(rows, row{Label: p.Track.String(), Note: ago(p.PlayedAt)})
	}
	printRows(cmd.OutOrStdout(), rows, "")
	return nil
}

func runUserLoved(cmd *cobra.Command, args []string) error {
	ctx, cancel := lookupContext()
	defer cancel()

	s, user, err := openUser(args)
	if err != nil {
		return err
	}
	defer s.Close()

	limit, err := limitFlag(cmd)
	if err != nil {
		return err
	}
	loved, err := user.LovedTracks().Take(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to get loved tracks: %w", err)
	}

	rows := make([]row, 0, len(loved))
	for _, l := range loved {
		rows = append(rows, row{Label: l.Track.String(), Note: ago(l.LovedAt)})
	}
	printRows(cmd.OutOrStdout(), rows, "")
	return nil
}

func runUserTop(cmd *cobra.Command, args []string) error {
	ctx, cancel := lookupContext()
	defer cancel()

	period, _ := cmd.Flags().GetString("period")
	if !slices.Contains(periods, period) {
		return fmt.Errorf("unknown period %q (want one of %s)", period, strings.Join(periods, ", "))
	}
	limit, err := limitFlag(cmd)
	if err != nil {
		return err
	}

	s, user, err := openUser(args[1:])
	if err != nil {
		return err
	}
	defer s.Close()

	p := lastfm.Period(period)
	var rows []row
	unit := "plays"
	switch args[0] {
	case "artists":
		var items []lastfm.TopItem[*lastfm.Artist]
		items, err = user.TopArtists(p).Take(ctx, limit)
		rows = artistRows(items)
	case "albums":
		var items []lastfm.TopItem[*lastfm.Album]
		items, err = user.TopAlbums(p).Take(ctx, limit)
		rows = albumRows(items)
	case "tracks":
		var items []lastfm.TopItem[*lastfm.Track]
		items, err = user.TopTracks(p).Take(ctx, limit)
		rows = trackRows(items)
	case "tags":
		var items []lastfm.TopItem[*lastfm.Tag]
		items, err = user.TopTags(ctx)
		rows = tagRows(items[:min(limit, len(items))])
		unit = "uses"
	default:
		return fmt.Errorf("unknown list %q (want artists, albums, tracks or tags)", args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to get top %s: %w", args[0], err)
	}

	printRows(cmd.OutOrStdout(), rows, unit)
	return nil
}

func runUserCharts(cmd *cobra.Command, args []string) error {
	ctx, cancel := lookupContext()
	defer cancel()

	s, user, err := openUser(args)
	if err != nil {
		return err
	}
	defer s.Close()

	limit, err := limitFlag(cmd)
	if err != nil {
		return err
	}
	week, _ := cmd.Flags().GetInt("week")
	return printCharts(ctx, cmd.OutOrStdout(), user, limit, week)
}
