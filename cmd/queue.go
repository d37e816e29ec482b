package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/lastkit/internal/config"
	"github.com/jfmyers9/lastkit/internal/scrobbler"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Manage scrobbles waiting to be submitted",
	Long: `Scrobbles that could not reach Last.fm, or were saved with
'lastkit scrobble --queue', wait in an offline queue until flushed.`,
}

var queueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List queued scrobbles",
	Args:  cobra.NoArgs,
	RunE:  runQueueList,
}

var queueFlushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Submit queued scrobbles to Last.fm",
	Long: `Submit queued scrobbles in batches of 50, oldest first. Scrobbles older
than two weeks are dropped since Last.fm no longer accepts them.`,
	Args: cobra.NoArgs,
	RunE: runQueueFlush,
}

func init() {
	rootCmd.AddCommand(queueCmd)
	queueCmd.AddCommand(queueListCmd, queueFlushCmd)

	queueListCmd.Flags().IntP("limit", "n", 0, "Maximum number of entries (0 = all)")
}

// openQueue opens the scrobble queue database, creating its directory.
func openQueue(path string) (*scrobbler.Queue, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create queue directory: %w", err)
		}
	}
	q, err := scrobbler.NewQueue(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scrobble queue: %w", err)
	}
	return q, nil
}

func runQueueList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	q, err := openQueue(cfg.Queue.Path)
	if err != nil {
		return err
	}
	defer q.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	entries, err := q.Pending(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "Queue is empty.")
		return nil
	}

	rows := make([]row, 0, len(entries))
	for _, e := range entries {
		note := ago(e.Scrobble.Timestamp)
		if e.Error != "" {
			note += fmt.Sprintf("  (%d failed: %s)", e.Attempts, e.Error)
		}
		rows = append(rows, row{Label: e.Scrobble.Track.Artist + " - " + e.Scrobble.Track.Track, Note: note})
	}
	printRows(cmd.OutOrStdout(), rows, "")
	return nil
}

func runQueueFlush(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	if s.cfg.LastFM.APISecret == "" || s.cfg.LastFM.SessionKey == "" {
		return fmt.Errorf("Last.fm credentials not configured. Run 'lastkit auth' first")
	}

	q, err := openQueue(s.cfg.Queue.Path)
	if err != nil {
		return err
	}
	defer q.Close()

	result, err := scrobbler.Flush(cmd.Context(), q, s.client.Scrobble(), s.logger)

	out := cmd.OutOrStdout()
	if result.Expired > 0 {
		fmt.Fprintf(out, "Dropped %d scrobbles older than two weeks\n", result.Expired)
	}
	if result.Accepted > 0 || result.Ignored > 0 {
		fmt.Fprintf(out, "✓ Submitted %d scrobbles (%d ignored by Last.fm)\n", result.Accepted, result.Ignored)
	}
	if err != nil {
		return err
	}
	if result.Accepted == 0 && result.Ignored == 0 && result.Expired == 0 {
		fmt.Fprintln(out, "Queue is empty.")
	}
	return nil
}
