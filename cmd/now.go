package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"text/template"
	"time"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/lastkit/pkg/lastfm"
)

// nowCmd represents the now command
var nowCmd = &cobra.Command{
	Use:   "now [user]",
	Short: "Display the track a Last.fm user is scrobbling",
	Long: `Show what a Last.fm user is listening to right now. The user defaults
to the one saved by 'lastkit auth'.

The output format can be customized in ~/.config/lastkit/config.yaml
using a Go template. Available fields: .Name, .Artist, .Album, .User

Exit codes:
  0 - Track is currently playing
  1 - Nothing playing or the lookup failed`,
	Args: cobra.MaximumNArgs(1),
	RunE: runNow,
}

func init() {
	rootCmd.AddCommand(nowCmd)

	// Add format flag to override config
	nowCmd.Flags().StringP("format", "f", "", "Output format template (overrides config)")
	// Add width flag to set fixed output width
	nowCmd.Flags().IntP("width", "w", 0, "Fixed output width (0=disabled, overrides config)")
}

// nowPlaying is the data the output template sees.
type nowPlaying struct {
	Name   string
	Artist string
	Album  string
	User   string
}

func runNow(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	name, err := s.username(args)
	if err != nil {
		return err
	}

	format := s.cfg.OutputFormat
	if f, _ := cmd.Flags().GetString("format"); f != "" {
		format = f
	}
	width, _ := cmd.Flags().GetInt("width")
	if width == 0 {
		width = s.cfg.OutputWidth
	}

	user, err := s.client.User(name)
	if err != nil {
		return err
	}
	played, err := user.NowPlaying(ctx)
	if errors.Is(err, lastfm.ErrNotFound) {
		// Nothing playing: no output, exit code 1 for status bars.
		s.Close()
		os.Exit(1)
	}
	if err != nil {
		return fmt.Errorf("failed to get current track: %w", err)
	}

	output, err := formatNowPlaying(nowPlaying{
		Name:   played.Track.Title(),
		Artist: played.Track.Artist().Name(),
		Album:  played.Album,
		User:   user.Name(),
	}, format)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), padToWidth(output, width))
	return nil
}

// formatNowPlaying applies the template to the track data
func formatNowPlaying(track nowPlaying, templateStr string) (string, error) {
	tmpl, err := template.New("output").Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("invalid template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, track); err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}

	return buf.String(), nil
}
