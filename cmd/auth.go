package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/lastkit/internal/config"
	"github.com/jfmyers9/lastkit/pkg/lastfm"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authenticate with Last.fm",
	Long: `Authenticate with Last.fm to enable scrobbling, loving and tagging.

This command will guide you through the Last.fm authentication process:
1. You'll be prompted to enter your Last.fm API key and secret
2. A browser URL will be provided for you to authorize the application
3. After authorization, a session key and your username will be saved to
   your config file

You can get API credentials from: https://www.last.fm/api/account/create`,
	RunE: runAuth,
}

func init() {
	rootCmd.AddCommand(authCmd)
}

func runAuth(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := authenticate(cmd.Context(), cfg, os.Stdin, cmd.OutOrStdout(), nil); err != nil {
		return err
	}

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n✓ Authentication successful!\n")
	fmt.Fprintf(out, "✓ Session for %s saved to %s/config.yaml\n", cfg.LastFM.Username, config.GetConfigDir())
	fmt.Fprintln(out, "\nYou can now use 'lastkit scrobble' to submit plays.")
	return nil
}

// authenticate runs the desktop auth flow and stores the session in cfg.
// newClient overrides how the Last.fm client is built.
func authenticate(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer, newClient func(lastfm.Config) (*lastfm.Client, error)) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if newClient == nil {
		newClient = lastfm.NewClient
	}
	reader := bufio.NewReader(in)

	fmt.Fprintln(out, "Last.fm Authentication")
	fmt.Fprintln(out, "======================")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "You can get API credentials from: https://www.last.fm/api/account/create")
	fmt.Fprintln(out)

	// Check if we already have credentials
	if cfg.LastFM.APIKey != "" && cfg.LastFM.APISecret != "" {
		fmt.Fprintf(out, "Found existing API credentials.\n")
		fmt.Fprintf(out, "API Key: %s\n", cfg.LastFM.APIKey)
		fmt.Fprint(out, "\nUse existing credentials? [Y/n]: ")
		response, err := reader.ReadString('\n')
		if err != nil {
			response = "y"
		}
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "" && response != "y" && response != "yes" {
			cfg.LastFM.APIKey = ""
			cfg.LastFM.APISecret = ""
		}
	}

	if cfg.LastFM.APIKey == "" {
		fmt.Fprint(out, "Enter your Last.fm API Key: ")
		apiKey, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read API key: %w", err)
		}
		cfg.LastFM.APIKey = strings.TrimSpace(apiKey)
	}

	if cfg.LastFM.APISecret == "" {
		fmt.Fprint(out, "Enter your Last.fm API Secret: ")
		apiSecret, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read API secret: %w", err)
		}
		cfg.LastFM.APISecret = strings.TrimSpace(apiSecret)
	}

	if cfg.LastFM.APIKey == "" || cfg.LastFM.APISecret == "" {
		return fmt.Errorf("API key and secret are required")
	}

	client, err := newClient(lastfm.Config{
		APIKey:    cfg.LastFM.APIKey,
		APISecret: cfg.LastFM.APISecret,
	})
	if err != nil {
		return fmt.Errorf("failed to create Last.fm client: %w", err)
	}

	fmt.Fprintln(out, "\nGenerating authentication token...")
	token, err := client.Auth().GetToken(ctx)
	if err != nil {
		return fmt.Errorf("failed to generate auth token: %w", err)
	}

	fmt.Fprintln(out, "\nPlease visit this URL to authorize lastkit:")
	fmt.Fprintf(out, "\n  %s\n\n", client.Auth().GetAuthURL(token.Token))
	fmt.Fprintln(out, "After authorizing, press Enter to continue...")
	_, _ = reader.ReadString('\n')

	// The token may not be authorized yet when the user presses Enter.
	fmt.Fprintln(out, "Retrieving session key...")
	var sess *lastfm.Session
	maxRetries := 3
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		sess, err = client.Auth().GetSession(ctx, token.Token)
		if err == nil {
			break
		}

		if i < maxRetries-1 {
			fmt.Fprintf(out, "Failed to retrieve session (attempt %d/%d). Retrying in %v...\n",
				i+1, maxRetries, retryDelay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryDelay):
			}
		}
	}

	if err != nil {
		return fmt.Errorf("failed to get session key after %d attempts: %w", maxRetries, err)
	}

	cfg.LastFM.SessionKey = sess.Key
	cfg.LastFM.Username = sess.Username
	return nil
}
