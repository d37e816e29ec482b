package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jfmyers9/lastkit/internal/config"
	"github.com/jfmyers9/lastkit/internal/logging"
	"github.com/jfmyers9/lastkit/pkg/lastfm"
	"github.com/jfmyers9/lastkit/pkg/respcache"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

var (
	logFile  string
	logLevel string
	noCache  bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lastkit",
	Short: "Last.fm from the command line",
	Long: `lastkit queries Last.fm music metadata and scrobbles tracks.

It looks up artists, albums, tracks and tags, browses user histories and
weekly charts, and submits scrobbles for an authenticated account.

Responses are cached on disk so repeated lookups stay fast and within
Last.fm's rate limits. Run 'lastkit auth' once to enable scrobbling.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log file path (default: stderr)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error; default from config)")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "Bypass the on-disk response cache")
}

// session bundles what a command needs to talk to Last.fm.
type session struct {
	cfg     *config.Config
	client  *lastfm.Client
	logger  zerolog.Logger
	closers []io.Closer
}

// Close releases the cache database and log file.
func (s *session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			s.logger.Warn().Err(err).Msg("Error during shutdown")
		}
	}
}

// openSession loads configuration, sets up logging and the response cache,
// and builds a Last.fm client.
func openSession() (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return newSession(cfg)
}

func newSession(cfg *config.Config) (*session, error) {
	if cfg.LastFM.APIKey == "" {
		return nil, errors.New("Last.fm API key not configured. Run 'lastkit auth' first")
	}

	level := logLevel
	if level == "" {
		level = cfg.LogLevel
	}
	logger, logCloser := logging.Setup(logFile, level)
	s := &session{cfg: cfg, logger: logger, closers: []io.Closer{logCloser}}

	lcfg := lastfm.Config{
		APIKey:             cfg.LastFM.APIKey,
		APISecret:          cfg.LastFM.APISecret,
		SessionKey:         cfg.LastFM.SessionKey,
		Username:           cfg.LastFM.Username,
		UserAgent:          "lastkit/" + version,
		Logger:             logging.LastFM(logger),
		MinRequestInterval: cfg.RateLimit,
		CacheTTL:           cfg.Cache.TTL,
	}

	if cfg.Cache.Enabled && !noCache {
		cache, err := openCache(cfg.Cache.Path)
		if err != nil {
			// Lookups still work without the cache.
			logger.Warn().Err(err).Str("path", cfg.Cache.Path).Msg("Response cache unavailable")
		} else {
			lcfg.Cache = cache
			s.closers = append(s.closers, cache)
			logger.Debug().Str("path", cfg.Cache.Path).Msg("Using response cache")
		}
	}

	client, err := lastfm.NewClient(lcfg)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to create Last.fm client: %w", err)
	}
	s.client = client
	return s, nil
}

// openCache opens the response database, creating its directory.
func openCache(path string) (*respcache.Cache, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}
	return respcache.Open(path)
}

// username returns the user named in args, or the configured one.
func (s *session) username(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if s.cfg.LastFM.Username != "" {
		return s.cfg.LastFM.Username, nil
	}
	return "", errors.New("no user given and no username configured. Run 'lastkit auth' or pass a user")
}
