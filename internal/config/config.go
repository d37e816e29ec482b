package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

const appName = "lastkit"

// Config holds application configuration
type Config struct {
	// Output format template for the now command
	// Default: "{{.Artist}} - {{.Name}}"
	OutputFormat string

	// Display width the now command pads or truncates to. Zero disables it.
	OutputWidth int

	// Minimum gap between Last.fm requests
	RateLimit time.Duration

	// Log level: debug, info, warn or error
	LogLevel string

	// Last.fm API credentials
	LastFM LastFMConfig

	// Response cache settings
	Cache CacheConfig

	// Offline scrobble queue settings
	Queue QueueConfig
}

// LastFMConfig holds Last.fm specific configuration
type LastFMConfig struct {
	APIKey     string
	APISecret  string
	SessionKey string
	Username   string
}

// CacheConfig holds response cache configuration
type CacheConfig struct {
	Enabled bool
	Path    string
	TTL     time.Duration
}

// QueueConfig holds offline scrobble queue configuration
type QueueConfig struct {
	Path string
}

// Load reads configuration from file and environment
func Load() (*Config, error) {
	return load(getConfigDir())
}

func load(configDir string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Config file locations (in order of precedence)
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	v.SetDefault("output_format", "{{.Artist}} - {{.Name}}")
	v.SetDefault("output_width", 0)
	v.SetDefault("rate_limit", 200*time.Millisecond)
	v.SetDefault("log_level", "warn")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.path", defaultCachePath())
	v.SetDefault("cache.ttl", 24*time.Hour)
	v.SetDefault("queue.path", defaultQueuePath())

	// Read config file (optional - don't fail if missing)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	// LASTKIT_LASTFM_API_KEY and friends
	v.SetEnvPrefix(strings.ToUpper(appName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		OutputFormat: v.GetString("output_format"),
		OutputWidth:  v.GetInt("output_width"),
		RateLimit:    v.GetDuration("rate_limit"),
		LogLevel:     v.GetString("log_level"),
		LastFM: LastFMConfig{
			APIKey:     v.GetString("lastfm.api_key"),
			APISecret:  v.GetString("lastfm.api_secret"),
			SessionKey: v.GetString("lastfm.session_key"),
			Username:   v.GetString("lastfm.username"),
		},
		Cache: CacheConfig{
			Enabled: v.GetBool("cache.enabled"),
			Path:    v.GetString("cache.path"),
			TTL:     v.GetDuration("cache.ttl"),
		},
		Queue: QueueConfig{
			Path: v.GetString("queue.path"),
		},
	}

	return cfg, nil
}

// getConfigDir returns the configuration directory path
// Creates the directory if it doesn't exist
func getConfigDir() string {
	configDir := filepath.Join(xdg.ConfigHome, appName)

	_ = os.MkdirAll(configDir, 0755)

	return configDir
}

// GetConfigDir returns the configuration directory path (public helper)
func GetConfigDir() string {
	return getConfigDir()
}

// defaultCachePath is the response database under the XDG cache dir.
func defaultCachePath() string {
	path, err := xdg.CacheFile(filepath.Join(appName, "responses.db"))
	if err != nil {
		return filepath.Join(os.TempDir(), appName, "responses.db")
	}
	return path
}

// defaultQueuePath is the scrobble queue database under the XDG data dir.
func defaultQueuePath() string {
	path, err := xdg.DataFile(filepath.Join(appName, "queue.db"))
	if err != nil {
		return filepath.Join(os.TempDir(), appName, "queue.db")
	}
	return path
}

// Save writes configuration to file
func (c *Config) Save() error {
	return c.saveTo(getConfigDir())
}

func (c *Config) saveTo(configDir string) error {
	v := viper.New()

	configFile := filepath.Join(configDir, "config.yaml")

	v.Set("output_format", c.OutputFormat)
	v.Set("output_width", c.OutputWidth)
	v.Set("rate_limit", c.RateLimit.String())
	v.Set("log_level", c.LogLevel)
	v.Set("lastfm.api_key", c.LastFM.APIKey)
	v.Set("lastfm.api_secret", c.LastFM.APISecret)
	v.Set("lastfm.session_key", c.LastFM.SessionKey)
	v.Set("lastfm.username", c.LastFM.Username)
	v.Set("cache.enabled", c.Cache.Enabled)
	v.Set("cache.path", c.Cache.Path)
	v.Set("cache.ttl", c.Cache.TTL.String())
	v.Set("queue.path", c.Queue.Path)

	return v.WriteConfigAs(configFile)
}
