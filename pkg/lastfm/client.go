package lastfm

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Config holds client configuration.
type Config struct {
	APIKey     string       // Required: Last.fm API key
	APISecret  string       // Optional: Last.fm API secret, required for signed calls
	SessionKey string       // Optional: Session key for authenticated requests
	Username   string       // Optional: Authenticated user's name, used for per-user fields
	HTTPClient *http.Client // Optional: HTTP client (defaults to http.DefaultClient)
	BaseURL    string       // Optional: Base URL for API (defaults to Last.fm API, used for testing)
	UserAgent  string       // Optional: User-Agent header (defaults to DefaultUserAgent)
	Logger     Logger       // Optional: Logger interface for debug logging

	// Cache stores successful unsigned GET responses keyed by full URL.
	Cache Cache
	// CacheTTL is how long cached responses stay valid (defaults to DefaultCacheTTL).
	CacheTTL time.Duration
	// MinRequestInterval is the minimum gap between HTTP requests. Zero disables it.
	MinRequestInterval time.Duration
	// MaxRetries is the number of attempts per call (defaults to 3).
	MaxRetries int
	// Registry holds canonical entity instances (defaults to a new registry).
	Registry *Registry
}

// Logger is an optional interface for logging.
type Logger interface {
	// Debugf logs a debug message with format and arguments.
	Debugf(format string, args ...interface{})
}

// Cache is a TTL response cache. Implementations must be safe for
// concurrent use.
type Cache interface {
	// Get returns the cached body for key. Expired entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores body under key for ttl.
	Set(ctx context.Context, key string, body []byte, ttl time.Duration) error
}

// Client is the main entry point for Last.fm API operations.
//
// Entities obtained from a Client (artists, albums, charts, ...) are
// canonical per client: asking twice for the same artist returns the same
// *Artist.
type Client struct {
	apiKey     string
	apiSecret  string
	sessionKey string
	username   string
	httpClient *http.Client
	baseURL    string
	userAgent  string
	logger     Logger

	cache      Cache
	cacheTTL   time.Duration
	maxRetries int

	rateMu      sync.Mutex
	minInterval time.Duration
	lastRequest time.Time

	registry *Registry

	auth     *AuthService
	scrobble *ScrobbleService
}

const (
	// DefaultBaseURL is the default Last.fm API endpoint.
	DefaultBaseURL = "https://ws.audioscrobbler.com/2.0/"

	// DefaultUserAgent is sent when Config.UserAgent is empty.
	DefaultUserAgent = "lastkit/1.0"

	// DefaultCacheTTL is how long cached responses are reused.
	DefaultCacheTTL = 24 * time.Hour

	// DefaultMinRequestInterval is the interval Last.fm asks clients to
	// keep between requests. It is not applied unless configured.
	DefaultMinRequestInterval = 200 * time.Millisecond

	// webURL is the root of the Last.fm website, used to build entity URLs.
	webURL = "https://www.last.fm"
)

// NewClient creates a new Last.fm API client.
//
// Returns an error if required configuration (APIKey) is missing.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: APIKey is required", ErrInvalidConfig)
	}
	if cfg.MinRequestInterval < 0 {
		return nil, fmt.Errorf("%w: MinRequestInterval must not be negative", ErrInvalidConfig)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	registry := cfg.Registry
	if registry == nil {
		registry = NewRegistry()
	}

	c := &Client{
		apiKey:      cfg.APIKey,
		apiSecret:   cfg.APISecret,
		sessionKey:  cfg.SessionKey,
		username:    cfg.Username,
		httpClient:  httpClient,
		baseURL:     baseURL,
		userAgent:   userAgent,
		logger:      cfg.Logger,
		cache:       cfg.Cache,
		cacheTTL:    cacheTTL,
		maxRetries:  maxRetries,
		minInterval: cfg.MinRequestInterval,
		registry:    registry,
	}

	c.auth = &AuthService{client: c}
	c.scrobble = &ScrobbleService{client: c}

	return c, nil
}

// Auth returns the authentication service.
func (c *Client) Auth() *AuthService {
	return c.auth
}

// Scrobble returns the scrobbling service.
func (c *Client) Scrobble() *ScrobbleService {
	return c.scrobble
}

// Registry returns the registry holding this client's canonical entities.
func (c *Client) Registry() *Registry {
	return c.registry
}

// SetSessionKey sets the session key for authenticated requests.
func (c *Client) SetSessionKey(key string) {
	c.sessionKey = key
}

// GetSessionKey returns the current session key.
func (c *Client) GetSessionKey() string {
	return c.sessionKey
}

// SetUsername sets the authenticated user's name.
func (c *Client) SetUsername(name string) {
	c.username = name
}

// Username returns the authenticated user's name, if known.
func (c *Client) Username() string {
	return c.username
}

// logDebugf logs a debug message if a logger is configured.
func (c *Client) logDebugf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debugf(format, args...)
	}
}
