package reddit

import (
	"time"

	"github.com/anatolykoptev/go-stealth/ratelimit"
)

// ClientConfig holds all configuration for the Reddit client. Credential
// fields are filled by the caller; everything else has working defaults.
type ClientConfig struct {
	// ClientID and ClientSecret identify the Reddit script app.
	ClientID     string
	ClientSecret string

	// Username and Password are the resource-owner credentials for the
	// password grant.
	Username string
	Password string

	// TOTPSecret is the optional 2FA secret. When set, each token refresh
	// sends "password:code" per Reddit's second-factor convention.
	TOTPSecret string

	// UserAgent identifies this client on every request.
	UserAgent string

	// OAuthURL is the authenticated API base URL.
	OAuthURL string

	// TokenURL is the access-token endpoint.
	TokenURL string

	// Proxy is an optional proxy URL for all requests.
	Proxy string

	// CacheTTL controls how long a trends snapshot stays fresh per cache key.
	CacheTTL time.Duration

	// RequestTimeout bounds each individual API call.
	RequestTimeout time.Duration

	// FetchDelay is the pause between per-subreddit hot-listing fetches
	// during a trends refresh.
	FetchDelay time.Duration

	// ActivityDelay is the pause between per-subreddit activity lookups.
	ActivityDelay time.Duration

	// BatchDelay is the pause between comment fetches in a batch run.
	BatchDelay time.Duration

	// MaxTrendSubreddits caps how many requested subreddits a single trends
	// refresh fetches listings for.
	MaxTrendSubreddits int

	// MaxActivitySubreddits caps how many subreddits get an activity lookup.
	MaxActivitySubreddits int

	// RateLimit configures the per-endpoint request limiter.
	RateLimit ratelimit.Config

	// DisableJitter skips the anti-burst jitter before each request. Meant
	// for tests and offline replays.
	DisableJitter bool

	// MetricsHook is called on each API request for external metrics
	// collection. endpoint is the operation name, success and rateLimited
	// indicate the outcome.
	MetricsHook func(endpoint string, success, rateLimited bool)
}

// defaults fills in zero-value config fields with sensible defaults.
func (cfg *ClientConfig) defaults() {
	if cfg.UserAgent == "" {
		cfg.UserAgent = "retail-pulse:v1.0 (trends engine)"
	}
	if cfg.OAuthURL == "" {
		cfg.OAuthURL = defaultOAuthURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = defaultTokenURL
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.FetchDelay == 0 {
		cfg.FetchDelay = 300 * time.Millisecond
	}
	if cfg.ActivityDelay == 0 {
		cfg.ActivityDelay = 500 * time.Millisecond
	}
	if cfg.BatchDelay == 0 {
		cfg.BatchDelay = 500 * time.Millisecond
	}
	if cfg.MaxTrendSubreddits == 0 {
		cfg.MaxTrendSubreddits = 10
	}
	if cfg.MaxActivitySubreddits == 0 {
		cfg.MaxActivitySubreddits = 8
	}
	if cfg.RateLimit.RequestsPerWindow == 0 {
		cfg.RateLimit = ratelimit.DefaultConfig
	}
}

// validate rejects configs that cannot authenticate. Checked at construction,
// before any network activity.
func (cfg *ClientConfig) validate() error {
	switch {
	case cfg.ClientID == "":
		return &ConfigError{Reason: "missing client id"}
	case cfg.ClientSecret == "":
		return &ConfigError{Reason: "missing client secret"}
	case cfg.Username == "":
		return &ConfigError{Reason: "missing username"}
	case cfg.Password == "":
		return &ConfigError{Reason: "missing password"}
	}
	return nil
}
