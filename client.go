// Package reddit implements a trends aggregation and discussion-tree engine
// on top of the Reddit OAuth API: a TTL cache of per-subreddit trend
// snapshots, keyword and brand-mention analytics, and a rate-limited
// sequential batch fetcher for nested comment trees.
package reddit

import (
	"fmt"
	"io"

	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/ratelimit"
)

// transport abstracts the HTTP layer so tests can inject a scripted fake
// instead of an ambient shared session.
type transport interface {
	Do(method, url string, headers map[string]string, body io.Reader) (respBody []byte, respHeaders map[string]string, status int, err error)
}

// stealthTransport is the production transport.
type stealthTransport struct {
	bc *stealth.BrowserClient
}

func (t *stealthTransport) Do(method, url string, headers map[string]string, body io.Reader) ([]byte, map[string]string, int, error) {
	return t.bc.DoWithHeaderOrder(method, url, headers, body, redditHeaderOrder)
}

// Client is the top-level engine. All exposed operations are methods on it;
// it holds no global state and can coexist with other instances.
type Client struct {
	transport transport
	tokens    *TokenManager
	limiter   *ratelimit.Limiter
	trends    *trendsCache
	cfg       ClientConfig
}

// NewClient creates a fully-wired client. Credential validation happens here,
// before any network activity.
func NewClient(cfg ClientConfig) (*Client, error) {
	cfg.defaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	opts := []stealth.ClientOption{
		stealth.WithHeaderOrder(redditHeaderOrder),
	}
	if cfg.Proxy != "" {
		opts = append(opts, stealth.WithProxy(cfg.Proxy))
	}
	bc, err := stealth.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("stealth client: %w", err)
	}

	t := &stealthTransport{bc: bc}
	return &Client{
		transport: t,
		tokens:    newTokenManager(cfg, t),
		limiter:   ratelimit.NewLimiter(cfg.RateLimit),
		trends:    newTrendsCache(cfg.CacheTTL),
		cfg:       cfg,
	}, nil
}

// Tokens returns the underlying token manager.
func (c *Client) Tokens() *TokenManager {
	return c.tokens
}

// recordAPICall calls the metrics hook if configured.
func (c *Client) recordAPICall(endpoint string, success, rateLimited bool) {
	if c.cfg.MetricsHook != nil {
		c.cfg.MetricsHook(endpoint, success, rateLimited)
	}
}
