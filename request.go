package reddit

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
)

// doGET performs a single authenticated GET against one endpoint. There is no
// retry here: multi-item callers handle failures per item, and single-item
// callers surface them directly.
func (c *Client) doGET(ctx context.Context, endpoint, url string) ([]byte, error) {
	if !c.cfg.DisableJitter {
		if err := stealth.DefaultJitter.Sleep(ctx); err != nil {
			return nil, err
		}
	}
	if err := c.waitForEndpoint(ctx, endpoint); err != nil {
		return nil, err
	}

	headers, err := c.tokens.AuthHeaders(ctx)
	if err != nil {
		c.recordAPICall(endpoint, false, false)
		return nil, err
	}

	body, respHdrs, status, err := doWithTimeout(ctx, c.transport, c.cfg.RequestTimeout, "GET", url, headers, nil)
	if err != nil {
		c.recordAPICall(endpoint, false, false)
		return nil, &FetchError{Endpoint: endpoint, Err: err}
	}

	switch {
	case status == 429:
		c.recordAPICall(endpoint, false, true)
		until := parseRateLimitReset(respHdrs["x-ratelimit-reset"])
		if c.limiter != nil {
			c.limiter.MarkRateLimited(endpoint, until)
		}
		slog.Warn("endpoint rate limited by server", slog.String("endpoint", endpoint), slog.Time("until", until))
		return nil, &FetchError{Endpoint: endpoint, Status: status, Body: truncateBytes(body, 200)}

	case status != 200:
		c.recordAPICall(endpoint, false, false)
		slog.Warn("fetch failed", slog.String("endpoint", endpoint), slog.Int("status", status), slog.String("body", truncateBytes(body, 200)))
		return nil, &FetchError{Endpoint: endpoint, Status: status, Body: truncateBytes(body, 200)}
	}

	c.recordAPICall(endpoint, true, false)
	return body, nil
}

// waitForEndpoint blocks until the limiter admits a request for the endpoint.
func (c *Client) waitForEndpoint(ctx context.Context, endpoint string) error {
	for c.limiter != nil && !c.limiter.Allow(endpoint) {
		wait := time.Until(c.limiter.AvailableAt(endpoint))
		if wait <= 0 {
			wait = 100 * time.Millisecond
		}
		slog.Debug("endpoint throttled, waiting", slog.String("endpoint", endpoint), slog.Duration("wait", wait))
		if err := sleepCtx(ctx, wait); err != nil {
			return err
		}
	}
	return nil
}

// doWithTimeout runs one transport call bounded by the given timeout and by
// ctx cancellation. A timeout counts as a failed fetch, never retried.
func doWithTimeout(ctx context.Context, t transport, timeout time.Duration, method, url string, headers map[string]string, body io.Reader) ([]byte, map[string]string, int, error) {
	type result struct {
		body    []byte
		headers map[string]string
		status  int
		err     error
	}
	ch := make(chan result, 1)
	go func() {
		b, h, s, err := t.Do(method, url, headers, body)
		ch <- result{body: b, headers: h, status: s, err: err}
	}()

	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-ch:
		return r.body, r.headers, r.status, r.err
	case <-timer.C:
		return nil, nil, 0, fmt.Errorf("%s %s: timeout after %s", method, url, timeout)
	case <-ctx.Done():
		return nil, nil, 0, ctx.Err()
	}
}

// sleepCtx pauses for d, returning early if ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
