package reddit

import (
	"fmt"
	"strconv"
	"time"
)

// ConfigError reports an invalid request or configuration. It is always
// returned before any network activity happens.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "config: " + e.Reason
}

// AuthError reports that a valid access token could not be obtained or that
// the token endpoint rejected the credentials. It is fatal for the requested
// operation and never retried.
type AuthError struct {
	Reason string
	Status int // HTTP status from the token endpoint, 0 for network failures
	Err    error
}

func (e *AuthError) Error() string {
	msg := "auth: " + e.Reason
	if e.Status != 0 {
		msg += " (HTTP " + strconv.Itoa(e.Status) + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AuthError) Unwrap() error { return e.Err }

// FetchError reports a failed fetch against a single API endpoint: a non-200
// status, a timeout, or a malformed payload. Callers running multi-item
// operations treat it as a per-item failure rather than aborting.
type FetchError struct {
	Endpoint string
	Status   int    // 0 when no HTTP response was received
	Body     string // response excerpt, may be empty
	Err      error
}

func (e *FetchError) Error() string {
	switch {
	case e.Status != 0 && e.Body != "":
		return fmt.Sprintf("%s HTTP %d: %s", e.Endpoint, e.Status, e.Body)
	case e.Status != 0:
		return fmt.Sprintf("%s HTTP %d", e.Endpoint, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s", e.Endpoint, e.Err.Error())
	}
	return e.Endpoint + ": fetch failed"
}

func (e *FetchError) Unwrap() error { return e.Err }

// parseRateLimitReset parses Reddit's x-ratelimit-reset header, which carries
// seconds remaining in the current window. Falls back to one minute from now
// if missing or invalid.
func parseRateLimitReset(v string) time.Time {
	if secs, err := strconv.ParseFloat(v, 64); err == nil && secs > 0 {
		return time.Now().Add(time.Duration(secs * float64(time.Second)))
	}
	return time.Now().Add(time.Minute)
}

func truncateBytes(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
