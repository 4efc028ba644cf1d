package reddit

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pquerna/otp/totp"
)

// expiryBuffer is subtracted from a token's expiry when judging validity, so
// a token is refreshed before it can go stale mid-operation.
const expiryBuffer = 5 * time.Minute

// accessToken is the cached OAuth credential. Owned exclusively by the
// TokenManager and replaced wholesale on refresh.
type accessToken struct {
	value     string
	tokenType string
	expiresAt time.Time
}

// TokenManager owns the OAuth token lifecycle against the token endpoint.
// At most one refresh is ever in flight: the manager's mutex is held for the
// duration of a refresh, so concurrent callers wait for its result and then
// reuse the fresh token instead of issuing duplicate requests.
type TokenManager struct {
	cfg       ClientConfig
	transport transport

	mu    sync.Mutex
	token accessToken
}

func newTokenManager(cfg ClientConfig, t transport) *TokenManager {
	return &TokenManager{cfg: cfg, transport: t}
}

// validLocked reports whether the cached token is usable. Callers hold mu.
func (m *TokenManager) validLocked(now time.Time) bool {
	return m.token.value != "" && now.Before(m.token.expiresAt.Add(-expiryBuffer))
}

// Token returns a valid access token, refreshing when the cached one is
// missing or inside the expiry buffer. Refresh failures are returned as
// *AuthError and never retried automatically.
func (m *TokenManager) Token(ctx context.Context) (accessToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.validLocked(time.Now()) {
		return m.token, nil
	}
	if err := m.refreshLocked(ctx); err != nil {
		return accessToken{}, err
	}
	return m.token, nil
}

// AuthHeaders composes the Authorization and User-Agent headers for an
// authenticated API call, refreshing the token first when needed.
func (m *TokenManager) AuthHeaders(ctx context.Context) (map[string]string, error) {
	tok, err := m.Token(ctx)
	if err != nil {
		return nil, err
	}
	return authHeaders(tok.tokenType, tok.value, m.cfg.UserAgent), nil
}

// refreshLocked performs one password-grant exchange. Callers hold mu.
func (m *TokenManager) refreshLocked(ctx context.Context) error {
	password := m.cfg.Password
	if m.cfg.TOTPSecret != "" {
		code, err := totp.GenerateCode(m.cfg.TOTPSecret, time.Now())
		if err != nil {
			return &AuthError{Reason: "totp code generation failed", Err: err}
		}
		password += ":" + code
	}

	form := url.Values{
		"grant_type": {"password"},
		"username":   {m.cfg.Username},
		"password":   {password},
	}
	headers := tokenRequestHeaders(m.cfg.ClientID, m.cfg.ClientSecret, m.cfg.UserAgent)

	body, _, status, err := doWithTimeout(ctx, m.transport, m.cfg.RequestTimeout,
		"POST", m.cfg.TokenURL, headers, strings.NewReader(form.Encode()))
	if err != nil {
		return &AuthError{Reason: "token endpoint unreachable", Err: err}
	}
	if status != 200 {
		slog.Warn("token refresh rejected", slog.Int("status", status), slog.String("body", truncateBytes(body, 200)))
		return &AuthError{Reason: "token endpoint rejected credentials", Status: status}
	}

	var raw struct {
		AccessToken string  `json:"access_token"`
		TokenType   string  `json:"token_type"`
		ExpiresIn   float64 `json:"expires_in"`
		Error       string  `json:"error"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return &AuthError{Reason: "malformed token response", Err: err}
	}
	if raw.AccessToken == "" {
		reason := "token response missing access_token"
		if raw.Error != "" {
			reason += ": " + raw.Error
		}
		return &AuthError{Reason: reason, Status: status}
	}

	tokenType := raw.TokenType
	if tokenType == "" {
		tokenType = "bearer"
	}
	expiresIn := raw.ExpiresIn
	if expiresIn == 0 {
		expiresIn = 3600
	}

	m.token = accessToken{
		value:     raw.AccessToken,
		tokenType: tokenType,
		expiresAt: time.Now().Add(time.Duration(expiresIn * float64(time.Second))),
	}
	slog.Info("access token refreshed", slog.Time("expires_at", m.token.expiresAt))
	return nil
}
