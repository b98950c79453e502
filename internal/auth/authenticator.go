// Package auth obtains and caches API tokens for tenants.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// ErrAuthenticationFailed is returned when a login is rejected or the
// login call times out.
var ErrAuthenticationFailed = errors.New("authentication failed")

// LoginResult is the outcome of a successful login or refresh call.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Authenticator performs login calls against the WorkFlow Pro auth
// endpoints.
type Authenticator interface {
	Login(ctx context.Context, baseURL, tenantID, email, password string) (*LoginResult, error)
	Refresh(ctx context.Context, baseURL, tenantID, refreshToken string) (*LoginResult, error)
}

const (
	loginTimeout = 10 * time.Second

	// defaultTokenTTL is assumed when the server omits expires_in and the
	// token carries no exp claim.
	defaultTokenTTL = time.Hour
)

// HTTPAuthenticator logs in against the REST auth endpoints.
type HTTPAuthenticator struct {
	Client *http.Client
	Logger *zap.Logger
	Now    func() time.Time
}

// NewHTTPAuthenticator returns an authenticator with the default login
// timeout.
func NewHTTPAuthenticator(logger *zap.Logger) *HTTPAuthenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPAuthenticator{
		Client: &http.Client{Timeout: loginTimeout},
		Logger: logger,
		Now:    time.Now,
	}
}

type loginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Login requests a token for the given credentials. Rejected credentials
// and login timeouts surface as ErrAuthenticationFailed.
func (a *HTTPAuthenticator) Login(ctx context.Context, baseURL, tenantID, email, password string) (*LoginResult, error) {
	payload := map[string]string{"email": email, "password": password}
	return a.post(ctx, baseURL+"/auth/login", tenantID, payload)
}

// Refresh exchanges a refresh token for a new access token.
func (a *HTTPAuthenticator) Refresh(ctx context.Context, baseURL, tenantID, refreshToken string) (*LoginResult, error) {
	payload := map[string]string{"refresh_token": refreshToken}
	return a.post(ctx, baseURL+"/auth/refresh", tenantID, payload)
}

func (a *HTTPAuthenticator) post(ctx context.Context, url, tenantID string, payload map[string]string) (*LoginResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode login payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", tenantID)

	resp, err := a.Client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: login timed out: %v", ErrAuthenticationFailed, err)
		}
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read login response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: server rejected credentials for tenant %s", ErrAuthenticationFailed, tenantID)
	case resp.StatusCode >= 300:
		return nil, fmt.Errorf("login returned status %d: %s", resp.StatusCode, string(data))
	}

	var parsed loginResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse login response: %w", err)
	}
	if parsed.AccessToken == "" {
		return nil, fmt.Errorf("login response missing access_token")
	}

	now := a.Now()
	return &LoginResult{
		AccessToken:  parsed.AccessToken,
		RefreshToken: parsed.RefreshToken,
		ExpiresAt:    tokenExpiry(parsed, now),
	}, nil
}

// tokenExpiry resolves the token lifetime: expires_in when present, the
// JWT exp claim as a fallback, one hour otherwise.
func tokenExpiry(resp loginResponse, now time.Time) time.Time {
	if resp.ExpiresIn > 0 {
		return now.Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(resp.AccessToken, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil && exp.Time.After(now) {
			return exp.Time
		}
	}
	return now.Add(defaultTokenTTL)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) && timeoutErr.Timeout() {
		return true
	}
	return os.IsTimeout(err)
}
