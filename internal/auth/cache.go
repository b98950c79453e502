package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/workflowpro/qaharness/internal/config"
	"github.com/workflowpro/qaharness/models"
)

// ExpiryBuffer is how long before the recorded expiry a token is treated
// as stale, so a test never starts with a token about to lapse mid-flight.
const ExpiryBuffer = 5 * time.Minute

// TokenCache returns valid tokens for tenants, logging in only when no
// usable cached token exists. Concurrent callers for one tenant share a
// single login; entries are replaced whole, never mutated in place.
type TokenCache struct {
	Registry      *config.TenantRegistry
	BaseURL       string
	Authenticator Authenticator
	Logger        *zap.Logger
	Now           func() time.Time

	mu     sync.Mutex
	tokens map[string]models.AuthToken
	group  singleflight.Group
}

// NewTokenCache builds a cache over the registry and authenticator.
// baseURL is the API endpoint logins are issued against.
func NewTokenCache(registry *config.TenantRegistry, baseURL string, authenticator Authenticator, logger *zap.Logger) *TokenCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenCache{
		Registry:      registry,
		BaseURL:       baseURL,
		Authenticator: authenticator,
		Logger:        logger,
		Now:           time.Now,
		tokens:        make(map[string]models.AuthToken),
	}
}

// Token returns a valid access token for the tenant, performing a login
// when the cached entry is absent or within ExpiryBuffer of expiring.
func (c *TokenCache) Token(ctx context.Context, tenantID string) (string, error) {
	tok, err := c.authToken(ctx, tenantID)
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

func (c *TokenCache) authToken(ctx context.Context, tenantID string) (models.AuthToken, error) {
	tenant, err := c.Registry.Get(tenantID)
	if err != nil {
		return models.AuthToken{}, err
	}

	if tok, ok := c.cached(tenantID); ok {
		return tok, nil
	}

	// singleflight keyed by tenant id: at most one login in flight per
	// tenant, other tenants proceed independently.
	v, err, _ := c.group.Do(tenantID, func() (interface{}, error) {
		if tok, ok := c.cached(tenantID); ok {
			return tok, nil
		}
		return c.login(ctx, tenant)
	})
	if err != nil {
		return models.AuthToken{}, err
	}
	return v.(models.AuthToken), nil
}

// cached returns the tenant's entry when it is still comfortably fresh.
func (c *TokenCache) cached(tenantID string) (models.AuthToken, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tok, ok := c.tokens[tenantID]
	if !ok {
		return models.AuthToken{}, false
	}
	now := c.Now()
	if !tok.ValidAt(now) || !now.Before(tok.ExpiresAt.Add(-ExpiryBuffer)) {
		return models.AuthToken{}, false
	}
	return tok, true
}

func (c *TokenCache) login(ctx context.Context, tenant models.TenantConfig) (models.AuthToken, error) {
	res, err := c.Authenticator.Login(ctx, c.BaseURL, tenant.TenantID, tenant.AdminEmail, tenant.AdminPassword)
	if err != nil {
		return models.AuthToken{}, err
	}

	issued := c.Now()
	if !res.ExpiresAt.After(issued) {
		return models.AuthToken{}, fmt.Errorf("login for tenant %s returned already-expired token (expires %s)", tenant.TenantID, res.ExpiresAt)
	}

	tok := models.AuthToken{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		TenantID:     tenant.TenantID,
		UserEmail:    tenant.AdminEmail,
		IssuedAt:     issued,
		ExpiresAt:    res.ExpiresAt,
	}

	c.mu.Lock()
	c.tokens[tenant.TenantID] = tok
	c.mu.Unlock()

	c.Logger.Debug("token obtained",
		zap.String("tenant", tenant.TenantID),
		zap.Time("expires_at", tok.ExpiresAt),
	)
	return tok, nil
}

// Invalidate drops the cached entry for a tenant. Called when an API
// request comes back 401/403 and before logout tests.
func (c *TokenCache) Invalidate(tenantID string) {
	c.mu.Lock()
	delete(c.tokens, tenantID)
	c.mu.Unlock()
}

// Clear drops every cached token.
func (c *TokenCache) Clear() {
	c.mu.Lock()
	c.tokens = make(map[string]models.AuthToken)
	c.mu.Unlock()
}

// Cached exposes the raw cache entry for a tenant, fresh or not. Used by
// the CLI to inspect state without forcing a login.
func (c *TokenCache) Cached(tenantID string) (models.AuthToken, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tok, ok := c.tokens[tenantID]
	return tok, ok
}

// AuthHeaders returns the headers API requests need for a tenant.
func (c *TokenCache) AuthHeaders(ctx context.Context, tenantID string) (map[string]string, error) {
	token, err := c.Token(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"Authorization": "Bearer " + token,
		"X-Tenant-ID":   tenantID,
		"Content-Type":  "application/json",
	}, nil
}
