package auth_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workflowpro/qaharness/internal/auth"
	"github.com/workflowpro/qaharness/internal/config"
	mock_auth "github.com/workflowpro/qaharness/tests/mock/auth"
)

const apiBase = "https://api.staging.workflowpro.com/api/v1"

func newTestCache(t *testing.T, authenticator auth.Authenticator) *auth.TokenCache {
	t.Helper()
	settings := &config.Settings{Environment: config.EnvStaging}
	registry, err := config.NewTenantRegistry(settings, afero.NewMemMapFs())
	require.NoError(t, err)
	return auth.NewTokenCache(registry, apiBase, authenticator, nil)
}

func TestTokenUnknownTenant(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cache := newTestCache(t, mock_auth.NewMockAuthenticator(ctrl))
	_, err := cache.Token(context.Background(), "company99")
	assert.ErrorIs(t, err, config.ErrUnknownTenant)
}

func TestTokenCachesAcrossCalls(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mockAuth := mock_auth.NewMockAuthenticator(ctrl)
	mockAuth.EXPECT().
		Login(gomock.Any(), apiBase, "company1", "admin@company1.com", "password123").
		Return(&auth.LoginResult{AccessToken: "T1", ExpiresAt: now.Add(time.Hour)}, nil).
		Times(1)

	cache := newTestCache(t, mockAuth)
	cache.Now = func() time.Time { return now }

	token, err := cache.Token(context.Background(), "company1")
	require.NoError(t, err)
	assert.Equal(t, "T1", token)

	// second call inside the validity window reuses the cached value
	token, err = cache.Token(context.Background(), "company1")
	require.NoError(t, err)
	assert.Equal(t, "T1", token)
}

func TestTokenRefreshesAfterExpiry(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mockAuth := mock_auth.NewMockAuthenticator(ctrl)
	first := mockAuth.EXPECT().
		Login(gomock.Any(), apiBase, "company1", "admin@company1.com", "password123").
		Return(&auth.LoginResult{AccessToken: "T1", ExpiresAt: now.Add(time.Hour)}, nil)
	mockAuth.EXPECT().
		Login(gomock.Any(), apiBase, "company1", "admin@company1.com", "password123").
		Return(&auth.LoginResult{AccessToken: "T2", ExpiresAt: now.Add(3 * time.Hour)}, nil).
		After(first)

	cache := newTestCache(t, mockAuth)
	cache.Now = func() time.Time { return now }

	token, err := cache.Token(context.Background(), "company1")
	require.NoError(t, err)
	assert.Equal(t, "T1", token)

	now = now.Add(2 * time.Hour)

	token, err = cache.Token(context.Background(), "company1")
	require.NoError(t, err)
	assert.Equal(t, "T2", token)
}

func TestTokenRefreshesInsideExpiryBuffer(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mockAuth := mock_auth.NewMockAuthenticator(ctrl)
	mockAuth.EXPECT().
		Login(gomock.Any(), apiBase, "company1", gomock.Any(), gomock.Any()).
		Return(&auth.LoginResult{AccessToken: "T1", ExpiresAt: now.Add(time.Hour)}, nil)
	mockAuth.EXPECT().
		Login(gomock.Any(), apiBase, "company1", gomock.Any(), gomock.Any()).
		Return(&auth.LoginResult{AccessToken: "T2", ExpiresAt: now.Add(2 * time.Hour)}, nil)

	cache := newTestCache(t, mockAuth)
	cache.Now = func() time.Time { return now }

	_, err := cache.Token(context.Background(), "company1")
	require.NoError(t, err)

	// token expires in 2 minutes, inside the 5 minute buffer
	now = now.Add(58 * time.Minute)

	token, err := cache.Token(context.Background(), "company1")
	require.NoError(t, err)
	assert.Equal(t, "T2", token)
}

func TestTokenPropagatesAuthenticationFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mock_auth.NewMockAuthenticator(ctrl)
	mockAuth.EXPECT().
		Login(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, auth.ErrAuthenticationFailed)

	cache := newTestCache(t, mockAuth)
	_, err := cache.Token(context.Background(), "company1")
	assert.ErrorIs(t, err, auth.ErrAuthenticationFailed)
}

func TestTokenRejectsExpiredLoginResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mockAuth := mock_auth.NewMockAuthenticator(ctrl)
	mockAuth.EXPECT().
		Login(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&auth.LoginResult{AccessToken: "T1", ExpiresAt: now.Add(-time.Minute)}, nil)

	cache := newTestCache(t, mockAuth)
	cache.Now = func() time.Time { return now }

	_, err := cache.Token(context.Background(), "company1")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already-expired")
}

func TestInvalidateForcesRelogin(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mockAuth := mock_auth.NewMockAuthenticator(ctrl)
	mockAuth.EXPECT().
		Login(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&auth.LoginResult{AccessToken: "T1", ExpiresAt: now.Add(time.Hour)}, nil).
		Times(2)

	cache := newTestCache(t, mockAuth)
	cache.Now = func() time.Time { return now }

	_, err := cache.Token(context.Background(), "company1")
	require.NoError(t, err)

	cache.Invalidate("company1")
	_, ok := cache.Cached("company1")
	assert.False(t, ok)

	_, err = cache.Token(context.Background(), "company1")
	require.NoError(t, err)
}

func TestConcurrentCallsShareOneLogin(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mockAuth := mock_auth.NewMockAuthenticator(ctrl)
	mockAuth.EXPECT().
		Login(gomock.Any(), gomock.Any(), "company1", gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string, string, string, string) (*auth.LoginResult, error) {
			time.Sleep(20 * time.Millisecond)
			return &auth.LoginResult{AccessToken: "T1", ExpiresAt: now.Add(time.Hour)}, nil
		}).
		Times(1)

	cache := newTestCache(t, mockAuth)
	cache.Now = func() time.Time { return now }

	const callers = 16
	tokens := make([]string, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i], errs[i] = cache.Token(context.Background(), "company1")
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "T1", tokens[i])
	}
}

func TestTenantsAreIndependent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mockAuth := mock_auth.NewMockAuthenticator(ctrl)
	mockAuth.EXPECT().
		Login(gomock.Any(), apiBase, "company1", "admin@company1.com", gomock.Any()).
		Return(&auth.LoginResult{AccessToken: "T1", ExpiresAt: now.Add(time.Hour)}, nil)
	mockAuth.EXPECT().
		Login(gomock.Any(), apiBase, "company2", "admin@company2.com", gomock.Any()).
		Return(&auth.LoginResult{AccessToken: "T2", ExpiresAt: now.Add(time.Hour)}, nil)

	cache := newTestCache(t, mockAuth)
	cache.Now = func() time.Time { return now }

	t1, err := cache.Token(context.Background(), "company1")
	require.NoError(t, err)
	t2, err := cache.Token(context.Background(), "company2")
	require.NoError(t, err)
	assert.NotEqual(t, t1, t2)
}

func TestAuthHeaders(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mockAuth := mock_auth.NewMockAuthenticator(ctrl)
	mockAuth.EXPECT().
		Login(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&auth.LoginResult{AccessToken: "T1", ExpiresAt: now.Add(time.Hour)}, nil)

	cache := newTestCache(t, mockAuth)
	cache.Now = func() time.Time { return now }

	headers, err := cache.AuthHeaders(context.Background(), "company1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer T1", headers["Authorization"])
	assert.Equal(t, "company1", headers["X-Tenant-ID"])
}

func TestCacheEntryInvariant(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mockAuth := mock_auth.NewMockAuthenticator(ctrl)
	mockAuth.EXPECT().
		Login(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&auth.LoginResult{AccessToken: "T1", ExpiresAt: now.Add(time.Hour)}, nil)

	cache := newTestCache(t, mockAuth)
	cache.Now = func() time.Time { return now }

	_, err := cache.Token(context.Background(), "company1")
	require.NoError(t, err)

	tok, ok := cache.Cached("company1")
	require.True(t, ok)
	assert.True(t, tok.ExpiresAt.After(tok.IssuedAt))
	assert.Equal(t, "company1", tok.TenantID)
}

func TestClear(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mockAuth := mock_auth.NewMockAuthenticator(ctrl)
	mockAuth.EXPECT().
		Login(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&auth.LoginResult{AccessToken: "T1", ExpiresAt: now.Add(time.Hour)}, nil).
		Times(2)

	cache := newTestCache(t, mockAuth)
	cache.Now = func() time.Time { return now }

	_, err := cache.Token(context.Background(), "company1")
	require.NoError(t, err)

	cache.Clear()

	_, err = cache.Token(context.Background(), "company1")
	require.NoError(t, err)
}

func TestLoginErrorNotCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mockAuth := mock_auth.NewMockAuthenticator(ctrl)
	failed := mockAuth.EXPECT().
		Login(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("connection refused"))
	mockAuth.EXPECT().
		Login(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&auth.LoginResult{AccessToken: "T1", ExpiresAt: now.Add(time.Hour)}, nil).
		After(failed)

	cache := newTestCache(t, mockAuth)
	cache.Now = func() time.Time { return now }

	_, err := cache.Token(context.Background(), "company1")
	assert.Error(t, err)

	token, err := cache.Token(context.Background(), "company1")
	require.NoError(t, err)
	assert.Equal(t, "T1", token)
}
