package models

import "time"

// AuthToken holds an authentication token and its lifetime metadata.
type AuthToken struct {
	AccessToken  string    `json:"accessToken" yaml:"accessToken"`
	RefreshToken string    `json:"refreshToken,omitempty" yaml:"refreshToken,omitempty"`
	TenantID     string    `json:"tenantId" yaml:"tenantId"`
	UserEmail    string    `json:"userEmail" yaml:"userEmail"`
	IssuedAt     time.Time `json:"issuedAt" yaml:"issuedAt"`
	ExpiresAt    time.Time `json:"expiresAt" yaml:"expiresAt"`
}

// ExpiredAt reports whether the token is expired at the given instant.
func (t AuthToken) ExpiredAt(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// ValidAt reports whether the token is non-empty and not expired at the
// given instant.
func (t AuthToken) ValidAt(now time.Time) bool {
	return t.AccessToken != "" && !t.ExpiredAt(now)
}
