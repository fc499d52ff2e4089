package model

import (
	"fmt"
	"time"
)

// CredentialSet is the access/refresh token pair returned by the Zoom token endpoint.
// It is an immutable snapshot: refreshing produces a new value and never mutates an
// existing one, so a set captured by an in-flight request stays consistent.
type CredentialSet struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	Scope        string    `json:"scope"`
}

// NewCredentialSet builds a set whose expiry is issuedAt + lifetime.
func NewCredentialSet(accessToken, refreshToken string, issuedAt time.Time, lifetime time.Duration, scope string) CredentialSet {
	return CredentialSet{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    issuedAt.Add(lifetime),
		Scope:        scope,
	}
}

// AuthorizationHeaderValue returns the bearer scheme value for the Authorization header.
func (c CredentialSet) AuthorizationHeaderValue() string {
	return "Bearer " + c.AccessToken
}

// Expired reports whether the access token is past its expiry at now.
func (c CredentialSet) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// ExpiresWithin reports whether the access token expires within d of now.
func (c CredentialSet) ExpiresWithin(now time.Time, d time.Duration) bool {
	return !now.Add(d).Before(c.ExpiresAt)
}

// IsZero reports whether no token has been obtained yet.
func (c CredentialSet) IsZero() bool {
	return c.AccessToken == "" && c.RefreshToken == ""
}

// String keeps tokens out of logs and fmt output.
func (c CredentialSet) String() string {
	return fmt.Sprintf("CredentialSet{scope=%q expires_at=%s}", c.Scope, c.ExpiresAt.Format(time.RFC3339))
}
