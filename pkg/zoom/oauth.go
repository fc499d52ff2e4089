package zoom

import (
	"context"
	"time"

	"github.com/zoomkit/zoomapi/internal/auth"
	"github.com/zoomkit/zoomapi/internal/jobs"
	"github.com/zoomkit/zoomapi/pkg/tokenstore"
)

type (
	// Session keeps one user's credentials fresh; see Client.NewSession.
	Session       = auth.Session
	SessionOption = auth.SessionOption
)

var (
	WithStore         = auth.WithStore
	WithRefreshBuffer = auth.WithRefreshBuffer
	WithClock         = auth.WithClock
	WithSessionLogger = auth.WithSessionLogger
)

// Exchange trades an authorization code for a credential set. An empty redirectURI
// falls back to Options.RedirectURI.
func (c *Client) Exchange(ctx context.Context, code, redirectURI, codeVerifier string) (CredentialSet, error) {
	redirectURI = c.redirect(redirectURI)
	if redirectURI == "" {
		return CredentialSet{}, &PreconditionError{Op: "exchange", Reason: "no redirect uri"}
	}
	return c.auth.Exchange(ctx, code, redirectURI, codeVerifier)
}

// Refresh rotates creds; the old refresh token is spent afterwards.
func (c *Client) Refresh(ctx context.Context, creds CredentialSet) (CredentialSet, error) {
	return c.auth.Refresh(ctx, creds)
}

// Revoke invalidates the access token of creds.
func (c *Client) Revoke(ctx context.Context, creds CredentialSet) error {
	return c.auth.Revoke(ctx, creds)
}

// AuthorizationURL returns the consent page URL. Pass the challenge from NewPKCE, or ""
// to skip PKCE.
func (c *Client) AuthorizationURL(redirectURI, state, challenge string) string {
	return c.auth.AuthorizationURL(c.redirect(redirectURI), state, challenge)
}

func (c *Client) redirect(redirectURI string) string {
	if redirectURI == "" {
		return c.redirectURI
	}
	return redirectURI
}

// NewPKCE returns a code verifier for Exchange and its S256 challenge for
// AuthorizationURL.
func NewPKCE() (verifier, challenge string) { return auth.NewPKCE() }

func NewState() string { return auth.NewState() }

// NewSession wraps initial in a Session that refreshes through this client.
func (c *Client) NewSession(initial CredentialSet, opts ...SessionOption) *Session {
	opts = append([]SessionOption{auth.WithSessionLogger(c.logger)}, opts...)
	return auth.NewSession(c.auth, initial, opts...)
}

// OpenSession returns a Session persisted under key in store, primed with the stored
// set. When nothing is stored yet the Session is still returned, empty, together with
// an error matching tokenstore.ErrNotFound; seed it with Session.Replace after Exchange.
func (c *Client) OpenSession(ctx context.Context, store tokenstore.Store, key string, opts ...SessionOption) (*Session, error) {
	if key == "" {
		return nil, &PreconditionError{Op: "open session", Reason: "empty store key"}
	}
	opts = append(opts, WithStore(store, key))
	session := c.NewSession(CredentialSet{}, opts...)
	if err := session.Load(ctx); err != nil {
		return session, err
	}
	return session, nil
}

// SessionKeeper refreshes tracked sessions on an interval; run Start in a goroutine.
type SessionKeeper = jobs.SessionKeeper

// NewSessionKeeper returns a keeper that logs through this client's logger.
func (c *Client) NewSessionKeeper(interval time.Duration) *SessionKeeper {
	return jobs.NewSessionKeeper(c.logger, interval)
}
