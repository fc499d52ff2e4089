// Package auth obtains, rotates and revokes Zoom OAuth2 credential sets.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/zoomkit/zoomapi/internal/codec"
	"github.com/zoomkit/zoomapi/internal/httpclient"
	"github.com/zoomkit/zoomapi/internal/metrics"
	"github.com/zoomkit/zoomapi/internal/rate"
	"github.com/zoomkit/zoomapi/pkg/logger"
	"github.com/zoomkit/zoomapi/pkg/model"
)

// DefaultOAuthRoot is the Zoom authorization server.
const DefaultOAuthRoot = "https://zoom.us/oauth/"

// ErrMissingRefreshToken is returned when a credential set cannot be rotated.
var ErrMissingRefreshToken = errors.New("auth: credential set has no refresh token")

// Config configures a Manager.
type Config struct {
	ClientID     string
	ClientSecret string
	// OAuthRoot defaults to DefaultOAuthRoot.
	OAuthRoot  string
	HTTPClient httpclient.HTTPDoer
	Logger     *zap.Logger
	// RateLimiter paces token endpoint calls; nil disables pacing.
	RateLimiter *rate.Manager
	// Now defaults to time.Now.
	Now func() time.Time
}

// Manager runs the token endpoint operations. It holds no token state: every call
// takes and returns immutable credential sets.
type Manager struct {
	app       BasicCredentials
	root      string
	exec      *httpclient.Executor
	logger    *zap.Logger
	now       func() time.Time
	oauthConf *oauth2.Config
}

// tokenResponse is the token endpoint payload.
type tokenResponse struct {
	AccessToken  string `zoom:"required"`
	TokenType    string
	RefreshToken string
	ExpiresIn    float64 `zoom:"required"`
	Scope        string
}

func NewManager(cfg Config) (*Manager, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("auth: client id and secret are required")
	}
	rootStr := cfg.OAuthRoot
	if rootStr == "" {
		rootStr = DefaultOAuthRoot
	}
	root, err := url.Parse(rootStr)
	if err != nil || root.Scheme == "" || root.Host == "" {
		return nil, &httpclient.PreconditionError{Op: "auth", Reason: "invalid oauth root " + rootStr, Err: err}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	m := &Manager{
		app:    BasicCredentials{ClientID: cfg.ClientID, ClientSecret: cfg.ClientSecret},
		root:   root.String(),
		exec:   httpclient.New(cfg.Logger, cfg.RateLimiter, cfg.HTTPClient, "zoom.auth"),
		logger: cfg.Logger,
		now:    cfg.Now,
	}
	m.oauthConf = &oauth2.Config{
		ClientID: cfg.ClientID,
		Endpoint: oauth2.Endpoint{
			AuthURL:  m.endpoint("authorize"),
			TokenURL: m.endpoint("token"),
		},
	}
	return m, nil
}

func (m *Manager) endpoint(name string) string {
	return httpclient.MustJoinURL(m.root, name)
}

// Exchange trades an authorization code for a credential set. codeVerifier is sent only
// when non-empty.
func (m *Manager) Exchange(ctx context.Context, code, redirectURI, codeVerifier string) (model.CredentialSet, error) {
	form := url.Values{
		"code":         {code},
		"grant_type":   {"authorization_code"},
		"redirect_uri": {redirectURI},
	}
	if codeVerifier != "" {
		form.Set("code_verifier", codeVerifier)
	}

	creds, err := m.requestToken(ctx, form)
	metrics.IncTokenOperation("exchange", err)
	if err != nil {
		return model.CredentialSet{}, err
	}

	m.logger.Info("zoom.auth.code_exchanged",
		zap.String("access_token", logger.MaskToken(creds.AccessToken)),
		zap.Time("expires_at", creds.ExpiresAt))
	return creds, nil
}

// Refresh rotates creds. The returned set carries the new refresh token; the old one
// must not be used again.
func (m *Manager) Refresh(ctx context.Context, creds model.CredentialSet) (model.CredentialSet, error) {
	if creds.RefreshToken == "" {
		metrics.IncTokenOperation("refresh", ErrMissingRefreshToken)
		return model.CredentialSet{}, &httpclient.PreconditionError{Op: "refresh", Reason: "no refresh token", Err: ErrMissingRefreshToken}
	}
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {creds.RefreshToken},
	}

	rotated, err := m.requestToken(ctx, form)
	metrics.IncTokenOperation("refresh", err)
	if err != nil {
		m.logger.Warn("zoom.auth.refresh_failed",
			zap.String("refresh_token", logger.MaskToken(creds.RefreshToken)),
			zap.String("oauth_error", OAuthErrorCode(err)),
			zap.Error(err))
		return model.CredentialSet{}, err
	}

	m.logger.Info("zoom.auth.token_refreshed",
		zap.String("access_token", logger.MaskToken(rotated.AccessToken)),
		zap.Time("expires_at", rotated.ExpiresAt))
	return rotated, nil
}

// Revoke invalidates the access token of creds.
func (m *Manager) Revoke(ctx context.Context, creds model.CredentialSet) error {
	if creds.AccessToken == "" {
		return &httpclient.PreconditionError{Op: "revoke", Reason: "no access token"}
	}
	form := url.Values{"token": {creds.AccessToken}}
	_, err := m.exec.Post(ctx, m.endpoint("revoke"), m.app, form, httpclient.ContentTypeForm)
	metrics.IncTokenOperation("revoke", err)
	if err != nil {
		return err
	}
	m.logger.Info("zoom.auth.token_revoked",
		zap.String("access_token", logger.MaskToken(creds.AccessToken)))
	return nil
}

func (m *Manager) requestToken(ctx context.Context, form url.Values) (model.CredentialSet, error) {
	issuedAt := m.now()
	body, err := m.exec.Post(ctx, m.endpoint("token"), m.app, form, httpclient.ContentTypeForm)
	if err != nil {
		return model.CredentialSet{}, err
	}
	tok, err := codec.Decode[tokenResponse](body)
	if err != nil {
		return model.CredentialSet{}, err
	}
	switch {
	case tok.AccessToken == "":
		return model.CredentialSet{}, &codec.DecodingError{Target: "auth.tokenResponse", Err: errors.New("empty access_token")}
	case tok.RefreshToken == "":
		return model.CredentialSet{}, &codec.DecodingError{Target: "auth.tokenResponse", Err: errors.New("response has no refresh_token")}
	}
	if tok.TokenType != "" && !strings.EqualFold(tok.TokenType, "bearer") {
		return model.CredentialSet{}, &codec.DecodingError{Target: "auth.tokenResponse", Err: errors.New("unexpected token_type " + tok.TokenType)}
	}
	return model.NewCredentialSet(
		tok.AccessToken,
		tok.RefreshToken,
		issuedAt,
		time.Duration(tok.ExpiresIn*float64(time.Second)),
		tok.Scope,
	), nil
}

// AuthorizationURL builds the URL the resource owner visits to grant access. challenge
// is an S256 PKCE challenge and may be empty.
func (m *Manager) AuthorizationURL(redirectURI, state, challenge string) string {
	opts := []oauth2.AuthCodeOption{oauth2.SetAuthURLParam("redirect_uri", redirectURI)}
	if challenge != "" {
		opts = append(opts,
			oauth2.SetAuthURLParam("code_challenge", challenge),
			oauth2.SetAuthURLParam("code_challenge_method", "S256"))
	}
	return m.oauthConf.AuthCodeURL(state, opts...)
}

// NewPKCE returns a fresh code verifier and its S256 challenge.
func NewPKCE() (verifier, challenge string) {
	verifier = oauth2.GenerateVerifier()
	return verifier, oauth2.S256ChallengeFromVerifier(verifier)
}

// NewState returns an unguessable value for the authorize request's state parameter.
func NewState() string {
	return uuid.NewString()
}

// OAuthErrorCode extracts the provider's error code (for example "invalid_grant") from a
// failed token endpoint call, or "" if err carries none.
func OAuthErrorCode(err error) string {
	var statusErr *httpclient.HTTPStatusError
	if !errors.As(err, &statusErr) || statusErr.Body == "" {
		return ""
	}
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal([]byte(statusErr.Body), &payload) != nil {
		return ""
	}
	return payload.Error
}
