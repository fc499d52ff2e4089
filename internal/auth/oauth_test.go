package auth

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoomkit/zoomapi/internal/codec"
	"github.com/zoomkit/zoomapi/internal/httpclient"
	"github.com/zoomkit/zoomapi/pkg/model"
)

var fixedNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// tokenServer is a stand-in for the Zoom authorization server.
type tokenServer struct {
	*httptest.Server
	calls    atomic.Int32
	lastPath atomic.Value // string
	lastAuth atomic.Value // string
	lastForm atomic.Value // url.Values
	respond  func(n int32, form url.Values) (int, string)
}

func newTokenServer(t *testing.T, respond func(n int32, form url.Values) (int, string)) *tokenServer {
	t.Helper()
	ts := &tokenServer{respond: respond}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := ts.calls.Add(1)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		ts.lastPath.Store(r.URL.Path)
		ts.lastAuth.Store(r.Header.Get("Authorization"))
		ts.lastForm.Store(r.PostForm)

		status, body := ts.respond(n, r.PostForm)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func (ts *tokenServer) form() url.Values { return ts.lastForm.Load().(url.Values) }

func newTestManager(t *testing.T, ts *tokenServer) *Manager {
	t.Helper()
	m, err := NewManager(Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		OAuthRoot:    ts.URL + "/oauth/",
		HTTPClient:   ts.Client(),
		Now:          func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return m
}

func tokenJSON(access, refresh string) string {
	return fmt.Sprintf(`{"access_token":%q,"token_type":"bearer","refresh_token":%q,"expires_in":3600,"scope":"meeting:write user:read"}`, access, refresh)
}

// ─── Exchange ────────────────────────────────────────────────────────────────

func TestExchange_AuthorizationCode(t *testing.T) {
	ts := newTokenServer(t, func(int32, url.Values) (int, string) {
		return http.StatusOK, tokenJSON("AT1", "RT1")
	})
	m := newTestManager(t, ts)

	creds, err := m.Exchange(context.Background(), "ABC123", "https://app.example.com/callback", "")
	require.NoError(t, err)

	assert.Equal(t, "AT1", creds.AccessToken)
	assert.Equal(t, "RT1", creds.RefreshToken)
	assert.Equal(t, "meeting:write user:read", creds.Scope)
	assert.True(t, creds.ExpiresAt.Equal(fixedNow.Add(3600*time.Second)))

	assert.Equal(t, "/oauth/token", ts.lastPath.Load())
	basic := base64.StdEncoding.EncodeToString([]byte("client-id:client-secret"))
	assert.Equal(t, "Basic "+basic, ts.lastAuth.Load())

	form := ts.form()
	assert.Equal(t, "ABC123", form.Get("code"))
	assert.Equal(t, "authorization_code", form.Get("grant_type"))
	assert.Equal(t, "https://app.example.com/callback", form.Get("redirect_uri"))
	assert.NotContains(t, form, "code_verifier")
}

func TestExchange_ExpiryUsesWallClockByDefault(t *testing.T) {
	ts := newTokenServer(t, func(int32, url.Values) (int, string) {
		return http.StatusOK, tokenJSON("AT1", "RT1")
	})
	m, err := NewManager(Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		OAuthRoot:    ts.URL + "/oauth",
		HTTPClient:   ts.Client(),
	})
	require.NoError(t, err)

	before := time.Now()
	creds, err := m.Exchange(context.Background(), "ABC123", "https://app.example.com/callback", "")
	require.NoError(t, err)

	assert.False(t, creds.ExpiresAt.Before(before.Add(3599*time.Second)))
	assert.False(t, creds.ExpiresAt.After(time.Now().Add(3601*time.Second)))
}

func TestExchange_SendsCodeVerifier(t *testing.T) {
	ts := newTokenServer(t, func(int32, url.Values) (int, string) {
		return http.StatusOK, tokenJSON("AT1", "RT1")
	})
	m := newTestManager(t, ts)
	verifier, _ := NewPKCE()

	_, err := m.Exchange(context.Background(), "ABC123", "https://app.example.com/callback", verifier)
	require.NoError(t, err)
	assert.Equal(t, verifier, ts.form().Get("code_verifier"))
}

func TestExchange_InvalidGrant(t *testing.T) {
	ts := newTokenServer(t, func(int32, url.Values) (int, string) {
		return http.StatusBadRequest, `{"reason":"Invalid authorization code ABC123","error":"invalid_grant"}`
	})
	m := newTestManager(t, ts)

	creds, err := m.Exchange(context.Background(), "ABC123", "https://app.example.com/callback", "")
	require.Error(t, err)
	assert.True(t, creds.IsZero())

	var statusErr *httpclient.HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	assert.Equal(t, "invalid_grant", OAuthErrorCode(err))
}

func TestExchange_MissingAccessToken(t *testing.T) {
	ts := newTokenServer(t, func(int32, url.Values) (int, string) {
		return http.StatusOK, `{"token_type":"bearer","expires_in":3600}`
	})
	m := newTestManager(t, ts)

	_, err := m.Exchange(context.Background(), "ABC123", "https://app.example.com/callback", "")
	var decErr *codec.DecodingError
	require.ErrorAs(t, err, &decErr)
}

func TestExchange_EmptyTokens(t *testing.T) {
	bodies := map[string]string{
		"empty access token":    `{"access_token":"","refresh_token":"RT1","token_type":"bearer","expires_in":3600}`,
		"no refresh token":      `{"access_token":"AT1","token_type":"bearer","expires_in":3600}`,
		"empty refresh token":   `{"access_token":"AT1","refresh_token":"","token_type":"bearer","expires_in":3600}`,
		"both tokens are empty": `{"access_token":"","expires_in":3600}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			ts := newTokenServer(t, func(int32, url.Values) (int, string) {
				return http.StatusOK, body
			})
			m := newTestManager(t, ts)

			creds, err := m.Exchange(context.Background(), "ABC123", "https://app.example.com/callback", "")
			var decErr *codec.DecodingError
			require.ErrorAs(t, err, &decErr)
			assert.True(t, creds.IsZero())
		})
	}
}

func TestExchange_FractionalExpiresIn(t *testing.T) {
	ts := newTokenServer(t, func(int32, url.Values) (int, string) {
		return http.StatusOK, `{"access_token":"AT1","refresh_token":"RT1","token_type":"bearer","expires_in":3599.5}`
	})
	m := newTestManager(t, ts)

	creds, err := m.Exchange(context.Background(), "ABC123", "https://app.example.com/callback", "")
	require.NoError(t, err)
	assert.True(t, creds.ExpiresAt.Equal(fixedNow.Add(3599*time.Second+500*time.Millisecond)))
}

// ─── Refresh ─────────────────────────────────────────────────────────────────

func TestRefresh_RotatesTokens(t *testing.T) {
	ts := newTokenServer(t, func(n int32, form url.Values) (int, string) {
		return http.StatusOK, tokenJSON(fmt.Sprintf("AT%d", n+1), fmt.Sprintf("RT%d", n+1))
	})
	m := newTestManager(t, ts)
	start := model.NewCredentialSet("AT1", "RT1", fixedNow.Add(-time.Hour), time.Hour, "")

	second, err := m.Refresh(context.Background(), start)
	require.NoError(t, err)
	assert.Equal(t, "refresh_token", ts.form().Get("grant_type"))
	assert.Equal(t, "RT1", ts.form().Get("refresh_token"))
	assert.Equal(t, "AT2", second.AccessToken)
	assert.Equal(t, "RT2", second.RefreshToken)

	third, err := m.Refresh(context.Background(), second)
	require.NoError(t, err)
	assert.Equal(t, "RT2", ts.form().Get("refresh_token"))
	assert.Equal(t, "AT3", third.AccessToken)
	assert.NotEqual(t, second.AccessToken, third.AccessToken)
	assert.NotEqual(t, second.RefreshToken, third.RefreshToken)

	// Inputs are untouched.
	assert.Equal(t, "AT1", start.AccessToken)
	assert.Equal(t, "RT2", second.RefreshToken)
}

func TestRefresh_ResponseWithoutRefreshToken(t *testing.T) {
	ts := newTokenServer(t, func(int32, url.Values) (int, string) {
		return http.StatusOK, `{"access_token":"AT2","token_type":"bearer","expires_in":3600}`
	})
	m := newTestManager(t, ts)

	_, err := m.Refresh(context.Background(), model.CredentialSet{AccessToken: "AT1", RefreshToken: "RT1"})
	var decErr *codec.DecodingError
	require.ErrorAs(t, err, &decErr)
}

func TestRefresh_NoRefreshTokenSendsNothing(t *testing.T) {
	ts := newTokenServer(t, func(int32, url.Values) (int, string) {
		return http.StatusOK, tokenJSON("AT2", "RT2")
	})
	m := newTestManager(t, ts)

	_, err := m.Refresh(context.Background(), model.CredentialSet{AccessToken: "AT1"})
	assert.ErrorIs(t, err, ErrMissingRefreshToken)
	var pre *httpclient.PreconditionError
	assert.ErrorAs(t, err, &pre)
	assert.EqualValues(t, 0, ts.calls.Load())
}

func TestRefresh_SpentRefreshToken(t *testing.T) {
	ts := newTokenServer(t, func(int32, url.Values) (int, string) {
		return http.StatusUnauthorized, `{"reason":"Invalid Token!","error":"invalid_request"}`
	})
	m := newTestManager(t, ts)

	_, err := m.Refresh(context.Background(), model.CredentialSet{AccessToken: "AT1", RefreshToken: "RT1"})
	require.Error(t, err)
	assert.True(t, httpclient.IsUnauthorized(err))
	assert.Equal(t, "invalid_request", OAuthErrorCode(err))
}

// ─── Revoke ──────────────────────────────────────────────────────────────────

func TestRevoke(t *testing.T) {
	ts := newTokenServer(t, func(int32, url.Values) (int, string) {
		return http.StatusOK, `{"status":"success"}`
	})
	m := newTestManager(t, ts)

	err := m.Revoke(context.Background(), model.CredentialSet{AccessToken: "AT1", RefreshToken: "RT1"})
	require.NoError(t, err)
	assert.Equal(t, "/oauth/revoke", ts.lastPath.Load())
	assert.Equal(t, url.Values{"token": {"AT1"}}, ts.form())
}

func TestRevoke_EmptyAccessToken(t *testing.T) {
	ts := newTokenServer(t, func(int32, url.Values) (int, string) { return http.StatusOK, "" })
	m := newTestManager(t, ts)

	var pre *httpclient.PreconditionError
	require.ErrorAs(t, m.Revoke(context.Background(), model.CredentialSet{}), &pre)
	assert.EqualValues(t, 0, ts.calls.Load())
}

// ─── Authorization URL / PKCE ────────────────────────────────────────────────

func TestAuthorizationURL(t *testing.T) {
	m, err := NewManager(Config{ClientID: "client-id", ClientSecret: "client-secret"})
	require.NoError(t, err)
	_, challenge := NewPKCE()

	raw := m.AuthorizationURL("https://app.example.com/callback", "state-1", challenge)
	u, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "zoom.us", u.Host)
	assert.Equal(t, "/oauth/authorize", u.Path)
	q := u.Query()
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "https://app.example.com/callback", q.Get("redirect_uri"))
	assert.Equal(t, "state-1", q.Get("state"))
	assert.Equal(t, challenge, q.Get("code_challenge"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
}

func TestAuthorizationURL_WithoutChallenge(t *testing.T) {
	m, err := NewManager(Config{ClientID: "client-id", ClientSecret: "client-secret"})
	require.NoError(t, err)

	u, err := url.Parse(m.AuthorizationURL("https://app.example.com/callback", "s", ""))
	require.NoError(t, err)
	assert.NotContains(t, u.Query(), "code_challenge")
}

func TestNewPKCE(t *testing.T) {
	verifier, challenge := NewPKCE()
	sum := sha256.Sum256([]byte(verifier))
	assert.Equal(t, base64.RawURLEncoding.EncodeToString(sum[:]), challenge)

	other, _ := NewPKCE()
	assert.NotEqual(t, verifier, other)
}

func TestNewState(t *testing.T) {
	_, err := uuid.Parse(NewState())
	require.NoError(t, err)
	assert.NotEqual(t, NewState(), NewState())
}

func TestNewManager_Validation(t *testing.T) {
	_, err := NewManager(Config{ClientID: "client-id"})
	require.Error(t, err)

	_, err = NewManager(Config{ClientID: "id", ClientSecret: "secret", OAuthRoot: "zoom.us/oauth"})
	var pre *httpclient.PreconditionError
	require.ErrorAs(t, err, &pre)
}

func TestOAuthErrorCode_NonStatusError(t *testing.T) {
	assert.Empty(t, OAuthErrorCode(nil))
	assert.Empty(t, OAuthErrorCode(fmt.Errorf("boom")))
	assert.Empty(t, OAuthErrorCode(&httpclient.HTTPStatusError{StatusCode: 500, Body: "<html>"}))
}

func TestBasicCredentials(t *testing.T) {
	b := BasicCredentials{ClientID: "id", ClientSecret: "secret"}
	assert.Equal(t, "Basic aWQ6c2VjcmV0", b.AuthorizationHeaderValue())
}
