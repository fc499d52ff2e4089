package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zoomkit/zoomapi/internal/codec"
	"github.com/zoomkit/zoomapi/internal/rate"
)

type bearer string

func (b bearer) AuthorizationHeaderValue() string { return "Bearer " + string(b) }

func newExec(client *http.Client) *Executor {
	return New(zap.NewNop(), nil, client, "test")
}

// captured is what a stub server saw for the last request.
type captured struct {
	method      string
	path        string
	query       url.Values
	auth        string
	contentType string
	body        string
}

func captureServer(t *testing.T, status int, respBody string) (*httptest.Server, *captured, *atomic.Int32) {
	t.Helper()
	var (
		seen  captured
		count atomic.Int32
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count.Add(1)
		b, _ := io.ReadAll(r.Body)
		seen = captured{
			method:      r.Method,
			path:        r.URL.Path,
			query:       r.URL.Query(),
			auth:        r.Header.Get("Authorization"),
			contentType: r.Header.Get("Content-Type"),
			body:        string(b),
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(respBody))
	}))
	t.Cleanup(srv.Close)
	return srv, &seen, &count
}

// ─── Basic success ────────────────────────────────────────────────────────────

func TestGet_InjectsBearerAndQuery(t *testing.T) {
	srv, seen, _ := captureServer(t, http.StatusOK, `{"result":"ok"}`)

	body, err := newExec(srv.Client()).Get(context.Background(), srv.URL+"/v2/users", bearer("AT1"),
		map[string]string{"page_size": "30"})
	require.NoError(t, err)

	assert.JSONEq(t, `{"result":"ok"}`, string(body))
	assert.Equal(t, http.MethodGet, seen.method)
	assert.Equal(t, "/v2/users", seen.path)
	assert.Equal(t, "Bearer AT1", seen.auth)
	assert.Equal(t, "30", seen.query.Get("page_size"))
	assert.Empty(t, seen.body)
}

func TestPost_JSONBodyIsSnakeCased(t *testing.T) {
	srv, seen, _ := captureServer(t, http.StatusCreated, `{}`)

	type payload struct {
		HostID string
		Topic  string
	}
	_, err := newExec(srv.Client()).Post(context.Background(), srv.URL, bearer("AT1"),
		payload{HostID: "h1", Topic: "sync"}, ContentTypeJSON)
	require.NoError(t, err)

	assert.Equal(t, "application/json", seen.contentType)
	assert.JSONEq(t, `{"host_id":"h1","topic":"sync"}`, seen.body)
}

func TestPost_FormBodyIsFlatKeyValues(t *testing.T) {
	srv, seen, _ := captureServer(t, http.StatusOK, `{}`)

	_, err := newExec(srv.Client()).Post(context.Background(), srv.URL, bearer("AT1"),
		url.Values{"grant_type": {"refresh_token"}, "refresh_token": {"RT1"}}, ContentTypeForm)
	require.NoError(t, err)

	assert.Equal(t, "application/x-www-form-urlencoded", seen.contentType)
	form, err := url.ParseQuery(seen.body)
	require.NoError(t, err)
	assert.Equal(t, "refresh_token", form.Get("grant_type"))
	assert.Equal(t, "RT1", form.Get("refresh_token"))
}

// ─── Preconditions ───────────────────────────────────────────────────────────

func TestPost_UnsupportedContentTypeFailsBeforeDispatch(t *testing.T) {
	srv, _, count := captureServer(t, http.StatusOK, `{}`)

	for _, ct := range []ContentType{"text/plain", "multipart/form-data", "application/json; charset=utf-8", ""} {
		_, err := newExec(srv.Client()).Post(context.Background(), srv.URL, bearer("AT1"), map[string]string{"a": "b"}, ct)
		var pre *PreconditionError
		require.ErrorAs(t, err, &pre, "content type %q", ct)
	}
	assert.EqualValues(t, 0, count.Load(), "no request may be dispatched")
}

func TestDo_RequiresAuthorizer(t *testing.T) {
	srv, _, count := captureServer(t, http.StatusOK, `{}`)

	_, err := newExec(srv.Client()).Get(context.Background(), srv.URL, nil, nil)
	var pre *PreconditionError
	require.ErrorAs(t, err, &pre)
	assert.EqualValues(t, 0, count.Load())
}

func TestDo_RejectsRelativeURL(t *testing.T) {
	_, err := newExec(http.DefaultClient).Get(context.Background(), "/v2/users", bearer("AT1"), nil)
	var pre *PreconditionError
	require.ErrorAs(t, err, &pre)
}

// ─── Verb-specific encoding ──────────────────────────────────────────────────

func TestPatch_AlwaysJSON(t *testing.T) {
	srv, seen, _ := captureServer(t, http.StatusNoContent, ``)

	body, err := newExec(srv.Client()).Patch(context.Background(), srv.URL, bearer("AT1"),
		map[string]any{"DisplayName": "Jo"})
	require.NoError(t, err)

	assert.Empty(t, body)
	assert.Equal(t, http.MethodPatch, seen.method)
	assert.Equal(t, "application/json", seen.contentType)
	assert.JSONEq(t, `{"display_name":"Jo"}`, seen.body)
}

func TestDelete_OptionsBecomeQueryFlags(t *testing.T) {
	srv, seen, _ := captureServer(t, http.StatusNoContent, ``)

	type opts struct {
		ScheduleForReminder bool
	}
	_, err := newExec(srv.Client()).Delete(context.Background(), srv.URL+"/meetings/1", bearer("AT1"),
		opts{ScheduleForReminder: true})
	require.NoError(t, err)

	assert.Equal(t, http.MethodDelete, seen.method)
	assert.Equal(t, "true", seen.query.Get("schedule_for_reminder"))
	assert.Empty(t, seen.body, "delete must not carry a body")
	assert.Empty(t, seen.contentType)
}

// ─── Status normalization: no retry ──────────────────────────────────────────

func TestDo_4xxBecomesHTTPStatusError(t *testing.T) {
	srv, _, count := captureServer(t, http.StatusNotFound, `{"code":3001,"message":"Meeting does not exist"}`)

	_, err := newExec(srv.Client()).Get(context.Background(), srv.URL+"/meetings/9", bearer("AT1"), nil)
	var statusErr *HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "Meeting does not exist")
	assert.True(t, IsNotFound(err))
	assert.EqualValues(t, 1, count.Load())
}

func TestDo_5xxNotRetried(t *testing.T) {
	srv, _, count := captureServer(t, http.StatusServiceUnavailable, `busy`)

	_, err := newExec(srv.Client()).Get(context.Background(), srv.URL, bearer("AT1"), nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, StatusCode(err))
	assert.EqualValues(t, 1, count.Load(), "5xx must not be retried")
}

func TestDo_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	_, err := newExec(&http.Client{Timeout: time.Second}).Get(context.Background(), endpoint, bearer("AT1"), nil)
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, http.MethodGet, transportErr.Method)
	assert.Zero(t, StatusCode(err))
}

func TestDo_ResponseTooLarge(t *testing.T) {
	srv, _, _ := captureServer(t, http.StatusOK, `{"padding":"0123456789"}`)

	_, err := newExec(srv.Client()).WithMaxResponseBytes(8).Get(context.Background(), srv.URL, bearer("AT1"), nil)
	assert.True(t, errors.Is(err, ErrResponseTooLarge))
}

// ─── DoJSON ──────────────────────────────────────────────────────────────────

func TestDoJSON_DecodesSnakeCase(t *testing.T) {
	srv, _, _ := captureServer(t, http.StatusOK, `{"next_page_token":"abc","total_records":2}`)

	var out struct {
		NextPageToken string
		TotalRecords  int
	}
	err := newExec(srv.Client()).DoJSON(context.Background(), Request{Method: http.MethodGet, URL: srv.URL, Auth: bearer("AT1")}, &out)
	require.NoError(t, err)
	assert.Equal(t, "abc", out.NextPageToken)
	assert.Equal(t, 2, out.TotalRecords)
}

// ─── Pacing ──────────────────────────────────────────────────────────────────

func TestDo_RateLimitWaitHonoursCancellation(t *testing.T) {
	srv, _, count := captureServer(t, http.StatusOK, `{}`)

	mgr := rate.NewManager(rate.Config{RequestsPerSecond: 0.001, Burst: 1, PollInterval: 5 * time.Millisecond})
	exec := New(zap.NewNop(), mgr, srv.Client(), "test")

	_, err := exec.Get(context.Background(), srv.URL, bearer("AT1"), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = exec.Get(ctx, srv.URL, bearer("AT1"), nil)
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.EqualValues(t, 1, count.Load())
}

func TestGetJSON_EmptyBodyIsDecodingError(t *testing.T) {
	srv, _, _ := captureServer(t, http.StatusOK, ``)

	var out struct{ ID string }
	err := newExec(srv.Client()).GetJSON(context.Background(), srv.URL, bearer("AT1"), nil, &out)
	var decErr *codec.DecodingError
	require.ErrorAs(t, err, &decErr)
}

func TestPostJSON_SendsSnakeCaseAndDecodes(t *testing.T) {
	srv, seen, _ := captureServer(t, http.StatusCreated, `{"id":"u1","first_name":"Ada"}`)

	var out struct {
		ID        string
		FirstName string
	}
	in := struct{ FirstName string }{FirstName: "Ada"}
	err := newExec(srv.Client()).PostJSON(context.Background(), srv.URL, bearer("AT1"), in, &out)
	require.NoError(t, err)
	assert.Equal(t, "u1", out.ID)
	assert.JSONEq(t, `{"first_name":"Ada"}`, seen.body)
}
