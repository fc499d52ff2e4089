package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/zoomkit/zoomapi/internal/codec"
	"github.com/zoomkit/zoomapi/internal/metrics"
	"github.com/zoomkit/zoomapi/internal/rate"
)

// ContentType is a request body encoding accepted by the Executor.
type ContentType string

const (
	ContentTypeJSON ContentType = "application/json"
	ContentTypeForm ContentType = "application/x-www-form-urlencoded"
)

const defaultMaxResponseBytes int64 = 10 << 20 // 10 MiB

// Authorizer supplies the Authorization header value for a request. Bearer credential
// sets and Basic app credentials both satisfy it.
type Authorizer interface {
	AuthorizationHeaderValue() string
}

// HTTPDoer is the transport the Executor sends requests through.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Request is one outbound call. It is built fresh per call and never retained.
type Request struct {
	Method      string
	URL         string
	Auth        Authorizer
	Query       url.Values
	Body        []byte
	ContentType ContentType
}

// Executor sends authenticated requests and normalizes failures. It performs exactly one
// network call per invocation: no caching and no retry.
type Executor struct {
	logger           *zap.Logger
	rateMgr          *rate.Manager
	http             HTTPDoer
	tag              string
	maxResponseBytes int64
}

// New creates an Executor. rateMgr may be nil to disable pacing; tag prefixes log events.
func New(logger *zap.Logger, rateMgr *rate.Manager, httpClient HTTPDoer, tag string) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if tag == "" {
		tag = "zoom"
	}
	return &Executor{
		logger:           logger,
		rateMgr:          rateMgr,
		http:             httpClient,
		tag:              tag,
		maxResponseBytes: defaultMaxResponseBytes,
	}
}

// WithMaxResponseBytes returns a copy of e with a different response size limit.
func (e *Executor) WithMaxResponseBytes(n int64) *Executor {
	c := *e
	if n > 0 {
		c.maxResponseBytes = n
	}
	return &c
}

// Get sends a GET; query (if any) is flattened into query parameters.
func (e *Executor) Get(ctx context.Context, target string, auth Authorizer, query any) ([]byte, error) {
	q, err := codec.EncodeValues(query)
	if err != nil {
		return nil, &PreconditionError{Op: "get", Reason: "encode query", Err: err}
	}
	return e.Do(ctx, Request{Method: http.MethodGet, URL: target, Auth: auth, Query: q})
}

// Post sends body encoded as contentType, which must be JSON or URL-encoded form.
func (e *Executor) Post(ctx context.Context, target string, auth Authorizer, body any, contentType ContentType) ([]byte, error) {
	var (
		payload []byte
		err     error
	)
	switch contentType {
	case ContentTypeJSON:
		payload, err = codec.EncodeJSON(body)
	case ContentTypeForm:
		var form url.Values
		if form, err = codec.EncodeValues(body); err == nil {
			payload = []byte(form.Encode())
		}
	default:
		return nil, &PreconditionError{Op: "post", Reason: fmt.Sprintf("unsupported content type %q", contentType)}
	}
	if err != nil {
		return nil, &PreconditionError{Op: "post", Reason: "encode body", Err: err}
	}
	return e.Do(ctx, Request{Method: http.MethodPost, URL: target, Auth: auth, Body: payload, ContentType: contentType})
}

// Patch sends body as JSON.
func (e *Executor) Patch(ctx context.Context, target string, auth Authorizer, body any) ([]byte, error) {
	payload, err := codec.EncodeJSON(body)
	if err != nil {
		return nil, &PreconditionError{Op: "patch", Reason: "encode body", Err: err}
	}
	return e.Do(ctx, Request{Method: http.MethodPatch, URL: target, Auth: auth, Body: payload, ContentType: ContentTypeJSON})
}

// Delete sends a DELETE. options are carried as query flags, never as a body.
func (e *Executor) Delete(ctx context.Context, target string, auth Authorizer, options any) ([]byte, error) {
	q, err := codec.EncodeValues(options)
	if err != nil {
		return nil, &PreconditionError{Op: "delete", Reason: "encode options", Err: err}
	}
	return e.Do(ctx, Request{Method: http.MethodDelete, URL: target, Auth: auth, Query: q})
}

// DoJSON executes req and decodes the response body into out. An empty body is a
// decoding error unless out is nil.
func (e *Executor) DoJSON(ctx context.Context, req Request, out any) error {
	body, err := e.Do(ctx, req)
	if err != nil {
		return err
	}
	return e.decode(body, out, req.URL)
}

// GetJSON is Get followed by decoding the response into out.
func (e *Executor) GetJSON(ctx context.Context, target string, auth Authorizer, query any, out any) error {
	body, err := e.Get(ctx, target, auth, query)
	if err != nil {
		return err
	}
	return e.decode(body, out, target)
}

// PostJSON sends body as JSON and decodes the response into out.
func (e *Executor) PostJSON(ctx context.Context, target string, auth Authorizer, body any, out any) error {
	resp, err := e.Post(ctx, target, auth, body, ContentTypeJSON)
	if err != nil {
		return err
	}
	return e.decode(resp, out, target)
}

func (e *Executor) decode(body []byte, out any, target string) error {
	if out == nil {
		return nil
	}
	if err := codec.DecodeInto(body, out); err != nil {
		e.logger.Warn(e.tag+".decode_failed",
			zap.Error(err),
			zap.String("url", target))
		return err
	}
	return nil
}

// Do executes req and returns the raw response body of a successful (< 400) response.
func (e *Executor) Do(ctx context.Context, req Request) ([]byte, error) {
	if req.Auth == nil {
		return nil, &PreconditionError{Op: req.Method, Reason: "request has no authorizer"}
	}
	target, err := url.Parse(req.URL)
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, &PreconditionError{Op: req.Method, Reason: fmt.Sprintf("invalid url %q", req.URL), Err: err}
	}
	if len(req.Query) > 0 {
		q := target.Query()
		for k, vals := range req.Query {
			q[k] = append([]string(nil), vals...)
		}
		target.RawQuery = q.Encode()
	}
	endpoint := target.String()

	if err := e.rateMgr.Wait(ctx, target.Host); err != nil {
		return nil, &TransportError{Method: req.Method, URL: endpoint, Err: fmt.Errorf("rate limit wait: %w", err)}
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, endpoint, body)
	if err != nil {
		return nil, &PreconditionError{Op: req.Method, Reason: "build request", Err: err}
	}
	httpReq.Header.Set("Authorization", req.Auth.AuthorizationHeaderValue())
	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil && req.ContentType != "" {
		httpReq.Header.Set("Content-Type", string(req.ContentType))
	}

	start := time.Now()
	resp, err := e.http.Do(httpReq)
	if err != nil {
		metrics.ObserveRequest(req.Method, 0, time.Since(start))
		e.logger.Warn(e.tag+".http_failed",
			zap.String("method", req.Method),
			zap.String("url", endpoint),
			zap.Error(err))
		return nil, &TransportError{Method: req.Method, URL: endpoint, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, e.maxResponseBytes+1))
	elapsed := time.Since(start)
	metrics.ObserveRequest(req.Method, resp.StatusCode, elapsed)
	if err != nil {
		return nil, &TransportError{Method: req.Method, URL: endpoint, Err: fmt.Errorf("read response body: %w", err)}
	}
	if int64(len(respBody)) > e.maxResponseBytes {
		return nil, &TransportError{Method: req.Method, URL: endpoint, Err: ErrResponseTooLarge}
	}

	if resp.StatusCode >= 400 {
		e.logger.Warn(e.tag+".client_error",
			zap.String("method", req.Method),
			zap.String("url", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(respBody)),
			zap.Duration("latency", elapsed))
		return nil, &HTTPStatusError{
			Method:     req.Method,
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	e.logger.Debug(e.tag+".http_success",
		zap.String("method", req.Method),
		zap.String("url", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", elapsed))

	return respBody, nil
}
