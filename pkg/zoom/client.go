package zoom

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/zoomkit/zoomapi/internal/auth"
	"github.com/zoomkit/zoomapi/internal/httpclient"
	"github.com/zoomkit/zoomapi/internal/rate"
	"github.com/zoomkit/zoomapi/pkg/config"
	"github.com/zoomkit/zoomapi/pkg/model"
)

// CredentialSet is the bearer token set every resource method takes.
type CredentialSet = model.CredentialSet

// Options configures a Client. Only ClientID and ClientSecret are required.
type Options struct {
	ClientID     string
	ClientSecret string
	// APIRoot defaults to https://api.zoom.us/v2/.
	APIRoot string
	// OAuthRoot defaults to https://zoom.us/oauth/.
	OAuthRoot string
	// RedirectURI is used by Exchange and AuthorizationURL when they are given "".
	RedirectURI string
	// HTTPClient overrides the transport. When nil a client with Timeout is built.
	HTTPClient httpclient.HTTPDoer
	// Timeout applies to the built client only; 0 means no timeout.
	Timeout time.Duration
	Logger  *zap.Logger
	// FanOutLimit caps concurrent requests of batch helpers; 0 is unbounded.
	FanOutLimit int
	// RequestsPerSecond paces calls per host; 0 disables pacing.
	RequestsPerSecond float64
	Burst             int
	// MaxResponseBytes bounds response bodies; 0 keeps the 10 MiB default.
	MaxResponseBytes int64
	Now              func() time.Time
}

// Client calls the Zoom REST API and token endpoint. It is safe for concurrent use.
type Client struct {
	apiRoot     string
	exec        *httpclient.Executor
	auth        *auth.Manager
	logger      *zap.Logger
	fanOutLimit int
	redirectURI string
}

func New(opts Options) (*Client, error) {
	if opts.ClientID == "" || opts.ClientSecret == "" {
		return nil, errors.New("zoom: client id and secret are required")
	}
	if opts.APIRoot == "" {
		opts.APIRoot = config.DefaultAPIRoot
	}
	if opts.OAuthRoot == "" {
		opts.OAuthRoot = config.DefaultOAuthRoot
	}
	if root, err := url.Parse(opts.APIRoot); err != nil || root.Scheme == "" || root.Host == "" {
		return nil, &httpclient.PreconditionError{Op: "new client", Reason: "invalid api root " + opts.APIRoot, Err: err}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}

	limiter := rate.NewManager(rate.Config{
		RequestsPerSecond: opts.RequestsPerSecond,
		Burst:             opts.Burst,
	})

	manager, err := auth.NewManager(auth.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		OAuthRoot:    opts.OAuthRoot,
		HTTPClient:   opts.HTTPClient,
		Logger:       opts.Logger,
		RateLimiter:  limiter,
		Now:          opts.Now,
	})
	if err != nil {
		return nil, err
	}

	exec := httpclient.New(opts.Logger, limiter, opts.HTTPClient, "zoom").
		WithMaxResponseBytes(opts.MaxResponseBytes)

	return &Client{
		apiRoot:     opts.APIRoot,
		exec:        exec,
		auth:        manager,
		logger:      opts.Logger,
		fanOutLimit: opts.FanOutLimit,
		redirectURI: opts.RedirectURI,
	}, nil
}

func (c *Client) endpoint(segments ...string) (string, error) {
	return httpclient.JoinURL(c.apiRoot, segments...)
}

// orMe maps an empty user or account id to "me", the caller's own resource.
func orMe(id string) string {
	if id == "" {
		return "me"
	}
	return id
}
