package zoom

import (
	"github.com/zoomkit/zoomapi/internal/auth"
	"github.com/zoomkit/zoomapi/internal/codec"
	"github.com/zoomkit/zoomapi/internal/httpclient"
	"github.com/zoomkit/zoomapi/internal/pager"
)

type (
	// TransportError is a network failure: no HTTP response arrived.
	TransportError = httpclient.TransportError
	// HTTPStatusError is a response with status >= 400.
	HTTPStatusError = httpclient.HTTPStatusError
	// PreconditionError is misuse detected before any request was sent.
	PreconditionError = httpclient.PreconditionError
	// DecodingError is a 2xx body that did not match the expected shape.
	DecodingError = codec.DecodingError
)

var (
	ErrResponseTooLarge    = httpclient.ErrResponseTooLarge
	ErrMissingRefreshToken = auth.ErrMissingRefreshToken
	ErrRepeatedPageToken   = pager.ErrRepeatedToken
)

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int { return httpclient.StatusCode(err) }

func IsNotFound(err error) bool     { return httpclient.IsNotFound(err) }
func IsUnauthorized(err error) bool { return httpclient.IsUnauthorized(err) }

// OAuthErrorCode returns the token endpoint's error code, e.g. "invalid_grant".
func OAuthErrorCode(err error) string { return auth.OAuthErrorCode(err) }
