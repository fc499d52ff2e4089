// Package tokenstore persists Zoom credential sets between process restarts.
package tokenstore

import (
	"context"
	"errors"

	"github.com/zoomkit/zoomapi/pkg/model"
)

// ErrNotFound is returned by Load when no credential set is stored under the key.
var ErrNotFound = errors.New("tokenstore: credentials not found")

// Store saves credential sets by key (typically a Zoom user or account id).
// Delete of a missing key is not an error.
type Store interface {
	Load(ctx context.Context, key string) (model.CredentialSet, error)
	Save(ctx context.Context, key string, creds model.CredentialSet) error
	Delete(ctx context.Context, key string) error
}
