package secrets

import "context"

// Provider fetches a named secret as flat string fields, e.g. client_id and
// client_secret of a Zoom OAuth app.
type Provider interface {
	GetSecret(ctx context.Context, name string) (map[string]string, error)
}
