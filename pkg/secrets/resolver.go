package secrets

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/zoomkit/zoomapi/internal/metrics"
)

// AppCredentials are the OAuth client id and secret of a Zoom app.
type AppCredentials struct {
	ClientID     string
	ClientSecret string
}

// Resolver loads Zoom app credentials from a secrets Provider, caching them locally to
// reduce API calls. The secret must hold "client_id" and "client_secret".
type Resolver struct {
	logger   *zap.Logger
	provider Provider
	cache    *Cache[AppCredentials]
}

func NewResolver(logger *zap.Logger, provider Provider, cache *Cache[AppCredentials]) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{logger: logger, provider: provider, cache: cache}
}

// Resolve returns the app credentials stored under secretName.
func (r *Resolver) Resolve(ctx context.Context, secretName string) (AppCredentials, error) {
	key := strings.ToLower(secretName)

	// --- check in-memory cache first ---
	if creds, ok := r.cache.Get(key); ok {
		metrics.IncCacheHit(true)
		return creds, nil
	}
	metrics.IncCacheHit(false)

	secretMap, err := r.provider.GetSecret(ctx, secretName)
	if err != nil {
		r.logger.Warn("secrets.fetch_failed",
			zap.String("key", secretName),
			zap.Error(err))
		return AppCredentials{}, fmt.Errorf("resolve app credentials %q: %w", secretName, err)
	}

	creds, err := parseAppCredentials(secretMap)
	if err != nil {
		return AppCredentials{}, fmt.Errorf("parse secret %q: %w", secretName, err)
	}

	r.cache.Put(key, creds)
	r.logger.Info("secrets.app_credentials_resolved",
		zap.String("key", secretName),
		zap.String("client_id", creds.ClientID))
	return creds, nil
}

// Bust drops the cached entry for secretName, e.g. after the secret was rotated.
func (r *Resolver) Bust(secretName string) {
	r.cache.Bust(strings.ToLower(secretName))
}

func parseAppCredentials(m map[string]string) (AppCredentials, error) {
	creds := AppCredentials{
		ClientID:     strings.TrimSpace(m["client_id"]),
		ClientSecret: strings.TrimSpace(m["client_secret"]),
	}
	var missing []string
	if creds.ClientID == "" {
		missing = append(missing, "client_id")
	}
	if creds.ClientSecret == "" {
		missing = append(missing, "client_secret")
	}
	if len(missing) > 0 {
		return AppCredentials{}, fmt.Errorf("missing %s", strings.Join(missing, ", "))
	}
	return creds, nil
}
