package zoom

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/zoomkit/zoomapi/pkg/config"
	"github.com/zoomkit/zoomapi/pkg/logger"
	"github.com/zoomkit/zoomapi/pkg/secrets"
	"github.com/zoomkit/zoomapi/pkg/tokenstore"
)

// NewFromConfig builds a Client from environment configuration. When
// cfg.CredentialsSecret is set the app credentials are read from AWS Secrets Manager.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Client, error) {
	logg, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	clientID, clientSecret := cfg.ClientID, cfg.ClientSecret
	if cfg.CredentialsSecret != "" {
		provider, err := secrets.NewAWSProvider(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, err
		}
		app, err := resolveApp(ctx, logg, provider, cfg)
		if err != nil {
			return nil, err
		}
		clientID, clientSecret = app.ClientID, app.ClientSecret
	}

	return New(Options{
		ClientID:          clientID,
		ClientSecret:      clientSecret,
		APIRoot:           cfg.APIRoot,
		OAuthRoot:         cfg.OAuthRoot,
		RedirectURI:       cfg.RedirectURI,
		Timeout:           cfg.HTTPTimeout,
		Logger:            logg,
		FanOutLimit:       cfg.FanOutLimit,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
	})
}

func resolveApp(ctx context.Context, logg *zap.Logger, provider secrets.Provider, cfg *config.Config) (secrets.AppCredentials, error) {
	resolver := secrets.NewResolver(logg, provider, secrets.NewCache[secrets.AppCredentials](cfg.SecretCacheTTL))
	return resolver.Resolve(ctx, cfg.CredentialsSecret)
}

// OpenConfiguredSession opens the store selected by cfg and a Session kept under
// cfg.TokenStoreKey. The store is returned so the caller can close it; a missing stored
// set is reported as in Client.OpenSession.
func (c *Client) OpenConfiguredSession(ctx context.Context, cfg *config.Config, opts ...SessionOption) (*Session, tokenstore.Store, error) {
	store, err := OpenTokenStore(ctx, cfg, c.logger)
	if err != nil {
		return nil, nil, err
	}
	session, err := c.OpenSession(ctx, store, cfg.TokenStoreKey, opts...)
	return session, store, err
}

// OpenTokenStore picks the credential store configured in cfg: redis when REDIS_ADDR
// is set, otherwise postgres when DATABASE_URL is set, otherwise process memory.
func OpenTokenStore(ctx context.Context, cfg *config.Config, logg *zap.Logger) (tokenstore.Store, error) {
	if logg == nil {
		logg = zap.NewNop()
	}
	switch {
	case cfg.RedisAddr != "":
		store, err := tokenstore.NewRedis(cfg.RedisAddr, cfg.RedisDB, cfg.RedisPass, cfg.TokenTTL, logg)
		if err != nil {
			return nil, fmt.Errorf("open redis token store: %w", err)
		}
		logg.Info("zoom.tokenstore.redis", zap.String("addr", cfg.RedisAddr))
		return store, nil
	case cfg.DatabaseURL != "":
		store, err := tokenstore.NewPostgres(ctx, cfg.DatabaseURL, tokenstore.PGPoolConfig{}, logg)
		if err != nil {
			return nil, fmt.Errorf("open postgres token store: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, err
		}
		logg.Info("zoom.tokenstore.postgres", zap.String("dsn", logger.MaskDSN(cfg.DatabaseURL)))
		return store, nil
	default:
		return tokenstore.NewMemory(), nil
	}
}
