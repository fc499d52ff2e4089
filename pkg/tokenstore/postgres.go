package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/zoomkit/zoomapi/pkg/model"
)

// Schema creates the credentials table used by PostgresStore.
const Schema = `
	CREATE TABLE IF NOT EXISTS zoom_credentials (
		key           TEXT PRIMARY KEY,
		access_token  TEXT NOT NULL,
		refresh_token TEXT NOT NULL,
		expires_at    TIMESTAMPTZ NOT NULL,
		scope         TEXT NOT NULL DEFAULT '',
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`

// DB is the subset of *pgxpool.Pool used by PostgresStore.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PGPoolConfig struct {
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// PostgresStore keeps one row per key in zoom_credentials.
type PostgresStore struct {
	db     DB
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgres opens a pool for pgURL.
func NewPostgres(ctx context.Context, pgURL string, poolCfg PGPoolConfig, logger *zap.Logger) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(pgURL)
	if err != nil {
		return nil, fmt.Errorf("invalid pg config: %w", err)
	}
	if poolCfg.MaxConns > 0 {
		cfg.MaxConns = poolCfg.MaxConns
	}
	if poolCfg.MinConns > 0 {
		cfg.MinConns = poolCfg.MinConns
	}
	if poolCfg.MaxConnLifetime > 0 {
		cfg.MaxConnLifetime = poolCfg.MaxConnLifetime
	}
	if poolCfg.MaxConnIdleTime > 0 {
		cfg.MaxConnIdleTime = poolCfg.MaxConnIdleTime
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	s := NewPostgresFromDB(pool, logger)
	s.pool = pool
	return s, nil
}

func NewPostgresFromDB(db DB, logger *zap.Logger) *PostgresStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresStore{db: db, logger: logger}
}

// EnsureSchema creates the credentials table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("create zoom_credentials: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, key string) (model.CredentialSet, error) {
	var creds model.CredentialSet
	err := s.db.QueryRow(ctx, `
		SELECT access_token, refresh_token, expires_at, scope
		FROM zoom_credentials
		WHERE key = $1;
	`, key).Scan(&creds.AccessToken, &creds.RefreshToken, &creds.ExpiresAt, &creds.Scope)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.CredentialSet{}, ErrNotFound
	}
	if err != nil {
		return model.CredentialSet{}, fmt.Errorf("load credentials %s: %w", key, err)
	}
	return creds, nil
}

func (s *PostgresStore) Save(ctx context.Context, key string, creds model.CredentialSet) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO zoom_credentials (key, access_token, refresh_token, expires_at, scope, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (key)
		DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expires_at = EXCLUDED.expires_at,
			scope = EXCLUDED.scope,
			updated_at = EXCLUDED.updated_at;
	`, key, creds.AccessToken, creds.RefreshToken, creds.ExpiresAt, creds.Scope)
	if err != nil {
		s.logger.Error("tokenstore.pg.save_failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("save credentials %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM zoom_credentials WHERE key = $1;`, key); err != nil {
		return fmt.Errorf("delete credentials %s: %w", key, err)
	}
	return nil
}

// Close releases the pool opened by NewPostgres.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
