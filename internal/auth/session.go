package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/zoomkit/zoomapi/pkg/model"
	"github.com/zoomkit/zoomapi/pkg/tokenstore"
)

// DefaultRefreshBuffer is how long before expiry a session rotates its credentials.
const DefaultRefreshBuffer = 5 * time.Minute

// Refresher rotates a credential set. *Manager implements it.
type Refresher interface {
	Refresh(ctx context.Context, creds model.CredentialSet) (model.CredentialSet, error)
}

// Session holds the current credential set for one Zoom user and rotates it before it
// expires. Concurrent callers share a single refresh, so a refresh token is never
// presented twice.
type Session struct {
	refresher Refresher
	store     tokenstore.Store
	key       string
	buffer    time.Duration
	now       func() time.Time
	logger    *zap.Logger

	mu    sync.RWMutex
	creds model.CredentialSet
	group singleflight.Group
}

type SessionOption func(*Session)

// WithStore persists every rotated set under key before it is handed out.
func WithStore(store tokenstore.Store, key string) SessionOption {
	return func(s *Session) {
		s.store = store
		s.key = key
	}
}

func WithRefreshBuffer(d time.Duration) SessionOption {
	return func(s *Session) { s.buffer = d }
}

func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

func WithSessionLogger(logger *zap.Logger) SessionOption {
	return func(s *Session) { s.logger = logger }
}

func NewSession(refresher Refresher, initial model.CredentialSet, opts ...SessionOption) *Session {
	s := &Session{
		refresher: refresher,
		creds:     initial,
		buffer:    DefaultRefreshBuffer,
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the current set with the stored one.
func (s *Session) Load(ctx context.Context) error {
	if s.store == nil {
		return errors.New("auth: session has no store")
	}
	creds, err := s.store.Load(ctx, s.key)
	if err != nil {
		return fmt.Errorf("load session %s: %w", s.key, err)
	}
	s.set(creds)
	return nil
}

// Replace persists creds, e.g. the result of a code exchange, and makes it current.
func (s *Session) Replace(ctx context.Context, creds model.CredentialSet) error {
	if s.store != nil {
		if err := s.store.Save(ctx, s.key, creds); err != nil {
			return fmt.Errorf("persist credentials: %w", err)
		}
	}
	s.set(creds)
	return nil
}

// Current returns the held set without refreshing it.
func (s *Session) Current() model.CredentialSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds
}

// Credentials returns a set that is valid for at least the refresh buffer, rotating the
// held one first if needed.
func (s *Session) Credentials(ctx context.Context) (model.CredentialSet, error) {
	current := s.Current()
	if !current.ExpiresWithin(s.now(), s.buffer) {
		return current, nil
	}
	return s.rotate(ctx, current)
}

// ForceRefresh rotates the held set regardless of its expiry, for example after the API
// answered 401.
func (s *Session) ForceRefresh(ctx context.Context) (model.CredentialSet, error) {
	return s.rotate(ctx, s.Current())
}

// rotate runs one shared refresh. The refresh itself is detached from the caller's
// cancellation, since the server may already have spent the old refresh token; a
// cancelled caller only stops waiting.
func (s *Session) rotate(ctx context.Context, stale model.CredentialSet) (model.CredentialSet, error) {
	refreshCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan("refresh", func() (any, error) {
		// A refresh that finished while this caller was queued already rotated stale.
		if latest := s.Current(); latest.RefreshToken != stale.RefreshToken {
			return latest, nil
		}
		rotated, err := s.refresher.Refresh(refreshCtx, stale)
		if err != nil {
			return nil, err
		}
		if s.store != nil {
			if err := s.store.Save(refreshCtx, s.key, rotated); err != nil {
				s.logger.Error("zoom.auth.session_persist_failed",
					zap.String("key", s.key),
					zap.Error(err))
				// The old refresh token is already spent; keep the new set in memory.
				s.set(rotated)
				return nil, fmt.Errorf("persist rotated credentials: %w", err)
			}
		}
		s.set(rotated)
		return rotated, nil
	})

	select {
	case <-ctx.Done():
		return model.CredentialSet{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return model.CredentialSet{}, res.Err
		}
		if res.Shared {
			s.logger.Debug("zoom.auth.session_refresh_shared", zap.String("key", s.key))
		}
		return res.Val.(model.CredentialSet), nil
	}
}

func (s *Session) set(creds model.CredentialSet) {
	s.mu.Lock()
	s.creds = creds
	s.mu.Unlock()
}
