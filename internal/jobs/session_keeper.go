package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/zoomkit/zoomapi/internal/metrics"
	"github.com/zoomkit/zoomapi/pkg/model"
)

// CredentialSource is a session that refreshes itself when asked for credentials.
type CredentialSource interface {
	Credentials(ctx context.Context) (model.CredentialSet, error)
}

// SessionKeeper periodically touches a set of sessions so their tokens are rotated in
// the background instead of on the first request after a quiet period.
type SessionKeeper struct {
	logger   *zap.Logger
	interval time.Duration

	mu       sync.RWMutex
	sessions map[string]CredentialSource

	stopOnce sync.Once
	stopCh   chan struct{}
}

func NewSessionKeeper(logger *zap.Logger, interval time.Duration) *SessionKeeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionKeeper{
		logger:   logger,
		interval: interval,
		sessions: make(map[string]CredentialSource),
		stopCh:   make(chan struct{}),
	}
}

// Track adds or replaces the session kept under key.
func (k *SessionKeeper) Track(key string, s CredentialSource) {
	k.mu.Lock()
	k.sessions[key] = s
	k.mu.Unlock()
}

func (k *SessionKeeper) Untrack(key string) {
	k.mu.Lock()
	delete(k.sessions, key)
	k.mu.Unlock()
}

// Start runs the keep-alive loop until Stop is called or ctx is done.
func (k *SessionKeeper) Start(ctx context.Context) {
	ticker := time.NewTicker(k.interval)
	defer ticker.Stop()

	k.logger.Info("session_keeper.started", zap.Duration("interval", k.interval))

	for {
		select {
		case <-ticker.C:
			k.RunOnce(ctx)
		case <-k.stopCh:
			k.logger.Info("session_keeper.stopped (manual stop)")
			return
		case <-ctx.Done():
			k.logger.Info("session_keeper.stopped (context canceled)")
			return
		}
	}
}

// Stop halts the loop. It is safe to call more than once.
func (k *SessionKeeper) Stop() {
	k.stopOnce.Do(func() { close(k.stopCh) })
}

// RunOnce asks every tracked session for credentials and returns how many failed.
func (k *SessionKeeper) RunOnce(ctx context.Context) int {
	k.mu.RLock()
	snapshot := make(map[string]CredentialSource, len(k.sessions))
	for key, s := range k.sessions {
		snapshot[key] = s
	}
	k.mu.RUnlock()

	failed := 0
	for key, s := range snapshot {
		creds, err := s.Credentials(ctx)
		metrics.IncTokenOperation("keepalive", err)
		if err != nil {
			failed++
			k.logger.Error("session_keeper.refresh_failed",
				zap.String("key", key),
				zap.Error(err))
			continue
		}
		k.logger.Debug("session_keeper.session_ok",
			zap.String("key", key),
			zap.Time("expires_at", creds.ExpiresAt))
	}
	return failed
}
