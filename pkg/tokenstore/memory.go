package tokenstore

import (
	"context"
	"sync"

	"github.com/zoomkit/zoomapi/pkg/model"
)

// MemoryStore keeps credential sets in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]model.CredentialSet
}

func NewMemory() *MemoryStore {
	return &MemoryStore{data: make(map[string]model.CredentialSet)}
}

func (s *MemoryStore) Load(_ context.Context, key string) (model.CredentialSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	creds, ok := s.data[key]
	if !ok {
		return model.CredentialSet{}, ErrNotFound
	}
	return creds, nil
}

func (s *MemoryStore) Save(_ context.Context, key string, creds model.CredentialSet) error {
	s.mu.Lock()
	s.data[key] = creds
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	return nil
}
