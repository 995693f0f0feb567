package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is the tab scope: it lives exactly as long as the process
// that owns the terminal tab.
type MemoryStore struct {
	scope string

	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStore creates an empty store with a fresh scope identifier.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{scope: uuid.NewString(), values: make(map[string]string)}
}

// Scope identifies this tab in logs.
func (s *MemoryStore) Scope() string {
	return s.scope
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
	return nil
}
