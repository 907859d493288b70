package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/devplan/devplan/internal/domain"
	devplanerrors "github.com/devplan/devplan/internal/errors"
)

// MemoryContextStore implements ContextStore in process memory. Used when
// no redis backend is configured and in tests. Values are deep-copied via
// JSON so callers can't mutate cached state.
type MemoryContextStore struct {
	mu       sync.RWMutex
	contexts map[string][]byte
	hits     map[string]int64
}

// Ensure MemoryContextStore implements ContextStore.
var _ ContextStore = (*MemoryContextStore)(nil)

// NewMemoryContextStore creates an empty in-memory context store.
func NewMemoryContextStore() *MemoryContextStore {
	return &MemoryContextStore{
		contexts: make(map[string][]byte),
		hits:     make(map[string]int64),
	}
}

// Get returns the cached context for key.
func (s *MemoryContextStore) Get(ctx context.Context, key string) (*domain.RepositoryContext, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	data, ok := s.contexts[key]
	hits := s.hits[key]
	s.mu.RUnlock()

	if !ok {
		return nil, devplanerrors.Wrapf(devplanerrors.ErrContextNotFound, "key %s", key)
	}

	var rc domain.RepositoryContext
	if err := json.Unmarshal(data, &rc); err != nil {
		return nil, devplanerrors.Wrapf(err, "decoding cached context for %s", key)
	}
	rc.AccessCount = hits
	return &rc, nil
}

// Put writes a context unconditionally.
func (s *MemoryContextStore) Put(ctx context.Context, rc *domain.RepositoryContext) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rc == nil {
		return devplanerrors.Wrap(devplanerrors.ErrEmptyValue, "repository context")
	}

	data, err := json.Marshal(rc)
	if err != nil {
		return devplanerrors.Wrapf(err, "encoding context for %s", rc.Key())
	}

	s.mu.Lock()
	s.contexts[rc.Key()] = data
	s.mu.Unlock()
	return nil
}

// Touch increments the access counter for key.
func (s *MemoryContextStore) Touch(ctx context.Context, key string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	s.hits[key]++
	n := s.hits[key]
	s.mu.Unlock()
	return n, nil
}
