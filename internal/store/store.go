// Package store provides persistence for devplan: a keyed cache of
// repository contexts and a file-backed session store with append-only
// history. No transactional cross-key guarantees exist or are needed;
// context values are derived and reproducible, so last writer wins.
package store

import (
	"context"

	"github.com/devplan/devplan/internal/domain"
)

// ContextStore is the keyed cache for repository contexts. Keys are
// "owner/name" strings.
type ContextStore interface {
	// Get returns the cached context for key.
	// Returns ErrContextNotFound on a miss.
	Get(ctx context.Context, key string) (*domain.RepositoryContext, error)

	// Put writes a context unconditionally (overwrite, never merge).
	Put(ctx context.Context, rc *domain.RepositoryContext) error

	// Touch increments the access counter for key and returns the new
	// value. Called on every cache hit.
	Touch(ctx context.Context, key string) (int64, error)
}

// SessionStore persists classification sessions and their append-only
// history.
type SessionStore interface {
	// Create persists a new session. Returns ErrSessionExists when the
	// id is already taken.
	Create(ctx context.Context, sess *domain.Session) error

	// Get retrieves a session by id. Returns ErrSessionNotFound when no
	// session exists.
	Get(ctx context.Context, id string) (*domain.Session, error)

	// Update saves the current session state (atomic write).
	Update(ctx context.Context, sess *domain.Session) error

	// AppendHistory appends one entry to the session's history log.
	AppendHistory(ctx context.Context, id string, entry *domain.HistoryEntry) error

	// History returns all history entries for a session, oldest first.
	History(ctx context.Context, id string) ([]*domain.HistoryEntry, error)
}
