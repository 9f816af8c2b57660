package formstore

import (
	"context"
	"sync"

	"github.com/etouchhq/insure-chat/internal/domain"
)

// Persister is the generic persistence contract the store saves through.
// Implementations keep exactly one namespaced record; Load returns nil
// when nothing has been saved yet.
type Persister interface {
	Load(ctx context.Context) (*domain.FormSessionState, error)
	Save(ctx context.Context, state *domain.FormSessionState) error
	Clear(ctx context.Context) error
	Close() error
}

// MemoryPersister is an in-process Persister used in tests and when
// persistence is disabled.
type MemoryPersister struct {
	mu    sync.Mutex
	state *domain.FormSessionState
}

// NewMemoryPersister creates an empty in-memory persister.
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{}
}

// Load returns the stored state, or nil when nothing has been saved.
func (m *MemoryPersister) Load(_ context.Context) (*domain.FormSessionState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return nil, nil
	}
	out := *m.state
	return &out, nil
}

// Save stores a copy of the state.
func (m *MemoryPersister) Save(_ context.Context, state *domain.FormSessionState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	saved := *state
	m.state = &saved
	return nil
}

// Clear drops the stored state.
func (m *MemoryPersister) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = nil
	return nil
}

// Close is a no-op.
func (m *MemoryPersister) Close() error { return nil }
