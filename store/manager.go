package store

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"rag/config"
	"rag/types"
)

// Manager holds the active vector store behind an atomic pointer. Readers
// take the current store at the start of an operation; a switch swaps the
// pointer so concurrent readers see either the old or the new backend, never
// a half-configured one.
type Manager struct {
	mu     sync.Mutex // serialises switches
	active atomic.Pointer[activeStore]
}

type activeStore struct {
	s VectorStorer
}

// Open builds the backend named by cfg without probing it.
func Open(cfg *config.StorageConfig) (VectorStorer, error) {
	switch cfg.Provider {
	case config.StoragePostgres:
		return NewPostgresStore(cfg.PostgresDSN)
	case config.StorageSQLite:
		return NewSQLiteStore(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("%w: storage %q", types.ErrInvalidProvider, cfg.Provider)
	}
}

// NewManager opens the initial backend. Connectivity is probed separately so
// the process can start before its database does.
func NewManager(cfg *config.StorageConfig) (*Manager, error) {
	s, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	m := &Manager{}
	m.active.Store(&activeStore{s: s})
	return m, nil
}

// Current returns the active store.
func (m *Manager) Current() VectorStorer {
	return m.active.Load().s
}

// Test probes the active store.
func (m *Manager) Test(ctx context.Context) *types.TestResult {
	if err := m.Current().Ping(ctx); err != nil {
		return &types.TestResult{Success: false, Detail: err.Error()}
	}
	return &types.TestResult{Success: true, Detail: "connection successful"}
}

// Switch replaces the active store with the backend named by cfg. Unusable
// parameters (unknown provider, unparsable DSN) reject the switch. A backend
// that opens but fails its probe is still committed, with the failure
// reported in the result, so an operator can point at a database first and
// bring it up after. Schema init runs only when the probe succeeds.
//
// The previous store is left open: in-flight operations hold a reference to
// it and finish against the backend they started with.
func (m *Manager) Switch(ctx context.Context, cfg *config.StorageConfig) (*types.TestResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	result := &types.TestResult{Success: true, Detail: "connection successful"}
	if err := next.Ping(ctx); err != nil {
		result = &types.TestResult{Success: false, Detail: err.Error()}
	} else if err := next.Init(ctx); err != nil {
		result = &types.TestResult{Success: false, Detail: err.Error()}
	}

	m.active.Store(&activeStore{s: next})
	return result, nil
}
