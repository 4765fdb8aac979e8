package server

import (
	"context"
	"sync"

	"github.com/google/uuid"

	qerrors "github.com/qforge/qtopo/pkg/errors"
	"github.com/qforge/qtopo/pkg/snapshot"
)

// Store persists topologies and users. The memory implementation backs
// tests and single-instance deployments; the Mongo implementation backs
// shared ones.
type Store interface {
	// PutTopology upserts a snapshot. A snapshot without a pk gets one
	// assigned, along with a world id. Returns the stored snapshot.
	PutTopology(ctx context.Context, snap *snapshot.Snapshot) (*snapshot.Snapshot, error)

	// GetTopology retrieves a snapshot by pk. Returns a NOT_FOUND error
	// when absent.
	GetTopology(ctx context.Context, pk string) (*snapshot.Snapshot, error)

	// ListTopologies lists summaries of every stored snapshot.
	ListTopologies(ctx context.Context) ([]snapshot.Summary, error)

	// PutUser upserts a user identity.
	PutUser(ctx context.Context, id string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	mu     sync.RWMutex
	snaps  map[string]*snapshot.Snapshot
	order  []string // pks in insertion order, for stable listings
	users  map[string]bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		snaps: make(map[string]*snapshot.Snapshot),
		users: make(map[string]bool),
	}
}

func (s *MemoryStore) PutTopology(ctx context.Context, snap *snapshot.Snapshot) (*snapshot.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *snap
	if stored.PK == "" {
		stored.PK = uuid.NewString()
	}
	if stored.WorldID == "" {
		stored.WorldID = uuid.NewString()
	}
	if _, ok := s.snaps[stored.PK]; !ok {
		s.order = append(s.order, stored.PK)
	}
	s.snaps[stored.PK] = &stored
	return &stored, nil
}

func (s *MemoryStore) GetTopology(ctx context.Context, pk string) (*snapshot.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snaps[pk]
	if !ok {
		return nil, qerrors.New(qerrors.ErrCodeNotFound, "topology %s not found", pk)
	}
	out := *snap
	return &out, nil
}

func (s *MemoryStore) ListTopologies(ctx context.Context) ([]snapshot.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]snapshot.Summary, 0, len(s.order))
	for _, pk := range s.order {
		snap := s.snaps[pk]
		out = append(out, snapshot.Summary{PK: snap.PK, Name: snap.Name, WorldID: snap.WorldID})
	}
	return out, nil
}

func (s *MemoryStore) PutUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id] = true
	return nil
}

// HasUser reports whether a user was registered. Used by tests.
func (s *MemoryStore) HasUser(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users[id]
}

func (s *MemoryStore) Close(ctx context.Context) error { return nil }

var _ Store = (*MemoryStore)(nil)
