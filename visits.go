package polycanyon

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Visit records the first detection of a structure within one reset cycle.
type Visit struct {
	Structure int       // Structure number
	Session   string    // Tracking session that produced the visit
	At        time.Time // Time of first detection
}

// VisitStore persists visited flags. A structure is visited at most once per
// reset cycle: MarkVisited reports whether the flag transitioned, and marking
// an already-visited structure is a no-op that must not rewrite storage.
type VisitStore interface {
	// MarkVisited records a visit. Returns true when the structure
	// transitioned from unvisited to visited, false when it was already
	// visited.
	MarkVisited(ctx context.Context, v Visit) (bool, error)

	// IsVisited reports whether the structure is currently visited.
	IsVisited(ctx context.Context, structure int) (bool, error)

	// Visits returns all recorded visits ordered by structure number.
	Visits(ctx context.Context) ([]Visit, error)

	// Reset clears all visited flags, starting a new reset cycle.
	Reset(ctx context.Context) error
}

// PrefStore persists user preferences as string key-value pairs.
type PrefStore interface {
	SetPref(ctx context.Context, key, value string) error
	GetPref(ctx context.Context, key string) (string, bool, error)
}

// MemStore is an in-memory VisitStore and PrefStore. Used by virtual mode,
// where visits should not outlive the process, and by tests.
type MemStore struct {
	mu     sync.RWMutex
	visits map[int]Visit
	prefs  map[string]string
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		visits: make(map[int]Visit),
		prefs:  make(map[string]string),
	}
}

func (m *MemStore) MarkVisited(_ context.Context, v Visit) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.visits[v.Structure]; ok {
		return false, nil
	}
	m.visits[v.Structure] = v
	return true, nil
}

func (m *MemStore) IsVisited(_ context.Context, structure int) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.visits[structure]
	return ok, nil
}

func (m *MemStore) Visits(_ context.Context) ([]Visit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Visit, 0, len(m.visits))
	for _, v := range m.visits {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Structure < out[j].Structure })
	return out, nil
}

func (m *MemStore) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.visits = make(map[int]Visit)
	return nil
}

func (m *MemStore) SetPref(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs[key] = value
	return nil
}

func (m *MemStore) GetPref(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.prefs[key]
	return v, ok, nil
}
