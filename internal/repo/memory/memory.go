package memory

import (
	"context"
	"sync"

	"github.com/hamed0406/sitecheck/internal/checker"
)

const DefaultMaxEntries = 1000

type Store struct {
	mu    sync.RWMutex
	max   int
	byID  map[string]*checker.Handle
	order []string
}

// New returns a store holding at most max handles (DefaultMaxEntries when
// max <= 0). Past the limit the oldest finished handles are dropped; pending
// ones are never evicted.
func New(max int) *Store {
	if max <= 0 {
		max = DefaultMaxEntries
	}
	return &Store{
		max:   max,
		byID:  make(map[string]*checker.Handle),
		order: make([]string, 0, 128),
	}
}

func (m *Store) Put(ctx context.Context, h *checker.Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[h.ID()]; !ok {
		m.order = append(m.order, h.ID())
	}
	m.byID[h.ID()] = h
	m.evictLocked()
	return nil
}

func (m *Store) Get(ctx context.Context, id string) (*checker.Handle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byID[id], nil
}

func (m *Store) List(ctx context.Context) ([]*checker.Handle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*checker.Handle, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.byID[id])
	}
	return out, nil
}

func (m *Store) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return nil
	}
	delete(m.byID, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Store) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}

func (m *Store) evictLocked() {
	excess := len(m.order) - m.max
	if excess <= 0 {
		return
	}
	kept := m.order[:0]
	for _, id := range m.order {
		if excess > 0 && isDone(m.byID[id]) {
			delete(m.byID, id)
			excess--
			continue
		}
		kept = append(kept, id)
	}
	m.order = kept
}

func isDone(h *checker.Handle) bool {
	select {
	case <-h.Done():
		return true
	default:
		return false
	}
}
