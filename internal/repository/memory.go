package repository

import (
	"context"
	"sync"
	"time"

	"bakeshop/internal/visit"
)

type memoryEntry struct {
	data      []byte
	updatedAt time.Time
}

// MemoryStore keeps visits in process memory. Entries are stored encoded so
// callers never share memory with the store.
type MemoryStore struct {
	mu     sync.RWMutex
	ttl    time.Duration
	now    func() time.Time
	visits map[string]memoryEntry
}

// NewMemoryStore returns a store whose visits expire ttl after their last
// update. A zero ttl keeps visits forever.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:    ttl,
		now:    time.Now,
		visits: make(map[string]memoryEntry),
	}
}

var _ VisitStore = (*MemoryStore)(nil)

func (m *MemoryStore) expired(e memoryEntry) bool {
	return m.ttl > 0 && m.now().Sub(e.updatedAt) > m.ttl
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*visit.Visit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.visits[id]
	if !ok || m.expired(e) {
		return nil, ErrNotFound
	}
	return decode(id, e.data)
}

func (m *MemoryStore) WithVisit(ctx context.Context, id string, fn func(v *visit.Visit) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := visit.New(id)
	if e, ok := m.visits[id]; ok && !m.expired(e) {
		loaded, err := decode(id, e.data)
		if err != nil {
			return err
		}
		v = loaded
	}
	if err := fn(v); err != nil {
		return err
	}
	now := m.now()
	v.UpdatedAt = now
	b, err := encode(v)
	if err != nil {
		return err
	}
	m.visits[id] = memoryEntry{data: b, updatedAt: now}
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.visits[id]; !ok {
		return ErrNotFound
	}
	delete(m.visits, id)
	return nil
}

// GC drops expired visits and reports how many went.
func (m *MemoryStore) GC() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, e := range m.visits {
		if m.expired(e) {
			delete(m.visits, id)
			n++
		}
	}
	return n
}

// RunGC calls GC every interval until ctx is done.
func (m *MemoryStore) RunGC(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.GC()
		}
	}
}
