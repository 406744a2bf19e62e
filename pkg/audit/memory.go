package audit

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStorage keeps records in process memory. It is intended for
// development and tests.
type MemoryStorage struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{records: make(map[string]*Record)}
}

// Store implements Storage.
func (m *MemoryStorage) Store(ctx context.Context, rec *Record) error {
	if rec == nil || rec.ID == "" {
		return NewStorageError("memory", "store", fmt.Errorf("record id is required"))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.ID] = rec
	return nil
}

// Get implements Storage.
func (m *MemoryStorage) Get(ctx context.Context, id string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return rec, nil
}

// Query implements Storage.
func (m *MemoryStorage) Query(ctx context.Context, q *Query) ([]*Record, error) {
	matched := m.matching(q)
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].EvaluatedAt.After(matched[j].EvaluatedAt)
	})
	if q != nil && q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

// Count implements Storage.
func (m *MemoryStorage) Count(ctx context.Context, q *Query) (int64, error) {
	return int64(len(m.matching(q))), nil
}

// DeleteBefore implements Storage.
func (m *MemoryStorage) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for id, rec := range m.records {
		if rec.EvaluatedAt.Before(cutoff) {
			delete(m.records, id)
			deleted++
		}
	}
	return deleted, nil
}

// DeleteOldest implements Storage.
func (m *MemoryStorage) DeleteOldest(ctx context.Context, keep int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	excess := int64(len(m.records)) - keep
	if excess <= 0 {
		return 0, nil
	}

	all := make([]*Record, 0, len(m.records))
	for _, rec := range m.records {
		all = append(all, rec)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].EvaluatedAt.Before(all[j].EvaluatedAt)
	})
	for _, rec := range all[:excess] {
		delete(m.records, rec.ID)
	}
	return excess, nil
}

// Close implements Storage.
func (m *MemoryStorage) Close() error {
	return nil
}

func (m *MemoryStorage) matching(q *Query) []*Record {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Record
	for _, rec := range m.records {
		if q.Matches(rec) {
			out = append(out, rec)
		}
	}
	return out
}
