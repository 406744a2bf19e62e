package documents

import (
	"context"
	"sync"

	"mercator-hq/underwriter/pkg/document"
)

// MemoryStore keeps documents in process memory. It is intended for tests
// and single-instance development.
type MemoryStore struct {
	mu    sync.RWMutex
	loans map[string]map[document.Source]document.Value
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{loans: make(map[string]map[document.Source]document.Value)}
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, loanID string, source document.Source, doc document.Value) error {
	if err := validateKey(loanID, source); err != nil {
		return newStorageError("memory", "put", loanID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	docs, ok := s.loans[loanID]
	if !ok {
		docs = make(map[document.Source]document.Value)
		s.loans[loanID] = docs
	}
	docs[source] = doc
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, loanID string, source document.Source) (document.Value, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.loans[loanID][source]
	if !ok {
		return document.Null, ErrNotFound
	}
	return doc, nil
}

// Load implements Store.
func (s *MemoryStore) Load(_ context.Context, loanID string) (document.Context, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs, ok := s.loans[loanID]
	if !ok || len(docs) == 0 {
		return document.Context{}, ErrNotFound
	}
	return document.NewContext(docs), nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, loanID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.loans, loanID)
	return nil
}

// Ping implements Store.
func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	return nil
}
