// Package memory provides in-memory implementations of the Meridian
// stores. Safe for concurrent use; the default for the interactive
// console and for tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/meridian-tools/meridian/pkg/domain"
)

// VariableStore implements ports.VariableStore in memory.
type VariableStore struct {
	mu   sync.RWMutex
	data map[string]domain.Variable
}

// NewVariableStore creates an empty in-memory variable store.
func NewVariableStore() *VariableStore {
	return &VariableStore{
		data: make(map[string]domain.Variable),
	}
}

// Save stores a deep copy so later mutation of the caller's value
// cannot leak into the pool.
func (s *VariableStore) Save(ctx context.Context, v domain.Variable) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[v.ID] = v.Clone()
	return nil
}

// Load returns a deep copy of the stored variable.
func (s *VariableStore) Load(ctx context.Context, id string) (domain.Variable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[id]
	if !ok {
		return domain.Variable{}, domain.ErrVariableNotFound
	}
	return v.Clone(), nil
}

// Delete removes a variable.
func (s *VariableStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns the stored IDs, sorted for stable presentation.
func (s *VariableStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// TranscriptStore implements ports.TranscriptStore in memory.
type TranscriptStore struct {
	mu   sync.RWMutex
	data map[string][]domain.Entry
}

// NewTranscriptStore creates an empty in-memory transcript store.
func NewTranscriptStore() *TranscriptStore {
	return &TranscriptStore{
		data: make(map[string][]domain.Entry),
	}
}

// Append adds entries to the end of a session transcript.
func (s *TranscriptStore) Append(ctx context.Context, sessionID string, entries []domain.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = append(s.data[sessionID], entries...)
	return nil
}

// Load returns a copy of the transcript.
func (s *TranscriptStore) Load(ctx context.Context, sessionID string) ([]domain.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, ok := s.data[sessionID]
	if !ok {
		return nil, domain.ErrTranscriptNotFound
	}
	return append([]domain.Entry(nil), entries...), nil
}

// List returns the known session IDs, sorted.
func (s *TranscriptStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
