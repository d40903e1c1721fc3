package store

import (
	"context"
	"sync"

	"github.com/sm-coding-projects/loan-calculator-sub000/pkg/schedule"
)

// Memory is an in-process Store used by tests and single-process
// deployments. Documents are held in serialized form so loads return
// structural copies, matching the behavior of the Redis store.
type Memory struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string][]byte)}
}

// Save implements Store.
func (m *Memory) Save(_ context.Context, loanID string, s *schedule.Schedule) error {
	data, err := Encode(loanID, s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.docs[loanID] = data
	m.mu.Unlock()
	return nil
}

// Load implements Store.
func (m *Memory) Load(_ context.Context, loanID string) (*schedule.Schedule, error) {
	m.mu.RLock()
	data, ok := m.docs[loanID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	_, s, err := Decode(data)
	return s, err
}

// Delete implements Store.
func (m *Memory) Delete(_ context.Context, loanID string) error {
	m.mu.Lock()
	delete(m.docs, loanID)
	m.mu.Unlock()
	return nil
}

// Put stores raw bytes under a loan id, bypassing encoding. Used by tests
// to exercise malformed-document fallback.
func (m *Memory) Put(loanID string, data []byte) {
	m.mu.Lock()
	m.docs[loanID] = data
	m.mu.Unlock()
}
