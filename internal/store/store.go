// Package store persists an audit trail of model invocations.
//
// DESIGN: One record per invocation (model ID, resolved family, outcome,
// usage, latency). MemoryStore keeps a bounded in-process ring for
// single-instance deployments and tests; SQLiteStore persists across
// restarts.
package store

import (
	"sync"
	"time"
)

// DefaultMemoryCapacity bounds the in-memory ring.
const DefaultMemoryCapacity = 1024

// InvocationRecord captures one model invocation through the gateway.
type InvocationRecord struct {
	RequestID    string        `json:"request_id"`
	Model        string        `json:"model"`
	Family       string        `json:"family"`
	StatusCode   int           `json:"status_code"`
	InputTokens  int           `json:"input_tokens"`
	OutputTokens int           `json:"output_tokens"`
	Latency      time.Duration `json:"latency"`
	CreatedAt    time.Time     `json:"created_at"`
}

// Store defines the interface for invocation audit storage.
type Store interface {
	// RecordInvocation appends one record.
	RecordInvocation(rec *InvocationRecord) error

	// RecentInvocations returns up to limit records, newest first.
	RecentInvocations(limit int) ([]*InvocationRecord, error)

	// Close cleans up resources.
	Close() error
}

// MemoryStore is a bounded in-memory implementation of Store.
type MemoryStore struct {
	mu       sync.RWMutex
	records  []*InvocationRecord
	capacity int
}

// NewMemoryStore creates a memory store holding at most capacity records;
// capacity <= 0 uses DefaultMemoryCapacity.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemoryStore{capacity: capacity}
}

// RecordInvocation appends a record, evicting the oldest when full.
func (s *MemoryStore) RecordInvocation(rec *InvocationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	s.records = append(s.records, rec)
	if len(s.records) > s.capacity {
		s.records = s.records[len(s.records)-s.capacity:]
	}
	return nil
}

// RecentInvocations returns up to limit records, newest first.
func (s *MemoryStore) RecentInvocations(limit int) ([]*InvocationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.records) {
		limit = len(s.records)
	}

	out := make([]*InvocationRecord, 0, limit)
	for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close() error { return nil }

// Ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)
