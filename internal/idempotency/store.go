// Package idempotency remembers the responses of requests sent with an
// Idempotency-Key so that retries are answered without running them again.
package idempotency

import (
	"context"
	"sync"
	"time"
)

// Record is what is kept per key. A pending record marks a request that is
// still being processed.
type Record struct {
	Fingerprint string `json:"fingerprint"`
	Pending     bool   `json:"pending"`
	StatusCode  int    `json:"status_code,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

type Store interface {
	// Begin claims key for a request with the given fingerprint. When the key
	// is already known it returns the existing record and false.
	Begin(ctx context.Context, key, fingerprint string) (Record, bool, error)
	// Complete stores the final response for a claimed key.
	Complete(ctx context.Context, key string, rec Record) error
	// Abort releases a claimed key so the request can be retried.
	Abort(ctx context.Context, key string) error
}

type entry struct {
	record    Record
	expiresAt time.Time
}

// MemoryStore keeps records in process memory. It is used when no redis is
// configured, and in tests.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]entry
	ttl   time.Duration
	now   func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		items: make(map[string]entry),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (s *MemoryStore) Begin(_ context.Context, key, fingerprint string) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.items[key]; ok && s.now().Before(e.expiresAt) {
		return e.record, false, nil
	}

	rec := Record{Fingerprint: fingerprint, Pending: true}
	s.items[key] = entry{record: rec, expiresAt: s.now().Add(s.ttl)}

	return rec, true, nil
}

func (s *MemoryStore) Complete(_ context.Context, key string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.Pending = false
	s.items[key] = entry{record: rec, expiresAt: s.now().Add(s.ttl)}

	return nil
}

func (s *MemoryStore) Abort(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, key)

	return nil
}
