// Package memory provides the bounded shared-context store. Every completed
// task appends its result under its category; later tasks read the whole
// store as input context. History is capped per category so the context
// handed to prompts stays a manageable size.
package memory

import (
	"encoding/json"
	"sync"
	"time"
)

// MaxEntriesPerKey caps the history kept per category key.
// The oldest entries are evicted first.
const MaxEntriesPerKey = 10

// Entry is one recorded result with the time it was folded in.
type Entry struct {
	// Timestamp is when the result was appended.
	Timestamp time.Time `json:"timestamp"`
	// Result is the post-processed task result.
	Result map[string]any `json:"result"`
}

// Store is an append-only, size-capped mapping from category key to result
// history. Safe for concurrent use; no method holds the lock across any
// blocking operation.
type Store struct {
	mu      sync.RWMutex
	entries map[string][]Entry
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		entries: make(map[string][]Entry),
	}
}

// Append records a result under key, evicting from the front once the
// history exceeds MaxEntriesPerKey.
func (s *Store) Append(key string, result map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := append(s.entries[key], Entry{
		Timestamp: time.Now().UTC(),
		Result:    result,
	})
	if len(list) > MaxEntriesPerKey {
		list = list[len(list)-MaxEntriesPerKey:]
	}
	s.entries[key] = list
}

// Snapshot returns a point-in-time copy of the full mapping. The copy
// reflects all appends completed before the call returns; mutating it does
// not affect the store.
func (s *Store) Snapshot() map[string][]Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]Entry, len(s.entries))
	for key, list := range s.entries {
		copied := make([]Entry, len(list))
		copy(copied, list)
		out[key] = copied
	}
	return out
}

// SnapshotInput returns the snapshot shaped as a task input payload
// (map[string]any keyed by category key).
func (s *Store) SnapshotInput() map[string]any {
	snap := s.Snapshot()
	out := make(map[string]any, len(snap))
	for key, list := range snap {
		out[key] = list
	}
	return out
}

// Clear resets the store to empty. Snapshots already handed out are
// unaffected; only future reads observe the empty state.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string][]Entry)
}

// Size returns the serialized byte length of the store, for stats.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, err := json.Marshal(s.entries)
	if err != nil {
		return 0
	}
	return len(raw)
}

// Keys returns the number of category keys currently present.
func (s *Store) Keys() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
