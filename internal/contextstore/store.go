// Package contextstore provides the shared, run-scoped key/value store that
// processing units use to communicate with each other. Every value written
// under a key is recorded in an ordered history; ordinary readers always see
// the most recent value, while the full history stays available for
// debugging and auditing.
//
// The store has no concurrency control: one orchestration run executes on a
// single goroutine and the store is created fresh per run.
package contextstore

// Store maps string keys to an ordered history of values produced during one
// orchestration run. The zero value is not usable; call New.
type Store struct {
	entries map[string][]any
}

// New returns an empty Store ready for use.
func New() *Store {
	return &Store{entries: make(map[string][]any)}
}

// Set replaces the entire history for key with a single new value. Any
// previously recorded values for the key are discarded.
func (s *Store) Set(key string, value any) {
	s.entries[key] = []any{value}
}

// Add appends value to key's history, creating the key if absent. Prior
// values are preserved.
func (s *Store) Add(key string, value any) {
	s.entries[key] = append(s.entries[key], value)
}

// Get returns the most recently stored value for key, or def if the key is
// absent or its history is empty.
func (s *Store) Get(key string, def any) any {
	history, ok := s.entries[key]
	if !ok || len(history) == 0 {
		return def
	}
	return history[len(history)-1]
}

// History returns the full ordered sequence of values recorded for key. The
// returned slice is a copy; mutating it does not affect the store. An absent
// key yields an empty slice.
func (s *Store) History(key string) []any {
	history := s.entries[key]
	out := make([]any, len(history))
	copy(out, history)
	return out
}

// Update applies Set semantics for every pair in data: the history of each
// touched key is replaced, not appended to. Callers rely on this bulk
// "refresh" behavior.
func (s *Store) Update(data map[string]any) {
	for key, value := range data {
		s.Set(key, value)
	}
}

// Keys returns all keys present in the store, in no particular order.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.entries))
	for key := range s.entries {
		keys = append(keys, key)
	}
	return keys
}

// Contains reports whether key exists in the store, regardless of history
// length.
func (s *Store) Contains(key string) bool {
	_, ok := s.entries[key]
	return ok
}

// Len returns the number of keys in the store.
func (s *Store) Len() int {
	return len(s.entries)
}

// Items returns a map from each key to its current (latest) value only. Keys
// with an empty history map to nil.
func (s *Store) Items() map[string]any {
	items := make(map[string]any, len(s.entries))
	for key, history := range s.entries {
		if len(history) == 0 {
			items[key] = nil
			continue
		}
		items[key] = history[len(history)-1]
	}
	return items
}

// Clear empties the store entirely.
func (s *Store) Clear() {
	s.entries = make(map[string][]any)
}
