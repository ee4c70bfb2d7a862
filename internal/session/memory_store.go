package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	appErrors "github.com/noah-isme/student-console/pkg/errors"
)

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// MemoryStore keeps snapshots in process. Snapshots are stored encoded so a
// loaded value never aliases the live controller state.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore constructs an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

// Load implements Store.
func (s *MemoryStore) Load(_ context.Context, id string) (*Snapshot, error) {
	s.mu.Lock()
	entry, ok := s.entries[id]
	if ok && !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt) {
		delete(s.entries, id)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return nil, appErrors.ErrSessionNotFound
	}
	var snap Snapshot
	if err := json.Unmarshal(entry.payload, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", id, err)
	}
	return &snap, nil
}

// Save implements Store. A non-positive ttl keeps the entry until deleted.
func (s *MemoryStore) Save(_ context.Context, id string, snapshot Snapshot, ttl time.Duration) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", id, err)
	}
	entry := memoryEntry{payload: payload}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}
	s.mu.Lock()
	s.entries[id] = entry
	s.mu.Unlock()
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}

// Purge drops every expired entry and returns how many went.
func (s *MemoryStore) Purge() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	purged := 0
	for id, entry := range s.entries {
		if !entry.expiresAt.IsZero() && !now.Before(entry.expiresAt) {
			delete(s.entries, id)
			purged++
		}
	}
	return purged
}

// Len returns the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
