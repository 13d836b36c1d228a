// Package session holds per-conversation pipeline state in memory. A
// session lives for the duration of one chat conversation; nothing here
// survives a process restart.
package session

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joelkehle/trial-navigator/internal/navigator"
)

var ErrNotFound = errors.New("session not found")

// Session pairs one conversation's pipeline state with its identity. The
// embedded mutex serializes pipeline runs for the session: State is
// single-owner, so concurrent chat turns on the same session must queue.
type Session struct {
	ID        string           `json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	State     *navigator.State `json:"state"`

	mu sync.Mutex
}

// Lock takes the session's run lock. Callers hold it across a full
// pipeline run and release it with Unlock.
func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// Store is a uuid-keyed in-memory session registry, safe for concurrent
// use. The store mutex only guards the map; per-session work is guarded
// by each session's own lock.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewStore builds a store. Sessions idle longer than ttl are dropped
// lazily on the next store access; ttl <= 0 disables expiry.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: map[string]*Session{},
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create registers a fresh session with an empty pipeline state.
func (st *Store) Create() *Session {
	now := st.now()
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		State:     &navigator.State{},
	}
	st.mu.Lock()
	st.evictExpiredLocked(now)
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

// Get returns the session for id, refreshing its idle clock.
func (st *Store) Get(id string) (*Session, error) {
	now := st.now()
	st.mu.Lock()
	defer st.mu.Unlock()
	st.evictExpiredLocked(now)
	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	s.UpdatedAt = now
	return s, nil
}

// Delete removes the session for id. Deleting an unknown id is a no-op.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// List returns session ids ordered by creation time, oldest first.
func (st *Store) List() []string {
	st.mu.Lock()
	st.evictExpiredLocked(st.now())
	type entry struct {
		id      string
		created time.Time
	}
	entries := make([]entry, 0, len(st.sessions))
	for id, s := range st.sessions {
		entries = append(entries, entry{id: id, created: s.CreatedAt})
	}
	st.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].created.Equal(entries[j].created) {
			return entries[i].id < entries[j].id
		}
		return entries[i].created.Before(entries[j].created)
	})
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.id
	}
	return ids
}

// Len reports the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

func (st *Store) evictExpiredLocked(now time.Time) {
	if st.ttl <= 0 {
		return
	}
	for id, s := range st.sessions {
		if now.Sub(s.UpdatedAt) > st.ttl {
			delete(st.sessions, id)
		}
	}
}
