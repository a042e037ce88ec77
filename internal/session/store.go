package session

import "sync"

// Store holds all live sessions. Lookups take a read lock on the map;
// each session carries its own mutex so concurrent requests for different
// session ids never contend, while requests for the same id serialize.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry
}

type entry struct {
	mu sync.Mutex
	s  *Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*entry)}
}

// Acquire returns the session for id, creating it if unseen, with its lock
// held. The caller must invoke release when done with the session; the
// session pointer must not be retained past that.
func (st *Store) Acquire(id string) (*Session, func()) {
	st.mu.RLock()
	e, ok := st.sessions[id]
	st.mu.RUnlock()

	if !ok {
		st.mu.Lock()
		if e, ok = st.sessions[id]; !ok {
			e = &entry{s: newSession(id)}
			st.sessions[id] = e
		}
		st.mu.Unlock()
	}

	e.mu.Lock()
	return e.s, e.mu.Unlock
}

// Len returns the number of tracked sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
