package tls12

import "sync"

// Session represents a cached handshake outcome that can be used to run the
// abbreviated handshake later.
type Session struct {
	// ID is the 0..32 byte session identifier issued by the server.
	ID []byte
	// Secret is the master secret negotiated for the session.
	Secret []byte
	// CipherSuiteID records the suite the session was negotiated with.
	CipherSuiteID CipherSuiteID
}

// SessionStore is the interface to the session cache. Servers key entries by
// session id, clients by the name of the server they dialed. A miss is a
// zero-valued Session with a nil error.
type SessionStore interface {
	Set(key []byte, s Session) error
	Get(key []byte) (Session, error)
	Del(key []byte) error
}

// MemorySessionStore is a SessionStore that keeps sessions in process memory.
// Safe for concurrent use.
type MemorySessionStore struct {
	sync.RWMutex
	sessions map[string]Session
}

// NewMemorySessionStore creates an empty MemorySessionStore.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: map[string]Session{}}
}

// Set stores a session under key.
func (s *MemorySessionStore) Set(key []byte, session Session) error {
	s.Lock()
	defer s.Unlock()
	s.sessions[string(key)] = session

	return nil
}

// Get returns the session stored under key, or a zero Session.
func (s *MemorySessionStore) Get(key []byte) (Session, error) {
	s.RLock()
	defer s.RUnlock()

	return s.sessions[string(key)], nil
}

// Del removes the session stored under key.
func (s *MemorySessionStore) Del(key []byte) error {
	s.Lock()
	defer s.Unlock()
	delete(s.sessions, string(key))

	return nil
}
