// Package session holds the credentials for the single authenticated session a
// client runtime maintains against the Arena backend. It provides the Store
// abstraction the request pipeline and the live channel read from, plus two
// implementations: a file-backed store that survives process restarts and an
// in-memory store for embedders and tests.
//
// Write discipline: only the refresh stage of the request pipeline and the
// login/logout flows may call Set or Clear. Everything else is a reader.
package session

import (
	"sync"
)

// Session is a pair of credentials. Both fields are present together or absent
// together: an access token without the refresh token that produced it is never
// stored.
type Session struct {
	AccessToken  string `yaml:"access_token" json:"access_token"`
	RefreshToken string `yaml:"refresh_token" json:"refresh_token"`
}

// Valid reports whether the session carries a usable credential pair.
func (s Session) Valid() bool {
	return s.AccessToken != "" && s.RefreshToken != ""
}

// Store provides access to the current session.
type Store interface {
	// Get returns the current session. A zero Session means logged out.
	Get() (Session, error)

	// Set replaces the current session with the given credential pair.
	Set(s Session) error

	// Clear removes the session. Clearing an already-empty store is a no-op.
	Clear() error
}

// MemStore is an in-process Store. Safe for concurrent use.
type MemStore struct {
	mu   sync.RWMutex
	sess Session
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

// Get returns the current session.
func (m *MemStore) Get() (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sess, nil
}

// Set replaces the current session.
func (m *MemStore) Set(s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = s
	return nil
}

// Clear removes the session.
func (m *MemStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = Session{}
	return nil
}

var _ Store = &MemStore{}
var _ Store = &FileStore{}
