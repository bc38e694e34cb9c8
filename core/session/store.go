package session

import (
	"slices"
	"sync"
	"time"
)

// Entry is a stored session together with its last activity time.
type Entry struct {
	Session      Session
	LastActiveAt time.Time
}

// Expired reports whether the entry has been idle longer than its own
// expiration period.
func (e Entry) Expired(now time.Time) bool {
	return e.ExpiredAfter(now, e.Session.ExpirationPeriod)
}

// ExpiredAfter reports whether the entry has been idle longer than period.
// A zero period never expires.
func (e Entry) ExpiredAfter(now time.Time, period time.Duration) bool {
	if period <= 0 {
		return false
	}
	return now.Sub(e.LastActiveAt) > period
}

// Store is an in-memory token to session map guarded by a single mutex.
// Every method is one critical section; Update runs a compound
// check-and-act under the same lock.
type Store struct {
	mu      sync.Mutex
	entries map[string]*Entry
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{entries: make(map[string]*Entry)}
}

// Tx gives lock-free access to the store from inside Update.
// It must not be retained after the callback returns.
type Tx struct {
	s *Store
}

// Update runs fn while holding the store lock.
func (s *Store) Update(fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&Tx{s: s})
}

// Insert adds sess with LastActiveAt = now. It reports false if the token
// is already present.
func (s *Store) Insert(sess Session, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(sess, now)
}

// Get returns the entry for token.
func (s *Store) Get(token string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(token)
}

// Touch moves LastActiveAt of token to now. Absent tokens are ignored.
func (s *Store) Touch(token string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch(token, now)
}

// Remove deletes token and returns the removed entry. It is idempotent.
func (s *Store) Remove(token string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remove(token)
}

// Len returns the number of stored entries, expired ones included.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Snapshot returns a copy of all entries ordered by start time.
func (s *Store) Snapshot() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, *e)
	}
	slices.SortFunc(out, func(a, b Entry) int {
		return a.Session.StartedAt.Compare(b.Session.StartedAt)
	})
	return out
}

// Insert is Store.Insert without locking.
func (tx *Tx) Insert(sess Session, now time.Time) bool { return tx.s.insert(sess, now) }

// Get is Store.Get without locking.
func (tx *Tx) Get(token string) (Entry, bool) { return tx.s.get(token) }

// Touch is Store.Touch without locking.
func (tx *Tx) Touch(token string, now time.Time) { tx.s.touch(token, now) }

// Remove is Store.Remove without locking.
func (tx *Tx) Remove(token string) (Entry, bool) { return tx.s.remove(token) }

// Len is Store.Len without locking.
func (tx *Tx) Len() int { return len(tx.s.entries) }

// ByUser returns the entries of userID, least recently active first.
func (tx *Tx) ByUser(userID string) []Entry {
	var out []Entry
	for _, e := range tx.s.entries {
		if e.Session.UserID == userID {
			out = append(out, *e)
		}
	}
	slices.SortFunc(out, func(a, b Entry) int {
		return a.LastActiveAt.Compare(b.LastActiveAt)
	})
	return out
}

func (s *Store) insert(sess Session, now time.Time) bool {
	if _, ok := s.entries[sess.Token]; ok {
		return false
	}
	s.entries[sess.Token] = &Entry{Session: sess, LastActiveAt: now}
	return true
}

func (s *Store) get(token string) (Entry, bool) {
	e, ok := s.entries[token]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

func (s *Store) touch(token string, now time.Time) {
	e, ok := s.entries[token]
	if !ok {
		return
	}
	// LastActiveAt never moves backwards.
	if now.After(e.LastActiveAt) {
		e.LastActiveAt = now
	}
}

func (s *Store) remove(token string) (Entry, bool) {
	e, ok := s.entries[token]
	if !ok {
		return Entry{}, false
	}
	delete(s.entries, token)
	return *e, true
}
