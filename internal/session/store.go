package session

import (
	"sync"

	"go.uber.org/zap"
)

// Phase is the two-phase boot state machine: a cached session may be applied
// optimistically while the server answer is pending.
type Phase int

const (
	// PhaseHydrating means the store may hold a stale cached session.
	PhaseHydrating Phase = iota
	// PhaseReconciled means the store reflects the server's answer (or its
	// definitive absence).
	PhaseReconciled
)

func (p Phase) String() string {
	switch p {
	case PhaseHydrating:
		return "hydrating"
	case PhaseReconciled:
		return "reconciled"
	default:
		return "unknown"
	}
}

// Store holds the current authenticated user. It owns the durable Cache, so
// every session mutation persists or evicts through this one serialized
// entry point; nothing else writes the cache files.
//
// Writers are the auth service, the reconciler, and the profile service.
// Everything else reads via Current or watches via Subscribe.
type Store struct {
	mu     sync.RWMutex
	user   *User
	phase  Phase
	cache  *Cache
	logger *zap.Logger
	subs   []chan struct{}
}

// NewStore creates a store backed by cache.
func NewStore(cache *Cache, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{cache: cache, logger: logger}
}

// Cache exposes the durable cache for wiring into the api client.
func (s *Store) Cache() *Cache { return s.cache }

// Current returns a copy of the session user, or false when unauthenticated.
func (s *Store) Current() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// Phase returns the boot phase.
func (s *Store) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// Set replaces the session user and persists it to the cache. The in-memory
// state is updated even if persisting fails; the cache is an optimization,
// not the source of truth.
func (s *Store) Set(u *User) error {
	copied := *u
	s.mu.Lock()
	s.user = &copied
	s.notifyLocked()
	s.mu.Unlock()

	if err := s.cache.Save(u); err != nil {
		s.logger.Warn("failed to persist session cache", zap.Error(err))
		return err
	}
	return nil
}

// Clear drops the session user and evicts the cache entry.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.user = nil
	s.notifyLocked()
	s.mu.Unlock()

	if err := s.cache.Evict(); err != nil {
		s.logger.Warn("failed to evict session cache", zap.Error(err))
		return err
	}
	return nil
}

// Subscribe returns a channel that receives a signal after every session
// change. Signals are coalesced; receivers re-read Current.
func (s *Store) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

// hydrate applies a cached user without writing it back to the cache.
// Used during boot, before reconciliation.
func (s *Store) hydrate(u *User) {
	copied := *u
	s.mu.Lock()
	s.user = &copied
	s.notifyLocked()
	s.mu.Unlock()
}

// applyExternal applies a session observed in the cache file by the watcher,
// without re-persisting (the file already holds it).
func (s *Store) applyExternal(u *User) {
	s.hydrate(u)
}

// dropExternal clears the in-memory session after the cache file vanished,
// without re-evicting.
func (s *Store) dropExternal() {
	s.mu.Lock()
	changed := s.user != nil
	s.user = nil
	if changed {
		s.notifyLocked()
	}
	s.mu.Unlock()
}

// markReconciled transitions the boot phase to PhaseReconciled.
func (s *Store) markReconciled() {
	s.mu.Lock()
	s.phase = PhaseReconciled
	s.notifyLocked()
	s.mu.Unlock()
}

func (s *Store) notifyLocked() {
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
