package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"keypad-calculator/internal/keypad"
)

var (
	// ErrNotFound is returned for unknown or expired session ids.
	ErrNotFound = errors.New("session not found")
	// ErrCapacity is returned by Create when the store is full.
	ErrCapacity = errors.New("session capacity reached")
)

// Options configures a Store. Zero values disable the respective limit.
type Options struct {
	TTL         time.Duration
	MaxSessions int
	// OnEvict, when non-nil, receives the number of sessions evicted for
	// idling past the TTL, whether by Sweep or by Create making room.
	OnEvict func(removed int)
}

// Store keeps one calculator per session in memory.
type Store struct {
	opts Options
	now  func() time.Time

	mu      sync.RWMutex
	entries map[string]*entry
}

type entry struct {
	mu       sync.Mutex
	machine  *keypad.Machine
	lastUsed time.Time
	deleted  bool
}

// New creates an empty store.
func New(opts Options) *Store {
	return &Store{
		opts:    opts,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

// Create starts a new cleared calculator and returns its id. When the store
// is full, expired sessions are evicted before capacity is enforced.
func (s *Store) Create() (string, keypad.Snapshot, error) {
	id, snap, removed, err := s.create()
	s.evicted(removed)
	return id, snap, err
}

func (s *Store) create() (string, keypad.Snapshot, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	if s.full() {
		removed = s.evictExpiredLocked(now)
		if s.full() {
			return "", keypad.Snapshot{}, removed, ErrCapacity
		}
	}

	id := uuid.New().String()
	e := &entry{machine: keypad.New(), lastUsed: now}
	s.entries[id] = e

	return id, e.machine.Snapshot(), removed, nil
}

// Do runs fn against the session's calculator. Calls for the same session are
// serialized, so every key event runs to completion before the next starts.
func (s *Store) Do(id string, fn func(m *keypad.Machine) error) error {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.deleted || s.expired(e, s.now()) {
		return ErrNotFound
	}
	e.lastUsed = s.now()

	return fn(e.machine)
}

// Delete removes a session.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	e, ok := s.entries[id]
	delete(s.entries, id)
	s.mu.Unlock()

	if !ok {
		return ErrNotFound
	}

	e.mu.Lock()
	e.deleted = true
	e.mu.Unlock()
	return nil
}

// Len returns the number of stored sessions, including expired ones that
// have not been swept yet.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Active returns the number of stored sessions that have not expired.
func (s *Store) Active() int {
	now := s.now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, e := range s.entries {
		e.mu.Lock()
		if !s.expired(e, now) {
			n++
		}
		e.mu.Unlock()
	}
	return n
}

// Sweep evicts sessions idle for longer than the TTL and returns how many
// were removed.
func (s *Store) Sweep(now time.Time) int {
	if s.opts.TTL <= 0 {
		return 0
	}

	s.mu.Lock()
	removed := s.evictExpiredLocked(now)
	s.mu.Unlock()

	s.evicted(removed)
	return removed
}

// Run sweeps every interval until ctx is cancelled.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			s.Sweep(t)
		}
	}
}

// RegisterMetrics exposes the number of live sessions on reg.
func (s *Store) RegisterMetrics(reg prometheus.Registerer) error {
	return reg.Register(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: "keypad",
			Name:      "sessions_active",
			Help:      "Number of unexpired calculator sessions held in memory.",
		},
		func() float64 { return float64(s.Active()) },
	))
}

func (s *Store) full() bool {
	return s.opts.MaxSessions > 0 && len(s.entries) >= s.opts.MaxSessions
}

// evictExpiredLocked removes expired entries. s.mu must be held for writing.
func (s *Store) evictExpiredLocked(now time.Time) int {
	removed := 0
	for id, e := range s.entries {
		e.mu.Lock()
		if s.expired(e, now) {
			e.deleted = true
			delete(s.entries, id)
			removed++
		}
		e.mu.Unlock()
	}
	return removed
}

func (s *Store) evicted(removed int) {
	if removed > 0 && s.opts.OnEvict != nil {
		s.opts.OnEvict(removed)
	}
}

func (s *Store) expired(e *entry, now time.Time) bool {
	return s.opts.TTL > 0 && now.Sub(e.lastUsed) > s.opts.TTL
}
