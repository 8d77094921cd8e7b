// internal/store/memory.go
//
// In-memory session store for game state.
// Each client session owns one *game.State keyed by session ID.
//
// Characteristics:
//   - Concurrency-safe via RWMutex.
//   - Update runs the callback under the write lock, so a session's state is
//     only ever touched by one request at a time.
//   - Every Get/Update marks the session as touched; Sweep drops sessions
//     idle for longer than a TTL (see RunSweeper).
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordscramble/apps/go-server/internal/game"
)

// ErrNotFound is returned when no session exists for an ID.
var ErrNotFound = errors.New("store: session not found")

// Store defines the persistence interface for game sessions.
type Store interface {
	// Get returns a snapshot of the session's current round.
	Get(ctx context.Context, id string) (game.Round, error)

	// Update runs fn against the session's state, creating the session with
	// create() first if it does not exist (create may be nil to disallow that).
	Update(ctx context.Context, id string, create func() *game.State, fn func(*game.State) error) error

	// Delete drops a session.
	Delete(ctx context.Context, id string) error

	// Sweep drops every session not touched within idle and returns how many went.
	Sweep(ctx context.Context, idle time.Duration) (int, error)
}

type entry struct {
	state   *game.State
	touched time.Time
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	now      func() time.Time
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*entry), now: time.Now}
}

func (m *memory) Get(ctx context.Context, id string) (game.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		return game.Round{}, ErrNotFound
	}
	e.touched = m.now()
	return e.state.CurrentRound(), nil
}

func (m *memory) Update(ctx context.Context, id string, create func() *game.State, fn func(*game.State) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		if create == nil {
			return ErrNotFound
		}
		e = &entry{state: create()}
		m.sessions[id] = e
	}
	e.touched = m.now()
	return fn(e.state)
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memory) Sweep(ctx context.Context, idle time.Duration) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	cutoff := m.now().Add(-idle)
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, e := range m.sessions {
		if e.touched.Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

// RunSweeper calls s.Sweep every interval until ctx is done.
func RunSweeper(ctx context.Context, s Store, interval, idle time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := s.Sweep(ctx, idle)
			if err != nil {
				if ctx.Err() == nil {
					log.Warn().Err(err).Msg("sweep sessions")
				}
				continue
			}
			if n > 0 {
				log.Debug().Int("evicted", n).Dur("idle", idle).Msg("swept idle sessions")
			}
		}
	}
}
