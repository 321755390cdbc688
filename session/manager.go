package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for unknown or evicted session ids.
var ErrSessionNotFound = errors.New("session not found")

type entry struct {
	session *Session
	cancel  context.CancelFunc
}

// Manager keeps the running sessions of a server.
type Manager struct {
	ctx      context.Context
	recorder Recorder
	idle     time.Duration
	manual   bool

	mu       sync.RWMutex
	sessions map[string]entry
}

// NewManager returns a manager whose sessions live until ctx is cancelled,
// they are deleted, or they stay idle longer than idle (zero keeps them).
func NewManager(ctx context.Context, recorder Recorder, idle time.Duration) *Manager {
	return &Manager{
		ctx:      ctx,
		recorder: recorder,
		idle:     idle,
		sessions: make(map[string]entry),
	}
}

// SetManual makes sessions created afterwards advance only on Tick.
func (m *Manager) SetManual(manual bool) {
	m.mu.Lock()
	m.manual = manual
	m.mu.Unlock()
}

// Create starts a new session with a fresh id.
func (m *Manager) Create() *Session {
	id := uuid.NewString()

	m.mu.Lock()
	s := New(id, Options{
		Seed:     time.Now().UnixNano(),
		Recorder: m.recorder,
		Manual:   m.manual,
	})
	ctx, cancel := context.WithCancel(m.ctx)
	m.sessions[id] = entry{session: s, cancel: cancel}
	m.mu.Unlock()

	go func() {
		if err := s.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("session %s stopped: %v", id, err)
		}
	}()
	log.Printf("session %s created", id)
	return s
}

// Get looks a session up by id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	e, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e.session, nil
}

// Delete stops and forgets a session.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	e, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	e.cancel()
	<-e.session.Done()
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep deletes sessions idle since before now-idle and returns how many.
func (m *Manager) Sweep(now time.Time) int {
	if m.idle <= 0 {
		return 0
	}
	var stale []string
	m.mu.RLock()
	for id, e := range m.sessions {
		if now.Sub(e.session.LastActive()) > m.idle {
			stale = append(stale, id)
		}
	}
	m.mu.RUnlock()

	n := 0
	for _, id := range stale {
		if m.Delete(id) == nil {
			n++
		}
	}
	return n
}

// RunJanitor sweeps idle sessions every period until ctx is done.
func (m *Manager) RunJanitor(ctx context.Context, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := m.Sweep(now); n > 0 {
				log.Printf("evicted %d idle sessions", n)
			}
		}
	}
}

// Close stops every session.
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]entry)
	m.mu.Unlock()

	for _, e := range sessions {
		e.cancel()
		<-e.session.Done()
	}
}
