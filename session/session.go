// Package session runs one game per session. All state transitions of a
// session happen on its Run goroutine; other goroutines talk to it through
// commands and read copies of its state.
package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/hoshinonyaruko/snaky/snake"
	"github.com/hoshinonyaruko/snaky/structs"
)

// ErrSessionClosed is returned by commands sent after Run has returned.
var ErrSessionClosed = errors.New("session closed")

// ErrGameRunning is returned by Reset while the current game is still running.
var ErrGameRunning = errors.New("game is still running")

// Recorder receives every finished game.
type Recorder interface {
	RecordGame(ctx context.Context, result structs.GameResult) error
}

// Options configures a Session.
type Options struct {
	Seed     int64
	Recorder Recorder
	// Manual disables the tick timer; the game only advances on Tick calls.
	Manual bool
}

type commandKind int

const (
	cmdSteer commandKind = iota
	cmdReset
	cmdTick
)

type command struct {
	kind  commandKind
	dir   structs.Direction
	reply chan reply
}

type reply struct {
	state structs.GameState
	err   error
}

// Session owns a single GameState.
type Session struct {
	ID string

	engine   *snake.Engine
	recorder Recorder
	manual   bool
	cmds     chan command
	done     chan struct{}

	mu         sync.RWMutex
	state      structs.GameState
	startedAt  time.Time
	lastActive time.Time

	subsMu sync.Mutex
	subs   map[chan structs.Snapshot]struct{}
}

// New creates a session in its initial running state. Call Run to start it.
func New(id string, opts Options) *Session {
	engine := snake.NewEngine(opts.Seed)
	now := time.Now()
	return &Session{
		ID:         id,
		engine:     engine,
		recorder:   opts.Recorder,
		manual:     opts.Manual,
		cmds:       make(chan command),
		done:       make(chan struct{}),
		state:      engine.Reset(),
		startedAt:  now,
		lastActive: now,
		subs:       make(map[chan structs.Snapshot]struct{}),
	}
}

// Run processes ticks and commands until ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	defer s.closeSubscribers()
	defer close(s.done)

	timer := time.NewTimer(s.interval())
	armed := true
	if s.manual {
		stopTimer(timer)
		armed = false
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case cmd := <-s.cmds:
			var err error
			switch cmd.kind {
			case cmdSteer:
				s.apply(ctx, func(st structs.GameState) structs.GameState { return snake.Steer(st, cmd.dir) })
			case cmdReset:
				// 只有结束的游戏才能重新开始
				if !s.State().Status.Terminal() {
					err = ErrGameRunning
					break
				}
				s.mu.Lock()
				s.startedAt = time.Now()
				s.mu.Unlock()
				s.apply(ctx, func(structs.GameState) structs.GameState { return s.engine.Reset() })
				// 重新开始后恢复计时器
				if !s.manual {
					if armed {
						stopTimer(timer)
					}
					timer.Reset(s.interval())
					armed = true
				}
			case cmdTick:
				s.apply(ctx, s.engine.Tick)
			}
			cmd.reply <- reply{state: s.State(), err: err}

		case <-timer.C:
			armed = false
			st := s.apply(ctx, s.engine.Tick)
			if !st.Status.Terminal() {
				timer.Reset(s.interval())
				armed = true
			}
		}
	}
}

// apply runs one transition and publishes the result. Only Run calls it.
func (s *Session) apply(ctx context.Context, fn func(structs.GameState) structs.GameState) structs.GameState {
	s.mu.Lock()
	prev := s.state
	next := fn(prev)
	s.state = next
	startedAt := s.startedAt
	s.mu.Unlock()

	if !prev.Status.Terminal() && next.Status.Terminal() {
		s.record(ctx, next, startedAt)
	}
	s.publish(snake.NewSnapshot(s.ID, next))
	return next
}

func (s *Session) record(ctx context.Context, st structs.GameState, startedAt time.Time) {
	if s.recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	result := structs.GameResult{
		SessionID:      s.ID,
		Score:          st.Score,
		Length:         len(st.Snake),
		Status:         st.Status,
		TickIntervalMs: st.TickIntervalMs,
		StartedAt:      startedAt.Unix(),
		EndedAt:        time.Now().Unix(),
	}
	if err := s.recorder.RecordGame(ctx, result); err != nil {
		log.Printf("session %s: record game: %v", s.ID, err)
	}
}

func (s *Session) interval() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Duration(s.state.TickIntervalMs) * time.Millisecond
}

func (s *Session) send(ctx context.Context, cmd command) (structs.GameState, error) {
	cmd.reply = make(chan reply, 1)
	s.Touch()
	select {
	case s.cmds <- cmd:
	case <-s.done:
		return structs.GameState{}, ErrSessionClosed
	case <-ctx.Done():
		return structs.GameState{}, ctx.Err()
	}
	select {
	case r := <-cmd.reply:
		return r.state, r.err
	case <-s.done:
		return structs.GameState{}, ErrSessionClosed
	}
}

// Steer requests a direction change and returns the resulting state.
func (s *Session) Steer(ctx context.Context, dir structs.Direction) (structs.GameState, error) {
	return s.send(ctx, command{kind: cmdSteer, dir: dir})
}

// Reset starts a new game once the current one is over or won. On a running
// game it returns the unchanged state and ErrGameRunning.
func (s *Session) Reset(ctx context.Context) (structs.GameState, error) {
	return s.send(ctx, command{kind: cmdReset})
}

// Tick advances the game by one step outside the timer.
func (s *Session) Tick(ctx context.Context) (structs.GameState, error) {
	return s.send(ctx, command{kind: cmdTick})
}

// State returns a copy of the current game state.
func (s *Session) State() structs.GameState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Snapshot returns the renderer view of the current state.
func (s *Session) Snapshot() structs.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snake.NewSnapshot(s.ID, s.state)
}

// Done is closed when Run returns.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Touch marks the session as in use.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()
}

// LastActive reports when a command was last sent to the session.
func (s *Session) LastActive() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActive
}

// Subscribe returns a channel receiving a snapshot after every state change.
// A slow reader only ever sees the newest snapshot. The channel is closed
// when the session stops or cancel is called.
func (s *Session) Subscribe() (<-chan structs.Snapshot, func()) {
	ch := make(chan structs.Snapshot, 1)
	s.subsMu.Lock()
	select {
	case <-s.done:
		close(ch)
		s.subsMu.Unlock()
		return ch, func() {}
	default:
	}
	s.subs[ch] = struct{}{}
	s.subsMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.subsMu.Lock()
			defer s.subsMu.Unlock()
			if _, ok := s.subs[ch]; ok {
				delete(s.subs, ch)
				close(ch)
			}
		})
	}
	return ch, cancel
}

func (s *Session) publish(snap structs.Snapshot) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- snap:
		default:
			// 丢弃旧帧，只保留最新的
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

func (s *Session) closeSubscribers() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for ch := range s.subs {
		delete(s.subs, ch)
		close(ch)
	}
}

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}
