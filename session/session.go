// Package session holds the identity and lifecycle state of one remote
// dialog session.
package session

import (
	"errors"
	"fmt"
	"sync"
)

// ErrInvalidTransition is returned when a lifecycle transition is attempted
// from a state that does not allow it.
var ErrInvalidTransition = errors.New("invalid session state transition")

// State is the lifecycle state of a session.
type State int

const (
	Idle State = iota
	Starting
	Active
	Stopping
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Starting:
		return "starting"
	case Active:
		return "active"
	case Stopping:
		return "stopping"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Selector is the routing tuple identifying which model variant serves a
// request.
type Selector struct {
	Channel  string `json:"channel"`
	Language string `json:"language"`
	Library  string `json:"library"`
}

// Session tracks the remote session id and the lifecycle state. The id is
// empty whenever the state is Idle. All methods are safe for concurrent use.
type Session struct {
	selector Selector
	state    State
	id       string
	mu       sync.RWMutex
}

// Selector returns the routing selector of the session.
func (s *Session) Selector() Selector {
	return s.selector
}

// ID returns the remote session id, or "" when no session is open.
func (s *Session) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Transition moves the session from one state to another. It fails with
// ErrInvalidTransition when the current state is not from.
func (s *Session) Transition(from, to State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != from {
		return fmt.Errorf("%w: %s -> %s (current %s)", ErrInvalidTransition, from, to, s.state)
	}
	s.state = to
	return nil
}

// Bind records the remote session id. Only valid while Starting.
func (s *Session) Bind(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Starting {
		return fmt.Errorf("%w: bind while %s", ErrInvalidTransition, s.state)
	}
	s.id = id
	return nil
}

// Reset clears the session id and returns the session to Idle.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = ""
	s.state = Idle
}
