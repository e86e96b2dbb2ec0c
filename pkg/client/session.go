package client

import "sync"

// State describes the client's view of its session.
type State int

const (
	// Anonymous means no tokens are held.
	Anonymous State = iota
	// Authenticated means a token pair is held and believed valid.
	Authenticated
	// LoggedOut means the session ended, either by an explicit logout or
	// because a refresh was rejected. Distinct from Anonymous so callers
	// can prompt for re-login.
	LoggedOut
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case LoggedOut:
		return "logged_out"
	default:
		return "anonymous"
	}
}

// sessionWatch fans state changes out to subscribers.
type sessionWatch struct {
	mu    sync.Mutex
	state State
	subs  []chan State
}

func (s *sessionWatch) set(next State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == next {
		return
	}
	s.state = next
	for _, ch := range s.subs {
		select {
		case ch <- next:
		default: // slow subscriber, drop rather than block a request
		}
	}
}

func (s *sessionWatch) get() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *sessionWatch) subscribe() <-chan State {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan State, 4)
	s.subs = append(s.subs, ch)
	return ch
}
