package interaction

import "log/slog"

// State enumerates the controller states.
type State int

const (
	StateNoImage State = iota
	StateEmbedding
	StateReady
	StateInferring
)

func (s State) String() string {
	switch s {
	case StateNoImage:
		return "no image"
	case StateEmbedding:
		return "embedding"
	case StateReady:
		return "ready"
	case StateInferring:
		return "inferring"
	default:
		return "unknown"
	}
}

// Busy reports whether an oracle call is outstanding in s.
func (s State) Busy() bool { return s == StateEmbedding || s == StateInferring }

// AcceptsPrompts reports whether clicks and clears are allowed in s.
func (s State) AcceptsPrompts() bool { return s == StateReady }

// Listener is called on each successful state transition.
type Listener func(prev, next State)

// Machine holds the current state and notifies listeners on change.
// It is not safe for concurrent use; the owner drives it from one goroutine.
type Machine struct {
	state     State
	logger    *slog.Logger
	listeners []Listener
}

// NewMachine starts in StateNoImage.
func NewMachine(logger *slog.Logger) *Machine {
	return &Machine{state: StateNoImage, logger: logger}
}

func (m *Machine) Current() State { return m.state }

func (m *Machine) AddListener(l Listener) {
	if l != nil {
		m.listeners = append(m.listeners, l)
	}
}

// allowed lists the legal edges. A load may start from any state, so every
// state leads to StateEmbedding except StateEmbedding itself, where a new load
// keeps the state and only the session generation changes.
var allowed = map[State][]State{
	StateNoImage:   {StateEmbedding},
	StateEmbedding: {StateReady, StateNoImage},
	StateReady:     {StateInferring, StateEmbedding},
	StateInferring: {StateReady, StateEmbedding},
}

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to State) bool {
	for _, s := range allowed[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition moves to next and reports whether the state changed. Self
// transitions are ignored; illegal edges are refused and logged.
func (m *Machine) Transition(next State) bool {
	prev := m.state
	if prev == next {
		return false
	}
	if !CanTransition(prev, next) {
		if m.logger != nil {
			m.logger.Warn("interaction state transition refused", "from", prev.String(), "to", next.String())
		}
		return false
	}
	m.state = next
	if m.logger != nil {
		m.logger.Debug("interaction state transition", "from", prev.String(), "to", next.String())
	}
	for _, l := range m.listeners {
		l(prev, next)
	}
	return true
}
