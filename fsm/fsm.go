// Package fsm provides a small finite state machine for sequencing phases of
// objects that update once per frame.
package fsm

import "fmt"

// State holds the hooks for one named state. Any hook may be nil.
type State[C any] struct {
	Enter  func(ctx C)
	Update func(ctx C, dt float64)
	Exit   func(ctx C)
}

// UnknownStateError is returned by SetState for a name that was never added.
type UnknownStateError struct {
	Name string
}

func (e *UnknownStateError) Error() string {
	return fmt.Sprintf("fsm: unknown state %q", e.Name)
}

// Machine is a finite state machine whose hooks receive a context of type C.
// Exactly one state is active once SetState has succeeded; before that the
// current state is "".
//
// Transitions to the current state are restarts: Exit and Enter both run.
type Machine[C any] struct {
	ctx    C
	states map[string]State[C]
	state  string

	onTransition func(from, to string)
}

// New creates a machine with the given context and states. No state is
// entered until SetState is called.
func New[C any](ctx C, states map[string]State[C]) *Machine[C] {
	m := &Machine[C]{ctx: ctx, states: make(map[string]State[C], len(states))}
	for name, s := range states {
		m.states[name] = s
	}
	return m
}

// Add registers or replaces a state.
func (m *Machine[C]) Add(name string, s State[C]) {
	m.states[name] = s
}

// Has reports whether name is a known state.
func (m *Machine[C]) Has(name string) bool {
	_, ok := m.states[name]
	return ok
}

// OnTransition sets an observer called after each successful transition.
func (m *Machine[C]) OnTransition(fn func(from, to string)) {
	m.onTransition = fn
}

// SetState switches to name. The current state is updated first, then the
// previous state's Exit runs, then the new state's Enter. An unknown name
// returns *UnknownStateError and leaves the machine unchanged.
func (m *Machine[C]) SetState(name string) error {
	next, ok := m.states[name]
	if !ok {
		return &UnknownStateError{Name: name}
	}
	from := m.state
	prev, hadPrev := m.states[from]
	m.state = name
	if hadPrev && prev.Exit != nil {
		prev.Exit(m.ctx)
	}
	if next.Enter != nil {
		next.Enter(m.ctx)
	}
	if m.onTransition != nil {
		m.onTransition(from, name)
	}
	return nil
}

// MustSetState is SetState for names known to exist. It panics on error.
func (m *Machine[C]) MustSetState(name string) {
	if err := m.SetState(name); err != nil {
		panic(err)
	}
}

// Update runs the current state's Update hook.
func (m *Machine[C]) Update(dt float64) {
	if s, ok := m.states[m.state]; ok && s.Update != nil {
		s.Update(m.ctx, dt)
	}
}

// State returns the current state name.
func (m *Machine[C]) State() string {
	return m.state
}

// Is reports whether the current state is name.
func (m *Machine[C]) Is(name string) bool {
	return m.state == name
}

// Context returns the value passed to every hook.
func (m *Machine[C]) Context() C {
	return m.ctx
}
