// Package link supervises the cellular data link and drives recovery.
package link

import (
	"fmt"
	"time"
)

// DefaultConnectTimeout bounds one recovery attempt.
const DefaultConnectTimeout = 60 * time.Second

// State is the link state.
type State int

// States
const (
	Disconnected State = iota
	Connecting
	Connected
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Action is the side effect requested by a transition.
type Action int

// Actions
const (
	ActionNone Action = iota
	// ActionRecover restarts the modem connection.
	ActionRecover
	// ActionPublish announces the newly acquired address.
	ActionPublish
)

// String implements fmt.Stringer.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionRecover:
		return "recover"
	case ActionPublish:
		return "publish"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Transition is the outcome of one Step.
type Transition struct {
	From   State
	To     State
	Action Action
}

// Changed indicates the state changed.
func (t Transition) Changed() bool {
	return t.From != t.To
}

// Machine is the recovery state machine. It starts Disconnected.
type Machine struct {
	ConnectTimeout time.Duration

	state     State
	startedAt time.Time
}

// NewMachine creates a Machine.
func NewMachine(connectTimeout time.Duration) *Machine {
	return &Machine{ConnectTimeout: connectTimeout}
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// StartedAt returns when the current recovery attempt started. Only
// meaningful while Connecting.
func (m *Machine) StartedAt() time.Time {
	return m.startedAt
}

// Step evaluates one poll result.
//
//	Disconnected, unreachable  -> Connecting (recover)
//	Disconnected, reachable    -> Connected
//	Connecting, reachable      -> Connected (publish)
//	Connecting, timed out      -> Disconnected
//	Connected, unreachable     -> Disconnected
func (m *Machine) Step(now time.Time, reachable bool) Transition {
	tr := Transition{From: m.state}
	switch m.state {
	case Disconnected:
		if reachable {
			m.state = Connected
		} else {
			m.state, m.startedAt = Connecting, now
			tr.Action = ActionRecover
		}
	case Connecting:
		if reachable {
			m.state = Connected
			tr.Action = ActionPublish
		} else if now.Sub(m.startedAt) > m.connectTimeout() {
			m.state = Disconnected
		}
	case Connected:
		if !reachable {
			m.state = Disconnected
		}
	}
	tr.To = m.state
	return tr
}

func (m *Machine) connectTimeout() time.Duration {
	if m.ConnectTimeout > 0 {
		return m.ConnectTimeout
	}
	return DefaultConnectTimeout
}
