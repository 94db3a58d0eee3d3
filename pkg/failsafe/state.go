// Package failsafe degrades the active command to neutral when control
// input goes stale.
package failsafe

import (
	"time"

	"github.com/robotalks/vscp/pkg/vscp"
)

// DefaultThreshold is the maximum age of the last valid command.
const DefaultThreshold = 200 * time.Millisecond

// State is the last command state owned by the control loop.
type State struct {
	Active     vscp.Command
	LastUpdate time.Time
}

// Update records a newly decoded valid command. It is the only operation
// advancing LastUpdate.
func (s State) Update(cmd vscp.Command, now time.Time) State {
	return State{Active: cmd, LastUpdate: now}
}

// Stale indicates the last valid command is strictly older than threshold.
// A command exactly threshold old is still fresh.
func (s State) Stale(now time.Time, threshold time.Duration) bool {
	return now.Sub(s.LastUpdate) > threshold
}

// Apply returns the state with Active reset to neutral if stale, leaving
// LastUpdate untouched; otherwise the state is returned unchanged.
func Apply(state State, now time.Time, threshold time.Duration) State {
	if state.Stale(now, threshold) {
		state.Active = vscp.Neutral
	}
	return state
}
