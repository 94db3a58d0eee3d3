package failsafe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/vscp/pkg/vscp"
)

func TestApply(t *testing.T) {
	now := time.Unix(5000, 0)
	active := vscp.Command{ForwardBackward: 0.7, LeftRight: -0.3}
	testCases := []struct {
		name   string
		age    time.Duration
		expect vscp.Command
	}{
		{"fresh", 0, active},
		{"just under", 199 * time.Millisecond, active},
		{"at threshold", 200 * time.Millisecond, active},
		{"just over", 201 * time.Millisecond, vscp.Neutral},
		{"long gone", time.Hour, vscp.Neutral},
		{"sub-second part small", 1*time.Second + 10*time.Millisecond, vscp.Neutral},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			state := State{Active: active, LastUpdate: now.Add(-tc.age)}
			applied := Apply(state, now, DefaultThreshold)
			require.Equal(t, tc.expect, applied.Active)
			require.Equal(t, state.LastUpdate, applied.LastUpdate)
		})
	}
}

func TestInvalidInputDoesNotRefresh(t *testing.T) {
	start := time.Unix(100, 0)
	state := State{}.Update(vscp.Command{ForwardBackward: 1}, start)

	// ticks with no valid input only re-apply the failsafe.
	for tick := 1; tick <= 15; tick++ {
		state = Apply(state, start.Add(time.Duration(tick)*20*time.Millisecond), DefaultThreshold)
	}
	require.Equal(t, vscp.Neutral, state.Active)
	require.Equal(t, start, state.LastUpdate)

	later := start.Add(time.Second)
	state = state.Update(vscp.Command{LeftRight: 1}, later)
	state = Apply(state, later.Add(20*time.Millisecond), DefaultThreshold)
	require.Equal(t, vscp.Command{LeftRight: 1}, state.Active)
}
