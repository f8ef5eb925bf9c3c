package circuit

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type outcome int

const (
	fail outcome = iota
	succeed
)

type step struct {
	outcome  outcome
	fallback bool // RecordFailure: serve the last good value
	primary  bool // RecordSuccess: trust the source again
	change   StateChange
	state    State
}

func run(t *testing.T, b *Breaker, steps []step) {
	t.Helper()
	for i, st := range steps {
		msg := fmt.Sprintf("step %d", i)
		switch st.outcome {
		case fail:
			fallback, change := b.RecordFailure()
			assert.Equal(t, st.fallback, fallback, msg)
			assert.Equal(t, st.change, change, msg)
		case succeed:
			primary, change := b.RecordSuccess()
			assert.Equal(t, st.primary, primary, msg)
			assert.Equal(t, st.change, change, msg)
		}
		require.Equal(t, st.state, b.State(), msg)
	}
}

func TestLookupSourceDefaults(t *testing.T) {
	b := New("lookup-source")
	assert.Equal(t, "lookup-source", b.Name())
	assert.False(t, b.IsOpen())

	var steps []step
	for range DefaultFailureThreshold - 1 {
		steps = append(steps, step{outcome: fail, state: StateClosed})
	}
	steps = append(steps,
		step{outcome: fail, fallback: true, change: StateChange{Opened: true}, state: StateOpen},
		step{outcome: fail, fallback: true, state: StateOpen},
		step{outcome: succeed, state: StateOpen},
		step{outcome: succeed, primary: true, change: StateChange{Closed: true}, state: StateClosed},
	)
	run(t, b, steps)
}

func TestBreakerTransitions(t *testing.T) {
	tests := []struct {
		name  string
		opts  []Option
		steps []step
	}{
		{
			name: "a success between failures restarts the count",
			opts: []Option{WithFailureThreshold(2)},
			steps: []step{
				{outcome: fail, state: StateClosed},
				{outcome: succeed, primary: true, state: StateClosed},
				{outcome: fail, state: StateClosed},
				{outcome: fail, fallback: true, change: StateChange{Opened: true}, state: StateOpen},
			},
		},
		{
			name: "a failure while open restarts the recovery count",
			opts: []Option{WithFailureThreshold(1), WithSuccessThreshold(2)},
			steps: []step{
				{outcome: fail, fallback: true, change: StateChange{Opened: true}, state: StateOpen},
				{outcome: succeed, state: StateOpen},
				{outcome: fail, fallback: true, state: StateOpen},
				{outcome: succeed, state: StateOpen},
				{outcome: succeed, primary: true, change: StateChange{Closed: true}, state: StateClosed},
			},
		},
		{
			name: "non-positive thresholds keep the defaults",
			opts: []Option{WithFailureThreshold(0), WithSuccessThreshold(-1)},
			steps: []step{
				{outcome: fail, state: StateClosed},
				{outcome: fail, state: StateClosed},
				{outcome: fail, state: StateClosed},
				{outcome: fail, state: StateClosed},
				{outcome: fail, fallback: true, change: StateChange{Opened: true}, state: StateOpen},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run(t, New("lookup-source", tt.opts...), tt.steps)
		})
	}
}

func TestConcurrentFailuresOpenOnce(t *testing.T) {
	b := New("lookup-source", WithFailureThreshold(3))

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		opened int
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, change := b.RecordFailure(); change.Opened {
				mu.Lock()
				opened++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, opened)
	assert.True(t, b.IsOpen())
}
