package scheduler

import (
	"time"
)

// State is the state of a scheduler context.
type State uint8

const (
	// StateIdle is the state before the first tick and after a structural change. The next tick
	// uses the nominal frame duration.
	StateIdle State = iota
	// StateRunning is the state once a tick has run. The next tick uses the wall time elapsed.
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	}
	return "unknown"
}

// Context is the caller-owned timing state of a scheduler. A zero Context is idle and yields a
// zero time step on its first tick; use NewContext to set a nominal frame duration.
type Context struct {
	State    State
	LastTick time.Time

	// FrameDuration is the time step used for the first tick after the context becomes idle.
	FrameDuration time.Duration
	// MaxDeltaTime caps the time step of a single tick. Zero means no cap.
	MaxDeltaTime time.Duration

	// Fingerprint is the structural fingerprint of the scene seen on the last tick.
	Fingerprint uint64
}

// NewContext returns an idle context for the given nominal frame rate.
func NewContext(frameRate float64, maxDeltaTime time.Duration) *Context {
	c := &Context{MaxDeltaTime: maxDeltaTime}
	if frameRate > 0 {
		c.FrameDuration = time.Duration(float64(time.Second) / frameRate)
	}
	return c
}

// DeltaTime returns the time step in seconds for a tick happening at now and records now as the
// last tick. An idle context returns the nominal frame duration and starts running. A running
// context returns the time elapsed since the last tick, or zero if the clock went backwards.
func (c *Context) DeltaTime(now time.Time) float64 {
	var dt time.Duration
	switch c.State {
	case StateIdle:
		dt = c.FrameDuration
		c.State = StateRunning
	default:
		dt = max(now.Sub(c.LastTick), 0)
	}
	if c.MaxDeltaTime > 0 {
		dt = min(dt, c.MaxDeltaTime)
	}
	c.LastTick = now
	return dt.Seconds()
}

// Reset puts the context back into the idle state, so the next tick does not see the time spent
// while the scene was being rebuilt.
func (c *Context) Reset() {
	c.State = StateIdle
}
