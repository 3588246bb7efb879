// Package playback drives a deterministic cursor over a timeline frame
// sequence: play/pause, speed scaling, single-step, seek, and looping.
package playback

import (
	"errors"
	"time"

	"github.com/mesh-sim/traceplay/internal/core/timeline"
)

// ErrEmptyTimeline is returned when playback is requested over a trace that
// produced zero frames.
var ErrEmptyTimeline = errors.New("trace produced no frames: nothing to play")

// Speed clamp defaults, applied when Options leaves them zero.
const (
	DefaultMinSpeed = 0.25
	DefaultMaxSpeed = 8.0
	DefaultSpeed    = 1.0
)

// State is the controller's mutable playback state. It is owned exclusively
// by the Controller and mutated only through its operations; callers get
// copies.
type State struct {
	// CursorTime is the playback position in trace milliseconds. It is
	// fractional so slow playback can advance by sub-millisecond deltas.
	CursorTime float64
	Running    bool
	Speed      float64
	FrameIndex int
}

// Options configures a Controller.
type Options struct {
	MinSpeed float64
	MaxSpeed float64
	Speed    float64 // initial speed multiplier
}

func (o Options) withDefaults() Options {
	if o.MinSpeed <= 0 {
		o.MinSpeed = DefaultMinSpeed
	}
	if o.MaxSpeed <= 0 {
		o.MaxSpeed = DefaultMaxSpeed
	}
	if o.Speed <= 0 {
		o.Speed = DefaultSpeed
	}
	return o
}

// Controller is the playback state machine over an immutable frame sequence.
// It is driven by an external fixed-rate tick and is not safe for concurrent
// use; the single goroutine handling ticks must also apply user commands, so
// commands are atomic with respect to a tick by construction. Multiple
// controllers may share one frame slice.
type Controller struct {
	frames []timeline.Frame
	opts   Options
	state  State
}

// New creates a controller positioned at the first frame, paused. An empty
// frame sequence is allowed; the controller then refuses to start running.
func New(frames []timeline.Frame, opts Options) *Controller {
	opts = opts.withDefaults()
	c := &Controller{
		frames: frames,
		opts:   opts,
		state:  State{Speed: clamp(opts.Speed, opts.MinSpeed, opts.MaxSpeed)},
	}
	if len(frames) > 0 {
		c.state.CursorTime = float64(frames[0].Time)
	}
	return c
}

// Empty reports whether there is nothing to play.
func (c *Controller) Empty() bool { return len(c.frames) == 0 }

// State returns a copy of the current playback state.
func (c *Controller) State() State { return c.state }

// Running reports whether automatic advancement is active.
func (c *Controller) Running() bool { return c.state.Running }

// Speed returns the current speed multiplier.
func (c *Controller) Speed() float64 { return c.state.Speed }

// CursorTime returns the playback position in trace milliseconds.
func (c *Controller) CursorTime() float64 { return c.state.CursorTime }

// Frame returns the current frame, or false when the timeline is empty.
func (c *Controller) Frame() (timeline.Frame, bool) {
	if c.Empty() {
		return timeline.Frame{}, false
	}
	return c.frames[c.state.FrameIndex], true
}

// Frames exposes the underlying frame sequence, read-only.
func (c *Controller) Frames() []timeline.Frame { return c.frames }

// Progress returns the cursor position as a fraction of the trace time span,
// in [0, 1].
func (c *Controller) Progress() float64 {
	if c.Empty() {
		return 0
	}
	first := float64(c.frames[0].Time)
	last := float64(c.frames[len(c.frames)-1].Time)
	if last <= first {
		return 1
	}
	return clamp((c.state.CursorTime-first)/(last-first), 0, 1)
}

// Seek snaps the cursor to the frame whose time is closest to t, ties broken
// toward the earlier frame. Legal in either state; repeating the same seek
// from the resulting state is a no-op.
func (c *Controller) Seek(t int64) {
	if c.Empty() {
		return
	}
	idx := nearestFrame(c.frames, t)
	c.state.FrameIndex = idx
	c.state.CursorTime = float64(c.frames[idx].Time)
}

// Step moves the cursor by one frame in the given direction (+1 forward,
// -1 backward), wrapping at either end. Stepping is only legal while paused;
// while running it is a no-op because automatic advancement owns the cursor.
func (c *Controller) Step(direction int) {
	if c.Empty() || c.state.Running || direction == 0 {
		return
	}
	n := len(c.frames)
	dir := 1
	if direction < 0 {
		dir = -1
	}
	idx := (c.state.FrameIndex + dir + n) % n
	c.state.FrameIndex = idx
	c.state.CursorTime = float64(c.frames[idx].Time)
}

// SetSpeed sets the speed multiplier, clamped to the configured range. It
// takes effect on the next advance and does not move the cursor.
func (c *Controller) SetSpeed(multiplier float64) {
	c.state.Speed = clamp(multiplier, c.opts.MinSpeed, c.opts.MaxSpeed)
}

// ToggleRunning flips between running and paused. Starting playback over an
// empty timeline is refused with ErrEmptyTimeline; the controller stays
// paused.
func (c *Controller) ToggleRunning() error {
	if !c.state.Running && c.Empty() {
		return ErrEmptyTimeline
	}
	c.state.Running = !c.state.Running
	return nil
}

// Advance moves the cursor forward by elapsed real time scaled by the speed
// multiplier. It never skips past the next unvisited frame boundary in one
// call, so single-event resolution survives high speeds. Reaching the end
// wraps to the first frame and its time; looping is the default policy, not
// a mode. Calls while paused are no-ops.
func (c *Controller) Advance(elapsed time.Duration) {
	if !c.state.Running || c.Empty() || elapsed <= 0 {
		return
	}

	last := len(c.frames) - 1
	if c.state.FrameIndex >= last && c.state.CursorTime >= float64(c.frames[last].Time) {
		// End of the loop pass: rewind exactly to the first frame.
		c.state.FrameIndex = 0
		c.state.CursorTime = float64(c.frames[0].Time)
		return
	}

	delta := elapsed.Seconds() * 1000 * c.state.Speed
	target := c.state.CursorTime + delta

	next := float64(c.frames[c.state.FrameIndex+1].Time)
	if target >= next {
		// Clamp to the boundary so no frame is skipped.
		c.state.FrameIndex++
		c.state.CursorTime = next
		return
	}
	c.state.CursorTime = target
}

// nearestFrame returns the index of the frame whose time is closest to t,
// preferring the earlier frame on ties. Frames are strictly increasing in
// time.
func nearestFrame(frames []timeline.Frame, t int64) int {
	lo, hi := 0, len(frames)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if frames[mid].Time < t {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	// lo is the first frame with Time >= t; the nearest is lo or lo-1.
	if lo > 0 {
		dPrev := t - frames[lo-1].Time
		dCur := frames[lo].Time - t
		if dPrev <= dCur {
			return lo - 1
		}
	}
	return lo
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
