// Package playback paces dataset frames against wall-clock time, independent of how often the
// display refreshes.
package playback

import (
	"sync"
	"time"
)

// TimeSource provides the current time. The engine uses the system clock; tests inject a fake
// source to drive ticks deterministically.
type TimeSource interface {
	Now() time.Time
}

type systemTime struct{}

func (systemTime) Now() time.Time { return time.Now() }

// SystemTime returns a TimeSource backed by time.Now.
func SystemTime() TimeSource {
	return systemTime{}
}

// Clock decides when playback advances to the next frame.
//
// A Clock holds a baseline timestamp of the last advance. The first Tick after construction or
// Reset only records the baseline. Later ticks advance at most one frame, and only once a full
// frame interval has elapsed since the baseline; the baseline then moves to the tick time.
// Frames are never skipped to catch up with a slow display.
type Clock interface {
	// Tick evaluates one render tick.
	//
	// Parameters:
	//   - now: the tick timestamp
	//   - frame: the current frame index
	//   - total: the number of frames in the dataset (>= 1)
	//
	// Returns:
	//   - int: the frame index to display
	//   - bool: true if the index advanced on this tick
	Tick(now time.Time, frame, total int) (int, bool)

	// Reset clears the baseline so the next Tick only records a timestamp.
	Reset()

	// SetFPS changes the frame rate and clears the baseline.
	//
	// Parameters:
	//   - fps: frames per second, must be positive
	SetFPS(fps float64)

	// Interval returns the duration of one frame.
	//
	// Returns:
	//   - time.Duration: 1s / fps
	Interval() time.Duration
}

type clockImpl struct {
	mu       *sync.Mutex
	interval time.Duration
	last     time.Time
	hasLast  bool
}

var _ Clock = &clockImpl{}

// NewClock creates a Clock pacing playback at fps frames per second.
// Panics if fps is not positive.
//
// Parameters:
//   - fps: frames per second
//
// Returns:
//   - Clock: the new clock with an unset baseline
func NewClock(fps float64) Clock {
	c := &clockImpl{mu: &sync.Mutex{}}
	c.SetFPS(fps)
	return c
}

func (c *clockImpl) Tick(now time.Time, frame, total int) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.hasLast {
		c.last = now
		c.hasLast = true
		return frame, false
	}

	if now.Sub(c.last) < c.interval {
		return frame, false
	}

	c.last = now
	return Wrap(frame+1, total), true
}

func (c *clockImpl) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.hasLast = false
	c.last = time.Time{}
}

func (c *clockImpl) SetFPS(fps float64) {
	if !(fps > 0) {
		panic("playback: fps must be positive")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.interval = time.Duration(float64(time.Second) / fps)
	c.hasLast = false
	c.last = time.Time{}
}

func (c *clockImpl) Interval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interval
}

// Wrap maps i into [0, total) cyclically. A total below 1 yields 0.
func Wrap(i, total int) int {
	if total <= 1 {
		return 0
	}
	i %= total
	if i < 0 {
		i += total
	}
	return i
}

// Clamp limits i to [0, total-1]. A total below 1 yields 0.
func Clamp(i, total int) int {
	if total <= 1 || i < 0 {
		return 0
	}
	if i >= total {
		return total - 1
	}
	return i
}
