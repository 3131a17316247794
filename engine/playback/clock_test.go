package playback

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestClock_FirstTickSetsBaseline(t *testing.T) {
	c := NewClock(30)

	next, advanced := c.Tick(epoch, 4, 10)
	assert.False(t, advanced)
	assert.Equal(t, 4, next)

	// Even a large gap right after the baseline advances only once.
	next, advanced = c.Tick(epoch.Add(10*time.Second), 4, 10)
	assert.True(t, advanced)
	assert.Equal(t, 5, next)
}

func TestClock_AdvancesOnlyAfterFullInterval(t *testing.T) {
	c := NewClock(30) // ~33.3ms per frame
	now := epoch
	frame := 0

	c.Tick(now, frame, 100)

	gaps := []time.Duration{10 * time.Millisecond, 40 * time.Millisecond, 10 * time.Millisecond, 40 * time.Millisecond}
	want := []bool{false, true, false, true}

	for i, gap := range gaps {
		now = now.Add(gap)
		var advanced bool
		frame, advanced = c.Tick(now, frame, 100)
		assert.Equal(t, want[i], advanced, "tick %d", i)
	}
	assert.Equal(t, 2, frame)
}

func TestClock_BaselineMovesToTickTime(t *testing.T) {
	c := NewClock(10) // 100ms
	c.Tick(epoch, 0, 5)

	frame, advanced := c.Tick(epoch.Add(150*time.Millisecond), 0, 5)
	assert.True(t, advanced)
	assert.Equal(t, 1, frame)

	// 150ms + 60ms is only 60ms past the new baseline.
	frame, advanced = c.Tick(epoch.Add(210*time.Millisecond), frame, 5)
	assert.False(t, advanced)
	assert.Equal(t, 1, frame)
}

func TestClock_WrapsAtEnd(t *testing.T) {
	c := NewClock(10)
	c.Tick(epoch, 9, 10)

	frame, advanced := c.Tick(epoch.Add(100*time.Millisecond), 9, 10)
	assert.True(t, advanced)
	assert.Equal(t, 0, frame)
}

func TestClock_SingleFrameAlwaysZero(t *testing.T) {
	c := NewClock(60)
	now := epoch
	frame := 0
	for range 20 {
		frame, _ = c.Tick(now, frame, 1)
		assert.Equal(t, 0, frame)
		now = now.Add(time.Second)
	}
}

func TestClock_ResetClearsBaseline(t *testing.T) {
	c := NewClock(10)
	c.Tick(epoch, 0, 5)
	c.Reset()

	_, advanced := c.Tick(epoch.Add(time.Second), 0, 5)
	assert.False(t, advanced, "first tick after reset only records the baseline")
}

func TestClock_SetFPS(t *testing.T) {
	c := NewClock(30)
	assert.Equal(t, time.Duration(33333333), c.Interval())

	c.SetFPS(4)
	assert.Equal(t, 250*time.Millisecond, c.Interval())

	assert.Panics(t, func() { c.SetFPS(0) })
	assert.Panics(t, func() { NewClock(-1) })
}

func TestWrap(t *testing.T) {
	assert.Equal(t, 0, Wrap(10, 10))
	assert.Equal(t, 3, Wrap(3, 10))
	assert.Equal(t, 9, Wrap(-1, 10))
	assert.Equal(t, 0, Wrap(5, 1))
	assert.Equal(t, 0, Wrap(5, 0))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, Clamp(-3, 10))
	assert.Equal(t, 9, Clamp(25, 10))
	assert.Equal(t, 4, Clamp(4, 10))
	assert.Equal(t, 0, Clamp(4, 1))
}
