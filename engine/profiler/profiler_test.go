package profiler

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func TestProfiler_ReportsOncePerInterval(t *testing.T) {
	var buf bytes.Buffer
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(
		WithLogger(slog.New(slog.NewTextHandler(&buf, nil))),
		WithInterval(time.Second),
		WithClock(clock.now),
	)

	for range 19 {
		clock.t = clock.t.Add(50 * time.Millisecond)
		assert.False(t, p.Tick())
	}
	assert.Empty(t, buf.String())

	clock.t = clock.t.Add(50 * time.Millisecond)
	assert.True(t, p.Tick())
	assert.Contains(t, buf.String(), "msg=profiler")
	assert.Contains(t, buf.String(), "fps=20")

	buf.Reset()
	clock.t = clock.t.Add(time.Millisecond)
	assert.False(t, p.Tick(), "the window restarts after a report")
}

func TestProfiler_IgnoresNonPositiveInterval(t *testing.T) {
	p := NewProfiler(WithInterval(0))
	assert.Equal(t, time.Second, p.updateInterval)
}
