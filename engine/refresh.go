package engine

import (
	"sync"
	"time"
)

// RefreshSource paces the render loop. Each value received from Ticks requests one tick.
// Sources coalesce: a tick requested while the previous one is still pending is dropped, so a
// slow frame never queues a burst of catch-up ticks.
type RefreshSource interface {
	// Ticks returns the channel the render loop waits on. A closed channel ends the loop.
	Ticks() <-chan struct{}

	// Stop releases the source. Safe to call more than once.
	Stop()
}

type tickerSource struct {
	ticks    chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
}

// NewTickerSource creates a RefreshSource firing hz times per second from a time.Ticker,
// standing in for the display's refresh callback. Values <= 0 default to 60 Hz.
//
// Parameters:
//   - hz: ticks per second
//
// Returns:
//   - RefreshSource: the running source
func NewTickerSource(hz float64) RefreshSource {
	if hz <= 0 {
		hz = 60
	}
	s := &tickerSource{
		ticks: make(chan struct{}, 1),
		stop:  make(chan struct{}),
	}

	ticker := time.NewTicker(time.Duration(float64(time.Second) / hz))
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				select {
				case s.ticks <- struct{}{}:
				default:
				}
			}
		}
	}()
	return s
}

func (s *tickerSource) Ticks() <-chan struct{} {
	return s.ticks
}

func (s *tickerSource) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
}

// ManualSource is a RefreshSource fired explicitly, e.g. from a window's per-iteration
// update callback so ticks follow the display loop.
type ManualSource struct {
	ticks    chan struct{}
	stopOnce sync.Once
	mu       sync.Mutex
	stopped  bool
}

var _ RefreshSource = &ManualSource{}

// NewManualSource creates an idle ManualSource.
//
// Returns:
//   - *ManualSource: the source
func NewManualSource() *ManualSource {
	return &ManualSource{ticks: make(chan struct{}, 1)}
}

// Fire requests a tick without blocking. Returns false if a tick was already pending or the
// source is stopped.
//
// Returns:
//   - bool: true if the request was queued
func (s *ManualSource) Fire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	select {
	case s.ticks <- struct{}{}:
		return true
	default:
		return false
	}
}

func (s *ManualSource) Ticks() <-chan struct{} {
	return s.ticks
}

func (s *ManualSource) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopped = true
		close(s.ticks)
		s.mu.Unlock()
	})
}
