package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-mocap/engine/dataset"
)

const (
	twoFrames   = `{"joints": ["a", "b"], "fps": 30, "frames": [{"frame": 0, "keypoints": [[0,0,0],[1,1,1]]}, {"frame": 1, "keypoints": [[0,0,0],[1,1,1]]}]}`
	threeFrames = `{"joints": ["a", "b"], "fps": 24, "frames": [{"frame": 0, "keypoints": [[0,0,0],[1,1,1]]}, {"frame": 1, "keypoints": [[0,0,0],[1,1,1]]}, {"frame": 2, "keypoints": [[0,0,0],[1,1,1]]}]}`
)

type recordingSwapper struct {
	mu      sync.Mutex
	swapped []*dataset.Dataset
	err     error
}

func (s *recordingSwapper) Swap(ds *dataset.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.swapped = append(s.swapped, ds)
	return nil
}

func (s *recordingSwapper) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.swapped)
}

func (s *recordingSwapper) last() *dataset.Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.swapped[len(s.swapped)-1]
}

type reloadLog struct {
	mu   sync.Mutex
	errs []error
}

func (r *reloadLog) record(_ *dataset.Dataset, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *reloadLog) snapshot() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}

// startWatcher writes the initial file and runs a watcher over it until the test ends.
func startWatcher(t *testing.T, target Swapper, options ...WatcherOption) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capture.json")
	require.NoError(t, os.WriteFile(path, []byte(twoFrames), 0o644))

	options = append([]WatcherOption{WithDebounce(20 * time.Millisecond)}, options...)
	w, err := NewWatcher(path, target, options...)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})
	return path
}

func TestWatcher_SwapsOnRewrite(t *testing.T) {
	target := &recordingSwapper{}
	path := startWatcher(t, target)

	require.NoError(t, os.WriteFile(path, []byte(threeFrames), 0o644))

	require.Eventually(t, func() bool { return target.count() >= 1 }, 2*time.Second, 10*time.Millisecond)
	ds := target.last()
	assert.Equal(t, 3, ds.FrameCount())
	assert.Equal(t, 24.0, ds.FPS())
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	target := &recordingSwapper{}
	path := startWatcher(t, target, WithDebounce(150*time.Millisecond))

	for range 5 {
		require.NoError(t, os.WriteFile(path, []byte(threeFrames), 0o644))
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return target.count() >= 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, 1, target.count())
}

func TestWatcher_KeepsDatasetOnBadRewrite(t *testing.T) {
	target := &recordingSwapper{}
	log := &reloadLog{}
	path := startWatcher(t, target, WithReloadCallback(log.record))

	require.NoError(t, os.WriteFile(path, []byte(`{"joints": [], "fps": 30, "frames": []}`), 0o644))

	require.Eventually(t, func() bool { return len(log.snapshot()) >= 1 }, 2*time.Second, 10*time.Millisecond)
	var dfe *dataset.DataFormatError
	assert.ErrorAs(t, log.snapshot()[0], &dfe)
	assert.Zero(t, target.count())
}

func TestWatcher_ReportsSwapFailure(t *testing.T) {
	swapErr := errors.New("engine stopped")
	target := &recordingSwapper{err: swapErr}
	log := &reloadLog{}
	path := startWatcher(t, target, WithReloadCallback(log.record))

	require.NoError(t, os.WriteFile(path, []byte(threeFrames), 0o644))

	require.Eventually(t, func() bool { return len(log.snapshot()) >= 1 }, 2*time.Second, 10*time.Millisecond)
	assert.ErrorIs(t, log.snapshot()[0], swapErr)
}

func TestWatcher_IgnoresSiblingFiles(t *testing.T) {
	target := &recordingSwapper{}
	path := startWatcher(t, target)

	sibling := filepath.Join(filepath.Dir(path), "notes.txt")
	require.NoError(t, os.WriteFile(sibling, []byte("hello"), 0o644))

	time.Sleep(200 * time.Millisecond)
	assert.Zero(t, target.count())
}

func TestNewWatcher_MissingDirectory(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "nope", "capture.json"), &recordingSwapper{})
	require.Error(t, err)
}
