// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// startWatcher runs a watcher on dir and returns the change channel and a
// stop function that waits for Run to return.
func startWatcher(t *testing.T, dir string) (<-chan struct{}, func() error) {
	t.Helper()

	changes := make(chan struct{}, 16)
	w := New(dir, ".txt", func() { changes <- struct{}{} }, nil)
	w.SetDebounce(50 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	var (
		once    sync.Once
		stopErr error
	)
	stop := func() error {
		once.Do(func() {
			cancel()
			select {
			case stopErr = <-done:
			case <-time.After(2 * time.Second):
				t.Error("watcher did not stop")
			}
		})
		return stopErr
	}
	t.Cleanup(func() { _ = stop() })
	return changes, stop
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestWatcherDebouncesBurst(t *testing.T) {
	dir := t.TempDir()
	changes, stop := startWatcher(t, dir)

	write(t, filepath.Join(dir, "a.txt"), "a")
	write(t, filepath.Join(dir, "b.txt"), "b")
	write(t, filepath.Join(dir, "a.txt"), "a2")

	select {
	case <-changes:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a change notification")
	}

	select {
	case <-changes:
		t.Fatal("burst should produce a single notification")
	case <-time.After(300 * time.Millisecond):
	}

	assert.NoError(t, stop())
}

func TestWatcherReportsRemoval(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	write(t, path, "a")
	changes, stop := startWatcher(t, dir)

	require.NoError(t, os.Remove(path))

	select {
	case <-changes:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a change notification for removal")
	}
	assert.NoError(t, stop())
}

func TestWatcherIgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	changes, stop := startWatcher(t, dir)

	write(t, filepath.Join(dir, "notes.md"), "x")
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".index"), 0o755))

	select {
	case <-changes:
		t.Fatal("unexpected notification")
	case <-time.After(300 * time.Millisecond):
	}
	assert.NoError(t, stop())
}

func TestWatcherMissingDirectory(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing"), ".txt", func() {}, nil)

	err := w.Run(context.Background())
	assert.Error(t, err)
}

func TestSetDebounceIgnoresNonPositive(t *testing.T) {
	w := New(t.TempDir(), ".txt", func() {}, nil)
	w.SetDebounce(0)
	assert.Equal(t, DefaultDebounce, w.debounce)
	w.SetDebounce(time.Second)
	assert.Equal(t, time.Second, w.debounce)
}
