// internal/watch/watcher_test.go
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, path string, handler Handler) {
	t.Helper()

	w, err := New(path, handler, WithDelay(100*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("Run did not return after cancel")
		}
	})
}

func TestWatcher_CollapsesBurst(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "draft.txt")
	require.NoError(t, os.WriteFile(path, []byte("v0"), 0644))

	var calls atomic.Int32
	got := make(chan string, 4)
	startWatcher(t, path, func(_ context.Context, p string) {
		calls.Add(1)
		got <- p
	})

	for _, v := range []string{"v1", "v2", "v3"} {
		require.NoError(t, os.WriteFile(path, []byte(v), 0644))
	}

	select {
	case p := <-got:
		want, _ := filepath.Abs(path)
		assert.Equal(t, want, p)
	case <-time.After(3 * time.Second):
		t.Fatal("handler not called after write")
	}

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "burst of writes should run the handler once")
}

func TestWatcher_IgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "draft.txt")
	require.NoError(t, os.WriteFile(path, []byte("v0"), 0644))

	var calls atomic.Int32
	startWatcher(t, path, func(context.Context, string) { calls.Add(1) })

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0644))
	time.Sleep(400 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestWatcher_SeesRenameIntoPlace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "draft.txt")
	require.NoError(t, os.WriteFile(path, []byte("v0"), 0644))

	got := make(chan struct{}, 4)
	startWatcher(t, path, func(context.Context, string) { got <- struct{}{} })

	tmp := filepath.Join(dir, ".draft.txt.swp")
	require.NoError(t, os.WriteFile(tmp, []byte("v1"), 0644))
	require.NoError(t, os.Rename(tmp, path))

	select {
	case <-got:
	case <-time.After(3 * time.Second):
		t.Fatal("handler not called after atomic save")
	}
}

func TestNew_MissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "gone", "draft.txt"), func(context.Context, string) {})
	assert.Error(t, err)
}
