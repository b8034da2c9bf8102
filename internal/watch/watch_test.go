package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestWatcher_ReportsSettledChanges(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0755))

	changes := make(chan []string, 8)
	w, err := New(root, []string{".rs"}, 50*time.Millisecond, func(_ context.Context, paths []string) {
		changes <- paths
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("ignored"), 0644))
	target := filepath.Join(root, "src", "demo.rs")
	require.NoError(t, os.WriteFile(target, []byte("// @Title, ID_1\n"), 0644))

	select {
	case paths := <-changes:
		assert.Equal(t, []string{target}, paths)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	stats := w.Stats()
	assert.GreaterOrEqual(t, stats.Runs, 1)
	assert.Equal(t, target, stats.LastEventPath)
}

func TestWatcher_NewDirectory(t *testing.T) {
	root := t.TempDir()

	changes := make(chan []string, 8)
	w, err := New(root, nil, 50*time.Millisecond, func(_ context.Context, paths []string) {
		changes <- paths
	})
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	dir := filepath.Join(root, "pkg")
	require.NoError(t, os.MkdirAll(dir, 0755))
	// let the watcher pick up the new directory
	time.Sleep(200 * time.Millisecond)
	target := filepath.Join(dir, "lib.c")
	require.NoError(t, os.WriteFile(target, []byte("int x;\n"), 0644))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case paths := <-changes:
			if assert.NotEmpty(t, paths) && contains(paths, target) {
				return
			}
		case <-deadline:
			t.Fatal("change in new directory not reported")
		}
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w, err := New(t.TempDir(), nil, 0, func(context.Context, []string) {})
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	w.Stop()
	w.Stop()
}

func TestWatcher_StopAfterFailedStart(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "missing"), nil, 0, func(context.Context, []string) {})
	require.NoError(t, err)
	require.Error(t, w.Start(context.Background()))

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked after a failed Start")
	}
	assert.ErrorIs(t, w.Start(context.Background()), ErrClosed)
}

func TestWatcher_StopWithoutStart(t *testing.T) {
	w, err := New(t.TempDir(), nil, 0, func(context.Context, []string) {})
	require.NoError(t, err)
	w.Stop()
	w.Stop()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
