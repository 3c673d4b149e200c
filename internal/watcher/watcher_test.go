package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/haystackd/haystackd/internal/logging"
)

func TestWatcherEmitsTickOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corpus.txt")
	require.NoError(t, os.WriteFile(path, []byte("abc\n"), 0o644))

	w, err := New(path, 20*time.Millisecond, logging.Discard())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	// Give the watch loop a moment to come up before writing.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("xyz\n"), 0o644))

	select {
	case <-w.Events():
	case <-time.After(2 * time.Second):
		t.Fatal("no change tick after rewrite")
	}
}

func TestWatcherIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corpus.txt")
	require.NoError(t, os.WriteFile(path, []byte("abc\n"), 0o644))

	w, err := New(path, 20*time.Millisecond, logging.Discard())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("noise\n"), 0o644))

	select {
	case <-w.Events():
		t.Fatal("tick emitted for unrelated file")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherCoalescesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corpus.txt")
	require.NoError(t, os.WriteFile(path, []byte("abc\n"), 0o644))

	w, err := New(path, 50*time.Millisecond, logging.Discard())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	time.Sleep(50 * time.Millisecond)
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("xyz\n"), 0o644))
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-w.Events():
	case <-time.After(2 * time.Second):
		t.Fatal("no change tick after burst")
	}

	// The burst collapses into a bounded number of ticks; after draining
	// once and waiting out the debounce window there is at most one more.
	select {
	case <-w.Events():
	case <-time.After(200 * time.Millisecond):
	}
	select {
	case <-w.Events():
		t.Fatal("burst produced more than two ticks")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestNewMissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing", "corpus.txt"), 0, logging.Discard())
	require.Error(t, err)
}
