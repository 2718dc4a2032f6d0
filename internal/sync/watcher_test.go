package sync

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitMsg(t *testing.T, w *Watcher) any {
	t.Helper()
	done := make(chan any, 1)
	go func() { done <- w.WaitForChange()() }()

	select {
	case msg := <-done:
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for file change")
		return nil
	}
}

func TestWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "checklists.json")

	w, err := New(path, 20*time.Millisecond)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })
	require.NotNil(t, w.Start())

	// Other files in the directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	msg := waitMsg(t, w)
	changed, ok := msg.(FileChangedMsg)
	require.True(t, ok, "got %T", msg)
	assert.Equal(t, path, changed.Path)
}

func TestWatcherStartTwice(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "x.json"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	assert.NotNil(t, w.Start())
	assert.Nil(t, w.Start())
}

func TestWaitForChangeReturnsAfterStop(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "x.json"), 0)
	require.NoError(t, err)
	w.Start()
	require.NoError(t, w.Stop())

	assert.Nil(t, w.WaitForChange()())
}
