package monitoring

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-error-capture/internal/core/model"
)

func waitEvent(t *testing.T, fw *FileWatcher) model.FileEvent {
	t.Helper()
	select {
	case ev, ok := <-fw.Events():
		require.True(t, ok, "events channel closed early")
		return ev
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for file event")
		return model.FileEvent{}
	}
}

func TestWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "godot.log")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	fw, err := NewFileWatcher(path)
	require.NoError(t, err)
	defer fw.Close()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("ERROR: x\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	ev := waitEvent(t, fw)
	assert.Equal(t, path, filepath.Clean(ev.Path))
	assert.NotEmpty(t, ev.Operation)
}

func TestWatcherSeesLateCreation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "later.log")

	fw, err := NewFileWatcher(path)
	require.NoError(t, err)
	defer fw.Close()

	require.NoError(t, os.WriteFile(path, []byte("boot\n"), 0644))
	ev := waitEvent(t, fw)
	assert.Equal(t, path, filepath.Clean(ev.Path))
}

func TestWatcherIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "godot.log")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	fw, err := NewFileWatcher(path)
	require.NoError(t, err)
	defer fw.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.log"), []byte("x\n"), 0644))

	select {
	case ev := <-fw.Events():
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherMissingDirectory(t *testing.T) {
	_, err := NewFileWatcher(filepath.Join(t.TempDir(), "nope", "godot.log"))
	assert.Error(t, err)
}

func TestWatcherCloseIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "godot.log")
	fw, err := NewFileWatcher(path)
	require.NoError(t, err)

	require.NoError(t, fw.Close())
	assert.NoError(t, fw.Close())

	_, ok := <-fw.Events()
	assert.False(t, ok)
}
