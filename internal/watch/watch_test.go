package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpString(t *testing.T) {
	assert.Equal(t, "none", Op(0).String())
	assert.Equal(t, "write", OpWrite.String())
	assert.Equal(t, "create|write", (OpCreate | OpWrite).String())
}

func TestWatcherReportsWatchedFileOnly(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "calc.yaml")
	require.NoError(t, os.WriteFile(watched, []byte("a"), 0o644))

	w, err := New(watched)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("b"), 0o644))
	require.NoError(t, os.WriteFile(watched, []byte("c"), 0o644))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	changed := make(chan []string, 1)
	go func() {
		_ = w.Run(ctx, 50*time.Millisecond, func(paths []string) {
			select {
			case changed <- paths:
			default:
			}
			cancel()
		})
	}()

	select {
	case paths := <-changed:
		abs, _ := filepath.Abs(watched)
		assert.Equal(t, []string{abs}, paths)
	case <-ctx.Done():
		t.Fatal("no change reported")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	w, err := New(filepath.Join(dir, "calc.yaml"))
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = w.Run(ctx, time.Millisecond, func([]string) { t.Fatal("unexpected change") })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCloseIsIdempotent(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "calc.yaml"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
