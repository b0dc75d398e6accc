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

func startWatcher(t *testing.T, opts Options) (<-chan struct{}, *atomic.Int32) {
	t.Helper()
	opts.Debounce = 20 * time.Millisecond
	w, err := New(opts)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	rebuilt := make(chan struct{}, 16)
	var count atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(context.Context) error {
			count.Add(1)
			rebuilt <- struct{}{}
			return nil
		})
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return rebuilt, &count
}

func waitRebuild(t *testing.T, rebuilt <-chan struct{}) {
	t.Helper()
	select {
	case <-rebuilt:
	case <-time.After(5 * time.Second):
		t.Fatal("no rebuild after change")
	}
}

func assertNoRebuild(t *testing.T, rebuilt <-chan struct{}) {
	t.Helper()
	select {
	case <-rebuilt:
		t.Fatal("unexpected rebuild")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_RebuildsOnSourceChange(t *testing.T) {
	dir := t.TempDir()
	rebuilt, _ := startWatcher(t, Options{Dirs: []string{dir}})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.md"), []byte("x"), 0o600))
	waitRebuild(t, rebuilt)
}

func TestWatcher_FollowsNewDirectories(t *testing.T) {
	dir := t.TempDir()
	rebuilt, _ := startWatcher(t, Options{Dirs: []string{dir}})

	sub := filepath.Join(dir, "blog")
	require.NoError(t, os.Mkdir(sub, 0o750))
	waitRebuild(t, rebuilt)

	require.NoError(t, os.WriteFile(filepath.Join(sub, "post.md"), []byte("x"), 0o600))
	waitRebuild(t, rebuilt)
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	rebuilt, count := startWatcher(t, Options{Dirs: []string{dir}})

	for i := range 5 {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte{byte('a' + i)}, 0o600))
	}
	waitRebuild(t, rebuilt)
	assertNoRebuild(t, rebuilt)
	assert.Equal(t, int32(1), count.Load())
}

func TestWatcher_IgnoresNoise(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "build")
	require.NoError(t, os.Mkdir(out, 0o750))
	rebuilt, _ := startWatcher(t, Options{Dirs: []string{dir}, Ignore: []string{out}})

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".index.md.swp"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.md~"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(out, "index.html"), []byte("x"), 0o600))
	assertNoRebuild(t, rebuilt)
}

func TestWatcher_ConfigFileOnly(t *testing.T) {
	srcDir := t.TempDir()
	cfgDir := t.TempDir()
	cfgPath := filepath.Join(cfgDir, "contentbinder.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("space_id: a\n"), 0o600))

	rebuilt, _ := startWatcher(t, Options{Dirs: []string{srcDir}, Files: []string{cfgPath}})

	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "unrelated.txt"), []byte("x"), 0o600))
	assertNoRebuild(t, rebuilt)

	require.NoError(t, os.WriteFile(cfgPath, []byte("space_id: b\n"), 0o600))
	waitRebuild(t, rebuilt)
}

func TestWatcher_StopsOnCancel(t *testing.T) {
	w, err := New(Options{Dirs: []string{t.TempDir()}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, func(context.Context) error { return nil }) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestIgnoredName(t *testing.T) {
	for name, want := range map[string]bool{
		"index.md":     false,
		".hidden":      true,
		"post.md~":     true,
		"post.md.swp":  true,
		"#post.md#":    true,
		"Thumbs.db":    true,
		"contentful.y": false,
	} {
		assert.Equal(t, want, ignoredName(name), name)
	}
}
