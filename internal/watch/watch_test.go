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
)

func TestIsTestData(t *testing.T) {
	assert.True(t, IsTestData("suite.robot"))
	assert.True(t, IsTestData("dir/Common.RESOURCE"))
	assert.True(t, IsTestData("data.tsv"))
	assert.False(t, IsTestData("notes.md"))
	assert.False(t, IsTestData("robot"))
}

type changes struct {
	mu    sync.Mutex
	paths []string
}

func (c *changes) add(p string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paths = append(c.paths, p)
}

func (c *changes) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.paths...)
}

func startWatcher(t *testing.T, dir string, c *changes) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{Debounce: 50 * time.Millisecond, OnChange: c.add}
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, []string{dir}) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})
	// Give the watcher time to register.
	time.Sleep(100 * time.Millisecond)
}

func TestWatcher_DebouncesBurstOfWrites(t *testing.T) {
	dir := t.TempDir()
	var c changes
	startWatcher(t, dir, &c)

	path := filepath.Join(dir, "suite.robot")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("*** Test Cases ***\n"), 0o644))
		time.Sleep(5 * time.Millisecond)
	}

	assert.Eventually(t, func() bool { return len(c.snapshot()) == 1 }, 2*time.Second, 20*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, []string{path}, c.snapshot())
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	var c changes
	startWatcher(t, dir, &c)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kw.resource"), []byte("x"), 0o644))

	assert.Eventually(t, func() bool { return len(c.snapshot()) == 1 }, 2*time.Second, 20*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, []string{filepath.Join(dir, "kw.resource")}, c.snapshot())
}

func TestWatcher_StopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- (&Watcher{}).Run(ctx, []string{dir}) }()
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_MissingDirectory(t *testing.T) {
	err := (&Watcher{}).Run(context.Background(), []string{filepath.Join(t.TempDir(), "nope")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watching")
}
