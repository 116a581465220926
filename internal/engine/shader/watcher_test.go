package shader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProgram struct {
	name     string
	sources  []string
	err      error
	attempts int
}

func (p *fakeProgram) Name() string      { return p.name }
func (p *fakeProgram) Sources() []string { return p.sources }
func (p *fakeProgram) Reload() error {
	p.attempts++
	return p.err
}

func newTestWatcher(t *testing.T) (*Watcher, string) {
	t.Helper()
	w, err := NewWatcher()
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })

	dir := t.TempDir()
	require.NoError(t, w.SetWatchDirectory(dir))
	return w, dir
}

func TestWatcherUpdateWithoutChanges(t *testing.T) {
	w, dir := newTestWatcher(t)
	p := &fakeProgram{name: "p", sources: []string{filepath.Join(dir, "a.vert")}}
	w.Register(p)

	start := time.Now()
	assert.Zero(t, w.Update())
	assert.Less(t, time.Since(start), 100*time.Millisecond, "update must not block")
	assert.Zero(t, p.attempts)
}

func TestWatcherReloadsAffectedProgram(t *testing.T) {
	w, dir := newTestWatcher(t)
	hit := &fakeProgram{name: "hit", sources: []string{filepath.Join(dir, "a.vert"), filepath.Join(dir, "a.frag")}}
	miss := &fakeProgram{name: "miss", sources: []string{filepath.Join(dir, "b.vert")}}
	w.Register(hit)
	w.Register(miss)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.frag"), []byte("x"), 0644))

	reloaded := 0
	assert.Eventually(t, func() bool {
		reloaded += w.Update()
		return reloaded > 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.Zero(t, miss.attempts)
	assert.Equal(t, reloaded, hit.attempts, "one reload per update that saw changes")
}

func TestWatcherFailedReloadIsNotCounted(t *testing.T) {
	w, dir := newTestWatcher(t)
	p := &fakeProgram{name: "broken", sources: []string{filepath.Join(dir, "a.vert")}, err: errors.New("compile error")}
	w.Register(p)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.vert"), []byte("x"), 0644))

	reloaded := 0
	assert.Eventually(t, func() bool {
		reloaded += w.Update()
		return p.attempts > 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.Zero(t, reloaded)
}

func TestSetWatchDirectoryMissing(t *testing.T) {
	w, err := NewWatcher()
	require.NoError(t, err)
	defer w.Close()

	assert.Error(t, w.SetWatchDirectory(filepath.Join(t.TempDir(), "missing")))
}
