package watcher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/iconforge/export"
)

type call struct {
	adds, deletes []string
}

type fakeBuilder struct {
	mu    sync.Mutex
	calls []call
	err   error
}

func (b *fakeBuilder) Incremental(_ context.Context, adds, deletes []string) (*export.Manifest, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, call{adds: adds, deletes: deletes})
	if b.err != nil {
		return nil, b.err
	}
	return export.NewManifest(), nil
}

func (b *fakeBuilder) Calls() []call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]call(nil), b.calls...)
}

func newTestWatcher(t *testing.T, b Builder) (*Watcher, string) {
	t.Helper()
	root := t.TempDir()
	for _, d := range []string{"nocolors", "colors"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, d), 0755))
	}
	w, err := New(Config{
		IconsRoot:     root,
		Dirs:          []string{"nocolors", "colors"},
		DebounceDelay: 20 * time.Millisecond,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, b)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })
	return w, root
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func (w *Watcher) mark(path string) {
	w.pendingMu.Lock()
	w.pending[path] = fsnotify.Write
	w.pendingMu.Unlock()
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{IconsRoot: "x", Dirs: []string{"a"}}, nil)
	assert.Error(t, err)

	_, err = New(Config{}, &fakeBuilder{})
	assert.Error(t, err)
}

func TestRelative(t *testing.T) {
	w, root := newTestWatcher(t, &fakeBuilder{})

	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{filepath.Join(root, "nocolors", "home.svg"), "nocolors/home.svg", true},
		{filepath.Join(root, "colors", "sub", "flag.SVG"), "colors/sub/flag.SVG", true},
		{filepath.Join(root, "nocolors", "optimize.yaml"), "", false},
		{filepath.Join(root, "other", "home.svg"), "", false},
		{filepath.Join(root, "home.svg"), "", false},
		{filepath.Join(filepath.Dir(root), "elsewhere.svg"), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := w.relative(tt.path)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestFlushPending(t *testing.T) {
	b := &fakeBuilder{}
	w, root := newTestWatcher(t, b)

	existing := filepath.Join(root, "nocolors", "home.svg")
	removed := filepath.Join(root, "colors", "flag.svg")
	write(t, existing, "<svg/>")
	write(t, removed, "<svg/>")
	require.NoError(t, w.Seed())

	// Unchanged content is skipped.
	w.mark(existing)
	w.flushPending(context.Background())
	assert.Empty(t, b.Calls())

	added := filepath.Join(root, "colors", "new.svg")
	write(t, added, "<svg/>")
	write(t, existing, "<svg><path d=\"M0 0\"/></svg>")
	require.NoError(t, os.Remove(removed))

	w.mark(existing)
	w.mark(added)
	w.mark(removed)
	w.flushPending(context.Background())

	calls := b.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"colors/new.svg", "nocolors/home.svg"}, calls[0].adds)
	assert.Equal(t, []string{"colors/flag.svg"}, calls[0].deletes)

	batch := <-w.Results()
	assert.NoError(t, batch.Error)
	assert.NotNil(t, batch.Manifest)
}

func TestFlushPending_UnknownDeleteIgnored(t *testing.T) {
	b := &fakeBuilder{}
	w, root := newTestWatcher(t, b)

	w.mark(filepath.Join(root, "nocolors", "ghost.svg"))
	w.flushPending(context.Background())
	assert.Empty(t, b.Calls())
}

func TestFlushPending_FailureRetries(t *testing.T) {
	b := &fakeBuilder{err: errors.New("boom")}
	w, root := newTestWatcher(t, b)

	icon := filepath.Join(root, "nocolors", "home.svg")
	write(t, icon, "<svg/>")

	w.mark(icon)
	w.flushPending(context.Background())
	batch := <-w.Results()
	assert.EqualError(t, batch.Error, "boom")

	// Same content is retried because the failed hash was forgotten.
	b.mu.Lock()
	b.err = nil
	b.mu.Unlock()
	w.mark(icon)
	w.flushPending(context.Background())
	assert.Len(t, b.Calls(), 2)
}

func TestWatcher_DetectsChanges(t *testing.T) {
	b := &fakeBuilder{}
	w, root := newTestWatcher(t, b)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	write(t, filepath.Join(root, "nocolors", "home.svg"), "<svg/>")

	select {
	case batch := <-w.Results():
		require.NoError(t, batch.Error)
		assert.Equal(t, []string{"nocolors/home.svg"}, batch.Adds)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a build")
	}
}
