// Package watcher regenerates icons as their source files change. Changes
// are collected for one debounce interval, filtered by content hash and
// applied as a single incremental build.
package watcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/c360studio/iconforge/export"
)

// DefaultDebounce is used when Config.DebounceDelay is zero.
const DefaultDebounce = 150 * time.Millisecond

// Builder applies incremental changes. *generator.Generator satisfies it.
type Builder interface {
	Incremental(ctx context.Context, adds, deletes []string) (*export.Manifest, error)
}

// Config configures the watcher
type Config struct {
	// IconsRoot is the directory holding the type directories
	IconsRoot string

	// Dirs are the type directory names under IconsRoot
	Dirs []string

	// Match selects icon files by path relative to their type directory.
	// Defaults to any .svg file.
	Match func(rel string) bool

	// DebounceDelay is how long to wait for more changes before processing
	DebounceDelay time.Duration

	// Logger for logging events
	Logger *slog.Logger
}

// Batch is the outcome of one flush.
type Batch struct {
	// Adds and Deletes are paths relative to the icons root
	Adds    []string
	Deletes []string

	// Manifest is the manifest after the build (nil on error)
	Manifest *export.Manifest

	// Error if the build failed
	Error error
}

// Watcher watches the icon directories and drives incremental builds
type Watcher struct {
	config  Config
	builder Builder
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	// Debouncing: collect changes before processing
	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op // absolute path → most recent operation

	// State tracking for change detection
	hashMu sync.RWMutex
	hashes map[string]string // relative path → content hash

	results chan Batch
}

// New creates a watcher feeding builder
func New(config Config, builder Builder) (*Watcher, error) {
	if builder == nil {
		return nil, fmt.Errorf("builder is required")
	}
	if config.IconsRoot == "" || len(config.Dirs) == 0 {
		return nil, fmt.Errorf("icons root and directories are required")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.DebounceDelay <= 0 {
		config.DebounceDelay = DefaultDebounce
	}
	if config.Match == nil {
		config.Match = func(rel string) bool {
			return strings.EqualFold(filepath.Ext(rel), ".svg")
		}
	}

	return &Watcher{
		config:  config,
		builder: builder,
		watcher: fsw,
		logger:  config.Logger,
		pending: make(map[string]fsnotify.Op),
		hashes:  make(map[string]string),
		results: make(chan Batch, 16),
	}, nil
}

// Results returns the channel of build outcomes
func (w *Watcher) Results() <-chan Batch {
	return w.results
}

// Start seeds content hashes and begins watching
func (w *Watcher) Start(ctx context.Context) error {
	for _, dir := range w.config.Dirs {
		root := filepath.Join(w.config.IconsRoot, dir)
		if err := os.MkdirAll(root, 0755); err != nil {
			return fmt.Errorf("create %s: %w", root, err)
		}
		if err := w.addWatchesRecursive(root); err != nil {
			return err
		}
	}
	if err := w.Seed(); err != nil {
		return err
	}

	go w.processEvents(ctx)

	w.logger.Info("Icon watcher started",
		"root", w.config.IconsRoot,
		"dirs", w.config.Dirs,
		"debounce", w.config.DebounceDelay)
	return nil
}

// Stop stops the watcher
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

// Seed records the hash of every current icon so unchanged files are
// skipped after the initial build.
func (w *Watcher) Seed() error {
	for _, dir := range w.config.Dirs {
		root := filepath.Join(w.config.IconsRoot, dir)
		err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				if os.IsNotExist(err) {
					return nil
				}
				return err
			}
			if d.IsDir() {
				return nil
			}
			rel, ok := w.relative(path)
			if !ok {
				return nil
			}
			hash, err := hashFile(path)
			if err != nil {
				return err
			}
			w.setHash(rel, hash)
			return nil
		})
		if err != nil {
			return fmt.Errorf("seed hashes: %w", err)
		}
	}
	return nil
}

// relative maps an absolute path to "<dir>/<rel>" when it is a watched
// icon file.
func (w *Watcher) relative(path string) (string, bool) {
	rel, err := filepath.Rel(w.config.IconsRoot, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	dir, inDir, ok := strings.Cut(rel, "/")
	if !ok {
		return "", false
	}
	for _, d := range w.config.Dirs {
		if d == dir {
			return rel, w.config.Match(inDir)
		}
	}
	return "", false
}

func (w *Watcher) setHash(rel, hash string) {
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	w.hashes[rel] = hash
}

func (w *Watcher) getHash(rel string) (string, bool) {
	w.hashMu.RLock()
	defer w.hashMu.RUnlock()
	hash, ok := w.hashes[rel]
	return hash, ok
}

func (w *Watcher) deleteHash(rel string) {
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	delete(w.hashes, rel)
}

// addWatchesRecursive adds watches to all directories
func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory",
				"path", path,
				"error", err)
		} else {
			w.logger.Debug("Watching directory", "path", path)
		}
		return nil
	})
}

// processEvents handles fsnotify events with debouncing
func (w *Watcher) processEvents(ctx context.Context) {
	ticker := time.NewTicker(w.config.DebounceDelay)
	defer ticker.Stop()
	defer close(w.results)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			w.flushPending(ctx)
		}
	}
}

// handleFSEvent records a single fsnotify event
func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	path := event.Name

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := w.addWatchesRecursive(path); err != nil {
				w.logger.Warn("Failed to watch new directory", "path", path, "error", err)
			}
			return
		}
	}

	rel, ok := w.relative(path)
	if !ok {
		return
	}

	w.pendingMu.Lock()
	w.pending[path] = event.Op
	w.pendingMu.Unlock()

	w.logger.Debug("Icon change detected",
		"path", rel,
		"op", event.Op.String())
}

// flushPending turns accumulated changes into one incremental build. The
// file system is the authority: a pending path that exists is an
// addition, one that does not is a deletion.
func (w *Watcher) flushPending(ctx context.Context) {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	toProcess := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	var adds, deletes []string
	for path := range toProcess {
		rel, ok := w.relative(path)
		if !ok {
			continue
		}

		hash, err := hashFile(path)
		if os.IsNotExist(err) {
			if _, known := w.getHash(rel); known {
				w.deleteHash(rel)
				deletes = append(deletes, rel)
			}
			continue
		}
		if err != nil {
			w.logger.Warn("Failed to read icon", "path", rel, "error", err)
			continue
		}

		if old, known := w.getHash(rel); known && old == hash {
			continue
		}
		w.setHash(rel, hash)
		adds = append(adds, rel)
	}

	if len(adds) == 0 && len(deletes) == 0 {
		return
	}
	sort.Strings(adds)
	sort.Strings(deletes)

	batch := Batch{Adds: adds, Deletes: deletes}
	batch.Manifest, batch.Error = w.builder.Incremental(ctx, adds, deletes)
	if batch.Error != nil {
		// Forget the hashes so the next save retries.
		for _, rel := range adds {
			w.deleteHash(rel)
		}
		w.logger.Error("Incremental build failed", "error", batch.Error)
	}
	w.send(batch)
}

// send delivers a batch to the results channel
func (w *Watcher) send(batch Batch) {
	select {
	case w.results <- batch:
	default:
		w.logger.Warn("Result channel full, dropping batch",
			"adds", len(batch.Adds),
			"deletes", len(batch.Deletes))
	}
}

func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
