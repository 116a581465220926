package shader

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/radiance-viewer/internal/logger"
)

// Reloadable is something built from source files.
type Reloadable interface {
	Name() string
	Sources() []string
	Reload() error
}

// Watcher reloads registered programs when their sources change.
// Update is meant to be called once per frame and never blocks.
type Watcher struct {
	fs       *fsnotify.Watcher
	dir      string
	programs []Reloadable
	log      *zap.Logger
}

// NewWatcher creates a watcher with no directory.
func NewWatcher() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create shader watcher: %w", err)
	}
	return &Watcher{fs: fw, log: logger.Named("shader")}, nil
}

// SetWatchDirectory replaces the watched directory.
func (w *Watcher) SetWatchDirectory(dir string) error {
	if w.dir != "" {
		if err := w.fs.Remove(w.dir); err != nil {
			w.log.Debug("unwatch failed", zap.String("dir", w.dir), zap.Error(err))
		}
		w.dir = ""
	}
	if err := w.fs.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.dir = dir
	w.log.Info("watching shader directory", zap.String("dir", dir))
	return nil
}

// Register adds a program to reload when one of its sources changes.
func (w *Watcher) Register(p Reloadable) {
	w.programs = append(w.programs, p)
}

// Update drains pending file events and reloads each affected program
// once. It returns the number of successful reloads. Failed reloads are
// logged and leave the program unchanged.
func (w *Watcher) Update() int {
	changed := make(map[string]bool)
drain:
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				break drain
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				changed[absPath(ev.Name)] = true
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				break drain
			}
			w.log.Warn("shader watch error", zap.Error(err))
		default:
			break drain
		}
	}
	if len(changed) == 0 {
		return 0
	}

	reloaded := 0
	for _, p := range w.programs {
		if !affected(p, changed) {
			continue
		}
		if err := p.Reload(); err != nil {
			w.log.Error("shader reload failed, keeping previous program",
				zap.String("program", p.Name()), zap.Error(err))
			continue
		}
		reloaded++
	}
	return reloaded
}

func affected(p Reloadable, changed map[string]bool) bool {
	for _, src := range p.Sources() {
		if changed[absPath(src)] {
			return true
		}
	}
	return false
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fs.Close()
}
