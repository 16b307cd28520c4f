package file

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/aoflow/pkg/domain"
	"github.com/fsnotify/fsnotify"
)

// Loader implements ports.GraphLoader and ports.Watchable over a single
// snapshot document.
type Loader struct {
	Path   string
	Logger *slog.Logger
}

// NewLoader creates a loader for path (JSON, or YAML for .yaml/.yml).
func NewLoader(path string) *Loader {
	return &Loader{Path: path, Logger: slog.New(slog.DiscardHandler)}
}

// Load reads and validates the snapshot.
func (l *Loader) Load(ctx context.Context) (*domain.Snapshot, error) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrGraphNotFound, l.Path)
		}
		return nil, fmt.Errorf("failed to read graph file: %w", err)
	}
	snap, err := Decode(data, FormatOf(l.Path))
	if err != nil {
		return nil, err
	}
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("invalid graph %s: %w", l.Path, err)
	}
	return snap, nil
}

// Watch signals whenever the document is written, created or renamed into
// place. The parent directory is watched so atomic saves are seen.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	abs, err := filepath.Abs(l.Path)
	if err != nil {
		_ = watcher.Close()
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
					continue
				}
				select {
				case ch <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				l.Logger.Warn("graph watcher error", "path", l.Path, "err", err)
			}
		}
	}()
	return ch, nil
}
