// Package watcher processes URL list files dropped into an inbox directory.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/guiyumin/vsum/internal/core/logger"
)

// Suffixes appended to a list file once it has been handled.
const (
	DoneSuffix   = ".done"
	FailedSuffix = ".failed"
)

// EventHandler is a function that handles one URL list file
type EventHandler func(ctx context.Context, filePath string) error

// Watcher hands every .txt file written into a directory to a handler, one
// file at a time, and renames it afterwards so it is not picked up again.
type Watcher struct {
	inputDir string
	handler  EventHandler
	logger   logger.Logger
	watcher  *fsnotify.Watcher

	// settle is how long a file must go without events before it is handled.
	settle time.Duration
}

// New creates a Watcher for inputDir.
func New(inputDir string, handler EventHandler, log logger.Logger) (*Watcher, error) {
	if log == nil {
		log = logger.Nop()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(inputDir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	return &Watcher{
		inputDir: inputDir,
		handler:  handler,
		logger:   log,
		watcher:  watcher,
		settle:   500 * time.Millisecond,
	}, nil
}

// Start handles list files already in the directory, then new ones as they
// appear, until ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "Watching %s for URL lists (*.txt)", w.inputDir)

	work := make(chan string, 64)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for path := range work {
			w.process(ctx, path)
		}
	}()
	defer func() {
		close(work)
		wg.Wait()
	}()

	pending := make(map[string]time.Time)
	existing, err := os.ReadDir(w.inputDir)
	if err != nil {
		return fmt.Errorf("read %s: %w", w.inputDir, err)
	}
	for _, entry := range existing {
		path := filepath.Join(w.inputDir, entry.Name())
		if !entry.IsDir() && isURLList(path) {
			pending[path] = time.Time{}
		}
	}

	ticker := time.NewTicker(w.settle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "File watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !isURLList(event.Name) {
				w.logger.Debug(ctx, "Ignoring %s", event.Name)
				continue
			}
			// Writes keep pushing the deadline back until the file settles.
			pending[event.Name] = time.Now()

		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) < w.settle {
					continue
				}
				delete(pending, path)
				select {
				case work <- path:
				case <-ctx.Done():
					return ctx.Err()
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

// Stop closes the file watcher
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

func (w *Watcher) process(ctx context.Context, path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}

	w.logger.Info(ctx, "Processing %s", path)
	suffix := DoneSuffix
	if err := w.handler(ctx, path); err != nil {
		w.logger.Error(ctx, "Failed to process %s: %v", path, err)
		suffix = FailedSuffix
	}

	if err := os.Rename(path, path+suffix); err != nil {
		w.logger.Error(ctx, "Failed to mark %s as handled: %v", path, err)
	}
}

// isURLList reports whether path names a visible .txt file.
func isURLList(path string) bool {
	base := filepath.Base(path)
	return !strings.HasPrefix(base, ".") && strings.EqualFold(filepath.Ext(base), ".txt")
}
