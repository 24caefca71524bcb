// Package watch re-runs a callback when Robot Framework test data changes on disk.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the burst of writes editors emit on save.
const DefaultDebounce = 300 * time.Millisecond

// Extensions are the file suffixes treated as test data.
var Extensions = []string{".robot", ".resource", ".txt", ".tsv"}

// IsTestData reports whether path carries one of Extensions.
func IsTestData(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

type Watcher struct {
	Debounce time.Duration
	Logger   *slog.Logger
	// OnChange is called once per settled file, never concurrently.
	OnChange func(path string)
}

// Run watches dirs until ctx is done. Directories are not walked; pass every
// directory that should be observed.
func (w *Watcher) Run(ctx context.Context, dirs []string) error {
	log := w.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	log = log.With(slog.String("component", "watch"))
	delay := w.Debounce
	if delay <= 0 {
		delay = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer watcher.Close()

	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		log.Info("watching", slog.String("dir", dir))
	}

	var (
		mu       sync.Mutex
		callback sync.Mutex
		debounce = make(map[string]*time.Timer)
	)
	defer func() {
		mu.Lock()
		for _, t := range debounce {
			t.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !IsTestData(ev.Name) {
				continue
			}
			if info, err := os.Stat(ev.Name); err != nil || info.IsDir() {
				continue
			}

			path := ev.Name
			mu.Lock()
			if t, exists := debounce[path]; exists {
				t.Stop()
			}
			debounce[path] = time.AfterFunc(delay, func() {
				mu.Lock()
				delete(debounce, path)
				mu.Unlock()
				if ctx.Err() != nil {
					return
				}
				log.Debug("changed", slog.String("file", path))
				callback.Lock()
				defer callback.Unlock()
				if w.OnChange != nil {
					w.OnChange(path)
				}
			})
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", slog.Any("error", err))
		}
	}
}
