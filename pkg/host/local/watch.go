package local

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/papercomputeco/verso/pkg/host"
)

// OnSelectionChange watches selection.txt and calls handler with the trimmed
// selection whenever it differs from the previous one. Removing the file
// reports an empty selection. handler is never called after unsubscribe
// returns.
func (h *Host) OnSelectionChange(handler host.SelectionHandler) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	if err := watcher.Add(h.dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", h.dir, err)
	}

	initial, _ := h.Selection(context.Background())

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.watchSelection(watcher, handler, initial, done)
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			_ = watcher.Close()
			wg.Wait()
		})
	}, nil
}

func (h *Host) watchSelection(w *fsnotify.Watcher, handler host.SelectionHandler, last string, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return

		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != SelectionFile {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) {
				continue
			}

			text, err := h.Selection(context.Background())
			if err != nil {
				h.logger.Warn("reading selection", "error", err)
				continue
			}
			if text == last {
				continue
			}
			last = text

			select {
			case <-done:
				return
			default:
			}
			handler(text)

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			h.logger.Error("fsnotify error", "error", err)
		}
	}
}
