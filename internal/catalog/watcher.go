package catalog

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"levelup/pkg/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const defaultDebounce = 250 * time.Millisecond

// Watcher calls OnChange after the catalog file is written, created or
// renamed into place. Bursts of events within the debounce window collapse
// into one call.
type Watcher struct {
	path     string
	onChange func(ctx context.Context) error
	debounce time.Duration

	watcher  *fsnotify.Watcher
	stopChan chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	started  atomic.Bool
}

func NewWatcher(path string, onChange func(ctx context.Context) error) (*Watcher, error) {
	if path == "" {
		return nil, errors.New("catalog watcher requires a file path")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve catalog path")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create file watcher")
	}

	// Editors often replace the file, so the directory is watched instead.
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, errors.Wrap(err, "failed to watch catalog directory")
	}

	return &Watcher{
		path:     abs,
		onChange: onChange,
		debounce: defaultDebounce,
		watcher:  fw,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

func (w *Watcher) Start(ctx context.Context) {
	if w.started.CompareAndSwap(false, true) {
		go w.run(ctx)
	}
}

func (w *Watcher) run(ctx context.Context) {
	log := logger.Logger()
	defer close(w.done)

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn("catalog watcher error", zap.Error(err))
		case <-fire:
			fire = nil
			if err := w.onChange(ctx); err != nil {
				log.Error("failed to apply catalog change", zap.String("path", w.path), zap.Error(err))
				continue
			}
			log.Info("catalog change applied", zap.String("path", w.path))
		}
	}
}

// Stop ends the watch loop and releases the underlying watcher.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stopChan)
		err = w.watcher.Close()
		if w.started.Load() {
			<-w.done
		}
	})
	return err
}
