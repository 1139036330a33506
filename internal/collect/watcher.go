package collect

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nixdex/nixdex/internal/models"
	"github.com/sirupsen/logrus"
)

// Watcher monitors declaration sources for changes. Editors typically
// produce a burst of events per save; the watcher reports one settled
// change per burst, once the debounce interval passes without a further
// event.
type Watcher struct {
	Changes <-chan struct{} // Read-only external channel

	debounce time.Duration
	paths    []string
	watched  map[string]bool

	changes chan struct{} // Internal write channel
	done    chan struct{}
	watcher *fsnotify.Watcher
	events  <-chan fsnotify.Event
	errors  <-chan error
}

// NewWatcher creates a watcher for the given declaration sources.
func NewWatcher(paths []string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		return nil, &models.IndexError{
			Type: models.ErrConfigRead,
			Err:  fmt.Errorf("debounce must be positive, got %s", debounce),
		}
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ch := make(chan struct{}, 1)
	w := &Watcher{
		Changes:  ch,
		debounce: debounce,
		paths:    paths,
		watched:  make(map[string]bool, len(paths)),
		changes:  ch,
		done:     make(chan struct{}),
		watcher:  fw,
		events:   fw.Events,
		errors:   fw.Errors,
	}
	return w, nil
}

// Start begins watching the declaration sources. Their parent
// directories are registered rather than the sources themselves so
// editors that replace files on save are still seen; events for
// unrelated siblings are filtered out.
func (w *Watcher) Start() error {
	for _, path := range w.paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		w.watched[abs] = true
		if err := w.watcher.Add(filepath.Dir(abs)); err != nil {
			return err
		}
	}

	go w.loop()
	return nil
}

// Stop closes the watcher and the Changes channel.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done // Wait for loop to exit
	close(w.changes)
}

func (w *Watcher) loop() {
	defer close(w.done)

	// Debounce: a burst is settled once a full interval passes with no
	// further event.
	var pending time.Time
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.events:
			if !ok {
				return
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !w.watched[abs] {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				pending = time.Now()
			}

		case <-ticker.C:
			if pending.IsZero() || time.Since(pending) < w.debounce {
				continue
			}
			pending = time.Time{}
			w.emit()

		case err, ok := <-w.errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal
			logrus.Warnf("Watch error: %v", err)
		}
	}
}

// emit signals one settled change. The channel holds one notification;
// when the consumer has not drained the previous one yet, that one
// already covers this burst.
func (w *Watcher) emit() {
	select {
	case w.changes <- struct{}{}:
	default:
	}
}
