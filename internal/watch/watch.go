// Package watch implements the automatic generation trigger: it
// monitors a repository's .git directory and fires a handler when a
// commit-message document appears, i.e. when git writes COMMIT_EDITMSG
// immediately before handing it to the user's editor.
//
// Triggering is create-only, and events produced while the handler is
// running are discarded, so the handler's own streaming flushes to the
// watched file never fire the trigger again.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// CommitMessageFile is the document name that identifies a
// commit-message document inside a .git directory.
const CommitMessageFile = "COMMIT_EDITMSG"

// settleDelay is how long the event queue must stay quiet after a
// handler invocation before new triggers are accepted again. Flush
// events from the handler's own document writes arrive within this
// window.
const settleDelay = 100 * time.Millisecond

// Handler is invoked with the full path of a newly created
// commit-message document. It runs on the watcher's event goroutine
// and should block until any in-place generation has finished, since
// events raised during its execution are dropped.
type Handler func(path string)

// Watcher fires a Handler when a commit-message document is created in
// a watched .git directory.
type Watcher struct {
	fsw     *fsnotify.Watcher
	gitDir  string
	handler Handler
}

// New creates a Watcher over the given .git directory.
func New(gitDir string, handler Handler) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(gitDir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", gitDir, err)
	}
	return &Watcher{fsw: fsw, gitDir: gitDir, handler: handler}, nil
}

// Run dispatches events until the context is cancelled or the
// underlying watcher closes. Per-event watch errors are ignored; they
// are not fatal to the rest of the pipeline.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.fsw.Close() }()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !triggers(event) {
				continue
			}
			w.handler(event.Name)
			w.settle(ctx)

		case _, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
		}
	}
}

// settle discards events until the queue has been quiet for
// settleDelay. Events raised by the handler's own writes to the
// watched directory queue up while the handler runs; consuming them
// here keeps a run from retriggering itself.
func (w *Watcher) settle(ctx context.Context) {
	timer := time.NewTimer(settleDelay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(settleDelay)
		case <-timer.C:
			return
		}
	}
}

// triggers reports whether an fsnotify event should fire the handler:
// creation of the commit-message document.
func triggers(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) {
		return false
	}
	return filepath.Base(event.Name) == CommitMessageFile
}
