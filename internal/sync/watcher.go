// Package sync notices outside edits to the checklist document so the
// terminal UI can reload it.
package sync

import (
	"fmt"
	"path/filepath"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

// FileChangedMsg is a tea.Msg sent when the watched file was written,
// created, renamed or removed.
type FileChangedMsg struct {
	Path string
}

// WatchErrorMsg is a tea.Msg carrying an error reported by the watcher.
type WatchErrorMsg struct {
	Err error
}

// defaultDebounce groups the burst of events a single save produces.
const defaultDebounce = 200 * time.Millisecond

// Watcher reports changes to one file. It watches the parent directory
// so files replaced by rename are still seen.
type Watcher struct {
	path     string
	debounce time.Duration
	fsw      *fsnotify.Watcher
	resultCh chan tea.Msg
	stopCh   chan struct{}
	mu       gosync.Mutex
	running  bool
}

// New creates a Watcher for path. A non-positive debounce uses the default.
func New(path string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		path:     abs,
		debounce: debounce,
		fsw:      fsw,
		resultCh: make(chan tea.Msg, 16),
		stopCh:   make(chan struct{}),
	}, nil
}

// Start begins processing file events and returns a tea.Cmd that waits
// for the first change.
func (w *Watcher) Start() tea.Cmd {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	go w.loop()
	return w.WaitForChange()
}

// Stop halts the watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return w.fsw.Close()
	}
	close(w.stopCh)
	w.running = false
	return w.fsw.Close()
}

func (w *Watcher) loop() {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-w.stopCh:
			if timer != nil {
				timer.Stop()
			}
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
				!ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.send(FileChangedMsg{Path: w.path})

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.send(WatchErrorMsg{Err: err})
		}
	}
}

// send delivers a message without blocking; a full channel already has a
// pending change to report.
func (w *Watcher) send(msg tea.Msg) {
	select {
	case w.resultCh <- msg:
	default:
	}
}

// WaitForChange returns a tea.Cmd that blocks until the next change. Call
// it again after handling each message to keep listening.
func (w *Watcher) WaitForChange() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-w.resultCh:
			return msg
		case <-w.stopCh:
			return nil
		}
	}
}
