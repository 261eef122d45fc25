package filesystem

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"media-catalog/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// EventType classifies a vault change.
type EventType string

// Vault change types.
const (
	EventCreate EventType = "create"
	EventModify EventType = "modify"
	EventDelete EventType = "delete"
	EventRename EventType = "rename"
)

// Event is a vault change. OldPath is set for renames only.
type Event struct {
	Type    EventType
	Path    string
	OldPath string
}

// DefaultRenameWindow is how long a rename waits for its matching create
// before it is reported as a delete.
const DefaultRenameWindow = 500 * time.Millisecond

// Watcher turns fsnotify events under a vault into vault Events.
//
// fsnotify reports a move as Rename on the old name followed by Create on
// the new one. The watcher pairs them into a single EventRename when the
// create arrives within the rename window; a rename without a create (the
// file left the vault) becomes EventDelete.
type Watcher struct {
	vault        *OSVault
	fsw          *fsnotify.Watcher
	events       chan Event
	renameWindow time.Duration
	done         chan struct{}
	closeOnce    sync.Once
	wg           sync.WaitGroup
	watched      int
}

// NewWatcher creates a watcher for every non-hidden directory of the vault.
func NewWatcher(v *OSVault, renameWindow time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		observe().ObserveWatcherError()
		return nil, err
	}
	if renameWindow <= 0 {
		renameWindow = DefaultRenameWindow
	}

	w := &Watcher{
		vault:        v,
		fsw:          fsw,
		events:       make(chan Event, 64),
		renameWindow: renameWindow,
		done:         make(chan struct{}),
	}

	w.addTree(v.Root())
	logging.Debug("Vault watcher started, watching %d directories", w.watched)

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Events returns the channel of vault changes. It is closed by Close.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Close stops the watcher and closes the Events channel.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fsw.Close()
		w.wg.Wait()
	})
	return err
}

// addTree watches dir and every non-hidden directory below it.
func (w *Watcher) addTree(dir string) {
	err := filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != w.vault.Root() && IsHidden(d.Name()) {
			return filepath.SkipDir
		}
		if addErr := w.fsw.Add(p); addErr != nil {
			logging.Warn("failed to add path to watcher %s: %v", p, addErr)
			observe().ObserveWatcherError()
			return nil
		}
		w.watched++
		return nil
	})
	if err != nil {
		logging.Error("failed to walk vault for watcher: %v", err)
		observe().ObserveWatcherError()
	}
	observe().SetWatchedDirectories(w.watched)
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	defer close(w.events)

	var (
		pending string
		timer   *time.Timer
		timerC  <-chan time.Time
	)

	stopTimer := func() {
		if timer != nil {
			timer.Stop()
		}
		timerC = nil
	}

	// flushPending reports an unmatched rename as a delete.
	flushPending := func() {
		if pending == "" {
			return
		}
		w.emit(Event{Type: EventDelete, Path: pending})
		pending = ""
		stopTimer()
	}

	for {
		select {
		case <-w.done:
			stopTimer()
			return

		case <-timerC:
			timerC = nil
			flushPending()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logging.Error("Watcher error: %v", err)
			observe().ObserveWatcherError()

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}

			rel, err := w.vault.Rel(ev.Name)
			if err != nil || rel == "." || HasHiddenSegment(rel) {
				continue
			}

			switch {
			case ev.Op&fsnotify.Rename != 0:
				flushPending()
				pending = rel
				timer = time.NewTimer(w.renameWindow)
				timerC = timer.C

			case ev.Op&fsnotify.Create != 0:
				isDir := false
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					isDir = true
					w.addTree(ev.Name)
				}
				if pending != "" {
					old := pending
					pending = ""
					stopTimer()
					w.emit(Event{Type: EventRename, Path: rel, OldPath: old})
					continue
				}
				if isDir {
					w.emitTree(ev.Name)
					continue
				}
				w.emit(Event{Type: EventCreate, Path: rel})

			case ev.Op&fsnotify.Write != 0:
				w.emit(Event{Type: EventModify, Path: rel})

			case ev.Op&fsnotify.Remove != 0:
				w.emit(Event{Type: EventDelete, Path: rel})
			}
		}
	}
}

// emitTree reports every file under a directory that appeared in one piece.
func (w *Watcher) emitTree(dir string) {
	_ = filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if IsHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if rel, err := w.vault.Rel(p); err == nil {
			w.emit(Event{Type: EventCreate, Path: rel})
		}
		return nil
	})
}

func (w *Watcher) emit(ev Event) {
	observe().ObserveWatcherEvent(string(ev.Type))
	select {
	case w.events <- ev:
	case <-w.done:
	}
}
