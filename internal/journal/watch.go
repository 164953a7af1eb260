package journal

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher signals when the journal database changes on disk. It backs the
// history --follow mode: each signal means new entries may have been
// appended and the caller should re-query.
type Watcher struct {
	fsw *fsnotify.Watcher

	// Events receives one value per observed journal change. The channel
	// is closed when the watcher shuts down.
	Events chan struct{}
}

// Watch starts watching the journal database at path. The containing
// directory is watched rather than the file itself so that SQLite's WAL
// side files and journal rotation are picked up too.
func Watch(path string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create journal watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w := &Watcher{
		fsw:    fsw,
		Events: make(chan struct{}, 1),
	}
	go w.run(path)

	return w, nil
}

func (w *Watcher) run(path string) {
	defer close(w.Events)

	base := filepath.Base(path)
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !relatedToJournal(filepath.Base(ev.Name), base) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			// Coalesce bursts: a pending signal is enough.
			select {
			case w.Events <- struct{}{}:
			default:
			}
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

// relatedToJournal reports whether name is the journal database or one of
// its SQLite side files (-wal, -shm).
func relatedToJournal(name, base string) bool {
	return name == base || name == base+"-wal" || name == base+"-shm"
}

// Close stops the watcher and closes the Events channel.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
