package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Tiliavir/file-time-tracker/internal/logger"
	"github.com/Tiliavir/file-time-tracker/internal/session"
)

// Source publishes lifecycle events on out until ctx is done or its input ends.
type Source interface {
	Run(ctx context.Context, out chan<- session.Event) error
}

// settle is how long writes to one file are folded into a single save.
// Editors emit several WRITE events per save.
const settle = 100 * time.Millisecond

// Holder reports whether a file is the one currently being timed.
type Holder interface {
	Holds(path string) bool
}

// FSSource derives lifecycle events from file system activity under the
// workspace roots. A write to a file that is not held makes it active, further
// writes to the held file are saves, and removing or renaming it closes it.
type FSSource struct {
	roots   []string
	exclude string
	logger  logger.Logger
	holder  Holder
	now     func() time.Time

	current   string
	lastFile  string
	lastWrite time.Time
}

// NewFSSource watches every non-hidden directory under roots except exclude,
// which is normally the directory holding the time log.
func NewFSSource(roots []string, exclude string, log logger.Logger) *FSSource {
	if exclude != "" {
		if abs, err := filepath.Abs(exclude); err == nil {
			exclude = abs
		}
	}
	return &FSSource{roots: roots, exclude: filepath.Clean(exclude), logger: log, now: time.Now}
}

// WithHolder makes the source ask h which file is held instead of tracking it
// alone. Use it when other sources also switch files.
func (s *FSSource) WithHolder(h Holder) *FSSource {
	s.holder = h
	return s
}

func (s *FSSource) holds(path string) bool {
	if s.holder != nil {
		return s.holder.Holds(path)
	}
	return path == s.current
}

// burst reports whether a write to path follows the previous one within settle.
func (s *FSSource) burst(path string) bool {
	now := s.now()
	same := path == s.lastFile && now.Sub(s.lastWrite) < settle
	s.lastFile, s.lastWrite = path, now
	return same
}

func (s *FSSource) Run(ctx context.Context, out chan<- session.Event) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer w.Close()

	for _, root := range s.roots {
		if err := s.addTree(w, root); err != nil {
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := s.addTree(w, ev.Name); err != nil {
						s.logger.Warnf(logger.TypeWatcher, "%v", err)
					}
					continue
				}
			}
			e, ok := s.translate(ev)
			if !ok {
				continue
			}
			select {
			case out <- e:
			case <-ctx.Done():
				return nil
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Warnf(logger.TypeWatcher, "watch error: %v", err)
		}
	}
}

func (s *FSSource) addTree(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walking %s: %w", path, err)
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && s.skipped(path) {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		s.logger.Debugf(logger.TypeWatcher, "watching %s", path)
		return nil
	})
}

// skipped reports paths that never produce events: hidden names, editor
// backups and anything under the excluded directory.
func (s *FSSource) skipped(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return true
	}
	if s.exclude == "." || s.exclude == "" {
		return false
	}
	clean := filepath.Clean(path)
	return clean == s.exclude || strings.HasPrefix(clean, s.exclude+string(filepath.Separator))
}

func (s *FSSource) translate(ev fsnotify.Event) (session.Event, bool) {
	if s.skipped(ev.Name) {
		return session.Event{}, false
	}
	switch {
	case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
		if ev.Name == s.lastFile {
			s.lastFile = ""
		}
		if !s.holds(ev.Name) {
			return session.Event{}, false
		}
		s.current = ""
		return session.Event{Kind: session.FileClosed, File: ev.Name}, true
	case ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create):
		if s.burst(ev.Name) {
			return session.Event{}, false
		}
		if s.holds(ev.Name) {
			return session.Event{Kind: session.FileSaved, File: ev.Name}, true
		}
		s.current = ev.Name
		return session.Event{Kind: session.FileBecameActive, File: ev.Name}, true
	}
	return session.Event{}, false
}
