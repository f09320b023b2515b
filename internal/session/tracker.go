package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Tiliavir/file-time-tracker/internal/identity"
	"github.com/Tiliavir/file-time-tracker/internal/logger"
	"github.com/Tiliavir/file-time-tracker/internal/metrics"
	"github.com/Tiliavir/file-time-tracker/internal/model"
	"github.com/Tiliavir/file-time-tracker/internal/timecalc"
)

// Kind identifies a lifecycle signal from the host editor.
type Kind string

const (
	FileBecameActive Kind = "active"
	FocusLost        Kind = "blur"
	FocusRegained    Kind = "focus"
	FileClosed       Kind = "closed"
	FileSaved        Kind = "saved"
	Deactivated      Kind = "deactivated"
)

// Valid reports whether k is a known signal.
func (k Kind) Valid() bool {
	switch k {
	case FileBecameActive, FocusLost, FocusRegained, FileClosed, FileSaved, Deactivated:
		return true
	}
	return false
}

// Event is one lifecycle signal. File is empty for focus and deactivation
// signals; Project falls back to the workspace project.
type Event struct {
	Kind    Kind   `json:"kind"`
	File    string `json:"file,omitempty"`
	Project string `json:"project,omitempty"`
}

// State of the tracker.
type State int

const (
	Idle State = iota
	Tracking
	// Paused keeps the file after focus loss; no time accrues until focus or a
	// save on the file resumes it.
	Paused
	// Stopped is terminal.
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Tracking:
		return "tracking"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Clock abstracts time retrieval for testing.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Recorder persists a completed entry before returning.
type Recorder interface {
	Record(project, file string, entry model.TimeEntry) error
}

// Status is a read-only view of the tracker for status readouts.
type Status struct {
	State   State
	File    string
	Project string
	Elapsed int64
}

// Tracker turns lifecycle signals into time entries. At most one session is
// live; every transition that ends a session hands its entry to the Recorder
// synchronously.
type Tracker struct {
	mu        sync.Mutex
	state     State
	session   model.ActiveSession
	workspace Workspace

	clock    Clock
	recorder Recorder
	identity identity.Resolver
	logger   logger.Logger
	metrics  metrics.Recorder
}

// NewTracker constructs an idle tracker with a real clock.
func NewTracker(ws Workspace, rec Recorder, id identity.Resolver, log logger.Logger, m metrics.Recorder) *Tracker {
	return &Tracker{
		workspace: ws,
		clock:     realClock{},
		recorder:  rec,
		identity:  id,
		logger:    log,
		metrics:   m,
	}
}

// WithClock swaps the underlying clock (primarily for tests).
func (t *Tracker) WithClock(clock Clock) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if clock == nil {
		t.clock = realClock{}
		return
	}
	t.clock = clock
}

// Workspace returns the workspace the tracker times files in.
func (t *Tracker) Workspace() Workspace {
	return t.workspace
}

// Handle applies one event. The returned error comes from persisting a
// closed session; the transition itself has already happened.
func (t *Tracker) Handle(ctx context.Context, ev Event) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == Stopped || t.workspace.Empty() {
		return nil
	}

	switch ev.Kind {
	case FileBecameActive:
		return t.activate(ctx, ev)

	case FocusLost:
		if t.state != Tracking {
			return nil
		}
		err := t.closeOut(ctx)
		t.setState(Paused)
		return err

	case FocusRegained:
		if t.state != Paused {
			return nil
		}
		t.resume()
		return nil

	case FileClosed:
		if !t.holds(ev.File) {
			return nil
		}
		var err error
		if t.state == Tracking {
			err = t.closeOut(ctx)
		}
		t.session = model.ActiveSession{}
		t.setState(Idle)
		return err

	case FileSaved:
		if !t.holds(ev.File) {
			return nil
		}
		if t.state == Paused {
			t.resume()
			return nil
		}
		err := t.closeOut(ctx)
		t.session.StartedAt = t.clock.Now()
		return err

	case Deactivated:
		var err error
		if t.state == Tracking {
			err = t.closeOut(ctx)
		}
		t.setState(Stopped)
		return err
	}
	return fmt.Errorf("unknown event kind %q", ev.Kind)
}

// activate starts timing ev.File, closing out whatever ran before. Activating
// the tracked file again is a checkpoint.
func (t *Tracker) activate(ctx context.Context, ev Event) error {
	var err error
	if t.state == Tracking {
		err = t.closeOut(ctx)
	}

	key, ok := t.workspace.Key(ev.File)
	if !ok {
		t.logger.Debugf(logger.TypeTracker, "ignoring %s: outside workspace", ev.File)
		t.session = model.ActiveSession{}
		t.setState(Idle)
		return err
	}

	project := ev.Project
	if project == "" {
		project = t.workspace.Project()
	}
	t.session = model.ActiveSession{File: key, Project: project, StartedAt: t.clock.Now()}
	t.setState(Tracking)
	t.logger.Debugf(logger.TypeTracker, "tracking %s", key)
	return err
}

func (t *Tracker) resume() {
	t.session.StartedAt = t.clock.Now()
	t.setState(Tracking)
	t.logger.Debugf(logger.TypeTracker, "resumed %s", t.session.File)
}

// holds reports whether path is the file of the current (running or paused) session.
func (t *Tracker) holds(path string) bool {
	if t.state != Tracking && t.state != Paused {
		return false
	}
	key, ok := t.workspace.Key(path)
	return ok && key == t.session.File
}

// closeOut emits one entry for the running session. Zero-second sessions are
// recorded too.
func (t *Tracker) closeOut(ctx context.Context) error {
	if t.session.File == "" {
		return nil
	}
	now := t.clock.Now()
	entry := model.TimeEntry{
		Date:      now.UTC().Truncate(time.Millisecond),
		User:      t.identity.Resolve(ctx),
		TimeSpent: timecalc.ElapsedSeconds(t.session.StartedAt, now),
	}
	if err := t.recorder.Record(t.session.Project, t.session.File, entry); err != nil {
		return fmt.Errorf("recording %ds on %s: %w", entry.TimeSpent, t.session.File, err)
	}
	t.logger.Infof(logger.TypeTracker, "logged %s on %s", timecalc.FormatDuration(entry.TimeSpent), t.session.File)
	return nil
}

func (t *Tracker) setState(s State) {
	t.state = s
	t.metrics.SetTracking(s == Tracking)
}

// Holds reports whether path is the file of the running or paused session.
func (t *Tracker) Holds(path string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.holds(path)
}

// Snapshot reports the current state without changing it.
func (t *Tracker) Snapshot() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	st := Status{State: t.state, File: t.session.File, Project: t.session.Project}
	if t.state == Tracking {
		st.Elapsed = timecalc.ElapsedSeconds(t.session.StartedAt, t.clock.Now())
	}
	return st
}
