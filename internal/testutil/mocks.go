package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Tiliavir/file-time-tracker/internal/logger"
	"github.com/Tiliavir/file-time-tracker/internal/model"
)

// MockLogger implements logger.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level   string
	Type    logger.TypeEnum
	Message string
}

func (m *MockLogger) record(level string, t logger.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Message: fmt.Sprintf(format, args...)})
}

func (m *MockLogger) Debugf(t logger.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t logger.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Warnf(t logger.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Errorf(t logger.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns how many lines were logged at level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, l := range m.Logs {
		if l.Level == level {
			n++
		}
	}
	return n
}

// FakeClock is a manually advanced clock.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

func (f *FakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *FakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// RecordedEntry is one call captured by MockRecorder.
type RecordedEntry struct {
	Project string
	File    string
	Entry   model.TimeEntry
}

// MockRecorder captures entries handed to the log store.
type MockRecorder struct {
	mu      sync.Mutex
	Entries []RecordedEntry
	Err     error
}

func (m *MockRecorder) Record(project, file string, entry model.TimeEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Entries = append(m.Entries, RecordedEntry{Project: project, File: file, Entry: entry})
	return nil
}

// Total sums TimeSpent over every recorded entry.
func (m *MockRecorder) Total() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total int64
	for _, e := range m.Entries {
		total += e.Entry.TimeSpent
	}
	return total
}

// StaticIdentity resolves to a fixed user.
type StaticIdentity model.User

func (s StaticIdentity) Resolve(context.Context) model.User {
	return model.User(s)
}
