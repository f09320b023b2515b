package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/file-time-tracker/internal/session"
	"github.com/Tiliavir/file-time-tracker/internal/testutil"
)

func collect(ctx context.Context, t *testing.T, src Source) []session.Event {
	t.Helper()
	out := make(chan session.Event, 16)
	require.NoError(t, src.Run(ctx, out))
	close(out)
	var got []session.Event
	for ev := range out {
		got = append(got, ev)
	}
	return got
}

func TestStreamSource(t *testing.T) {
	input := strings.Join([]string{
		`{"kind":"active","file":"src/a.ts","project":"Demo"}`,
		``,
		`{"kind":"saved","file":"src/a.ts"}`,
		`not json`,
		`{"kind":"teleported"}`,
		`{"kind":"deactivated"}`,
	}, "\n")
	log := &testutil.MockLogger{}

	got := collect(context.Background(), t, NewStreamSource(strings.NewReader(input), log))

	assert.Equal(t, []session.Event{
		{Kind: session.FileBecameActive, File: "src/a.ts", Project: "Demo"},
		{Kind: session.FileSaved, File: "src/a.ts"},
		{Kind: session.Deactivated},
	}, got)
	assert.Equal(t, 2, log.Count("warn"))
}

func TestStreamSource_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := make(chan session.Event)

	err := NewStreamSource(strings.NewReader(`{"kind":"blur"}`+"\n"), &testutil.MockLogger{}).Run(ctx, out)
	assert.NoError(t, err)
}

func TestFSSource_Translate(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a.go")
	b := filepath.Join(root, "b.go")
	s := NewFSSource([]string{root}, filepath.Join(root, ".vscode"), &testutil.MockLogger{})
	clock := testutil.NewFakeClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	s.now = clock.Now

	steps := []struct {
		after time.Duration
		ev    fsnotify.Event
		want  session.Event
		ok    bool
	}{
		{time.Second, fsnotify.Event{Name: a, Op: fsnotify.Write}, session.Event{Kind: session.FileBecameActive, File: a}, true},
		{time.Second, fsnotify.Event{Name: a, Op: fsnotify.Write}, session.Event{Kind: session.FileSaved, File: a}, true},
		{time.Second, fsnotify.Event{Name: a, Op: fsnotify.Chmod}, session.Event{}, false},
		{time.Second, fsnotify.Event{Name: b, Op: fsnotify.Remove}, session.Event{}, false},
		{time.Second, fsnotify.Event{Name: b, Op: fsnotify.Create}, session.Event{Kind: session.FileBecameActive, File: b}, true},
		{time.Second, fsnotify.Event{Name: b, Op: fsnotify.Rename}, session.Event{Kind: session.FileClosed, File: b}, true},
		{time.Second, fsnotify.Event{Name: filepath.Join(root, ".vscode", "time_log.json"), Op: fsnotify.Write}, session.Event{}, false},
		{time.Second, fsnotify.Event{Name: filepath.Join(root, ".a.go.swp"), Op: fsnotify.Write}, session.Event{}, false},
		{time.Second, fsnotify.Event{Name: a + "~", Op: fsnotify.Write}, session.Event{}, false},
	}
	for i, st := range steps {
		clock.Advance(st.after)
		got, ok := s.translate(st.ev)
		assert.Equal(t, st.ok, ok, "step %d", i)
		assert.Equal(t, st.want, got, "step %d", i)
	}
}

func TestFSSource_CoalescesSaveBursts(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a.go")
	b := filepath.Join(root, "b.go")
	s := NewFSSource([]string{root}, "", &testutil.MockLogger{})
	clock := testutil.NewFakeClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	s.now = clock.Now

	var got []session.Event
	write := func(after time.Duration, name string) {
		clock.Advance(after)
		if ev, ok := s.translate(fsnotify.Event{Name: name, Op: fsnotify.Write}); ok {
			got = append(got, ev)
		}
	}

	// One save as an editor reports it: truncate, write, write.
	write(0, a)
	write(5*time.Millisecond, a)
	write(20*time.Millisecond, a)
	// A second save well after the first.
	write(3*time.Second, a)
	write(30*time.Millisecond, a)
	// Switching files is never swallowed.
	write(10*time.Millisecond, b)

	assert.Equal(t, []session.Event{
		{Kind: session.FileBecameActive, File: a},
		{Kind: session.FileSaved, File: a},
		{Kind: session.FileBecameActive, File: b},
	}, got)
}

type heldFile string

func (h *heldFile) Holds(path string) bool { return string(*h) == path }

func TestFSSource_AsksHolder(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a.go")
	b := filepath.Join(root, "b.go")
	held := heldFile("")
	s := NewFSSource([]string{root}, "", &testutil.MockLogger{}).WithHolder(&held)
	clock := testutil.NewFakeClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	s.now = clock.Now

	ev, ok := s.translate(fsnotify.Event{Name: a, Op: fsnotify.Write})
	require.True(t, ok)
	assert.Equal(t, session.Event{Kind: session.FileBecameActive, File: a}, ev)

	// Another source switched the tracker to b.
	held = heldFile(b)
	clock.Advance(time.Second)
	ev, ok = s.translate(fsnotify.Event{Name: a, Op: fsnotify.Write})
	require.True(t, ok)
	assert.Equal(t, session.Event{Kind: session.FileBecameActive, File: a}, ev, "write to a reactivates it")

	clock.Advance(time.Second)
	ev, ok = s.translate(fsnotify.Event{Name: b, Op: fsnotify.Remove})
	require.True(t, ok)
	assert.Equal(t, session.Event{Kind: session.FileClosed, File: b}, ev)
}

func TestFSSource_Run(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".vscode"), 0o755))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := make(chan session.Event, 16)
	done := make(chan error, 1)
	go func() {
		done <- NewFSSource([]string{root}, filepath.Join(root, ".vscode"), &testutil.MockLogger{}).Run(ctx, out)
	}()

	file := filepath.Join(root, "src", "main.go")
	var first session.Event
	// The watch is registered asynchronously; keep writing until it reports.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(filepath.Join(root, ".vscode", "time_log.json"), []byte("{}"), 0o644)
		_ = os.WriteFile(file, []byte("package main\n"), 0o644)
		select {
		case first = <-out:
			return true
		default:
			return false
		}
	}, 3*time.Second, 50*time.Millisecond)

	assert.Equal(t, session.FileBecameActive, first.Kind)
	assert.Equal(t, file, first.File)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("source did not stop")
	}
}
