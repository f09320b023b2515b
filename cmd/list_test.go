package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/Tiliavir/file-time-tracker/internal/model"
	"github.com/Tiliavir/file-time-tracker/internal/report"
)

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "0s"},
		{30, "30s"},
		{59, "59s"},
		{60, "1m 0s"},
		{90, "1m 30s"},
		{3600, "1h 0m 0s"},
		{3661, "1h 1m 1s"},
		{7322, "2h 2m 2s"},
	}
	for _, tt := range tests {
		got := formatElapsed(tt.seconds)
		if got != tt.want {
			t.Errorf("formatElapsed(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestPrintList(t *testing.T) {
	ann := model.User{Name: "Ann", Email: "ann@example.com"}
	day1 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.Local)
	day2 := day1.AddDate(0, 0, 1)
	rows := []report.Row{
		{Project: "Demo", File: "b.go", Entry: model.TimeEntry{Date: day2, User: ann, TimeSpent: 61}},
		{Project: "Demo", File: "a.go", Entry: model.TimeEntry{Date: day1, User: ann, TimeSpent: 5}},
	}

	var buf bytes.Buffer
	printList(&buf, rows)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	want := []string{
		"2024-01-01",
		"10:00  5s        Demo  a.go  (Ann)",
		"2024-01-02",
		"10:00  1m 1s     Demo  b.go  (Ann)",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), buf.String())
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestPrintList_Empty(t *testing.T) {
	var buf bytes.Buffer
	printList(&buf, nil)
	if got := buf.String(); got != "No entries found.\n" {
		t.Errorf("printList(nil) = %q", got)
	}
}
