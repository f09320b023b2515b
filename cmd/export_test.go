package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/Tiliavir/file-time-tracker/internal/report"
)

// run executes the root command in a fresh workspace state and returns stdout.
func run(t *testing.T, args ...string) string {
	t.Helper()
	exportFormat, reportFormat = "", "text"
	listFilter, reportFilter = filterFlags{}, filterFlags{}
	recordProject, recordDate = "", ""
	configFile, rootDir, logLevel = "", "", ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("ftt %s: %v\n%s", strings.Join(args, " "), err, out.String())
	}
	return out.String()
}

func workspace(t *testing.T) string {
	t.Helper()
	t.Setenv("FTT_USER_NAME", "Ann")
	t.Setenv("FTT_USER_EMAIL", "ann@example.com")
	return t.TempDir()
}

func TestRecordThenReport(t *testing.T) {
	root := workspace(t)

	got := run(t, "--root", root, "record", "src/a.go", "90s")
	if got != "Logged 0h 1m 30s on src/a.go.\n" {
		t.Errorf("record output = %q", got)
	}
	run(t, "--root", root, "record", "-p", "Other", "src/a.go", "30s")

	var view report.View
	if err := json.Unmarshal([]byte(run(t, "--root", root, "report", "--format", "json")), &view); err != nil {
		t.Fatal(err)
	}
	if view.TotalSeconds != 120 || len(view.Files) != 1 || view.Files[0].File != "src/a.go" {
		t.Errorf("unexpected view: %+v", view)
	}

	status := run(t, "--root", root, "status")
	if !strings.Contains(status, "Entries: 2 in 2 project(s)") || !strings.Contains(status, "Today: 0h 2m 0s logged.") {
		t.Errorf("status output:\n%s", status)
	}
}

func TestReportSuggestsOnMiss(t *testing.T) {
	root := workspace(t)
	run(t, "--root", root, "record", "payment.go", "1m")

	got := run(t, "--root", root, "report", "--query", "invoice")
	if !strings.Contains(got, "No entries found.") {
		t.Errorf("report output:\n%s", got)
	}
}

func TestExportCommand(t *testing.T) {
	root := workspace(t)
	run(t, "--root", root, "record", "main.go", "5s")

	dest := filepath.Join(t.TempDir(), "log.csv")
	got := run(t, "--root", root, "export", dest)
	if got != "Exported csv to "+dest+".\n" {
		t.Errorf("export output = %q", got)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 || lines[0] != "Project,File,Date,User,Email,TimeSpent" {
		t.Fatalf("csv:\n%s", data)
	}
	if !strings.HasPrefix(lines[1], filepath.Base(root)+",main.go,") || !strings.HasSuffix(lines[1], ",Ann,ann@example.com,5") {
		t.Errorf("row = %q", lines[1])
	}

	raw := filepath.Join(t.TempDir(), "log.json")
	run(t, "--root", root, "export", "--format", "json", raw)
	copied, err := os.ReadFile(raw)
	if err != nil {
		t.Fatal(err)
	}
	orig, err := os.ReadFile(filepath.Join(root, ".vscode", "time_log.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(copied, orig) {
		t.Error("json export is not a copy of the log")
	}
}

func TestInitWritesConfig(t *testing.T) {
	root := t.TempDir()
	got := run(t, "--root", root, "init")

	path := filepath.Join(root, ".ftt.yaml")
	if got != "Wrote "+path+"\n" {
		t.Errorf("init output = %q", got)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}
}
