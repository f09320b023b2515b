package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/file-time-tracker/internal/report"
	"github.com/Tiliavir/file-time-tracker/internal/timecalc"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the log location and today's totals",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	now := time.Now()

	a, cleanup := loadApp()
	defer cleanup()

	doc, err := a.Store.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	today, err := a.Reports.Report(report.Filter{From: now, To: now})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Workspace: %s (%s)\n", a.Config.Root(), a.Config.Workspace.Project)
	fmt.Fprintf(out, "Log: %s\n", a.Store.Path())
	fmt.Fprintf(out, "Entries: %d in %d project(s)\n", doc.Len(), len(doc.Projects()))
	if len(today.Files) > 0 {
		top := today.Files[0]
		fmt.Fprintf(out, "Most worked on today: %s (%s)\n", top.File, timecalc.FormatDuration(top.TotalSeconds))
	}
	fmt.Fprintf(out, "Today: %s logged.\n", timecalc.FormatDuration(today.TotalSeconds))
	return nil
}
