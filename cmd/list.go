package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/file-time-tracker/internal/report"
)

var listFilter filterFlags

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List logged entries, newest day last",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listFilter.bind(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	flt, err := listFilter.filter(time.Now())
	if err != nil {
		return err
	}

	a, cleanup := loadApp()
	defer cleanup()

	view, err := a.Reports.Report(flt)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	printList(cmd.OutOrStdout(), view.Rows)
	return nil
}

// printList groups rows by local date and prints them in time order.
func printList(w io.Writer, rows []report.Row) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No entries found.")
		return
	}

	sorted := append([]report.Row(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Entry.Date.Before(sorted[j].Entry.Date)
	})

	var currentDay string
	for _, r := range sorted {
		local := r.Entry.Date.Local()
		day := local.Format("2006-01-02")
		if day != currentDay {
			fmt.Fprintln(w, day)
			currentDay = day
		}
		fmt.Fprintf(w, "%s  %-8s  %s  %s  (%s)\n",
			local.Format("15:04"),
			formatElapsed(r.Entry.TimeSpent),
			r.Project,
			r.File,
			r.Entry.User.Name,
		)
	}
}

// formatElapsed is the compact form used in listings: leading zero units are
// dropped.
func formatElapsed(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
