package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/file-time-tracker/internal/report"
)

var (
	reportFilter filterFlags
	reportFormat string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show time per file and per user",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportFilter.bind(reportCmd)
	reportCmd.Flags().StringVar(&reportFormat, "format", "text", "Output format: text, json")
}

func runReport(cmd *cobra.Command, args []string) error {
	if reportFormat != "text" && reportFormat != "json" {
		return fmt.Errorf("unknown report format %q (want text or json)", reportFormat)
	}
	flt, err := reportFilter.filter(time.Now())
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

	out := cmd.OutOrStdout()
	if reportFormat == "json" {
		return report.WriteJSON(out, view)
	}
	if err := report.WriteText(out, view); err != nil {
		return err
	}

	if len(view.Files) == 0 && flt.Query != "" {
		suggestions, err := a.Reports.Suggestions(flt.Query)
		if err == nil && len(suggestions) > 0 {
			fmt.Fprintf(out, "Did you mean: %s?\n", strings.Join(suggestions, ", "))
		}
	}
	return nil
}
