package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/file-time-tracker/internal/timecalc"
)

var (
	recordProject string
	recordDate    string
)

var recordCmd = &cobra.Command{
	Use:   "record <file> <duration>",
	Short: "Log time on a file manually, e.g. ftt record src/app.ts 1h30m",
	Args:  cobra.ExactArgs(2),
	RunE:  runRecord,
}

func init() {
	recordCmd.Flags().StringVarP(&recordProject, "project", "p", "", "Project name (default workspace project)")
	recordCmd.Flags().StringVar(&recordDate, "date", "", "Entry date YYYY-MM-DD (default now)")
}

func runRecord(cmd *cobra.Command, args []string) error {
	d, err := time.ParseDuration(args[1])
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", args[1], err)
	}
	if d < 0 {
		return fmt.Errorf("duration must not be negative")
	}

	at := time.Now()
	if recordDate != "" {
		day, err := timecalc.ParseDay(recordDate, time.Local)
		if err != nil {
			return err
		}
		at = day.Add(12 * time.Hour)
	}

	a, cleanup := loadApp()
	defer cleanup()

	seconds := int64(d.Round(time.Second) / time.Second)
	key, err := a.Record(cmd.Context(), args[0], recordProject, seconds, at)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged %s on %s.\n", timecalc.FormatDuration(seconds), key)
	return nil
}
