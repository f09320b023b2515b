package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/file-time-tracker/internal/export"
)

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export <dest>",
	Short: "Export the time log to a file",
	Long: `export writes the time log to dest. json copies the log unchanged, csv
writes one row per entry and json.zst is a zstd-compressed copy of the log.
Without --format the format follows the extension of dest.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "Output format: json, csv, json.zst")
}

func runExport(cmd *cobra.Command, args []string) error {
	dest := args[0]
	format := export.FormatForPath(dest)
	if exportFormat != "" {
		f, err := export.ParseFormat(exportFormat)
		if err != nil {
			return err
		}
		format = f
	}

	a, cleanup := loadApp()
	defer cleanup()

	if err := export.ToFile(a.Store, dest, format); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s.\n", format, dest)
	return nil
}
