package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/file-time-tracker/internal/app"
	"github.com/Tiliavir/file-time-tracker/internal/config"
	"github.com/Tiliavir/file-time-tracker/internal/di"
)

var (
	configFile string
	rootDir    string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "ftt",
	Short: "File Time Tracker – per-file time accounting for a workspace",
	Long: `ftt records how long each file in a workspace is actively worked on.
Entries are appended to a human-readable JSON log in <root>/.vscode/time_log.json,
which can be reported on, filtered and exported.`,
	SilenceUsage: true,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default <root>/.ftt.yaml)")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "Workspace root (default current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exportCmd)
}

func options() config.Options {
	return config.Options{Root: rootDir, File: configFile, LogLevel: logLevel}
}

// loadApp assembles the app from the persistent flags. Configuration errors
// exit with code 2.
func loadApp() (*app.App, func()) {
	a, cleanup, err := di.InitApp(options())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return a, cleanup
}
