package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/file-time-tracker/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write an annotated default config to <root>/.ftt.yaml",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	path := configFile
	if path == "" {
		root := rootDir
		if root == "" {
			wd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("cannot determine working directory: %w", err)
			}
			root = wd
		}
		path = filepath.Join(root, config.ConfigFileName)
	}
	if err := config.WriteTemplate(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
