package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/file-time-tracker/internal/watcher"
)

var (
	watchStdin bool
	watchNoFS  bool
	watchQuiet bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Track time on workspace files until interrupted",
	Long: `watch follows file activity in the workspace and logs the time spent on
each file. Events come from the file system and, with --stdin, from
newline-delimited JSON written by an editor plugin, e.g.

  {"kind":"active","file":"src/app.ts"}
  {"kind":"blur"}

Kinds: active, blur, focus, closed, saved, deactivated. Interrupting the
command closes out the running session.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchStdin, "stdin", false, "Read lifecycle events as JSON lines from stdin")
	watchCmd.Flags().BoolVar(&watchNoFS, "no-fs", false, "Do not derive events from file system activity")
	watchCmd.Flags().BoolVarP(&watchQuiet, "quiet", "q", false, "Do not print the live status line")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchNoFS && !watchStdin {
		return fmt.Errorf("--no-fs requires --stdin")
	}

	a, cleanup := loadApp()
	defer cleanup()

	var sources []watcher.Source
	if !watchNoFS {
		fsSrc := watcher.NewFSSource(a.Config.Workspace.Roots, filepath.Dir(a.Store.Path()), a.Logger)
		if watchStdin {
			fsSrc.WithHolder(a.Tracker)
		}
		sources = append(sources, fsSrc)
	}
	if watchStdin {
		sources = append(sources, watcher.NewStreamSource(os.Stdin, a.Logger))
	}
	if !watchQuiet {
		a.Status = cmd.ErrOrStderr()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := a.Run(ctx, sources...)
	if !watchQuiet {
		fmt.Fprintln(cmd.ErrOrStderr())
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return nil
}
