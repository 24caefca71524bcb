package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/chriserin/rfl/internal/check"
	"github.com/chriserin/rfl/internal/config"
	"github.com/chriserin/rfl/internal/ui"
	"github.com/chriserin/rfl/internal/watch"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [path...]",
	Short: "Re-check test data files whenever they change",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		return RunWatch(cmd.Context(), cmd.OutOrStdout(), cfg, logger, args, watchDebounce)
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "quiet period before a changed file is re-checked")
	rootCmd.AddCommand(watchCmd)
}

// RunWatch checks every file once, then re-checks each file as it changes
// until ctx is cancelled.
func RunWatch(ctx context.Context, w io.Writer, cfg *config.Config, logger *slog.Logger, paths []string, debounce time.Duration) error {
	if len(paths) == 0 {
		paths = []string{"."}
	}
	files, err := check.Expand(paths, cfg.Ignored)
	if err != nil {
		return err
	}
	opts := check.Options{Version: cfg.Version(), Workers: cfg.Workers, Logger: logger, Disable: cfg.Disable}

	for _, r := range check.Run(ctx, files, opts) {
		printResult(w, r)
	}

	dirs := check.Dirs(files)
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			dirs = append(dirs, p)
		}
	}
	dirs = dedupe(dirs)
	fmt.Fprintf(w, "watching %d directories\n", len(dirs))

	watcher := &watch.Watcher{
		Debounce: debounce,
		Logger:   logger,
		OnChange: func(path string) {
			if cfg.Ignored(path) {
				return
			}
			r := check.File(path, opts)
			printResult(w, r)
			if r.Err == nil && len(r.Problems) == 0 {
				fmt.Fprintf(w, "%s  ok\n", path)
			}
		},
	}
	return watcher.Run(ctx, dirs)
}

func printResult(w io.Writer, r check.FileResult) {
	if r.Err != nil {
		ui.FileError(w, r.Path, r.Err)
		return
	}
	for _, p := range r.Problems {
		ui.ProblemLine(w, p)
	}
}

func dedupe(list []string) []string {
	seen := make(map[string]bool, len(list))
	out := list[:0]
	for _, s := range list {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
