package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/chriserin/rfl/internal/config"
	"github.com/chriserin/rfl/internal/markers"
	"github.com/chriserin/rfl/internal/ui"
	"github.com/chriserin/rfl/internal/validation"
)

var markersCmd = &cobra.Command{
	Use:   "markers [file]",
	Short: "Show markers stored by the latest recorded check",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		file := ""
		if len(args) == 1 {
			file = args[0]
		}
		return RunMarkers(cmd.Context(), cmd.OutOrStdout(), cfg, file)
	},
}

func init() {
	rootCmd.AddCommand(markersCmd)
}

func RunMarkers(ctx context.Context, w io.Writer, cfg *config.Config, file string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := os.Stat(cfg.Database); os.IsNotExist(err) {
		return fmt.Errorf("run `rfl init` first")
	}
	store, err := markers.Open(cfg.Database, nil)
	if err != nil {
		return fmt.Errorf("opening marker store: %w", err)
	}
	defer store.Close()

	run, err := store.LatestRun(ctx)
	if errors.Is(err, markers.ErrNoRuns) {
		fmt.Fprintln(w, "no recorded runs, use `rfl check --record`")
		return nil
	}
	if err != nil {
		return err
	}

	var list []markers.Marker
	if file != "" {
		list, err = store.FileMarkers(ctx, file)
	} else {
		list, err = store.List(ctx, run.ID)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "run %s  robot %s  %d files  %s\n",
		run.ID, run.RobotVersion, run.FilesChecked, run.StartedAt.Format("2006-01-02 15:04:05"))
	for _, m := range list {
		ui.ProblemLine(w, validation.Problem{
			Code:     m.Code,
			Severity: m.Severity,
			Message:  m.Message,
			Region:   validation.Region{File: m.File, Line: m.Line, Column: m.Column, Start: m.Start, End: m.End},
		})
	}
	if len(list) == 0 {
		fmt.Fprintln(w, "no markers")
	}
	return nil
}
