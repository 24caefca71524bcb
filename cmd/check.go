package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/chriserin/rfl/internal/check"
	"github.com/chriserin/rfl/internal/config"
	"github.com/chriserin/rfl/internal/forward"
	"github.com/chriserin/rfl/internal/markers"
	"github.com/chriserin/rfl/internal/ui"
	"github.com/chriserin/rfl/internal/validation"
)

// CheckOptions selects output and sinks for a check run.
type CheckOptions struct {
	Format  string
	Record  bool
	Publish bool
}

var checkOpts CheckOptions

var checkCmd = &cobra.Command{
	Use:   "check [path...]",
	Short: "Parse and validate test data files",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		return RunCheck(cmd.Context(), cmd.OutOrStdout(), cfg, logger, args, checkOpts)
	},
}

func init() {
	checkCmd.Flags().StringVar(&checkOpts.Format, "format", "text", "output format: text or json")
	checkCmd.Flags().BoolVar(&checkOpts.Record, "record", false, "store problems as markers in the database")
	checkCmd.Flags().BoolVar(&checkOpts.Publish, "publish", false, "publish problems to the configured redis channel")
	rootCmd.AddCommand(checkCmd)
}

type jsonResult struct {
	File     string               `json:"file"`
	Problems []validation.Problem `json:"problems"`
	Error    string               `json:"error,omitempty"`
}

func RunCheck(ctx context.Context, w io.Writer, cfg *config.Config, logger *slog.Logger, paths []string, opts CheckOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Format != "" && opts.Format != "text" && opts.Format != "json" {
		return fmt.Errorf("unknown format %q", opts.Format)
	}
	if len(paths) == 0 {
		paths = []string{"."}
	}
	files, err := check.Expand(paths, cfg.Ignored)
	if err != nil {
		return err
	}

	var sinks validation.Tee
	var recorder *markers.Recorder
	if opts.Record {
		store, err := markers.Open(cfg.Database, logger)
		if err != nil {
			return fmt.Errorf("opening marker store: %w", err)
		}
		defer store.Close()
		if recorder, err = store.BeginRun(ctx, cfg.Version()); err != nil {
			return err
		}
		sinks = append(sinks, recorder)
	}

	var forwarder *forward.Forwarder
	if opts.Publish {
		if cfg.Redis.Addr == "" {
			return fmt.Errorf("--publish needs redis.addr in the config")
		}
		var rdb *redis.Client
		fopts := []forward.Option{forward.WithChannel(cfg.Redis.Channel), forward.WithLogger(logger)}
		if recorder != nil {
			fopts = append(fopts, forward.WithRunID(recorder.RunID()))
		}
		rdb, forwarder, err = forward.Dial(ctx, cfg.Redis.Addr, fopts...)
		if err != nil {
			return err
		}
		defer rdb.Close()
		sinks = append(sinks, forwarder)
	}

	results := check.Run(ctx, files, check.Options{
		Version:  cfg.Version(),
		Workers:  cfg.Workers,
		Logger:   logger,
		Reporter: sinks,
		Disable:  cfg.Disable,
	})

	failed := false
	counts := make(map[validation.Severity]int)
	for _, r := range results {
		if r.Err != nil {
			failed = true
		}
		for sev, n := range r.Counts() {
			counts[sev] += n
		}
		if forwarder != nil && r.Err == nil {
			forwarder.Announce(r.Path)
		}
	}
	if counts[validation.Error] > 0 {
		failed = true
	}

	if opts.Format == "json" {
		out := make([]jsonResult, len(results))
		for i, r := range results {
			out[i] = jsonResult{File: r.Path, Problems: r.Problems}
			if out[i].Problems == nil {
				out[i].Problems = []validation.Problem{}
			}
			if r.Err != nil {
				out[i].Error = r.Err.Error()
			}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("encoding results: %w", err)
		}
	} else {
		for _, r := range results {
			if r.Err != nil {
				ui.FileError(w, r.Path, r.Err)
				continue
			}
			for _, p := range r.Problems {
				ui.ProblemLine(w, p)
			}
		}
		ui.SummaryLine(w, len(results), counts)
	}

	if recorder != nil {
		if err := recorder.Finish(ctx, len(results)); err != nil {
			return err
		}
		if opts.Format != "json" {
			fmt.Fprintf(w, "recorded run %s\n", recorder.RunID())
		}
	}
	if forwarder != nil {
		if err := forwarder.Flush(ctx); err != nil {
			return err
		}
	}

	if failed {
		return ErrProblems
	}
	return nil
}
