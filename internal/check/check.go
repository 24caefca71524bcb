// Package check parses and validates many files concurrently.
package check

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/chriserin/rfl/internal/model"
	"github.com/chriserin/rfl/internal/parser"
	"github.com/chriserin/rfl/internal/validation"
	"github.com/chriserin/rfl/internal/version"
	"github.com/chriserin/rfl/internal/watch"
)

type Options struct {
	Version version.Version
	// Workers bounds how many files are processed at once.
	Workers int
	Logger  *slog.Logger
	// Reporter receives every problem of every file. It must be safe for
	// concurrent use when Workers > 1.
	Reporter validation.Reporter
	// Disable lists problem codes that are dropped before reporting.
	Disable []string
}

// FileResult is the outcome for one input file.
type FileResult struct {
	Path     string
	File     *model.File
	Problems []validation.Problem
	Err      error
	Elapsed  time.Duration
}

// Counts tallies problems by severity.
func (r FileResult) Counts() map[validation.Severity]int {
	out := make(map[validation.Severity]int)
	for _, p := range r.Problems {
		out[p.Severity]++
	}
	return out
}

// File parses and validates a single file.
func File(path string, opts Options) FileResult {
	start := time.Now()
	res := FileResult{Path: path}

	content, err := os.ReadFile(path)
	if err != nil {
		res.Err = fmt.Errorf("reading %s: %w", path, err)
		return res
	}
	return Source(path, content, opts, start)
}

// Source checks content already in memory.
func Source(path string, content []byte, opts Options, start time.Time) FileResult {
	res := FileResult{Path: path}
	f, err := parser.Parse(path, content, parser.Options{Version: opts.Version, Logger: opts.Logger})
	if err != nil {
		res.Err = err
		res.Elapsed = time.Since(start)
		return res
	}
	res.File = f

	var c validation.Collector
	validation.Validate(f, opts.Version, validation.NewFilter(validation.Tee{&c, opts.Reporter}, opts.Disable))
	res.Problems = c.Problems()
	res.Elapsed = time.Since(start)
	return res
}

// Run checks every path with at most opts.Workers in flight. Results keep
// input order. Files not started before ctx is done carry ctx.Err().
func Run(ctx context.Context, paths []string, opts Options) []FileResult {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	log = log.With(slog.String("component", "check"))
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}

	results := make([]FileResult, len(paths))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, path := range paths {
		select {
		case <-ctx.Done():
			results[i] = FileResult{Path: path, Err: ctx.Err()}
			continue
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := ctx.Err(); err != nil {
				results[i] = FileResult{Path: path, Err: err}
				return
			}
			results[i] = File(path, opts)
			log.Debug("checked",
				slog.String("file", path),
				slog.Int("problems", len(results[i].Problems)),
				slog.Duration("elapsed", results[i].Elapsed))
		}(i, path)
	}
	wg.Wait()
	return results
}

// Expand turns files and directories into a sorted list of test data files.
// Directories are walked recursively; explicitly named files are kept even
// without a test data extension.
func Expand(paths []string, skip func(string) bool) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if skip != nil && skip(p) {
			return
		}
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", root, err)
		}
		if !info.IsDir() {
			add(root)
			continue
		}
		err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if p != root && len(d.Name()) > 1 && d.Name()[0] == '.' {
					return filepath.SkipDir
				}
				return nil
			}
			if watch.IsTestData(p) {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", root, err)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Dirs returns the distinct directories holding paths, for watching.
func Dirs(paths []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range paths {
		d := filepath.Dir(p)
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	sort.Strings(out)
	return out
}
