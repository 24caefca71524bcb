package markers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/chriserin/rfl/internal/validation"
)

// Recorder stores every reported problem under a single run. It is safe for
// concurrent use; the first write error sticks and later reports are dropped.
type Recorder struct {
	store *Store
	ctx   context.Context
	runID string
	rowID int64

	mu     sync.Mutex
	fileID map[string]int64
	count  int
	err    error
}

func (r *Recorder) RunID() string { return r.runID }

func (r *Recorder) Report(p validation.Problem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return
	}
	if err := r.insert(p); err != nil {
		r.err = err
		r.store.log.Error("recording marker", slog.String("file", p.Region.File), slog.Any("error", err))
		return
	}
	r.count++
}

func (r *Recorder) insert(p validation.Problem) error {
	fileID, err := r.file(p.Region.File)
	if err != nil {
		return err
	}
	_, err = r.store.db.ExecContext(r.ctx, `
		INSERT INTO markers (run_id, file_id, code, severity, message, line, col, start_offset, end_offset)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.rowID, fileID, p.Code, p.Severity.String(), p.Message,
		p.Region.Line, p.Region.Column, p.Region.Start, p.Region.End)
	if err != nil {
		return fmt.Errorf("inserting marker: %w", err)
	}
	return nil
}

func (r *Recorder) file(path string) (int64, error) {
	if id, ok := r.fileID[path]; ok {
		return id, nil
	}
	_, err := r.store.db.ExecContext(r.ctx, `
		INSERT INTO files (file_path) VALUES (?)
		ON CONFLICT(file_path) DO UPDATE SET updated_at = datetime('now')`, path)
	if err != nil {
		return 0, fmt.Errorf("upserting file %s: %w", path, err)
	}
	var id int64
	if err := r.store.db.QueryRowContext(r.ctx,
		`SELECT id FROM files WHERE file_path = ?`, path).Scan(&id); err != nil {
		return 0, fmt.Errorf("reading file id %s: %w", path, err)
	}
	r.fileID[path] = id
	return id, nil
}

// Err returns the first write error, if any.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Finish closes the run, recording how many files were checked.
func (r *Recorder) Finish(ctx context.Context, files int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, err := r.store.db.ExecContext(ctx,
		`UPDATE runs SET files_checked = ?, finished_at = datetime('now') WHERE id = ?`,
		files, r.rowID); err != nil {
		return fmt.Errorf("finishing run %s: %w", r.runID, err)
	}
	r.store.log.Info("run finished",
		slog.String("run_id", r.runID), slog.Int("files", files), slog.Int("markers", r.count))
	return nil
}
