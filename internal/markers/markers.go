// Package markers persists validation problems per run in the sqlite database.
package markers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/chriserin/rfl/internal/db"
	"github.com/chriserin/rfl/internal/validation"
	"github.com/chriserin/rfl/internal/version"
)

// ErrNoRuns is returned when the database holds no finished run yet.
var ErrNoRuns = errors.New("no runs recorded")

// Marker is a stored problem.
type Marker struct {
	RunID    string
	File     string
	Code     string
	Severity validation.Severity
	Message  string
	Line     int
	Column   int
	Start    int
	End      int
}

// Run describes one recorded check run.
type Run struct {
	ID           string
	RobotVersion string
	FilesChecked int
	StartedAt    time.Time
}

type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens the database at path and wraps it in a Store.
func Open(path string, logger *slog.Logger) (*Store, error) {
	sqlDB, err := db.Open(path)
	if err != nil {
		return nil, err
	}
	s := New(sqlDB)
	if logger != nil {
		s.log = logger.With(slog.String("component", "markers"))
	}
	return s, nil
}

// New wraps an already migrated database.
func New(sqlDB *sql.DB) *Store {
	return &Store{db: sqlDB, log: slog.New(slog.DiscardHandler)}
}

func (s *Store) Close() error { return s.db.Close() }

// BeginRun inserts a run row and returns a Recorder that stores problems under it.
func (s *Store) BeginRun(ctx context.Context, v version.Version) (*Recorder, error) {
	runID := uuid.NewString()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, robot_version) VALUES (?, ?)`, runID, v.String())
	if err != nil {
		return nil, fmt.Errorf("inserting run: %w", err)
	}
	rowID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading run id: %w", err)
	}
	s.log.Debug("run started", slog.String("run_id", runID), slog.String("robot_version", v.String()))
	return &Recorder{
		store:  s,
		ctx:    ctx,
		runID:  runID,
		rowID:  rowID,
		fileID: make(map[string]int64),
	}, nil
}

// LatestRun returns the most recently finished run.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	var r Run
	var started any
	err := s.db.QueryRowContext(ctx,
		`SELECT run_id, robot_version, files_checked, started_at FROM runs
		 WHERE finished_at IS NOT NULL ORDER BY id DESC LIMIT 1`).
		Scan(&r.ID, &r.RobotVersion, &r.FilesChecked, &started)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNoRuns
	}
	if err != nil {
		return Run{}, fmt.Errorf("querying latest run: %w", err)
	}
	r.StartedAt = timestamp(started)
	return r, nil
}

// timestamp accepts both forms the driver may hand back for a DATETIME column.
func timestamp(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		parsed, _ := time.Parse(time.DateTime, t)
		return parsed
	case []byte:
		parsed, _ := time.Parse(time.DateTime, string(t))
		return parsed
	}
	return time.Time{}
}

// List returns the markers of a run ordered by file then position.
func (s *Store) List(ctx context.Context, runID string) ([]Marker, error) {
	return s.query(ctx, `WHERE r.run_id = ?`, runID)
}

// FileMarkers returns the markers the latest finished run recorded for path.
func (s *Store) FileMarkers(ctx context.Context, path string) ([]Marker, error) {
	return s.query(ctx, `WHERE f.file_path = ? AND r.id = (
		SELECT MAX(id) FROM runs WHERE finished_at IS NOT NULL)`, path)
}

func (s *Store) query(ctx context.Context, where string, arg any) ([]Marker, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.run_id, f.file_path, m.code, m.severity, m.message,
		       m.line, m.col, m.start_offset, m.end_offset
		FROM markers m
		JOIN runs r ON r.id = m.run_id
		JOIN files f ON f.id = m.file_id
		`+where+`
		ORDER BY f.file_path, m.line, m.col, m.id`, arg)
	if err != nil {
		return nil, fmt.Errorf("querying markers: %w", err)
	}
	defer rows.Close()

	var out []Marker
	for rows.Next() {
		var m Marker
		var severity string
		if err := rows.Scan(&m.RunID, &m.File, &m.Code, &severity, &m.Message,
			&m.Line, &m.Column, &m.Start, &m.End); err != nil {
			return nil, fmt.Errorf("scanning marker: %w", err)
		}
		if m.Severity, err = validation.ParseSeverity(severity); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
