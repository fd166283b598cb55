// Package store caches analysis artifacts in a local SQLite database.
//
// Batch feature extraction recomputes nothing it already has: spectrograms
// are cached per label, and per-run feature vectors and cross-file match
// statistics are keyed by run identifier so independent extraction runs can
// coexist in one database file.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/cwbudde/algo-bioacoustics/features"
	"github.com/cwbudde/algo-bioacoustics/spectrogram"
)

// ErrNotFound indicates a missing cache entry.
var ErrNotFound = errors.New("store: not found")

// Store is a SQLite-backed artifact cache.
type Store struct {
	db   *sql.DB
	path string
}

// Run identifies one feature extraction run.
type Run struct {
	ID          string
	Description string
	CreatedAt   time.Time
}

// Open creates or opens the database at path, creating parent directories
// as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS spectrograms (
		label TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		description TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS file_vectors (
		run_id TEXT NOT NULL,
		label TEXT NOT NULL,
		payload TEXT NOT NULL,
		PRIMARY KEY (run_id, label)
	);

	CREATE TABLE IF NOT EXISTS cross_stats (
		run_id TEXT NOT NULL,
		label TEXT NOT NULL,
		other_label TEXT NOT NULL,
		payload TEXT NOT NULL,
		PRIMARY KEY (run_id, label, other_label)
	);
	CREATE INDEX IF NOT EXISTS idx_cross_stats_label ON cross_stats(run_id, label);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("store: initialize schema: %w", err)
	}

	return nil
}

// BeginRun records a new extraction run and returns it.
func (s *Store) BeginRun(ctx context.Context, description string) (Run, error) {
	run := Run{
		ID:          uuid.NewString(),
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, description, created_at) VALUES (?, ?, ?)`,
		run.ID, run.Description, run.CreatedAt)
	if err != nil {
		return Run{}, fmt.Errorf("store: begin run: %w", err)
	}

	return run, nil
}

// ListRuns returns all runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, description, created_at FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Description, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan run: %w", err)
		}
		out = append(out, run)
	}

	return out, rows.Err()
}

// PutSpectrogram caches a spectrogram under the given label, replacing any
// previous entry.
func (s *Store) PutSpectrogram(ctx context.Context, label string, spec *spectrogram.Spectrogram) error {
	payload, err := json.Marshal(spec)
	if err != nil {
		return fmt.Errorf("store: encode spectrogram %s: %w", label, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO spectrograms (label, payload) VALUES (?, ?)`,
		label, string(payload))
	if err != nil {
		return fmt.Errorf("store: put spectrogram %s: %w", label, err)
	}

	return nil
}

// GetSpectrogram loads a cached spectrogram. Returns ErrNotFound when the
// label has no entry.
func (s *Store) GetSpectrogram(ctx context.Context, label string) (*spectrogram.Spectrogram, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM spectrograms WHERE label = ?`, label).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: spectrogram %s", ErrNotFound, label)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get spectrogram %s: %w", label, err)
	}

	var spec spectrogram.Spectrogram
	if err := json.Unmarshal([]byte(payload), &spec); err != nil {
		return nil, fmt.Errorf("store: decode spectrogram %s: %w", label, err)
	}

	return &spec, nil
}

// PutFileVector stores the first-order feature vector of one file.
func (s *Store) PutFileVector(ctx context.Context, runID, label string, vec []float64) error {
	payload, err := json.Marshal(vec)
	if err != nil {
		return fmt.Errorf("store: encode vector %s: %w", label, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO file_vectors (run_id, label, payload) VALUES (?, ?, ?)`,
		runID, label, string(payload))
	if err != nil {
		return fmt.Errorf("store: put vector %s: %w", label, err)
	}

	return nil
}

// GetFileVector loads a stored feature vector. Returns ErrNotFound when
// absent.
func (s *Store) GetFileVector(ctx context.Context, runID, label string) ([]float64, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM file_vectors WHERE run_id = ? AND label = ?`,
		runID, label).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: vector %s", ErrNotFound, label)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get vector %s: %w", label, err)
	}

	var vec []float64
	if err := json.Unmarshal([]byte(payload), &vec); err != nil {
		return nil, fmt.Errorf("store: decode vector %s: %w", label, err)
	}

	return vec, nil
}

// PutCrossStats stores the template match results of label's spectrogram
// against other_label's templates.
func (s *Store) PutCrossStats(ctx context.Context, runID, label, otherLabel string, results []features.MatchResult) error {
	payload, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("store: encode cross stats %s/%s: %w", label, otherLabel, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO cross_stats (run_id, label, other_label, payload) VALUES (?, ?, ?, ?)`,
		runID, label, otherLabel, string(payload))
	if err != nil {
		return fmt.Errorf("store: put cross stats %s/%s: %w", label, otherLabel, err)
	}

	return nil
}

// GetCrossStats loads stored match results. Returns ErrNotFound when
// absent.
func (s *Store) GetCrossStats(ctx context.Context, runID, label, otherLabel string) ([]features.MatchResult, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM cross_stats WHERE run_id = ? AND label = ? AND other_label = ?`,
		runID, label, otherLabel).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: cross stats %s/%s", ErrNotFound, label, otherLabel)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get cross stats %s/%s: %w", label, otherLabel, err)
	}

	var results []features.MatchResult
	if err := json.Unmarshal([]byte(payload), &results); err != nil {
		return nil, fmt.Errorf("store: decode cross stats %s/%s: %w", label, otherLabel, err)
	}

	return results, nil
}
