// Package storage provides SQLite-based persistence for play results.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/tui-rhythm/internal/scoring"
)

// Store manages the SQLite database connection for result persistence.
type Store struct {
	db *sql.DB
}

// Result is one completed run of one chart under one mod set.
type Result struct {
	ID         int64
	ChartHash  string
	ChartTitle string
	Mods       string
	Score      int
	Accuracy   float64
	MaxCombo   int
	Grade      string
	Perfect    int
	Great      int
	Good       int
	Miss       int
	CreatedAt  time.Time
}

// NewResult builds a storable record from session outputs.
func NewResult(chartHash, chartTitle, mods string, score, maxCombo int,
	accuracy float64, grade scoring.Grade, counts scoring.Counts) Result {
	return Result{
		ChartHash:  chartHash,
		ChartTitle: chartTitle,
		Mods:       mods,
		Score:      score,
		Accuracy:   accuracy,
		MaxCombo:   maxCombo,
		Grade:      grade.String(),
		Perfect:    counts.Perfect,
		Great:      counts.Great,
		Good:       counts.Good,
		Miss:       counts.Miss,
	}
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			chart_hash TEXT NOT NULL,
			chart_title TEXT NOT NULL DEFAULT '',
			mods TEXT NOT NULL DEFAULT 'none',
			score INTEGER NOT NULL,
			accuracy REAL NOT NULL,
			max_combo INTEGER NOT NULL,
			grade TEXT NOT NULL,
			perfect INTEGER NOT NULL DEFAULT 0,
			great INTEGER NOT NULL DEFAULT 0,
			good INTEGER NOT NULL DEFAULT 0,
			miss INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_results_chart ON results(chart_hash);
		CREATE INDEX IF NOT EXISTS idx_results_best ON results(chart_hash, mods, score DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveResult records a completed run. Every completed run is kept; best
// selection happens at query time. Returns the ID of the inserted record.
func (s *Store) SaveResult(r Result) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO results
		 (chart_hash, chart_title, mods, score, accuracy, max_combo, grade, perfect, great, good, miss)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ChartHash, r.ChartTitle, r.Mods, r.Score, r.Accuracy,
		r.MaxCombo, r.Grade, r.Perfect, r.Great, r.Good, r.Miss,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save result: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// BestResult returns the highest-scoring stored run for the chart and mod
// combination, or nil when none exists. Ties favor the earlier run, so a
// new result only displaces the best when its score strictly increases.
func (s *Store) BestResult(chartHash, mods string) (*Result, error) {
	row := s.db.QueryRow(
		`SELECT id, chart_hash, chart_title, mods, score, accuracy, max_combo,
		        grade, perfect, great, good, miss, created_at
		 FROM results
		 WHERE chart_hash = ? AND mods = ?
		 ORDER BY score DESC, id ASC
		 LIMIT 1`,
		chartHash, mods,
	)

	r, err := scanResult(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query best result: %w", err)
	}
	return &r, nil
}

// TopResults retrieves the highest-scoring runs for a chart across all mod
// combinations, ordered by score descending.
func (s *Store) TopResults(chartHash string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, chart_hash, chart_title, mods, score, accuracy, max_combo,
		        grade, perfect, great, good, miss, created_at
		 FROM results
		 WHERE chart_hash = ?
		 ORDER BY score DESC, id ASC
		 LIMIT ?`,
		chartHash, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query results: %w", err)
	}
	defer rows.Close()

	return collectResults(rows)
}

// RecentResults retrieves the latest runs across all charts, newest first.
func (s *Store) RecentResults(limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, chart_hash, chart_title, mods, score, accuracy, max_combo,
		        grade, perfect, great, good, miss, created_at
		 FROM results
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query results: %w", err)
	}
	defer rows.Close()

	return collectResults(rows)
}

// ClearResults deletes all stored runs for the given chart.
func (s *Store) ClearResults(chartHash string) error {
	_, err := s.db.Exec("DELETE FROM results WHERE chart_hash = ?", chartHash)
	if err != nil {
		return fmt.Errorf("storage: cannot clear results: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (Result, error) {
	var r Result
	var createdAt any
	err := row.Scan(
		&r.ID, &r.ChartHash, &r.ChartTitle, &r.Mods, &r.Score, &r.Accuracy,
		&r.MaxCombo, &r.Grade, &r.Perfect, &r.Great, &r.Good, &r.Miss,
		&createdAt,
	)
	if err != nil {
		return Result{}, err
	}

	// Parse the datetime - handle both time.Time and string
	switch v := createdAt.(type) {
	case time.Time:
		r.CreatedAt = v
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			r.CreatedAt = parsed
		}
	}
	return r, nil
}

func collectResults(rows *sql.Rows) ([]Result, error) {
	var results []Result
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return results, nil
}
