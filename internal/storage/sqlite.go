// Package storage provides SQLite-based persistence for finished runs.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies and
// goose for schema migrations.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

//go:embed migrations/*.sql
var migrations embed.FS

// Run statuses as stored.
const (
	StatusWon     = "won"
	StatusCrashed = "crashed"
	StatusQuit    = "quit"
)

// Store manages the SQLite database connection for run persistence.
type Store struct {
	db *sql.DB
}

// RunResult is one recorded run.
type RunResult struct {
	ID          string
	CourseID    string
	Status      string
	Distance    float64 // meters
	Elapsed     float64 // simulated seconds
	RaceSeconds int     // race clock shown in the HUD
	Phase       int
	Seed        int64
	ReplayID    string // empty when the run was not recorded
	CreatedAt   time.Time
}

// Won reports whether the run reached the finish line.
func (r RunResult) Won() bool {
	return r.Status == StatusWon
}

// CourseStats contains aggregated statistics for a course.
type CourseStats struct {
	CourseID     string
	Runs         int
	Finishes     int
	BestTime     float64 // 0 when nobody finished
	BestDistance float64
	AvgDistance  float64
	LastPlayed   time.Time
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

	if err := migrate(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return &Store{db: db}, nil
}

// migrate applies all pending schema migrations.
func migrate(ctx context.Context, db *sql.DB) error {
	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRun records a run and returns its id. An empty ID is filled with a
// fresh UUID.
func (s *Store) SaveRun(r RunResult) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	var replay sql.NullString
	if r.ReplayID != "" {
		replay = sql.NullString{String: r.ReplayID, Valid: true}
	}

	_, err := s.db.Exec(
		`INSERT INTO runs (id, course_id, status, distance, elapsed, race_seconds, phase, seed, replay_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.CourseID, r.Status, r.Distance, r.Elapsed, r.RaceSeconds, r.Phase, r.Seed, replay,
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot save run: %w", err)
	}
	return r.ID, nil
}

// TopRuns retrieves the leaderboard for a course: finished runs by time,
// then unfinished runs by distance.
func (s *Store) TopRuns(courseID string, limit int) ([]RunResult, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, course_id, status, distance, elapsed, race_seconds, phase, seed, replay_id, created_at
		 FROM runs
		 WHERE course_id = ?
		 ORDER BY CASE WHEN status = 'won' THEN 0 ELSE 1 END,
		          CASE WHEN status = 'won' THEN elapsed ELSE -distance END
		 LIMIT ?`,
		courseID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// RecentRuns retrieves the most recent runs across all courses.
func (s *Store) RecentRuns(limit int) ([]RunResult, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, course_id, status, distance, elapsed, race_seconds, phase, seed, replay_id, created_at
		 FROM runs
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// RunByID retrieves a single run. Returns nil when it does not exist.
func (s *Store) RunByID(id string) (*RunResult, error) {
	rows, err := s.db.Query(
		`SELECT id, course_id, status, distance, elapsed, race_seconds, phase, seed, replay_id, created_at
		 FROM runs WHERE id = ?`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query run: %w", err)
	}
	defer rows.Close()

	runs, err := scanRuns(rows)
	if err != nil || len(runs) == 0 {
		return nil, err
	}
	return &runs[0], nil
}

func scanRuns(rows *sql.Rows) ([]RunResult, error) {
	var runs []RunResult
	for rows.Next() {
		var r RunResult
		var replay sql.NullString
		var createdAt any
		if err := rows.Scan(&r.ID, &r.CourseID, &r.Status, &r.Distance, &r.Elapsed,
			&r.RaceSeconds, &r.Phase, &r.Seed, &replay, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.ReplayID = replay.String
		r.CreatedAt = parseTime(createdAt)
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return runs, nil
}

// parseTime handles both time.Time and string datetimes.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// BestTime returns the fastest finish on a course in simulated seconds.
// Returns 0 if nobody finished.
func (s *Store) BestTime(courseID string) (float64, error) {
	var best sql.NullFloat64
	err := s.db.QueryRow(
		"SELECT MIN(elapsed) FROM runs WHERE course_id = ? AND status = 'won'",
		courseID,
	).Scan(&best)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot query best time: %w", err)
	}
	if !best.Valid {
		return 0, nil
	}
	return best.Float64, nil
}

// ClearRuns deletes all runs for the given course.
func (s *Store) ClearRuns(courseID string) error {
	_, err := s.db.Exec("DELETE FROM runs WHERE course_id = ?", courseID)
	if err != nil {
		return fmt.Errorf("storage: cannot clear runs: %w", err)
	}
	return nil
}

// GetCourseStats retrieves aggregated statistics for a specific course.
func (s *Store) GetCourseStats(courseID string) (*CourseStats, error) {
	stats := &CourseStats{CourseID: courseID}

	var best sql.NullFloat64
	err := s.db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN status = 'won' THEN 1 ELSE 0 END), 0),
		        MIN(CASE WHEN status = 'won' THEN elapsed END),
		        COALESCE(MAX(distance), 0),
		        COALESCE(AVG(distance), 0)
		 FROM runs WHERE course_id = ?`,
		courseID,
	).Scan(&stats.Runs, &stats.Finishes, &best, &stats.BestDistance, &stats.AvgDistance)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get course stats: %w", err)
	}
	stats.BestTime = best.Float64

	var lastPlayed any
	err = s.db.QueryRow(
		`SELECT created_at FROM runs WHERE course_id = ? ORDER BY created_at DESC LIMIT 1`,
		courseID,
	).Scan(&lastPlayed)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("storage: cannot get last played: %w", err)
	}
	if err == nil {
		stats.LastPlayed = parseTime(lastPlayed)
	}

	return stats, nil
}

// GetAllCourseStats retrieves statistics for every course that has runs.
func (s *Store) GetAllCourseStats() (map[string]*CourseStats, error) {
	rows, err := s.db.Query(`SELECT DISTINCT course_id FROM runs`)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot list courses: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("storage: cannot scan course id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	rows.Close()

	stats := make(map[string]*CourseStats, len(ids))
	for _, id := range ids {
		st, err := s.GetCourseStats(id)
		if err != nil {
			return nil, err
		}
		stats[id] = st
	}
	return stats, nil
}
