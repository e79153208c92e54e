package history

import (
	"annotcheck/internal/core/errors"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5

	// Fixed width so ts_utc sorts and compares as text.
	timestampLayout = "2006-01-02T15:04:05.000000000Z"
)

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	// WAL plus busy_timeout keeps watch-mode writes from tripping over readers.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}
	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

func normalizeProjectKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return "default"
	}
	return key
}

// SaveRun stores run and returns it with ID, project key and timestamp
// filled in.
func (s *Store) SaveRun(projectKey string, run Run) (Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run.ProjectKey = normalizeProjectKey(projectKey)
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now().UTC()
	}
	run.Timestamp = run.Timestamp.UTC()

	err := s.withRetry("save run", func() error {
		_, err := s.db.Exec(`
INSERT INTO runs (
  id, project_key, ts_utc, file_count, tag_count, checked_count, failed_count,
  diagnostic_count, duration_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  file_count=excluded.file_count,
  tag_count=excluded.tag_count,
  checked_count=excluded.checked_count,
  failed_count=excluded.failed_count,
  diagnostic_count=excluded.diagnostic_count,
  duration_ms=excluded.duration_ms
`,
			run.ID,
			run.ProjectKey,
			run.Timestamp.Format(timestampLayout),
			run.FileCount,
			run.TagCount,
			run.CheckedCount,
			run.FailedCount,
			run.DiagnosticCount,
			run.DurationMillis,
		)
		return err
	})
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

// LoadRuns returns the runs of projectKey at or after since, oldest first. A
// zero since loads everything.
func (s *Store) LoadRuns(projectKey string, since time.Time) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
SELECT id, project_key, ts_utc, file_count, tag_count, checked_count, failed_count,
  diagnostic_count, duration_ms
FROM runs
WHERE project_key = ?`
	args := []any{normalizeProjectKey(projectKey)}
	if !since.IsZero() {
		query += " AND ts_utc >= ?"
		args = append(args, since.UTC().Format(timestampLayout))
	}
	query += " ORDER BY ts_utc ASC, id ASC"

	var rows *sql.Rows
	err := s.withRetry("load runs", func() error {
		var qErr error
		rows, qErr = s.db.Query(query, args...)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		var (
			tsRaw string
			run   Run
		)
		if err := rows.Scan(
			&run.ID,
			&run.ProjectKey,
			&tsRaw,
			&run.FileCount,
			&run.TagCount,
			&run.CheckedCount,
			&run.FailedCount,
			&run.DiagnosticCount,
			&run.DurationMillis,
		); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, tsRaw)
		if err != nil {
			return nil, fmt.Errorf("parse run timestamp %q: %w", tsRaw, err)
		}
		run.Timestamp = ts.UTC()
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}
	return runs, nil
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return errors.AddContext(errors.Wrap(lastErr, errors.CodeInternal, "history store"), errors.CtxOperation, op)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}
