package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/examprep/internal/clock"
	"github.com/abhisek/examprep/internal/exam"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store owns the SQLite connection and hands out repositories.
type Store struct {
	db    *sql.DB
	drv   *entsql.Driver
	clock clock.Clock
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used to stamp new records.
func WithClock(c clock.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and creates missing tables.
func Open(dsn string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Pragmas are per connection, and a private in-memory database exists
	// only on the connection that created it.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	s := &Store{
		db:    db,
		drv:   entsql.OpenDB(dialect.SQLite, db),
		clock: clock.Real{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrate(context.Background()); err != nil {
		s.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.drv.Close()
}

func (s *Store) StudyLogRepo() StudyLogRepo { return &studyLogRepo{drv: s.drv, clock: s.clock} }
func (s *Store) ExamRepo() ExamRepo { return &examRepo{drv: s.drv} }
func (s *Store) InterviewRepo() InterviewRepo { return &interviewRepo{drv: s.drv, clock: s.clock} }
func (s *Store) SkillGapRepo() SkillGapRepo { return &skillGapRepo{drv: s.drv, clock: s.clock} }
func (s *Store) EventRepo() EventRepo { return &eventRepo{drv: s.drv, clock: s.clock} }

var schema = []string{
	`CREATE TABLE IF NOT EXISTS study_logs (
		date       TEXT PRIMARY KEY,
		hours      REAL NOT NULL,
		topics     BLOB NOT NULL,
		notes      TEXT NOT NULL DEFAULT '',
		updated_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS exams (
		id              TEXT PRIMARY KEY,
		exam_type       TEXT NOT NULL,
		created_at      INTEGER NOT NULL,
		score           INTEGER NOT NULL,
		accuracy        INTEGER NOT NULL,
		ai_usage        INTEGER NOT NULL,
		total_questions INTEGER NOT NULL,
		correct_answers INTEGER NOT NULL,
		time_spent      INTEGER NOT NULL,
		weak_topics     BLOB NOT NULL,
		questions       BLOB NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS exams_created_at ON exams (created_at)`,
	`CREATE TABLE IF NOT EXISTS interviews (
		id            TEXT PRIMARY KEY,
		session_type  TEXT NOT NULL,
		created_at    INTEGER NOT NULL,
		duration      INTEGER NOT NULL,
		overall_score INTEGER NOT NULL,
		notes         TEXT NOT NULL DEFAULT '',
		feedback      BLOB
	)`,
	`CREATE TABLE IF NOT EXISTS skill_gaps (
		id         TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL,
		request    BLOB NOT NULL,
		analysis   BLOB NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS llm_events (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp     INTEGER NOT NULL,
		provider      TEXT NOT NULL,
		model         TEXT NOT NULL,
		purpose       TEXT NOT NULL,
		input_tokens  INTEGER NOT NULL,
		output_tokens INTEGER NOT NULL,
		latency_ms    INTEGER NOT NULL,
		success       INTEGER NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		request_body  TEXT NOT NULL DEFAULT '',
		response_body TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS llm_events_timestamp ON llm_events (timestamp)`,
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if err := s.drv.Exec(ctx, stmt, []any{}, nil); err != nil {
			return err
		}
	}
	return nil
}

// applyPragmas configures SQLite for single-user use.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// builder returns a SQL builder for the SQLite dialect.
func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

// fail wraps err as a persistence failure of op.
func fail(op string, err error) error {
	return &exam.PersistenceError{Op: op, Err: err}
}

func millis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms) }

// DefaultDBPath resolves the database file path:
// $XDG_DATA_HOME/examprep/examprep.db, falling back to
// ~/.local/share/examprep/examprep.db.
func DefaultDBPath() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "examprep", "examprep.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

// scanAll runs sel and scans every row into a T by column name.
func scanAll[T any](ctx context.Context, q dialect.ExecQuerier, sel *entsql.Selector) ([]T, error) {
	query, args := sel.Query()
	var rows entsql.Rows
	if err := q.Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	if err := entsql.ScanSlice(rows, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// exec runs a built statement.
func exec(ctx context.Context, q dialect.ExecQuerier, b entsql.Querier) error {
	query, args := b.Query()
	return q.Exec(ctx, query, args, nil)
}

// paginate applies limit and offset from opts.
func paginate(sel *entsql.Selector, opts QueryOpts) *entsql.Selector {
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		if opts.Limit <= 0 {
			// SQLite requires LIMIT before OFFSET.
			sel.Limit(-1)
		}
		sel.Offset(opts.Offset)
	}
	return sel
}

// timeRange adds From/To bounds on a millisecond timestamp column.
func timeRange(sel *entsql.Selector, col string, opts QueryOpts) *entsql.Selector {
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE(col, millis(opts.From)))
	}
	if !opts.To.IsZero() {
		sel.Where(entsql.LTE(col, millis(opts.To)))
	}
	return sel
}
