package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/zafaraftab1/CareerCopilot-AI/internal/jobs"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS applications (
	id          TEXT PRIMARY KEY,
	portal      TEXT NOT NULL,
	posting_id  TEXT NOT NULL,
	title       TEXT NOT NULL,
	company     TEXT NOT NULL,
	url         TEXT,
	status      TEXT NOT NULL,
	score       REAL NOT NULL,
	reason      TEXT,
	message     TEXT,
	analysis    TEXT,
	applied_on  TEXT NOT NULL,
	created_at  TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS applications_applied_posting
	ON applications (portal, posting_id) WHERE status <> 'skipped';
CREATE INDEX IF NOT EXISTS applications_applied_on ON applications (applied_on);
`

// SQLite is the single-file Store backend.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("store: mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	// Single writer keeps the check-then-insert in Record serialized.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) HasApplication(ctx context.Context, key jobs.Key) (bool, error) {
	return sqliteHasApplication(ctx, s.db, key)
}

func (s *SQLite) CountApplied(ctx context.Context, day time.Time) (int, error) {
	return sqliteCountApplied(ctx, s.db, Day(day))
}

type sqliteQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func sqliteHasApplication(ctx context.Context, q sqliteQuerier, key jobs.Key) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM applications WHERE portal = ? AND posting_id = ? AND status <> ?`,
		string(key.Portal), key.ID, string(StatusSkipped),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("store: lookup %s: %w", key, err)
	}
	return n > 0, nil
}

func sqliteCountApplied(ctx context.Context, q sqliteQuerier, day string) (int, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM applications WHERE applied_on = ? AND status <> ?`,
		day, string(StatusSkipped),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("store: count applied on %s: %w", day, err)
	}
	return n, nil
}

func (s *SQLite) Record(ctx context.Context, rec *Record, dailyLimit int) error {
	rec.prepare()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	if rec.Status.Counts() {
		dup, err := sqliteHasApplication(ctx, tx, rec.Key())
		if err != nil {
			return err
		}
		if dup {
			return ErrDuplicate
		}

		n, err := sqliteCountApplied(ctx, tx, Day(rec.CreatedAt))
		if err != nil {
			return err
		}
		if n >= dailyLimit {
			return ErrDailyLimit
		}
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO applications
		(id, portal, posting_id, title, company, url, status, score, reason, message, analysis, applied_on, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID.String(), string(rec.Portal), rec.PostingID, rec.Title, rec.Company, rec.URL,
		string(rec.Status), rec.Score, rec.Reason, rec.Message, string(rec.Analysis),
		Day(rec.CreatedAt), rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicate
		}
		return fmt.Errorf("store: insert %s: %w", rec.Key(), err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

func (s *SQLite) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRowContext(ctx, `SELECT status FROM applications WHERE id = ?`, id.String()).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("store: lookup %s: %w", id, err)
	}
	if err := checkTransition(Status(current), status); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE applications SET status = ? WHERE id = ?`, string(status), id.String()); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicate
		}
		return fmt.Errorf("store: update %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

func (s *SQLite) List(ctx context.Context, opts ListOptions) ([]*Record, error) {
	query := `SELECT id, portal, posting_id, title, company, url, status, score, reason, message, analysis, created_at
		FROM applications`
	var args []any
	if opts.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(opts.Status))
	}
	query += ` ORDER BY created_at DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var (
			rec                            Record
			id, portal, status, createdAt  string
			url, reason, message, analysis sql.NullString
		)
		if err := rows.Scan(&id, &portal, &rec.PostingID, &rec.Title, &rec.Company, &url,
			&status, &rec.Score, &reason, &message, &analysis, &createdAt); err != nil {
			return nil, fmt.Errorf("store: scan: %w", err)
		}

		if rec.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("store: record id %q: %w", id, err)
		}
		if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("store: record %s created_at: %w", id, err)
		}
		rec.Portal = jobs.Portal(portal)
		rec.Status = Status(status)
		rec.URL = url.String
		rec.Reason = reason.String
		rec.Message = message.String
		if analysis.String != "" {
			rec.Analysis = []byte(analysis.String)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	return records, nil
}

func (s *SQLite) Stats(ctx context.Context, now time.Time) (*Stats, error) {
	stats := &Stats{ByStatus: make(map[Status]int)}

	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM applications GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("store: stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("store: stats: %w", err)
		}
		stats.ByStatus[Status(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: stats: %w", err)
	}

	var avg sql.NullFloat64
	if err := s.db.QueryRowContext(ctx,
		`SELECT AVG(score) FROM applications WHERE status <> ?`, string(StatusSkipped),
	).Scan(&avg); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("store: stats: %w", err)
	}
	stats.AverageScore = avg.Float64

	if stats.AppliedToday, err = s.CountApplied(ctx, now); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
