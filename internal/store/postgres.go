package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zafaraftab1/CareerCopilot-AI/internal/jobs"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS applications (
	id          UUID PRIMARY KEY,
	portal      TEXT NOT NULL,
	posting_id  TEXT NOT NULL,
	title       TEXT NOT NULL,
	company     TEXT NOT NULL,
	url         TEXT,
	status      TEXT NOT NULL,
	score       DOUBLE PRECISION NOT NULL,
	reason      TEXT,
	message     TEXT,
	analysis    JSONB,
	applied_on  DATE NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS applications_applied_posting
	ON applications (portal, posting_id) WHERE status <> 'skipped';
CREATE INDEX IF NOT EXISTS applications_applied_on ON applications (applied_on);
`

// recordLockKey serializes Record across every process sharing the database.
const recordLockKey int64 = 0x63617265657231

const uniqueViolation = "23505"

// Postgres is the shared Store backend.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to dsn and prepares the schema.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("store: parse dsn: %w", err)
	}
	config.MaxConns = 4
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

type pgQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func pgDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func pgHasApplication(ctx context.Context, q pgQuerier, key jobs.Key) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM applications WHERE portal = $1 AND posting_id = $2 AND status <> $3)`,
		string(key.Portal), key.ID, string(StatusSkipped),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("store: lookup %s: %w", key, err)
	}
	return exists, nil
}

func pgCountApplied(ctx context.Context, q pgQuerier, day time.Time) (int, error) {
	var n int
	err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM applications WHERE applied_on = $1 AND status <> $2`,
		pgDay(day), string(StatusSkipped),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("store: count applied on %s: %w", Day(day), err)
	}
	return n, nil
}

func (p *Postgres) HasApplication(ctx context.Context, key jobs.Key) (bool, error) {
	return pgHasApplication(ctx, p.pool, key)
}

func (p *Postgres) CountApplied(ctx context.Context, day time.Time) (int, error) {
	return pgCountApplied(ctx, p.pool, day)
}

func (p *Postgres) Record(ctx context.Context, rec *Record, dailyLimit int) error {
	rec.prepare()

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if rec.Status.Counts() {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, recordLockKey); err != nil {
			return fmt.Errorf("store: lock: %w", err)
		}

		dup, err := pgHasApplication(ctx, tx, rec.Key())
		if err != nil {
			return err
		}
		if dup {
			return ErrDuplicate
		}

		n, err := pgCountApplied(ctx, tx, rec.CreatedAt)
		if err != nil {
			return err
		}
		if n >= dailyLimit {
			return ErrDailyLimit
		}
	}

	var analysis []byte
	if len(rec.Analysis) > 0 {
		analysis = rec.Analysis
	}

	_, err = tx.Exec(ctx, `INSERT INTO applications
		(id, portal, posting_id, title, company, url, status, score, reason, message, analysis, applied_on, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		rec.ID, string(rec.Portal), rec.PostingID, rec.Title, rec.Company, rec.URL,
		string(rec.Status), rec.Score, rec.Reason, rec.Message, analysis,
		pgDay(rec.CreatedAt), rec.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicate
		}
		return fmt.Errorf("store: insert %s: %w", rec.Key(), err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

func (p *Postgres) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var current string
	err = tx.QueryRow(ctx, `SELECT status FROM applications WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("store: lookup %s: %w", id, err)
	}
	if err := checkTransition(Status(current), status); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `UPDATE applications SET status = $1 WHERE id = $2`, string(status), id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicate
		}
		return fmt.Errorf("store: update %s: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

func (p *Postgres) List(ctx context.Context, opts ListOptions) ([]*Record, error) {
	query := `SELECT id, portal, posting_id, title, company, COALESCE(url, ''), status, score,
		COALESCE(reason, ''), COALESCE(message, ''), analysis, created_at
		FROM applications`
	var args []any
	if opts.Status != "" {
		args = append(args, string(opts.Status))
		query += fmt.Sprintf(` WHERE status = $%d`, len(args))
	}
	query += ` ORDER BY created_at DESC`
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var (
			rec            Record
			portal, status string
			analysis       []byte
		)
		if err := rows.Scan(&rec.ID, &portal, &rec.PostingID, &rec.Title, &rec.Company, &rec.URL,
			&status, &rec.Score, &rec.Reason, &rec.Message, &analysis, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan: %w", err)
		}
		rec.Portal = jobs.Portal(portal)
		rec.Status = Status(status)
		if len(analysis) > 0 {
			rec.Analysis = analysis
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	return records, nil
}

func (p *Postgres) Stats(ctx context.Context, now time.Time) (*Stats, error) {
	stats := &Stats{ByStatus: make(map[Status]int)}

	rows, err := p.pool.Query(ctx, `SELECT status, COUNT(*) FROM applications GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("store: stats: %w", err)
	}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			rows.Close()
			return nil, fmt.Errorf("store: stats: %w", err)
		}
		stats.ByStatus[Status(status)] = n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: stats: %w", err)
	}

	var avg *float64
	if err := p.pool.QueryRow(ctx,
		`SELECT AVG(score) FROM applications WHERE status <> $1`, string(StatusSkipped),
	).Scan(&avg); err != nil {
		return nil, fmt.Errorf("store: stats: %w", err)
	}
	if avg != nil {
		stats.AverageScore = *avg
	}

	if stats.AppliedToday, err = p.CountApplied(ctx, now); err != nil {
		return nil, err
	}
	return stats, nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
