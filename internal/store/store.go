// Package store persists application records so that duplicate detection and
// the daily limit survive between runs.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zafaraftab1/CareerCopilot-AI/internal/jobs"
	"github.com/zafaraftab1/CareerCopilot-AI/internal/secrets"
)

var (
	// ErrDuplicate is returned when recording an application for a posting
	// that was already applied to.
	ErrDuplicate = errors.New("posting already applied to")
	// ErrDailyLimit is returned when recording an application would exceed the
	// daily limit.
	ErrDailyLimit = errors.New("daily application limit reached")
	ErrNotFound   = errors.New("record not found")
	// ErrStatusTransition is returned when a skipped record is marked as an
	// application. Applications are only created through Record, which
	// enforces the daily limit.
	ErrStatusTransition = errors.New("skipped records cannot become applications")
)

// Status is the lifecycle state of a record.
type Status string

const (
	StatusApplied   Status = "applied"
	StatusSkipped   Status = "skipped"
	StatusInterview Status = "interview"
	StatusRejected  Status = "rejected"
)

// Counts reports whether the status counts as an application. Interview and
// rejected records started as applications.
func (s Status) Counts() bool {
	switch s {
	case StatusApplied, StatusInterview, StatusRejected:
		return true
	}
	return false
}

// checkTransition validates changing a record from one status to another.
func checkTransition(from, to Status) error {
	if from == StatusSkipped && to.Counts() {
		return fmt.Errorf("%w: %s -> %s", ErrStatusTransition, from, to)
	}
	return nil
}

func ParseStatus(s string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(s)))
	switch status {
	case StatusApplied, StatusSkipped, StatusInterview, StatusRejected:
		return status, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

const dayLayout = "2006-01-02"

// Day truncates t to its calendar day in t's location.
func Day(t time.Time) string {
	return t.Format(dayLayout)
}

// Record is one decision taken for one posting.
type Record struct {
	ID        uuid.UUID       `json:"id"`
	Portal    jobs.Portal     `json:"portal"`
	PostingID string          `json:"portal_job_id"`
	Title     string          `json:"title"`
	Company   string          `json:"company"`
	URL       string          `json:"job_url,omitempty"`
	Status    Status          `json:"status"`
	Score     float64         `json:"score"`
	Reason    string          `json:"reason,omitempty"`
	Message   string          `json:"message,omitempty"`
	Analysis  json.RawMessage `json:"analysis,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewRecord fills the posting fields of a record.
func NewRecord(p *jobs.Posting, status Status, score float64) *Record {
	return &Record{
		ID:        uuid.New(),
		Portal:    p.Portal,
		PostingID: p.ID,
		Title:     p.Title,
		Company:   p.Company,
		URL:       p.URL,
		Status:    status,
		Score:     score,
		CreatedAt: time.Now(),
	}
}

func (r *Record) Key() jobs.Key {
	return jobs.Key{Portal: r.Portal, ID: r.PostingID}
}

func (r *Record) prepare() {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
}

// ListOptions narrows List results. Zero values mean no filter.
type ListOptions struct {
	Status Status
	Limit  int
}

// Stats summarises the stored records.
type Stats struct {
	ByStatus     map[Status]int `json:"by_status"`
	AppliedToday int            `json:"applied_today"`
	AverageScore float64        `json:"average_applied_score"`
}

// Store is the persistence boundary of the application pipeline.
type Store interface {
	// HasApplication reports whether the posting was already applied to.
	HasApplication(ctx context.Context, key jobs.Key) (bool, error)
	// CountApplied returns the number of applications recorded on the day
	// of the given time.
	CountApplied(ctx context.Context, day time.Time) (int, error)
	// Record stores rec. Applications are re-checked against duplicates and
	// dailyLimit inside the same transaction as the insert, returning
	// ErrDuplicate or ErrDailyLimit when a concurrent run got there first.
	Record(ctx context.Context, rec *Record, dailyLimit int) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	List(ctx context.Context, opts ListOptions) ([]*Record, error)
	Stats(ctx context.Context, now time.Time) (*Stats, error)
	Close() error
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config selects and configures the store backend.
type Config struct {
	Driver string `mapstructure:"driver"`
	// Path is the SQLite database file.
	Path string `mapstructure:"path"`
	// DSN and DSNFile configure the Postgres connection. DSNFile wins when
	// both are set.
	DSN     string `mapstructure:"dsn"`
	DSNFile string `mapstructure:"dsn-file"`
}

func (c Config) Validate() error {
	switch c.Driver {
	case DriverSQLite:
		if strings.TrimSpace(c.Path) == "" {
			return errors.New("store.path is required for the sqlite driver")
		}
	case DriverPostgres:
		if strings.TrimSpace(c.DSN) == "" && strings.TrimSpace(c.DSNFile) == "" {
			return errors.New("store.dsn or store.dsn-file is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Driver)
	}
	return nil
}

// Open connects to the configured backend and prepares its schema.
func Open(ctx context.Context, cfg Config) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Driver {
	case DriverPostgres:
		dsn, err := secrets.Load(secrets.Source{Name: "postgres dsn", Value: cfg.DSN, File: cfg.DSNFile})
		if err != nil {
			return nil, err
		}
		return OpenPostgres(ctx, dsn)
	default:
		return OpenSQLite(ctx, cfg.Path)
	}
}
