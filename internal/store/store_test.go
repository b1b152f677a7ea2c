package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zafaraftab1/CareerCopilot-AI/internal/jobs"
)

func newPosting(id string) *jobs.Posting {
	return &jobs.Posting{
		ID:      id,
		Title:   "Python Developer",
		Company: "Acme",
		Portal:  jobs.PortalNaukri,
		URL:     "https://example.com/" + id,
	}
}

func openSQLite(t *testing.T) Store {
	t.Helper()
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// backends returns every backend available to the test run. Postgres is only
// exercised when CAREERCOPILOT_TEST_DATABASE_URL points at a scratch database.
func backends(t *testing.T) map[string]func(t *testing.T) Store {
	t.Helper()
	b := map[string]func(t *testing.T) Store{"sqlite": openSQLite}
	if dsn := os.Getenv("CAREERCOPILOT_TEST_DATABASE_URL"); dsn != "" {
		b["postgres"] = func(t *testing.T) Store {
			s, err := OpenPostgres(context.Background(), dsn)
			require.NoError(t, err)
			_, err = s.pool.Exec(context.Background(), `TRUNCATE applications`)
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		}
	}
	return b
}

func TestRecordAndLookup(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)

			applied := NewRecord(newPosting("1"), StatusApplied, 82.5)
			applied.Analysis = json.RawMessage(`{"score":82.5}`)
			applied.Message = "Hello"
			require.NoError(t, s.Record(ctx, applied, 20))

			skipped := NewRecord(newPosting("2"), StatusSkipped, 40)
			skipped.Reason = "below match threshold"
			require.NoError(t, s.Record(ctx, skipped, 20))

			ok, err := s.HasApplication(ctx, jobs.Key{Portal: jobs.PortalNaukri, ID: "1"})
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = s.HasApplication(ctx, jobs.Key{Portal: jobs.PortalNaukri, ID: "2"})
			require.NoError(t, err)
			assert.False(t, ok, "skipped postings are not applications")

			ok, err = s.HasApplication(ctx, jobs.Key{Portal: jobs.PortalLinkedIn, ID: "1"})
			require.NoError(t, err)
			assert.False(t, ok)

			n, err := s.CountApplied(ctx, time.Now())
			require.NoError(t, err)
			assert.Equal(t, 1, n)

			n, err = s.CountApplied(ctx, time.Now().AddDate(0, 0, -1))
			require.NoError(t, err)
			assert.Equal(t, 0, n)

			records, err := s.List(ctx, ListOptions{Status: StatusApplied})
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.Equal(t, applied.ID, records[0].ID)
			assert.Equal(t, "Hello", records[0].Message)
			assert.JSONEq(t, `{"score":82.5}`, string(records[0].Analysis))
			assert.Equal(t, 82.5, records[0].Score)

			all, err := s.List(ctx, ListOptions{Limit: 10})
			require.NoError(t, err)
			assert.Len(t, all, 2)
		})
	}
}

func TestRecordRejectsDuplicate(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)

			require.NoError(t, s.Record(ctx, NewRecord(newPosting("1"), StatusApplied, 90), 20))
			err := s.Record(ctx, NewRecord(newPosting("1"), StatusApplied, 91), 20)
			assert.ErrorIs(t, err, ErrDuplicate)

			// Skips may be recorded any number of times.
			require.NoError(t, s.Record(ctx, NewRecord(newPosting("1"), StatusSkipped, 91), 20))
		})
	}
}

func TestRecordEnforcesDailyLimit(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)

			require.NoError(t, s.Record(ctx, NewRecord(newPosting("1"), StatusApplied, 90), 2))
			require.NoError(t, s.Record(ctx, NewRecord(newPosting("2"), StatusApplied, 90), 2))
			err := s.Record(ctx, NewRecord(newPosting("3"), StatusApplied, 90), 2)
			assert.ErrorIs(t, err, ErrDailyLimit)

			yesterday := NewRecord(newPosting("4"), StatusApplied, 90)
			yesterday.CreatedAt = time.Now().AddDate(0, 0, -1)
			require.NoError(t, s.Record(ctx, yesterday, 2))
		})
	}
}

func TestConcurrentRecordNeverExceedsLimit(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)

			const (
				workers = 10
				limit   = 3
			)

			var (
				wg   sync.WaitGroup
				mu   sync.Mutex
				errs []error
			)
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					err := s.Record(ctx, NewRecord(newPosting(string(rune('a'+i))), StatusApplied, 90), limit)
					mu.Lock()
					errs = append(errs, err)
					mu.Unlock()
				}(i)
			}
			wg.Wait()

			ok := 0
			for _, err := range errs {
				if err == nil {
					ok++
					continue
				}
				assert.ErrorIs(t, err, ErrDailyLimit)
			}
			assert.Equal(t, limit, ok)

			n, err := s.CountApplied(ctx, time.Now())
			require.NoError(t, err)
			assert.Equal(t, limit, n)
		})
	}
}

func TestUpdateStatusAndStats(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)

			rec := NewRecord(newPosting("1"), StatusApplied, 80)
			require.NoError(t, s.Record(ctx, rec, 20))
			require.NoError(t, s.Record(ctx, NewRecord(newPosting("2"), StatusApplied, 90), 20))
			require.NoError(t, s.Record(ctx, NewRecord(newPosting("3"), StatusSkipped, 10), 20))

			require.NoError(t, s.UpdateStatus(ctx, rec.ID, StatusInterview))
			assert.ErrorIs(t, s.UpdateStatus(ctx, NewRecord(newPosting("x"), StatusApplied, 0).ID, StatusRejected), ErrNotFound)

			// Interviews still count as applications.
			ok, err := s.HasApplication(ctx, rec.Key())
			require.NoError(t, err)
			assert.True(t, ok)

			stats, err := s.Stats(ctx, time.Now())
			require.NoError(t, err)
			assert.Equal(t, map[Status]int{StatusApplied: 1, StatusInterview: 1, StatusSkipped: 1}, stats.ByStatus)
			assert.Equal(t, 2, stats.AppliedToday)
			assert.InDelta(t, 85.0, stats.AverageScore, 0.001)
		})
	}
}

func TestUpdateStatusKeepsSkipsOutOfTheCount(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)

			applied := NewRecord(newPosting("1"), StatusApplied, 80)
			require.NoError(t, s.Record(ctx, applied, 20))
			skippedTwin := NewRecord(newPosting("1"), StatusSkipped, 80)
			require.NoError(t, s.Record(ctx, skippedTwin, 20))
			skipped := NewRecord(newPosting("2"), StatusSkipped, 40)
			require.NoError(t, s.Record(ctx, skipped, 20))

			assert.ErrorIs(t, s.UpdateStatus(ctx, skippedTwin.ID, StatusApplied), ErrStatusTransition)
			assert.ErrorIs(t, s.UpdateStatus(ctx, skipped.ID, StatusInterview), ErrStatusTransition)

			// Withdrawing an application frees the slot.
			require.NoError(t, s.UpdateStatus(ctx, applied.ID, StatusSkipped))
			n, err := s.CountApplied(ctx, time.Now())
			require.NoError(t, err)
			assert.Zero(t, n)

			records, err := s.List(ctx, ListOptions{Status: StatusApplied})
			require.NoError(t, err)
			assert.Empty(t, records)
		})
	}
}

func TestCheckTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from, to Status
		wantErr  bool
	}{
		{from: StatusApplied, to: StatusInterview},
		{from: StatusInterview, to: StatusRejected},
		{from: StatusApplied, to: StatusSkipped},
		{from: StatusSkipped, to: StatusSkipped},
		{from: StatusSkipped, to: StatusApplied, wantErr: true},
		{from: StatusSkipped, to: StatusInterview, wantErr: true},
		{from: StatusSkipped, to: StatusRejected, wantErr: true},
	}

	for _, tt := range tests {
		err := checkTransition(tt.from, tt.to)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrStatusTransition, "%s -> %s", tt.from, tt.to)
			continue
		}
		assert.NoError(t, err, "%s -> %s", tt.from, tt.to)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Config{Driver: DriverSQLite, Path: "x.db"}.Validate())
	assert.NoError(t, Config{Driver: DriverPostgres, DSN: "postgres://localhost/db"}.Validate())
	assert.Error(t, Config{Driver: DriverSQLite}.Validate())
	assert.Error(t, Config{Driver: DriverPostgres}.Validate())
	assert.Error(t, Config{Driver: "mysql"}.Validate())
}

func TestOpenSQLiteFromConfig(t *testing.T) {
	t.Parallel()

	s, err := Open(context.Background(), Config{Driver: DriverSQLite, Path: filepath.Join(t.TempDir(), "a.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	n, err := s.CountApplied(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestParseStatus(t *testing.T) {
	t.Parallel()

	s, err := ParseStatus(" Interview ")
	require.NoError(t, err)
	assert.Equal(t, StatusInterview, s)

	_, err = ParseStatus("offer")
	assert.Error(t, err)
}
