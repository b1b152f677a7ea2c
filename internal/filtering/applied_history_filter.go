package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/zafaraftab1/CareerCopilot-AI/internal/jobs"
)

const forceFlagSetMsg = "force flag is set"

// HistoryLookup answers whether a posting was already applied to.
type HistoryLookup interface {
	HasApplication(ctx context.Context, key jobs.Key) (bool, error)
}

type appliedHistoryFilter struct {
	deps   *AppliedHistoryDeps
	ignore bool
}

type AppliedHistoryDeps struct {
	History HistoryLookup
	Logger  *zap.Logger
}

type AppliedHistoryConfig struct {
	Ignore bool
}

// NewAppliedHistory creates a filter that removes postings found in the application history.
func NewAppliedHistory(cfg *AppliedHistoryConfig, deps *AppliedHistoryDeps) Filter {
	ignore := false
	if cfg != nil {
		ignore = cfg.Ignore
	}

	return &appliedHistoryFilter{
		deps:   deps,
		ignore: ignore,
	}
}

func (f *appliedHistoryFilter) Name() string { return "applied_history" }

func (f *appliedHistoryFilter) Disable(string) {}

func (f *appliedHistoryFilter) IsEnabled() bool { return true }

func (f *appliedHistoryFilter) Validate() error {
	if f.deps == nil || f.deps.History == nil {
		return fmt.Errorf("application history is required")
	}

	if f.deps.Logger == nil {
		return fmt.Errorf("logger is required")
	}

	return nil
}

func (f *appliedHistoryFilter) Apply(ctx context.Context, p *jobs.Postings) (*jobs.Postings, Step, error) {
	initial := p.Len()
	if f.ignore {
		f.deps.Logger.Info("keeping already applied postings", zap.String("reason", forceFlagSetMsg))
		return p, newStep(initial, p), nil
	}

	applied := make(map[jobs.Key]bool)
	for _, posting := range p.Items {
		ok, err := f.deps.History.HasApplication(ctx, posting.Key())
		if err != nil {
			return p, Step{}, fmt.Errorf("check application history: %w", err)
		}
		if ok {
			applied[posting.Key()] = true
		}
	}

	excluded := p.Exclude(func(posting *jobs.Posting) bool { return applied[posting.Key()] })
	if len(excluded) > 0 {
		f.deps.Logger.Info("excluding postings based on application history",
			zap.Stringers("excluded_postings", excluded),
			zap.Int("postings_left", p.Len()),
		)
	}

	return p, newStep(initial, p), nil
}

func (f *appliedHistoryFilter) Status() Status {
	reason := ""
	if f.ignore {
		reason = "skip requested via flag"
	}
	return Status{Name: f.Name(), Enabled: true, Reason: reason}
}
