package filtering

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zafaraftab1/CareerCopilot-AI/internal/jobs"
	"github.com/zafaraftab1/CareerCopilot-AI/internal/logger"
	"github.com/zafaraftab1/CareerCopilot-AI/internal/matching"
	"github.com/zafaraftab1/CareerCopilot-AI/internal/profile"
)

// ExcludeReasonLowScore is written to the exclude file for postings dropped by
// the match filter.
const ExcludeReasonLowScore = "match score below minimum"

type matchFilter struct {
	config  *MatchFilterConfig
	deps    *MatchFilterDeps
	results map[jobs.Key]*matching.Result
}

type MatchFilterDeps struct {
	Logger      *zap.Logger
	Scorer      *matching.Scorer
	Profile     *profile.Profile
	ExcludeFile string
}

type MatchFilterConfig struct {
	// MinimumScore drops postings scoring below it before they reach the
	// decision gate. Zero keeps everything.
	MinimumScore float64
	Workers      int
}

// NewMatch creates the step that scores every posting against the profile.
func NewMatch(cfg *MatchFilterConfig, deps *MatchFilterDeps) Filter {
	if cfg == nil {
		cfg = &MatchFilterConfig{}
	}
	return &matchFilter{
		config: cfg,
		deps:   deps,
	}
}

func (f *matchFilter) Name() string { return "match" }

func (f *matchFilter) Disable(string) {}

func (f *matchFilter) IsEnabled() bool { return true }

func (f *matchFilter) Validate() error {
	if f.deps == nil {
		return fmt.Errorf("deps are not initialized: filter is not usable")
	}
	if f.deps.Scorer == nil {
		return fmt.Errorf("scorer is required")
	}
	if f.deps.Logger == nil {
		return fmt.Errorf("logger is required")
	}
	if err := f.deps.Profile.Validate(); err != nil {
		return err
	}
	if f.config.MinimumScore < 0 || f.config.MinimumScore > 100 {
		return fmt.Errorf("minimum score must be within [0,100], got %v", f.config.MinimumScore)
	}
	return nil
}

func (f *matchFilter) Apply(ctx context.Context, p *jobs.Postings) (*jobs.Postings, Step, error) {
	initial := p.Len()

	results, err := f.score(ctx, p.Items)
	if err != nil {
		return p, Step{}, err
	}

	f.results = make(map[jobs.Key]*matching.Result, len(results))
	low := &jobs.Postings{}
	kept := make([]*jobs.Posting, 0, initial)

	for i, posting := range p.Items {
		result := results[i]
		f.results[posting.Key()] = result

		f.deps.Logger.Debug("posting scored",
			append(logger.PostingFields(posting), logger.ResultFields(result)...)...,
		)

		if result.Score < f.config.MinimumScore {
			f.deps.Logger.Info("posting dropped by match score",
				zap.Stringer("posting", posting.Key()),
				zap.Float64("score", result.Score),
				zap.String("reasoning", result.Reasoning),
			)
			low.Items = append(low.Items, posting)
			continue
		}
		kept = append(kept, posting)
	}

	p.Items = kept

	if low.Len() > 0 {
		if err := f.appendToExcludeFile(low); err != nil {
			f.deps.Logger.Warn("failed to append postings to exclude file", zap.Error(err))
		}
	}

	f.deps.Logger.Info("match scoring completed",
		zap.Int("initial_postings", initial),
		zap.Int("kept_postings", p.Len()),
		zap.String("catalog_version", f.deps.Scorer.Catalog().Version()),
	)

	return p, newStep(initial, p), nil
}

// score rates every posting concurrently. The scorer is read-only, so the only
// shared state is the result slice, written at distinct indexes.
func (f *matchFilter) score(ctx context.Context, postings []*jobs.Posting) ([]*matching.Result, error) {
	results := make([]*matching.Result, len(postings))

	workers := f.config.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, posting := range postings {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			result, err := f.deps.Scorer.Score(f.deps.Profile, posting)
			if err != nil {
				return fmt.Errorf("score %s: %w", posting.Key(), err)
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (f *matchFilter) appendToExcludeFile(postings *jobs.Postings) error {
	path := strings.TrimSpace(f.deps.ExcludeFile)
	if path == "" {
		return nil
	}

	if err := postings.ToExcluded(ExcludeReasonLowScore).AppendToFile(path); err != nil {
		return fmt.Errorf("write excluded postings: %w", err)
	}

	f.deps.Logger.Info("postings appended to exclude file",
		zap.Int("count", postings.Len()),
		zap.String("exclude_file", path),
	)
	return nil
}

// Results returns the match result of every posting scored by the last Apply,
// including the dropped ones.
func (f *matchFilter) Results() map[jobs.Key]*matching.Result {
	if f.results == nil {
		return map[jobs.Key]*matching.Result{}
	}
	return f.results
}

func (f *matchFilter) Status() Status {
	details := map[string]string{
		"minimum_score": strconv.FormatFloat(f.config.MinimumScore, 'f', 1, 64),
		"workers":       strconv.Itoa(f.config.Workers),
	}
	if f.deps != nil && f.deps.Scorer != nil {
		details["catalog_version"] = f.deps.Scorer.Catalog().Version()
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
