// Package apply turns match results into recorded application decisions.
package apply

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/zafaraftab1/CareerCopilot-AI/internal/ai"
	"github.com/zafaraftab1/CareerCopilot-AI/internal/decision"
	"github.com/zafaraftab1/CareerCopilot-AI/internal/jobs"
	"github.com/zafaraftab1/CareerCopilot-AI/internal/logger"
	"github.com/zafaraftab1/CareerCopilot-AI/internal/matching"
	"github.com/zafaraftab1/CareerCopilot-AI/internal/profile"
	"github.com/zafaraftab1/CareerCopilot-AI/internal/store"
)

// DefaultMessage is sent when neither the config nor the AI writer provides one.
const DefaultMessage = "Hello! I would like to apply for this position. My profile matches the key requirements and I would be glad to discuss the role."

// Outcome is the analysis and verdict for one posting.
type Outcome struct {
	Posting        *jobs.Posting         `json:"-"`
	Score          float64               `json:"score"`
	MatchedSkills  []matching.SkillMatch `json:"matched_skills"`
	MissingSkills  []matching.SkillMatch `json:"missing_skills"`
	Advantages     []string              `json:"advantages"`
	Reasoning      string                `json:"reasoning"`
	Decision       decision.Decision     `json:"decision"`
	DecisionReason decision.Reason       `json:"decision_reason"`
	Message        string                `json:"message,omitempty"`
}

func newOutcome(posting *jobs.Posting, result *matching.Result, verdict decision.Verdict) *Outcome {
	return &Outcome{
		Posting:        posting,
		Score:          result.Score,
		MatchedSkills:  result.MatchedSkills,
		MissingSkills:  result.MissingSkills,
		Advantages:     result.Advantages,
		Reasoning:      result.Reasoning,
		Decision:       verdict.Decision,
		DecisionReason: verdict.Reason,
	}
}

func (o *Outcome) skip(reason decision.Reason) {
	o.Decision = decision.Skip
	o.DecisionReason = reason
	o.Message = ""
}

// Summary counts the outcomes of a Submit call.
type Summary struct {
	Applied  int                     `json:"applied"`
	Skipped  int                     `json:"skipped"`
	ByReason map[decision.Reason]int `json:"by_reason"`
}

type Deps struct {
	Store   store.Store
	Gate    *decision.Gate
	Profile *profile.Profile
	// Writer is optional. Without it DefaultMessage (or the configured
	// message) is used.
	Writer ai.MessageWriter
	Logger *zap.Logger
}

type Config struct {
	Message     string
	ExcludeFile string
	DryRun      bool
}

// Applier runs the decision gate over scored postings and records the
// verdicts.
type Applier struct {
	deps   Deps
	config Config
	now    func() time.Time
}

func New(cfg Config, deps Deps) (*Applier, error) {
	if deps.Store == nil {
		return nil, errors.New("store is required")
	}
	if deps.Gate == nil {
		return nil, errors.New("decision gate is required")
	}
	if deps.Profile == nil {
		return nil, errors.New("profile is required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Applier{deps: deps, config: cfg, now: time.Now}, nil
}

// Plan decides every posting in order. Postings decided as apply earlier in
// the batch count towards the daily limit of the later ones.
func (a *Applier) Plan(ctx context.Context, postings *jobs.Postings, results map[jobs.Key]*matching.Result) ([]*Outcome, error) {
	appliedToday, err := a.deps.Store.CountApplied(ctx, a.now())
	if err != nil {
		return nil, err
	}

	planned := make(map[jobs.Key]bool)
	outcomes := make([]*Outcome, 0, postings.Len())

	for _, posting := range postings.Items {
		key := posting.Key()
		result, ok := results[key]
		if !ok || result == nil {
			return nil, fmt.Errorf("posting %s has no match result", key)
		}

		dup := planned[key]
		if !dup {
			if dup, err = a.deps.Store.HasApplication(ctx, key); err != nil {
				return nil, err
			}
		}

		verdict := a.deps.Gate.Decide(decision.Input{
			Score:        result.Score,
			AppliedToday: appliedToday,
			Duplicate:    dup,
		})
		if verdict.Applied() {
			appliedToday++
			planned[key] = true
		}

		outcomes = append(outcomes, newOutcome(posting, result, verdict))
	}

	return outcomes, nil
}

// Submit records the planned outcomes. An apply that loses a race against
// another run is recorded as a skip with the reason the store reported.
func (a *Applier) Submit(ctx context.Context, outcomes []*Outcome) (*Summary, error) {
	summary := &Summary{ByReason: make(map[decision.Reason]int)}
	lowScore := &jobs.Postings{}

	for _, o := range outcomes {
		if o.Decision == decision.Apply {
			if err := a.apply(ctx, o); err != nil {
				return summary, err
			}
		}

		if o.Decision == decision.Skip {
			if err := a.recordSkip(ctx, o); err != nil {
				return summary, err
			}
			if o.DecisionReason == decision.ReasonBelowThreshold {
				lowScore.Items = append(lowScore.Items, o.Posting)
			}
			summary.Skipped++
			summary.ByReason[o.DecisionReason]++
			continue
		}

		summary.Applied++
	}

	if err := a.excludeLowScores(lowScore); err != nil {
		a.deps.Logger.Warn("failed to append postings to exclude file", zap.Error(err))
	}

	a.deps.Logger.Info("decisions recorded",
		zap.Int("applied", summary.Applied),
		zap.Int("skipped", summary.Skipped),
		zap.Bool("dry_run", a.config.DryRun),
	)

	return summary, nil
}

func (a *Applier) apply(ctx context.Context, o *Outcome) error {
	fields := logger.PostingFields(o.Posting)

	// Dry runs do not call the message writer.
	if a.config.DryRun {
		o.Message = a.configuredMessage()
		a.deps.Logger.Info("would apply to posting", append(fields, zap.Float64("score", o.Score))...)
		return nil
	}

	o.Message = a.message(ctx, o)

	rec := store.NewRecord(o.Posting, store.StatusApplied, o.Score)
	rec.CreatedAt = a.now()
	rec.Message = o.Message

	analysis, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}
	rec.Analysis = analysis

	err = a.deps.Store.Record(ctx, rec, a.deps.Gate.DailyLimit)
	switch {
	case errors.Is(err, store.ErrDuplicate):
		o.skip(decision.ReasonDuplicate)
	case errors.Is(err, store.ErrDailyLimit):
		o.skip(decision.ReasonDailyLimit)
	case err != nil:
		return err
	default:
		a.deps.Logger.Info("application recorded", append(fields, zap.Float64("score", o.Score))...)
		return nil
	}

	a.deps.Logger.Warn("application lost to a concurrent run",
		append(fields, zap.String("reason", string(o.DecisionReason)))...,
	)
	return nil
}

func (a *Applier) recordSkip(ctx context.Context, o *Outcome) error {
	if a.config.DryRun {
		return nil
	}

	rec := store.NewRecord(o.Posting, store.StatusSkipped, o.Score)
	rec.CreatedAt = a.now()
	rec.Reason = string(o.DecisionReason)

	analysis, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}
	rec.Analysis = analysis

	return a.deps.Store.Record(ctx, rec, a.deps.Gate.DailyLimit)
}

// message picks the application message: AI generated, then configured, then
// built in.
func (a *Applier) message(ctx context.Context, o *Outcome) string {
	if a.deps.Writer != nil {
		result := &matching.Result{
			Score:         o.Score,
			MatchedSkills: o.MatchedSkills,
			MissingSkills: o.MissingSkills,
			Advantages:    o.Advantages,
			Reasoning:     o.Reasoning,
		}
		msg, err := a.deps.Writer.Compose(ctx, a.deps.Profile, o.Posting, result)
		if err == nil && msg != nil && strings.TrimSpace(msg.Text) != "" {
			return msg.Text
		}
		a.deps.Logger.Warn("message generation failed, using configured message",
			append(logger.PostingFields(o.Posting), zap.Error(err))...,
		)
	}

	return a.configuredMessage()
}

func (a *Applier) configuredMessage() string {
	if m := strings.TrimSpace(a.config.Message); m != "" {
		return m
	}
	return DefaultMessage
}

func (a *Applier) excludeLowScores(postings *jobs.Postings) error {
	path := strings.TrimSpace(a.config.ExcludeFile)
	if path == "" || postings.Len() == 0 || a.config.DryRun {
		return nil
	}
	return postings.ToExcluded(string(decision.ReasonBelowThreshold)).AppendToFile(path)
}
