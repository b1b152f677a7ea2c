package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/zafaraftab1/CareerCopilot-AI/internal/jobs"
	"github.com/zafaraftab1/CareerCopilot-AI/internal/matching"
)

// Filter represents a single filtering step applied to postings.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate() error
	Apply(ctx context.Context, p *jobs.Postings) (*jobs.Postings, Step, error)
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

func newStep(initial int, p *jobs.Postings) Step {
	return Step{Initial: initial, Dropped: initial - p.Len(), Left: p.Len()}
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// resultCollector is implemented by filters that score postings.
type resultCollector interface {
	Results() map[jobs.Key]*matching.Result
}

// Filtering runs a chain of filters and gathers the match results produced
// along the way.
type Filtering struct {
	steps   []Filter
	logger  *zap.Logger
	results map[jobs.Key]*matching.Result
}

func New(steps []Filter, logger *zap.Logger) *Filtering {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Filtering{
		steps:   steps,
		logger:  logger,
		results: make(map[jobs.Key]*matching.Result),
	}
}

// RunFilters validates every enabled filter and then applies them in order.
func (f *Filtering) RunFilters(ctx context.Context, p *jobs.Postings) (*jobs.Postings, error) {
	for _, step := range f.steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	for _, step := range f.steps {
		if !step.IsEnabled() {
			f.logger.Info("filter disabled", zap.String("name", step.Name()))
			continue
		}

		next, info, err := step.Apply(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		f.logger.Info("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		p = next

		if collector, ok := step.(resultCollector); ok {
			for key, result := range collector.Results() {
				f.results[key] = result
			}
		}
	}

	return p, nil
}

// Results returns the match results collected by the last run.
func (f *Filtering) Results() map[jobs.Key]*matching.Result {
	return f.results
}

// Describe returns status entries for the configured filters.
func (f *Filtering) Describe() []Status {
	statuses := make([]Status, 0, len(f.steps))
	for _, step := range f.steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}
