package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/zafaraftab1/CareerCopilot-AI/internal/jobs"
)

type duplicatesFilter struct {
	logger *zap.Logger
}

// NewDuplicates creates a filter that drops repeated postings within one batch.
func NewDuplicates(logger *zap.Logger) Filter {
	return &duplicatesFilter{logger: logger}
}

func (f *duplicatesFilter) Name() string { return "duplicates" }

func (f *duplicatesFilter) Disable(string) {}

func (f *duplicatesFilter) IsEnabled() bool { return true }

func (f *duplicatesFilter) Validate() error {
	if f.logger == nil {
		return fmt.Errorf("logger is required")
	}
	return nil
}

func (f *duplicatesFilter) Apply(_ context.Context, p *jobs.Postings) (*jobs.Postings, Step, error) {
	initial := p.Len()
	dropped := p.Deduplicate()
	if len(dropped) > 0 {
		f.logger.Debug("dropping repeated postings",
			zap.Stringers("duplicated_postings", dropped),
			zap.Int("postings_left", p.Len()),
		)
	}
	return p, newStep(initial, p), nil
}
