package filtering

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/zafaraftab1/CareerCopilot-AI/internal/jobs"
)

type companiesFilter struct {
	companies map[string]bool
	names     []string
	logger    *zap.Logger
}

// NewExcludedCompanies creates a filter that removes postings by companies configured in the config.
// Names are compared case-insensitively.
func NewExcludedCompanies(companies []string, logger *zap.Logger) Filter {
	f := &companiesFilter{
		companies: make(map[string]bool, len(companies)),
		logger:    logger,
	}
	for _, c := range companies {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		f.companies[strings.ToLower(c)] = true
		f.names = append(f.names, c)
	}
	return f
}

func (f *companiesFilter) Name() string { return "companies" }

func (f *companiesFilter) Disable(string) {}

func (f *companiesFilter) IsEnabled() bool { return true }

func (f *companiesFilter) Validate() error {
	if f.logger == nil {
		return fmt.Errorf("logger is required")
	}
	return nil
}

func (f *companiesFilter) Apply(_ context.Context, p *jobs.Postings) (*jobs.Postings, Step, error) {
	initial := p.Len()
	if len(f.companies) == 0 {
		return p, newStep(initial, p), nil
	}

	excluded := p.Exclude(func(posting *jobs.Posting) bool {
		return f.companies[strings.ToLower(strings.TrimSpace(posting.Company))]
	})
	if len(excluded) > 0 {
		f.logger.Info("excluding postings by companies",
			zap.Strings("excluded_companies", f.names),
			zap.Stringers("excluded_postings", excluded),
			zap.Int("postings_left", p.Len()),
		)
	}

	return p, newStep(initial, p), nil
}

func (f *companiesFilter) Status() Status {
	details := map[string]string{}
	if len(f.names) > 0 {
		details["companies"] = strings.Join(f.names, ",")
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
