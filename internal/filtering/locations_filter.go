package filtering

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/zafaraftab1/CareerCopilot-AI/internal/jobs"
)

type locationsFilter struct {
	enabled   bool
	reason    string
	locations []string
	logger    *zap.Logger
}

// NewPreferredLocations creates a filter that keeps only postings located in
// one of the preferred locations. Postings without a location are kept.
func NewPreferredLocations(locations []string, logger *zap.Logger) Filter {
	f := &locationsFilter{logger: logger}
	for _, l := range locations {
		if l = strings.ToLower(strings.TrimSpace(l)); l != "" {
			f.locations = append(f.locations, l)
		}
	}
	f.enabled = len(f.locations) > 0
	if !f.enabled {
		f.reason = "no preferred locations configured"
	}
	return f
}

func (f *locationsFilter) Name() string { return "locations" }

func (f *locationsFilter) Disable(reason string) {
	f.enabled = false
	f.reason = reason
}

func (f *locationsFilter) IsEnabled() bool { return f.enabled }

func (f *locationsFilter) Validate() error {
	if f.logger == nil {
		return fmt.Errorf("logger is required")
	}
	return nil
}

func (f *locationsFilter) Apply(_ context.Context, p *jobs.Postings) (*jobs.Postings, Step, error) {
	initial := p.Len()

	excluded := p.Exclude(func(posting *jobs.Posting) bool {
		return !f.preferred(posting.Location)
	})
	if len(excluded) > 0 {
		f.logger.Info("excluding postings outside preferred locations",
			zap.Strings("locations", f.locations),
			zap.Stringers("excluded_postings", excluded),
			zap.Int("postings_left", p.Len()),
		)
	}

	return p, newStep(initial, p), nil
}

func (f *locationsFilter) preferred(location string) bool {
	location = strings.ToLower(strings.TrimSpace(location))
	if location == "" {
		return true
	}
	for _, l := range f.locations {
		if strings.Contains(location, l) {
			return true
		}
	}
	return false
}

func (f *locationsFilter) Status() Status {
	details := map[string]string{}
	if len(f.locations) > 0 {
		details["locations"] = strings.Join(f.locations, ",")
	}
	return Status{Name: f.Name(), Enabled: f.enabled, Reason: f.reason, Details: details}
}
