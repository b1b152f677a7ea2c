package logger

import (
	"strings"

	"go.uber.org/zap"

	"github.com/zafaraftab1/CareerCopilot-AI/internal/jobs"
	"github.com/zafaraftab1/CareerCopilot-AI/internal/matching"
)

const (
	FieldProvider = "ai_provider"
	FieldModel    = "ai_model"

	FieldPosting = "posting"
	FieldCompany = "company"
	FieldTitle   = "title"
	FieldScore   = "score"
	FieldMatched = "matched_skills"
	FieldMissing = "missing_skills"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// ProviderFields describes the AI provider and model. Empty values are dropped.
func ProviderFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

// PostingFields identifies a posting in log entries.
func PostingFields(p *jobs.Posting) []zap.Field {
	if p == nil {
		return nil
	}
	return append(
		[]zap.Field{zap.Stringer(FieldPosting, p.Key())},
		StringFields(
			StringField{Key: FieldCompany, Value: p.Company},
			StringField{Key: FieldTitle, Value: p.Title},
		)...,
	)
}

// ResultFields summarises a match result.
func ResultFields(r *matching.Result) []zap.Field {
	if r == nil {
		return nil
	}
	return []zap.Field{
		zap.Float64(FieldScore, r.Score),
		zap.Strings(FieldMatched, skillNames(r.MatchedSkills)),
		zap.Strings(FieldMissing, skillNames(r.MissingSkills)),
	}
}

func skillNames(matches []matching.SkillMatch) []string {
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m.Skill)
	}
	return names
}
