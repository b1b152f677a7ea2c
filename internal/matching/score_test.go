package matching

import (
	"errors"
	"reflect"
	"testing"

	"github.com/zafaraftab1/CareerCopilot-AI/internal/jobs"
	"github.com/zafaraftab1/CareerCopilot-AI/internal/profile"
)

func newTestScorer(t *testing.T) *Scorer {
	t.Helper()
	s, err := NewScorer(DefaultCatalog(), DefaultPolicy())
	if err != nil {
		t.Fatalf("NewScorer: %v", err)
	}
	return s
}

func candidate(years float64, specializations ...string) *profile.Profile {
	return &profile.Profile{
		Name:            "Test Candidate",
		ExperienceYears: years,
		Skills: map[string][]string{
			"programming_languages": {"Python"},
			"web_frameworks":        {"Django"},
			"cloud":                 {"AWS"},
		},
		Specializations: specializations,
	}
}

func skillNames(matches []SkillMatch) []string {
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Skill)
	}
	return out
}

func TestScorePartialMatch(t *testing.T) {
	s := newTestScorer(t)

	result, err := s.Score(candidate(4), &jobs.Posting{
		Description: "Looking for a Python Developer with Django and PostgreSQL experience, 3-5 years.",
	})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	if result.Score != 66.7 {
		t.Fatalf("expected score 66.7, got %v", result.Score)
	}
	if result.BaseScore != 66.7 || result.ExperienceAdjustment != 0 || result.SpecializationBonus != 0 {
		t.Fatalf("unexpected breakdown %+v", result)
	}
	if got := skillNames(result.MatchedSkills); !reflect.DeepEqual(got, []string{"Python", "Django"}) {
		t.Fatalf("unexpected matched skills %v", got)
	}
	for _, m := range result.MatchedSkills {
		if m.Strength != 100 {
			t.Fatalf("expected exact match strength for %s, got %d", m.Skill, m.Strength)
		}
	}
	if got := skillNames(result.MissingSkills); !reflect.DeepEqual(got, []string{"PostgreSQL"}) {
		t.Fatalf("unexpected missing skills %v", got)
	}

	want := "Matched 2/3 required skills; experience aligned; 0 specialization bonuses applied."
	if result.Reasoning != want {
		t.Fatalf("unexpected reasoning %q", result.Reasoning)
	}
	if result.CatalogVersion != DefaultCatalogVersion {
		t.Fatalf("unexpected catalog version %q", result.CatalogVersion)
	}
}

func TestScoreSpecializationBonus(t *testing.T) {
	s := newTestScorer(t)

	result, err := s.Score(candidate(4, "Microservices", "ETL Pipelines"), &jobs.Posting{
		Description: "Requirements: Python, Django, AWS, Docker, Kubernetes, Terraform. We build microservices and ETL pipelines.",
	})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	if result.BaseScore != 50 {
		t.Fatalf("expected base score 50, got %v", result.BaseScore)
	}
	if result.SpecializationBonus != 10 {
		t.Fatalf("expected bonus 10, got %v", result.SpecializationBonus)
	}
	if result.Score != 60 {
		t.Fatalf("expected score 60, got %v", result.Score)
	}

	wantMissing := []string{"Docker", "Kubernetes", "Terraform"}
	if got := skillNames(result.MissingSkills); !reflect.DeepEqual(got, wantMissing) {
		t.Fatalf("unexpected missing skills %v", got)
	}

	wantAdvantages := []string{"Specialization match: Microservices", "Specialization match: ETL Pipelines"}
	if !reflect.DeepEqual(result.Advantages, wantAdvantages) {
		t.Fatalf("unexpected advantages %v", result.Advantages)
	}

	want := "Matched 3/6 required skills; experience requirement not stated; 2 specialization bonuses applied."
	if result.Reasoning != want {
		t.Fatalf("unexpected reasoning %q", result.Reasoning)
	}
}

func TestScoreExperienceAdjustment(t *testing.T) {
	tests := []struct {
		name     string
		years    float64
		required string
		want     float64
		note     string
	}{
		{name: "shortfall", years: 4, required: "7-10 years", want: -6, note: "3 years below required minimum"},
		{name: "shortfall capped", years: 0, required: "15+ years", want: -20, note: "15 years below required minimum"},
		{name: "within range", years: 4, required: "3-5 years", want: 0, note: "experience aligned"},
		{name: "inside grace", years: 8, required: "3-5 years", want: 0, note: "experience aligned"},
		{name: "overqualified", years: 12, required: "3-5 years", want: -4, note: "7 years above required range"},
		{name: "open range", years: 20, required: "5+ years", want: 0, note: "experience aligned"},
		{name: "half year short", years: 2.5, required: "3-5 years", want: -1, note: "0.5 years below required minimum"},
	}

	s := newTestScorer(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adj, note := s.experienceAdjustment(tt.years, &jobs.Posting{ExperienceRequired: tt.required})
			if adj != tt.want {
				t.Fatalf("expected adjustment %v, got %v", tt.want, adj)
			}
			if note != tt.note {
				t.Fatalf("expected note %q, got %q", tt.note, note)
			}
		})
	}
}

func TestScoreShortfallLowersFinalScore(t *testing.T) {
	s := newTestScorer(t)

	result, err := s.Score(candidate(4), &jobs.Posting{
		Description:        "Python developer needed",
		ExperienceRequired: "7-10 years",
	})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if result.ExperienceAdjustment != -6 || result.Score != 94 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestScoreClampsToHundred(t *testing.T) {
	s := newTestScorer(t)

	p := candidate(4, "Data Engineering", "ETL Pipelines", "Microservices", "API Integrations")
	result, err := s.Score(p, &jobs.Posting{
		Description: "Python. Microservices, ETL, data pipelines, api integration",
	})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if result.SpecializationBonus != 15 {
		t.Fatalf("expected capped bonus 15, got %v", result.SpecializationBonus)
	}
	if result.Score != 100 {
		t.Fatalf("expected score clamped to 100, got %v", result.Score)
	}
}

func TestScoreClampsToZero(t *testing.T) {
	s := newTestScorer(t)

	p := &profile.Profile{Name: "Junior", Skills: map[string][]string{"programming_languages": {"Python"}}}
	result, err := s.Score(p, &jobs.Posting{
		Description:        "Python, Java, Docker, Kubernetes, Terraform, Jenkins and Ansible.",
		ExperienceRequired: "15+ years",
	})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if result.BaseScore != 14.3 || result.ExperienceAdjustment != -20 {
		t.Fatalf("unexpected breakdown %+v", result)
	}
	if result.Score != 0 {
		t.Fatalf("expected score clamped to 0, got %v", result.Score)
	}
}

func TestScoreIgnoresYearsOutsideRequirements(t *testing.T) {
	s := newTestScorer(t)

	result, err := s.Score(candidate(4), &jobs.Posting{Description: "Founded 25 years ago. We need Python."})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if result.ExperienceAdjustment != 0 || result.Score != 100 {
		t.Fatalf("unexpected result %+v", result)
	}
	want := "Matched 1/1 required skills; experience requirement not stated; 0 specialization bonuses applied."
	if result.Reasoning != want {
		t.Fatalf("unexpected reasoning %q", result.Reasoning)
	}
}

func TestScoreNoRequirements(t *testing.T) {
	s := newTestScorer(t)

	result, err := s.Score(candidate(4, "Microservices"), &jobs.Posting{Description: "We are hiring great people"})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if result.Score != 0 || result.Reasoning != ReasonNoRequirements {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.MatchedSkills == nil || result.MissingSkills == nil || result.Advantages == nil {
		t.Fatalf("expected empty, non-nil lists")
	}
}

func TestScoreResolvesCatalogSynonyms(t *testing.T) {
	s := newTestScorer(t)

	p := &profile.Profile{Name: "Ops", Skills: map[string][]string{"devops": {"k8s"}}}
	result, err := s.Score(p, &jobs.Posting{Description: "Kubernetes operator"})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if len(result.MatchedSkills) != 1 || result.MatchedSkills[0].Strength != 100 {
		t.Fatalf("expected Kubernetes to match k8s, got %+v", result)
	}
}

func TestScoreMalformedProfile(t *testing.T) {
	s := newTestScorer(t)

	_, err := s.Score(&profile.Profile{Name: "Empty"}, &jobs.Posting{Description: "Python"})
	if !errors.Is(err, profile.ErrMalformedProfile) {
		t.Fatalf("expected malformed profile error, got %v", err)
	}

	if _, err := s.Score(candidate(1), nil); err == nil {
		t.Fatalf("expected error for nil posting")
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	s := newTestScorer(t)
	posting := &jobs.Posting{Description: "Python, Go lang, Kafka and Spark on AWS. 5+ years."}

	first, err := s.Score(candidate(6), posting)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	for i := 0; i < 20; i++ {
		next, err := s.Score(candidate(6), posting)
		if err != nil {
			t.Fatalf("Score: %v", err)
		}
		if !reflect.DeepEqual(first, next) {
			t.Fatalf("results differ between runs: %+v vs %+v", first, next)
		}
	}
}

func TestNewScorerValidation(t *testing.T) {
	if _, err := NewScorer(nil, DefaultPolicy()); err == nil {
		t.Fatalf("expected error for nil catalog")
	}

	policy := DefaultPolicy()
	policy.MatchedSkillThreshold = 120
	if _, err := NewScorer(DefaultCatalog(), policy); err == nil {
		t.Fatalf("expected error for invalid policy")
	}

	policy = DefaultPolicy()
	policy.SpecializationBonus = -1
	if err := policy.Validate(); err == nil {
		t.Fatalf("expected error for negative bonus")
	}
}

func TestPolicyValidateReportsFirstNegativeKnob(t *testing.T) {
	policy := DefaultPolicy()
	policy.MaxSpecializationBonus = -1
	policy.OverqualifiedGraceYears = -2
	policy.ShortfallPenaltyPerYear = -3

	want := "shortfall-penalty-per-year must not be negative, got -3"
	for i := 0; i < 20; i++ {
		err := policy.Validate()
		if err == nil || err.Error() != want {
			t.Fatalf("expected %q, got %v", want, err)
		}
	}
}
