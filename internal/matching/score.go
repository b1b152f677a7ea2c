package matching

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/zafaraftab1/CareerCopilot-AI/internal/jobs"
	"github.com/zafaraftab1/CareerCopilot-AI/internal/profile"
)

// ReasonNoRequirements is the reasoning attached to postings without any
// extractable skill.
const ReasonNoRequirements = "no extractable requirements"

// SkillMatch is a required skill with its best match strength against the
// candidate profile.
type SkillMatch struct {
	Skill    string `json:"skill"`
	Category string `json:"category,omitempty"`
	Strength int    `json:"strength"`
}

// Result is the outcome of scoring one posting against one profile. A Result
// is never modified after Score returns it.
type Result struct {
	Score                float64      `json:"score"`
	MatchedSkills        []SkillMatch `json:"matched_skills"`
	MissingSkills        []SkillMatch `json:"missing_skills"`
	Advantages           []string     `json:"advantages"`
	Reasoning            string       `json:"reasoning"`
	BaseScore            float64      `json:"base_score"`
	ExperienceAdjustment float64      `json:"experience_adjustment"`
	SpecializationBonus  float64      `json:"specialization_bonus"`
	CatalogVersion       string       `json:"catalog_version"`
}

// Scorer rates postings against a candidate profile. It holds no mutable
// state and is safe for concurrent use.
type Scorer struct {
	catalog   *Catalog
	extractor *Extractor
	policy    Policy
}

// NewScorer builds a Scorer for the given catalog and policy.
func NewScorer(catalog *Catalog, policy Policy) (*Scorer, error) {
	if catalog == nil {
		return nil, errors.New("catalog is required")
	}
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid matching policy: %w", err)
	}

	return &Scorer{
		catalog:   catalog,
		extractor: NewExtractor(catalog, policy.ProximityWindow),
		policy:    policy,
	}, nil
}

// Catalog returns the catalog the scorer was built with.
func (s *Scorer) Catalog() *Catalog { return s.catalog }

// Extractor returns the skill extractor used by the scorer.
func (s *Scorer) Extractor() *Extractor { return s.extractor }

// Score rates posting against p. A profile without skills is a configuration
// error; a posting without extractable skills scores 0.
func (s *Scorer) Score(p *profile.Profile, posting *jobs.Posting) (*Result, error) {
	if p == nil || len(p.Skills) == 0 {
		return nil, fmt.Errorf("%w: skills are missing", profile.ErrMalformedProfile)
	}
	if posting == nil {
		return nil, errors.New("posting is required")
	}

	result := &Result{
		MatchedSkills:  []SkillMatch{},
		MissingSkills:  []SkillMatch{},
		Advantages:     []string{},
		CatalogVersion: s.catalog.Version(),
	}

	required := s.extractor.Extract(posting.Description)
	if len(required) == 0 {
		result.Reasoning = ReasonNoRequirements
		return result, nil
	}

	candidate := s.candidateSkills(p)

	sum := 0
	for _, req := range required {
		strength := s.bestStrength(req.Name, candidate)
		match := SkillMatch{Skill: req.Name, Category: req.Category, Strength: strength}
		if strength >= s.policy.MatchedSkillThreshold {
			result.MatchedSkills = append(result.MatchedSkills, match)
			sum += strength
			continue
		}
		result.MissingSkills = append(result.MissingSkills, match)
	}

	result.BaseScore = float64(sum) / float64(len(required)*100) * 100

	adjustment, experienceNote := s.experienceAdjustment(p.ExperienceYears, posting)
	result.ExperienceAdjustment = adjustment

	hits := s.specializationHits(p, posting.Description)
	bonus := math.Min(float64(len(hits))*s.policy.SpecializationBonus, s.policy.MaxSpecializationBonus)
	result.SpecializationBonus = bonus
	for _, tag := range hits {
		result.Advantages = append(result.Advantages, "Specialization match: "+tag)
	}

	result.Score = round1(clamp(result.BaseScore+adjustment+bonus, 0, 100))
	result.BaseScore = round1(result.BaseScore)
	result.Reasoning = fmt.Sprintf("Matched %d/%d required skills; %s; %s applied.",
		len(result.MatchedSkills), len(required), experienceNote, plural(len(hits), "specialization bonus", "specialization bonuses"))

	return result, nil
}

// candidateSkills lists the profile skills followed by their catalog
// canonical names, so "k8s" on a resume matches a required "Kubernetes".
func (s *Scorer) candidateSkills(p *profile.Profile) []string {
	all := p.AllSkills()
	seen := make(map[string]bool, len(all))
	for _, skill := range all {
		seen[strings.ToLower(skill)] = true
	}
	for _, skill := range p.AllSkills() {
		if canonical, ok := s.catalog.Canonical(skill); ok && !seen[strings.ToLower(canonical)] {
			seen[strings.ToLower(canonical)] = true
			all = append(all, canonical)
		}
	}
	return all
}

func (s *Scorer) bestStrength(required string, candidate []string) int {
	best := 0
	for _, skill := range candidate {
		if v := SimilarityWithCoverage(required, skill, s.policy.ContainmentCoverage); v > best {
			best = v
			if best == 100 {
				break
			}
		}
	}
	return best
}

func (s *Scorer) experienceAdjustment(years float64, posting *jobs.Posting) (float64, string) {
	r, ok := ParseExperienceRange(posting.ExperienceRequired)
	if !ok {
		r, ok = ExperienceFromText(posting.Description)
	}
	if !ok {
		return 0, "experience requirement not stated"
	}

	if years < r.Min {
		shortfall := r.Min - years
		penalty := math.Min(shortfall*s.policy.ShortfallPenaltyPerYear, s.policy.MaxShortfallPenalty)
		return -penalty, fmt.Sprintf("%s below required minimum", formatYears(shortfall))
	}

	if limit := r.Max + s.policy.OverqualifiedGraceYears; !r.Open && years > limit {
		excess := years - limit
		penalty := math.Min(excess*s.policy.OverqualifiedPenaltyPerYear, s.policy.MaxOverqualifiedPenalty)
		return -penalty, fmt.Sprintf("%s above required range", formatYears(years-r.Max))
	}

	return 0, "experience aligned"
}

func (s *Scorer) specializationHits(p *profile.Profile, description string) []string {
	var hits []string
	for _, tag := range p.Specializations {
		if s.extractor.Mentions(description, s.catalog.SpecializationKeywords(tag)...) {
			hits = append(hits, tag)
		}
	}
	return hits
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}

func formatYears(v float64) string {
	if v == math.Trunc(v) {
		return plural(int(v), "year", "years")
	}
	return fmt.Sprintf("%.1f years", v)
}
