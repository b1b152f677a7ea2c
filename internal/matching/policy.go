package matching

import "fmt"

// Policy holds the tunable constants of the scoring algorithm.
type Policy struct {
	// MatchedSkillThreshold is the minimum strength for a required skill to
	// count as matched.
	MatchedSkillThreshold int     `mapstructure:"matched-skill-threshold" json:"matched_skill_threshold"`
	ContainmentCoverage   float64 `mapstructure:"containment-coverage" json:"containment_coverage"`
	ProximityWindow       int     `mapstructure:"proximity-window" json:"proximity_window"`

	ShortfallPenaltyPerYear float64 `mapstructure:"shortfall-penalty-per-year" json:"shortfall_penalty_per_year"`
	MaxShortfallPenalty     float64 `mapstructure:"max-shortfall-penalty" json:"max_shortfall_penalty"`

	OverqualifiedGraceYears     float64 `mapstructure:"overqualified-grace-years" json:"overqualified_grace_years"`
	OverqualifiedPenaltyPerYear float64 `mapstructure:"overqualified-penalty-per-year" json:"overqualified_penalty_per_year"`
	MaxOverqualifiedPenalty     float64 `mapstructure:"max-overqualified-penalty" json:"max_overqualified_penalty"`

	SpecializationBonus    float64 `mapstructure:"specialization-bonus" json:"specialization_bonus"`
	MaxSpecializationBonus float64 `mapstructure:"max-specialization-bonus" json:"max_specialization_bonus"`
}

// DefaultPolicy returns the standard scoring constants.
func DefaultPolicy() Policy {
	return Policy{
		MatchedSkillThreshold:       60,
		ContainmentCoverage:         DefaultContainmentCoverage,
		ProximityWindow:             DefaultProximityWindow,
		ShortfallPenaltyPerYear:     2,
		MaxShortfallPenalty:         20,
		OverqualifiedGraceYears:     3,
		OverqualifiedPenaltyPerYear: 1,
		MaxOverqualifiedPenalty:     10,
		SpecializationBonus:         5,
		MaxSpecializationBonus:      15,
	}
}

// Validate rejects policies that would push scores outside their meaning.
func (p Policy) Validate() error {
	if p.MatchedSkillThreshold < 0 || p.MatchedSkillThreshold > 100 {
		return fmt.Errorf("matched-skill-threshold must be within [0,100], got %d", p.MatchedSkillThreshold)
	}
	if p.ContainmentCoverage <= 0 || p.ContainmentCoverage > 1 {
		return fmt.Errorf("containment-coverage must be within (0,1], got %v", p.ContainmentCoverage)
	}
	if p.ProximityWindow < 1 {
		return fmt.Errorf("proximity-window must be positive, got %d", p.ProximityWindow)
	}

	for _, knob := range []struct {
		name  string
		value float64
	}{
		{"shortfall-penalty-per-year", p.ShortfallPenaltyPerYear},
		{"max-shortfall-penalty", p.MaxShortfallPenalty},
		{"overqualified-grace-years", p.OverqualifiedGraceYears},
		{"overqualified-penalty-per-year", p.OverqualifiedPenaltyPerYear},
		{"max-overqualified-penalty", p.MaxOverqualifiedPenalty},
		{"specialization-bonus", p.SpecializationBonus},
		{"max-specialization-bonus", p.MaxSpecializationBonus},
	} {
		if knob.value < 0 {
			return fmt.Errorf("%s must not be negative, got %v", knob.name, knob.value)
		}
	}

	return nil
}
