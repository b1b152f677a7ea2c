package decision

import (
	"encoding/json"
	"fmt"
)

// Decision is the verdict of the gate for one posting.
type Decision string

const (
	Apply Decision = "apply"
	Skip  Decision = "skip"
)

// Reason explains a skip. Apply verdicts carry no reason.
type Reason string

const (
	ReasonNone           Reason = ""
	ReasonDuplicate      Reason = "duplicate"
	ReasonBelowThreshold Reason = "below match threshold"
	ReasonDailyLimit     Reason = "daily limit reached"
)

// MarshalJSON encodes the empty reason as null.
func (r Reason) MarshalJSON() ([]byte, error) {
	if r == ReasonNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(r))
}

func (r *Reason) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = ReasonNone
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*r = Reason(s)
	return nil
}

const (
	DefaultThreshold  = 70.0
	DefaultDailyLimit = 20
)

// Verdict is the output of Gate.Decide.
type Verdict struct {
	Decision Decision `json:"decision"`
	Reason   Reason   `json:"reason"`
}

// Applied reports whether the verdict is an apply.
func (v Verdict) Applied() bool { return v.Decision == Apply }

// Input is what the gate knows about a posting at decision time.
type Input struct {
	Score        float64
	AppliedToday int
	Duplicate    bool
}

// Gate turns a match score into an apply or skip verdict.
type Gate struct {
	Threshold  float64 `mapstructure:"threshold" json:"threshold"`
	DailyLimit int     `mapstructure:"daily-limit" json:"daily_limit"`
}

func NewGate(threshold float64, dailyLimit int) (*Gate, error) {
	g := &Gate{Threshold: threshold, DailyLimit: dailyLimit}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Gate) Validate() error {
	if g.Threshold < 0 || g.Threshold > 100 {
		return fmt.Errorf("threshold must be within [0,100], got %v", g.Threshold)
	}
	if g.DailyLimit < 0 {
		return fmt.Errorf("daily-limit must not be negative, got %d", g.DailyLimit)
	}
	return nil
}

// Decide applies the rules in order: a posting already applied to is skipped
// as a duplicate, a score under the threshold is skipped, and once the daily
// limit is used up everything else is skipped too. A score equal to the
// threshold applies.
func (g *Gate) Decide(in Input) Verdict {
	switch {
	case in.Duplicate:
		return Verdict{Decision: Skip, Reason: ReasonDuplicate}
	case in.Score < g.Threshold:
		return Verdict{Decision: Skip, Reason: ReasonBelowThreshold}
	case in.AppliedToday >= g.DailyLimit:
		return Verdict{Decision: Skip, Reason: ReasonDailyLimit}
	default:
		return Verdict{Decision: Apply}
	}
}
