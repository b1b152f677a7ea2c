package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/zafaraftab1/CareerCopilot-AI/internal/decision"
	"github.com/zafaraftab1/CareerCopilot-AI/internal/matching"
	"github.com/zafaraftab1/CareerCopilot-AI/internal/profile"
	"github.com/zafaraftab1/CareerCopilot-AI/internal/store"
)

type Config struct {
	// ProfileFile is the candidate profile. The built-in sample profile is
	// used when empty.
	ProfileFile string `mapstructure:"profile-file"`
	// CatalogFile replaces the built-in skill catalog.
	CatalogFile string `mapstructure:"catalog-file"`
	Postings    string `mapstructure:"postings"`
	ExcludeFile string `mapstructure:"exclude-file"`

	MatchScoreThreshold   float64 `mapstructure:"match-score-threshold"`
	DailyApplicationLimit int     `mapstructure:"daily-application-limit"`

	Matching matching.Policy `mapstructure:"matching"`
	Filters  *FiltersConfig  `mapstructure:"filters"`
	Store    store.Config    `mapstructure:"store"`
	Apply    *ApplyConfig    `mapstructure:"apply"`
	AI       *AIConfig       `mapstructure:"ai"`
}

type FiltersConfig struct {
	ExcludedCompanies  []string `mapstructure:"excluded-companies"`
	PreferredLocations []string `mapstructure:"preferred-locations"`
	// MinimumScore drops postings before the decision gate. They are still
	// written to the exclude file.
	MinimumScore float64 `mapstructure:"minimum-score"`
	Workers      int     `mapstructure:"workers"`
}

type ApplyConfig struct {
	Message string `mapstructure:"message"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
	Tone         string `mapstructure:"tone"`
	Instructions string `mapstructure:"instructions"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("match-score-threshold", decision.DefaultThreshold)
	v.SetDefault("daily-application-limit", decision.DefaultDailyLimit)

	policy := matching.DefaultPolicy()
	v.SetDefault("matching.matched-skill-threshold", policy.MatchedSkillThreshold)
	v.SetDefault("matching.containment-coverage", policy.ContainmentCoverage)
	v.SetDefault("matching.proximity-window", policy.ProximityWindow)
	v.SetDefault("matching.shortfall-penalty-per-year", policy.ShortfallPenaltyPerYear)
	v.SetDefault("matching.max-shortfall-penalty", policy.MaxShortfallPenalty)
	v.SetDefault("matching.overqualified-grace-years", policy.OverqualifiedGraceYears)
	v.SetDefault("matching.overqualified-penalty-per-year", policy.OverqualifiedPenaltyPerYear)
	v.SetDefault("matching.max-overqualified-penalty", policy.MaxOverqualifiedPenalty)
	v.SetDefault("matching.specialization-bonus", policy.SpecializationBonus)
	v.SetDefault("matching.max-specialization-bonus", policy.MaxSpecializationBonus)

	v.SetDefault("store.driver", store.DriverSQLite)
	v.SetDefault("store.path", app+".db")

	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.gemini.max-retries", 3)
	v.SetDefault("ai.gemini.max-log-length", 2000)
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config == nil {
		return nil, errors.New("config is empty")
	}

	if config.Filters == nil {
		config.Filters = &FiltersConfig{}
	}
	if config.Apply == nil {
		config.Apply = &ApplyConfig{}
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if _, err := c.gate(); err != nil {
		return err
	}
	if err := c.Matching.Validate(); err != nil {
		return fmt.Errorf("matching: %w", err)
	}
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if c.Filters != nil && (c.Filters.MinimumScore < 0 || c.Filters.MinimumScore > 100) {
		return fmt.Errorf("filters.minimum-score must be within [0,100], got %v", c.Filters.MinimumScore)
	}

	if c.AI != nil && c.AI.Enabled {
		provider := strings.ToLower(strings.TrimSpace(c.AI.Provider))
		if provider != "" && provider != "gemini" {
			return fmt.Errorf("unsupported ai provider: %s", c.AI.Provider)
		}
		if c.AI.Gemini == nil {
			return errors.New("ai.gemini is required when ai is enabled")
		}
	}

	return nil
}

func (c *Config) gate() (*decision.Gate, error) {
	return decision.NewGate(c.MatchScoreThreshold, c.DailyApplicationLimit)
}

func (c *Config) loadProfile() (*profile.Profile, error) {
	if strings.TrimSpace(c.ProfileFile) == "" {
		return profile.Default(), nil
	}
	return profile.LoadFile(c.ProfileFile)
}

func (c *Config) newScorer() (*matching.Scorer, error) {
	catalog := matching.DefaultCatalog()
	if path := strings.TrimSpace(c.CatalogFile); path != "" {
		var err error
		if catalog, err = matching.LoadCatalog(path); err != nil {
			return nil, err
		}
	}
	return matching.NewScorer(catalog, c.Matching)
}
