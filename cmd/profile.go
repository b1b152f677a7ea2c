package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zafaraftab1/CareerCopilot-AI/internal/profile"
)

// addProfileFlags registers the flags that adjust the loaded profile for a
// single invocation.
func addProfileFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("experience-years", 0, "override the candidate's years of experience")
	cmd.Flags().StringSlice("specialization", nil, "override the candidate's specializations, can be repeated")
	cmd.Flags().StringArray("skills", nil, "replace the skills of a category, e.g. --skills databases=PostgreSQL,Redis. An empty list removes the category")
}

// profileOverrides applies the profile flags that were set on cmd. The
// returned profile is validated, p is left untouched.
func profileOverrides(cmd *cobra.Command, p *profile.Profile) (*profile.Profile, error) {
	flags := cmd.Flags()
	out := p
	changed := false

	if flags.Changed("experience-years") {
		years, err := flags.GetFloat64("experience-years")
		if err != nil {
			return nil, err
		}
		out = out.WithExperience(years)
		changed = true
	}

	if flags.Changed("specialization") {
		tags, err := flags.GetStringSlice("specialization")
		if err != nil {
			return nil, err
		}
		out = out.WithSpecializations(trimAll(tags))
		changed = true
	}

	if flags.Changed("skills") {
		values, err := flags.GetStringArray("skills")
		if err != nil {
			return nil, err
		}
		for _, value := range values {
			category, list, ok := strings.Cut(value, "=")
			category = strings.TrimSpace(category)
			if !ok || category == "" {
				return nil, fmt.Errorf("invalid --skills value %q, expected category=Skill1,Skill2", value)
			}
			out = out.WithSkills(category, trimAll(strings.Split(list, ",")))
		}
		changed = true
	}

	if !changed {
		return p, nil
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
