package profile

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// ErrMalformedProfile reports a profile that cannot be scored against.
var ErrMalformedProfile = errors.New("malformed profile")

var validate = validator.New()

// Profile is the candidate side of a match: skills grouped by category, years
// of experience and specialization tags.
type Profile struct {
	Name            string              `mapstructure:"name" json:"name" validate:"required"`
	Email           string              `mapstructure:"email" json:"email,omitempty" validate:"omitempty,email"`
	ExperienceYears float64             `mapstructure:"experience_years" json:"experience_years" validate:"gte=0,lte=60"`
	Skills          map[string][]string `mapstructure:"skills" json:"skills" validate:"required,min=1,dive,keys,required,endkeys,required,min=1,dive,required"`
	Specializations []string            `mapstructure:"specializations" json:"specializations,omitempty" validate:"dive,required"`
}

// Validate checks the profile and wraps every problem in ErrMalformedProfile.
func (p *Profile) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: profile is nil", ErrMalformedProfile)
	}
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: invalid fields: %s", ErrMalformedProfile, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrMalformedProfile, err)
	}
	return nil
}

// Categories returns the skill categories in sorted order.
func (p *Profile) Categories() []string {
	categories := make([]string, 0, len(p.Skills))
	for c := range p.Skills {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories
}

// AllSkills flattens the skills of every category. Categories are walked in
// sorted order and duplicates are dropped case-insensitively.
func (p *Profile) AllSkills() []string {
	seen := make(map[string]bool)
	var all []string
	for _, c := range p.Categories() {
		for _, s := range p.Skills[c] {
			s = strings.TrimSpace(s)
			key := strings.ToLower(s)
			if s == "" || seen[key] {
				continue
			}
			seen[key] = true
			all = append(all, s)
		}
	}
	return all
}

// WithSkills returns a copy of the profile where the skills of category are
// replaced. An empty list removes the category.
func (p *Profile) WithSkills(category string, skills []string) *Profile {
	c := p.clone()
	if len(skills) == 0 {
		delete(c.Skills, category)
		return c
	}
	c.Skills[category] = append([]string(nil), skills...)
	return c
}

// WithSpecializations returns a copy of the profile with the given tags.
func (p *Profile) WithSpecializations(tags []string) *Profile {
	c := p.clone()
	c.Specializations = append([]string(nil), tags...)
	return c
}

// WithExperience returns a copy of the profile with the given experience.
func (p *Profile) WithExperience(years float64) *Profile {
	c := p.clone()
	c.ExperienceYears = years
	return c
}

func (p *Profile) clone() *Profile {
	c := *p
	c.Skills = make(map[string][]string, len(p.Skills))
	for k, v := range p.Skills {
		c.Skills[k] = append([]string(nil), v...)
	}
	c.Specializations = append([]string(nil), p.Specializations...)
	return &c
}

// LoadFile reads a profile from a YAML or JSON file and validates it.
func LoadFile(path string) (*Profile, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read profile %q: %w", path, err)
	}

	// viper lower-cases keys, so category names arrive lower-cased.
	var p Profile
	if err := v.Unmarshal(&p); err != nil {
		return nil, fmt.Errorf("%w: decode %q: %v", ErrMalformedProfile, path, err)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Default returns the built-in sample profile used when no profile file is
// configured.
func Default() *Profile {
	return &Profile{
		Name:            "Backend Engineer",
		ExperienceYears: 4,
		Skills: map[string][]string{
			"programming_languages": {"Python", "SQL", "JavaScript"},
			"web_frameworks":        {"Django", "FastAPI", "Flask"},
			"databases":             {"PostgreSQL", "MySQL", "MongoDB"},
			"aws_services":          {"AWS", "Lambda", "EC2", "S3", "RDS", "CloudWatch", "Glue", "Athena"},
			"devops_tools":          {"Docker", "Kubernetes", "Jenkins", "GitHub Actions", "Terraform"},
			"data_tools":            {"Pandas", "NumPy", "Spark", "Airflow"},
			"apis_protocols":        {"REST APIs", "GraphQL", "JWT", "OAuth2"},
			"message_queues":        {"Celery", "Redis", "RabbitMQ"},
			"other_tools":           {"Linux", "Git", "CI/CD"},
		},
		Specializations: []string{"Data Engineering", "ETL Pipelines", "Microservices", "API Integrations"},
	}
}
