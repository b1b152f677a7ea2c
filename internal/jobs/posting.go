package jobs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

// ErrInvalidPosting reports a posting that is missing required data.
var ErrInvalidPosting = errors.New("invalid posting")

var validate = validator.New()

// Portal is the job portal a posting came from.
type Portal string

const (
	PortalNaukri   Portal = "naukri"
	PortalLinkedIn Portal = "linkedin"
	PortalMonster  Portal = "monster"
	PortalIndeed   Portal = "indeed"
)

// Portals lists every supported portal.
var Portals = []Portal{PortalNaukri, PortalLinkedIn, PortalMonster, PortalIndeed}

// Key identifies a posting across runs. The same portal id on two portals is
// two different postings.
type Key struct {
	Portal Portal
	ID     string
}

func (k Key) String() string {
	return string(k.Portal) + ":" + k.ID
}

type Postings struct {
	Items []*Posting `json:"items"`
}

// Posting is a job advertisement as delivered by a portal.
type Posting struct {
	ID                 string `mapstructure:"portal_job_id" json:"portal_job_id" validate:"required"`
	Title              string `mapstructure:"title" json:"title" validate:"required"`
	Company            string `mapstructure:"company" json:"company" validate:"required"`
	Location           string `mapstructure:"location" json:"location,omitempty"`
	Portal             Portal `mapstructure:"portal" json:"portal" validate:"required,oneof=naukri linkedin monster indeed"`
	Description        string `mapstructure:"description" json:"description"`
	ExperienceRequired string `mapstructure:"experience_required" json:"experience_required,omitempty"`
	URL                string `mapstructure:"job_url" json:"job_url,omitempty" validate:"omitempty,url"`
	SalaryRange        string `mapstructure:"salary_range" json:"salary_range,omitempty"`
}

// Key returns the identity of the posting.
func (p *Posting) Key() Key {
	return Key{Portal: p.Portal, ID: p.ID}
}

// Validate checks that the posting carries the fields needed to track it.
func (p *Posting) Validate() error {
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w %q: %s", ErrInvalidPosting, p.ID, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w %q: %v", ErrInvalidPosting, p.ID, err)
	}
	return nil
}

// LoadFromFile reads postings from a JSON file holding either a list of
// postings or an object with an "items" list. Field names follow the portal
// export format. Postings failing validation are left out and reported in
// rejected.
func LoadFromFile(path string) (postings *Postings, rejected []error, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read postings %q: %w", path, err)
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("parse postings %q: %w", path, err)
	}
	if obj, ok := raw.(map[string]any); ok {
		raw = obj["items"]
	}

	var items []*Posting
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &items,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, nil, fmt.Errorf("decode postings %q: %w", path, err)
	}

	postings = &Postings{}
	for _, item := range items {
		if item == nil {
			continue
		}
		item.Portal = Portal(strings.ToLower(strings.TrimSpace(string(item.Portal))))
		if err := item.Validate(); err != nil {
			rejected = append(rejected, err)
			continue
		}
		postings.Items = append(postings.Items, item)
	}

	return postings, rejected, nil
}

func (p *Postings) Len() int {
	return len(p.Items)
}

// Deduplicate drops repeated postings keeping the first occurrence and returns
// the keys of the dropped ones.
func (p *Postings) Deduplicate() []Key {
	seen := make(map[Key]bool, len(p.Items))
	kept := p.Items[:0]
	var dropped []Key
	for _, posting := range p.Items {
		key := posting.Key()
		if seen[key] {
			dropped = append(dropped, key)
			continue
		}
		seen[key] = true
		kept = append(kept, posting)
	}
	p.Items = kept
	return dropped
}

// Exclude removes postings matched by the predicate, preserving the order of
// the rest, and returns the keys of the removed postings.
func (p *Postings) Exclude(match func(*Posting) bool) []Key {
	kept := p.Items[:0]
	var excluded []Key
	for _, posting := range p.Items {
		if match(posting) {
			excluded = append(excluded, posting.Key())
			continue
		}
		kept = append(kept, posting)
	}
	p.Items = kept
	return excluded
}

// ExcludeKeys removes the postings with the given keys.
func (p *Postings) ExcludeKeys(keys []Key) []Key {
	targets := make(map[Key]bool, len(keys))
	for _, k := range keys {
		targets[k] = true
	}
	return p.Exclude(func(posting *Posting) bool { return targets[posting.Key()] })
}

// ReportByCompany groups a short description of every posting by company.
func (p *Postings) ReportByCompany() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, posting := range p.Items {
		report[posting.Company] = append(report[posting.Company], map[string]string{
			"title":      posting.Title,
			"url":        posting.URL,
			"location":   posting.Location,
			"portal":     string(posting.Portal),
			"experience": posting.ExperienceRequired,
			"salary":     posting.SalaryRange,
		})
	}
	return report
}

// DumpToTmpFile writes the postings to a temporary JSON file and returns its
// path.
func (p *Postings) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "postings_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return "", err
	}
	return file.Name(), nil
}
