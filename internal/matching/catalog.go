package matching

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// SkillDefinition describes one catalog skill and the phrases that count as a
// mention of it. Contiguous skills only match as an exact token run, for names
// made of common words ("GitHub Actions" is not "action on GitHub issues").
type SkillDefinition struct {
	Name       string   `mapstructure:"name" json:"name"`
	Synonyms   []string `mapstructure:"synonyms" json:"synonyms,omitempty"`
	Contiguous bool     `mapstructure:"contiguous" json:"contiguous,omitempty"`
}

// SpecializationDefinition lists the keywords that signal a specialization in
// a job description.
type SpecializationDefinition struct {
	Name     string   `mapstructure:"name" json:"name"`
	Keywords []string `mapstructure:"keywords" json:"keywords,omitempty"`
}

// CatalogDefinition is the serializable form of a Catalog.
type CatalogDefinition struct {
	Version         string                       `mapstructure:"version" json:"version"`
	Categories      map[string][]SkillDefinition `mapstructure:"categories" json:"categories"`
	Specializations []SpecializationDefinition   `mapstructure:"specializations" json:"specializations,omitempty"`
}

// Catalog is an immutable, versioned set of known skills grouped by category.
type Catalog struct {
	version         string
	categories      []string
	entries         []catalogEntry
	canonical       map[string]string
	specializations map[string][]string
}

type catalogEntry struct {
	name       string
	category   string
	phrases    [][]string
	contiguous bool
}

// NewCatalog validates def and builds a Catalog from it. Categories are walked
// in sorted order so extraction order never depends on map iteration.
func NewCatalog(def CatalogDefinition) (*Catalog, error) {
	version := strings.TrimSpace(def.Version)
	if version == "" {
		return nil, errors.New("catalog version is required")
	}
	if len(def.Categories) == 0 {
		return nil, errors.New("catalog has no categories")
	}

	c := &Catalog{
		version:         version,
		canonical:       make(map[string]string),
		specializations: make(map[string][]string),
	}

	for category := range def.Categories {
		c.categories = append(c.categories, category)
	}
	sort.Strings(c.categories)

	for _, category := range c.categories {
		for _, skill := range def.Categories[category] {
			name := strings.TrimSpace(skill.Name)
			key := foldedKey(name)
			if key == "" {
				return nil, fmt.Errorf("category %q: skill with empty name", category)
			}
			if existing, ok := c.canonical[key]; ok {
				return nil, fmt.Errorf("category %q: skill %q clashes with %q", category, name, existing)
			}

			entry := catalogEntry{name: name, category: category, contiguous: skill.Contiguous}
			for _, phrase := range append([]string{name}, skill.Synonyms...) {
				tokens := foldAll(Tokens(phrase))
				if len(tokens) == 0 {
					continue
				}
				entry.phrases = append(entry.phrases, tokens)
				if k := strings.Join(tokens, " "); c.canonical[k] == "" {
					c.canonical[k] = name
				}
			}
			c.entries = append(c.entries, entry)
		}
	}

	for _, spec := range def.Specializations {
		key := foldedKey(spec.Name)
		if key == "" {
			return nil, errors.New("specialization with empty name")
		}
		c.specializations[key] = append(c.specializations[key], spec.Keywords...)
	}

	return c, nil
}

// LoadCatalog reads a catalog definition from a YAML or JSON file.
func LoadCatalog(path string) (*Catalog, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read catalog %q: %w", path, err)
	}

	var def CatalogDefinition
	if err := v.Unmarshal(&def); err != nil {
		return nil, fmt.Errorf("decode catalog %q: %w", path, err)
	}

	return NewCatalog(def)
}

// Version identifies the catalog contents. Scores are only comparable between
// runs that used the same version.
func (c *Catalog) Version() string { return c.version }

// Categories returns the category names in sorted order.
func (c *Catalog) Categories() []string {
	return append([]string(nil), c.categories...)
}

// Len returns the number of skills in the catalog.
func (c *Catalog) Len() int { return len(c.entries) }

// Skills returns the skill names of a category in declaration order.
func (c *Catalog) Skills(category string) []string {
	var names []string
	for _, e := range c.entries {
		if e.category == category {
			names = append(names, e.name)
		}
	}
	return names
}

// Canonical resolves a skill name or synonym to the catalog skill name.
func (c *Catalog) Canonical(name string) (string, bool) {
	canonical, ok := c.canonical[foldedKey(name)]
	return canonical, ok
}

// SpecializationKeywords returns the phrases that signal the given
// specialization: the tag itself followed by any registered keywords.
func (c *Catalog) SpecializationKeywords(tag string) []string {
	keywords := []string{tag}
	return append(keywords, c.specializations[foldedKey(tag)]...)
}

func foldedKey(s string) string {
	return strings.Join(foldAll(Tokens(s)), " ")
}
