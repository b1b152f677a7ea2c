package matching

import "sort"

// DefaultProximityWindow bounds how far apart (in tokens) the words of a
// multi-word skill may be inside one clause.
const DefaultProximityWindow = 6

// RequiredSkill is a catalog skill found in a job description.
type RequiredSkill struct {
	Name     string `json:"skill"`
	Category string `json:"category"`
}

// Extractor finds catalog skills in free text.
type Extractor struct {
	catalog *Catalog
	window  int
}

// NewExtractor returns an Extractor over catalog. A non-positive window falls
// back to DefaultProximityWindow.
func NewExtractor(catalog *Catalog, window int) *Extractor {
	if window <= 0 {
		window = DefaultProximityWindow
	}
	return &Extractor{catalog: catalog, window: window}
}

// Extract returns the catalog skills mentioned in description, ordered by
// their first mention. An empty result means the description carries no
// usable signal.
func (e *Extractor) Extract(description string) []RequiredSkill {
	doc := newDocument(description, e.window)
	if doc.empty() {
		return nil
	}

	type hit struct {
		skill RequiredSkill
		pos   int
		order int
	}

	var hits []hit
	for i, entry := range e.catalog.entries {
		best := -1
		for _, phrase := range entry.phrases {
			if pos, ok := doc.find(phrase, entry.contiguous); ok && (best < 0 || pos < best) {
				best = pos
			}
		}
		if best >= 0 {
			hits = append(hits, hit{
				skill: RequiredSkill{Name: entry.name, Category: entry.category},
				pos:   best,
				order: i,
			})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].pos != hits[j].pos {
			return hits[i].pos < hits[j].pos
		}
		return hits[i].order < hits[j].order
	})

	required := make([]RequiredSkill, 0, len(hits))
	for _, h := range hits {
		required = append(required, h.skill)
	}
	return required
}

// Mentions reports whether any of the phrases appears in description using the
// same containment test as Extract.
func (e *Extractor) Mentions(description string, phrases ...string) bool {
	doc := newDocument(description, e.window)
	for _, p := range phrases {
		tokens := foldAll(Tokens(p))
		if len(tokens) == 0 {
			continue
		}
		if _, ok := doc.find(tokens, false); ok {
			return true
		}
	}
	return false
}

// document is a description split into clauses of folded tokens.
type document struct {
	clauses [][]string
	offsets []int
	window  int
}

func newDocument(text string, window int) *document {
	d := &document{window: window}
	offset := 0
	for _, clause := range Clauses(text) {
		d.clauses = append(d.clauses, foldAll(clause))
		d.offsets = append(d.offsets, offset)
		offset += len(clause)
	}
	return d
}

func (d *document) empty() bool { return len(d.clauses) == 0 }

// find returns the global token position of the earliest match of phrase.
// A phrase matches as a contiguous token run. Unless contiguous is set, a
// phrase with several significant words also matches when all of them occur
// within the window of each other inside one clause.
func (d *document) find(phrase []string, contiguous bool) (int, bool) {
	var significant []string
	if !contiguous {
		significant = significantWords(phrase)
	}

	for ci, clause := range d.clauses {
		if pos, ok := findContiguous(clause, phrase); ok {
			return d.offsets[ci] + pos, true
		}
		if len(significant) > 1 {
			if pos, ok := findNear(clause, significant, d.window); ok {
				return d.offsets[ci] + pos, true
			}
		}
	}
	return 0, false
}

func findContiguous(tokens, phrase []string) (int, bool) {
	for i := 0; i+len(phrase) <= len(tokens); i++ {
		matched := true
		for j, p := range phrase {
			if tokens[i+j] != p {
				matched = false
				break
			}
		}
		if matched {
			return i, true
		}
	}
	return 0, false
}

// findNear anchors on every occurrence of the first word and checks that each
// other word occurs less than window tokens away from it.
func findNear(tokens, words []string, window int) (int, bool) {
	for i, t := range tokens {
		if t != words[0] {
			continue
		}
		lo, hi := i-window+1, i+window-1
		if lo < 0 {
			lo = 0
		}
		if hi > len(tokens)-1 {
			hi = len(tokens) - 1
		}

		all := true
		for _, w := range words[1:] {
			found := false
			for k := lo; k <= hi; k++ {
				if tokens[k] == w {
					found = true
					break
				}
			}
			if !found {
				all = false
				break
			}
		}
		if all {
			if lo < i {
				return earliest(tokens, words, lo, i), true
			}
			return i, true
		}
	}
	return 0, false
}

func earliest(tokens, words []string, lo, anchor int) int {
	for k := lo; k < anchor; k++ {
		for _, w := range words {
			if tokens[k] == w {
				return k
			}
		}
	}
	return anchor
}

func significantWords(phrase []string) []string {
	var words []string
	for _, w := range phrase {
		if !stopWords[w] {
			words = append(words, w)
		}
	}
	return words
}
