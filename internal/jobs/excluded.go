package jobs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
)

// ExcludedPosting is an entry of the exclude file. Postings listed there are
// never offered again.
type ExcludedPosting struct {
	ID         string    `json:"id"`
	Portal     Portal    `json:"portal"`
	URL        string    `json:"url,omitempty"`
	Company    string    `json:"company,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	ExcludedAt time.Time `json:"excluded_at"`
}

func (e *ExcludedPosting) Key() Key {
	return Key{Portal: e.Portal, ID: e.ID}
}

type ExcludedPostings struct {
	Items []*ExcludedPosting `json:"items"`
}

// ToExcluded converts the postings to exclude file entries stamped with the
// current time.
func (p *Postings) ToExcluded(reason string) *ExcludedPostings {
	excluded := &ExcludedPostings{}
	now := time.Now().UTC()
	for _, posting := range p.Items {
		excluded.Items = append(excluded.Items, &ExcludedPosting{
			ID:         posting.ID,
			Portal:     posting.Portal,
			URL:        posting.URL,
			Company:    posting.Company,
			Reason:     reason,
			ExcludedAt: now,
		})
	}
	return excluded
}

// ExcludedFromFile reads an exclude file. A missing or empty file yields an
// empty list.
func ExcludedFromFile(path string) (*ExcludedPostings, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ExcludedPostings{}, nil
		}
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedPostings{}, nil
	}

	var excluded ExcludedPostings
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, fmt.Errorf("decode exclude file %q: %w", path, err)
	}
	return &excluded, nil
}

// Append adds the entries of s that are not listed yet.
func (e *ExcludedPostings) Append(s *ExcludedPostings) {
	known := make(map[Key]bool, len(e.Items))
	for _, item := range e.Items {
		known[item.Key()] = true
	}
	for _, item := range s.Items {
		if known[item.Key()] {
			continue
		}
		known[item.Key()] = true
		e.Items = append(e.Items, item)
	}
}

// Keys returns the keys of all excluded postings.
func (e *ExcludedPostings) Keys() []Key {
	keys := make([]Key, 0, len(e.Items))
	for _, item := range e.Items {
		keys = append(keys, item.Key())
	}
	return keys
}

// ToFile overwrites path with the entries.
func (e *ExcludedPostings) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}

// AppendToFile merges the entries into the exclude file at path.
func (e *ExcludedPostings) AppendToFile(path string) error {
	existing, err := ExcludedFromFile(path)
	if err != nil {
		return err
	}
	existing.Append(e)
	return existing.ToFile(path)
}
