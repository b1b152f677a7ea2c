package matching

import (
	"regexp"
	"strconv"
	"strings"
)

// ExperienceRange is a required-experience range in years. Open ranges have no
// upper bound ("5+ years", "at least 3 years").
type ExperienceRange struct {
	Min  float64
	Max  float64
	Open bool
}

const unit = `\s*(?:years?|yrs?)`

var (
	reBetween = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:-|–|—|to)\s*(\d+(?:\.\d+)?)\s*\+?`)
	rePlus    = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*\+`)
	reAtLeast = regexp.MustCompile(`\b(?:at least|minimum(?: of)?|min\.?|over|more than)\s*(\d+(?:\.\d+)?)`)
	reSingle  = regexp.MustCompile(`(\d+(?:\.\d+)?)`)

	reBetweenUnit = regexp.MustCompile(reBetween.String() + unit)
	rePlusUnit    = regexp.MustCompile(rePlus.String() + unit)
	reMinimumUnit = regexp.MustCompile(`\b(?:at least|minimum(?: of)?|min\.?)\s*(\d+(?:\.\d+)?)\s*\+?` + unit)
	reAtLeastUnit = regexp.MustCompile(reAtLeast.String() + `\s*\+?` + unit)
	reSingleUnit  = regexp.MustCompile(reSingle.String() + `\s*\+?` + unit)

	// reSentenceEnd keeps decimals like "2.5 years" in one sentence.
	reSentenceEnd = regexp.MustCompile(`[!?;\n]|\.(?:\s|$)`)
	reExperience  = regexp.MustCompile(`\b(?:experience|experienced|exp|required|requires|requirements?|qualifications?)\b`)
)

// ParseExperienceRange parses a declared experience requirement such as
// "3-5 years", "3 to 5 Yrs", "5+ years" or "at least 2 years". A bare number
// is read as an open range starting at that number.
func ParseExperienceRange(s string) (ExperienceRange, bool) {
	return parseRange(strings.ToLower(s), reBetween, rePlus, reAtLeast, reSingle)
}

// ExperienceFromText finds an experience requirement mentioned in free text,
// sentence by sentence. Ranges, "N+ years" and "at least N years" count
// anywhere. Other numbers of years ("over 10 years", "6 yrs") count only in a
// sentence that talks about experience or requirements, so "founded 25 years
// ago" is not a requirement.
func ExperienceFromText(text string) (ExperienceRange, bool) {
	for _, sentence := range reSentenceEnd.Split(strings.ToLower(text), -1) {
		if reExperience.MatchString(sentence) {
			if r, ok := parseRange(sentence, reBetweenUnit, rePlusUnit, reAtLeastUnit, reSingleUnit); ok {
				return r, true
			}
			continue
		}
		if r, ok := parseRange(sentence, reBetweenUnit, rePlusUnit, reMinimumUnit); ok {
			return r, true
		}
	}
	return ExperienceRange{}, false
}

func parseRange(s string, between *regexp.Regexp, open ...*regexp.Regexp) (ExperienceRange, bool) {
	if strings.TrimSpace(s) == "" {
		return ExperienceRange{}, false
	}

	if m := between.FindStringSubmatch(s); m != nil {
		lo, err1 := strconv.ParseFloat(m[1], 64)
		hi, err2 := strconv.ParseFloat(m[2], 64)
		if err1 == nil && err2 == nil {
			if lo > hi {
				lo, hi = hi, lo
			}
			return ExperienceRange{Min: lo, Max: hi}, true
		}
	}

	for _, re := range open {
		if m := re.FindStringSubmatch(s); m != nil {
			if lo, err := strconv.ParseFloat(m[1], 64); err == nil {
				return ExperienceRange{Min: lo, Open: true}, true
			}
		}
	}

	return ExperienceRange{}, false
}
