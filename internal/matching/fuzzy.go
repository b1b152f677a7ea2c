package matching

import "strings"

const (
	// DefaultContainmentCoverage is the share of the enclosing tokens the shorter
	// string must cover for containment to count.
	DefaultContainmentCoverage = 0.70
	containmentFloor           = 90
)

// Similarity returns a 0-100 similarity between two skill strings using the
// default containment coverage.
func Similarity(a, b string) int {
	return SimilarityWithCoverage(a, b, DefaultContainmentCoverage)
}

// SimilarityWithCoverage compares two skill strings. Equal normalized strings
// score 100. Otherwise the Ratcliff/Obershelp ratio is used, raised to at least
// 90 when the shorter string is contained in the longer one and covers at
// least minCoverage of the tokens it sits in ("Python" in "Python Development"
// but not "Java" in "JavaScript").
func SimilarityWithCoverage(a, b string, minCoverage float64) int {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 100
	}

	score := int(ratio(na, nb) * 100)

	shorter, longer := na, nb
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}

	if coverage(shorter, longer) >= minCoverage && score < containmentFloor {
		score = containmentFloor
	}

	return score
}

// coverage returns the best ratio between len(sub) and the length of the token
// span of s that encloses an occurrence of sub. Zero means no occurrence.
func coverage(sub, s string) float64 {
	best := 0.0
	for offset := 0; offset <= len(s)-len(sub); {
		idx := strings.Index(s[offset:], sub)
		if idx < 0 {
			break
		}
		idx += offset

		start, end := idx, idx+len(sub)
		for start > 0 && s[start-1] != ' ' {
			start--
		}
		for end < len(s) && s[end] != ' ' {
			end++
		}

		if c := float64(len(sub)) / float64(end-start); c > best {
			best = c
		}
		offset = idx + 1
	}
	return best
}

// ratio is the Ratcliff/Obershelp similarity 2*M/T where M is the number of
// characters in matching blocks and T the total length of both strings.
func ratio(a, b string) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 1
	}
	return 2 * float64(matchingChars(a, b)) / float64(total)
}

type span struct{ alo, ahi, blo, bhi int }

// matchingChars counts characters in the matching blocks found by recursively
// taking the longest common substring and repeating on both sides of it.
func matchingChars(a, b string) int {
	matched := 0
	queue := []span{{0, len(a), 0, len(b)}}

	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		i, j, k := longestMatch(a, b, s)
		if k == 0 {
			continue
		}
		matched += k

		if s.alo < i && s.blo < j {
			queue = append(queue, span{s.alo, i, s.blo, j})
		}
		if i+k < s.ahi && j+k < s.bhi {
			queue = append(queue, span{i + k, s.ahi, j + k, s.bhi})
		}
	}

	return matched
}

// longestMatch finds the longest common substring of a[alo:ahi] and
// b[blo:bhi]. Ties go to the earliest position in a, then in b.
func longestMatch(a, b string, s span) (besti, bestj, bestk int) {
	besti, bestj = s.alo, s.blo
	prev := make([]int, s.bhi-s.blo+1)
	curr := make([]int, s.bhi-s.blo+1)

	for i := s.alo; i < s.ahi; i++ {
		for j := s.blo; j < s.bhi; j++ {
			col := j - s.blo + 1
			if a[i] != b[j] {
				curr[col] = 0
				continue
			}
			curr[col] = prev[col-1] + 1
			if k := curr[col]; k > bestk {
				besti, bestj, bestk = i-k+1, j-k+1, k
			}
		}
		prev, curr = curr, prev
	}

	return besti, bestj, bestk
}
