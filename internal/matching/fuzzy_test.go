package matching

import "testing"

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{name: "identical", a: "Python", b: "Python", want: 100},
		{name: "case and punctuation", a: "node.js", b: "Node JS", want: 100},
		{name: "empty", a: "", b: "Python", want: 0},
		{name: "punctuation only", a: "!!", b: "Python", want: 0},
		{name: "disjoint", a: "abc", b: "xyz", want: 0},
		{name: "suffix variant", a: "react", b: "reactjs", want: 90},
		{name: "token containment", a: "python", b: "python development", want: 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Similarity(tt.a, tt.b); got != tt.want {
				t.Fatalf("Similarity(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSimilarityRejectsPartialWords(t *testing.T) {
	tests := []struct{ a, b string }{
		{a: "java", b: "javascript"},
		{a: "go", b: "golang"},
	}

	for _, tt := range tests {
		if got := Similarity(tt.a, tt.b); got >= 60 {
			t.Errorf("Similarity(%q, %q) = %d, want below 60", tt.a, tt.b, got)
		}
	}
}

func TestSimilarityWithCoverage(t *testing.T) {
	// "react" covers 5/7 of "reactjs".
	if got := SimilarityWithCoverage("react", "reactjs", 0.8); got != 83 {
		t.Fatalf("expected plain ratio with strict coverage, got %d", got)
	}
	if got := SimilarityWithCoverage("java", "javascript", 0.4); got != 90 {
		t.Fatalf("expected containment floor with loose coverage, got %d", got)
	}
}

func TestRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{a: "", b: "", want: 1},
		{a: "abcd", b: "abcd", want: 1},
		{a: "abcd", b: "bcde", want: 0.75},
		{a: "java", b: "javascript", want: 8.0 / 14.0},
	}

	for _, tt := range tests {
		if got := ratio(tt.a, tt.b); got != tt.want {
			t.Errorf("ratio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
