package matching

import (
	"reflect"
	"testing"
)

func TestTokens(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{in: "", want: nil},
		{in: "  ,;  ", want: nil},
		{in: "Senior Go Developer", want: []string{"senior", "go", "developer"}},
		{in: "C++ and C#, Node.js!", want: []string{"c++", "and", "c#", "node", "js"}},
		{in: "CI/CD (GitHub-Actions)", want: []string{"ci", "cd", "github", "actions"}},
	}

	for _, tt := range tests {
		if got := Tokens(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Tokens(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  Hello,   World "); got != "hello world" {
		t.Fatalf("unexpected normalization: %q", got)
	}
}

func TestClauses(t *testing.T) {
	got := Clauses("Use node.js. Then Go; and AWS")
	want := [][]string{
		{"use", "node", "js"},
		{"then", "go"},
		{"and", "aws"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Clauses() = %q, want %q", got, want)
	}

	got = Clauses("Requirements:\n- Python\n- Docker")
	want = [][]string{{"requirements"}, {"python"}, {"docker"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Clauses() = %q, want %q", got, want)
	}
}

func TestFold(t *testing.T) {
	tests := map[string]string{
		"apis":  "api",
		"class": "class",
		"aws":   "aws",
		"go":    "go",
	}
	for in, want := range tests {
		if got := fold(in); got != want {
			t.Errorf("fold(%q) = %q, want %q", in, got, want)
		}
	}
}
