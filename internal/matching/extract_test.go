package matching

import (
	"reflect"
	"testing"
)

func names(required []RequiredSkill) []string {
	out := make([]string, 0, len(required))
	for _, r := range required {
		out = append(out, r.Name)
	}
	return out
}

func TestExtract(t *testing.T) {
	e := NewExtractor(DefaultCatalog(), 0)

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "order of first mention",
			text: "Looking for a Python Developer with Django and PostgreSQL experience, 3-5 years.",
			want: []string{"Python", "Django", "PostgreSQL"},
		},
		{
			name: "mention order wins over catalog order",
			text: "Docker and Python required",
			want: []string{"Docker", "Python"},
		},
		{
			name: "dotted names stay whole",
			text: "Backend on node.js",
			want: []string{"Node.js"},
		},
		{
			name: "synonyms and plurals",
			text: "We run k8s and expose REST API endpoints",
			want: []string{"Kubernetes", "REST APIs"},
		},
		{
			name: "words of a skill close together",
			text: "Spring framework with Boot",
			want: []string{"Spring Boot"},
		},
		{
			name: "words of a skill too far apart",
			text: "Spring is one of many things we like and Boot",
			want: []string{},
		},
		{
			name: "words of a skill in different clauses",
			text: "We like Spring. Boot camps are fun",
			want: []string{},
		},
		{
			name: "common words of an exact skill apart",
			text: "Take action on GitHub issues",
			want: []string{},
		},
		{
			name: "exact skill written out",
			text: "CI on GitHub Actions and the rest of our APIs",
			want: []string{"GitHub Actions"},
		},
		{
			name: "no skills",
			text: "We are hiring great people",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := names(e.Extract(tt.text))
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Extract() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractEmpty(t *testing.T) {
	e := NewExtractor(DefaultCatalog(), 0)
	if got := e.Extract("  \n "); got != nil {
		t.Fatalf("expected nil for blank description, got %v", got)
	}
}

func TestExtractCategories(t *testing.T) {
	e := NewExtractor(DefaultCatalog(), 0)

	got := e.Extract("AWS Lambda and Terraform")
	want := []RequiredSkill{
		{Name: "AWS", Category: "aws_services"},
		{Name: "Lambda", Category: "aws_services"},
		{Name: "Terraform", Category: "devops_tools"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Extract() = %+v, want %+v", got, want)
	}
}

func TestMentions(t *testing.T) {
	e := NewExtractor(DefaultCatalog(), 0)

	if !e.Mentions("We build microservices", "Microservices") {
		t.Fatalf("expected plural mention to match")
	}
	if !e.Mentions("Own ETL jobs", "ETL Pipelines", "etl") {
		t.Fatalf("expected keyword mention to match")
	}
	if e.Mentions("Frontend role", "Data Engineering", "data pipelines") {
		t.Fatalf("unexpected mention")
	}
}
