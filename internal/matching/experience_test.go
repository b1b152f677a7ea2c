package matching

import "testing"

func TestParseExperienceRange(t *testing.T) {
	tests := []struct {
		in     string
		want   ExperienceRange
		wantOK bool
	}{
		{in: "3-5 years", want: ExperienceRange{Min: 3, Max: 5}, wantOK: true},
		{in: "3 to 5 Yrs", want: ExperienceRange{Min: 3, Max: 5}, wantOK: true},
		{in: "7 – 10 years", want: ExperienceRange{Min: 7, Max: 10}, wantOK: true},
		{in: "5-3 years", want: ExperienceRange{Min: 3, Max: 5}, wantOK: true},
		{in: "5+ years", want: ExperienceRange{Min: 5, Open: true}, wantOK: true},
		{in: "At least 2 years", want: ExperienceRange{Min: 2, Open: true}, wantOK: true},
		{in: "minimum of 1.5 years", want: ExperienceRange{Min: 1.5, Open: true}, wantOK: true},
		{in: "4", want: ExperienceRange{Min: 4, Open: true}, wantOK: true},
		{in: "", wantOK: false},
		{in: "fresher", wantOK: false},
	}

	for _, tt := range tests {
		got, ok := ParseExperienceRange(tt.in)
		if ok != tt.wantOK {
			t.Errorf("ParseExperienceRange(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseExperienceRange(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestExperienceFromText(t *testing.T) {
	tests := []struct {
		in     string
		want   ExperienceRange
		wantOK bool
	}{
		{
			in:     "Looking for a Python Developer with Django and PostgreSQL experience, 3-5 years.",
			want:   ExperienceRange{Min: 3, Max: 5},
			wantOK: true,
		},
		{
			in:     "Join our team of 50 engineers. 3+ years required.",
			want:   ExperienceRange{Min: 3, Open: true},
			wantOK: true,
		},
		{
			in:     "You have 6 yrs of backend experience.",
			want:   ExperienceRange{Min: 6, Open: true},
			wantOK: true,
		},
		{
			in:     "Great culture. Minimum 2.5 years on Kubernetes.",
			want:   ExperienceRange{Min: 2.5, Open: true},
			wantOK: true,
		},
		{
			in:     "In business for over 20 years. Requires over 8 years of Java.",
			want:   ExperienceRange{Min: 8, Open: true},
			wantOK: true,
		},
		{in: "We have 200 customers in 12 countries.", wantOK: false},
		{in: "Founded 25 years ago. We need Python.", wantOK: false},
		{in: "Trusted by clients for more than 15 years. Python required.", wantOK: false},
	}

	for _, tt := range tests {
		got, ok := ExperienceFromText(tt.in)
		if ok != tt.wantOK {
			t.Errorf("ExperienceFromText(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			continue
		}
		if got != tt.want {
			t.Errorf("ExperienceFromText(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}
