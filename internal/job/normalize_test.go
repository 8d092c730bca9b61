package job

import "testing"

func TestNormalizeCompany(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain", input: "Acme", expected: "acme"},
		{name: "inc with dot", input: "Acme Inc.", expected: "acme"},
		{name: "llc", input: "Acme Robotics, LLC", expected: "acme robotics"},
		{name: "stacked suffixes", input: "Acme Holdings Group Ltd", expected: "acme holdings"},
		{name: "ampersand", input: "McKinsey & Company", expected: "mckinsey"},
		{name: "suffix only word survives", input: "Inc", expected: "inc"},
		{name: "extra whitespace", input: "  Acme   Robotics  ", expected: "acme robotics"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeCompany(tc.input); got != tc.expected {
				t.Fatalf("NormalizeCompany(%q) = %q, expected %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestParseLocation(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		city   string
		state  string
		remote bool
	}{
		{name: "city and state", input: "Chicago, IL", city: "Chicago", state: "IL"},
		{name: "remote qualifier", input: "Chicago, IL (Remote)", city: "Chicago", state: "IL", remote: true},
		{name: "hybrid qualifier", input: "Chicago, IL (Hybrid)", city: "Chicago", state: "IL"},
		{name: "bare remote", input: "Remote", remote: true},
		{name: "remote with region", input: "Remote US", remote: true},
		{name: "city only", input: "Chicago", city: "Chicago"},
		{name: "empty", input: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			city, state, remote := ParseLocation(tc.input)
			if city != tc.city || state != tc.state || remote != tc.remote {
				t.Fatalf("ParseLocation(%q) = (%q, %q, %v), expected (%q, %q, %v)",
					tc.input, city, state, remote, tc.city, tc.state, tc.remote)
			}
		})
	}
}

func TestFingerprintStableAcrossProviders(t *testing.T) {
	a := Fingerprint("VP of Engineering", "Acme Inc.", "Chicago, IL")
	b := Fingerprint("VP  OF  ENGINEERING", "Acme", "Chicago, IL (Remote)")

	if a != b {
		t.Fatalf("expected equivalent postings to share a fingerprint, got %q and %q", a, b)
	}

	if len(a) != 16 {
		t.Fatalf("expected 16-character fingerprint, got %d", len(a))
	}
}

func TestFingerprintDistinguishesCities(t *testing.T) {
	chicago := Fingerprint("VP of Engineering", "Acme", "Chicago, IL")
	newYork := Fingerprint("VP of Engineering", "Acme", "New York, NY")

	if chicago == newYork {
		t.Fatalf("expected different cities to produce different fingerprints")
	}
}
