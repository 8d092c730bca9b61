package job

import (
	"strings"
	"testing"
)

func TestTitleGroups(t *testing.T) {
	criteria := &SearchCriteria{
		Titles: []string{
			"VP of Engineering", "Head of Engineering", "CTO",
			"Director of Engineering", "VP of Technology",
		},
	}

	groups := criteria.TitleGroups()
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups for 5 titles, got %d", len(groups))
	}

	if !strings.Contains(groups[0], `"VP of Engineering" OR "Head of Engineering"`) {
		t.Fatalf("unexpected first group: %s", groups[0])
	}

	if groups[1] != `"VP of Technology"` {
		t.Fatalf("unexpected second group: %s", groups[1])
	}
}

func TestTitleGroupsEmpty(t *testing.T) {
	criteria := &SearchCriteria{}
	if groups := criteria.TitleGroups(); groups != nil {
		t.Fatalf("expected nil groups without titles, got %v", groups)
	}
}

func TestQueryCombinesIndustries(t *testing.T) {
	criteria := &SearchCriteria{
		Industries: []string{"fintech", "consulting"},
	}

	query := criteria.Query(`"CTO"`)
	expected := `("CTO") AND (fintech OR consulting)`
	if query != expected {
		t.Fatalf("Query = %q, expected %q", query, expected)
	}

	bare := &SearchCriteria{}
	if got := bare.Query(`"CTO"`); got != `("CTO")` {
		t.Fatalf("Query without industries = %q", got)
	}
}

func TestFirmMatching(t *testing.T) {
	criteria := &SearchCriteria{
		PriorityFirms: []string{"McKinsey", "Bain"},
		ExcludedFirms: []string{"Acme Staffing"},
	}

	if !criteria.IsPriorityFirm("McKinsey & Company") {
		t.Fatalf("expected substring match on priority firm")
	}

	if !criteria.IsPriorityFirm("BAIN") {
		t.Fatalf("expected case-insensitive priority match")
	}

	if criteria.IsPriorityFirm("Acme") {
		t.Fatalf("unexpected priority match")
	}

	if !criteria.IsExcludedFirm("acme staffing llc") {
		t.Fatalf("expected excluded firm match")
	}
}

func TestMaxEntriesDefault(t *testing.T) {
	criteria := &SearchCriteria{}
	if criteria.MaxEntries() != 25 {
		t.Fatalf("expected default of 25, got %d", criteria.MaxEntries())
	}

	criteria.MaxDigestEntries = 10
	if criteria.MaxEntries() != 10 {
		t.Fatalf("expected configured value, got %d", criteria.MaxEntries())
	}
}
