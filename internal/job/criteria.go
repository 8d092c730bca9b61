package job

import "strings"

// SearchCriteria is the immutable per-run search profile consumed by the
// providers, the filter chain and the ranker.
type SearchCriteria struct {
	Titles           []string `mapstructure:"titles"`
	Location         string   `mapstructure:"location"`
	IncludeRemote    bool     `mapstructure:"include-remote"`
	Industries       []string `mapstructure:"industries"`
	SalaryFloor      int      `mapstructure:"salary-floor"`
	PriorityFirms    []string `mapstructure:"priority-firms"`
	ExcludedFirms    []string `mapstructure:"excluded-firms"`
	MaxDigestEntries int      `mapstructure:"max-digest-entries"`
}

const defaultMaxDigestEntries = 25

func (c *SearchCriteria) MaxEntries() int {
	if c.MaxDigestEntries <= 0 {
		return defaultMaxDigestEntries
	}
	return c.MaxDigestEntries
}

// IsPriorityFirm reports whether company matches the priority list
// (case-insensitive substring, so "McKinsey & Company" matches "McKinsey").
func (c *SearchCriteria) IsPriorityFirm(company string) bool {
	return matchesAny(company, c.PriorityFirms)
}

// IsExcludedFirm reports whether company matches the exclusion list.
func (c *SearchCriteria) IsExcludedFirm(company string) bool {
	return matchesAny(company, c.ExcludedFirms)
}

func matchesAny(company string, firms []string) bool {
	lower := strings.ToLower(company)
	for _, firm := range firms {
		if firm == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(firm)) {
			return true
		}
	}
	return false
}

// TitleGroups returns the broad query groups sent to the search providers.
// Titles are grouped to stay within provider quota instead of issuing one
// query per title.
func (c *SearchCriteria) TitleGroups() []string {
	if len(c.Titles) == 0 {
		return nil
	}

	const groupSize = 4
	groups := make([]string, 0, (len(c.Titles)+groupSize-1)/groupSize)
	for start := 0; start < len(c.Titles); start += groupSize {
		end := start + groupSize
		if end > len(c.Titles) {
			end = len(c.Titles)
		}
		quoted := make([]string, 0, end-start)
		for _, title := range c.Titles[start:end] {
			quoted = append(quoted, `"`+title+`"`)
		}
		groups = append(groups, strings.Join(quoted, " OR "))
	}
	return groups
}

// Query renders one provider search string from a title group and the
// configured industries.
func (c *SearchCriteria) Query(titleGroup string) string {
	if len(c.Industries) == 0 {
		return "(" + titleGroup + ")"
	}
	return "(" + titleGroup + ") AND (" + strings.Join(c.Industries, " OR ") + ")"
}
