package filtering

import (
	"context"
	"strings"

	"github.com/avanishm/jobdigest/internal/job"
)

type titleFilter struct{}

// NewTitle creates a filter that keeps postings whose title matches one of
// the configured title patterns (case-insensitive substring).
func NewTitle() Filter {
	return &titleFilter{}
}

func (f *titleFilter) Name() string { return "title" }

func (f *titleFilter) Apply(_ context.Context, deps Deps, p *job.Postings) (*job.Postings, Step, error) {
	initial := p.Len()
	titles := deps.Criteria.Titles
	if len(titles) == 0 {
		return p, Step{Initial: initial, Left: initial}, nil
	}

	dropped := p.Keep(func(posting *job.Posting) bool {
		title := strings.ToLower(posting.Title)
		for _, want := range titles {
			if strings.Contains(title, strings.ToLower(want)) {
				return true
			}
		}
		return false
	})

	return p, Step{Initial: initial, Dropped: len(dropped), Left: p.Len()}, nil
}

type locationFilter struct{}

// NewLocation creates a filter that keeps postings in the configured city or
// marked remote. Postings with no parseable location are kept: a missed
// listing costs more than a borderline scoring call.
func NewLocation() Filter {
	return &locationFilter{}
}

func (f *locationFilter) Name() string { return "location" }

func (f *locationFilter) Apply(_ context.Context, deps Deps, p *job.Postings) (*job.Postings, Step, error) {
	initial := p.Len()

	wantCity, _, _ := job.ParseLocation(deps.Criteria.Location)
	if wantCity == "" {
		return p, Step{Initial: initial, Left: initial}, nil
	}

	includeRemote := deps.Criteria.IncludeRemote
	dropped := p.Keep(func(posting *job.Posting) bool {
		if posting.Remote && includeRemote {
			return true
		}
		if posting.City == "" {
			return true
		}
		return strings.EqualFold(posting.City, wantCity)
	})

	return p, Step{Initial: initial, Dropped: len(dropped), Left: p.Len()}, nil
}

type salaryFloorFilter struct{}

// NewSalaryFloor creates a filter that drops postings whose salary estimate
// falls below the configured floor. Postings without salary data are kept:
// most listings omit salary, and absence must not exclude.
func NewSalaryFloor() Filter {
	return &salaryFloorFilter{}
}

func (f *salaryFloorFilter) Name() string { return "salary_floor" }

func (f *salaryFloorFilter) Apply(_ context.Context, deps Deps, p *job.Postings) (*job.Postings, Step, error) {
	initial := p.Len()
	floor := deps.Criteria.SalaryFloor
	if floor <= 0 {
		return p, Step{Initial: initial, Left: initial}, nil
	}

	dropped := p.Keep(func(posting *job.Posting) bool {
		if posting.SalaryEstimate == nil {
			return true
		}
		return *posting.SalaryEstimate >= floor
	})

	return p, Step{Initial: initial, Dropped: len(dropped), Left: p.Len()}, nil
}

type employersFilter struct{}

// NewExcludedEmployers creates a filter that removes postings from companies
// on the exclusion list.
func NewExcludedEmployers() Filter {
	return &employersFilter{}
}

func (f *employersFilter) Name() string { return "employers" }

func (f *employersFilter) Apply(_ context.Context, deps Deps, p *job.Postings) (*job.Postings, Step, error) {
	initial := p.Len()

	dropped := p.Keep(func(posting *job.Posting) bool {
		return !deps.Criteria.IsExcludedFirm(posting.Company)
	})

	return p, Step{Initial: initial, Dropped: len(dropped), Left: p.Len()}, nil
}

type industryFilter struct{}

// NewIndustry creates a filter that tags postings with the first configured
// industry found in their text and drops postings explicitly tagged with an
// industry outside the configured set. Untaggable postings are kept.
func NewIndustry() Filter {
	return &industryFilter{}
}

func (f *industryFilter) Name() string { return "industry" }

func (f *industryFilter) Apply(_ context.Context, deps Deps, p *job.Postings) (*job.Postings, Step, error) {
	initial := p.Len()
	industries := deps.Criteria.Industries
	if len(industries) == 0 {
		return p, Step{Initial: initial, Left: initial}, nil
	}

	dropped := p.Keep(func(posting *job.Posting) bool {
		if posting.Industry == "" {
			posting.Industry = deriveIndustry(posting, industries)
			return true
		}
		for _, industry := range industries {
			if strings.EqualFold(posting.Industry, industry) {
				return true
			}
		}
		return false
	})

	return p, Step{Initial: initial, Dropped: len(dropped), Left: p.Len()}, nil
}

func deriveIndustry(posting *job.Posting, industries []string) string {
	text := strings.ToLower(posting.Title + " " + posting.Description)
	for _, industry := range industries {
		if strings.Contains(text, strings.ToLower(industry)) {
			return industry
		}
	}
	return ""
}
