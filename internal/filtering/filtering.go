// Package filtering applies the business rules that decide which postings
// are worth scoring. Steps run sequentially and report per-step tallies.
package filtering

import (
	"context"
	"fmt"

	"github.com/avanishm/jobdigest/internal/job"

	"go.uber.org/zap"
)

// Filter represents a single filtering step applied to postings.
type Filter interface {
	Name() string
	Apply(ctx context.Context, deps Deps, p *job.Postings) (*job.Postings, Step, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Logger   *zap.Logger
	Criteria *job.SearchCriteria
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Default returns the standard filter chain in evaluation order. Cheap exact
// checks run before fuzzier ones.
func Default() []Filter {
	return []Filter{
		NewTitle(),
		NewLocation(),
		NewSalaryFloor(),
		NewExcludedEmployers(),
		NewIndustry(),
	}
}

// Run executes the supplied filters sequentially and returns the surviving
// postings plus the total number dropped.
func Run(ctx context.Context, deps Deps, steps []Filter, p *job.Postings) (*job.Postings, int, error) {
	dropped := 0
	for _, step := range steps {
		next, info, err := step.Apply(ctx, deps, p)
		if err != nil {
			return nil, dropped, fmt.Errorf("%s: %w", step.Name(), err)
		}

		if deps.Logger != nil {
			deps.Logger.Info("filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}

		dropped += info.Dropped
		p = next
	}

	return p, dropped, nil
}
