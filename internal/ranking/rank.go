// Package ranking turns scored postings into the deterministic ordered list
// the digest presents.
package ranking

import (
	"sort"

	"github.com/avanishm/jobdigest/internal/job"
	"github.com/avanishm/jobdigest/internal/scoring"
)

// Dimension weights. Title carries the most signal for a seniority-driven
// search; prestige the least, since the priority bonus already rewards it.
const (
	weightTitle    = 0.30
	weightIndustry = 0.25
	weightSkill    = 0.25
	weightPrestige = 0.20

	priorityBonus = 0.5
	maxComposite  = 10.0
)

// Ranked is one digest entry: a posting, its dimension scores and the
// derived composite.
type Ranked struct {
	Posting   *job.Posting
	Score     *scoring.Score
	Composite float64
	Priority  bool
}

// Composite derives the single ranking value from the four dimensions plus
// the priority flag. Pure arithmetic: equal inputs always produce equal
// composites, across providers and across reruns.
func Composite(score *scoring.Score, priority bool) float64 {
	composite := weightTitle*score.TitleFit +
		weightIndustry*score.IndustryFit +
		weightSkill*score.SkillMatch +
		weightPrestige*score.CompanyPrestige

	if priority {
		composite += priorityBonus
	}
	if composite > maxComposite {
		composite = maxComposite
	}

	return composite
}

// Rank produces a new ordered list: composite descending, priority firms
// first among equals, then company and title alphabetically for a fully
// reproducible order. Input is never mutated. The result is truncated to
// maxEntries.
func Rank(scored []*scoring.Scored, criteria *job.SearchCriteria, maxEntries int) []*Ranked {
	ranked := make([]*Ranked, 0, len(scored))
	for _, item := range scored {
		priority := criteria.IsPriorityFirm(item.Posting.Company)
		ranked = append(ranked, &Ranked{
			Posting:   item.Posting,
			Score:     item.Score,
			Composite: Composite(item.Score, priority),
			Priority:  priority,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Composite != ranked[j].Composite {
			return ranked[i].Composite > ranked[j].Composite
		}
		if ranked[i].Priority != ranked[j].Priority {
			return ranked[i].Priority
		}
		if ranked[i].Posting.Company != ranked[j].Posting.Company {
			return ranked[i].Posting.Company < ranked[j].Posting.Company
		}
		return ranked[i].Posting.Title < ranked[j].Posting.Title
	})

	if maxEntries > 0 && len(ranked) > maxEntries {
		ranked = ranked[:maxEntries]
	}

	return ranked
}
