package cmd

import (
	"context"
	"time"

	"github.com/avanishm/jobdigest/internal/digest"
	"github.com/avanishm/jobdigest/internal/job"
	"github.com/avanishm/jobdigest/internal/ranking"
	"github.com/avanishm/jobdigest/internal/scoring"

	"go.uber.org/zap"
)

// renderPreview writes a digest built from canned postings so the email
// layout can be checked without spending provider or model quota.
func renderPreview(config *Config, outputPath string, log0 *zap.Logger) error {
	scored := samplePostings()

	ranked := ranking.Rank(scored, config.Search, config.Search.MaxEntries())

	d := &digest.Digest{
		Date:     time.Now(),
		Entries:  ranked,
		Criteria: config.Search,
	}

	sender := digest.NewFileSender(outputPath, log0)
	return sender.Deliver(context.Background(), d)
}

func samplePostings() []*scoring.Scored {
	intPtr := func(v int) *int { return &v }

	return []*scoring.Scored{
		{
			Posting: &job.Posting{
				Fingerprint:    job.Fingerprint("VP of Engineering", "Acme Robotics", "Chicago, IL"),
				Title:          "VP of Engineering",
				Company:        "Acme Robotics",
				Location:       "Chicago, IL",
				City:           "Chicago",
				State:          "IL",
				SalaryText:     "$250,000 - $300,000",
				SalaryEstimate: intPtr(300000),
				URL:            "https://example.com/jobs/vp-engineering",
				Via:            "LinkedIn",
				Source:         "sample",
				Posted:         "2 days ago",
				Description:    "Lead a 60-person engineering organization building industrial automation platforms. Own technical strategy, hiring, and delivery across four product lines.",
			},
			Score: &scoring.Score{
				TitleFit:        9,
				IndustryFit:     8,
				SkillMatch:      8,
				CompanyPrestige: 7,
				Rationale:       "Strong title and scope match; org size and platform focus line up with the profile.",
			},
		},
		{
			Posting: &job.Posting{
				Fingerprint:    job.Fingerprint("Director of Platform Engineering", "Northwind Health", "Chicago, IL (Remote)"),
				Title:          "Director of Platform Engineering",
				Company:        "Northwind Health",
				Location:       "Chicago, IL (Remote)",
				City:           "Chicago",
				State:          "IL",
				Remote:         true,
				SalaryText:     "$210K - $240K",
				SalaryEstimate: intPtr(240000),
				URL:            "https://example.com/jobs/director-platform",
				Via:            "Indeed",
				Source:         "sample",
				Posted:         "5 hours ago",
				Description:    "Own the cloud platform serving 200 product engineers. Kubernetes, developer experience, and reliability mandate with a team of 25.",
			},
			Score: &scoring.Score{
				TitleFit:        8,
				IndustryFit:     6,
				SkillMatch:      9,
				CompanyPrestige: 6,
				Rationale:       "Platform mandate is an excellent skill match; healthcare is adjacent rather than core.",
			},
		},
		{
			Posting: &job.Posting{
				Fingerprint: job.Fingerprint("Head of Engineering", "Lakeshore Capital", "Chicago, IL"),
				Title:       "Head of Engineering",
				Company:     "Lakeshore Capital",
				Location:    "Chicago, IL",
				City:        "Chicago",
				State:       "IL",
				URL:         "https://example.com/jobs/head-of-engineering",
				Via:         "Company site",
				Source:      "sample",
				Posted:      "1 week ago",
				Description: "First engineering executive for a quantitative trading firm. Build the team from 12 to 40 while keeping research velocity.",
			},
			Score: &scoring.Score{
				TitleFit:        7,
				IndustryFit:     9,
				SkillMatch:      6,
				CompanyPrestige: 8,
				Rationale:       "Industry and prestige are strong; smaller org than the profile targets.",
			},
		},
	}
}
