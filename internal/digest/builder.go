// Package digest renders the ranked postings into the HTML email and
// delivers it.
package digest

import (
	"fmt"
	"strings"
	"time"

	_ "embed"
	"html/template"

	"github.com/avanishm/jobdigest/internal/job"
	"github.com/avanishm/jobdigest/internal/ranking"
)

//go:embed template.html
var digestTemplate string

// Strong matches are entries at or above this composite score.
const strongMatchThreshold = 7.0

// Digest is the assembled daily email before rendering.
type Digest struct {
	Date     time.Time
	Entries  []*ranking.Ranked
	Criteria *job.SearchCriteria
}

// Stats are the header counts shown at the top of the email.
type Stats struct {
	NewListings   int
	StrongMatches int
	PriorityFirms int
}

func (d *Digest) Stats() Stats {
	stats := Stats{NewListings: len(d.Entries)}
	for _, entry := range d.Entries {
		if entry.Composite >= strongMatchThreshold {
			stats.StrongMatches++
		}
		if entry.Priority {
			stats.PriorityFirms++
		}
	}
	return stats
}

// Subject renders the email subject line.
func (d *Digest) Subject() string {
	subject := fmt.Sprintf("Job Digest (%s) — %d new listings",
		d.Date.Format("Jan 02"), len(d.Entries))

	if strong := d.Stats().StrongMatches; strong > 0 {
		subject += fmt.Sprintf(", %d strong matches", strong)
	}

	return subject
}

var templateFuncs = template.FuncMap{
	"scoreColor": scoreColor,
	"snippet":    snippet,
	"inc":        func(i int) int { return i + 1 },
	"barWidth":   func(score float64) int { return int(score * 10) },
}

// BuildHTML renders the full digest email.
func BuildHTML(d *Digest) (string, error) {
	tmpl, err := template.New("digest").Funcs(templateFuncs).Parse(digestTemplate)
	if err != nil {
		return "", fmt.Errorf("parse digest template: %w", err)
	}

	data := struct {
		*Digest
		DateLong   string
		HeadStats  Stats
		Titles     string
		Industries string
	}{
		Digest:     d,
		DateLong:   d.Date.Format("Monday, January 02, 2006"),
		HeadStats:  d.Stats(),
		Titles:     strings.Join(d.Criteria.Titles, ", "),
		Industries: strings.Join(d.Criteria.Industries, ", "),
	}

	var builder strings.Builder
	if err := tmpl.Execute(&builder, data); err != nil {
		return "", fmt.Errorf("render digest template: %w", err)
	}

	return builder.String(), nil
}

func scoreColor(score float64) string {
	switch {
	case score >= strongMatchThreshold:
		return "#22c55e"
	case score >= 5:
		return "#f59e0b"
	default:
		return "#e5e7eb"
	}
}

// snippet caps text at limit runes, never splitting a multi-byte character.
func snippet(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
