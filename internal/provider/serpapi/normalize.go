package serpapi

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/avanishm/jobdigest/internal/job"
)

const maxDescriptionLen = 2000

// rawJob mirrors one entry of the google_jobs jobs_results array.
type rawJob struct {
	Title              string             `json:"title"`
	CompanyName        string             `json:"company_name"`
	Location           string             `json:"location"`
	Description        string             `json:"description"`
	Via                string             `json:"via"`
	ShareLink          string             `json:"share_link"`
	RelatedLinks       []relatedLink      `json:"related_links"`
	DetectedExtensions detectedExtensions `json:"detected_extensions"`
}

type relatedLink struct {
	Link string `json:"link"`
}

type detectedExtensions struct {
	Salary       string `json:"salary"`
	PostedAt     string `json:"posted_at"`
	ScheduleType string `json:"schedule_type"`
}

// Normalize compiles the raw record into the canonical posting shape.
// Records missing a title or company cannot be fingerprinted and are
// rejected.
func (r *rawJob) Normalize() (*job.Posting, error) {
	title := strings.TrimSpace(r.Title)
	company := strings.TrimSpace(r.CompanyName)

	if title == "" {
		return nil, errors.New("record has no title")
	}
	if company == "" {
		return nil, errors.New("record has no company")
	}

	city, state, remote := job.ParseLocation(r.Location)

	link := r.ShareLink
	if link == "" && len(r.RelatedLinks) > 0 {
		link = r.RelatedLinks[0].Link
	}

	description := truncateRunes(r.Description, maxDescriptionLen)

	return &job.Posting{
		Fingerprint:    job.Fingerprint(title, company, r.Location),
		Title:          title,
		Company:        company,
		Location:       strings.TrimSpace(r.Location),
		City:           city,
		State:          state,
		Remote:         remote,
		SalaryText:     r.DetectedExtensions.Salary,
		SalaryEstimate: job.ParseSalary(r.DetectedExtensions.Salary),
		URL:            link,
		Via:            r.Via,
		Source:         providerName,
		Posted:         r.DetectedExtensions.PostedAt,
		PostedAt:       parseRelativeTime(r.DetectedExtensions.PostedAt, time.Now()),
		Description:    description,
	}, nil
}

// truncateRunes caps s at limit runes so a multi-byte character is never cut
// in half.
func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

var relativeAge = regexp.MustCompile(`(?i)^(\d+)\s+(hour|day|week|month)s?\s+ago$`)

// parseRelativeTime turns google_jobs relative ages ("2 days ago") into a
// best-effort timestamp. Anything unrecognized yields nil.
func parseRelativeTime(raw string, now time.Time) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if strings.EqualFold(raw, "today") || strings.EqualFold(raw, "just posted") {
		posted := now.UTC()
		return &posted
	}
	if strings.EqualFold(raw, "yesterday") {
		posted := now.UTC().AddDate(0, 0, -1)
		return &posted
	}

	m := relativeAge.FindStringSubmatch(raw)
	if m == nil {
		return nil
	}

	count, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}

	var posted time.Time
	switch strings.ToLower(m[2]) {
	case "hour":
		posted = now.UTC().Add(-time.Duration(count) * time.Hour)
	case "day":
		posted = now.UTC().AddDate(0, 0, -count)
	case "week":
		posted = now.UTC().AddDate(0, 0, -7*count)
	case "month":
		posted = now.UTC().AddDate(0, -count, 0)
	}

	return &posted
}
