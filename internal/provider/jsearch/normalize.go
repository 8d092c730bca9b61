package jsearch

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avanishm/jobdigest/internal/job"
)

const maxDescriptionLen = 2000

// rawJob mirrors one entry of the JSearch data array.
type rawJob struct {
	Title          string  `json:"job_title"`
	EmployerName   string  `json:"employer_name"`
	City           string  `json:"job_city"`
	State          string  `json:"job_state"`
	Country        string  `json:"job_country"`
	IsRemote       bool    `json:"job_is_remote"`
	Description    string  `json:"job_description"`
	MinSalary      float64 `json:"job_min_salary"`
	MaxSalary      float64 `json:"job_max_salary"`
	SalaryPeriod   string  `json:"job_salary_period"`
	PostedAt       string  `json:"job_posted_at_datetime_utc"`
	EmploymentType string  `json:"job_employment_type"`
	ApplyLink      string  `json:"job_apply_link"`
	Publisher      string  `json:"job_publisher"`
}

// Normalize compiles the raw record into the canonical posting shape.
func (r *rawJob) Normalize() (*job.Posting, error) {
	title := strings.TrimSpace(r.Title)
	company := strings.TrimSpace(r.EmployerName)

	if title == "" {
		return nil, errors.New("record has no title")
	}
	if company == "" {
		return nil, errors.New("record has no company")
	}

	location := r.location()
	city, state, _ := job.ParseLocation(location)

	salaryText := r.salaryText()

	description := truncateRunes(r.Description, maxDescriptionLen)

	var postedAt *time.Time
	if parsed, err := time.Parse(time.RFC3339, r.PostedAt); err == nil {
		postedAt = &parsed
	}

	return &job.Posting{
		Fingerprint:    job.Fingerprint(title, company, location),
		Title:          title,
		Company:        company,
		Location:       location,
		City:           city,
		State:          state,
		Remote:         r.IsRemote,
		SalaryText:     salaryText,
		SalaryEstimate: job.ParseSalary(salaryText),
		URL:            r.ApplyLink,
		Via:            r.Publisher,
		Source:         providerName,
		Posted:         r.PostedAt,
		PostedAt:       postedAt,
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

func (r *rawJob) location() string {
	switch {
	case r.City != "" && r.State != "":
		return r.City + ", " + r.State
	case r.City != "":
		return r.City
	case r.IsRemote:
		return "Remote"
	default:
		return r.Country
	}
}

// salaryText formats the structured min/max salary the way the digest
// displays it. Empty when the record carries no salary data.
func (r *rawJob) salaryText() string {
	if r.MinSalary == 0 && r.MaxSalary == 0 {
		return ""
	}

	period := strings.ToLower(r.SalaryPeriod)
	if period == "" {
		period = "year"
	}

	return fmt.Sprintf("$%.0f - $%.0f / %s", r.MinSalary, r.MaxSalary, period)
}
