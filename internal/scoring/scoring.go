// Package scoring defines the contract with the external language model that
// scores postings against the candidate profile.
package scoring

import (
	"context"
	"fmt"

	"github.com/avanishm/jobdigest/internal/job"
)

// Score is the structured result of evaluating one posting. Each dimension
// is bounded to 0-10 by the response schema.
type Score struct {
	TitleFit        float64 `json:"title_fit"`
	IndustryFit     float64 `json:"industry_fit"`
	SkillMatch      float64 `json:"skill_match"`
	CompanyPrestige float64 `json:"company_prestige"`
	Rationale       string  `json:"rationale"`
	Raw             string  `json:"-"`
}

// Scorer evaluates a single posting against the candidate profile. Postings
// are scored independently so retries stay local and cost stays bounded.
type Scorer interface {
	Score(ctx context.Context, profile string, posting *job.Posting) (*Score, error)
}

// Error is a per-posting scoring failure: a failed model call, a timeout, or
// a response that does not satisfy the score schema.
type Error struct {
	Fingerprint string
	Err         error
}

func (e *Error) Error() string {
	return fmt.Sprintf("scoring %s: %v", e.Fingerprint, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err as a scoring failure for the given posting.
func NewError(fingerprint string, err error) *Error {
	return &Error{Fingerprint: fingerprint, Err: err}
}
