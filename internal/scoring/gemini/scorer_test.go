package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/avanishm/jobdigest/internal/job"
	"github.com/avanishm/jobdigest/internal/scoring"

	"go.uber.org/zap"
)

type stubGenerator struct {
	response   string
	err        error
	lastPrompt string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

const validResponse = `{
  "title_fit": 9,
  "industry_fit": 7,
  "skill_match": 8,
  "company_prestige": 6.5,
  "rationale": "Strong title and platform match."
}`

func testPosting() *job.Posting {
	return &job.Posting{
		Fingerprint: "abc123",
		Title:       "VP of Engineering",
		Company:     "Acme Robotics",
		Location:    "Chicago, IL",
	}
}

func TestScorerParsesValidResponse(t *testing.T) {
	stub := &stubGenerator{response: validResponse}
	scorer, err := NewScorer(stub, zap.NewNop(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	score, err := scorer.Score(context.Background(), "Engineering executive, 15 years", testPosting())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if score.TitleFit != 9 || score.CompanyPrestige != 6.5 {
		t.Fatalf("unexpected dimensions: %+v", score)
	}

	if score.Rationale == "" {
		t.Fatalf("expected rationale to be populated")
	}

	if score.Raw != validResponse {
		t.Fatalf("expected raw response to be preserved")
	}
}

func TestScorerSubstitutesPromptPlaceholders(t *testing.T) {
	stub := &stubGenerator{response: validResponse}
	scorer, err := NewScorer(stub, zap.NewNop(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := scorer.Score(context.Background(), "Engineering executive", testPosting()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Contains(stub.lastPrompt, "{{PROFILE}}") || strings.Contains(stub.lastPrompt, "{{POSTING_JSON}}") {
		t.Fatalf("expected placeholders to be substituted")
	}

	if !strings.Contains(stub.lastPrompt, "Engineering executive") {
		t.Fatalf("expected profile in prompt")
	}

	if !strings.Contains(stub.lastPrompt, "VP of Engineering") {
		t.Fatalf("expected posting payload in prompt")
	}
}

func TestScorerHandlesCodeFences(t *testing.T) {
	stub := &stubGenerator{response: "```json\n" + validResponse + "\n```"}
	scorer, err := NewScorer(stub, zap.NewNop(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	score, err := scorer.Score(context.Background(), "profile", testPosting())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if score.SkillMatch != 8 {
		t.Fatalf("unexpected skill match: %v", score.SkillMatch)
	}
}

func TestScorerRejectsSchemaViolations(t *testing.T) {
	cases := []struct {
		name     string
		response string
	}{
		{name: "missing dimension", response: `{"title_fit": 9, "industry_fit": 7, "skill_match": 8}`},
		{name: "out of range", response: `{"title_fit": 15, "industry_fit": 7, "skill_match": 8, "company_prestige": 6}`},
		{name: "wrong type", response: `{"title_fit": "high", "industry_fit": 7, "skill_match": 8, "company_prestige": 6}`},
		{name: "extra field", response: `{"title_fit": 9, "industry_fit": 7, "skill_match": 8, "company_prestige": 6, "verdict": "hire"}`},
		{name: "not json", response: "The candidate is a great fit."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubGenerator{response: tc.response}
			scorer, err := NewScorer(stub, zap.NewNop(), 0)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			_, err = scorer.Score(context.Background(), "profile", testPosting())
			if err == nil {
				t.Fatalf("expected a schema error")
			}

			var scoringErr *scoring.Error
			if !errors.As(err, &scoringErr) {
				t.Fatalf("expected a scoring error, got %T", err)
			}

			if scoringErr.Fingerprint != "abc123" {
				t.Fatalf("expected the posting fingerprint on the error, got %q", scoringErr.Fingerprint)
			}
		})
	}
}

func TestScorerNilPosting(t *testing.T) {
	scorer, err := NewScorer(&stubGenerator{response: validResponse}, zap.NewNop(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = scorer.Score(context.Background(), "profile", nil)

	var scoringErr *scoring.Error
	if !errors.As(err, &scoringErr) {
		t.Fatalf("expected a scoring error, got %v", err)
	}
}

func TestScorerWrapsGeneratorFailure(t *testing.T) {
	boom := errors.New("quota exhausted")
	stub := &stubGenerator{err: boom}
	scorer, err := NewScorer(stub, zap.NewNop(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = scorer.Score(context.Background(), "profile", testPosting())
	if !errors.Is(err, boom) {
		t.Fatalf("expected the generator error to be wrapped, got %v", err)
	}
}
