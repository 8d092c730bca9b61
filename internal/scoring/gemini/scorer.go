package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/avanishm/jobdigest/internal/job"
	"github.com/avanishm/jobdigest/internal/logger"
	"github.com/avanishm/jobdigest/internal/scoring"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

//go:embed prompt.md
var promptTemplate string

//go:embed schema.json
var scoreSchema string

const defaultMaxLogLength = 200

// Scorer sends one posting at a time to Gemini and validates the structured
// response against the score schema before trusting it.
type Scorer struct {
	generator contentGenerator
	logger    *zap.Logger
	schema    *gojsonschema.Schema
	maxLogLen int
}

func NewScorer(generator contentGenerator, log *zap.Logger, maxLogLength int) (*Scorer, error) {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(scoreSchema))
	if err != nil {
		return nil, fmt.Errorf("compile score schema: %w", err)
	}

	return &Scorer{
		generator: generator,
		logger:    log,
		schema:    schema,
		maxLogLen: maxLogLength,
	}, nil
}

func (s *Scorer) Score(ctx context.Context, profile string, posting *job.Posting) (*scoring.Score, error) {
	if posting == nil {
		return nil, scoring.NewError("", fmt.Errorf("posting is required"))
	}

	postingJSON, err := json.MarshalIndent(posting, "", "  ")
	if err != nil {
		return nil, scoring.NewError(posting.Fingerprint, fmt.Errorf("marshal posting payload: %w", err))
	}

	prompt := buildPrompt(profile, string(postingJSON))

	s.logger.Debug("gemini score request",
		zap.String("fingerprint", posting.Fingerprint),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, s.maxLogLen)),
	)

	raw, err := s.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, scoring.NewError(posting.Fingerprint, err)
	}

	s.logger.Debug("gemini score response",
		zap.String("fingerprint", posting.Fingerprint),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, s.maxLogLen)),
	)

	score, err := s.parseResponse(raw)
	if err != nil {
		return nil, scoring.NewError(posting.Fingerprint, err)
	}

	score.Raw = raw
	return score, nil
}

func buildPrompt(profile, postingJSON string) string {
	prompt := strings.ReplaceAll(promptTemplate, "{{PROFILE}}", strings.TrimSpace(profile))
	return strings.ReplaceAll(prompt, "{{POSTING_JSON}}", postingJSON)
}

func (s *Scorer) parseResponse(raw string) (*scoring.Score, error) {
	cleaned := extractJSON(raw)

	result, err := s.schema.Validate(gojsonschema.NewStringLoader(cleaned))
	if err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	if !result.Valid() {
		reasons := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			reasons = append(reasons, desc.String())
		}
		return nil, fmt.Errorf("response violates score schema: %s", strings.Join(reasons, "; "))
	}

	var score scoring.Score
	if err := json.Unmarshal([]byte(cleaned), &score); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}

	return &score, nil
}

// extractJSON strips markdown code fences the model sometimes wraps around
// its output despite instructions.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
