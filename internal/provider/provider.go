// Package provider defines the search-provider boundary: each provider turns
// the search criteria into canonical postings, tallying records it had to
// reject during normalization.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/avanishm/jobdigest/internal/job"

	"go.uber.org/zap"
)

// Kind classifies provider failures.
type Kind string

const (
	KindNetwork   Kind = "network"
	KindAuth      Kind = "auth"
	KindQuota     Kind = "quota"
	KindMalformed Kind = "malformed"
)

// Error is a fetch-stage failure. A single failing provider is non-fatal as
// long as another one succeeds; the pipeline escalates only when every
// provider fails.
type Error struct {
	Provider string
	Kind     Kind
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider %s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err as a provider failure of the given kind.
func NewError(provider string, kind Kind, err error) *Error {
	return &Error{Provider: provider, Kind: kind, Err: err}
}

// Result is a provider's contribution to a run.
type Result struct {
	Postings *job.Postings
	// Rejected counts raw records that could not be minimally normalized
	// (missing title or company). They are tallied, not silently dropped.
	Rejected int
}

// Fetcher is one search provider. Implementations are stateless per call.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, criteria *job.SearchCriteria) (*Result, error)
}

// ErrAllProvidersFailed is returned when no provider produced results.
var ErrAllProvidersFailed = errors.New("no data sources available")

// FetchWithFallback queries the primary provider and falls back to the
// secondary only when the primary errors or returns zero postings, to
// conserve fallback quota. Both providers failing is a hard error.
func FetchWithFallback(ctx context.Context, primary, fallback Fetcher, criteria *job.SearchCriteria, logger *zap.Logger) (*Result, error) {
	result, primaryErr := primary.Fetch(ctx, criteria)
	if primaryErr == nil && result.Postings.Len() > 0 {
		return result, nil
	}

	if primaryErr != nil {
		logger.Warn("primary provider failed",
			zap.String("provider", primary.Name()),
			zap.Error(primaryErr),
		)
	} else {
		logger.Info("primary provider returned no postings",
			zap.String("provider", primary.Name()),
		)
	}

	if fallback == nil {
		if primaryErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrAllProvidersFailed, primaryErr)
		}
		return result, nil
	}

	logger.Info("trying fallback provider", zap.String("provider", fallback.Name()))

	fallbackResult, fallbackErr := fallback.Fetch(ctx, criteria)
	if fallbackErr == nil {
		// Zero-result primary still contributed its rejection tally.
		if primaryErr == nil {
			fallbackResult.Rejected += result.Rejected
		}
		return fallbackResult, nil
	}

	logger.Warn("fallback provider failed",
		zap.String("provider", fallback.Name()),
		zap.Error(fallbackErr),
	)

	if primaryErr == nil {
		// Primary succeeded with zero postings; an empty run is reportable
		// downstream, not fatal here.
		return result, nil
	}

	return nil, fmt.Errorf("%w: primary: %v; fallback: %v", ErrAllProvidersFailed, primaryErr, fallbackErr)
}
