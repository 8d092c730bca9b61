package scoring

import (
	"context"
	"time"

	"github.com/avanishm/jobdigest/internal/job"
	"github.com/avanishm/jobdigest/internal/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultConcurrency bounds in-flight model calls to stay under provider
	// rate limits.
	DefaultConcurrency = 5
	retryBackoff       = 2 * time.Second
)

// Scored pairs a posting with its score.
type Scored struct {
	Posting *job.Posting
	Score   *Score
}

// ScoreAll scores every posting with bounded concurrency. Each posting gets
// one retry after a short backoff; a posting failing twice is dropped and
// counted, never fatal. Results come back in input order regardless of
// completion order, so ranking input never depends on scheduling.
func ScoreAll(ctx context.Context, scorer Scorer, profile string, postings *job.Postings, concurrency int, logger *zap.Logger) ([]*Scored, int) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	slots := make([]*Scored, postings.Len())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, posting := range postings.Items {
		g.Go(func() error {
			score, err := scoreWithRetry(gctx, scorer, profile, posting)
			if err != nil {
				logger.Warn("scoring failed, dropping posting",
					zap.String("fingerprint", posting.Fingerprint),
					zap.String("title", posting.Title),
					zap.String("company", posting.Company),
					zap.Error(err),
				)
				return nil
			}
			slots[i] = &Scored{Posting: posting, Score: score}
			return nil
		})
	}

	// Workers never return errors; failures degrade to dropped postings.
	_ = g.Wait()

	scored := make([]*Scored, 0, len(slots))
	failures := 0
	for _, slot := range slots {
		if slot == nil {
			failures++
			continue
		}
		scored = append(scored, slot)
	}

	return scored, failures
}

func scoreWithRetry(ctx context.Context, scorer Scorer, profile string, posting *job.Posting) (*Score, error) {
	score, err := scorer.Score(ctx, profile, posting)
	if err == nil {
		return score, nil
	}

	if waitErr := utils.WaitFor(ctx, retryBackoff); waitErr != nil {
		return nil, NewError(posting.Fingerprint, waitErr)
	}

	return scorer.Score(ctx, profile, posting)
}
