// Package pipeline drives one complete run:
// fetch -> normalize -> dedup -> filter -> score -> rank -> deliver -> persist.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/avanishm/jobdigest/internal/digest"
	"github.com/avanishm/jobdigest/internal/filtering"
	"github.com/avanishm/jobdigest/internal/job"
	"github.com/avanishm/jobdigest/internal/provider"
	"github.com/avanishm/jobdigest/internal/ranking"
	"github.com/avanishm/jobdigest/internal/scoring"
	"github.com/avanishm/jobdigest/internal/seen"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// deliveryTimeout bounds the send on its own clock. The run deadline aborts
// fetch and scoring, but a digest assembled from whatever succeeded must
// still go out.
const deliveryTimeout = time.Minute

// Deps are the pipeline's collaborators. Everything is an interface or an
// injected value so runs are testable without network.
type Deps struct {
	Primary  provider.Fetcher
	Fallback provider.Fetcher
	Scorer   scoring.Scorer
	Sender   digest.Sender
	Cache    *seen.Cache
	Logger   *zap.Logger
	Now      func() time.Time
}

// Options configure one run.
type Options struct {
	Criteria    *job.SearchCriteria
	Profile     string
	WindowDays  int
	Concurrency int
	// PersistCache is false in dry-run and preview modes: the cache file must
	// only change after a digest actually went out.
	PersistCache bool
}

// Metadata tallies what happened at every stage of a run.
type Metadata struct {
	RunID           string
	Fetched         int
	Rejected        int
	Duplicates      int
	FilteredOut     int
	Scored          int
	ScoringFailures int
	Delivered       int
}

// Run executes the pipeline once. Stage-local failures degrade to tallies in
// the returned metadata; only "no providers returned anything" and a failed
// delivery abort the run. The seen cache is flushed only after successful
// delivery, so an aborted run retries the same postings next time.
func Run(ctx context.Context, opts Options, deps Deps) (*Metadata, error) {
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}

	meta := &Metadata{RunID: uuid.NewString()}
	logger := deps.Logger.With(zap.String("run_id", meta.RunID))

	logger.Info("starting run", zap.String("location", opts.Criteria.Location))

	result, err := provider.FetchWithFallback(ctx, deps.Primary, deps.Fallback, opts.Criteria, logger)
	if err != nil {
		return meta, fmt.Errorf("fetch: %w", err)
	}

	postings := result.Postings
	meta.Fetched = postings.Len()
	meta.Rejected = result.Rejected

	logger.Info("fetched postings",
		zap.Int("count", meta.Fetched),
		zap.Int("rejected", meta.Rejected),
	)

	if logger.Core().Enabled(zap.DebugLevel) && postings.Len() > 0 {
		if path, err := postings.DumpToTmpFile(); err == nil {
			logger.Debug("fetched postings dumped for inspection", zap.String("path", path))
		}
	}

	// Dedup before filtering and scoring: repeats must never cost model calls.
	withinBatch := postings.Dedup()
	previouslySeen := postings.Keep(func(p *job.Posting) bool {
		return deps.Cache.IsNew(p.Fingerprint)
	})
	meta.Duplicates = len(withinBatch) + len(previouslySeen)

	logger.Info("deduplicated postings",
		zap.Int("within_batch", len(withinBatch)),
		zap.Int("previously_seen", len(previouslySeen)),
		zap.Int("left", postings.Len()),
	)

	filtered, droppedByFilters, err := filtering.Run(ctx, filtering.Deps{
		Logger:   logger,
		Criteria: opts.Criteria,
	}, filtering.Default(), postings)
	if err != nil {
		return meta, fmt.Errorf("filtering: %w", err)
	}
	meta.FilteredOut = droppedByFilters

	// Survivors are buffered as seen now; the buffer only reaches disk after
	// successful delivery.
	markedAt := now()
	for _, posting := range filtered.Items {
		deps.Cache.MarkSeen(posting.Fingerprint, markedAt)
	}

	scored, failures := scoring.ScoreAll(ctx, deps.Scorer, opts.Profile, filtered, opts.Concurrency, logger)
	meta.Scored = len(scored)
	meta.ScoringFailures = failures

	ranked := ranking.Rank(scored, opts.Criteria, opts.Criteria.MaxEntries())

	d := &digest.Digest{
		Date:     now(),
		Entries:  ranked,
		Criteria: opts.Criteria,
	}

	deliveryCtx, cancelDelivery := context.WithTimeout(context.WithoutCancel(ctx), deliveryTimeout)
	defer cancelDelivery()

	if err := deps.Sender.Deliver(deliveryCtx, d); err != nil {
		return meta, err
	}
	meta.Delivered = len(ranked)

	if opts.PersistCache {
		pruned := deps.Cache.Prune(now(), opts.WindowDays)
		if err := deps.Cache.Save(); err != nil {
			// The digest went out; a failed cache write means tomorrow's run
			// re-sees today's postings, which the dedup window tolerates.
			logger.Error("persisting seen cache failed", zap.Error(err))
		} else {
			logger.Info("seen cache persisted",
				zap.Int("pruned", pruned),
				zap.Int("size", deps.Cache.Len()),
			)
		}
	}

	logSummary(logger, meta, ranked)

	return meta, nil
}

func logSummary(logger *zap.Logger, meta *Metadata, ranked []*ranking.Ranked) {
	fields := []zap.Field{
		zap.Int("fetched", meta.Fetched),
		zap.Int("rejected", meta.Rejected),
		zap.Int("duplicates", meta.Duplicates),
		zap.Int("filtered_out", meta.FilteredOut),
		zap.Int("scored", meta.Scored),
		zap.Int("scoring_failures", meta.ScoringFailures),
		zap.Int("delivered", meta.Delivered),
	}

	if len(ranked) > 0 {
		top := ranked[0]
		fields = append(fields,
			zap.String("top_title", top.Posting.Title),
			zap.String("top_company", top.Posting.Company),
			zap.Float64("top_score", top.Composite),
		)
	}

	logger.Info("run complete", fields...)
}
