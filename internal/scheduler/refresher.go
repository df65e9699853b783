package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/okempf/jobscout/internal/model"
	"github.com/okempf/jobscout/internal/search"
)

const recentSearchLimit = 20

// Store is the persistence surface the refresher reads.
type Store interface {
	ListRecentSearches(limit int) ([]model.SearchQuery, error)
	ListBaseCVs(ownerID int64) ([]model.CV, error)
}

// Searcher runs one aggregated search; in production this is the
// search.Aggregator over rate-limited adapters.
type Searcher interface {
	Search(ctx context.Context, req model.SearchRequest, profile *model.CandidateProfile, userID int64) (*search.Result, error)
}

// Refresher owns the background loop: on each tick it replays the users'
// recent searches, scores new postings against the owner's base CV, and
// notifies about unseen postings above the score threshold.
type Refresher struct {
	store    Store
	searcher Searcher
	notifier model.Notifier
	interval time.Duration
	minScore float64
	logger   *slog.Logger
}

// NewRefresher creates a refresher wired with all its dependencies.
func NewRefresher(store Store, searcher Searcher, notifier model.Notifier, interval time.Duration, minScore float64, logger *slog.Logger) *Refresher {
	return &Refresher{
		store:    store,
		searcher: searcher,
		notifier: notifier,
		interval: interval,
		minScore: minScore,
		logger:   logger,
	}
}

// Run starts the refresh loop. It runs one immediate cycle, then ticks on
// the configured interval. It returns nil when ctx is cancelled (graceful
// shutdown).
func (r *Refresher) Run(ctx context.Context) error {
	r.logger.Info("starting refresher",
		"interval", r.interval.String(),
		"min_score", r.minScore,
	)

	r.refreshAll(ctx)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("shutting down refresher")
			return nil
		case <-time.After(r.interval):
			r.refreshAll(ctx)
		}
	}
}

// refreshAll replays each recent search sequentially with a small pause
// between queries. Per-query failures are logged, never fatal.
func (r *Refresher) refreshAll(ctx context.Context) {
	searches, err := r.store.ListRecentSearches(recentSearchLimit)
	if err != nil {
		r.logger.Error("listing recent searches", "error", err)
		return
	}

	for i, q := range searches {
		if ctx.Err() != nil {
			return
		}

		if err := r.refreshOne(ctx, q); err != nil {
			r.logger.Error("refresh failed",
				"query", q.Query,
				"user", q.UserID,
				"error", err,
			)
		}

		if i < len(searches)-1 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(1 * time.Second):
			}
		}
	}
}

// refreshOne re-runs one saved search. History is not re-appended: the
// replay passes no user to the aggregator, so stored history keeps
// reflecting what users actually searched.
func (r *Refresher) refreshOne(ctx context.Context, q model.SearchQuery) error {
	profile, err := r.baseProfile(q.UserID)
	if err != nil {
		return err
	}

	result, err := r.searcher.Search(ctx, q.Filters, profile, 0)
	if err != nil {
		return err
	}

	fresh := make(map[string]bool, len(result.NewExternalIDs))
	for _, id := range result.NewExternalIDs {
		fresh[id] = true
	}

	var notify []model.JobPosting
	for _, p := range result.Postings {
		if !fresh[p.ExternalID] {
			continue
		}
		if p.MatchScore == nil || *p.MatchScore < r.minScore {
			continue
		}
		notify = append(notify, p)
	}

	if len(notify) > 0 {
		if err := r.notifier.Notify(notify); err != nil {
			return err
		}
	}

	r.logger.Info("refreshed search",
		"query", q.Query,
		"results", len(result.Postings),
		"new", len(result.NewExternalIDs),
		"notified", len(notify),
	)
	return nil
}

// baseProfile returns the scoring profile of the user's first base CV, or
// nil when they have none (postings are then stored but never notified).
func (r *Refresher) baseProfile(userID int64) (*model.CandidateProfile, error) {
	cvs, err := r.store.ListBaseCVs(userID)
	if err != nil {
		return nil, err
	}
	if len(cvs) == 0 {
		return nil, nil
	}
	profile := cvs[0].Profile()
	return &profile, nil
}
