package search

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/okempf/jobscout/internal/match"
	"github.com/okempf/jobscout/internal/model"
)

const defaultMaxResults = 50

// Store is the persistence surface the aggregator writes through.
type Store interface {
	InsertJobIfAbsent(p *model.JobPosting) (bool, error)
	UpdateMatchScore(id int64, score float64) error
	AppendSearchHistory(q *model.SearchQuery) error
}

// Result is one aggregated search outcome. SourceErrors records which
// adapters failed this round; Degraded is set when at least one did, so
// callers can tell "no jobs found" from "sources were down".
type Result struct {
	Postings     []model.JobPosting `json:"postings"`
	SourceErrors map[string]string  `json:"source_errors,omitempty"`
	Degraded     bool               `json:"degraded"`

	// NewExternalIDs lists postings first stored during this search, before
	// filtering. The background refresher uses it to notify only once.
	NewExternalIDs []string `json:"new_external_ids,omitempty"`
}

// Aggregator fans a search out across all usable source adapters, merges
// and dedups the results, persists new postings, and ranks the merged list.
type Aggregator struct {
	adapters       []model.SourceAdapter
	store          Store
	logger         *slog.Logger
	adapterTimeout time.Duration
}

// NewAggregator wires the aggregator with its adapters and store.
func NewAggregator(adapters []model.SourceAdapter, store Store, adapterTimeout time.Duration, logger *slog.Logger) *Aggregator {
	if adapterTimeout <= 0 {
		adapterTimeout = 10 * time.Second
	}
	return &Aggregator{
		adapters:       adapters,
		store:          store,
		logger:         logger,
		adapterTimeout: adapterTimeout,
	}
}

// Search runs one aggregated search. Adapter failures degrade the result
// instead of failing it; persistence failures fail the whole search. When
// profile is non-nil every posting is scored against it. A userID > 0 gets
// a search-history record appended.
func (a *Aggregator) Search(ctx context.Context, req model.SearchRequest, profile *model.CandidateProfile, userID int64) (*Result, error) {
	type slot struct {
		postings []model.JobPosting
		err      error
	}
	slots := make([]slot, len(a.adapters))

	var wg sync.WaitGroup
	for i, adapter := range a.adapters {
		wg.Add(1)
		go func(i int, adapter model.SourceAdapter) {
			defer wg.Done()
			fetchCtx, cancel := context.WithTimeout(ctx, a.adapterTimeout)
			defer cancel()
			slots[i].postings, slots[i].err = adapter.Fetch(fetchCtx, req)
		}(i, adapter)
	}
	wg.Wait()

	result := &Result{}
	seen := make(map[string]bool)
	var merged []model.JobPosting
	for i, adapter := range a.adapters {
		if slots[i].err != nil {
			a.logger.Warn("source fetch failed",
				"source", adapter.Name(),
				"error", slots[i].err,
			)
			if result.SourceErrors == nil {
				result.SourceErrors = make(map[string]string)
			}
			result.SourceErrors[adapter.Name()] = slots[i].err.Error()
			result.Degraded = true
			continue
		}
		for _, p := range slots[i].postings {
			if p.ExternalID == "" || seen[p.ExternalID] {
				continue
			}
			seen[p.ExternalID] = true
			merged = append(merged, p)
		}
	}

	// Persist before ranking so stored rows carry database ids. A write
	// failure here is a hard failure: silently dropping discovered postings
	// is worse than a visible error.
	for i := range merged {
		inserted, err := a.store.InsertJobIfAbsent(&merged[i])
		if err != nil {
			return nil, fmt.Errorf("search: persisting posting %s: %w", merged[i].ExternalID, err)
		}
		if inserted {
			result.NewExternalIDs = append(result.NewExternalIDs, merged[i].ExternalID)
		}
	}

	if profile != nil {
		for i := range merged {
			score := match.Score(*profile, merged[i])
			merged[i].MatchScore = &score
			if merged[i].ID > 0 {
				if err := a.store.UpdateMatchScore(merged[i].ID, score); err != nil {
					return nil, fmt.Errorf("search: caching match score: %w", err)
				}
			}
		}
	}

	merged = Filter(merged, req)
	Sort(merged)

	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	if len(merged) > maxResults {
		merged = merged[:maxResults]
	}
	result.Postings = merged

	if userID > 0 {
		record := &model.SearchQuery{
			Query:        req.Query,
			Location:     req.Location,
			Filters:      req,
			ResultsCount: len(merged),
			UserID:       userID,
		}
		if err := a.store.AppendSearchHistory(record); err != nil {
			return nil, fmt.Errorf("search: recording history: %w", err)
		}
	}

	a.logger.Info("aggregated search",
		"query", req.Query,
		"sources", len(a.adapters),
		"failed", len(result.SourceErrors),
		"results", len(merged),
	)

	return result, nil
}
