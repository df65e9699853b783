package search

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/okempf/jobscout/internal/model"
)

type stubAdapter struct {
	name     string
	postings []model.JobPosting
	err      error
	delay    time.Duration
}

func (a *stubAdapter) Name() string { return a.name }

func (a *stubAdapter) Fetch(ctx context.Context, req model.SearchRequest) ([]model.JobPosting, error) {
	if a.delay > 0 {
		select {
		case <-time.After(a.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return a.postings, a.err
}

type fakeStore struct {
	inserted  map[string]int64
	nextID    int64
	scores    map[int64]float64
	history   []model.SearchQuery
	insertErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{inserted: make(map[string]int64), scores: make(map[int64]float64)}
}

func (s *fakeStore) InsertJobIfAbsent(p *model.JobPosting) (bool, error) {
	if s.insertErr != nil {
		return false, s.insertErr
	}
	if id, ok := s.inserted[p.ExternalID]; ok {
		p.ID = id
		return false, nil
	}
	s.nextID++
	s.inserted[p.ExternalID] = s.nextID
	p.ID = s.nextID
	return true, nil
}

func (s *fakeStore) UpdateMatchScore(id int64, score float64) error {
	s.scores[id] = score
	return nil
}

func (s *fakeStore) AppendSearchHistory(q *model.SearchQuery) error {
	s.history = append(s.history, *q)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func posting(externalID, title string, day int, skills ...string) model.JobPosting {
	return model.JobPosting{
		ExternalID:     externalID,
		Title:          title,
		PostedDate:     time.Date(2026, 8, day, 0, 0, 0, 0, time.UTC),
		SkillsRequired: skills,
	}
}

func TestSearch_PartialFailureKeepsHealthyResults(t *testing.T) {
	adapters := []model.SourceAdapter{
		&stubAdapter{name: "a", err: errors.New("boom")},
		&stubAdapter{name: "b", postings: []model.JobPosting{
			posting("b_1", "CFD Engineer", 20),
			posting("b_2", "Simulation Engineer", 19),
			posting("b_3", "Test Engineer", 18),
		}},
		&stubAdapter{name: "c", err: errors.New("timeout")},
	}
	agg := NewAggregator(adapters, newFakeStore(), time.Second, testLogger())

	result, err := agg.Search(context.Background(), model.SearchRequest{Query: "engineer"}, nil, 0)
	if err != nil {
		t.Fatalf("partial failure must not fail the search: %v", err)
	}
	if len(result.Postings) != 3 {
		t.Errorf("got %d postings, want 3", len(result.Postings))
	}
	if !result.Degraded {
		t.Error("result should be marked degraded")
	}
	if len(result.SourceErrors) != 2 {
		t.Errorf("SourceErrors = %v, want 2 entries", result.SourceErrors)
	}
}

func TestSearch_TotalFailureReturnsEmptyNotError(t *testing.T) {
	adapters := []model.SourceAdapter{
		&stubAdapter{name: "a", err: errors.New("down")},
		&stubAdapter{name: "b", err: errors.New("down")},
	}
	agg := NewAggregator(adapters, newFakeStore(), time.Second, testLogger())

	result, err := agg.Search(context.Background(), model.SearchRequest{Query: "x"}, nil, 0)
	if err != nil {
		t.Fatalf("total source failure must not error: %v", err)
	}
	if len(result.Postings) != 0 || !result.Degraded {
		t.Errorf("want empty degraded result, got %d postings degraded=%v", len(result.Postings), result.Degraded)
	}
}

func TestSearch_SlowAdapterDoesNotCancelSiblings(t *testing.T) {
	adapters := []model.SourceAdapter{
		&stubAdapter{name: "slow", delay: 500 * time.Millisecond, postings: []model.JobPosting{posting("slow_1", "x", 1)}},
		&stubAdapter{name: "fast", postings: []model.JobPosting{posting("fast_1", "y", 2)}},
	}
	agg := NewAggregator(adapters, newFakeStore(), 50*time.Millisecond, testLogger())

	result, err := agg.Search(context.Background(), model.SearchRequest{}, nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Postings) != 1 || result.Postings[0].ExternalID != "fast_1" {
		t.Errorf("fast adapter result lost: %v", result.Postings)
	}
	if _, ok := result.SourceErrors["slow"]; !ok {
		t.Errorf("slow adapter timeout not recorded: %v", result.SourceErrors)
	}
}

func TestSearch_DedupByExternalID(t *testing.T) {
	shared := posting("shared_1", "CFD Engineer", 20)
	adapters := []model.SourceAdapter{
		&stubAdapter{name: "a", postings: []model.JobPosting{shared, posting("a_2", "Other", 19)}},
		&stubAdapter{name: "b", postings: []model.JobPosting{shared}},
	}
	store := newFakeStore()
	agg := NewAggregator(adapters, store, time.Second, testLogger())

	result, err := agg.Search(context.Background(), model.SearchRequest{}, nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Postings) != 2 {
		t.Errorf("got %d postings, want 2 after dedup", len(result.Postings))
	}

	// Re-running the same search must not create new rows for known ids.
	before := len(store.inserted)
	if _, err := agg.Search(context.Background(), model.SearchRequest{}, nil, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.inserted) != before {
		t.Errorf("repeat search grew storage from %d to %d rows", before, len(store.inserted))
	}
}

func TestSearch_PersistenceFailureIsHard(t *testing.T) {
	store := newFakeStore()
	store.insertErr = errors.New("disk full")
	adapters := []model.SourceAdapter{
		&stubAdapter{name: "a", postings: []model.JobPosting{posting("a_1", "x", 1)}},
	}
	agg := NewAggregator(adapters, store, time.Second, testLogger())

	if _, err := agg.Search(context.Background(), model.SearchRequest{}, nil, 0); err == nil {
		t.Fatal("persistence failure must fail the search")
	}
}

func TestSearch_EndToEndScoredAndRanked(t *testing.T) {
	// Source A returns 3 postings sharing 2 of the candidate's 4 declared
	// skills; source B times out. All three come back scored and ranked.
	skills := []string{"cfd", "openfoam", "ansys", "fluent"}
	adapters := []model.SourceAdapter{
		&stubAdapter{name: "a", postings: []model.JobPosting{
			posting("a_1", "CFD Engineer", 18, "cfd", "openfoam"),
			posting("a_2", "CFD Engineer", 20, "cfd", "openfoam"),
			posting("a_3", "CFD Analyst", 19, "cfd", "openfoam", "star-ccm", "matlab"),
		}},
		&stubAdapter{name: "b", delay: time.Second},
	}
	store := newFakeStore()
	agg := NewAggregator(adapters, store, 50*time.Millisecond, testLogger())

	profile := &model.CandidateProfile{Skills: skills}
	result, err := agg.Search(context.Background(), model.SearchRequest{
		Query:      "CFD",
		Location:   "",
		MaxResults: 2,
	}, profile, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Degraded {
		t.Error("timed-out source should mark result degraded")
	}
	if len(result.Postings) != 2 {
		t.Fatalf("got %d postings, want max_results=2", len(result.Postings))
	}
	for _, p := range result.Postings {
		if p.MatchScore == nil {
			t.Fatalf("posting %s not scored", p.ExternalID)
		}
	}
	// a_1/a_2 fully cover their 2 required skills (60); a_3 covers 2 of 4
	// (30). Among the 60s the newer posting ranks first.
	if result.Postings[0].ExternalID != "a_2" || result.Postings[1].ExternalID != "a_1" {
		t.Errorf("ranking = %s, %s; want a_2, a_1",
			result.Postings[0].ExternalID, result.Postings[1].ExternalID)
	}
	if got := *result.Postings[0].MatchScore; got != 60 {
		t.Errorf("top score = %v, want 60", got)
	}

	// Scores cached onto stored rows, history appended for the user.
	if len(store.scores) != 3 {
		t.Errorf("cached %d scores, want 3", len(store.scores))
	}
	if len(store.history) != 1 || store.history[0].UserID != 7 || store.history[0].ResultsCount != 2 {
		t.Errorf("history = %+v", store.history)
	}
}
