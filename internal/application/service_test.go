package application

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/okempf/jobscout/internal/llm"
	"github.com/okempf/jobscout/internal/model"
	"github.com/okempf/jobscout/internal/store"
)

type fakeWriter struct {
	letter     string
	letterErr  error
	analysis   *llm.MatchAnalysis
	analyzeErr error
	lastOpts   llm.CoverLetterOptions
}

func (w *fakeWriter) CoverLetter(_ context.Context, _ *llm.ParsedCV, _ *model.JobPosting, opts llm.CoverLetterOptions) (string, error) {
	w.lastOpts = opts
	return w.letter, w.letterErr
}

func (w *fakeWriter) AnalyzeMatch(_ context.Context, _ json.RawMessage, _ *model.JobPosting) (*llm.MatchAnalysis, error) {
	return w.analysis, w.analyzeErr
}

type fixture struct {
	svc    *Service
	store  *store.SQLiteStore
	writer *fakeWriter
	userID int64
	jobID  int64
	cvID   int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	user, err := st.CreateUser("applicant@example.com", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	job := &model.JobPosting{
		ExternalID:     "test_1",
		Title:          "CFD Engineer",
		Company:        "WindTech",
		Description:    "OpenFOAM simulations",
		SkillsRequired: []string{"cfd", "openfoam"},
		PostedDate:     time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
	}
	if err := st.CreateJob(job); err != nil {
		t.Fatalf("create job: %v", err)
	}

	cv := &model.CV{
		Title:    "Base CV",
		Content:  json.RawMessage(`{"summary":"Simulation engineer","skills":["cfd","openfoam"]}`),
		Skills:   []string{"cfd", "openfoam"},
		IsBaseCV: true,
		OwnerID:  user.ID,
	}
	if err := st.CreateCV(cv); err != nil {
		t.Fatalf("create cv: %v", err)
	}

	writer := &fakeWriter{letter: "Dear Hiring Manager, ..."}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &fixture{
		svc:    NewService(st, writer, logger),
		store:  st,
		writer: writer,
		userID: user.ID,
		jobID:  job.ID,
		cvID:   cv.ID,
	}
}

func TestCreate_WithCoverLetter(t *testing.T) {
	f := newFixture(t)

	app, err := f.svc.Create(context.Background(), f.userID, f.jobID, f.cvID, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if app.Status != model.StatusDraft {
		t.Errorf("Status = %q, want draft", app.Status)
	}
	if app.CoverLetter == "" {
		t.Error("cover letter not attached")
	}

	stored, err := f.store.GetApplication(app.ID, f.userID)
	if err != nil {
		t.Fatalf("application not persisted: %v", err)
	}
	if stored.JobID != f.jobID || stored.CVID != f.cvID {
		t.Errorf("stored = %+v", stored)
	}
}

func TestCreate_WithoutCoverLetter(t *testing.T) {
	f := newFixture(t)
	f.writer.letterErr = errors.New("llm down") // must never be called

	app, err := f.svc.Create(context.Background(), f.userID, f.jobID, f.cvID, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if app.CoverLetter != "" {
		t.Error("unexpected cover letter")
	}
}

func TestCreate_RejectsForeignCV(t *testing.T) {
	f := newFixture(t)
	other, err := f.store.CreateUser("other@example.com", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	if _, err := f.svc.Create(context.Background(), other.ID, f.jobID, f.cvID, false); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound for foreign CV", err)
	}
}

func TestUpdateStatus_StampsDates(t *testing.T) {
	f := newFixture(t)
	app, err := f.svc.Create(context.Background(), f.userID, f.jobID, f.cvID, false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	when := time.Date(2026, 8, 22, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return when }

	updated, err := f.svc.UpdateStatus(app.ID, f.userID, model.StatusApplied, "sent via portal")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.AppliedDate == nil || !updated.AppliedDate.Equal(when) {
		t.Errorf("AppliedDate = %v, want %v", updated.AppliedDate, when)
	}
	if updated.Notes != "sent via portal" {
		t.Errorf("Notes = %q", updated.Notes)
	}

	updated, err = f.svc.UpdateStatus(app.ID, f.userID, model.StatusInterviewScheduled, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.InterviewDate == nil {
		t.Error("InterviewDate not stamped")
	}
	if updated.Notes != "sent via portal" {
		t.Error("empty notes overwrote existing notes")
	}
}

func TestUpdateStatus_RejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)
	app, err := f.svc.Create(context.Background(), f.userID, f.jobID, f.cvID, false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.svc.UpdateStatus(app.ID, f.userID, "ghosted", ""); err == nil {
		t.Fatal("expected rejection of unknown status")
	}
}

func TestAnalyzeStrength_ComputesAndCachesScore(t *testing.T) {
	f := newFixture(t)
	f.writer.analysis = &llm.MatchAnalysis{
		MatchScore:     10, // overwritten by the heuristic
		MatchingSkills: []string{"cfd"},
	}
	app, err := f.svc.Create(context.Background(), f.userID, f.jobID, f.cvID, false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	analysis, err := f.svc.AnalyzeStrength(context.Background(), app.ID, f.userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// CV covers both required skills: heuristic gives 0.6 * 100 = 60.
	if analysis.MatchScore != 60 {
		t.Errorf("MatchScore = %v, want heuristic 60", analysis.MatchScore)
	}

	job, err := f.store.GetJob(f.jobID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if job.MatchScore == nil || *job.MatchScore != 60 {
		t.Errorf("score not cached on job: %v", job.MatchScore)
	}
}

func TestAnalyzeStrength_PrefersStoredScore(t *testing.T) {
	f := newFixture(t)
	f.writer.analysis = &llm.MatchAnalysis{MatchScore: 10}
	if err := f.store.UpdateMatchScore(f.jobID, 87.5); err != nil {
		t.Fatalf("seed score: %v", err)
	}
	app, err := f.svc.Create(context.Background(), f.userID, f.jobID, f.cvID, false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	analysis, err := f.svc.AnalyzeStrength(context.Background(), app.ID, f.userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if analysis.MatchScore != 87.5 {
		t.Errorf("MatchScore = %v, want stored 87.5", analysis.MatchScore)
	}
}

func TestRecommendations(t *testing.T) {
	f := newFixture(t)

	// A second job that matches the CV poorly, and a third already applied to.
	weak := &model.JobPosting{
		ExternalID:     "test_2",
		Title:          "Accountant",
		SkillsRequired: []string{"bookkeeping", "excel", "tax law", "sap"},
		PostedDate:     time.Date(2026, 8, 19, 0, 0, 0, 0, time.UTC),
	}
	if err := f.store.CreateJob(weak); err != nil {
		t.Fatalf("create job: %v", err)
	}
	applied := &model.JobPosting{
		ExternalID:     "test_3",
		Title:          "CFD Analyst",
		SkillsRequired: []string{"cfd"},
		PostedDate:     time.Date(2026, 8, 18, 0, 0, 0, 0, time.UTC),
	}
	if err := f.store.CreateJob(applied); err != nil {
		t.Fatalf("create job: %v", err)
	}
	if _, err := f.svc.Create(context.Background(), f.userID, applied.ID, f.cvID, false); err != nil {
		t.Fatalf("create application: %v", err)
	}

	recs, err := f.svc.Recommendations(f.userID, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Only the full-overlap job clears the 50-point threshold; the applied
	// job is excluded despite matching.
	if len(recs) != 1 {
		t.Fatalf("got %d recommendations, want 1: %+v", len(recs), recs)
	}
	if recs[0].Job.ID != f.jobID || recs[0].RecommendedCVID != f.cvID {
		t.Errorf("recommendation = %+v", recs[0])
	}
	if recs[0].MatchScore <= 50 {
		t.Errorf("MatchScore = %v, want above threshold", recs[0].MatchScore)
	}
}

func TestRecommendations_NoBaseCVs(t *testing.T) {
	f := newFixture(t)
	other, err := f.store.CreateUser("nocv@example.com", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	recs, err := f.svc.Recommendations(other.ID, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recs != nil {
		t.Errorf("want no recommendations without base CVs, got %v", recs)
	}
}

func TestAnalytics(t *testing.T) {
	f := newFixture(t)

	second := &model.JobPosting{ExternalID: "test_2", Title: "Analyst", PostedDate: time.Now()}
	if err := f.store.CreateJob(second); err != nil {
		t.Fatalf("create job: %v", err)
	}
	if err := f.store.UpdateMatchScore(f.jobID, 80); err != nil {
		t.Fatalf("seed score: %v", err)
	}
	if err := f.store.UpdateMatchScore(second.ID, 40); err != nil {
		t.Fatalf("seed score: %v", err)
	}

	first, err := f.svc.Create(context.Background(), f.userID, f.jobID, f.cvID, false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.svc.UpdateStatus(first.ID, f.userID, model.StatusApplied, ""); err != nil {
		t.Fatalf("update status: %v", err)
	}
	if _, err := f.svc.UpdateStatus(first.ID, f.userID, model.StatusResponded, ""); err != nil {
		t.Fatalf("update status: %v", err)
	}
	if _, err := f.svc.Create(context.Background(), f.userID, second.ID, f.cvID, false); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := f.svc.Analytics(f.userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.TotalApplications != 2 {
		t.Errorf("TotalApplications = %d", got.TotalApplications)
	}
	if got.StatusBreakdown[model.StatusResponded] != 1 || got.StatusBreakdown[model.StatusDraft] != 1 {
		t.Errorf("StatusBreakdown = %v", got.StatusBreakdown)
	}
	if got.AverageMatchScore != 60 {
		t.Errorf("AverageMatchScore = %v, want 60", got.AverageMatchScore)
	}
}

func TestAnalytics_SkipsDeletedJobs(t *testing.T) {
	f := newFixture(t)

	second := &model.JobPosting{ExternalID: "test_2", Title: "Analyst", PostedDate: time.Now()}
	if err := f.store.CreateJob(second); err != nil {
		t.Fatalf("create job: %v", err)
	}
	if err := f.store.UpdateMatchScore(f.jobID, 80); err != nil {
		t.Fatalf("seed score: %v", err)
	}
	if err := f.store.UpdateMatchScore(second.ID, 40); err != nil {
		t.Fatalf("seed score: %v", err)
	}
	for _, jobID := range []int64{f.jobID, second.ID} {
		if _, err := f.svc.Create(context.Background(), f.userID, jobID, f.cvID, false); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	// A job removed after the application was filed drops out of the
	// average instead of failing analytics.
	if err := f.store.DeleteJob(second.ID); err != nil {
		t.Fatalf("delete job: %v", err)
	}

	got, err := f.svc.Analytics(f.userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.TotalApplications != 2 {
		t.Errorf("TotalApplications = %d, want 2", got.TotalApplications)
	}
	if got.AverageMatchScore != 80 {
		t.Errorf("AverageMatchScore = %v, want 80", got.AverageMatchScore)
	}
}

func TestAnalytics_EmptyPipeline(t *testing.T) {
	f := newFixture(t)

	got, err := f.svc.Analytics(f.userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.TotalApplications != 0 || got.ResponseRate != 0 {
		t.Errorf("empty pipeline analytics = %+v", got)
	}
}
