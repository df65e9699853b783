package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/okempf/jobscout/internal/llm"
	"github.com/okempf/jobscout/internal/match"
	"github.com/okempf/jobscout/internal/model"
	"github.com/okempf/jobscout/internal/store"
)

const (
	recommendationThreshold = 50.0
	recommendationJobPool   = 50
)

// Store is the persistence surface the application service uses.
type Store interface {
	GetJob(id int64) (*model.JobPosting, error)
	GetJobsByIDs(ids []int64) ([]model.JobPosting, error)
	GetCV(id, ownerID int64) (*model.CV, error)
	ListBaseCVs(ownerID int64) ([]model.CV, error)
	ListJobs(opts store.ListJobsOptions) ([]model.JobPosting, error)
	UpdateMatchScore(id int64, score float64) error
	CreateApplication(a *model.Application) error
	GetApplication(id, userID int64) (*model.Application, error)
	ListApplications(userID int64) ([]model.Application, error)
	UpdateApplication(a *model.Application) error
	AppliedJobIDs(userID int64) ([]int64, error)
}

// Writer is the LLM surface: letters and fit analyses.
type Writer interface {
	CoverLetter(ctx context.Context, cv *llm.ParsedCV, job *model.JobPosting, opts llm.CoverLetterOptions) (string, error)
	AnalyzeMatch(ctx context.Context, content json.RawMessage, job *model.JobPosting) (*llm.MatchAnalysis, error)
}

// Recommendation pairs an unapplied job with the best-fitting base CV.
type Recommendation struct {
	Job             model.JobPosting `json:"job"`
	RecommendedCVID int64            `json:"recommended_cv_id"`
	MatchScore      float64          `json:"match_score"`
}

// Analytics summarizes a user's application pipeline.
type Analytics struct {
	TotalApplications int            `json:"total_applications"`
	StatusBreakdown   map[string]int `json:"status_breakdown"`
	ResponseRate      float64        `json:"response_rate"`
	AverageMatchScore float64        `json:"average_match_score"`
}

// Service manages the application lifecycle: creation with optional cover
// letter, status transitions, strength analysis, recommendations, and
// pipeline analytics.
type Service struct {
	store  Store
	writer Writer
	logger *slog.Logger
	now    func() time.Time
}

// NewService wires the application service.
func NewService(st Store, writer Writer, logger *slog.Logger) *Service {
	return &Service{
		store:  st,
		writer: writer,
		logger: logger,
		now:    time.Now,
	}
}

// Create validates job and CV ownership and stores a draft application,
// optionally with a generated cover letter.
func (s *Service) Create(ctx context.Context, userID, jobID, cvID int64, withCoverLetter bool) (*model.Application, error) {
	job, err := s.store.GetJob(jobID)
	if err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}
	cv, err := s.store.GetCV(cvID, userID)
	if err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}

	app := &model.Application{
		Status: model.StatusDraft,
		UserID: userID,
		JobID:  jobID,
		CVID:   cvID,
	}
	if withCoverLetter {
		letter, err := s.writer.CoverLetter(ctx, llm.ProfileOf(cv), job, llm.CoverLetterOptions{})
		if err != nil {
			return nil, fmt.Errorf("create application: %w", err)
		}
		app.CoverLetter = letter
	}

	if err := s.store.CreateApplication(app); err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}

	s.logger.Info("application created",
		"application_id", app.ID,
		"user", userID,
		"job", jobID,
	)
	return app, nil
}

// GenerateCoverLetter drafts a letter for a job/CV pair without touching
// any stored application.
func (s *Service) GenerateCoverLetter(ctx context.Context, userID, jobID, cvID int64, opts llm.CoverLetterOptions) (string, error) {
	job, err := s.store.GetJob(jobID)
	if err != nil {
		return "", fmt.Errorf("cover letter: %w", err)
	}
	cv, err := s.store.GetCV(cvID, userID)
	if err != nil {
		return "", fmt.Errorf("cover letter: %w", err)
	}
	return s.writer.CoverLetter(ctx, llm.ProfileOf(cv), job, opts)
}

// UpdateStatus moves an application to a new status, stamping the matching
// date column: applied_date, response_date, or interview_date.
func (s *Service) UpdateStatus(id, userID int64, status, notes string) (*model.Application, error) {
	if !validStatus(status) {
		return nil, fmt.Errorf("update status: unknown status %q", status)
	}

	app, err := s.store.GetApplication(id, userID)
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}

	app.Status = status
	if notes != "" {
		app.Notes = notes
	}
	now := s.now()
	switch status {
	case model.StatusApplied:
		app.AppliedDate = &now
	case model.StatusResponded:
		app.ResponseDate = &now
	case model.StatusInterviewScheduled:
		app.InterviewDate = &now
	}

	if err := s.store.UpdateApplication(app); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	return app, nil
}

// AnalyzeStrength runs the LLM fit analysis for one application and makes
// sure the job carries a heuristic match score; a stored score wins over
// the LLM's own estimate.
func (s *Service) AnalyzeStrength(ctx context.Context, id, userID int64) (*llm.MatchAnalysis, error) {
	app, err := s.store.GetApplication(id, userID)
	if err != nil {
		return nil, fmt.Errorf("analyze application: %w", err)
	}
	job, err := s.store.GetJob(app.JobID)
	if err != nil {
		return nil, fmt.Errorf("analyze application: %w", err)
	}
	cv, err := s.store.GetCV(app.CVID, userID)
	if err != nil {
		return nil, fmt.Errorf("analyze application: %w", err)
	}

	analysis, err := s.writer.AnalyzeMatch(ctx, cv.Content, job)
	if err != nil {
		return nil, fmt.Errorf("analyze application: %w", err)
	}

	if job.MatchScore != nil {
		analysis.MatchScore = *job.MatchScore
	} else {
		score := match.Score(cv.Profile(), *job)
		if err := s.store.UpdateMatchScore(job.ID, score); err != nil {
			return nil, fmt.Errorf("analyze application: caching match score: %w", err)
		}
		analysis.MatchScore = score
	}
	return analysis, nil
}

// Recommendations scores the user's base CVs against recent jobs they have
// not applied to, keeping pairs above the threshold, best first.
func (s *Service) Recommendations(userID int64, limit int) ([]Recommendation, error) {
	if limit <= 0 {
		limit = 5
	}

	baseCVs, err := s.store.ListBaseCVs(userID)
	if err != nil {
		return nil, fmt.Errorf("recommendations: %w", err)
	}
	if len(baseCVs) == 0 {
		return nil, nil
	}

	appliedIDs, err := s.store.AppliedJobIDs(userID)
	if err != nil {
		return nil, fmt.Errorf("recommendations: %w", err)
	}
	applied := make(map[int64]bool, len(appliedIDs))
	for _, id := range appliedIDs {
		applied[id] = true
	}

	jobs, err := s.store.ListJobs(store.ListJobsOptions{Limit: recommendationJobPool})
	if err != nil {
		return nil, fmt.Errorf("recommendations: %w", err)
	}

	var recs []Recommendation
	for _, cv := range baseCVs {
		profile := cv.Profile()
		for _, job := range jobs {
			if applied[job.ID] {
				continue
			}
			score := match.Score(profile, job)
			if score > recommendationThreshold {
				recs = append(recs, Recommendation{
					Job:             job,
					RecommendedCVID: cv.ID,
					MatchScore:      score,
				})
			}
		}
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].MatchScore > recs[j].MatchScore
	})
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

// Analytics aggregates the user's pipeline: totals, per-status counts,
// response rate over applied applications, and the average stored match
// score of the applied-to jobs.
func (s *Service) Analytics(userID int64) (*Analytics, error) {
	apps, err := s.store.ListApplications(userID)
	if err != nil {
		return nil, fmt.Errorf("analytics: %w", err)
	}

	out := &Analytics{StatusBreakdown: map[string]int{}}
	if len(apps) == 0 {
		return out, nil
	}
	out.TotalApplications = len(apps)

	for _, app := range apps {
		out.StatusBreakdown[app.Status]++
	}

	appliedCount := out.StatusBreakdown[model.StatusApplied]
	respondedCount := out.StatusBreakdown[model.StatusResponded] +
		out.StatusBreakdown[model.StatusInterviewScheduled] +
		out.StatusBreakdown[model.StatusOffer]
	if appliedCount > 0 {
		out.ResponseRate = float64(respondedCount) / float64(appliedCount) * 100
	}

	// One IN query for the whole pipeline; jobs deleted since an
	// application was filed are absent and drop out of the average.
	jobIDs := make([]int64, 0, len(apps))
	for _, app := range apps {
		jobIDs = append(jobIDs, app.JobID)
	}
	jobs, err := s.store.GetJobsByIDs(jobIDs)
	if err != nil {
		return nil, fmt.Errorf("analytics: %w", err)
	}

	var scoreSum float64
	var scored int
	for _, job := range jobs {
		if job.MatchScore != nil {
			scoreSum += *job.MatchScore
			scored++
		}
	}
	if scored > 0 {
		out.AverageMatchScore = scoreSum / float64(scored)
	}
	return out, nil
}

func validStatus(status string) bool {
	switch status {
	case model.StatusDraft, model.StatusPending, model.StatusApplied,
		model.StatusResponded, model.StatusInterviewScheduled,
		model.StatusOffer, model.StatusRejected:
		return true
	}
	return false
}
