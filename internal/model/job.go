package model

import (
	"context"
	"time"
)

// Default field values applied when a source does not report them.
const (
	DefaultJobType         = "Full-time"
	DefaultExperienceLevel = "Mid-level"
)

// JobPosting is the unified representation of a job listing from any source.
type JobPosting struct {
	ID              int64      `json:"id"`
	ExternalID      string     `json:"external_id"` // namespaced "<source>_<local-id>", unique corpus-wide
	Title           string     `json:"title"`
	Company         string     `json:"company"`
	Location        string     `json:"location"`
	Description     string     `json:"description"`
	Requirements    string     `json:"requirements"`
	SalaryRange     string     `json:"salary_range,omitempty"`
	JobType         string     `json:"job_type"`
	RemoteOption    bool       `json:"remote_option"`
	PostedDate      time.Time  `json:"posted_date"`
	Deadline        *time.Time `json:"deadline,omitempty"`
	Source          string     `json:"source"`
	URL             string     `json:"url"`
	SkillsRequired  []string   `json:"skills_required"`
	ExperienceLevel string     `json:"experience_level"`
	MatchScore      *float64   `json:"match_score,omitempty"` // computed lazily, mutable
	CreatedAt       time.Time  `json:"created_at"`
}

// SearchRequest is the inbound search filter set.
type SearchRequest struct {
	Query           string `json:"query"`
	Location        string `json:"location,omitempty"`
	RemoteOnly      bool   `json:"remote_only"`
	ExperienceLevel string `json:"experience_level,omitempty"`
	JobType         string `json:"job_type,omitempty"`
	SalaryMin       int    `json:"salary_min,omitempty"`
	MaxResults      int    `json:"max_results"`
}

// SearchQuery is an append-only history record of one aggregated search.
type SearchQuery struct {
	ID           int64         `json:"id"`
	Query        string        `json:"query"`
	Location     string        `json:"location"`
	Filters      SearchRequest `json:"filters"`
	ResultsCount int           `json:"results_count"`
	UserID       int64         `json:"user_id"`
	CreatedAt    time.Time     `json:"created_at"`
}

// ExperienceEntry is one position in a candidate's work history.
type ExperienceEntry struct {
	Company      string   `json:"company,omitempty"`
	Position     string   `json:"position"`
	StartDate    string   `json:"start_date,omitempty"`
	EndDate      string   `json:"end_date,omitempty"`
	Description  string   `json:"description"`
	Achievements []string `json:"achievements,omitempty"`
}

// CandidateProfile is the scoring view of a CV: declared skills plus
// experience entries. Derived per request, never persisted on its own.
type CandidateProfile struct {
	Skills     []string
	Experience []ExperienceEntry
}

// SourceAdapter fetches and normalizes listings from one external source.
type SourceAdapter interface {
	// Name returns the source identifier (e.g. "remoteok").
	Name() string
	// Fetch queries the source and returns normalized postings. Errors are
	// returned to the caller; the aggregator is the fails-soft boundary.
	Fetch(ctx context.Context, req SearchRequest) ([]JobPosting, error)
}

// Notifier announces newly discovered postings (background refresher).
type Notifier interface {
	Notify(postings []JobPosting) error
}
