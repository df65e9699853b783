package model

import (
	"encoding/json"
	"time"
)

// User is an account that owns CVs, applications and search history.
type User struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

// CV is a parsed curriculum vitae. Content holds the full structured CV as
// returned by the parser; Skills and Experience are lifted out because the
// scorer and recommendation code read them directly.
type CV struct {
	ID              int64             `json:"id"`
	Title           string            `json:"title"`
	Language        string            `json:"language"`
	Content         json.RawMessage   `json:"content"`
	OriginalPDFPath string            `json:"original_pdf_path,omitempty"`
	Skills          []string          `json:"skills"`
	Experience      []ExperienceEntry `json:"experience"`
	Education       json.RawMessage   `json:"education,omitempty"`
	PersonalInfo    json.RawMessage   `json:"personal_info,omitempty"`
	IsBaseCV        bool              `json:"is_base_cv"`
	OwnerID         int64             `json:"owner_id"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       *time.Time        `json:"updated_at,omitempty"`
}

// Profile returns the scoring view of the CV.
func (c *CV) Profile() CandidateProfile {
	return CandidateProfile{Skills: c.Skills, Experience: c.Experience}
}

// Application statuses. UpdateStatus stamps the matching date column.
const (
	StatusDraft              = "draft"
	StatusPending            = "pending"
	StatusApplied            = "applied"
	StatusResponded          = "responded"
	StatusInterviewScheduled = "interview_scheduled"
	StatusOffer              = "offer"
	StatusRejected           = "rejected"
)

// Application ties a user, a job posting and a CV together.
type Application struct {
	ID               int64           `json:"id"`
	Status           string          `json:"status"`
	CoverLetter      string          `json:"cover_letter,omitempty"`
	AdaptedCVContent json.RawMessage `json:"adapted_cv_content,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	AppliedDate      *time.Time      `json:"applied_date,omitempty"`
	ResponseDate     *time.Time      `json:"response_date,omitempty"`
	InterviewDate    *time.Time      `json:"interview_date,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        *time.Time      `json:"updated_at,omitempty"`
	UserID           int64           `json:"user_id"`
	JobID            int64           `json:"job_id"`
	CVID             int64           `json:"cv_id"`
}
