package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/okempf/jobscout/internal/model"
)

const remoteokBaseURL = "https://remoteok.com/api"

// RemoteOKAdapter reads the RemoteOK public JSON feed. The feed is a
// bounded snapshot of current listings, so querying is done client-side.
type RemoteOKAdapter struct {
	baseURL  string
	client   *http.Client
	pageSize int
}

// NewRemoteOKAdapter creates the adapter with a shared HTTP client.
func NewRemoteOKAdapter(client *http.Client, pageSize int) *RemoteOKAdapter {
	return &RemoteOKAdapter{
		baseURL:  remoteokBaseURL,
		client:   client,
		pageSize: pageSize,
	}
}

// Name returns the source identifier.
func (a *RemoteOKAdapter) Name() string { return NameRemoteOK }

// remoteokJob is one feed entry. The feed's first element is a legal-notice
// object without an id; it is skipped during normalization.
type remoteokJob struct {
	ID          json.Number `json:"id"`
	Position    string      `json:"position"`
	Company     string      `json:"company"`
	Location    string      `json:"location"`
	Description string      `json:"description"`
	Tags        []string    `json:"tags"`
	Date        string      `json:"date"`
	URL         string      `json:"url"`
	SalaryMin   int         `json:"salary_min"`
	SalaryMax   int         `json:"salary_max"`
}

// Fetch downloads the feed and keeps entries matching the query. Every
// RemoteOK listing is remote by definition.
func (a *RemoteOKAdapter) Fetch(ctx context.Context, req model.SearchRequest) ([]model.JobPosting, error) {
	var feed []remoteokJob
	headers := map[string]string{"User-Agent": "jobscout/1.0 (job-search-tool)"}
	if err := getJSON(ctx, a.client, a.baseURL, headers, &feed); err != nil {
		return nil, fmt.Errorf("remoteok fetch: %w", err)
	}

	var postings []model.JobPosting
	for _, job := range feed {
		if job.ID.String() == "" || job.Position == "" {
			// Metadata/legal-notice entry.
			continue
		}
		description := stripHTML(job.Description)
		if !matchesQuery(req.Query, job.Position, strings.Join(job.Tags, " "), description) {
			continue
		}

		posting := model.JobPosting{
			ExternalID:      externalID(NameRemoteOK, job.ID.String()),
			Title:           job.Position,
			Company:         job.Company,
			Location:        orDefault(job.Location, "Remote"),
			Description:     description,
			JobType:         model.DefaultJobType,
			RemoteOption:    true,
			Source:          NameRemoteOK,
			URL:             job.URL,
			SkillsRequired:  job.Tags,
			ExperienceLevel: guessExperienceLevel(job.Position),
		}
		if job.SalaryMin > 0 && job.SalaryMax > 0 {
			posting.SalaryRange = fmt.Sprintf("$%d - $%d", job.SalaryMin, job.SalaryMax)
		}
		if job.Date != "" {
			if t, err := time.Parse(time.RFC3339, job.Date); err == nil {
				posting.PostedDate = t
			}
		}

		postings = append(postings, posting)
		if len(postings) >= a.pageSize {
			break
		}
	}

	return postings, nil
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
