package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/okempf/jobscout/internal/model"
)

const adzunaBaseURL = "https://api.adzuna.com/v1/api/jobs/de"

// AdzunaAdapter queries the Adzuna search API (German market). Requires the
// app_id/app_key credential pair.
type AdzunaAdapter struct {
	baseURL  string
	appID    string
	appKey   string
	client   *http.Client
	pageSize int
}

// NewAdzunaAdapter creates the adapter with a shared HTTP client.
func NewAdzunaAdapter(appID, appKey string, client *http.Client, pageSize int) *AdzunaAdapter {
	return &AdzunaAdapter{
		baseURL:  adzunaBaseURL,
		appID:    appID,
		appKey:   appKey,
		client:   client,
		pageSize: pageSize,
	}
}

// Name returns the source identifier.
func (a *AdzunaAdapter) Name() string { return NameAdzuna }

type adzunaResponse struct {
	Results []adzunaResult `json:"results"`
}

type adzunaResult struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Company      adzunaCompany  `json:"company"`
	Location     adzunaLocation `json:"location"`
	SalaryMin    float64        `json:"salary_min"`
	SalaryMax    float64        `json:"salary_max"`
	RedirectURL  string         `json:"redirect_url"`
	Created      string         `json:"created"`
	ContractTime string         `json:"contract_time"`
}

type adzunaCompany struct {
	DisplayName string `json:"display_name"`
}

type adzunaLocation struct {
	DisplayName string `json:"display_name"`
}

// Fetch queries one page of Adzuna results. An empty query skips the
// network call — Adzuna treats a blank "what" as fetch-everything.
func (a *AdzunaAdapter) Fetch(ctx context.Context, req model.SearchRequest) ([]model.JobPosting, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("app_id", a.appID)
	params.Set("app_key", a.appKey)
	params.Set("results_per_page", strconv.Itoa(a.pageSize))
	params.Set("what", req.Query)
	if req.Location != "" {
		params.Set("where", req.Location)
	}
	if req.SalaryMin > 0 {
		params.Set("salary_min", strconv.Itoa(req.SalaryMin))
	}
	params.Set("sort_by", "date")
	params.Set("content-type", "application/json")

	var payload adzunaResponse
	if err := getJSON(ctx, a.client, a.baseURL+"/search/1?"+params.Encode(), nil, &payload); err != nil {
		return nil, fmt.Errorf("adzuna fetch: %w", err)
	}

	postings := make([]model.JobPosting, 0, len(payload.Results))
	for _, job := range payload.Results {
		if job.ID == "" {
			continue
		}

		description := stripHTML(job.Description)
		posting := model.JobPosting{
			ExternalID:      externalID(NameAdzuna, job.ID),
			Title:           job.Title,
			Company:         job.Company.DisplayName,
			Location:        job.Location.DisplayName,
			Description:     description,
			JobType:         adzunaJobType(job.ContractTime),
			RemoteOption:    looksRemote(job.Title, job.Location.DisplayName, description),
			Source:          NameAdzuna,
			URL:             job.RedirectURL,
			ExperienceLevel: guessExperienceLevel(job.Title),
		}
		if job.SalaryMin > 0 && job.SalaryMax > 0 {
			posting.SalaryRange = fmt.Sprintf("€%.0f - €%.0f", job.SalaryMin, job.SalaryMax)
		}
		if job.Created != "" {
			if t, err := time.Parse("2006-01-02T15:04:05Z", job.Created); err == nil {
				posting.PostedDate = t
			}
		}

		postings = append(postings, posting)
	}

	return postings, nil
}

func adzunaJobType(contractTime string) string {
	switch contractTime {
	case "part_time":
		return "Part-time"
	case "full_time":
		return "Full-time"
	default:
		return model.DefaultJobType
	}
}
