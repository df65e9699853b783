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

const (
	arbeitsagenturBaseURL = "https://rest.arbeitsagentur.de/jobboerse/jobsuche-service/pc/v4"
	// Public client key the Jobsuche frontend itself sends; not a secret.
	arbeitsagenturClientID = "jobboerse-jobsuche"
)

// ArbeitsagenturAdapter queries the German Federal Employment Agency
// Jobsuche API.
type ArbeitsagenturAdapter struct {
	baseURL  string
	client   *http.Client
	pageSize int
}

// NewArbeitsagenturAdapter creates the adapter with a shared HTTP client.
func NewArbeitsagenturAdapter(client *http.Client, pageSize int) *ArbeitsagenturAdapter {
	return &ArbeitsagenturAdapter{
		baseURL:  arbeitsagenturBaseURL,
		client:   client,
		pageSize: pageSize,
	}
}

// Name returns the source identifier.
func (a *ArbeitsagenturAdapter) Name() string { return NameArbeitsagentur }

// Partial schema of the Jobsuche response; unknown fields are ignored.
type arbeitsagenturResponse struct {
	Stellenangebote []arbeitsagenturJob `json:"stellenangebote"`
}

type arbeitsagenturJob struct {
	Refnr       string              `json:"refnr"`
	Titel       string              `json:"titel"`
	Beruf       string              `json:"beruf"`
	Arbeitgeber string              `json:"arbeitgeber"`
	Arbeitsort  arbeitsagenturPlace `json:"arbeitsort"`
	// Publication date, "2006-01-02" local format.
	Veroeffentlichungsdatum string `json:"aktuelleVeroeffentlichungsdatum"`
	ExterneURL              string `json:"externeUrl"`
}

type arbeitsagenturPlace struct {
	Ort    string `json:"ort"`
	Region string `json:"region"`
	Land   string `json:"land"`
}

// Fetch queries the Jobsuche API and normalizes the response. An empty
// query skips the network call entirely: the API would otherwise return the
// unbounded full corpus.
func (a *ArbeitsagenturAdapter) Fetch(ctx context.Context, req model.SearchRequest) ([]model.JobPosting, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("was", req.Query)
	if req.Location != "" {
		params.Set("wo", req.Location)
	}
	params.Set("size", strconv.Itoa(a.pageSize))
	params.Set("page", "1")

	var payload arbeitsagenturResponse
	headers := map[string]string{"X-API-Key": arbeitsagenturClientID}
	if err := getJSON(ctx, a.client, a.baseURL+"/jobs?"+params.Encode(), headers, &payload); err != nil {
		return nil, fmt.Errorf("arbeitsagentur fetch: %w", err)
	}

	postings := make([]model.JobPosting, 0, len(payload.Stellenangebote))
	for _, job := range payload.Stellenangebote {
		if job.Refnr == "" {
			continue
		}

		title := job.Titel
		if title == "" {
			title = job.Beruf
		}

		location := job.Arbeitsort.Ort
		if location == "" {
			location = job.Arbeitsort.Region
		}
		if location != "" && job.Arbeitsort.Land != "" {
			location += ", " + job.Arbeitsort.Land
		} else if location == "" {
			location = job.Arbeitsort.Land
		}

		jobURL := job.ExterneURL
		if jobURL == "" {
			jobURL = "https://www.arbeitsagentur.de/jobsuche/jobdetail/" + url.PathEscape(job.Refnr)
		}

		posting := model.JobPosting{
			ExternalID:      externalID(NameArbeitsagentur, job.Refnr),
			Title:           title,
			Company:         job.Arbeitgeber,
			Location:        location,
			Description:     job.Beruf,
			JobType:         model.DefaultJobType,
			RemoteOption:    looksRemote(title, location),
			Source:          NameArbeitsagentur,
			URL:             jobURL,
			ExperienceLevel: guessExperienceLevel(title),
		}

		if job.Veroeffentlichungsdatum != "" {
			if t, err := time.Parse("2006-01-02", job.Veroeffentlichungsdatum); err == nil {
				posting.PostedDate = t
			}
		}

		postings = append(postings, posting)
	}

	return postings, nil
}
