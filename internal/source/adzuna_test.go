package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/okempf/jobscout/internal/model"
)

func TestAdzuna_FetchSuccess(t *testing.T) {
	payload := `{
		"results": [
			{
				"id": "4400123",
				"title": "CFD Engineer",
				"description": "Simulation work with <b>ANSYS Fluent</b>.",
				"company": {"display_name": "Bosch"},
				"location": {"display_name": "Stuttgart, Baden-Wuerttemberg"},
				"salary_min": 65000,
				"salary_max": 85000,
				"redirect_url": "https://www.adzuna.de/details/4400123",
				"created": "2026-08-21T00:00:00Z",
				"contract_time": "full_time"
			},
			{
				"id": "4400124",
				"title": "Werkstudent Simulation",
				"company": {"display_name": "MTU"},
				"location": {"display_name": "Muenchen"},
				"contract_time": "part_time"
			}
		]
	}`
	var gotParams url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotParams = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	adapter := NewAdzunaAdapter("app123", "key456", srv.Client(), 25)
	adapter.baseURL = srv.URL

	jobs, err := adapter.Fetch(context.Background(), model.SearchRequest{
		Query:     "CFD",
		Location:  "Stuttgart",
		SalaryMin: 60000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotParams.Get("app_id") != "app123" || gotParams.Get("app_key") != "key456" {
		t.Errorf("credentials not sent: %v", gotParams)
	}
	if gotParams.Get("what") != "CFD" || gotParams.Get("where") != "Stuttgart" {
		t.Errorf("query params = %v", gotParams)
	}
	if gotParams.Get("salary_min") != "60000" {
		t.Errorf("salary_min = %q", gotParams.Get("salary_min"))
	}

	if len(jobs) != 2 {
		t.Fatalf("got %d jobs, want 2", len(jobs))
	}
	j := jobs[0]
	if j.ExternalID != "adzuna_4400123" {
		t.Errorf("ExternalID = %q", j.ExternalID)
	}
	if j.Description != "Simulation work with ANSYS Fluent." {
		t.Errorf("Description = %q", j.Description)
	}
	if j.SalaryRange != "€65000 - €85000" {
		t.Errorf("SalaryRange = %q", j.SalaryRange)
	}
	if j.JobType != "Full-time" {
		t.Errorf("JobType = %q", j.JobType)
	}
	if jobs[1].JobType != "Part-time" {
		t.Errorf("part_time JobType = %q", jobs[1].JobType)
	}
}

func TestAdzuna_EmptyQuerySkipsNetwork(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	adapter := NewAdzunaAdapter("app123", "key456", srv.Client(), 25)
	adapter.baseURL = srv.URL

	jobs, err := adapter.Fetch(context.Background(), model.SearchRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if jobs != nil || called {
		t.Error("empty query should return nothing without a request")
	}
}
