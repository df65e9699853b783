package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okempf/jobscout/internal/model"
)

func TestArbeitsagentur_FetchSuccess(t *testing.T) {
	payload := `{
		"stellenangebote": [
			{
				"refnr": "10001-XYZ",
				"titel": "Senior CFD Engineer (m/w/d)",
				"beruf": "Ingenieur/in - Stroemungsmechanik",
				"arbeitgeber": "Siemens Energy",
				"arbeitsort": {"ort": "Hamburg", "region": "Hamburg", "land": "Deutschland"},
				"aktuelleVeroeffentlichungsdatum": "2026-08-20"
			},
			{
				"refnr": "10002-ABC",
				"titel": "Junior Berechnungsingenieur",
				"arbeitgeber": "Airbus",
				"arbeitsort": {"region": "Hamburg", "land": "Deutschland"},
				"externeUrl": "https://careers.airbus.com/123"
			}
		]
	}`
	var gotQuery, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("was")
		gotKey = r.Header.Get("X-API-Key")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	adapter := NewArbeitsagenturAdapter(srv.Client(), 25)
	adapter.baseURL = srv.URL

	jobs, err := adapter.Fetch(context.Background(), model.SearchRequest{Query: "CFD", Location: "Hamburg"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery != "CFD" {
		t.Errorf("was param = %q, want CFD", gotQuery)
	}
	if gotKey != arbeitsagenturClientID {
		t.Errorf("X-API-Key = %q", gotKey)
	}
	if len(jobs) != 2 {
		t.Fatalf("got %d jobs, want 2", len(jobs))
	}

	j := jobs[0]
	if j.ExternalID != "arbeitsagentur_10001-XYZ" {
		t.Errorf("ExternalID = %q", j.ExternalID)
	}
	if j.Company != "Siemens Energy" {
		t.Errorf("Company = %q", j.Company)
	}
	if j.Location != "Hamburg, Deutschland" {
		t.Errorf("Location = %q", j.Location)
	}
	if j.ExperienceLevel != "Senior" {
		t.Errorf("ExperienceLevel = %q", j.ExperienceLevel)
	}
	if j.PostedDate.IsZero() || j.PostedDate.Day() != 20 {
		t.Errorf("PostedDate = %v", j.PostedDate)
	}
	if j.JobType != model.DefaultJobType {
		t.Errorf("JobType = %q, want default", j.JobType)
	}

	// Second item: fallback location, external URL, junior heuristic.
	j = jobs[1]
	if j.Location != "Hamburg, Deutschland" {
		t.Errorf("fallback Location = %q", j.Location)
	}
	if j.URL != "https://careers.airbus.com/123" {
		t.Errorf("URL = %q", j.URL)
	}
	if j.ExperienceLevel != "Junior" {
		t.Errorf("ExperienceLevel = %q", j.ExperienceLevel)
	}
}

func TestArbeitsagentur_EmptyQuerySkipsNetwork(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	adapter := NewArbeitsagenturAdapter(srv.Client(), 25)
	adapter.baseURL = srv.URL

	jobs, err := adapter.Fetch(context.Background(), model.SearchRequest{Query: "   "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if jobs != nil {
		t.Errorf("got %d jobs, want none", len(jobs))
	}
	if called {
		t.Error("adapter hit the network for an empty query")
	}
}

func TestArbeitsagentur_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "60")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	adapter := NewArbeitsagenturAdapter(srv.Client(), 25)
	adapter.baseURL = srv.URL

	_, err := adapter.Fetch(context.Background(), model.SearchRequest{Query: "CFD"})
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("err = %v, want HTTPError", err)
	}
	if httpErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d", httpErr.StatusCode)
	}
	if httpErr.RetryAfter.Seconds() != 60 {
		t.Errorf("RetryAfter = %v", httpErr.RetryAfter)
	}
}

func TestArbeitsagentur_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	adapter := NewArbeitsagenturAdapter(srv.Client(), 25)
	adapter.baseURL = srv.URL

	if _, err := adapter.Fetch(context.Background(), model.SearchRequest{Query: "CFD"}); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}
