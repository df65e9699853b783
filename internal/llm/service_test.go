package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/okempf/jobscout/internal/model"
)

// mockProvider records the last request and replies with a canned response.
type mockProvider struct {
	lastReq  Request
	response string
	err      error
}

func (m *mockProvider) Complete(_ context.Context, req Request) (string, error) {
	m.lastReq = req
	return m.response, m.err
}

func newTestService(provider Provider) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(provider, "cheap-model", "advanced-model", logger)
}

const parsedCVJSON = `{
	"personal_info": {"name": "Oskar Kempf", "email": "ok@example.com"},
	"experience": [
		{"company": "WindTech", "position": "CFD Engineer", "description": "Simulations"}
	],
	"education": [{"institution": "TUHH", "degree": "MSc"}],
	"skills": ["CFD", "Python", "OpenFOAM"],
	"summary": "Simulation engineer."
}`

func TestParseCV_DecodesPlainJSON(t *testing.T) {
	mock := &mockProvider{response: parsedCVJSON}
	svc := newTestService(mock)

	cv, err := svc.ParseCV(context.Background(), "raw cv text", "German")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cv.Skills) != 3 || cv.Skills[0] != "CFD" {
		t.Errorf("Skills = %v", cv.Skills)
	}
	if len(cv.Experience) != 1 || cv.Experience[0].Position != "CFD Engineer" {
		t.Errorf("Experience = %v", cv.Experience)
	}
	if cv.Summary != "Simulation engineer." {
		t.Errorf("Summary = %q", cv.Summary)
	}
	if len(cv.Raw) == 0 {
		t.Error("Raw content not retained")
	}
	if mock.lastReq.Model != "cheap-model" {
		t.Errorf("ParseCV used model %q, want the cheap tier", mock.lastReq.Model)
	}
	if !strings.Contains(mock.lastReq.Prompt, "German") || !strings.Contains(mock.lastReq.Prompt, "raw cv text") {
		t.Error("prompt missing language or CV text")
	}
}

func TestParseCV_StripsCodeFence(t *testing.T) {
	mock := &mockProvider{response: "```json\n" + parsedCVJSON + "\n```"}
	svc := newTestService(mock)

	cv, err := svc.ParseCV(context.Background(), "text", "")
	if err != nil {
		t.Fatalf("fenced JSON should still decode: %v", err)
	}
	if len(cv.Skills) != 3 {
		t.Errorf("Skills = %v", cv.Skills)
	}
}

func TestParseCV_MalformedJSON(t *testing.T) {
	mock := &mockProvider{response: "Sorry, I cannot parse that."}
	svc := newTestService(mock)

	if _, err := svc.ParseCV(context.Background(), "text", ""); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestAdaptCV_UsesAdvancedModel(t *testing.T) {
	mock := &mockProvider{response: parsedCVJSON}
	svc := newTestService(mock)

	job := &model.JobPosting{
		Title:        "CFD Engineer",
		Description:  "OpenFOAM work",
		Requirements: "5y experience",
	}
	_, err := svc.AdaptCV(context.Background(), json.RawMessage(parsedCVJSON), job, []string{"turbulence"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.lastReq.Model != "advanced-model" {
		t.Errorf("AdaptCV used model %q, want the advanced tier", mock.lastReq.Model)
	}
	if !strings.Contains(mock.lastReq.Prompt, "turbulence") {
		t.Error("focus areas missing from prompt")
	}
}

func TestCoverLetter_FillsApplicantSummary(t *testing.T) {
	mock := &mockProvider{response: "Dear Hiring Manager,\n..."}
	svc := newTestService(mock)

	cv, err := decodeParsedCV(parsedCVJSON)
	if err != nil {
		t.Fatalf("fixture decode: %v", err)
	}
	job := &model.JobPosting{Title: "CFD Engineer", Company: "WindTech"}

	letter, err := svc.CoverLetter(context.Background(), cv, job, CoverLetterOptions{
		Tone:   "enthusiastic",
		Length: "short",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if letter == "" {
		t.Fatal("empty letter")
	}
	prompt := mock.lastReq.Prompt
	if !strings.Contains(prompt, "Oskar Kempf") {
		t.Error("applicant name missing from prompt")
	}
	if !strings.Contains(prompt, "energetic and passionate tone") {
		t.Error("tone guide not applied")
	}
	if !strings.Contains(prompt, "150-200 words") {
		t.Error("length guide not applied")
	}
	if mock.lastReq.Temperature != 0.8 {
		t.Errorf("Temperature = %v, want 0.8", mock.lastReq.Temperature)
	}
}

func TestCoverLetter_UnknownOptionsFallBack(t *testing.T) {
	mock := &mockProvider{response: "letter"}
	svc := newTestService(mock)

	cv := &ParsedCV{}
	job := &model.JobPosting{Title: "x"}
	if _, err := svc.CoverLetter(context.Background(), cv, job, CoverLetterOptions{Tone: "sarcastic", Length: "epic"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(mock.lastReq.Prompt, "formal, business-like tone") {
		t.Error("unknown tone should fall back to professional")
	}
	if !strings.Contains(mock.lastReq.Prompt, "250-350 words") {
		t.Error("unknown length should fall back to medium")
	}
}

func TestAnalyzeMatch_DecodesAnalysis(t *testing.T) {
	mock := &mockProvider{response: "```\n" + `{
		"match_score": 72.5,
		"matching_skills": ["cfd"],
		"missing_skills": ["ansys"],
		"relevant_experience": ["5y simulation"],
		"strengths": ["domain depth"],
		"improvements": ["cloud tooling"],
		"recommendations": ["mention HPC work"]
	}` + "\n```"}
	svc := newTestService(mock)

	analysis, err := svc.AnalyzeMatch(context.Background(), json.RawMessage(parsedCVJSON), &model.JobPosting{Title: "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if analysis.MatchScore != 72.5 {
		t.Errorf("MatchScore = %v", analysis.MatchScore)
	}
	if len(analysis.MissingSkills) != 1 || analysis.MissingSkills[0] != "ansys" {
		t.Errorf("MissingSkills = %v", analysis.MissingSkills)
	}
}

func TestService_ProviderErrorPropagates(t *testing.T) {
	mock := &mockProvider{err: errors.New("upstream down")}
	svc := newTestService(mock)

	if _, err := svc.ParseCV(context.Background(), "text", ""); err == nil {
		t.Fatal("expected provider error")
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"padded", "  ```json\n{\"a\":1}\n```  ", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripCodeFence(tt.input); got != tt.want {
				t.Errorf("stripCodeFence(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
