package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/okempf/jobscout/internal/model"
)

// ParsedCV is the structured shape extracted from CV text, and the shape an
// adaptation call must preserve. Raw carries the full JSON document so
// fields this struct does not model (certifications, languages, summary)
// survive a round trip.
type ParsedCV struct {
	PersonalInfo json.RawMessage         `json:"personal_info"`
	Experience   []model.ExperienceEntry `json:"experience"`
	Education    json.RawMessage         `json:"education"`
	Skills       []string                `json:"skills"`
	Summary      string                  `json:"summary"`
	Raw          json.RawMessage         `json:"-"`
}

// MatchAnalysis is the structured recruiter-style assessment of a CV
// against one job.
type MatchAnalysis struct {
	MatchScore         float64  `json:"match_score"`
	MatchingSkills     []string `json:"matching_skills"`
	MissingSkills      []string `json:"missing_skills"`
	RelevantExperience []string `json:"relevant_experience"`
	Strengths          []string `json:"strengths"`
	Improvements       []string `json:"improvements"`
	Recommendations    []string `json:"recommendations"`
}

// CoverLetterOptions tune tone and length of a generated letter.
type CoverLetterOptions struct {
	Tone         string   `json:"tone"`   // professional, enthusiastic, conversational
	Length       string   `json:"length"` // short, medium, long
	CustomPoints []string `json:"custom_points,omitempty"`
}

var lengthGuides = map[string]string{
	"short":  "2-3 paragraphs, around 150-200 words",
	"medium": "3-4 paragraphs, around 250-350 words",
	"long":   "4-5 paragraphs, around 400-500 words",
}

var toneGuides = map[string]string{
	"professional":   "formal, business-like tone",
	"enthusiastic":   "energetic and passionate tone",
	"conversational": "friendly but professional tone",
}

// Service runs the CV and application text operations against a Provider.
// Cheap extraction uses the default model; adaptation, letters, and
// analyses use the advanced one.
type Service struct {
	provider      Provider
	defaultModel  string
	advancedModel string
	logger        *slog.Logger
}

// NewService wires the operation layer over a completion provider.
func NewService(provider Provider, defaultModel, advancedModel string, logger *slog.Logger) *Service {
	return &Service{
		provider:      provider,
		defaultModel:  defaultModel,
		advancedModel: advancedModel,
		logger:        logger,
	}
}

// ParseCV extracts structured CV data from raw text.
func (s *Service) ParseCV(ctx context.Context, text, language string) (*ParsedCV, error) {
	if language == "" {
		language = "English"
	}
	prompt, err := render(cvParseTemplate, struct {
		Language string
		Text     string
	}{Language: language, Text: text})
	if err != nil {
		return nil, err
	}

	raw, err := s.provider.Complete(ctx, Request{
		Prompt:      prompt,
		Model:       s.defaultModel,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("parse cv: %w", err)
	}
	return decodeParsedCV(raw)
}

// AdaptCV rewrites CV content toward one job, preserving the JSON shape.
func (s *Service) AdaptCV(ctx context.Context, content json.RawMessage, job *model.JobPosting, focusAreas []string) (*ParsedCV, error) {
	prompt, err := render(cvAdaptTemplate, struct {
		JobDescription  string
		JobRequirements string
		FocusAreas      string
		CVContent       string
	}{
		JobDescription:  job.Description,
		JobRequirements: job.Requirements,
		FocusAreas:      strings.Join(focusAreas, ", "),
		CVContent:       string(content),
	})
	if err != nil {
		return nil, err
	}

	raw, err := s.provider.Complete(ctx, Request{
		Prompt:      prompt,
		Model:       s.advancedModel,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("adapt cv: %w", err)
	}
	return decodeParsedCV(raw)
}

// CoverLetter drafts a letter for one application.
func (s *Service) CoverLetter(ctx context.Context, cv *ParsedCV, job *model.JobPosting, opts CoverLetterOptions) (string, error) {
	lengthGuide, ok := lengthGuides[opts.Length]
	if !ok {
		lengthGuide = lengthGuides["medium"]
	}
	toneGuide, ok := toneGuides[opts.Tone]
	if !ok {
		toneGuide = toneGuides["professional"]
	}

	name := personalName(cv.PersonalInfo)
	skills := cv.Skills
	if len(skills) > 10 {
		skills = skills[:10]
	}
	recentPosition := ""
	if len(cv.Experience) > 0 {
		recentPosition = cv.Experience[0].Position
	}

	prompt, err := render(coverLetterTemplate, struct {
		JobTitle        string
		Company         string
		JobDescription  string
		JobRequirements string
		Name            string
		Summary         string
		Skills          string
		RecentPosition  string
		LengthGuide     string
		ToneGuide       string
		CustomPoints    string
	}{
		JobTitle:        job.Title,
		Company:         job.Company,
		JobDescription:  job.Description,
		JobRequirements: job.Requirements,
		Name:            name,
		Summary:         cv.Summary,
		Skills:          strings.Join(skills, ", "),
		RecentPosition:  recentPosition,
		LengthGuide:     lengthGuide,
		ToneGuide:       toneGuide,
		CustomPoints:    strings.Join(opts.CustomPoints, ", "),
	})
	if err != nil {
		return "", err
	}

	letter, err := s.provider.Complete(ctx, Request{
		Prompt:      prompt,
		Model:       s.advancedModel,
		Temperature: 0.8,
	})
	if err != nil {
		return "", fmt.Errorf("cover letter: %w", err)
	}
	return strings.TrimSpace(letter), nil
}

// AnalyzeMatch produces a structured fit assessment of CV content against
// one job.
func (s *Service) AnalyzeMatch(ctx context.Context, content json.RawMessage, job *model.JobPosting) (*MatchAnalysis, error) {
	prompt, err := render(matchAnalysisTemplate, struct {
		JobDescription  string
		JobRequirements string
		SkillsRequired  string
		CVContent       string
	}{
		JobDescription:  job.Description,
		JobRequirements: job.Requirements,
		SkillsRequired:  strings.Join(job.SkillsRequired, ", "),
		CVContent:       string(content),
	})
	if err != nil {
		return nil, err
	}

	raw, err := s.provider.Complete(ctx, Request{
		Prompt:      prompt,
		Model:       s.advancedModel,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("analyze match: %w", err)
	}

	var analysis MatchAnalysis
	if err := decodeJSON(raw, &analysis); err != nil {
		return nil, fmt.Errorf("analyze match: %w", err)
	}
	return &analysis, nil
}

// ProfileOf builds the prompt view of a stored CV. Summary is recovered
// from the raw content when present.
func ProfileOf(cv *model.CV) *ParsedCV {
	view := &ParsedCV{
		PersonalInfo: cv.PersonalInfo,
		Experience:   cv.Experience,
		Education:    cv.Education,
		Skills:       cv.Skills,
		Raw:          cv.Content,
	}
	var fields struct {
		Summary string `json:"summary"`
	}
	if len(cv.Content) > 0 {
		if err := json.Unmarshal(cv.Content, &fields); err == nil {
			view.Summary = fields.Summary
		}
	}
	return view
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

func decodeParsedCV(raw string) (*ParsedCV, error) {
	cleaned := stripCodeFence(raw)
	var cv ParsedCV
	if err := json.Unmarshal([]byte(cleaned), &cv); err != nil {
		return nil, fmt.Errorf("decode cv JSON: %w", err)
	}
	cv.Raw = json.RawMessage(cleaned)
	return &cv, nil
}

// decodeJSON unmarshals an LLM reply into v. Models often wrap JSON in a
// markdown code fence despite instructions, so strip one first.
func decodeJSON(raw string, v any) error {
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), v); err != nil {
		return fmt.Errorf("decode llm JSON: %w", err)
	}
	return nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func personalName(info json.RawMessage) string {
	var fields struct {
		Name string `json:"name"`
	}
	if len(info) > 0 {
		if err := json.Unmarshal(info, &fields); err == nil && fields.Name != "" {
			return fields.Name
		}
	}
	return "Applicant"
}
