package llm

import (
	_ "embed"
	"text/template"
)

//go:embed prompts/cv_parse.md
var cvParsePromptRaw string

//go:embed prompts/cv_adapt.md
var cvAdaptPromptRaw string

//go:embed prompts/cover_letter.md
var coverLetterPromptRaw string

//go:embed prompts/match_analysis.md
var matchAnalysisPromptRaw string

// Prompt templates, parsed once at package init and reused per call.
var (
	cvParseTemplate       = template.Must(template.New("cv_parse").Parse(cvParsePromptRaw))
	cvAdaptTemplate       = template.Must(template.New("cv_adapt").Parse(cvAdaptPromptRaw))
	coverLetterTemplate   = template.Must(template.New("cover_letter").Parse(coverLetterPromptRaw))
	matchAnalysisTemplate = template.Must(template.New("match_analysis").Parse(matchAnalysisPromptRaw))
)
