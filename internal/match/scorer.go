package match

import (
	"regexp"
	"strings"

	"github.com/okempf/jobscout/internal/model"
)

// Score weights: declared skill overlap dominates, free-text experience
// overlap refines.
const (
	skillWeight      = 0.6
	experienceWeight = 0.4
)

var wordRegex = regexp.MustCompile(`[A-Za-z0-9+#.]+`)

// Score computes a heuristic compatibility score in [0,100] between a
// candidate profile and a job posting. Deterministic for identical inputs;
// empty skills and empty experience both contribute 0 rather than erroring.
func Score(profile model.CandidateProfile, job model.JobPosting) float64 {
	skill := skillComponent(profile.Skills, job.SkillsRequired)
	experience := experienceComponent(profile.Experience, job)
	return (skill*skillWeight + experience*experienceWeight) * 100
}

// skillComponent is the fraction of the job's required skills the candidate
// declares, case-insensitive. Zero when the job declares none.
func skillComponent(candidateSkills, required []string) float64 {
	if len(required) == 0 {
		return 0
	}
	have := make(map[string]bool, len(candidateSkills))
	for _, s := range candidateSkills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			have[s] = true
		}
	}

	matched := 0
	seen := make(map[string]bool, len(required))
	total := 0
	for _, s := range required {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		total++
		if have[s] {
			matched++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(matched) / float64(total)
}

// experienceComponent averages, over all experience entries, the fraction of
// the job's text words also present in that entry's text. Zero with no
// entries or an empty job text.
func experienceComponent(entries []model.ExperienceEntry, job model.JobPosting) float64 {
	if len(entries) == 0 {
		return 0
	}
	jobWords := tokenize(job.Title + " " + job.Description)
	if len(jobWords) == 0 {
		return 0
	}

	var sum float64
	for _, entry := range entries {
		entryWords := tokenize(entry.Position + " " + entry.Description)
		overlap := 0
		for w := range jobWords {
			if entryWords[w] {
				overlap++
			}
		}
		sum += float64(overlap) / float64(len(jobWords))
	}
	return sum / float64(len(entries))
}

func tokenize(text string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range wordRegex.FindAllString(strings.ToLower(text), -1) {
		words[w] = true
	}
	return words
}
