package match

import (
	"testing"

	"github.com/okempf/jobscout/internal/model"
)

func TestScore_SkillOverlap(t *testing.T) {
	profile := model.CandidateProfile{
		Skills: []string{"CFD", "Python", "openfoam"},
	}
	job := model.JobPosting{
		Title:          "CFD Engineer",
		SkillsRequired: []string{"cfd", "OpenFOAM", "ANSYS", "C++"},
	}

	// 2 of 4 required skills, no experience: 0.5 * 0.6 * 100 = 30.
	got := Score(profile, job)
	if got != 30 {
		t.Errorf("Score = %v, want 30", got)
	}
}

func TestScore_Deterministic(t *testing.T) {
	profile := model.CandidateProfile{
		Skills: []string{"go", "sql"},
		Experience: []model.ExperienceEntry{
			{Position: "Backend Engineer", Description: "Built Go services with SQL storage"},
		},
	}
	job := model.JobPosting{
		Title:          "Go Developer",
		Description:    "Go services and SQL databases",
		SkillsRequired: []string{"go", "sql", "docker"},
	}

	first := Score(profile, job)
	for i := 0; i < 10; i++ {
		if got := Score(profile, job); got != first {
			t.Fatalf("Score not deterministic: %v vs %v", got, first)
		}
	}
}

func TestScore_Bounds(t *testing.T) {
	tests := []struct {
		name    string
		profile model.CandidateProfile
		job     model.JobPosting
	}{
		{"empty everything", model.CandidateProfile{}, model.JobPosting{}},
		{"no required skills", model.CandidateProfile{Skills: []string{"go"}}, model.JobPosting{Title: "x"}},
		{
			"perfect overlap",
			model.CandidateProfile{
				Skills: []string{"go"},
				Experience: []model.ExperienceEntry{
					{Position: "dev", Description: "go"},
				},
			},
			model.JobPosting{Title: "dev", Description: "go", SkillsRequired: []string{"go"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.profile, tt.job)
			if got < 0 || got > 100 {
				t.Errorf("Score = %v, out of [0,100]", got)
			}
		})
	}
}

func TestScore_EmptyInputsReturnZero(t *testing.T) {
	if got := Score(model.CandidateProfile{}, model.JobPosting{SkillsRequired: []string{"go"}}); got != 0 {
		t.Errorf("empty profile: Score = %v, want 0", got)
	}
	if got := Score(model.CandidateProfile{Skills: []string{"go"}}, model.JobPosting{}); got != 0 {
		t.Errorf("skill-less job: Score = %v, want 0", got)
	}
}

func TestScore_CaseInsensitiveSkills(t *testing.T) {
	profile := model.CandidateProfile{Skills: []string{"PYTHON"}}
	job := model.JobPosting{SkillsRequired: []string{"python"}}
	if got := Score(profile, job); got != 60 {
		t.Errorf("Score = %v, want 60", got)
	}
}

func TestScore_DuplicateRequiredSkillsCollapse(t *testing.T) {
	profile := model.CandidateProfile{Skills: []string{"go"}}
	job := model.JobPosting{SkillsRequired: []string{"go", "Go", "docker"}}
	// Distinct required set is {go, docker}: 1/2 * 0.6 * 100 = 30.
	if got := Score(profile, job); got != 30 {
		t.Errorf("Score = %v, want 30", got)
	}
}
