package search

import (
	"sort"
	"strings"

	"github.com/okempf/jobscout/internal/model"
)

// Filter keeps postings matching every present criterion. Absent criteria
// are no-ops, so filtering is conjunctive and idempotent.
func Filter(postings []model.JobPosting, req model.SearchRequest) []model.JobPosting {
	location := strings.ToLower(req.Location)
	experience := strings.ToLower(req.ExperienceLevel)
	jobType := strings.ToLower(req.JobType)

	out := make([]model.JobPosting, 0, len(postings))
	for _, p := range postings {
		if req.RemoteOnly && !p.RemoteOption {
			continue
		}
		if experience != "" && strings.ToLower(p.ExperienceLevel) != experience {
			continue
		}
		if jobType != "" && strings.ToLower(p.JobType) != jobType {
			continue
		}
		if location != "" && !strings.Contains(strings.ToLower(p.Location), location) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Sort orders postings in place by match score descending (missing score is
// 0), then posted date descending. Equal pairs keep their input order.
func Sort(postings []model.JobPosting) {
	sort.SliceStable(postings, func(i, j int) bool {
		si, sj := scoreOf(postings[i]), scoreOf(postings[j])
		if si != sj {
			return si > sj
		}
		return postings[i].PostedDate.After(postings[j].PostedDate)
	})
}

func scoreOf(p model.JobPosting) float64 {
	if p.MatchScore == nil {
		return 0
	}
	return *p.MatchScore
}
