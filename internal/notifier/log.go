package notifier

import (
	"log/slog"

	"github.com/okempf/jobscout/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes newly discovered postings to the given logger as
// structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each posting via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs each posting with company, title, location, URL, source, and
// score. Returns nil (stdout logging does not fail).
func (n *LogNotifier) Notify(postings []model.JobPosting) error {
	for _, p := range postings {
		args := []any{
			"company", p.Company,
			"title", p.Title,
			"location", p.Location,
			"url", p.URL,
			"source", p.Source,
		}
		if p.MatchScore != nil {
			args = append(args, "match_score", *p.MatchScore)
		}
		n.logger.Info("new job match", args...)
	}
	return nil
}
