package cv

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/okempf/jobscout/internal/llm"
	"github.com/okempf/jobscout/internal/model"
)

// Store is the persistence surface the CV service uses.
type Store interface {
	CreateCV(cv *model.CV) error
	GetCV(id, ownerID int64) (*model.CV, error)
	GetJob(id int64) (*model.JobPosting, error)
}

// Parser is the LLM surface: text extraction and job-targeted rewriting.
type Parser interface {
	ParseCV(ctx context.Context, text, language string) (*llm.ParsedCV, error)
	AdaptCV(ctx context.Context, content json.RawMessage, job *model.JobPosting, focusAreas []string) (*llm.ParsedCV, error)
}

// Service handles CV uploads and job-specific adaptations. Uploaded PDFs
// are kept on disk under dataDir; parsed content lives in the store.
type Service struct {
	store   Store
	parser  Parser
	dataDir string
	logger  *slog.Logger

	// overridable in tests; production uses the pdf library
	extract func(path string) (string, error)
}

// NewService wires the CV service. dataDir is created on first upload.
func NewService(store Store, parser Parser, dataDir string, logger *slog.Logger) *Service {
	return &Service{
		store:   store,
		parser:  parser,
		dataDir: dataDir,
		logger:  logger,
		extract: ExtractText,
	}
}

// UploadPDF saves an uploaded CV PDF, extracts and parses its content, and
// persists it as a base CV. The saved file is removed again when extraction
// or parsing fails, so a failed upload leaves no orphan on disk.
func (s *Service) UploadPDF(ctx context.Context, ownerID int64, filename, title, language string, data []byte) (*model.CV, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return nil, fmt.Errorf("upload cv: only PDF files are supported, got %q", filepath.Ext(filename))
	}

	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("upload cv: create data dir: %w", err)
	}
	path := filepath.Join(s.dataDir, fmt.Sprintf("%d_%d_%s", time.Now().UnixNano(), ownerID, filepath.Base(filename)))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("upload cv: save file: %w", err)
	}

	text, err := s.extract(path)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("upload cv: %w", err)
	}

	parsed, err := s.parser.ParseCV(ctx, text, language)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("upload cv: %w", err)
	}

	record := &model.CV{
		Title:           title,
		Language:        language,
		Content:         parsed.Raw,
		OriginalPDFPath: path,
		Skills:          parsed.Skills,
		Experience:      parsed.Experience,
		Education:       parsed.Education,
		PersonalInfo:    parsed.PersonalInfo,
		IsBaseCV:        true,
		OwnerID:         ownerID,
	}
	if err := s.store.CreateCV(record); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("upload cv: %w", err)
	}

	s.logger.Info("cv uploaded",
		"cv_id", record.ID,
		"owner", ownerID,
		"skills", len(record.Skills),
	)
	return record, nil
}

// AdaptForJob rewrites an owned CV toward one job posting and stores the
// result as a new, non-base CV.
func (s *Service) AdaptForJob(ctx context.Context, cvID, jobID, ownerID int64, focusAreas []string) (*model.CV, error) {
	original, err := s.store.GetCV(cvID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("adapt cv: %w", err)
	}
	job, err := s.store.GetJob(jobID)
	if err != nil {
		return nil, fmt.Errorf("adapt cv: %w", err)
	}

	adapted, err := s.parser.AdaptCV(ctx, original.Content, job, focusAreas)
	if err != nil {
		return nil, fmt.Errorf("adapt cv: %w", err)
	}

	record := &model.CV{
		Title:           fmt.Sprintf("%s - Adapted for %s", original.Title, job.Title),
		Language:        original.Language,
		Content:         adapted.Raw,
		OriginalPDFPath: original.OriginalPDFPath,
		Skills:          adapted.Skills,
		Experience:      adapted.Experience,
		Education:       adapted.Education,
		PersonalInfo:    adapted.PersonalInfo,
		IsBaseCV:        false,
		OwnerID:         ownerID,
	}
	if err := s.store.CreateCV(record); err != nil {
		return nil, fmt.Errorf("adapt cv: %w", err)
	}

	s.logger.Info("cv adapted",
		"cv_id", record.ID,
		"source_cv", cvID,
		"job", jobID,
	)
	return record, nil
}
