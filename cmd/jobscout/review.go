package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/okempf/jobscout/internal/llm"
	"github.com/okempf/jobscout/internal/model"
	"github.com/okempf/jobscout/internal/review"
	"github.com/okempf/jobscout/internal/store"
)

var (
	reviewUserID int64
	reviewLimit  int
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Browse stored jobs interactively (TUI)",
	Long:  "Shows the CV picker, then launches the split-pane review view over stored postings.",
	RunE:  runReview,
}

func init() {
	reviewCmd.Flags().Int64Var(&reviewUserID, "user", 1, "user whose CVs to score against")
	reviewCmd.Flags().IntVar(&reviewLimit, "limit", 200, "maximum stored postings to load")
	rootCmd.AddCommand(reviewCmd)
}

// cvAnalyzer adapts the LLM match analysis to the review TUI's on-demand
// Analyzer interface, bound to one chosen CV.
type cvAnalyzer struct {
	svc *llm.Service
	cv  model.CV
}

func (a *cvAnalyzer) Analyze(ctx context.Context, job model.JobPosting) (*llm.MatchAnalysis, error) {
	return a.svc.AnalyzeMatch(ctx, a.cv.Content, &job)
}

func runReview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	postings, err := st.ListJobs(store.ListJobsOptions{Limit: reviewLimit})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load jobs: %v\n", err)
		os.Exit(1)
	}
	if len(postings) == 0 {
		fmt.Println("No stored jobs yet. Run `jobscout search <query>` first.")
		return nil
	}

	// Log output before the alt-screen starts corrupts the display, so the
	// LLM stack gets a discard logger here.
	silentLogger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var analyzer review.Analyzer
	cvs, err := st.ListBaseCVs(reviewUserID)
	if err == nil && len(cvs) > 0 {
		choice, err := review.RunCVPicker(cvs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "picker error: %v\n", err)
			return nil
		}
		if choice < 0 {
			return nil
		}
		analyzer = &cvAnalyzer{svc: setupLLM(cfg, silentLogger), cv: cvs[choice]}
	}

	if err := review.Run(postings, cfg.Refresh.MinMatchScore, analyzer); err != nil {
		fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
	}
	return nil
}
