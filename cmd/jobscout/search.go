package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/okempf/jobscout/internal/model"
	"github.com/okempf/jobscout/internal/review"
	"github.com/okempf/jobscout/internal/search"
	"github.com/okempf/jobscout/internal/store"
)

var (
	searchLocation   string
	searchRemoteOnly bool
	searchMaxResults int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run a one-shot job search",
	Long:  "Queries all usable sources, stores new postings, and prints the results as a table.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchLocation, "location", "l", "", "location filter")
	searchCmd.Flags().BoolVar(&searchRemoteOnly, "remote", false, "remote jobs only")
	searchCmd.Flags().IntVarP(&searchMaxResults, "max", "n", 25, "maximum results to print")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	// A TUI spinner runs during the fetch, so keep log output away from
	// the terminal unless debugging.
	logger := setupLogger(debug)
	if !debug {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

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

	httpClient := &http.Client{Timeout: 30 * time.Second}
	adapters := buildAdapters(cfg, httpClient, logger)
	if len(adapters) == 0 {
		fmt.Fprintln(os.Stderr, "no usable job sources configured")
		os.Exit(1)
	}

	aggregator := search.NewAggregator(adapters, st, cfg.Search.AdapterTimeout, logger)
	req := model.SearchRequest{
		Query:      strings.Join(args, " "),
		Location:   searchLocation,
		RemoteOnly: searchRemoteOnly,
		MaxResults: searchMaxResults,
	}

	var result *search.Result
	postings, err := review.RunLoader(req.Query, func(ctx context.Context) ([]model.JobPosting, error) {
		r, searchErr := aggregator.Search(ctx, req, nil, 0)
		if searchErr != nil {
			return nil, searchErr
		}
		result = r
		return r.Postings, nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "search failed: %v\n", err)
		os.Exit(1)
	}

	if result.Degraded {
		for name, msg := range result.SourceErrors {
			fmt.Fprintf(os.Stderr, "warning: %s failed: %s\n", name, msg)
		}
	}

	if len(postings) == 0 {
		fmt.Println("No jobs found.")
		return nil
	}

	fmt.Printf("%-35s %-25s %-20s %s\n", "Title", "Company", "Location", "Source")
	fmt.Println(strings.Repeat("─", 95))
	for _, p := range postings {
		fmt.Printf("%-35s %-25s %-20s %s\n", truncate(p.Title, 34), truncate(p.Company, 24), truncate(p.Location, 19), p.Source)
	}
	fmt.Printf("\n%d jobs (%d newly stored)\n", len(postings), len(result.NewExternalIDs))
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
