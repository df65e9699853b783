package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okempf/jobscout/internal/application"
	"github.com/okempf/jobscout/internal/cv"
	"github.com/okempf/jobscout/internal/model"
	"github.com/okempf/jobscout/internal/ratelimit"
	"github.com/okempf/jobscout/internal/scheduler"
	"github.com/okempf/jobscout/internal/search"
	"github.com/okempf/jobscout/internal/server"
	"github.com/okempf/jobscout/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  "Starts the REST API and, if enabled, the background search refresher; blocks until SIGINT/SIGTERM.",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"addr", cfg.Server.Addr,
		"database", cfg.Database.Path,
		"refresh_enabled", cfg.Refresh.Enabled,
	)

	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	httpClient := &http.Client{Timeout: 30 * time.Second}
	adapters := buildAdapters(cfg, httpClient, logger)
	if len(adapters) == 0 {
		logger.Warn("no usable job sources configured; searches will return empty results")
	}

	llmSvc := setupLLM(cfg, logger)
	aggregator := search.NewAggregator(adapters, st, cfg.Search.AdapterTimeout, logger)
	cvSvc := cv.NewService(st, llmSvc, cfg.Server.UploadDir, logger)
	appSvc := application.NewService(st, llmSvc, logger)

	srv := server.New(cfg, st, aggregator, cvSvc, appSvc, httpClient, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Refresh.Enabled {
		// The refresher replays saved searches in the background, so its
		// adapters get rate limited; interactive searches stay unthrottled.
		limiter := ratelimit.NewSourceRateLimiter(cfg.RateLimit.MinDelayFor)
		limited := make([]model.SourceAdapter, len(adapters))
		for i, a := range adapters {
			limited[i] = ratelimit.NewLimitedAdapter(a, limiter)
		}
		refreshAggregator := search.NewAggregator(limited, st, cfg.Search.AdapterTimeout, logger)
		n := setupNotifier(cfg, httpClient, logger)

		refresher := scheduler.NewRefresher(st, refreshAggregator, n, cfg.Refresh.Interval, cfg.Refresh.MinMatchScore, logger)
		go func() {
			if err := refresher.Run(ctx); err != nil {
				logger.Error("refresher stopped", "error", err)
			}
		}()
	}

	if err := srv.Run(ctx); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}
