package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/okempf/jobscout/internal/config"
	"github.com/okempf/jobscout/internal/llm"
	"github.com/okempf/jobscout/internal/model"
	"github.com/okempf/jobscout/internal/notifier"
	"github.com/okempf/jobscout/internal/retry"
	"github.com/okempf/jobscout/internal/source"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobscout",
	Short: "Job application assistant",
	Long:  "JobScout aggregates listings from multiple job boards, scores them against your CV, and drafts applications.",
	// Default to `serve` so that `jobscout` with no args runs the API.
	// This keeps systemd unit files that invoke the binary directly working.
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBSCOUT_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBSCOUT_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	// A .env file next to the binary supplies ${VAR} references in the
	// YAML; absence is not an error.
	_ = godotenv.Load()

	if path == "" {
		if env := os.Getenv("JOBSCOUT_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

// setupLLM builds the completion stack: OpenRouter provider wrapped in the
// transient-failure retry decorator.
func setupLLM(cfg *config.Config, logger *slog.Logger) *llm.Service {
	httpClient := &http.Client{Timeout: cfg.LLM.Timeout}
	provider := retry.NewProvider(
		llm.NewOpenRouterProvider(cfg.LLM.BaseURL, cfg.LLM.APIKey, httpClient),
		cfg.LLM.MaxRetries,
		2*time.Second,
		logger,
	)
	return llm.NewService(provider, cfg.LLM.Model, cfg.LLM.AdvancedModel, logger)
}

func buildAdapters(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) []model.SourceAdapter {
	adapters := source.BuildAdapters(cfg, httpClient, logger)
	for _, a := range adapters {
		logger.Info("registered source", "name", a.Name())
	}
	return adapters
}
