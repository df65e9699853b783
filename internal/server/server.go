package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/okempf/jobscout/internal/application"
	"github.com/okempf/jobscout/internal/config"
	"github.com/okempf/jobscout/internal/cv"
	"github.com/okempf/jobscout/internal/model"
	"github.com/okempf/jobscout/internal/search"
	"github.com/okempf/jobscout/internal/store"
)

// Searcher runs one aggregated job search.
type Searcher interface {
	Search(ctx context.Context, req model.SearchRequest, profile *model.CandidateProfile, userID int64) (*search.Result, error)
}

// Server carries the API's dependencies and hangs the handlers off them.
type Server struct {
	cfg        *config.Config
	store      *store.SQLiteStore
	searcher   Searcher
	cvs        *cv.Service
	apps       *application.Service
	httpClient *http.Client
	logger     *slog.Logger

	// health probe targets per service name; built from config, replaced
	// in tests
	probes map[string]string
}

// New wires the server. The HTTP client is shared with the health probes.
func New(cfg *config.Config, st *store.SQLiteStore, searcher Searcher, cvSvc *cv.Service, appSvc *application.Service, httpClient *http.Client, logger *slog.Logger) *Server {
	return &Server{
		cfg:        cfg,
		store:      st,
		searcher:   searcher,
		cvs:        cvSvc,
		apps:       appSvc,
		httpClient: httpClient,
		logger:     logger,
		probes:     defaultProbes(cfg),
	}
}

// Router builds the gin engine: CORS, a public liveness route, and the
// authenticated /api groups.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(s.cfg.Server.CORSOrigins) > 0 {
		corsCfg.AllowOrigins = s.cfg.Server.CORSOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", s.register)
	auth.POST("/login", s.login)
	auth.GET("/me", s.requireAuth, s.me)

	jobs := api.Group("/jobs", s.requireAuth)
	jobs.POST("/search", s.searchJobs)
	jobs.GET("", s.listJobs)
	jobs.POST("", s.createJob)
	jobs.GET("/:id", s.getJob)
	jobs.PUT("/:id", s.updateJob)
	jobs.DELETE("/:id", s.deleteJob)

	cvs := api.Group("/cvs", s.requireAuth)
	cvs.POST("/upload", s.uploadCV)
	cvs.GET("", s.listCVs)
	cvs.GET("/:id", s.getCV)
	cvs.PUT("/:id", s.updateCV)
	cvs.DELETE("/:id", s.deleteCV)
	cvs.POST("/adapt", s.adaptCV)

	apps := api.Group("/applications", s.requireAuth)
	apps.POST("", s.createApplication)
	apps.GET("", s.listApplications)
	apps.GET("/analytics", s.applicationAnalytics)
	apps.GET("/recommendations", s.applicationRecommendations)
	apps.GET("/:id", s.getApplication)
	apps.PUT("/:id", s.updateApplication)
	apps.DELETE("/:id", s.deleteApplication)
	apps.POST("/:id/cover-letter", s.applicationCoverLetter)
	apps.GET("/:id/analysis", s.applicationAnalysis)

	settings := api.Group("/settings", s.requireAuth)
	settings.GET("/job-search-services", s.jobSearchServices)

	status := api.Group("/status", s.requireAuth)
	status.GET("/health", s.systemHealth)

	return r
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Server.Addr,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", "addr", s.cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down api")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
