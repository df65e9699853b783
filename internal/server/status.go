package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/okempf/jobscout/internal/config"
	"github.com/okempf/jobscout/internal/source"
)

const probeTimeout = 5 * time.Second

// serviceStatus is one external dependency's health snapshot.
type serviceStatus struct {
	Status       string `json:"status"` // connected, error, disabled
	Message      string `json:"message,omitempty"`
	ResponseTime int64  `json:"response_time_ms"`
	Enabled      bool   `json:"enabled"`
}

func defaultProbes(cfg *config.Config) map[string]string {
	return map[string]string{
		"openrouter":     cfg.LLM.BaseURL + "/models",
		"arbeitsagentur": "https://rest.arbeitsagentur.de/jobboerse/jobsuche-service/pc/v4/jobs?size=1",
		"remoteok":       "https://remoteok.com/api",
		"thelocal":       "https://www.thelocal.de/feeds/jobs.rss",
		"adzuna":         "https://api.adzuna.com/v1/api",
	}
}

// systemHealth probes the LLM endpoint and every enabled source
// concurrently, each with its own timeout, and reduces the results to an
// overall healthy / partial / unhealthy verdict.
func (s *Server) systemHealth(c *gin.Context) {
	enabled := map[string]bool{"openrouter": true}
	for _, info := range source.Describe(s.cfg.Sources) {
		if _, probed := s.probes[info.Name]; probed {
			enabled[info.Name] = info.Usable
		}
	}

	// Disabled entries are written before any probe goroutine starts, so
	// only the probes themselves contend for the map.
	statuses := make(map[string]*serviceStatus, len(enabled))
	for name, on := range enabled {
		if !on {
			statuses[name] = &serviceStatus{Status: "disabled", Message: "service disabled in configuration"}
		}
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for name, on := range enabled {
		if !on {
			continue
		}
		wg.Add(1)
		go func(name, url string) {
			defer wg.Done()
			st := s.probe(c.Request.Context(), name, url)
			mu.Lock()
			statuses[name] = st
			mu.Unlock()
		}(name, s.probes[name])
	}
	wg.Wait()

	connected, checked := 0, 0
	for _, st := range statuses {
		if !st.Enabled {
			continue
		}
		checked++
		if st.Status == "connected" {
			connected++
		}
	}
	overall := "unhealthy"
	switch {
	case checked > 0 && connected == checked:
		overall = "healthy"
	case connected > 0:
		overall = "partial"
	}

	c.JSON(http.StatusOK, gin.H{"services": statuses, "overall": overall})
}

func (s *Server) probe(ctx context.Context, name, url string) *serviceStatus {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	start := time.Now()
	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, url, nil)
	if err != nil {
		return &serviceStatus{Status: "error", Message: err.Error(), Enabled: true}
	}
	if name == "openrouter" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.LLM.APIKey)
	}

	resp, err := s.httpClient.Do(req)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		return &serviceStatus{Status: "error", Message: err.Error(), ResponseTime: elapsed, Enabled: true}
	}
	defer resp.Body.Close()

	// Any response under 500 counts as reachable; auth-gated endpoints
	// answer 401/403 to an unauthenticated probe.
	if resp.StatusCode >= 500 {
		return &serviceStatus{
			Status:       "error",
			Message:      http.StatusText(resp.StatusCode),
			ResponseTime: elapsed,
			Enabled:      true,
		}
	}
	return &serviceStatus{Status: "connected", ResponseTime: elapsed, Enabled: true}
}
