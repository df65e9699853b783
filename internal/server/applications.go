package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/okempf/jobscout/internal/llm"
	"github.com/okempf/jobscout/internal/model"
)

type createApplicationPayload struct {
	JobID               int64 `json:"job_id" binding:"required"`
	CVID                int64 `json:"cv_id" binding:"required"`
	GenerateCoverLetter bool  `json:"generate_cover_letter"`
}

func (s *Server) createApplication(c *gin.Context) {
	var payload createApplicationPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	app, err := s.apps.Create(c.Request.Context(), currentUserID(c), payload.JobID, payload.CVID, payload.GenerateCoverLetter)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job or cv not found"})
			return
		}
		s.logger.Error("creating application failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "creating application"})
		return
	}
	c.JSON(http.StatusCreated, app)
}

func (s *Server) listApplications(c *gin.Context) {
	apps, err := s.store.ListApplications(currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing applications"})
		return
	}
	c.JSON(http.StatusOK, apps)
}

func (s *Server) getApplication(c *gin.Context) {
	app, err := s.store.GetApplication(pathID(c), currentUserID(c))
	if err != nil {
		applicationError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

type updateApplicationPayload struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes,omitempty"`
}

func (s *Server) updateApplication(c *gin.Context) {
	var payload updateApplicationPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	app, err := s.apps.UpdateStatus(pathID(c), currentUserID(c), payload.Status, payload.Notes)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			applicationError(c, err)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app)
}

func (s *Server) deleteApplication(c *gin.Context) {
	if err := s.store.DeleteApplication(pathID(c), currentUserID(c)); err != nil {
		applicationError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) applicationCoverLetter(c *gin.Context) {
	// Body is optional; an empty one means default tone and length.
	var opts llm.CoverLetterOptions
	if err := c.ShouldBindJSON(&opts); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := currentUserID(c)
	app, err := s.store.GetApplication(pathID(c), userID)
	if err != nil {
		applicationError(c, err)
		return
	}

	letter, err := s.apps.GenerateCoverLetter(c.Request.Context(), userID, app.JobID, app.CVID, opts)
	if err != nil {
		s.logger.Error("cover letter generation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "generating cover letter"})
		return
	}

	app.CoverLetter = letter
	if err := s.store.UpdateApplication(app); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "saving cover letter"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cover_letter": letter})
}

func (s *Server) applicationAnalysis(c *gin.Context) {
	analysis, err := s.apps.AnalyzeStrength(c.Request.Context(), pathID(c), currentUserID(c))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			applicationError(c, err)
			return
		}
		s.logger.Error("application analysis failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analyzing application"})
		return
	}
	c.JSON(http.StatusOK, analysis)
}

func (s *Server) applicationAnalytics(c *gin.Context) {
	analytics, err := s.apps.Analytics(currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "computing analytics"})
		return
	}
	c.JSON(http.StatusOK, analytics)
}

func (s *Server) applicationRecommendations(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))
	recs, err := s.apps.Recommendations(currentUserID(c), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "computing recommendations"})
		return
	}
	c.JSON(http.StatusOK, recs)
}

func applicationError(c *gin.Context, err error) {
	if errors.Is(err, model.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "application not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
