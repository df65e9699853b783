package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/okempf/jobscout/internal/model"
	"github.com/okempf/jobscout/internal/store"
)

type searchPayload struct {
	model.SearchRequest
	// CVID selects the CV to score results against; zero skips scoring.
	CVID int64 `json:"cv_id,omitempty"`
}

func (s *Server) searchJobs(c *gin.Context) {
	var payload searchPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := currentUserID(c)
	var profile *model.CandidateProfile
	if payload.CVID > 0 {
		cv, err := s.store.GetCV(payload.CVID, userID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "cv not found"})
			return
		}
		p := cv.Profile()
		profile = &p
	}

	result, err := s.searcher.Search(c.Request.Context(), payload.SearchRequest, profile, userID)
	if err != nil {
		s.logger.Error("search failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) listJobs(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	jobs, err := s.store.ListJobs(store.ListJobsOptions{
		Offset:   skip,
		Limit:    limit,
		Location: c.Query("location"),
		Company:  c.Query("company"),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing jobs"})
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (s *Server) getJob(c *gin.Context) {
	job, err := s.store.GetJob(pathID(c))
	if err != nil {
		jobError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (s *Server) createJob(c *gin.Context) {
	var job model.JobPosting
	if err := c.ShouldBindJSON(&job); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if job.Title == "" || job.Company == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and company are required"})
		return
	}
	// Manual entries still get a namespaced external id so the uniqueness
	// invariant holds across the whole corpus.
	if job.ExternalID == "" {
		job.ExternalID = fmt.Sprintf("manual_%d", time.Now().UnixNano())
	}
	job.Source = "manual"
	if job.JobType == "" {
		job.JobType = model.DefaultJobType
	}
	if job.ExperienceLevel == "" {
		job.ExperienceLevel = model.DefaultExperienceLevel
	}

	if err := s.store.CreateJob(&job); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "creating job"})
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (s *Server) updateJob(c *gin.Context) {
	id := pathID(c)
	existing, err := s.store.GetJob(id)
	if err != nil {
		jobError(c, err)
		return
	}

	var job model.JobPosting
	if err := c.ShouldBindJSON(&job); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	job.ID = id
	job.ExternalID = existing.ExternalID

	if err := s.store.UpdateJob(&job); err != nil {
		jobError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (s *Server) deleteJob(c *gin.Context) {
	if err := s.store.DeleteJob(pathID(c)); err != nil {
		jobError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func pathID(c *gin.Context) int64 {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	return id
}

func jobError(c *gin.Context, err error) {
	if errors.Is(err, model.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
