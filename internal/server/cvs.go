package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/okempf/jobscout/internal/model"
)

const maxCVUploadBytes = 10 << 20 // 10 MiB

func (s *Server) uploadCV(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fileHeader.Size > maxCVUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	title := c.DefaultPostForm("title", fileHeader.Filename)
	language := c.DefaultPostForm("language", "English")

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reading upload"})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reading upload"})
		return
	}

	record, err := s.cvs.UploadPDF(c.Request.Context(), currentUserID(c), fileHeader.Filename, title, language, data)
	if err != nil {
		s.logger.Error("cv upload failed", "error", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (s *Server) listCVs(c *gin.Context) {
	cvs, err := s.store.ListCVs(currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing cvs"})
		return
	}
	c.JSON(http.StatusOK, cvs)
}

func (s *Server) getCV(c *gin.Context) {
	cv, err := s.store.GetCV(pathID(c), currentUserID(c))
	if err != nil {
		cvError(c, err)
		return
	}
	c.JSON(http.StatusOK, cv)
}

func (s *Server) updateCV(c *gin.Context) {
	userID := currentUserID(c)
	existing, err := s.store.GetCV(pathID(c), userID)
	if err != nil {
		cvError(c, err)
		return
	}

	var cv model.CV
	if err := c.ShouldBindJSON(&cv); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cv.ID = existing.ID
	cv.OwnerID = userID
	cv.IsBaseCV = existing.IsBaseCV
	cv.OriginalPDFPath = existing.OriginalPDFPath

	if err := s.store.UpdateCV(&cv); err != nil {
		cvError(c, err)
		return
	}
	c.JSON(http.StatusOK, cv)
}

func (s *Server) deleteCV(c *gin.Context) {
	if err := s.store.DeleteCV(pathID(c), currentUserID(c)); err != nil {
		cvError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type adaptPayload struct {
	CVID       int64    `json:"cv_id" binding:"required"`
	JobID      int64    `json:"job_id" binding:"required"`
	FocusAreas []string `json:"focus_areas,omitempty"`
}

func (s *Server) adaptCV(c *gin.Context) {
	var payload adaptPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	adapted, err := s.cvs.AdaptForJob(c.Request.Context(), payload.CVID, payload.JobID, currentUserID(c), payload.FocusAreas)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "cv or job not found"})
			return
		}
		s.logger.Error("cv adaptation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "adaptation failed"})
		return
	}
	c.JSON(http.StatusCreated, adapted)
}

func cvError(c *gin.Context, err error) {
	if errors.Is(err, model.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "cv not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
