package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/okempf/jobscout/internal/source"
)

func (s *Server) jobSearchServices(c *gin.Context) {
	services := make(map[string]source.Info)
	for _, info := range source.Describe(s.cfg.Sources) {
		services[info.Name] = info
	}
	c.JSON(http.StatusOK, gin.H{"services": services})
}
