package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetSettings exposes the active distribution settings snapshot. Edits go
// through the watched config file, not this API.
func (s *Server) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.holder.Get()})
}
