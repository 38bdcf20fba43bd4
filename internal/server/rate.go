package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	auditdomain "github.com/lordsbespoke/atelier/internal/audit/domain"
	ratedomain "github.com/lordsbespoke/atelier/internal/rate/domain"
)

func (s *Server) ListRates(c *gin.Context) {
	resp, err := s.rateSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type replaceRatesRequest struct {
	Rates []ratedomain.StitchingRate `json:"rates"`
}

func (s *Server) ReplaceRates(c *gin.Context) {
	var req replaceRatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.rateSvc.Replace(c.Request.Context(), req.Rates); err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.auditSvc.Record(c.Request.Context(), auditdomain.RecordRequest{
		Action:  auditdomain.ActionRatesReplaced,
		ActorID: actorID(c),
		Detail:  fmt.Sprintf("rate table replaced with %d entries", len(req.Rates)),
	}); err != nil {
		s.log.Warn("audit write failed after rate replace", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"count": len(req.Rates)}})
}
