package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	requestdomain "github.com/lordsbespoke/atelier/internal/request/domain"
)

type submitRequestRequest struct {
	Type           string `json:"type"`
	Amount         string `json:"amount"`
	UTR            string `json:"utr"`
	Method         string `json:"method"`
	PaymentDetails string `json:"paymentDetails"`
}

func (s *Server) SubmitRequest(c *gin.Context) {
	var req submitRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.requestSvc.Submit(c.Request.Context(), requestdomain.SubmitRequest{
		UserID:         actorID(c),
		Type:           requestdomain.Type(req.Type),
		Amount:         req.Amount,
		UTR:            req.UTR,
		Method:         req.Method,
		PaymentDetails: req.PaymentDetails,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type resolveRequestRequest struct {
	Approved bool `json:"approved"`
}

func (s *Server) ResolveRequest(c *gin.Context) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_request_id", "invalid request id"))
		return
	}

	var req resolveRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.requestSvc.Resolve(c.Request.Context(), requestdomain.ResolveRequest{
		RequestID:  id,
		Approved:   req.Approved,
		ResolverID: actorID(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListRequests(c *gin.Context) {
	var query struct {
		UserID string `form:"user_id"`
		Status string `form:"status"`
		Limit  int    `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.requestSvc.List(c.Request.Context(), requestdomain.ListFilter{
		UserID: strings.TrimSpace(query.UserID),
		Status: requestdomain.Status(query.Status),
		Limit:  query.Limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
