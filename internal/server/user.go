package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	userdomain "github.com/lordsbespoke/atelier/internal/user/domain"
)

type registerUserRequest struct {
	Name     string `json:"name"`
	Mobile   string `json:"mobile"`
	Role     string `json:"role"`
	UplineID string `json:"uplineId"`
}

func (s *Server) RegisterUser(c *gin.Context) {
	var req registerUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.userSvc.Register(c.Request.Context(), userdomain.RegisterRequest{
		Name:     req.Name,
		Mobile:   req.Mobile,
		Role:     userdomain.Role(req.Role),
		UplineID: strings.TrimSpace(req.UplineID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListUsers(c *gin.Context) {
	resp, err := s.userSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetUser(c *gin.Context) {
	resp, err := s.userSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
