package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	ledgerdomain "github.com/lordsbespoke/atelier/internal/ledger/domain"
	"github.com/lordsbespoke/atelier/pkg/db/pagination"
)

type manualReleaseRequest struct {
	UserID      string `json:"userId"`
	WalletType  string `json:"walletType"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

func (s *Server) ManualRelease(c *gin.Context) {
	var req manualReleaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.ledgerSvc.ManualRelease(c.Request.Context(), ledgerdomain.ManualReleaseRequest{
		UserID:      strings.TrimSpace(req.UserID),
		WalletType:  ledgerdomain.WalletType(req.WalletType),
		Amount:      req.Amount,
		Description: req.Description,
		ActorID:     actorID(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type transferFundsRequest struct {
	FromUserID string `json:"fromUserId"`
	ToUserID   string `json:"toUserId"`
	Amount     string `json:"amount"`
	Note       string `json:"note"`
}

func (s *Server) TransferFunds(c *gin.Context) {
	var req transferFundsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	err := s.ledgerSvc.Transfer(c.Request.Context(), ledgerdomain.TransferRequest{
		FromUserID: strings.TrimSpace(req.FromUserID),
		ToUserID:   strings.TrimSpace(req.ToUserID),
		Amount:     req.Amount,
		Note:       req.Note,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"transferred": true}})
}

func (s *Server) GetBalance(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("id"))
	wallet := ledgerdomain.WalletType(c.DefaultQuery("wallet", string(ledgerdomain.WalletTotal)))

	balance, err := s.ledgerSvc.BalanceOf(c.Request.Context(), userID, wallet)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"userId":  userID,
		"wallet":  wallet,
		"balance": balance,
	}})
}

func (s *Server) ListTransactions(c *gin.Context) {
	var query struct {
		Wallet string `form:"wallet"`
		pagination.Pagination
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	wallet := ledgerdomain.WalletTotal
	if query.Wallet != "" {
		wallet = ledgerdomain.WalletType(query.Wallet)
	}

	resp, err := s.ledgerSvc.HistoryOf(c.Request.Context(), ledgerdomain.HistoryRequest{
		UserID:     strings.TrimSpace(c.Param("id")),
		WalletType: wallet,
		Pagination: query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
