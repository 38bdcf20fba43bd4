package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	orderdomain "github.com/lordsbespoke/atelier/internal/order/domain"
	ratedomain "github.com/lordsbespoke/atelier/internal/rate/domain"
)

func orderIDParam(c *gin.Context) (snowflake.ID, bool) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_order_id", "invalid order id"))
		return 0, false
	}
	return id, true
}

type createOrderRequest struct {
	CustomerName   string  `json:"customerName"`
	CustomerMobile string  `json:"customerMobile"`
	Type           string  `json:"type"`
	Quality        string  `json:"quality"`
	Price          float64 `json:"price"`
	Measurements   string  `json:"measurements"`
}

func (s *Server) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.orderSvc.Create(c.Request.Context(), orderdomain.CreateRequest{
		CreatorID:      actorID(c),
		CustomerName:   req.CustomerName,
		CustomerMobile: req.CustomerMobile,
		Type:           req.Type,
		Quality:        ratedomain.Quality(req.Quality),
		Price:          req.Price,
		Measurements:   req.Measurements,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListOrders(c *gin.Context) {
	var query struct {
		WorkerID string `form:"worker_id"`
		Folder   string `form:"folder"`
		Limit    int    `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.orderSvc.List(c.Request.Context(), orderdomain.ListFilter{
		WorkerID: strings.TrimSpace(query.WorkerID),
		Folder:   orderdomain.Folder(query.Folder),
		Limit:    query.Limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetOrder(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}

	resp, err := s.orderSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteOrder(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}

	if err := s.orderSvc.Delete(c.Request.Context(), id, actorID(c)); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

type sendOrderRequest struct {
	ToWorkerID string `json:"toWorkerId"`
	Folder     string `json:"folder"`
	NextStage  string `json:"nextStage"`
	CODAmount  string `json:"codAmount"`
}

func (s *Server) SendOrder(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req sendOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.orderSvc.Send(c.Request.Context(), orderdomain.SendRequest{
		OrderID:    id,
		SenderID:   actorID(c),
		ToWorkerID: strings.TrimSpace(req.ToWorkerID),
		Folder:     orderdomain.Folder(req.Folder),
		NextStage:  orderdomain.Stage(req.NextStage),
		CODAmount:  req.CODAmount,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) AcceptOrder(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}

	resp, err := s.orderSvc.AcceptHandover(c.Request.Context(), orderdomain.AcceptRequest{
		OrderID:    id,
		AcceptorID: actorID(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type saveMeasurementsRequest struct {
	Data         string   `json:"data"`
	UpdatedPrice *float64 `json:"updatedPrice"`
}

func (s *Server) SaveMeasurements(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req saveMeasurementsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.orderSvc.SaveMeasurements(c.Request.Context(), orderdomain.SaveMeasurementsRequest{
		OrderID:      id,
		Data:         req.Data,
		UpdatedPrice: req.UpdatedPrice,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
