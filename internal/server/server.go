package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lordsbespoke/atelier/internal/audit"
	auditdomain "github.com/lordsbespoke/atelier/internal/audit/domain"
	"github.com/lordsbespoke/atelier/internal/config"
	"github.com/lordsbespoke/atelier/internal/ledger"
	ledgerdomain "github.com/lordsbespoke/atelier/internal/ledger/domain"
	"github.com/lordsbespoke/atelier/internal/observability"
	obsmiddleware "github.com/lordsbespoke/atelier/internal/observability/logger"
	obsmetrics "github.com/lordsbespoke/atelier/internal/observability/metrics"
	"github.com/lordsbespoke/atelier/internal/order"
	orderdomain "github.com/lordsbespoke/atelier/internal/order/domain"
	"github.com/lordsbespoke/atelier/internal/payout"
	"github.com/lordsbespoke/atelier/internal/rate"
	ratedomain "github.com/lordsbespoke/atelier/internal/rate/domain"
	"github.com/lordsbespoke/atelier/internal/ratelimit"
	"github.com/lordsbespoke/atelier/internal/request"
	requestdomain "github.com/lordsbespoke/atelier/internal/request/domain"
	"github.com/lordsbespoke/atelier/internal/user"
	userdomain "github.com/lordsbespoke/atelier/internal/user/domain"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	ratelimit.Module,
	audit.Module,
	user.Module,
	rate.Module,
	ledger.Module,
	payout.Module,
	order.Module,
	request.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, metrics *obsmetrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug: obsCfg.Debug(),
	}))
	r.Use(obsmetrics.GinMiddleware(metrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, metrics *obsmetrics.Metrics) *gin.Engine {
	return NewEngine(obsCfg, metrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	db         *gorm.DB
	log        *zap.Logger
	holder     *config.DistributionHolder
	userSvc    userdomain.Service
	rateSvc    ratedomain.Service
	ledgerSvc  ledgerdomain.Service
	orderSvc   orderdomain.Service
	requestSvc requestdomain.Service
	auditSvc   auditdomain.Service
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	DB         *gorm.DB
	Log        *zap.Logger
	Holder     *config.DistributionHolder
	UserSvc    userdomain.Service
	RateSvc    ratedomain.Service
	LedgerSvc  ledgerdomain.Service
	OrderSvc   orderdomain.Service
	RequestSvc requestdomain.Service
	AuditSvc   auditdomain.Service
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		db:         p.DB,
		log:        p.Log.Named("http.server"),
		holder:     p.Holder,
		userSvc:    p.UserSvc,
		rateSvc:    p.RateSvc,
		ledgerSvc:  p.LedgerSvc,
		orderSvc:   p.OrderSvc,
		requestSvc: p.RequestSvc,
		auditSvc:   p.AuditSvc,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")

	api.POST("/orders", s.CreateOrder)
	api.GET("/orders", s.ListOrders)
	api.GET("/orders/:id", s.GetOrder)
	api.DELETE("/orders/:id", s.DeleteOrder)
	api.POST("/orders/:id/send", s.SendOrder)
	api.POST("/orders/:id/accept", s.AcceptOrder)
	api.PUT("/orders/:id/measurements", s.SaveMeasurements)

	api.POST("/wallets/adjustments", s.ManualRelease)
	api.POST("/wallets/transfer", s.TransferFunds)
	api.GET("/users/:id/balance", s.GetBalance)
	api.GET("/users/:id/transactions", s.ListTransactions)

	api.POST("/requests", s.SubmitRequest)
	api.POST("/requests/:id/resolve", s.ResolveRequest)
	api.GET("/requests", s.ListRequests)

	api.POST("/users", s.RegisterUser)
	api.GET("/users", s.ListUsers)
	api.GET("/users/:id", s.GetUser)

	api.GET("/rates", s.ListRates)
	api.PUT("/rates", s.ReplaceRates)

	api.GET("/settings", s.GetSettings)
	api.GET("/audit-logs", s.ListAuditLogs)
}

// actorID attributes administrative actions for the audit trail.
func actorID(c *gin.Context) string {
	return c.GetHeader("X-Actor-Id")
}
