package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/inkworks/printshop/internal/catalog"
	catalogdomain "github.com/inkworks/printshop/internal/catalog/domain"
	"github.com/inkworks/printshop/internal/clock"
	"github.com/inkworks/printshop/internal/config"
	"github.com/inkworks/printshop/internal/invoice"
	invoicedomain "github.com/inkworks/printshop/internal/invoice/domain"
	"github.com/inkworks/printshop/internal/job"
	jobdomain "github.com/inkworks/printshop/internal/job/domain"
	"github.com/inkworks/printshop/internal/jobmetrics"
	jobmetricsdomain "github.com/inkworks/printshop/internal/jobmetrics/domain"
	obsmetrics "github.com/inkworks/printshop/internal/observability/metrics"
	"github.com/inkworks/printshop/internal/reporting"
	reportingdomain "github.com/inkworks/printshop/internal/reporting/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	obsmetrics.Module,
	catalog.Module,
	job.Module,
	invoice.Module,
	jobmetrics.Module,
	reporting.Module,
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogging(log))
	r.Use(httpMetrics.Middleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/internal/prometheus", httpMetrics.Handler())

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
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
	engine       *gin.Engine
	cfg          config.Config
	db           *gorm.DB
	clock        clock.Clock
	genID        *snowflake.Node
	metrics      *obsmetrics.HTTPMetrics
	productRepo  catalogdomain.Repository
	jobRepo      jobdomain.Repository
	invoiceSvc   invoicedomain.Service
	metricsSvc   jobmetricsdomain.Service
	reportingSvc reportingdomain.Service
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	DB           *gorm.DB
	Clock        clock.Clock
	GenID        *snowflake.Node
	Metrics      *obsmetrics.HTTPMetrics
	ProductRepo  catalogdomain.Repository
	JobRepo      jobdomain.Repository
	InvoiceSvc   invoicedomain.Service
	MetricsSvc   jobmetricsdomain.Service
	ReportingSvc reportingdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		db:           p.DB,
		clock:        p.Clock,
		genID:        p.GenID,
		metrics:      p.Metrics,
		productRepo:  p.ProductRepo,
		jobRepo:      p.JobRepo,
		invoiceSvc:   p.InvoiceSvc,
		metricsSvc:   p.MetricsSvc,
		reportingSvc: p.ReportingSvc,
	}

	svc.registerMetricsRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerMetricsRoutes() {
	metrics := s.engine.Group("/metrics")

	metrics.GET("/jobs", s.ListJobMetrics)
	metrics.POST("/recalculate", s.RecalculateJobMetrics)
	metrics.GET("/revenue-trends", s.GetRevenueTrends)
	metrics.GET("/avg-invoice-value", s.GetAverageInvoiceValue)
	metrics.GET("/dso", s.GetDSO)
	metrics.GET("/outstanding-invoices", s.GetOutstandingInvoices)
	metrics.GET("/revenue-by-product", s.GetRevenueByProduct)
	metrics.GET("/profit-margins", s.GetProfitMargins)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Products --------
	api.GET("/products", s.ListProducts)
	api.POST("/products", s.CreateProduct)
	api.GET("/products/:id", s.GetProductByID)

	// -------- Jobs --------
	api.GET("/jobs", s.ListJobs)
	api.POST("/jobs", s.CreateJob)
	api.GET("/jobs/:id", s.GetJobByID)

	// -------- Invoices --------
	api.GET("/invoices", s.ListInvoices)
	api.POST("/invoices", s.CreateInvoice)
	api.GET("/invoices/:id", s.GetInvoiceByID)
	api.POST("/invoices/:id/status", s.SetInvoiceStatus)
}
