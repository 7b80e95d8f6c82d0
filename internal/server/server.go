package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/quotient/internal/catalog"
	catalogdomain "github.com/smallbiznis/quotient/internal/catalog/domain"
	"github.com/smallbiznis/quotient/internal/config"
	"github.com/smallbiznis/quotient/internal/observability"
	obsmiddleware "github.com/smallbiznis/quotient/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/quotient/internal/observability/metrics"
	obstracing "github.com/smallbiznis/quotient/internal/observability/tracing"
	"github.com/smallbiznis/quotient/internal/ordersource"
	ordersourcedomain "github.com/smallbiznis/quotient/internal/ordersource/domain"
	"github.com/smallbiznis/quotient/internal/quotation"
	"github.com/smallbiznis/quotient/internal/reconcile"
	reconciledomain "github.com/smallbiznis/quotient/internal/reconcile/domain"
	"github.com/smallbiznis/quotient/internal/store"
	storedomain "github.com/smallbiznis/quotient/internal/store/domain"
	"github.com/smallbiznis/quotient/internal/transfer"
	transferdomain "github.com/smallbiznis/quotient/internal/transfer/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("http.server",
	store.Module,
	catalog.Module,
	ordersource.Module,
	reconcile.Module,
	quotation.Module,
	transfer.Module,
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
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
	engine      *gin.Engine
	cfg         config.Config
	storeSvc    storedomain.Service
	catalogSvc  catalogdomain.Service
	orderSvc    ordersourcedomain.Service
	transferSvc transferdomain.Service
	reconciler  reconciledomain.Engine
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	StoreSvc    storedomain.Service
	CatalogSvc  catalogdomain.Service
	OrderSvc    ordersourcedomain.Service
	TransferSvc transferdomain.Service
	Reconciler  reconciledomain.Engine
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		storeSvc:    p.StoreSvc,
		catalogSvc:  p.CatalogSvc,
		orderSvc:    p.OrderSvc,
		transferSvc: p.TransferSvc,
		reconciler:  p.Reconciler,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Stores --------
	api.GET("/stores", s.ListStores)
	api.POST("/stores", s.CreateStore)
	api.PUT("/stores/:id", s.UpdateStore)
	api.DELETE("/stores/:id", s.DeleteStore)
	api.POST("/stores/:id/test", s.TestStoreConnection)

	// -------- Catalog connections --------
	api.GET("/sql-connections", s.ListSQLConnections)
	api.POST("/sql-connections", s.SaveSQLConnection)
	api.POST("/sql-connections/:role/test", s.TestSQLConnection)

	// -------- Customer mappings --------
	api.GET("/customer-mappings/:store_id", s.GetCustomerMapping)
	api.POST("/customer-mappings", s.SaveCustomerMapping)

	// -------- Catalog customers --------
	api.GET("/customers", s.ListCatalogCustomers)
	api.GET("/customers/search", s.SearchCatalogCustomers)

	// -------- Quotation defaults --------
	api.GET("/quotation-defaults/:store_id", s.GetQuotationDefaults)
	api.POST("/quotation-defaults", s.SaveQuotationDefaults)

	// -------- Orders --------
	api.GET("/orders", s.ListOrders)
	api.POST("/orders/validate", s.ValidateOrder)
	api.POST("/orders/transfer", s.TransferOrders)

	// -------- Transfer history --------
	api.GET("/history", s.ListHistory)
	api.DELETE("/history/:id", s.DeleteHistoryRecord)
	api.POST("/history/delete-failed", s.DeleteFailedTransfers)
}
