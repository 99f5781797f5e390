package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/merchlab/ordersync/internal/config"
	"github.com/merchlab/ordersync/internal/delivery"
	"github.com/merchlab/ordersync/internal/erp"
	"github.com/merchlab/ordersync/internal/notification"
	"github.com/merchlab/ordersync/internal/providers/email"
	"github.com/merchlab/ordersync/internal/providers/pdf"
	"github.com/merchlab/ordersync/internal/quote"
	"github.com/merchlab/ordersync/internal/scheduler"
	"github.com/merchlab/ordersync/internal/statusboard"
	statusdomain "github.com/merchlab/ordersync/internal/statusboard/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	erp.Module,
	quote.Module,
	delivery.Module,
	email.Module,
	pdf.Module,
	notification.Module,
	statusboard.Module,
	scheduler.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(registerRoutes),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLoggingMiddleware(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type Server struct {
	engine    *gin.Engine
	statusSvc statusdomain.Service
	scheduler *scheduler.Scheduler
}

func NewServer(engine *gin.Engine, statusSvc statusdomain.Service, sched *scheduler.Scheduler) *Server {
	return &Server{
		engine:    engine,
		statusSvc: statusSvc,
		scheduler: sched,
	}
}

func registerRoutes(s *Server) {
	api := s.engine.Group("/api")
	api.GET("/orders/status", s.getOrderStatus)
	api.GET("/orders/status/export", s.exportOrderStatus)
	api.POST("/orders/sync", s.triggerSync)
}

func run(lc fx.Lifecycle, s *Server, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: s.engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			_ = ctx
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("http server exited", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
