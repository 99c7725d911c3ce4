package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/altura-labs/countryatlas/internal/config"
	"github.com/altura-labs/countryatlas/internal/country/domain"
	"github.com/altura-labs/countryatlas/internal/observability"
	obslogger "github.com/altura-labs/countryatlas/internal/observability/logger"
	obsmetrics "github.com/altura-labs/countryatlas/internal/observability/metrics"
	"github.com/altura-labs/countryatlas/internal/refresh"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) { s.RegisterRoutes() }),
	fx.Invoke(RunHTTP),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type Params struct {
	fx.In

	Engine  *gin.Engine
	Cfg     config.Config
	Log     *zap.Logger
	Country domain.Service
	Refresh *refresh.Orchestrator
}

type Server struct {
	engine  *gin.Engine
	cfg     config.Config
	log     *zap.Logger
	country domain.Service
	refresh *refresh.Orchestrator
}

func NewServer(p Params) *Server {
	return &Server{
		engine:  p.Engine,
		cfg:     p.Cfg,
		log:     p.Log.Named("http.server"),
		country: p.Country,
		refresh: p.Refresh,
	}
}

func (s *Server) RegisterRoutes() {
	s.engine.POST("/countries/refresh", s.refreshCountries)
	s.engine.GET("/countries", s.listCountries)
	s.engine.GET("/countries/image", s.summaryImage)
	s.engine.GET("/countries/:name", s.getCountry)
	s.engine.DELETE("/countries/:name", s.deleteCountry)
	s.engine.GET("/status", s.status)
}

func RunHTTP(lc fx.Lifecycle, sd fx.Shutdowner, s *Server) {
	srv := &http.Server{
		Addr:    s.cfg.HTTPAddr,
		Handler: s.engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			_ = ctx
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					// Shut down through fx so OnStop hooks still run.
					s.log.Error("http server failed", zap.Error(err))
					_ = sd.Shutdown(fx.ExitCode(1))
				}
			}()
			s.log.Info("http server listening", zap.String("addr", s.cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
