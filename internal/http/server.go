package http

import (
	"context"
	"net/http"
	"time"

	"github.com/jmehdipour/wasend/internal/config"
	"github.com/jmehdipour/wasend/internal/http/middleware"
	"github.com/jmehdipour/wasend/internal/metrics"
	"github.com/jmehdipour/wasend/internal/service/sendrun"
	"github.com/jmehdipour/wasend/internal/sheet"
	"github.com/labstack/echo/v4"
	echoMid "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

type Server struct{ e *echo.Echo }

func NewServer(cfg config.Config, rds *redis.Client, svc *sendrun.Service, loader *sheet.Loader) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(echoMid.Recover(), echoMid.Logger())

	metrics.MustRegister(prometheus.DefaultRegisterer)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// health
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	// middlewares (both optional; dev setups run open)
	var mws []echo.MiddlewareFunc
	if len(cfg.HTTP.APIKeys) > 0 {
		mws = append(mws, middleware.APIKeyMiddleware(cfg.HTTP.APIKeys))
	}
	if cfg.Redis.Enabled && rds != nil {
		mws = append(mws, middleware.RateLimitMiddleware(middleware.RateLimitConfig{
			Redis:          rds,
			DefaultRPS:     cfg.RateLimit.RPS,
			KeyPrefix:      "rl:client:",
			Window:         time.Second,
			RetryAfterHint: true,
		}))
	}

	// routes
	v1 := e.Group("/v1", mws...)
	v1.POST("/runs", startRunHandler(svc, loader))
	v1.GET("/runs/current", currentRunHandler(svc))
	v1.POST("/runs/current/stop", stopRunHandler(svc))
	v1.GET("/session", loginStateHandler(svc))
	v1.POST("/session/confirm", confirmLoginHandler(svc))

	return &Server{e: e}
}

func (s *Server) Start(addr string) error            { return s.e.Start(addr) }
func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }
