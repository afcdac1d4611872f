// Package server assembles the echo application from its route handlers.
package server

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/stem/pkg/middleware"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/Ramsey-B/bramble/config"
	"github.com/Ramsey-B/bramble/pkg/authz"
	creatorroutes "github.com/Ramsey-B/bramble/pkg/routes/creator"
	gameroutes "github.com/Ramsey-B/bramble/pkg/routes/game"
	"github.com/Ramsey-B/bramble/pkg/routes/health"
	labelroutes "github.com/Ramsey-B/bramble/pkg/routes/label"
	productroutes "github.com/Ramsey-B/bramble/pkg/routes/product"
	publisherroutes "github.com/Ramsey-B/bramble/pkg/routes/publisher"
)

// Handlers bundles every route handler the server mounts.
type Handlers struct {
	Health     *health.Checker
	Publishers *publisherroutes.Handler
	Creators   *creatorroutes.Handler
	Products   *productroutes.Handler
	Games      *gameroutes.Handler
	Labels     *labelroutes.Handler
}

// Server wraps the echo instance.
type Server struct {
	echo   *echo.Echo
	cfg    *config.Config
	logger ectologger.Logger
}

// New builds the echo application with the shared middleware chain and all
// routes mounted under /api/v1.
func New(cfg *config.Config, handlers Handlers, logger ectologger.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second

	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
	}))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))
	e.Use(adminMiddleware(cfg.AdminToken))
	e.HTTPErrorHandler = middleware.Error(logger)

	handlers.Health.RegisterRoutes(e)

	api := e.Group("/api/v1")
	handlers.Publishers.RegisterRoutes(api.Group("/publishers"))
	handlers.Creators.RegisterRoutes(api.Group("/creators"))
	handlers.Products.RegisterRoutes(api.Group("/products"))
	handlers.Games.RegisterRoutes(api.Group("/games"))
	handlers.Labels.RegisterRoutes(api.Group("/labels"))

	return &Server{echo: e, cfg: cfg, logger: logger}
}

// adminMiddleware grants the admin capability when the request presents the
// configured token. An empty configured token grants nothing.
func adminMiddleware(token string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token != "" && c.Request().Header.Get("X-Admin-Token") == token {
				ctx := authz.SetAdmin(c.Request().Context(), true)
				c.SetRequest(c.Request().WithContext(ctx))
			}
			return next(c)
		}
	}
}

// Start begins serving and blocks until the server stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.logger.WithField("addr", addr).Info("starting http server")
	return s.echo.Start(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
