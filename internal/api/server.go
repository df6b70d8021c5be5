package api

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"passport-admin-go/internal/api/middleware"
	"passport-admin-go/internal/pkg/logger"
	"passport-admin-go/internal/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Options struct {
	// RequestTimeout bounds every request, passport generation included.
	RequestTimeout time.Duration
	Auth           middleware.AuthConfig
}

type Server struct {
	Router   *gin.Engine
	Handlers *Handlers
	opts     Options
	server   *http.Server
}

func NewServer(handlers *Handlers, opts Options) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 2 * time.Minute
	}

	router := gin.New()
	router.MaxMultipartMemory = 8 << 20 // 8 MiB

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(tracing.GinTracingMiddleware())
	router.Use(middleware.PrometheusMiddleware())

	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), opts.RequestTimeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	return &Server{
		Router:   router,
		Handlers: handlers,
		opts:     opts,
	}
}

func (s *Server) SetupRoutes() {
	s.Router.GET("/health", s.Handlers.Health.Health)
	s.Router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := middleware.Auth(s.opts.Auth)

	s.Router.GET("/", auth, s.Handlers.Dashboard.Page)
	s.Router.GET("/records/:table/:id", auth, s.Handlers.Dashboard.Details)

	v1 := s.Router.Group("/api/v1", auth)
	{
		v1.GET("/records", s.Handlers.Records.List)
		v1.POST("/records/refresh", s.Handlers.Records.Refresh)

		v1.GET("/:table/:id", s.Handlers.Records.View)
		v1.POST("/:table/:id/approve", s.Handlers.Records.Approve)
		v1.POST("/:table/:id/decline", s.Handlers.Records.Decline)
		v1.GET("/:table/:id/passport", s.Handlers.Passport.Generate)
		v1.GET("/:table/:id/documents", s.Handlers.Passport.Documents)
	}
}

func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:           addr,
		Handler:        s.Router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   s.opts.RequestTimeout + 10*time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	errChan := make(chan error, 1)

	go func() {
		logger.Info("Starting server", zap.String("addr", addr))
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-quit:
		logger.Info("Received signal", zap.String("signal", sig.String()))
		return s.Stop()
	}
}

func (s *Server) Stop() error {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		logger.Info("Shutting down server...")

		if err := s.server.Shutdown(ctx); err != nil {
			logger.Error("Server forced to shutdown", zap.Error(err))
			return err
		}
	}
	return nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
