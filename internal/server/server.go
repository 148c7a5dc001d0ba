// Package server is the app backend the extension surfaces call: issue
// recommendations, printable documents, feedback intake and metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/idilsaglam/issuetracker/internal/feedback"
)

type Options struct {
	Feedback     *feedback.Repository
	Registry     *prometheus.Registry
	Logger       *slog.Logger
	AllowOrigins []string
}

type Server struct {
	feedback *feedback.Repository
	registry *prometheus.Registry
	logger   *slog.Logger
	requests *prometheus.CounterVec
	router   *gin.Engine
}

func New(opts Options) *Server {
	s := &Server{
		feedback: opts.Feedback,
		registry: opts.Registry,
		logger:   opts.Logger,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	s.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "issuetracker",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Backend HTTP requests by route and status",
	}, []string{"route", "status"})
	s.registry.MustRegister(s.requests)
	s.router = s.newRouter(opts.AllowOrigins)
	return s
}

func (s *Server) Router() *gin.Engine { return s.router }

func (s *Server) newRouter(origins []string) *gin.Engine {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), s.logRequests())
	r.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Content-Type", requestIDHeader},
		MaxAge:        12 * time.Hour,
	}))
	s.routes(r)
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("backend listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) metricsHandler() gin.HandlerFunc {
	h := promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}
