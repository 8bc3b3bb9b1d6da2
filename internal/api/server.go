// Package api exposes the planning service over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"isoplan/app"
	"isoplan/internal"
	"isoplan/internal/metrics"
)

// Server is the HTTP front end of the planner.
type Server struct {
	router  *gin.Engine
	handler *PlanningHandler
	hub     *SSEHub
	logger  *internal.Logger
	http    *http.Server
}

// NewServer wires routes onto a fresh gin engine.
func NewServer(service *app.PlanningService, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	hub := NewSSEHub(logger)
	s := &Server{
		router:  gin.New(),
		handler: NewPlanningHandler(service, hub, logger),
		hub:     hub,
		logger:  logger,
	}
	s.router.Use(gin.Recovery(), s.requestLogger())
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	h := s.handler
	s.router.GET("/healthz", h.Health)
	s.router.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := s.router.Group("/v1")
	{
		v1.GET("/routes", h.ListRoutes)
		v1.GET("/routes/:id", h.GetRoute)
		v1.POST("/evaluate", h.Evaluate)
		v1.POST("/batch", h.EvaluateBatch)
		v1.POST("/batch/async", h.StartBatch)
		v1.GET("/batch/events", s.hub.HandleSSE)
		v1.POST("/chain", h.SolveChain)
		v1.POST("/curve", h.ActivityCurve)
		v1.POST("/source", h.EstimateSource)
		v1.GET("/evaluations", h.ListEvaluations)
		v1.GET("/evaluations/:id", h.GetEvaluation)
		v1.GET("/report/:id", h.Report)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("%s %s %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// Handler returns the router for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Start listens on addr until Shutdown.
func (s *Server) Start(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("listening on %s", addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the event hub.
func (s *Server) Shutdown(ctx context.Context) error {
	defer s.hub.Close()
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
