// Package server exposes the results database over HTTP: run listings,
// traces, metrics, and rendered waveform plots for a browser or
// scripted client.
package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"github.com/yrrapt/analogen/internal/store"
)

// Server serves read-only views of a results database.
type Server struct {
	store  *store.Store
	log    *slog.Logger
	router *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

// New builds a server over an open results database.
func New(st *store.Store, opts ...Option) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		store: st,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	router := gin.New()
	router.Use(s.recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		api.GET("/stats", s.getStats)
		api.GET("/runs", s.listRuns)
		api.GET("/runs/:token", s.getRun)
		api.GET("/runs/:token/results", s.getResults)
		api.GET("/runs/:token/results/table", s.getResultsTable)
		api.GET("/runs/:token/plots/:wave", s.getPlot)
		api.GET("/masters/:id", s.getMaster)
	}

	s.router = router
	return s
}

// Handler returns the HTTP handler with CORS applied, for tests and
// embedding.
func (s *Server) Handler() http.Handler {
	return cors.Default().Handler(s.router)
}

// ListenAndServe serves until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	s.log.Info("serving results", "addr", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// recovery turns panics into structured 500 responses.
func (s *Server) recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		s.log.Error("handler panic", "path", c.Request.URL.Path, "panic", recovered)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "An unexpected error occurred",
			},
		})
		c.Abort()
	})
}
