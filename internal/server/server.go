// Package server provides the HTTP API for Produktbot.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/skarvik/produktbot/internal/config"
	"github.com/skarvik/produktbot/internal/corpus"
	"github.com/skarvik/produktbot/internal/engine"
	"github.com/skarvik/produktbot/internal/metrics"
	"github.com/skarvik/produktbot/internal/models"
)

// Server is the HTTP server for the Produktbot API.
type Server struct {
	engine *engine.Engine
	store  *corpus.Store
	config *config.ServerConfig
	logger *zap.Logger
	server *http.Server

	mu       sync.Mutex
	sessions map[string]*models.SessionContext
}

// NewServer creates a server with the given dependencies.
func NewServer(eng *engine.Engine, store *corpus.Store, cfg *config.ServerConfig, logger *zap.Logger) *Server {
	return &Server{
		engine:   eng,
		store:    store,
		config:   cfg,
		logger:   logger,
		sessions: make(map[string]*models.SessionContext),
	}
}

// Router builds the chi router with all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/query", s.handleQuery)
	r.Post("/api/v1/command", s.handleCommand)
	r.Post("/api/v1/feedback", s.handleFeedback)
	r.Get("/api/v1/products/{id}/summary", s.handleProductSummary)
	r.Get("/api/v1/products/{id}/related", s.handleRelatedProducts)
	r.Get("/api/v1/stats", s.handleStats)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// session returns the context for the given ID, creating a new session when
// the ID is empty or unknown. The returned ID is always valid.
func (s *Server) session(id string) (string, *models.SessionContext) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" {
		if ctx, ok := s.sessions[id]; ok {
			return id, ctx
		}
	}
	id = newSessionID()
	ctx := models.NewSessionContext()
	s.sessions[id] = ctx
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	return id, ctx
}
