// Package server exposes the counsellor over HTTP with gin.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"counsellor/internal/catalog"
	"counsellor/internal/config"
	"counsellor/internal/counsellor"
	"counsellor/internal/logging"
	"counsellor/internal/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Deps are the collaborators the HTTP layer serves.
type Deps struct {
	Store   *store.Store
	Catalog *catalog.Catalog
	Engine  *counsellor.Engine
	Logger  *zap.Logger
	// Gatherer backs /metrics. Nil uses the default registry.
	Gatherer prometheus.Gatherer
}

// Server owns the gin router and the http.Server around it.
type Server struct {
	deps   Deps
	router *gin.Engine
	http   *http.Server
	logger *zap.Logger
}

// New builds the router for cfg.
func New(cfg *config.Config, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = logging.Zap(logging.CategoryHTTP)
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(requestID(), recovery(deps.Logger))
	if logging.IsCategoryEnabled(logging.CategoryHTTP) {
		router.Use(accessLog(deps.Logger))
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", headerUserID, headerRequestID}
	corsConfig.AllowCredentials = true
	if len(cfg.Server.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}
	router.Use(cors.New(corsConfig))

	s := &Server{
		deps:   deps,
		router: router,
		logger: deps.Logger,
	}
	s.http = &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadTimeout:       cfg.GetReadTimeout(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.GetWriteTimeout(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.GET("/healthz", s.health)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{})))

	api := s.router.Group("/api", requireOwner(), withSession(s.deps.Store))
	{
		api.GET("/onboarding", s.getProfile)
		api.POST("/onboarding", s.saveProfile)
		api.GET("/dashboard/stage", s.dashboardStage)

		api.GET("/universities", s.listUniversities)
		api.POST("/universities/shortlist", s.toggleShortlist)
		api.DELETE("/universities/shortlist/:id", s.removeShortlist)
		api.GET("/universities/shortlisted", s.listShortlisted)
		api.POST("/universities/lock", s.lockUniversity)
		api.DELETE("/universities/lock/:id", s.unlockUniversity)
		api.GET("/universities/locked", s.listLocked)

		api.GET("/todos", s.listTodos)
		api.POST("/todos", s.createTodo)
		api.PATCH("/todos/:id", s.updateTodo)

		api.GET("/applications/:university_id/documents", s.listDocuments)
		api.PATCH("/applications/documents/:id", s.updateDocument)

		api.POST("/ai-counsellor/chat", s.chat)
	}
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.http.Addr))
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("http server shutting down")
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
