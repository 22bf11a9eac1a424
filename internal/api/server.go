package api

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"excursion-catalog/internal/catalog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Options struct {
	// StaticDir holds a built single-page app. Unknown non-API paths
	// get its index.html so client-side routes resolve.
	StaticDir string
}

// Server exposes the catalog over HTTP. It is read-only.
type Server struct {
	store     *catalog.Store
	logger    *zap.Logger
	staticDir string
	engine    *gin.Engine
}

func New(store *catalog.Store, logger *zap.Logger, opts Options) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		store:     store,
		logger:    logger,
		staticDir: opts.StaticDir,
		engine:    gin.New(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.engine
	r.UseRawPath = true
	r.Use(requestID(), accessLog(s.logger), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	api := r.Group("/api")
	api.GET("/status", s.handleStatus)

	loaded := api.Group("", s.ensureLoaded)
	loaded.GET("/excursions", s.handleList)
	loaded.GET("/excursions/:id", s.handleGet)
	loaded.GET("/excursions/:id/html", s.handleGetHTML)
	loaded.GET("/categories", s.handleCategories)
	loaded.GET("/popular", s.handlePopular)

	r.NoRoute(s.handleNoRoute)
}

func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("api shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleNoRoute(c *gin.Context) {
	path := c.Request.URL.Path
	if s.staticDir == "" || strings.HasPrefix(path, "/api/") || c.Request.Method != http.MethodGet {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	clean := filepath.Clean("/" + path)
	file := filepath.Join(s.staticDir, filepath.FromSlash(clean))
	if info, err := os.Stat(file); err == nil && !info.IsDir() {
		c.File(file)
		return
	}
	c.File(filepath.Join(s.staticDir, "index.html"))
}
