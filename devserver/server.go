// Package devserver serves the preview page, the bundles and a live-reload
// socket while icons are being edited.
package devserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/c360studio/iconforge/export"
	"github.com/c360studio/iconforge/metrics"
	"github.com/c360studio/iconforge/preview"
	"github.com/c360studio/iconforge/storage"
)

const (
	// LiveReloadPath is the websocket endpoint.
	LiveReloadPath = "/ws"
	distPrefix     = "/dist"
	shutdownGrace  = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ManifestSource provides the current manifest. *generator.Generator
// satisfies it.
type ManifestSource interface {
	Manifest() (*export.Manifest, error)
}

// Config configures the server.
type Config struct {
	Addr    string
	DistDir string
	// BundleFile is the browser bundle's file name inside DistDir.
	BundleFile string
	Title      string
	Metrics    *metrics.Recorder
	Logger     *slog.Logger
}

// Server is the development HTTP server.
type Server struct {
	cfg    Config
	source ManifestSource
	hub    *Hub
	router *gin.Engine
	logger *slog.Logger
}

// New creates a server reading manifests from source.
func New(cfg Config, source ManifestSource) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	s := &Server{
		cfg:    cfg,
		source: source,
		hub:    NewHub(),
		router: router,
		logger: logger,
	}

	router.GET("/", s.handleIndex)
	router.GET("/api/icons", s.handleIcons)
	router.GET(LiveReloadPath, s.handleWS)
	router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "ws_clients": s.hub.Len()})
	})
	if cfg.DistDir != "" {
		router.Static(distPrefix, cfg.DistDir)
	}
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the live-reload hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Reload tells connected pages to reload.
func (s *Server) Reload(icons int) {
	s.hub.Broadcast(Event{Type: EventReload, Icons: icons})
}

// ReportError pushes a build failure to connected pages.
func (s *Server) ReportError(err error) {
	s.hub.Broadcast(Event{Type: EventError, Error: err.Error()})
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Dev server listening", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) manifest() (*export.Manifest, error) {
	m, err := s.source.Manifest()
	if errors.Is(err, storage.ErrNotFound) {
		return export.NewManifest(), nil
	}
	return m, err
}

func (s *Server) handleIndex(c *gin.Context) {
	m, err := s.manifest()
	if err != nil {
		c.String(http.StatusInternalServerError, "load manifest: %v", err)
		return
	}

	opts := preview.Options{Title: s.cfg.Title, LiveReloadURL: LiveReloadPath}
	if s.cfg.BundleFile != "" {
		opts.BundleURL = distPrefix + "/" + s.cfg.BundleFile
	}
	page, err := preview.Render(m, opts)
	if err != nil {
		c.String(http.StatusInternalServerError, "render preview: %v", err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

func (s *Server) handleIcons(c *gin.Context) {
	m, err := s.manifest()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count": m.Len(),
		"icons": m.Entries(),
	})
}

func (s *Server) handleWS(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	s.hub.Join(ws)
	for {
		// Clients never send; reading detects the close.
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
	s.hub.Leave(ws)
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
