// Package web provides the HTTP server and web interface for go-vitrine
package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"time"

	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"github.com/go-while/go-vitrine/internal/config"
	"github.com/go-while/go-vitrine/internal/site"
	"golang.org/x/sync/errgroup"
)

// WebServer represents the web server
type WebServer struct {
	Router    *gin.Engine
	Config    *config.WebConfig
	Metrics   *config.MetricsConfig
	Table     *site.Table
	StartTime time.Time // Track server start time for uptime calculations

	renderer       *renderer
	rewriter       site.SchemeRewriter
	metrics        *serverMetrics
	trustedProxies []netip.Prefix // peers allowed to set X-Forwarded-*
}

// NewServer creates a new web server instance. Templates are parsed here,
// once; a missing or broken template fails construction.
func NewServer(cfg *config.MainConfig, table *site.Table) (*WebServer, error) {
	webconfig := &cfg.Web
	switch {
	case webconfig.Debug:
		gin.SetMode(gin.DebugMode)
	case gin.Mode() != gin.TestMode:
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	// route on the escaped path so an id containing "/" stays one :id segment;
	// params are still unescaped
	router.UseRawPath = true

	// Configure Gin to trust reverse proxy headers
	if err := router.SetTrustedProxies(webconfig.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	proxies, err := parseTrustedProxies(webconfig.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	// Configure security headers based on SSL setup
	secureConfig := secure.Config{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}

	// Only add SSL-specific headers if SSL is enabled on the application itself
	// (not when running behind a reverse proxy like nginx with SSL)
	if webconfig.SSL {
		secureConfig.SSLRedirect = true
		secureConfig.STSSeconds = 31536000
		secureConfig.STSIncludeSubdomains = true
	}

	server := &WebServer{
		Router:         router,
		Config:         webconfig,
		Metrics:        &cfg.Metrics,
		Table:          table,
		rewriter:       site.SchemeRewriter{Enabled: webconfig.HTTPSURLs},
		metrics:        newServerMetrics(),
		trustedProxies: proxies,
	}

	tfs, err := templatesFS(webconfig.TemplatesDir)
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}
	server.renderer, err = newRenderer(tfs, append(table.Templates(), errorTemplate), server.templateFuncs())
	if err != nil {
		return nil, err
	}
	server.metrics.postings.Set(float64(table.Catalog().Len()))

	router.Use(server.RequestIDMiddleware())
	router.Use(server.metrics.Middleware())
	if webconfig.Debug {
		router.Use(server.ApacheLogFormat())
	}
	router.Use(secure.New(secureConfig))
	router.Use(server.ReverseProxyMiddleware())
	if len(webconfig.BlockedUserAgents) > 0 {
		router.Use(server.BotDetectionMiddleware(webconfig.BlockedUserAgents))
	}

	server.setupRoutes()
	return server, nil
}

// setupRoutes configures all HTTP routes
func (s *WebServer) setupRoutes() {
	// Static files first
	if s.Config.StaticDir != "" {
		s.Router.Static("/static", s.Config.StaticDir)
	} else {
		s.Router.GET("/static/*filepath", EmbeddedStaticHandler("/static"))
	}
	s.Router.GET("/robots.txt", EmbeddedFileHandler("static/robots.txt"))
	s.Router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	if s.Metrics != nil && s.Metrics.Enabled {
		s.Router.GET(s.Metrics.Path, gin.WrapH(s.metrics.Handler()))
	}

	// Site pages and careers routes, one generic handler per table entry
	for _, route := range s.Table.Routes() {
		s.Router.GET(route.Pattern, s.pageHandler)
	}

	s.Router.NoRoute(func(c *gin.Context) {
		s.renderError(c, http.StatusNotFound, "Page introuvable", "no route for "+c.Request.URL.Path)
	})
}

// Start starts the web server with SSL support if configured and blocks
// until ctx is cancelled or the listener fails
func (s *WebServer) Start(ctx context.Context) error {
	addr := ":" + strconv.Itoa(s.Config.ListenPort)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully
func (s *WebServer) Serve(ctx context.Context, ln net.Listener) error {
	if s.Config.SSL && (s.Config.CertFile == "" || s.Config.KeyFile == "") {
		ln.Close()
		return errors.New("SSL enabled but cert_file or key_file not specified in config")
	}
	srv := &http.Server{
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.StartTime = time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if s.Config.SSL {
			log.Printf("[WEB]: Starting HTTPS server on %s", ln.Addr())
			err = srv.ServeTLS(ln, s.Config.CertFile, s.Config.KeyFile)
		} else {
			log.Printf("[WEB]: Starting HTTP server on %s", ln.Addr())
			err = srv.Serve(ln)
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		timeout := s.Config.ShutdownTimeout
		if timeout <= 0 {
			timeout = config.DefaultShutdownTimeout
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		log.Printf("[WEB]: Shutting down web server (timeout %s)...", timeout)
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Uptime returns the time since Serve was called
func (s *WebServer) Uptime() time.Duration {
	if s.StartTime.IsZero() {
		return 0
	}
	return time.Since(s.StartTime)
}
