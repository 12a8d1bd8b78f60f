package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/netutil"

	"github.com/umputun/newsrake/pkg/domain"
	"github.com/umputun/newsrake/pkg/feed"
	"github.com/umputun/newsrake/pkg/repository"
	"github.com/umputun/newsrake/pkg/scheduler"
)

//go:generate moq -out mocks/config.go -pkg mocks -skip-ensure -fmt goimports . ConfigProvider
//go:generate moq -out mocks/articles.go -pkg mocks -skip-ensure -fmt goimports . Articles
//go:generate moq -out mocks/runner.go -pkg mocks -skip-ensure -fmt goimports . Runner

const maxConnections = 256

// Server represents HTTP server instance
type Server struct {
	config    ConfigProvider
	articles  Articles
	runner    Runner
	generator *feed.Generator
	sanitizer *bluemonday.Policy
	version   string
	debug     bool

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
	baseCtx    context.Context
}

// Articles is the read side of the article store
type Articles interface {
	QueryAll(ctx context.Context, opts repository.QueryOpts) ([]domain.Article, error)
	Categories(ctx context.Context) ([]repository.CategoryCount, error)
	Count(ctx context.Context) (int64, error)
}

// Runner triggers ingestion on demand and reports on past runs
type Runner interface {
	StartRun(ctx context.Context) error
	LastRun() (scheduler.RunResult, bool)
	Running() bool
}

// ConfigProvider provides server configuration
type ConfigProvider interface {
	GetServerConfig() (listen string, timeout time.Duration)
	GetBaseURL() string
}

// New initializes a new server instance
func New(cfg ConfigProvider, articles Articles, runner Runner, version string, debug bool) *Server {
	s := &Server{
		config:    cfg,
		articles:  articles,
		runner:    runner,
		generator: feed.NewGenerator(cfg.GetBaseURL()),
		sanitizer: bluemonday.UGCPolicy(),
		version:   version,
		debug:     debug,
		router:    routegroup.New(http.NewServeMux()),
		baseCtx:   context.Background(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Run starts the HTTP server and handles graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	listen, timeout := s.config.GetServerConfig()
	lgr.Printf("[INFO] starting server on %s", listen)

	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listen, err)
	}

	s.lock.Lock()
	s.baseCtx = ctx
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: timeout,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
		IdleTimeout:       timeout * 2,
	}
	httpServer := s.httpServer
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		lgr.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			lgr.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := httpServer.Serve(netutil.LimitListener(ln, maxConnections)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("newsrake", "umputun", s.version))
	s.router.Use(rest.Ping)

	if s.debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(64 * 1024))
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() {
	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /status", s.statusHandler)
		r.HandleFunc("GET /articles", s.articlesHandler)
		r.HandleFunc("GET /categories", s.categoriesHandler)
		r.HandleFunc("POST /run", s.runHandler)
	})

	s.router.HandleFunc("GET /rss", s.rssHandler)
	s.router.HandleFunc("GET /rss/{category}", s.rssHandler)
}

// runContext returns the context background runs are bound to
func (s *Server) runContext() context.Context {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.baseCtx
}
