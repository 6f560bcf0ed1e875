// Package server exposes the dashboard and the JSON API over HTTP. It
// renders the embedded dashboard page and serves the query, ingestion,
// export and health endpoints the page is built on.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spacesedan/tweetflow/internal/db"
	"github.com/spacesedan/tweetflow/internal/models"
	"github.com/spacesedan/tweetflow/internal/pipeline"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

// Ingester runs one ingestion cycle. Satisfied by *pipeline.Pipeline.
type Ingester interface {
	Ingest(ctx context.Context, req pipeline.Request) (models.IngestionReport, error)
}

// TweetStore is the slice of the persistence layer the handlers read from.
// Satisfied by *db.Store.
type TweetStore interface {
	QueryTweets(ctx context.Context, f db.Filter) ([]models.Tweet, error)
	Aggregate(ctx context.Context, f db.Filter) (db.Aggregate, error)
	Timeline(ctx context.Context, f db.Filter) ([]db.TimelineBucket, error)
	TopWords(ctx context.Context, f db.Filter, limit int) ([]db.WordCount, error)
	ExportCSV(ctx context.Context, f db.Filter, w io.Writer) (int, error)
	Count(ctx context.Context) (int, error)
	DistinctKeywords(ctx context.Context) ([]string, error)
	Reset(ctx context.Context) error
	Ping(ctx context.Context) error
}

// Options wires a Server. Store and Pipeline are required.
type Options struct {
	Store    TweetStore
	Pipeline Ingester
	// Engine is the active classifier engine name, shown on the
	// dashboard and in /health.
	Engine          string
	DefaultKeyword  string
	DefaultLimit    int
	DefaultDaysBack int
	Version         string
}

type Server struct {
	router   *chi.Mux
	store    TweetStore
	pipeline Ingester

	engine          string
	defaultKeyword  string
	defaultLimit    int
	defaultDaysBack int
	version         string
	startTime       time.Time

	dashboardTmpl *template.Template

	// ingestMu serializes ingestion runs; the pipeline and the
	// classifier behind it are not safe for concurrent use.
	ingestMu sync.Mutex
}

func New(opts Options) (*Server, error) {
	if opts.Store == nil {
		return nil, errors.New("server: store is required")
	}
	if opts.Pipeline == nil {
		return nil, errors.New("server: pipeline is required")
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 100
	}
	if opts.DefaultDaysBack <= 0 {
		opts.DefaultDaysBack = 7
	}

	tmpl, err := template.ParseFS(templateFS, "templates/dashboard.html")
	if err != nil {
		return nil, fmt.Errorf("parsing dashboard template: %w", err)
	}

	s := &Server{
		router:          chi.NewRouter(),
		store:           opts.Store,
		pipeline:        opts.Pipeline,
		engine:          opts.Engine,
		defaultKeyword:  opts.DefaultKeyword,
		defaultLimit:    opts.DefaultLimit,
		defaultDaysBack: opts.DefaultDaysBack,
		version:         opts.Version,
		startTime:       time.Now(),
		dashboardTmpl:   tmpl,
	}
	s.routes()
	return s, nil
}

// Handler returns the root handler for an http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(requestMetrics)

	s.router.Get("/", s.handleDashboard)
	s.router.Get("/health", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	s.router.Route("/api/v1", func(api chi.Router) {
		api.Post("/ingest", s.handleIngest)
		api.Get("/tweets", s.handleListTweets)
		api.Get("/sentiment/distribution", s.handleDistribution)
		api.Get("/sentiment/timeline", s.handleTimeline)
		api.Get("/keywords/top", s.handleTopWords)
		api.Get("/export/csv", s.handleExportCSV)
		api.Post("/reset", s.handleReset)
	})
}
