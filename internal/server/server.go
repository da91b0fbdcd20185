package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/joeblew999/plat-airmap/internal/api"
	"github.com/joeblew999/plat-airmap/internal/api/viewer"
	"github.com/joeblew999/plat-airmap/internal/db"
	"github.com/joeblew999/plat-airmap/internal/metrics"
	"github.com/joeblew999/plat-airmap/internal/service"
	"github.com/joeblew999/plat-airmap/internal/templates"
)

// Config holds the server configuration.
type Config struct {
	Host       string
	Port       string
	DataDir    string
	WebDir     string // optional web/ directory for static files and the viewer page
	Dataset    string // dataset loaded into every new session
	Catalog    *service.Catalog
	SessionTTL time.Duration
	Logger     *slog.Logger
	Registry   *prometheus.Registry // nil uses a fresh registry
}

// Server is the air map HTTP server.
type Server struct {
	config   Config
	mux      *http.ServeMux
	handler  http.Handler
	humaAPI  huma.API
	store    *db.Store
	services *api.Services
	renderer *templates.Renderer
	metrics  *metrics.Collector
	log      *slog.Logger
}

// New creates a new air map server.
func New(cfg Config) (*Server, error) {
	if cfg.Catalog == nil {
		cfg.Catalog = service.DefaultCatalog()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	mux := http.NewServeMux()

	// Create Huma API with humago (pure stdlib) adapter
	humaConfig := huma.DefaultConfig("plat-airmap API", "1.0.0")
	humaConfig.Info.Description = "Sensor reading colour map: measurable selection, marker colours, legends and live viewer sessions."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	// Disable $schema property in responses (cleaner JSON)
	humaConfig.CreateHooks = []func(huma.Config) huma.Config{}
	humaConfig.Transformers = append(humaConfig.Transformers, api.LinkTransformer())

	humaAPI := humago.New(mux, humaConfig)

	collector := metrics.NewCollector("airmap", cfg.Registry)

	// Initialize services
	sources := service.NewSourceService(cfg.DataDir)
	readings := service.NewReadingService(sources, cfg.Catalog)
	services := &api.Services{
		Catalog:  cfg.Catalog,
		Source:   sources,
		Readings: readings,
		Sessions: service.NewSessionService(service.SessionConfig{
			Catalog:  cfg.Catalog,
			Readings: readings,
			Source:   cfg.Dataset,
			TTL:      cfg.SessionTTL,
			Recorder: collector,
			Logger:   cfg.Logger,
		}),
	}

	renderer, err := templates.Default()
	if err != nil {
		return nil, fmt.Errorf("load fragment templates: %w", err)
	}
	// <web-dir>/templates/fragments overrides individual embedded fragments
	if cfg.WebDir != "" {
		fragDir := filepath.Join(cfg.WebDir, "templates", "fragments")
		if info, err := os.Stat(fragDir); err == nil && info.IsDir() {
			if err := renderer.Reload(os.DirFS(fragDir)); err != nil {
				return nil, fmt.Errorf("load fragment overrides: %w", err)
			}
		}
	}

	s := &Server{
		config:   cfg,
		mux:      mux,
		humaAPI:  humaAPI,
		services: services,
		renderer: renderer,
		metrics:  collector,
		log:      cfg.Logger,
	}

	// DuckDB is optional: without it the stats routes answer 503.
	store, err := db.Open(db.Config{DataDir: cfg.DataDir, DBName: "airmap"})
	if err != nil {
		cfg.Logger.Warn("duckdb unavailable", "error", err)
	} else {
		s.store = store
		services.Store = store
		readings.SetStore(store, cfg.Logger)
	}

	s.routes()
	s.handler = s.requestLogger(mux)
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// OpenAPI returns the generated OpenAPI document.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

// Sessions returns the session service.
func (s *Server) Sessions() *service.SessionService {
	return s.services.Sessions
}

// Close closes server resources.
func (s *Server) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// ListenAndServe serves on addr and reaps idle sessions until ctx is
// done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.services.Sessions.Run(ctx, reapInterval(s.config.SessionTTL))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// reapInterval checks for idle sessions four times per TTL, at most
// once a minute.
func reapInterval(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 0
	}
	return min(ttl/4, time.Minute)
}

func (s *Server) routes() {
	// Register Huma REST API routes (OpenAPI-documented JSON endpoints)
	api.RegisterRoutes(s.humaAPI, s.services,
		api.NewInfoHandler(s.config.Dataset, s.services.Source, s.services.Readings, s.store != nil))

	// Register viewer SSE routes using Huma + Datastar SDK
	viewer.NewPanelHandler(s.services.Sessions, s.renderer).RegisterRoutes(s.humaAPI)
	viewer.NewEventHandler(s.services.Sessions, s.renderer).RegisterRoutes(s.humaAPI)

	s.mux.Handle("/metrics", s.metrics.Handler())

	// Static files and the viewer page
	if s.config.WebDir != "" {
		staticDir := filepath.Join(s.config.WebDir, "static")
		s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
		s.mux.HandleFunc("/viewer", s.handleViewer)
	}

	s.mux.HandleFunc("/", s.handleRoot)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Add("Link", `</health>; rel="health"`)
	w.Header().Add("Link", `</api/v1/measurables>; rel="measurables"`)
	json.NewEncoder(w).Encode(map[string]string{
		"service": "plat-airmap",
		"status":  "running",
	})
}

func (s *Server) handleViewer(w http.ResponseWriter, r *http.Request) {
	page := filepath.Join(s.config.WebDir, "templates", "viewer.html")
	if _, err := os.Stat(page); err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, page)
}
