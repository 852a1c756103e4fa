package application

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/eugenenazirov/seating-planner/internal/api"
	"github.com/eugenenazirov/seating-planner/internal/config"
	"github.com/eugenenazirov/seating-planner/internal/metrics"
	"github.com/eugenenazirov/seating-planner/internal/seating"
	"github.com/eugenenazirov/seating-planner/internal/storage"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	storage  storage.Storage
	assigner seating.Assigner
	metrics  metrics.Recorder
	registry *prometheus.Registry
	handler  *api.Handler
	router   http.Handler
	logger   *zap.Logger
	server   *http.Server
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	store := storage.NewMemoryStorage()
	settings := storage.Settings{SeatsPerTable: cfg.SeatsPerTable, Diversify: cfg.Diversify}
	if err := store.SetSettings(settings); err != nil {
		return nil, fmt.Errorf("failed to apply initial seating settings: %w", err)
	}

	var (
		recorder       metrics.Recorder = metrics.Nop{}
		registry       *prometheus.Registry
		metricsHandler http.Handler
	)
	if cfg.EnableMetrics {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		recorder = metrics.NewPrometheus(registry, "")
		metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	}

	assigner := seating.New()
	handler := api.NewHandler(assigner, store,
		api.WithMetrics(recorder),
		api.WithHandlerLogger(logger),
		api.WithMaxUploadBytes(cfg.MaxUploadBytes),
	)
	apiRouter := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
		api.WithTrustedProxyHeaders(cfg.TrustProxyHeaders),
	)

	rootHandler, err := BuildRootHandler(apiRouter, metricsHandler)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP handler: %w", err)
	}
	if cfg.EnableH2C {
		rootHandler = h2c.NewHandler(rootHandler, &http2.Server{})
	}

	return &App{
		storage:  store,
		assigner: assigner,
		metrics:  recorder,
		registry: registry,
		handler:  handler,
		router:   apiRouter,
		logger:   logger,
		server:   NewServer(cfg, rootHandler),
	}, nil
}

// BuildRootHandler constructs the root HTTP handler that serves the web UI,
// routes API requests and, when metricsHandler is non-nil, exposes /metrics.
func BuildRootHandler(apiHandler, metricsHandler http.Handler) (http.Handler, error) {
	mux := http.NewServeMux()

	staticPath, err := resolveProjectPath(filepath.Join("web", "static"))
	if err != nil {
		return nil, err
	}
	staticDir := http.Dir(staticPath)
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(staticDir)))
	mux.Handle("/api/", apiHandler)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}

	indexPath, err := resolveProjectPath(filepath.Join("web", "templates", "index.html"))
	if err != nil {
		return nil, err
	}
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, indexPath)
	}))

	return mux, nil
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}

// resolveProjectPath locates a file or directory relative to the project root by walking up the directory tree.
func resolveProjectPath(relative string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(dir, relative)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("unable to locate %s", relative)
}
