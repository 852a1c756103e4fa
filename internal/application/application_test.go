package application

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/seating-planner/internal/config"
	"github.com/eugenenazirov/seating-planner/internal/storage"
)

func TestNewInitializesDependencies(t *testing.T) {
	cfg := baseTestConfig(":8085")
	cfg.SeatsPerTable = 6
	cfg.Diversify = true
	logger := zaptest.NewLogger(t)

	app, err := New(cfg, logger)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	settings, err := app.storage.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings returned error: %v", err)
	}
	if want := (storage.Settings{SeatsPerTable: 6, Diversify: true}); settings != want {
		t.Fatalf("expected settings %+v, got %+v", want, settings)
	}
	if app.server == nil || app.router == nil || app.handler == nil || app.assigner == nil {
		t.Fatalf("expected server, router, handler, and assigner to be initialized")
	}
	if app.registry != nil {
		t.Fatalf("expected metrics registry to stay nil when metrics are disabled")
	}
	if app.Server() != app.server {
		t.Fatalf("Server accessor did not return underlying instance")
	}
}

func TestNewExposesMetrics(t *testing.T) {
	cfg := baseTestConfig(":0")
	cfg.EnableMetrics = true

	app, err := New(cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if app.registry == nil {
		t.Fatalf("expected metrics registry")
	}

	body := strings.NewReader(`{"people":[{"name":"A","department":"Eng"}],"seatsPerTable":2}`)
	req := httptest.NewRequest(http.MethodPost, "/api/arrangements", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	app.server.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 from arrangements, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	app.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "seating_arrangements_generated_total") {
		t.Fatalf("expected seating metrics in exposition")
	}
}

func TestNewWrapsHandlerForH2C(t *testing.T) {
	cfg := baseTestConfig(":0")
	cfg.EnableH2C = true

	app, err := New(cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	rec := httptest.NewRecorder()
	app.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected HTTP/1.1 requests to pass through h2c handler, got %d", rec.Code)
	}
}

func TestNewServerAppliesConfig(t *testing.T) {
	cfg := baseTestConfig("9090")
	handler := http.NewServeMux()

	server := NewServer(cfg, handler)
	if server.Addr != ":9090" {
		t.Fatalf("expected address :9090, got %s", server.Addr)
	}
	if server.Handler != handler {
		t.Fatalf("expected handler to be applied")
	}
	if server.ReadHeaderTimeout != cfg.ReadHeaderTimeout ||
		server.WriteTimeout != cfg.WriteTimeout ||
		server.IdleTimeout != cfg.IdleTimeout {
		t.Fatalf("server timeouts do not match configuration")
	}
}

func TestResolveProjectPathFindsGoMod(t *testing.T) {
	path, err := resolveProjectPath("go.mod")
	if err != nil {
		t.Fatalf("resolveProjectPath returned error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected go.mod to exist at %s: %v", path, err)
	}
}

func TestNewReturnsErrorForInvalidSeatingSettings(t *testing.T) {
	cfg := baseTestConfig(":0")
	cfg.SeatsPerTable = 0

	if _, err := New(cfg, zaptest.NewLogger(t)); err == nil {
		t.Fatalf("expected error for invalid seats per table")
	}
}

func TestResolveProjectPathUnknownTarget(t *testing.T) {
	if _, err := resolveProjectPath("definitely-not-a-real-file"); err == nil {
		t.Fatalf("expected error for missing resource")
	}
}

func baseTestConfig(port string) config.Config {
	return config.Config{
		Port:                 port,
		SeatsPerTable:        8,
		MaxUploadBytes:       1 << 20,
		ShutdownGracePeriod:  50 * time.Millisecond,
		ReadHeaderTimeout:    20 * time.Millisecond,
		WriteTimeout:         30 * time.Millisecond,
		IdleTimeout:          40 * time.Millisecond,
		EnableRequestLogging: false,
		RateLimitRPS:         0,
		RateLimitBurst:       0,
	}
}
