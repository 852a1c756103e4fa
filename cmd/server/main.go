package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/seating-planner/internal/application"
	"github.com/eugenenazirov/seating-planner/internal/config"
	"github.com/eugenenazirov/seating-planner/internal/logging"
)

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("seating-planner", "Seating Planner - balances people across tables and mixes departments")
	configFile := kingpinApp.Flag("config", "Path to YAML configuration file").String()
	envFile := kingpinApp.Flag("env-file", "Path to a dotenv file loaded before the environment is read").String()
	port := kingpinApp.Flag("port", "HTTP port exposed by the service").String()
	seatsPerTable := kingpinApp.Flag("seats-per-table", "Default maximum seats per table").Default("-1").Int()
	var diversifySet bool
	diversify := kingpinApp.Flag("diversify", "Mix departments across tables by default").IsSetByUser(&diversifySet).Bool()
	logLevel := kingpinApp.Flag("log-level", "Log level (debug, info, warn, error)").String()
	rateLimitRPSFlag := kingpinApp.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := kingpinApp.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()

	kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	overrides := buildOverrides(*configFile, *envFile, *port, *seatsPerTable, *logLevel, *rateLimitRPSFlag, *rateLimitBurstFlag)
	if diversifySet {
		overrides.Diversify = diversify
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)
}

// buildOverrides converts parsed flag values into config overrides. Negative
// numeric values and empty strings mean the flag was not supplied.
func buildOverrides(configFile, envFile, port string, seatsPerTable int, logLevel string, rps float64, burst int) *config.CLIOverrides {
	overrides := &config.CLIOverrides{
		ConfigFile: configFile,
		EnvFile:    envFile,
	}

	if port != "" {
		overrides.Port = &port
	}
	if seatsPerTable >= 0 {
		overrides.SeatsPerTable = &seatsPerTable
	}
	if logLevel != "" {
		overrides.LogLevel = &logLevel
	}
	if rps >= 0 {
		overrides.RateLimitRPS = &rps
	}
	if burst >= 0 {
		overrides.RateLimitBurst = &burst
	}

	return overrides
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
