package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/seating-planner/internal/storage"
)

const (
	defaultPort           = "8080"
	defaultEnvFile        = ".env"
	defaultLogLevel       = "info"
	defaultMaxUploadBytes = 10 << 20
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
)

// Config aggregates runtime configuration resolved from multiple sources.
type Config struct {
	Port                 string
	SeatsPerTable        int
	Diversify            bool
	MaxUploadBytes       int64
	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
	EnableMetrics        bool
	EnableH2C            bool
	LogLevel             string
	RateLimitRPS         float64
	RateLimitBurst       int
	TrustProxyHeaders    bool
}

// yamlConfig represents the YAML configuration file structure. Pointers
// distinguish absent keys from zero values.
type yamlConfig struct {
	Port                 string        `yaml:"port"`
	Seating              yamlSeating   `yaml:"seating"`
	MaxUploadBytes       *int64        `yaml:"max_upload_bytes"`
	ShutdownGracePeriod  string        `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string        `yaml:"read_header_timeout"`
	WriteTimeout         string        `yaml:"write_timeout"`
	IdleTimeout          string        `yaml:"idle_timeout"`
	EnableRequestLogging *bool         `yaml:"enable_request_logging"`
	EnableMetrics        *bool         `yaml:"enable_metrics"`
	EnableH2C            *bool         `yaml:"enable_h2c"`
	LogLevel             string        `yaml:"log_level"`
	RateLimit            yamlRateLimit `yaml:"rate_limit"`
}

// yamlSeating represents the seating section in YAML.
type yamlSeating struct {
	SeatsPerTable *int  `yaml:"seats_per_table"`
	Diversify     *bool `yaml:"diversify"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS               *float64 `yaml:"rps"`
	Burst             *int     `yaml:"burst"`
	TrustProxyHeaders *bool    `yaml:"trust_proxy_headers"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile     string
	EnvFile        string
	Port           *string
	SeatsPerTable  *int
	Diversify      *bool
	LogLevel       *string
	RateLimitRPS   *float64
	RateLimitBurst *int
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > .env file > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	if err := loadEnvFile(overrides); err != nil {
		return Config{}, err
	}
	applyEnvConfig(&cfg)

	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		if err := applyYAMLConfig(&cfg, yamlCfg); err != nil {
			return Config{}, fmt.Errorf("apply YAML config: %w", err)
		}
	}

	if overrides != nil {
		applyCLIOverrides(&cfg, overrides)
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		Port:                 defaultPort,
		SeatsPerTable:        storage.DefaultSettings().SeatsPerTable,
		Diversify:            storage.DefaultSettings().Diversify,
		MaxUploadBytes:       defaultMaxUploadBytes,
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		EnableMetrics:        true,
		LogLevel:             defaultLogLevel,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
	}
}

// loadEnvFile populates the process environment from a .env file. Variables
// already present in the environment win. A missing default file is ignored;
// an explicitly requested one must exist.
func loadEnvFile(overrides *CLIOverrides) error {
	path := defaultEnvFile
	explicit := overrides != nil && overrides.EnvFile != ""
	if explicit {
		path = overrides.EnvFile
	}

	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) error {
	if yamlCfg.Port != "" {
		cfg.Port = yamlCfg.Port
	}

	if yamlCfg.Seating.SeatsPerTable != nil {
		cfg.SeatsPerTable = *yamlCfg.Seating.SeatsPerTable
	}
	if yamlCfg.Seating.Diversify != nil {
		cfg.Diversify = *yamlCfg.Seating.Diversify
	}

	if yamlCfg.MaxUploadBytes != nil {
		cfg.MaxUploadBytes = *yamlCfg.MaxUploadBytes
	}

	durations := []struct {
		raw    string
		target *time.Duration
		key    string
	}{
		{yamlCfg.ShutdownGracePeriod, &cfg.ShutdownGracePeriod, "shutdown_grace_period"},
		{yamlCfg.ReadHeaderTimeout, &cfg.ReadHeaderTimeout, "read_header_timeout"},
		{yamlCfg.WriteTimeout, &cfg.WriteTimeout, "write_timeout"},
		{yamlCfg.IdleTimeout, &cfg.IdleTimeout, "idle_timeout"},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		*d.target = parsed
	}

	if yamlCfg.EnableRequestLogging != nil {
		cfg.EnableRequestLogging = *yamlCfg.EnableRequestLogging
	}
	if yamlCfg.EnableMetrics != nil {
		cfg.EnableMetrics = *yamlCfg.EnableMetrics
	}
	if yamlCfg.EnableH2C != nil {
		cfg.EnableH2C = *yamlCfg.EnableH2C
	}

	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}

	if yamlCfg.RateLimit.RPS != nil {
		cfg.RateLimitRPS = *yamlCfg.RateLimit.RPS
	}
	if yamlCfg.RateLimit.Burst != nil {
		cfg.RateLimitBurst = *yamlCfg.RateLimit.Burst
	}
	if yamlCfg.RateLimit.TrustProxyHeaders != nil {
		cfg.TrustProxyHeaders = *yamlCfg.RateLimit.TrustProxyHeaders
	}

	return nil
}

// applyEnvConfig applies environment variable configuration. Unparseable
// values are ignored.
func applyEnvConfig(cfg *Config) {
	if port := env("PORT"); port != "" {
		cfg.Port = port
	}

	if seats := env("SEATS_PER_TABLE"); seats != "" {
		if value, err := strconv.Atoi(seats); err == nil {
			cfg.SeatsPerTable = value
		}
	}

	if diversify := env("DIVERSIFY"); diversify != "" {
		if value, err := strconv.ParseBool(diversify); err == nil {
			cfg.Diversify = value
		}
	}

	if maxUpload := env("MAX_UPLOAD_BYTES"); maxUpload != "" {
		if value, err := strconv.ParseInt(maxUpload, 10, 64); err == nil {
			cfg.MaxUploadBytes = value
		}
	}

	if level := env("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	if metrics := env("ENABLE_METRICS"); metrics != "" {
		if value, err := strconv.ParseBool(metrics); err == nil {
			cfg.EnableMetrics = value
		}
	}

	if h2c := env("ENABLE_H2C"); h2c != "" {
		if value, err := strconv.ParseBool(h2c); err == nil {
			cfg.EnableH2C = value
		}
	}

	if rps := env("RATE_LIMIT_RPS"); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}

	if burst := env("RATE_LIMIT_BURST"); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}

	if trust := env("TRUST_PROXY_HEADERS"); trust != "" {
		if value, err := strconv.ParseBool(trust); err == nil {
			cfg.TrustProxyHeaders = value
		}
	}
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) {
	if overrides.Port != nil && *overrides.Port != "" {
		cfg.Port = *overrides.Port
	}

	if overrides.SeatsPerTable != nil {
		cfg.SeatsPerTable = *overrides.SeatsPerTable
	}

	if overrides.Diversify != nil {
		cfg.Diversify = *overrides.Diversify
	}

	if overrides.LogLevel != nil && *overrides.LogLevel != "" {
		cfg.LogLevel = *overrides.LogLevel
	}

	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}

	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if cfg.SeatsPerTable <= 0 {
		return fmt.Errorf("seats per table must be a positive integer, got %d", cfg.SeatsPerTable)
	}
	if cfg.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be > 0")
	}
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 0")
	}
	return nil
}
