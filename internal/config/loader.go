// Package config loads layered application configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// SchemaVersion is the configuration schema version stamped on every load.
const SchemaVersion = "1.0.0"

// ============================================================================
// CONFIGURATION LOADER
// ============================================================================

// Loader reads configuration from a hierarchy of sources.
type Loader struct {
	basePath    string
	environment Environment
	sources     []string
}

// NewLoader creates a loader reading files from basePath.
func NewLoader(basePath string, env Environment) *Loader {
	if basePath == "" {
		basePath = "config"
	}
	return &Loader{
		basePath:    basePath,
		environment: env,
	}
}

// BasePath returns the directory the loader reads from.
func (l *Loader) BasePath() string {
	return l.basePath
}

// Load builds the configuration. Sources, lowest priority first:
//  1. defaults
//  2. base.yaml
//  3. <environment>.yaml
//  4. local.yaml (development only)
//  5. environment variables
func (l *Loader) Load() (*Config, error) {
	l.sources = l.sources[:0]

	cfg := DefaultConfig(l.environment)
	l.sources = append(l.sources, "defaults")

	if err := l.loadFile("base", cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load base config: %w", err)
	}

	envFile := strings.ToLower(string(l.environment))
	if err := l.loadFile(envFile, cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s config: %w", envFile, err)
	}

	if l.environment == Development {
		if err := l.loadFile("local", cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load local config: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	l.sources = append(l.sources, "environment")

	// The loader's environment wins over anything a file declared.
	cfg.Environment = l.environment
	cfg.LoadedFrom = append([]string(nil), l.sources...)
	cfg.Version = SchemaVersion
	cfg.applyEnvironmentDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (l *Loader) loadFile(name string, cfg *Config) error {
	for _, ext := range []string{"yaml", "yml"} {
		path := filepath.Join(l.basePath, name+"."+ext)

		file, err := os.Open(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}

		err = decodeYAML(file, cfg)
		file.Close()
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}

		l.sources = append(l.sources, path)
		return nil
	}
	return fs.ErrNotExist
}

func decodeYAML(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// DefaultConfig returns a configuration that runs without any files.
func DefaultConfig(env Environment) *Config {
	logFormat := "json"
	if env == Development {
		logFormat = "console"
	}

	return &Config{
		Environment: env,
		Server: Server{
			Port:            8080,
			Host:            "0.0.0.0",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RequestTimeout:  30 * time.Second,
			MaxRequestSize:  10 * 1024 * 1024,
		},
		Analytics: Analytics{
			MaxNodes: 10000,
			MaxEdges: 50000,
		},
		Cache: Cache{
			MaxItems:        1000,
			MaxBytes:        64 * 1024 * 1024,
			TTL:             5 * time.Minute,
			CleanupInterval: time.Minute,
		},
		Metrics: Metrics{
			Namespace: "nodemapper",
			Path:      "/metrics",
		},
		Tracing: Tracing{
			ServiceName: "nodemapper-backend",
			SampleRate:  0.1,
		},
		Events: Events{
			Source:    "nodemapper.backend",
			BatchSize: 10,
		},
		Logging: Logging{
			Level:  "info",
			Format: logFormat,
		},
		Features: Features{
			EnableCaching: true,
			EnableMetrics: true,
			EnableSwagger: true,
		},
		AWS: AWS{
			Region: "us-east-1",
		},
		CORS: CORS{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			MaxAge:         300,
		},
		CircuitBreaker: CircuitBreaker{
			Enabled:      true,
			MaxRequests:  3,
			Interval:     10 * time.Second,
			Timeout:      30 * time.Second,
			MinRequests:  10,
			FailureRatio: 0.5,
		},
	}
}

// ============================================================================
// ENVIRONMENT VARIABLES
// ============================================================================

// applyEnv overlays environment variables. Malformed numeric or boolean
// values are reported rather than silently ignored.
func applyEnv(cfg *Config) error {
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	float := func(key string, dst *float64) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = f
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	// Server
	integer("SERVER_PORT", &cfg.Server.Port)
	integer("PORT", &cfg.Server.Port)
	str("SERVER_HOST", &cfg.Server.Host)
	duration("SERVER_REQUEST_TIMEOUT", &cfg.Server.RequestTimeout)

	// Analytics
	integer("ANALYTICS_MAX_NODES", &cfg.Analytics.MaxNodes)
	integer("ANALYTICS_MAX_EDGES", &cfg.Analytics.MaxEdges)

	// Cache
	integer("CACHE_MAX_ITEMS", &cfg.Cache.MaxItems)
	duration("CACHE_TTL", &cfg.Cache.TTL)

	// Tracing
	str("OTEL_SERVICE_NAME", &cfg.Tracing.ServiceName)
	str("OTEL_EXPORTER_OTLP_ENDPOINT", &cfg.Tracing.Endpoint)
	float("TRACING_SAMPLE_RATE", &cfg.Tracing.SampleRate)

	// Events
	str("EVENT_BUS_NAME", &cfg.Events.EventBusName)
	str("EVENT_SOURCE", &cfg.Events.Source)

	// Logging
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	str("LOG_FORMAT", &cfg.Logging.Format)

	// AWS
	str("AWS_REGION", &cfg.AWS.Region)

	// Feature flags
	boolean("FEATURES_ENABLE_CACHING", &cfg.Features.EnableCaching)
	boolean("FEATURES_ENABLE_METRICS", &cfg.Features.EnableMetrics)
	boolean("FEATURES_ENABLE_TRACING", &cfg.Features.EnableTracing)
	boolean("FEATURES_ENABLE_EVENTS", &cfg.Features.EnableEvents)
	boolean("FEATURES_ENABLE_HOT_RELOAD", &cfg.Features.EnableHotReload)
	boolean("FEATURES_ENABLE_SWAGGER", &cfg.Features.EnableSwagger)

	// CORS
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.CORS.AllowedOrigins = splitList(v)
	}

	return errors.Join(errs...)
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// DefaultLoader reads the environment named by ENVIRONMENT from the
// directory named by CONFIG_DIR (default "config").
func DefaultLoader() *Loader {
	return NewLoader(os.Getenv("CONFIG_DIR"), getEnvironment())
}

// Load loads configuration using DefaultLoader.
func Load() (*Config, error) {
	return DefaultLoader().Load()
}

// MustLoad loads configuration and panics on error.
// Use this only in main() or init() functions.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}
