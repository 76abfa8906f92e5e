package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Environment is the deployment environment the process runs in.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Config is the complete application configuration.
type Config struct {
	Environment Environment `yaml:"environment" json:"environment" validate:"required,oneof=development staging production"`

	Server         Server         `yaml:"server" json:"server"`
	Analytics      Analytics      `yaml:"analytics" json:"analytics"`
	Cache          Cache          `yaml:"cache" json:"cache"`
	Metrics        Metrics        `yaml:"metrics" json:"metrics"`
	Tracing        Tracing        `yaml:"tracing" json:"tracing"`
	Events         Events         `yaml:"events" json:"events"`
	Logging        Logging        `yaml:"logging" json:"logging"`
	Features       Features       `yaml:"features" json:"features"`
	AWS            AWS            `yaml:"aws" json:"aws"`
	CORS           CORS           `yaml:"cors" json:"cors"`
	CircuitBreaker CircuitBreaker `yaml:"circuit_breaker" json:"circuit_breaker"`

	// Metadata, filled by the loader
	Version    string   `yaml:"-" json:"-"`
	LoadedFrom []string `yaml:"-" json:"-"`
}

// Server holds HTTP server settings.
type Server struct {
	Port            int           `yaml:"port" json:"port" validate:"min=1,max=65535"`
	Host            string        `yaml:"host" json:"host"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout" json:"request_timeout"`
	MaxRequestSize  int64         `yaml:"max_request_size" json:"max_request_size" validate:"min=1024"`
}

// Analytics bounds the work a single analysis request may ask for.
type Analytics struct {
	MaxNodes int `yaml:"max_nodes" json:"max_nodes" validate:"min=1"`
	MaxEdges int `yaml:"max_edges" json:"max_edges" validate:"min=1"`
}

// Cache configures the analytics result cache.
type Cache struct {
	MaxItems        int           `yaml:"max_items" json:"max_items" validate:"min=1"`
	MaxBytes        int64         `yaml:"max_bytes" json:"max_bytes"`
	TTL             time.Duration `yaml:"ttl" json:"ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" json:"cleanup_interval"`
}

// Metrics configures the Prometheus collector.
type Metrics struct {
	Namespace string `yaml:"namespace" json:"namespace" validate:"required"`
	Path      string `yaml:"path" json:"path" validate:"required,startswith=/"`
}

// Tracing configures the OpenTelemetry exporter.
type Tracing struct {
	ServiceName string  `yaml:"service_name" json:"service_name" validate:"required"`
	Endpoint    string  `yaml:"endpoint" json:"endpoint"`
	Insecure    bool    `yaml:"insecure" json:"insecure"`
	SampleRate  float64 `yaml:"sample_rate" json:"sample_rate" validate:"min=0,max=1"`
}

// Events configures domain event publication.
type Events struct {
	EventBusName string `yaml:"event_bus_name" json:"event_bus_name"`
	Source       string `yaml:"source" json:"source" validate:"required"`
	BatchSize    int    `yaml:"batch_size" json:"batch_size" validate:"min=1,max=10"`
}

// Logging configures the zap logger.
type Logging struct {
	Level  string `yaml:"level" json:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" json:"format" validate:"oneof=json console"`
}

// Features contains feature flags for the application
type Features struct {
	EnableCaching   bool `yaml:"enable_caching" json:"enable_caching"`
	EnableMetrics   bool `yaml:"enable_metrics" json:"enable_metrics"`
	EnableTracing   bool `yaml:"enable_tracing" json:"enable_tracing"`
	EnableEvents    bool `yaml:"enable_events" json:"enable_events"`
	EnableHotReload bool `yaml:"enable_hot_reload" json:"enable_hot_reload"`
	EnableSwagger   bool `yaml:"enable_swagger" json:"enable_swagger"`
}

// AWS holds shared AWS SDK settings.
type AWS struct {
	Region string `yaml:"region" json:"region"`
}

// CORS configures cross-origin access.
type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins" validate:"min=1"`
	AllowedMethods []string `yaml:"allowed_methods" json:"allowed_methods" validate:"min=1"`
	AllowedHeaders []string `yaml:"allowed_headers" json:"allowed_headers"`
	MaxAge         int      `yaml:"max_age" json:"max_age"`
}

// CircuitBreaker configures the breaker in front of the API routes.
type CircuitBreaker struct {
	Enabled      bool          `yaml:"enabled" json:"enabled"`
	MaxRequests  uint32        `yaml:"max_requests" json:"max_requests"`
	Interval     time.Duration `yaml:"interval" json:"interval"`
	Timeout      time.Duration `yaml:"timeout" json:"timeout"`
	MinRequests  uint32        `yaml:"min_requests" json:"min_requests"`
	FailureRatio float64       `yaml:"failure_ratio" json:"failure_ratio" validate:"min=0,max=1"`
}

// Addr returns the listen address of the HTTP server.
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsProduction reports whether the configuration targets production.
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// IsDevelopment reports whether the configuration targets development.
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// Validate checks struct tags and cross-field rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	var errs []error
	if c.IsProduction() {
		if c.Features.EnableHotReload {
			errs = append(errs, errors.New("hot reload must be disabled in production"))
		}
		if c.Logging.Level == "debug" {
			errs = append(errs, errors.New("debug logging is not allowed in production"))
		}
	}
	if c.Features.EnableTracing && c.Tracing.Endpoint == "" {
		errs = append(errs, errors.New("tracing enabled without an endpoint"))
	}
	if c.Analytics.MaxEdges < c.Analytics.MaxNodes-1 {
		errs = append(errs, fmt.Errorf("analytics.max_edges (%d) cannot connect max_nodes (%d)",
			c.Analytics.MaxEdges, c.Analytics.MaxNodes))
	}
	return errors.Join(errs...)
}

// applyEnvironmentDefaults adjusts settings whose sensible value depends on
// the environment.
func (c *Config) applyEnvironmentDefaults() {
	switch c.Environment {
	case Production:
		c.Logging.Format = "json"
		c.Features.EnableHotReload = false
	}
}

func getEnvironment() Environment {
	switch strings.ToLower(os.Getenv("ENVIRONMENT")) {
	case "production", "prod":
		return Production
	case "staging", "stage":
		return Staging
	default:
		return Development
	}
}
