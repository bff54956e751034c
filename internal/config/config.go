package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server      ServerConfig    `yaml:"server"`
	Maps        MapsConfig      `yaml:"maps"`
	Routing     RoutingConfig   `yaml:"routing"`
	Discovery   DiscoveryConfig `yaml:"discovery"`
	Sessions    SessionsConfig  `yaml:"sessions"`
	Redis       RedisConfig     `yaml:"redis"`
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
	CORS        CORSConfig      `yaml:"cors"`
	Logging     LoggingConfig   `yaml:"logging"`
	Tracing     TracingConfig   `yaml:"tracing"`
	Environment string          `yaml:"environment"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
}

// MapsConfig configures the Google Maps Platform client.
type MapsConfig struct {
	APIKey    string  `yaml:"api_key"`
	BaseURL   string  `yaml:"base_url"`
	RateLimit float64 `yaml:"rate_limit"` // requests per second
	Language  string  `yaml:"language"`
	// Readiness polling runs on a fixed interval with a bounded attempt count.
	ReadyInterval    time.Duration `yaml:"ready_interval"`
	ReadyMaxAttempts int           `yaml:"ready_max_attempts"`
}

type RoutingConfig struct {
	Region          string        `yaml:"region"`
	MaxWaypoints    int           `yaml:"max_waypoints"`
	ProviderTimeout time.Duration `yaml:"provider_timeout"`
}

type DiscoveryConfig struct {
	Region       string        `yaml:"region"`
	RegionName   string        `yaml:"region_name"`
	Types        []string      `yaml:"types"`
	Debounce     time.Duration `yaml:"debounce"`
	QueryTimeout time.Duration `yaml:"query_timeout"`
}

// SessionsConfig bounds the stateful planner sessions held by the server.
type SessionsConfig struct {
	TTL         time.Duration `yaml:"ttl"`
	MaxSessions int           `yaml:"max_sessions"`
}

// RedisConfig enables the place details cache when Address is set.
type RedisConfig struct {
	Address  string        `yaml:"address"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type RateLimitConfig struct {
	PerMinute int `yaml:"per_minute"` // 0 disables limiting
	// X-Forwarded-For is only honoured for peers inside these ranges.
	TrustedProxyCIDRs []string `yaml:"trusted_proxy_cidrs"`
}

// CORSConfig controls which browser origins may call the API.
type CORSConfig struct {
	AllowAllOrigins bool     `yaml:"allow_all_origins"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json|console
}

type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"` // stdout|otlp|none
	ServiceName  string  `yaml:"service_name"`
	OTLPEndpoint string  `yaml:"otlp_endpoint"`
	SampleRate   float64 `yaml:"sample_rate"`
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Maps: MapsConfig{
			BaseURL:          "https://maps.googleapis.com/maps/api",
			RateLimit:        10,
			Language:         "en",
			ReadyInterval:    100 * time.Millisecond,
			ReadyMaxAttempts: 50,
		},
		Routing: RoutingConfig{
			Region:          "lk",
			MaxWaypoints:    25,
			ProviderTimeout: 15 * time.Second,
		},
		Discovery: DiscoveryConfig{
			Region:       "lk",
			RegionName:   "Sri Lanka",
			Debounce:     300 * time.Millisecond,
			QueryTimeout: 10 * time.Second,
		},
		Sessions: SessionsConfig{
			TTL:         30 * time.Minute,
			MaxSessions: 10000,
		},
		Redis: RedisConfig{
			TTL: 24 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			PerMinute: 120,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Exporter:     "stdout",
			ServiceName:  "wanderlanka-planner",
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
		Environment: "development",
	}
}

// Load reads configuration from the environment on top of the defaults.
func Load() (Config, error) {
	return LoadFile("")
}

// LoadFile reads an optional YAML file over the defaults, then applies
// environment overrides. Environment variables always win.
func LoadFile(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Host = getEnv("SERVER_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnvInt("SERVER_PORT", cfg.Server.Port)
	cfg.Server.ShutdownTimeout = getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", cfg.Server.ShutdownTimeout)
	cfg.Server.MaxBodyBytes = int64(getEnvInt("SERVER_MAX_BODY_BYTES", int(cfg.Server.MaxBodyBytes)))

	cfg.Maps.APIKey = getEnv("MAPS_API_KEY", cfg.Maps.APIKey)
	cfg.Maps.BaseURL = getEnv("MAPS_BASE_URL", cfg.Maps.BaseURL)
	cfg.Maps.RateLimit = getEnvFloat("MAPS_RATE_LIMIT", cfg.Maps.RateLimit)
	cfg.Maps.Language = getEnv("MAPS_LANGUAGE", cfg.Maps.Language)
	cfg.Maps.ReadyInterval = getEnvDuration("MAPS_READY_INTERVAL", cfg.Maps.ReadyInterval)
	cfg.Maps.ReadyMaxAttempts = getEnvInt("MAPS_READY_MAX_ATTEMPTS", cfg.Maps.ReadyMaxAttempts)

	cfg.Routing.Region = getEnv("ROUTING_REGION", cfg.Routing.Region)
	cfg.Routing.MaxWaypoints = getEnvInt("ROUTING_MAX_WAYPOINTS", cfg.Routing.MaxWaypoints)
	cfg.Routing.ProviderTimeout = getEnvDuration("ROUTING_PROVIDER_TIMEOUT", cfg.Routing.ProviderTimeout)

	cfg.Discovery.Region = getEnv("DISCOVERY_REGION", cfg.Discovery.Region)
	cfg.Discovery.RegionName = getEnv("DISCOVERY_REGION_NAME", cfg.Discovery.RegionName)
	if types := getEnv("DISCOVERY_TYPES", ""); types != "" {
		cfg.Discovery.Types = splitList(types)
	}
	cfg.Discovery.Debounce = getEnvDuration("DISCOVERY_DEBOUNCE", cfg.Discovery.Debounce)
	cfg.Discovery.QueryTimeout = getEnvDuration("DISCOVERY_QUERY_TIMEOUT", cfg.Discovery.QueryTimeout)

	cfg.Sessions.TTL = getEnvDuration("SESSION_TTL", cfg.Sessions.TTL)
	cfg.Sessions.MaxSessions = getEnvInt("SESSION_MAX", cfg.Sessions.MaxSessions)

	cfg.Redis.Address = getEnv("REDIS_ADDRESS", cfg.Redis.Address)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.TTL = getEnvDuration("REDIS_TTL", cfg.Redis.TTL)

	cfg.RateLimit.PerMinute = getEnvInt("RATE_LIMIT_PER_MINUTE", cfg.RateLimit.PerMinute)
	if cidrs := getEnv("TRUSTED_PROXY_CIDRS", ""); cidrs != "" {
		cfg.RateLimit.TrustedProxyCIDRs = splitList(cidrs)
	}

	if origins := getEnv("CORS_ALLOWED_ORIGINS", ""); origins != "" {
		cfg.CORS.AllowedOrigins = splitList(origins)
	}

	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("LOG_FORMAT", cfg.Logging.Format)

	cfg.Tracing.Enabled = getEnvBool("TRACING_ENABLED", cfg.Tracing.Enabled)
	cfg.Tracing.Exporter = getEnv("TRACING_EXPORTER", cfg.Tracing.Exporter)
	cfg.Tracing.ServiceName = getEnv("TRACING_SERVICE_NAME", cfg.Tracing.ServiceName)
	cfg.Tracing.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Tracing.OTLPEndpoint)
	cfg.Tracing.SampleRate = getEnvFloat("TRACING_SAMPLE_RATE", cfg.Tracing.SampleRate)

	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
	// Any origin is accepted in development unless an explicit list is set.
	cfg.CORS.AllowAllOrigins = getEnvBool("CORS_ALLOW_ALL",
		cfg.CORS.AllowAllOrigins || (cfg.Environment == "development" && len(cfg.CORS.AllowedOrigins) == 0))
}

// Validate checks required settings and ranges.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Maps.APIKey) == "" {
		return fmt.Errorf("MAPS_API_KEY is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid SERVER_PORT %d", c.Server.Port)
	}
	if c.Maps.RateLimit <= 0 {
		return fmt.Errorf("MAPS_RATE_LIMIT must be positive, got %v", c.Maps.RateLimit)
	}
	if c.Maps.ReadyMaxAttempts < 1 {
		return fmt.Errorf("MAPS_READY_MAX_ATTEMPTS must be at least 1")
	}
	if c.Routing.MaxWaypoints < 0 {
		return fmt.Errorf("ROUTING_MAX_WAYPOINTS cannot be negative")
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return fmt.Errorf("TRACING_SAMPLE_RATE must be between 0.0 and 1.0")
	}
	return nil
}

// Addr is the listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
