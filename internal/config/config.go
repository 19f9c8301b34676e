package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/vytor/codearena/internal/logger"
)

// DevelopmentAPIBase is used when no API base is configured in development.
const DevelopmentAPIBase = "http://localhost:5000"

type Config struct {
	Addr                    string        `yaml:"addr"`
	AppEnv                  string        `yaml:"app_env"`
	APIBaseURL              string        `yaml:"api_base_url"`
	PublicOrigin            string        `yaml:"public_origin"`
	DBPath                  string        `yaml:"db_path"`
	LogLevel                string        `yaml:"log_level"`
	HTTPTimeout             time.Duration `yaml:"http_timeout"`
	LeaderboardPollInterval time.Duration `yaml:"leaderboard_poll_interval"`
	ResultDisplay           time.Duration `yaml:"result_display"`
	SessionTTL              time.Duration `yaml:"session_ttl"`
	SessionSweepInterval    time.Duration `yaml:"session_sweep_interval"`
	WorkerCount             int           `yaml:"worker_count"`
	QueueSize               int           `yaml:"queue_size"`
	RateLimitRPS            float64       `yaml:"rate_limit_rps"`
	RateLimitBurst          int           `yaml:"rate_limit_burst"`
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() Config {
	return Config{
		Addr:                    ":8080",
		AppEnv:                  "development",
		DBPath:                  "file:codearena.db",
		LogLevel:                "INFO",
		HTTPTimeout:             15 * time.Second,
		LeaderboardPollInterval: 30 * time.Second,
		ResultDisplay:           10 * time.Second,
		SessionTTL:              12 * time.Hour,
		SessionSweepInterval:    10 * time.Minute,
		WorkerCount:             2,
		QueueSize:               64,
		RateLimitRPS:            2,
		RateLimitBurst:          5,
	}
}

// Load reads configuration from a .env file (if present), an optional YAML
// file named by CONFIG_FILE, and environment variables, in that order of
// increasing precedence.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			log.Printf("ignoring config file %s: %v", path, err)
		}
	}

	cfg.Addr = envOr("ADDR", cfg.Addr)
	cfg.AppEnv = envOr("APP_ENV", cfg.AppEnv)
	cfg.APIBaseURL = envOr("API_BASE_URL", cfg.APIBaseURL)
	cfg.PublicOrigin = envOr("PUBLIC_ORIGIN", cfg.PublicOrigin)
	cfg.DBPath = envOr("DB_PATH", cfg.DBPath)
	cfg.LogLevel = envOr("LOG_LEVEL", cfg.LogLevel)
	cfg.HTTPTimeout = envDurationOr("HTTP_TIMEOUT", cfg.HTTPTimeout)
	cfg.LeaderboardPollInterval = envDurationOr("LEADERBOARD_POLL_INTERVAL", cfg.LeaderboardPollInterval)
	cfg.ResultDisplay = envDurationOr("RESULT_DISPLAY", cfg.ResultDisplay)
	cfg.SessionTTL = envDurationOr("SESSION_TTL", cfg.SessionTTL)
	cfg.SessionSweepInterval = envDurationOr("SESSION_SWEEP_INTERVAL", cfg.SessionSweepInterval)
	cfg.WorkerCount = envIntOr("WORKER_COUNT", cfg.WorkerCount)
	cfg.QueueSize = envIntOr("QUEUE_SIZE", cfg.QueueSize)
	cfg.RateLimitRPS = envFloatOr("RATE_LIMIT_RPS", cfg.RateLimitRPS)
	cfg.RateLimitBurst = envIntOr("RATE_LIMIT_BURST", cfg.RateLimitBurst)

	cfg.APIBaseURL = ResolveAPIBaseURL(cfg.APIBaseURL, cfg.AppEnv, cfg.PublicOrigin)
	return cfg
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}

// ResolveAPIBaseURL picks the challenge API base: an explicit value wins,
// development falls back to the local API server, anything else is treated
// as same-origin with the portal.
func ResolveAPIBaseURL(explicit, env, publicOrigin string) string {
	if explicit != "" {
		return strings.TrimRight(explicit, "/")
	}
	if IsDevelopment(env) {
		return DevelopmentAPIBase
	}
	return strings.TrimRight(publicOrigin, "/")
}

// IsDevelopment reports whether env names a local development setup.
func IsDevelopment(env string) bool {
	switch strings.ToLower(env) {
	case "", "dev", "development", "local":
		return true
	}
	return false
}

// Validate checks the configuration for values the portal cannot run with.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("ADDR cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL or PUBLIC_ORIGIN must be set outside development")
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("API_BASE_URL must be an absolute http(s) URL, got %q", c.APIBaseURL)
	}
	if !logger.ValidLevel(c.LogLevel) {
		return fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR, got %q", c.LogLevel)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.LeaderboardPollInterval < time.Second {
		return fmt.Errorf("LEADERBOARD_POLL_INTERVAL must be at least 1s, got %v", c.LeaderboardPollInterval)
	}
	if c.ResultDisplay <= 0 {
		return fmt.Errorf("RESULT_DISPLAY must be positive")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.SessionSweepInterval <= 0 {
		return fmt.Errorf("SESSION_SWEEP_INTERVAL must be positive")
	}
	if c.WorkerCount < 1 || c.WorkerCount > 64 {
		return fmt.Errorf("WORKER_COUNT must be between 1 and 64, got %d", c.WorkerCount)
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("QUEUE_SIZE must be at least 1, got %d", c.QueueSize)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envFloatOr(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("invalid value for %s=%q, using default %g", key, v, def)
	}
	return def
}

func envDurationOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("invalid value for %s=%q, using default %v", key, v, def)
	}
	return def
}
