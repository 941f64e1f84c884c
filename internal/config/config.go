package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigPathEnv names the variable holding the optional YAML config path.
	ConfigPathEnv = "NFTMARKET_CONFIG"

	// OrderID and ProfileID are fixed by the backend: it models a single user.
	OrderID   = "1"
	ProfileID = "1"
)

type Config struct {
	BaseURL        string        `yaml:"base_url"`
	Token          string        `yaml:"token"`
	RequestTimeout time.Duration `yaml:"request_timeout"`

	RetryAttempts    int           `yaml:"retry_attempts"`
	RetryDelay       time.Duration `yaml:"retry_delay"`
	BreakerThreshold int           `yaml:"breaker_threshold"`
	BreakerTimeout   time.Duration `yaml:"breaker_timeout"`

	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
	FanoutLimit       int     `yaml:"fanout_limit"`

	RedisAddr string        `yaml:"redis_addr"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	HTTPPort  string `yaml:"http_port"`
	JWTSecret string `yaml:"jwt_secret"`
	SeedFile  string `yaml:"seed_file"`

	// RateLimit caps requests per client per RateWindow on the mock backend.
	// Zero disables it; it also needs RedisAddr.
	RateLimit  int           `yaml:"rate_limit"`
	RateWindow time.Duration `yaml:"rate_window"`
}

func Default() *Config {
	return &Config{
		BaseURL:           "http://localhost:8080",
		Token:             "dev-token",
		RequestTimeout:    10 * time.Second,
		RetryAttempts:     3,
		RetryDelay:        500 * time.Millisecond,
		BreakerThreshold:  5,
		BreakerTimeout:    10 * time.Second,
		RequestsPerSecond: 20,
		Burst:             10,
		FanoutLimit:       8,
		CacheTTL:          time.Hour,
		LogLevel:          "info",
		LogFormat:         "json",
		HTTPPort:          "8080",
		RateWindow:        time.Minute,
	}
}

// Load applies, in order: defaults, the YAML file at path (or $NFTMARKET_CONFIG),
// a .env file in the working directory, and environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(ConfigPathEnv)
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.BaseURL = getEnv("NFT_BASE_URL", c.BaseURL)
	c.Token = getEnv("NFT_TOKEN", c.Token)
	c.RequestTimeout = getEnvDuration("NFT_REQUEST_TIMEOUT", c.RequestTimeout)
	c.RetryAttempts = getEnvInt("NFT_RETRY_ATTEMPTS", c.RetryAttempts)
	c.RetryDelay = getEnvDuration("NFT_RETRY_DELAY", c.RetryDelay)
	c.BreakerThreshold = getEnvInt("NFT_BREAKER_THRESHOLD", c.BreakerThreshold)
	c.BreakerTimeout = getEnvDuration("NFT_BREAKER_TIMEOUT", c.BreakerTimeout)
	c.RequestsPerSecond = getEnvFloat("NFT_REQUESTS_PER_SECOND", c.RequestsPerSecond)
	c.Burst = getEnvInt("NFT_BURST", c.Burst)
	c.FanoutLimit = getEnvInt("NFT_FANOUT_LIMIT", c.FanoutLimit)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.CacheTTL = getEnvDuration("NFT_CACHE_TTL", c.CacheTTL)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
	c.HTTPPort = getEnv("HTTP_PORT", c.HTTPPort)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.SeedFile = getEnv("SEED_FILE", c.SeedFile)
	c.RateLimit = getEnvInt("RATE_LIMIT", c.RateLimit)
	c.RateWindow = getEnvDuration("RATE_WINDOW", c.RateWindow)
}

func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.BaseURL) == "" {
		errs = append(errs, errors.New("base_url is required"))
	}
	if strings.TrimSpace(c.Token) == "" {
		errs = append(errs, errors.New("token is required"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request_timeout must be positive"))
	}
	if c.RetryAttempts < 1 {
		errs = append(errs, errors.New("retry_attempts must be at least 1"))
	}
	if c.BreakerThreshold < 1 {
		errs = append(errs, errors.New("breaker_threshold must be at least 1"))
	}
	if c.RequestsPerSecond <= 0 || c.Burst < 1 {
		errs = append(errs, errors.New("requests_per_second and burst must be positive"))
	}
	if c.FanoutLimit < 1 {
		errs = append(errs, errors.New("fanout_limit must be at least 1"))
	}
	if c.RateLimit < 0 || (c.RateLimit > 0 && c.RateWindow <= 0) {
		errs = append(errs, errors.New("rate_limit must be non-negative with a positive rate_window"))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
