// Package config provides runtime configuration for the feed service and CLI.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every knob. Values come from an optional YAML file named by
// CONFIG_FILE and are then overridden by individual environment variables.
type Config struct {
	Port            string
	PageSize        int
	LoadDelay       time.Duration
	ProductsFile    string
	StockFile       string
	DatabaseURL     string
	LogLevel        string
	MetricsEnabled  bool
	MetricsToken    string
	SessionLimit    int
	SessionIdle     time.Duration
	TrustProxy      bool
	ShutdownTimeout time.Duration
}

type fileConfig struct {
	Port             string `yaml:"port"`
	PageSize         int    `yaml:"page_size"`
	LoadDelayMs      *int   `yaml:"load_delay_ms"`
	ProductsFile     string `yaml:"products_file"`
	StockFile        string `yaml:"stock_file"`
	DatabaseURL      string `yaml:"database_url"`
	LogLevel         string `yaml:"log_level"`
	MetricsEnabled   *bool  `yaml:"metrics_enabled"`
	MetricsToken     string `yaml:"metrics_token"`
	SessionLimit     *int   `yaml:"session_limit_per_min"`
	SessionIdleS     *int   `yaml:"session_idle_timeout_s"`
	TrustProxy       *bool  `yaml:"trust_proxy"`
	ShutdownTimeoutS int    `yaml:"shutdown_timeout_s"`
}

func Default() Config {
	return Config{
		Port:            "8084",
		PageSize:        10,
		LoadDelay:       500 * time.Millisecond,
		LogLevel:        "info",
		MetricsEnabled:  true,
		SessionLimit:    30,
		SessionIdle:     5 * time.Minute,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load starts from Default, applies CONFIG_FILE when set, then env overrides.
func Load() (Config, error) {
	cfg := Default()

	if path := getenv("CONFIG_FILE", ""); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}

	cfg.applyEnv()

	if cfg.PageSize <= 0 {
		return Config{}, fmt.Errorf("page size must be positive, got %d", cfg.PageSize)
	}
	if cfg.LoadDelay < 0 {
		cfg.LoadDelay = 0
	}
	if cfg.SessionIdle < 0 {
		cfg.SessionIdle = 0
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var f fileConfig
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if f.Port != "" {
		c.Port = f.Port
	}
	if f.PageSize != 0 {
		c.PageSize = f.PageSize
	}
	if f.LoadDelayMs != nil {
		c.LoadDelay = time.Duration(*f.LoadDelayMs) * time.Millisecond
	}
	if f.ProductsFile != "" {
		c.ProductsFile = f.ProductsFile
	}
	if f.StockFile != "" {
		c.StockFile = f.StockFile
	}
	if f.DatabaseURL != "" {
		c.DatabaseURL = f.DatabaseURL
	}
	if f.LogLevel != "" {
		c.LogLevel = f.LogLevel
	}
	if f.MetricsEnabled != nil {
		c.MetricsEnabled = *f.MetricsEnabled
	}
	if f.MetricsToken != "" {
		c.MetricsToken = f.MetricsToken
	}
	if f.SessionLimit != nil {
		c.SessionLimit = *f.SessionLimit
	}
	if f.SessionIdleS != nil {
		c.SessionIdle = time.Duration(*f.SessionIdleS) * time.Second
	}
	if f.TrustProxy != nil {
		c.TrustProxy = *f.TrustProxy
	}
	if f.ShutdownTimeoutS > 0 {
		c.ShutdownTimeout = time.Duration(f.ShutdownTimeoutS) * time.Second
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getenv("PORT", c.Port)
	c.PageSize = atoienv("PAGE_SIZE", c.PageSize)
	c.LoadDelay = durenvms("LOAD_DELAY_MS", c.LoadDelay)
	c.ProductsFile = getenv("PRODUCTS_FILE", c.ProductsFile)
	c.StockFile = getenv("STOCK_FILE", c.StockFile)
	c.DatabaseURL = getenv("DATABASE_URL", c.DatabaseURL)
	c.LogLevel = getenv("LOG_LEVEL", c.LogLevel)
	c.MetricsEnabled = boolenv("METRICS_ENABLED", c.MetricsEnabled)
	c.MetricsToken = getenv("METRICS_TOKEN", c.MetricsToken)
	c.SessionLimit = atoienv("SESSION_LIMIT_PER_MIN", c.SessionLimit)
	c.SessionIdle = durenvs("SESSION_IDLE_TIMEOUT", c.SessionIdle)
	c.TrustProxy = boolenv("TRUST_PROXY", c.TrustProxy)
	c.ShutdownTimeout = durenvs("SHUTDOWN_TIMEOUT", c.ShutdownTimeout)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func boolenv(key string, def bool) bool {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func durenvms(key string, def time.Duration) time.Duration {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	ms, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

func durenvs(key string, def time.Duration) time.Duration {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	sec, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return time.Duration(sec) * time.Second
}
