// Package config loads service settings from defaults, an optional YAML
// file and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds every setting the commands read.
type Config struct {
	Port        string   `yaml:"port"`
	Environment string   `yaml:"environment"`
	AppVersion  string   `yaml:"app_version"`
	CORSOrigins []string `yaml:"cors_origins"`
	LogLevel    string   `yaml:"log_level"`

	MaxFileSizeMB   int `yaml:"max_file_size_mb"`
	RateLimitUpload int `yaml:"rate_limit_upload"` // requests per minute
	RateLimitGPA    int `yaml:"rate_limit_gpa"`    // requests per minute

	StrictQuality   bool    `yaml:"strict_quality"`
	MinQualityRatio float64 `yaml:"min_quality_ratio"`

	NATSURL        string `yaml:"nats_url"`
	MetricsEnabled bool   `yaml:"metrics_enabled"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Port:        "8000",
		Environment: "development",
		AppVersion:  "1.0.0",
		CORSOrigins: []string{
			"http://localhost:3000",
			"http://localhost:3001",
			"http://localhost:5173",
		},
		LogLevel:        "info",
		MaxFileSizeMB:   50,
		RateLimitUpload: 10,
		RateLimitGPA:    50,
		StrictQuality:   true,
		MinQualityRatio: 0.8,
		MetricsEnabled:  true,
	}
}

// Load reads an optional .env file, then the YAML file named by
// GRADEPOINT_CONFIG, then environment overrides.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("GRADEPOINT_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = envOr("PORT", c.Port)
	c.Environment = envOr("ENVIRONMENT", c.Environment)
	c.AppVersion = envOr("APP_VERSION", c.AppVersion)
	c.LogLevel = envOr("LOG_LEVEL", c.LogLevel)
	c.NATSURL = envOr("NATS_URL", c.NATSURL)
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = splitList(v)
	}
	c.MaxFileSizeMB = envInt("MAX_FILE_SIZE_MB", c.MaxFileSizeMB)
	c.RateLimitUpload = envInt("RATE_LIMIT_UPLOAD", c.RateLimitUpload)
	c.RateLimitGPA = envInt("RATE_LIMIT_GPA", c.RateLimitGPA)
	c.StrictQuality = envBool("STRICT_QUALITY", c.StrictQuality)
	c.MinQualityRatio = envFloat("MIN_QUALITY_RATIO", c.MinQualityRatio)
	c.MetricsEnabled = envBool("METRICS_ENABLED", c.MetricsEnabled)
}

// Validate rejects settings no command could run with.
func (c Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("port is required"))
	}
	if c.MaxFileSizeMB <= 0 {
		errs = append(errs, fmt.Errorf("max_file_size_mb must be positive, got %d", c.MaxFileSizeMB))
	}
	if c.RateLimitUpload <= 0 || c.RateLimitGPA <= 0 {
		errs = append(errs, errors.New("rate limits must be positive"))
	}
	if c.MinQualityRatio < 0 || c.MinQualityRatio > 1 {
		errs = append(errs, fmt.Errorf("min_quality_ratio must be within [0, 1], got %g", c.MinQualityRatio))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// MaxFileSizeBytes is the upload ceiling in bytes.
func (c Config) MaxFileSizeBytes() int64 {
	return int64(c.MaxFileSizeMB) * 1024 * 1024
}

// IsTesting reports whether TESTING=true, which disables rate limits.
func (c Config) IsTesting() bool {
	return strings.EqualFold(os.Getenv("TESTING"), "true")
}

// SlogLevel maps LogLevel onto a slog.Level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// NewLogger builds the JSON logger every command installs as default.
func (c Config) NewLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: c.SlogLevel()}))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
