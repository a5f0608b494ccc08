package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/10664kls/monthlyp-annotator-api/internal/annotate"
	"github.com/joho/godotenv"
	"github.com/labstack/gommon/bytes"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Port            string
	LogLevel        zapcore.Level
	TempDir         string
	UploadLimit     string
	RateLimit       rate.Limit
	AnnotateRoute   string
	LayoutFile      string
	ShutdownTimeout time.Duration
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present; real env vars win.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	level, err := zapcore.ParseLevel(getEnv("LOG_LEVEL", "debug"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	cfg := Config{
		Port:            getEnv("PORT", "8890"),
		LogLevel:        level,
		TempDir:         getEnv("TEMP_DIR", os.TempDir()),
		UploadLimit:     getEnv("UPLOAD_LIMIT", "32M"),
		RateLimit:       rate.Limit(getFloatEnv("RATE_LIMIT", 30)),
		AnnotateRoute:   getEnv("ANNOTATE_ROUTE", "/merge-sc-monthlyp"),
		LayoutFile:      getEnv("LAYOUT_FILE", ""),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 15*time.Second),
	}

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return Config{}, fmt.Errorf("PORT must be a number, got %q", cfg.Port)
	}
	if n, err := bytes.Parse(cfg.UploadLimit); err != nil || n <= 0 {
		return Config{}, fmt.Errorf("UPLOAD_LIMIT must be a size such as 32M, got %q", cfg.UploadLimit)
	}
	if cfg.RateLimit <= 0 {
		return Config{}, errors.New("RATE_LIMIT must be positive")
	}
	if !strings.HasPrefix(cfg.AnnotateRoute, "/") {
		cfg.AnnotateRoute = "/" + cfg.AnnotateRoute
	}
	cfg.AnnotateRoute = strings.TrimSuffix(cfg.AnnotateRoute, "/")
	if cfg.AnnotateRoute == "" {
		return Config{}, errors.New("ANNOTATE_ROUTE must not be the root path")
	}

	return cfg, nil
}

// Layout returns the annotation layout: defaults, overlaid with LayoutFile when set.
func (c Config) Layout() (annotate.Layout, error) {
	if c.LayoutFile == "" {
		return annotate.DefaultLayout(), nil
	}
	return LoadLayout(c.LayoutFile)
}

// LoadLayout decodes a YAML layout file; unset fields take their defaults.
func LoadLayout(path string) (annotate.Layout, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return annotate.Layout{}, fmt.Errorf("failed to read layout file %s: %w", path, err)
	}

	var layout annotate.Layout
	if err := yaml.UnmarshalStrict(b, &layout); err != nil {
		return annotate.Layout{}, fmt.Errorf("failed to parse layout file %s: %w", path, err)
	}

	layout = layout.WithDefaults()
	if err := layout.Validate(); err != nil {
		return annotate.Layout{}, fmt.Errorf("invalid layout file %s: %w", path, err)
	}

	return layout, nil
}

func getEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getFloatEnv(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
