// Package config loads the runtime configuration from config.yaml, .env and
// RISKENGINE_* environment variables.
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
	"gopkg.in/yaml.v2"
)

// DefaultPath is the config file looked up when no path is given.
const DefaultPath = "config.yaml"

type Config struct {
	Http     HTTPConfig     `yaml:"http"`
	Log      LogConfig      `yaml:"log"`
	Model    ModelConfig    `yaml:"model"`
	Decision DecisionConfig `yaml:"decision"`
	Display  DisplayConfig  `yaml:"display"`
}

type HTTPConfig struct {
	Port        int           `yaml:"port"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxBodySize int64         `yaml:"max_body_size"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

type ModelConfig struct {
	Type      string       `yaml:"type"`
	Path      string       `yaml:"path"`
	CacheSize int          `yaml:"cache_size"`
	Watch     bool         `yaml:"watch"`
	Remote    RemoteConfig `yaml:"remote"`
	Onnx      OnnxConfig   `yaml:"onnx"`
}

type RemoteConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

type OnnxConfig struct {
	LibraryPath string `yaml:"library_path"`
}

// DecisionConfig holds the initial widget values for the decision settings.
type DecisionConfig struct {
	DefaultThreshold float64 `yaml:"default_threshold"`
	DefaultCostRatio int     `yaml:"default_cost_ratio"`
}

type DisplayConfig struct {
	Locale string `yaml:"locale"`
}

// Default returns the configuration used when config.yaml is absent.
func Default() Config {
	return Config{
		Http: HTTPConfig{
			Port:        8501,
			Timeout:     30 * time.Second,
			MaxBodySize: 64 << 10,
		},
		Log: LogConfig{
			Level:      "info",
			File:       "logs/riskengine.log",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 28,
			Compress:   true,
		},
		Model: ModelConfig{
			Type:      "logistic_regression",
			Path:      "model.json",
			CacheSize: 1024,
			Watch:     true,
			Remote:    RemoteConfig{Timeout: 5 * time.Second},
		},
		Decision: DecisionConfig{
			DefaultThreshold: 0.5,
			DefaultCostRatio: 2,
		},
		Display: DisplayConfig{Locale: "en"},
	}
}

// Load reads path (DefaultPath when empty). A missing file yields the
// defaults; environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	cfg := Default()

	file, err := os.Open(path)
	switch {
	case err == nil:
		defer file.Close()
		if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("RISKENGINE_MODEL_PATH"); v != "" {
		c.Model.Path = v
	}
	if v := os.Getenv("RISKENGINE_MODEL_TYPE"); v != "" {
		c.Model.Type = v
	}
	if v := os.Getenv("RISKENGINE_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("RISKENGINE_HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RISKENGINE_HTTP_PORT: %w", err)
		}
		c.Http.Port = port
	}
	return nil
}

// applyDefaults fills zero values left by a partial config.yaml.
func (c *Config) applyDefaults() {
	def := Default()
	if c.Http.Port <= 0 {
		c.Http.Port = def.Http.Port
	}
	if c.Http.Timeout <= 0 {
		c.Http.Timeout = def.Http.Timeout
	}
	if c.Http.MaxBodySize <= 0 {
		c.Http.MaxBodySize = def.Http.MaxBodySize
	}
	if strings.TrimSpace(c.Log.Level) == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Model.Type == "" {
		c.Model.Type = def.Model.Type
	}
	if c.Model.Path == "" && c.Model.Type != "remote" {
		c.Model.Path = def.Model.Path
	}
	if c.Model.Remote.Timeout <= 0 {
		c.Model.Remote.Timeout = def.Model.Remote.Timeout
	}
	if c.Decision.DefaultThreshold < 0 || c.Decision.DefaultThreshold > 1 {
		c.Decision.DefaultThreshold = def.Decision.DefaultThreshold
	}
	if c.Decision.DefaultCostRatio == 0 {
		c.Decision.DefaultCostRatio = def.Decision.DefaultCostRatio
	}
	if c.Display.Locale == "" {
		c.Display.Locale = def.Display.Locale
	}
}
