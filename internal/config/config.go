package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port"`
	PublicURL   string   `yaml:"public_url"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type StorageConfig struct {
	// Backend is one of "sqlite", "redis" or "memory".
	Backend  string      `yaml:"backend"`
	Key      string      `yaml:"key"`
	Database string      `yaml:"database"`
	Redis    RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type GeminiConfig struct {
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
}

type EnrichmentConfig struct {
	DNSURL  string        `yaml:"dns_url"`
	GeoURL  string        `yaml:"geo_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type ExportConfig struct {
	Directory string `yaml:"directory"`
	// Capture is "static" (render charts in-process) or "browser"
	// (screenshot chart nodes of the running report page).
	Capture        string        `yaml:"capture"`
	CaptureTimeout time.Duration `yaml:"capture_timeout"`
	ChromePath     string        `yaml:"chrome_path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	Enrichment EnrichmentConfig `yaml:"enrichment"`
	Export     ExportConfig     `yaml:"export"`
	Log        LogConfig        `yaml:"log"`
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "127.0.0.1",
			Port:        8080,
			CORSOrigins: []string{"http://localhost:5173"},
		},
		Storage: StorageConfig{
			Backend:  "sqlite",
			Key:      "secuscan_history",
			Database: "secuscan.db",
			Redis: RedisConfig{
				Addr: "127.0.0.1:6379",
			},
		},
		Gemini: GeminiConfig{
			Model:       "gemini-2.0-flash-exp",
			Temperature: 0.4,
		},
		Enrichment: EnrichmentConfig{
			DNSURL:  "https://dns.google/resolve",
			GeoURL:  "https://ipwho.is",
			Timeout: 10 * time.Second,
		},
		Export: ExportConfig{
			Directory:      "./reports",
			Capture:        "static",
			CaptureTimeout: 15 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies a .env
// file and environment overrides. A missing config file is not an error.
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("ignoring .env file", "error", err)
	}
	applyEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	// API_KEY is accepted for deployments that predate GEMINI_API_KEY.
	for _, name := range []string{"GEMINI_API_KEY", "API_KEY"} {
		if v := os.Getenv(name); v != "" {
			cfg.Gemini.APIKey = v
			break
		}
	}
	if v := os.Getenv("SECUSCAN_GEMINI_MODEL"); v != "" {
		cfg.Gemini.Model = v
	}
	if v := os.Getenv("SECUSCAN_STORAGE_BACKEND"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("SECUSCAN_DATABASE"); v != "" {
		cfg.Storage.Database = v
	}
	if v := os.Getenv("SECUSCAN_REDIS_ADDR"); v != "" {
		cfg.Storage.Redis.Addr = v
	}
	if v := os.Getenv("SECUSCAN_REDIS_PASSWORD"); v != "" {
		cfg.Storage.Redis.Password = v
	}
	if v := os.Getenv("SECUSCAN_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("SECUSCAN_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case "sqlite", "redis", "memory":
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	switch c.Export.Capture {
	case "static", "browser":
	default:
		return fmt.Errorf("unknown chart capture mode %q", c.Export.Capture)
	}
	if c.Storage.Key == "" {
		return fmt.Errorf("storage key cannot be empty")
	}
	return nil
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// BaseURL is where report pages can be reached, used for share links and
// browser chart capture.
func (c *Config) BaseURL() string {
	if c.Server.PublicURL != "" {
		return strings.TrimRight(c.Server.PublicURL, "/")
	}
	return "http://" + c.Addr()
}

// LogLevel maps the configured level name to a slog level.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
