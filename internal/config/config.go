// Package config provides configuration loading for the MinerU service.
// Supports YAML files, .env files, and environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/tom832/MinerU/internal/domain"
)

// DefaultToken is the placeholder token used only when explicitly allowed.
const DefaultToken = "your-secret-token-here"

// Config holds all configuration for the MinerU service.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Auth          AuthConfig          `yaml:"auth"`
	Engine        EngineConfig        `yaml:"engine"`
	Workspace     WorkspaceConfig     `yaml:"workspace"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
	RequestTimeout   time.Duration `yaml:"request_timeout"`
	MaxUploadBytes   int64         `yaml:"max_upload_bytes"`
	CORSOrigins      []string      `yaml:"cors_origins"`
}

// AuthConfig holds the static bearer token.
type AuthConfig struct {
	Token             string `yaml:"token"`
	AllowDefaultToken bool   `yaml:"allow_default_token"`
}

// EngineConfig selects and tunes the document engine.
type EngineConfig struct {
	Driver   string         `yaml:"driver"` // mineru or native
	Timeout  time.Duration  `yaml:"timeout"`
	MinerU   MinerUConfig   `yaml:"mineru"`
	Native   NativeConfig   `yaml:"native"`
	Classify ClassifyConfig `yaml:"classify"`
}

// MinerUConfig holds settings for the magic-pdf CLI driver.
type MinerUConfig struct {
	Binary string `yaml:"binary"`
	Lang   string `yaml:"lang"`
}

// NativeConfig holds settings for the in-process driver.
type NativeConfig struct {
	Languages []string `yaml:"languages"`
	DPI       float64  `yaml:"dpi"`
}

// ClassifyConfig holds the text-layer thresholds.
type ClassifyConfig struct {
	MinCharsPerPage  int     `yaml:"min_chars_per_page"`
	MinTextPageRatio float64 `yaml:"min_text_page_ratio"`
}

// WorkspaceConfig holds temporary storage settings.
type WorkspaceConfig struct {
	BaseDir     string `yaml:"base_dir"`
	ImageSubdir string `yaml:"image_subdir"`
	UploadDir   string `yaml:"upload_dir"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	ServiceName string `yaml:"service_name"`
}

// Load reads configuration from a YAML file, a .env file and the environment.
// Values already present in the environment win over .env entries.
func Load(path string) (*Config, error) {
	return load(path, false)
}

// LoadLocal is Load for local tools that never serve HTTP, so no API token
// is required.
func LoadLocal(path string) (*Config, error) {
	return load(path, true)
}

func load(path string, local bool) (*Config, error) {
	_ = godotenv.Load() // .env is optional

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, domain.ConfigError("read config file", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, domain.ConfigError("parse config file", err)
		}
	}

	applyEnvOverrides(cfg)
	if local {
		cfg.Auth.AllowDefaultToken = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults for development.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8766,
			ReadTimeout:      60 * time.Second,
			WriteTimeout:     15 * time.Minute,
			IdleTimeout:      120 * time.Second,
			GracefulShutdown: 30 * time.Second,
			RequestTimeout:   15 * time.Minute,
			MaxUploadBytes:   200 << 20,
			CORSOrigins:      []string{"*"},
		},
		Engine: EngineConfig{
			Driver: "mineru",
			MinerU: MinerUConfig{
				Binary: "magic-pdf",
			},
			Native: NativeConfig{
				Languages: []string{"eng"},
				DPI:       200,
			},
			Classify: ClassifyConfig{
				MinCharsPerPage:  50,
				MinTextPageRatio: 0.5,
			},
		},
		Workspace: WorkspaceConfig{
			ImageSubdir: "images",
			UploadDir:   os.TempDir(),
		},
		Observability: ObservabilityConfig{
			LogLevel:    "info",
			LogFormat:   "console",
			ServiceName: "mineru-api",
		},
	}
}

// Validate checks the configuration for errors. An empty token is filled
// with DefaultToken only when AllowDefaultToken is set.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return domain.ConfigError(fmt.Sprintf("invalid server port: %d", c.Server.Port), nil)
	}

	if c.Server.MaxUploadBytes <= 0 {
		return domain.ConfigError("max_upload_bytes must be positive", nil)
	}

	if c.Engine.Driver != "mineru" && c.Engine.Driver != "native" {
		return domain.ConfigError(fmt.Sprintf("invalid engine driver: %s", c.Engine.Driver), nil)
	}

	if c.Engine.Timeout < 0 {
		return domain.ConfigError("engine timeout must not be negative", nil)
	}

	if c.Engine.Classify.MinTextPageRatio < 0 || c.Engine.Classify.MinTextPageRatio > 1 {
		return domain.ConfigError("min_text_page_ratio must be between 0 and 1", nil)
	}

	sub := c.Workspace.ImageSubdir
	if sub == "" || sub == "." || sub == ".." || strings.ContainsAny(sub, `/\`) {
		return domain.ConfigError(fmt.Sprintf("invalid image_subdir: %q", sub), nil)
	}

	if c.Auth.Token == "" {
		if !c.Auth.AllowDefaultToken {
			return domain.ConfigError("API_TOKEN is required (set allow_default_token to use the placeholder)", nil)
		}
		c.Auth.Token = DefaultToken
	}

	return nil
}

// UsingDefaultToken reports whether the placeholder token is active.
func (c *Config) UsingDefaultToken() bool {
	return c.Auth.Token == DefaultToken
}

// Addr returns host:port for the HTTP listener.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("API_TOKEN"); v != "" {
		cfg.Auth.Token = v
	}

	if v := os.Getenv("ALLOW_DEFAULT_TOKEN"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Auth.AllowDefaultToken = b
		}
	}

	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}

	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("ENGINE_DRIVER"); v != "" {
		cfg.Engine.Driver = v
	}

	if v := os.Getenv("ENGINE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Engine.Timeout = d
		}
	}

	if v := os.Getenv("MINERU_BINARY"); v != "" {
		cfg.Engine.MinerU.Binary = v
	}

	if v := os.Getenv("WORKSPACE_DIR"); v != "" {
		cfg.Workspace.BaseDir = v
	}

	if v := os.Getenv("UPLOAD_DIR"); v != "" {
		cfg.Workspace.UploadDir = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
}
