package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tom832/MinerU/internal/domain"
)

func TestLoad_DefaultsWithToken(t *testing.T) {
	t.Setenv("API_TOKEN", "s3cret")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8766, cfg.Server.Port)
	assert.Equal(t, "s3cret", cfg.Auth.Token)
	assert.Equal(t, "images", cfg.Workspace.ImageSubdir)
	assert.Equal(t, "mineru", cfg.Engine.Driver)
	assert.False(t, cfg.UsingDefaultToken())
}

func TestLoad_MissingTokenRejected(t *testing.T) {
	t.Setenv("API_TOKEN", "")
	t.Setenv("ALLOW_DEFAULT_TOKEN", "")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API_TOKEN")
}

func TestLoad_DefaultTokenWhenAllowed(t *testing.T) {
	t.Setenv("API_TOKEN", "")
	t.Setenv("ALLOW_DEFAULT_TOKEN", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultToken, cfg.Auth.Token)
	assert.True(t, cfg.UsingDefaultToken())
}

func TestLoadLocal_NoTokenNeeded(t *testing.T) {
	t.Setenv("API_TOKEN", "")
	t.Setenv("ALLOW_DEFAULT_TOKEN", "")

	cfg, err := LoadLocal("")
	require.NoError(t, err)
	assert.True(t, cfg.UsingDefaultToken())
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlDoc := `
server:
  port: 9000
  max_upload_bytes: 1024
auth:
  token: from-file
engine:
  driver: native
  timeout: 2m
  native:
    languages: [eng, chi_sim]
workspace:
  image_subdir: assets
`
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o644))
	t.Setenv("API_TOKEN", "")
	t.Setenv("SERVER_PORT", "9100")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, int64(1024), cfg.Server.MaxUploadBytes)
	assert.Equal(t, "from-file", cfg.Auth.Token)
	assert.Equal(t, "native", cfg.Engine.Driver)
	assert.Equal(t, 2*time.Minute, cfg.Engine.Timeout)
	assert.Equal(t, []string{"eng", "chi_sim"}, cfg.Engine.Native.Languages)
	assert.Equal(t, "assets", cfg.Workspace.ImageSubdir)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }},
		{name: "bad driver", mutate: func(c *Config) { c.Engine.Driver = "gpu" }},
		{name: "negative timeout", mutate: func(c *Config) { c.Engine.Timeout = -time.Second }},
		{name: "nested image dir", mutate: func(c *Config) { c.Workspace.ImageSubdir = "a/b" }},
		{name: "dotdot image dir", mutate: func(c *Config) { c.Workspace.ImageSubdir = ".." }},
		{name: "ratio out of range", mutate: func(c *Config) { c.Engine.Classify.MinTextPageRatio = 1.5 }},
		{name: "upload limit", mutate: func(c *Config) { c.Server.MaxUploadBytes = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Auth.Token = "x"
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, domain.IsType(err, domain.ErrorTypeConfig))
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeConfig))
}
