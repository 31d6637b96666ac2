package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tom832/MinerU/internal/config"
)

func TestBuild_MinerUDriver(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Workspace.BaseDir = t.TempDir()

	stack, err := Build(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "mineru", stack.Engine.Name())
	assert.NotNil(t, stack.Orchestrator)
	assert.NotNil(t, stack.Stager)
}

func TestNewEngine_UnknownDriver(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Engine.Driver = "paddle"

	_, err := NewEngine(cfg, nil)
	assert.Error(t, err)
}

func TestNewEngine_NativeDriver(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Engine.Driver = "native"

	eng, err := NewEngine(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "native", eng.Name())
}
