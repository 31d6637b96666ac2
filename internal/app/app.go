// Package app assembles the processing stack from configuration. Both the
// HTTP server and the CLI go through here.
package app

import (
	"fmt"

	"github.com/tom832/MinerU/internal/config"
	"github.com/tom832/MinerU/internal/engine"
	"github.com/tom832/MinerU/internal/engine/mineru"
	"github.com/tom832/MinerU/internal/engine/native"
	"github.com/tom832/MinerU/internal/engine/textlayer"
	"github.com/tom832/MinerU/internal/observability"
	"github.com/tom832/MinerU/internal/orchestrator"
	"github.com/tom832/MinerU/internal/upload"
	"github.com/tom832/MinerU/internal/workspace"
)

// Stack holds the long-lived components shared by all requests.
type Stack struct {
	Engine       engine.Engine
	Orchestrator *orchestrator.Orchestrator
	Stager       *upload.Stager
}

// Build returns the components described by cfg.
func Build(cfg *config.Config, logger *observability.Logger) (*Stack, error) {
	eng, err := NewEngine(cfg, logger)
	if err != nil {
		return nil, err
	}

	workspaces := workspace.NewManager(cfg.Workspace.BaseDir, cfg.Workspace.ImageSubdir, logger)
	return &Stack{
		Engine:       eng,
		Orchestrator: orchestrator.New(eng, workspaces, logger, cfg.Engine.Timeout),
		Stager:       upload.NewStager(cfg.Workspace.UploadDir, logger),
	}, nil
}

// NewEngine returns the driver selected by cfg.Engine.Driver.
func NewEngine(cfg *config.Config, logger *observability.Logger) (engine.Engine, error) {
	th := textlayer.Thresholds{
		MinCharsPerPage:  cfg.Engine.Classify.MinCharsPerPage,
		MinTextPageRatio: cfg.Engine.Classify.MinTextPageRatio,
	}

	switch cfg.Engine.Driver {
	case "mineru":
		return mineru.New(mineru.Config{
			Binary:     cfg.Engine.MinerU.Binary,
			Lang:       cfg.Engine.MinerU.Lang,
			ScratchDir: cfg.Workspace.BaseDir,
			Thresholds: th,
		}, logger), nil
	case "native":
		return native.New(native.Config{
			Languages:  cfg.Engine.Native.Languages,
			DPI:        int(cfg.Engine.Native.DPI),
			Thresholds: th,
		}, logger), nil
	default:
		return nil, fmt.Errorf("unknown engine driver %q", cfg.Engine.Driver)
	}
}
