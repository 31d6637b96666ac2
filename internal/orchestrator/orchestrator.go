// Package orchestrator runs one document through the engine inside a
// private workspace and reports the outcome as a domain.ProcessingResult.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/tom832/MinerU/internal/classify"
	"github.com/tom832/MinerU/internal/domain"
	"github.com/tom832/MinerU/internal/engine"
	"github.com/tom832/MinerU/internal/normalize"
	"github.com/tom832/MinerU/internal/observability"
	"github.com/tom832/MinerU/internal/workspace"
)

// Workspace name prefixes, one per document kind.
const (
	PDFWorkspacePrefix   = "mineru_pdf_"
	ImageWorkspacePrefix = "mineru_image_"
)

// Orchestrator is safe for concurrent use; requests share nothing but the
// engine and the managers, which hold no per-request state.
type Orchestrator struct {
	engine     engine.Engine
	workspaces *workspace.Manager
	normalizer *normalize.Normalizer
	logger     *observability.Logger
	timeout    time.Duration
}

// New returns an Orchestrator. A positive timeout bounds the engine work of
// each request.
func New(eng engine.Engine, workspaces *workspace.Manager, logger *observability.Logger, timeout time.Duration) *Orchestrator {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Orchestrator{
		engine:     eng,
		workspaces: workspaces,
		normalizer: normalize.New(logger),
		logger:     logger,
		timeout:    timeout,
	}
}

type outcome struct {
	pipeline domain.Pipeline
	markdown string
	images   []domain.ImageRecord
}

// Process converts req. It never panics and never returns an error: every
// failure is reported through a result with Success false. The workspace
// is removed before Process returns.
func (o *Orchestrator) Process(ctx context.Context, req domain.ProcessingRequest) (res domain.ProcessingResult) {
	log := o.logger.WithContext(ctx).WithOperation("process").WithStr("kind", string(req.Kind))
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("panic", fmt.Sprint(r)).
				Str("stack", string(debug.Stack())).
				Msg("recovered from panic during processing")
			res = domain.Failed(req.Kind, domain.EngineError(fmt.Sprintf("unexpected fault: %v", r), nil))
		}
	}()

	if err := req.Validate(); err != nil {
		log.Warn().Err(err).Msg("rejected request")
		return domain.Failed(req.Kind, err)
	}

	ws, err := o.workspaces.Acquire(prefixFor(req.Kind))
	if err != nil {
		log.Error().Err(err).Msg("failed to acquire workspace")
		return domain.Failed(req.Kind, err)
	}
	defer o.workspaces.Release(ws)

	log = log.WithStr("workspace", filepath.Base(ws.Root()))

	out, err := o.run(ctx, req, ws)
	if err != nil {
		log.Error().
			Err(err).
			Dur("duration", time.Since(start)).
			Msg("processing failed")
		return domain.Failed(req.Kind, err)
	}

	log.Info().
		Str("engine", o.engine.Name()).
		Str("pipeline", string(out.pipeline)).
		Int("markdown_bytes", len(out.markdown)).
		Int("images", len(out.images)).
		Dur("duration", time.Since(start)).
		Msg("processing completed")

	return domain.Succeeded(req.Kind, out.markdown, out.images)
}

func (o *Orchestrator) run(ctx context.Context, req domain.ProcessingRequest, ws *workspace.Workspace) (outcome, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	ds, err := o.load(ctx, req, ws)
	if err != nil {
		return outcome{}, err
	}

	pipeline, err := classify.Select(ctx, req.Kind, ds)
	if err != nil {
		return outcome{}, err
	}

	result, err := ds.Apply(ctx, pipeline, engine.NewImageWriter(ws.ImageDir()))
	if err != nil {
		return outcome{}, engineErr(ctx, "apply "+string(pipeline)+" pipeline", err)
	}

	markdown, err := result.Markdown(ws.ImageDirName())
	if err != nil {
		return outcome{}, engineErr(ctx, "render markdown", err)
	}

	out := outcome{pipeline: pipeline, markdown: markdown}
	if req.ReturnImages {
		out.images = o.normalizer.CollectImages(ws.ImageDir())
	}
	return out, nil
}

func (o *Orchestrator) load(ctx context.Context, req domain.ProcessingRequest, ws *workspace.Workspace) (engine.Dataset, error) {
	switch req.Kind {
	case domain.KindPDF:
		data := req.Data
		if req.Path != "" {
			var err error
			if data, err = os.ReadFile(req.Path); err != nil {
				return nil, domain.IOError("read document", err)
			}
		}
		ds, err := o.engine.OpenPDF(ctx, data)
		if err != nil {
			return nil, engineErr(ctx, "open pdf", err)
		}
		return ds, nil

	default:
		path := req.Path
		if path == "" {
			path = filepath.Join(ws.Root(), filepath.Base(req.Filename))
			if err := os.WriteFile(path, req.Data, 0o644); err != nil {
				return nil, domain.IOError("stage image", err)
			}
		}
		sets, err := o.engine.ReadImages(ctx, path)
		if err != nil {
			return nil, engineErr(ctx, "read image", err)
		}
		if len(sets) == 0 {
			return nil, domain.EngineError("engine returned no dataset for image", nil)
		}
		return sets[0], nil
	}
}

// engineErr keeps typed errors as they are and tags anything else as an
// engine failure, naming the deadline when it was the cause.
func engineErr(ctx context.Context, op string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domain.EngineError(op+" timed out", err)
	}
	var de *domain.DomainError
	if errors.As(err, &de) {
		return err
	}
	return domain.EngineError(op, err)
}

func prefixFor(kind domain.DocumentKind) string {
	if kind == domain.KindImage {
		return ImageWorkspacePrefix
	}
	return PDFWorkspacePrefix
}
