// Package mineru drives the MinerU magic-pdf command line tool.
//
// For every Apply the tool runs once in a private scratch directory:
//
//	magic-pdf -p <input> -o <scratch>/out -m txt|ocr [-l <lang>]
//
// and leaves <stem>/<method>/<stem>.md plus an images/ directory beside it.
// The Markdown is read back, the images are copied through the caller's
// ImageWriter and the scratch directory is removed.
package mineru

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tom832/MinerU/internal/domain"
	"github.com/tom832/MinerU/internal/engine"
	"github.com/tom832/MinerU/internal/engine/textlayer"
	"github.com/tom832/MinerU/internal/observability"
)

// outputImageDir is the directory name magic-pdf uses next to the Markdown.
const outputImageDir = "images"

// Config holds driver settings.
type Config struct {
	Binary     string // default "magic-pdf"
	Lang       string // optional OCR language hint
	ScratchDir string // parent of per-run scratch dirs, default os.TempDir()
	Thresholds textlayer.Thresholds
}

// Engine implements engine.Engine on top of magic-pdf.
type Engine struct {
	cfg    Config
	runner Runner
	logger *observability.Logger
}

// New returns an Engine that executes the real binary.
func New(cfg Config, logger *observability.Logger) *Engine {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return NewWithRunner(cfg, execRunner{logger: logger}, logger)
}

// NewWithRunner returns an Engine that executes commands through runner.
func NewWithRunner(cfg Config, runner Runner, logger *observability.Logger) *Engine {
	if logger == nil {
		logger = observability.NopLogger()
	}
	if cfg.Binary == "" {
		cfg.Binary = "magic-pdf"
	}
	if cfg.Thresholds == (textlayer.Thresholds{}) {
		cfg.Thresholds = textlayer.DefaultThresholds()
	}
	return &Engine{cfg: cfg, runner: runner, logger: logger}
}

func (e *Engine) Name() string { return "mineru" }

// OpenPDF wraps raw PDF bytes.
func (e *Engine) OpenPDF(ctx context.Context, data []byte) (engine.Dataset, error) {
	if len(data) == 0 {
		return nil, domain.EngineError("open pdf", errors.New("empty PDF content"))
	}
	return &dataset{engine: e, pdf: data}, nil
}

// ReadImages returns one dataset per existing image path.
func (e *Engine) ReadImages(ctx context.Context, paths ...string) ([]engine.Dataset, error) {
	if len(paths) == 0 {
		return nil, domain.EngineError("read images", errors.New("no image paths"))
	}
	out := make([]engine.Dataset, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, domain.EngineError("read image", err)
		}
		if info.IsDir() {
			return nil, domain.EngineError("read image", fmt.Errorf("%s is a directory", p))
		}
		out = append(out, &dataset{engine: e, imagePath: p})
	}
	return out, nil
}

type dataset struct {
	engine    *Engine
	pdf       []byte
	imagePath string
}

func (d *dataset) Classify(ctx context.Context) (domain.Pipeline, error) {
	if d.pdf == nil {
		return domain.PipelineOCR, nil
	}
	return textlayer.Classify(d.pdf, d.engine.cfg.Thresholds)
}

func (d *dataset) Apply(ctx context.Context, pipeline domain.Pipeline, images *engine.ImageWriter) (engine.PipeResult, error) {
	e := d.engine

	scratch, err := os.MkdirTemp(e.cfg.ScratchDir, "mineru-run-*")
	if err != nil {
		return nil, domain.ResourceError("create scratch directory", err)
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			e.logger.Warn().Err(err).Str("dir", scratch).Msg("failed to remove scratch directory")
		}
	}()

	input := d.imagePath
	if d.pdf != nil {
		input = filepath.Join(scratch, "document.pdf")
		if err := os.WriteFile(input, d.pdf, 0o644); err != nil {
			return nil, domain.IOError("stage pdf", err)
		}
	}

	outDir := filepath.Join(scratch, "out")
	args := []string{"-p", input, "-o", outDir, "-m", string(pipeline)}
	if e.cfg.Lang != "" {
		args = append(args, "-l", e.cfg.Lang)
	}

	if _, errb, err := e.runner.Run(ctx, e.cfg.Binary, args...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		msg := strings.TrimSpace(truncate(string(errb), 512))
		if msg != "" {
			return nil, domain.EngineError(fmt.Sprintf("%s failed (%s)", e.cfg.Binary, msg), err)
		}
		return nil, domain.EngineError(fmt.Sprintf("%s failed", e.cfg.Binary), err)
	}

	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	mdPath, err := findMarkdown(outDir, stem)
	if err != nil {
		return nil, err
	}
	md, err := os.ReadFile(mdPath)
	if err != nil {
		return nil, domain.EngineError("read markdown output", err)
	}

	if err := copyImages(filepath.Join(filepath.Dir(mdPath), outputImageDir), images); err != nil {
		return nil, err
	}

	return result{markdown: string(md)}, nil
}

type result struct {
	markdown string
}

func (r result) Markdown(imageDirName string) (string, error) {
	return engine.RewriteImageRefs(r.markdown, outputImageDir, imageDirName), nil
}

// findMarkdown locates <stem>.md below root, preferring the conventional
// <stem>/<method>/ layout but accepting any depth.
func findMarkdown(root, stem string) (string, error) {
	want := stem + ".md"
	var found string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == want {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", domain.EngineError("scan engine output", err)
	}
	if found == "" {
		return "", domain.EngineError("engine produced no markdown", fmt.Errorf("%s not found", want))
	}
	return found, nil
}

func copyImages(dir string, images *engine.ImageWriter) error {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return domain.EngineError("read engine images", err)
	}
	for _, ent := range entries {
		if !ent.Type().IsRegular() {
			continue
		}
		if _, err := images.Copy(ent.Name(), filepath.Join(dir, ent.Name())); err != nil {
			return err
		}
	}
	return nil
}
