// Package native is an in-process engine built on MuPDF (go-fitz) for
// rendering and text extraction and Tesseract (gosseract) for recognition.
//
// TEXT mode reads each page's embedded text. OCR mode renders each page and
// recognizes it; a page that yields no text but is not blank is kept as a
// figure so its content still reaches the Markdown.
//
// gosseract is linked only with -tags native. Without it Tesseract always
// fails with ErrOCRNotBuilt and only TEXT mode is usable.
package native

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	fitz "github.com/gen2brain/go-fitz"

	"github.com/tom832/MinerU/internal/domain"
	"github.com/tom832/MinerU/internal/engine"
	"github.com/tom832/MinerU/internal/engine/raster"
	"github.com/tom832/MinerU/internal/engine/textlayer"
	"github.com/tom832/MinerU/internal/observability"
)

// Config holds driver settings.
type Config struct {
	Languages  []string
	DPI        int
	Thresholds textlayer.Thresholds
}

// Recognizer extracts text from a PNG image.
type Recognizer interface {
	Recognize(ctx context.Context, png []byte) (string, error)
}

// Engine implements engine.Engine.
type Engine struct {
	cfg    Config
	ocr    Recognizer
	logger *observability.Logger
}

// New returns an Engine recognizing with Tesseract.
func New(cfg Config, logger *observability.Logger) *Engine {
	return NewWithRecognizer(cfg, Tesseract{Languages: cfg.Languages, DPI: cfg.DPI}, logger)
}

// NewWithRecognizer returns an Engine using rec for OCR.
func NewWithRecognizer(cfg Config, rec Recognizer, logger *observability.Logger) *Engine {
	if logger == nil {
		logger = observability.NopLogger()
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 200
	}
	if cfg.Thresholds == (textlayer.Thresholds{}) {
		cfg.Thresholds = textlayer.DefaultThresholds()
	}
	return &Engine{cfg: cfg, ocr: rec, logger: logger}
}

func (e *Engine) Name() string { return "native" }

// OpenPDF implements engine.Engine.
func (e *Engine) OpenPDF(ctx context.Context, data []byte) (engine.Dataset, error) {
	if len(data) == 0 {
		return nil, domain.EngineError("open pdf", errors.New("empty PDF content"))
	}
	return &pdfDataset{engine: e, data: data}, nil
}

// ReadImages implements engine.Engine.
func (e *Engine) ReadImages(ctx context.Context, paths ...string) ([]engine.Dataset, error) {
	if len(paths) == 0 {
		return nil, domain.EngineError("read images", errors.New("no image paths"))
	}
	out := make([]engine.Dataset, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, domain.EngineError("read image", err)
		}
		out = append(out, &imageDataset{engine: e, name: filepath.Base(p), data: data})
	}
	return out, nil
}

type pdfDataset struct {
	engine *Engine
	data   []byte
}

func (d *pdfDataset) Classify(ctx context.Context) (domain.Pipeline, error) {
	return textlayer.Classify(d.data, d.engine.cfg.Thresholds)
}

func (d *pdfDataset) Apply(ctx context.Context, pipeline domain.Pipeline, images *engine.ImageWriter) (engine.PipeResult, error) {
	e := d.engine

	doc, err := fitz.NewFromMemory(d.data)
	if err != nil {
		return nil, domain.EngineError("open pdf", err)
	}
	defer doc.Close()

	n := doc.NumPage()
	pages := make(engine.Pages, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, domain.EngineError("analysis interrupted", err)
		}

		var page engine.Page
		switch pipeline {
		case domain.PipelineText:
			text, err := doc.Text(i)
			if err != nil {
				return nil, domain.EngineError(fmt.Sprintf("extract text from page %d", i+1), err)
			}
			page.Text = text
		default:
			page, err = e.recognizePage(ctx, doc, i, images)
			if err != nil {
				return nil, err
			}
		}
		pages = append(pages, page)
	}

	e.logger.Debug().
		Str("pipeline", string(pipeline)).
		Int("pages", n).
		Msg("native analysis finished")

	return pages, nil
}

func (e *Engine) recognizePage(ctx context.Context, doc *fitz.Document, i int, images *engine.ImageWriter) (engine.Page, error) {
	img, err := doc.ImageDPI(i, float64(e.cfg.DPI))
	if err != nil {
		return engine.Page{}, domain.EngineError(fmt.Sprintf("render page %d", i+1), err)
	}
	png, err := raster.EncodePNG(img)
	if err != nil {
		return engine.Page{}, err
	}
	text, err := e.ocr.Recognize(ctx, png)
	if err != nil {
		return engine.Page{}, domain.EngineError(fmt.Sprintf("recognize page %d", i+1), err)
	}
	if strings.TrimSpace(text) != "" || raster.IsBlank(img) {
		return engine.Page{Text: text}, nil
	}
	name := fmt.Sprintf("page_%03d.png", i+1)
	if _, err := images.Write(name, png); err != nil {
		return engine.Page{}, err
	}
	return engine.Page{Figures: []string{name}}, nil
}

type imageDataset struct {
	engine *Engine
	name   string
	data   []byte
}

func (d *imageDataset) Classify(ctx context.Context) (domain.Pipeline, error) {
	return domain.PipelineOCR, nil
}

func (d *imageDataset) Apply(ctx context.Context, pipeline domain.Pipeline, images *engine.ImageWriter) (engine.PipeResult, error) {
	img, _, err := raster.Decode(d.data)
	if err != nil {
		return nil, err
	}
	png, err := raster.ToPNG(d.data)
	if err != nil {
		return nil, err
	}
	text, err := d.engine.ocr.Recognize(ctx, png)
	if err != nil {
		return nil, domain.EngineError("recognize image", err)
	}
	if strings.TrimSpace(text) != "" || raster.IsBlank(img) {
		return engine.Pages{{Text: text}}, nil
	}
	name := strings.TrimSuffix(d.name, filepath.Ext(d.name)) + ".png"
	if _, err := images.Write(name, png); err != nil {
		return nil, err
	}
	return engine.Pages{{Figures: []string{name}}}, nil
}
