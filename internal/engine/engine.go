// Package engine defines the contract of the document-understanding backend
// and the helpers shared by its drivers.
package engine

import (
	"context"

	"github.com/tom832/MinerU/internal/domain"
)

// Engine turns documents into datasets that can be analysed.
type Engine interface {
	// Name identifies the driver in logs.
	Name() string

	// OpenPDF wraps raw PDF bytes as a dataset.
	OpenPDF(ctx context.Context, data []byte) (Dataset, error)

	// ReadImages loads image files. Each path yields one dataset.
	ReadImages(ctx context.Context, paths ...string) ([]Dataset, error)
}

// Dataset is one loaded document.
type Dataset interface {
	// Classify decides whether the document has a usable text layer.
	Classify(ctx context.Context) (domain.Pipeline, error)

	// Apply runs layout analysis in the given mode. Extracted figures are
	// written through images.
	Apply(ctx context.Context, pipeline domain.Pipeline, images *ImageWriter) (PipeResult, error)
}

// PipeResult is the output of Apply.
type PipeResult interface {
	// Markdown renders the document. Asset references are relative to
	// imageDirName.
	Markdown(imageDirName string) (string, error)
}
