// Package classify chooses the processing pipeline for a document.
package classify

import (
	"context"
	"errors"
	"fmt"

	"github.com/tom832/MinerU/internal/domain"
	"github.com/tom832/MinerU/internal/engine"
)

// Select returns the pipeline to apply to ds. Images always take OCR and
// the dataset is not consulted. PDFs use whatever the engine's own
// classification reports, which must be TEXT or OCR.
func Select(ctx context.Context, kind domain.DocumentKind, ds engine.Dataset) (domain.Pipeline, error) {
	switch kind {
	case domain.KindImage:
		return domain.PipelineOCR, nil
	case domain.KindPDF:
	default:
		return "", domain.ValidationError(fmt.Sprintf("unsupported document kind %q", kind), nil)
	}

	p, err := ds.Classify(ctx)
	if err != nil {
		var de *domain.DomainError
		if errors.As(err, &de) {
			return "", err
		}
		return "", domain.EngineError("classify document", err)
	}
	switch p {
	case domain.PipelineText, domain.PipelineOCR:
		return p, nil
	default:
		return "", domain.EngineError(fmt.Sprintf("unknown pipeline %q", p), nil)
	}
}
