//go:build !native

package native

import (
	"context"
	"errors"
)

// ErrOCRNotBuilt is returned by Tesseract when the binary was built without
// the native tag. Rebuild with -tags native (requires libtesseract and
// leptonica) to recognize text in-process.
var ErrOCRNotBuilt = errors.New("native OCR not built; rebuild with -tags native")

// Tesseract is the stand-in used when gosseract is not linked. TEXT mode
// still works; every recognition fails with ErrOCRNotBuilt.
type Tesseract struct {
	Languages []string
	DPI       int
}

// Recognize implements Recognizer.
func (Tesseract) Recognize(ctx context.Context, png []byte) (string, error) {
	return "", ErrOCRNotBuilt
}
