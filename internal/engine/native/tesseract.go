//go:build native

package native

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract recognizes text with a fresh gosseract client per call, so it
// is safe for concurrent use.
type Tesseract struct {
	Languages []string
	DPI       int
}

// Recognize implements Recognizer.
func (t Tesseract) Recognize(ctx context.Context, png []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c := gosseract.NewClient()
	defer c.Close()

	if len(t.Languages) > 0 {
		if err := c.SetLanguage(t.Languages...); err != nil {
			return "", fmt.Errorf("set languages: %w", err)
		}
	}
	if t.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(t.DPI)); err != nil {
			return "", fmt.Errorf("set dpi: %w", err)
		}
	}
	if err := c.SetImageFromBytes(png); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return strings.TrimSpace(text), nil
}
