// Package raster decodes the accepted upload formats and re-encodes them as
// PNG for recognition.
package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	// decoders for every accepted upload format
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/tom832/MinerU/internal/domain"
)

// Decode parses data in any supported format and reports the detected
// format name.
func Decode(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", domain.EngineError("decode image", fmt.Errorf("empty image content"))
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", domain.EngineError("decode image", err)
	}
	return img, format, nil
}

// ToPNG returns data unchanged when it is already PNG, otherwise decodes
// and re-encodes it.
func ToPNG(data []byte) ([]byte, error) {
	img, format, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if format == "png" {
		return data, nil
	}
	return EncodePNG(img)
}

// EncodePNG encodes img.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, domain.EngineError("encode png", err)
	}
	return buf.Bytes(), nil
}

// IsBlank reports whether every pixel of img has the same color, which is
// how an empty page renders.
func IsBlank(img image.Image) bool {
	b := img.Bounds()
	if b.Empty() {
		return true
	}
	r0, g0, b0, a0 := img.At(b.Min.X, b.Min.Y).RGBA()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			if r != r0 || g != g0 || bl != b0 || a != a0 {
				return false
			}
		}
	}
	return true
}
