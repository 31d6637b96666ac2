package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/tom832/MinerU/internal/domain"
)

func sample() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for x := 0; x < 8; x++ {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	return img
}

func encode(t *testing.T, format string, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "jpeg":
		err = jpeg.Encode(&buf, img, nil)
	case "bmp":
		err = bmp.Encode(&buf, img)
	case "tiff":
		err = tiff.Encode(&buf, img, nil)
	}
	require.NoError(t, err)
	return buf.Bytes()
}

func TestDecode_SupportedFormats(t *testing.T) {
	for _, format := range []string{"png", "jpeg", "bmp", "tiff"} {
		t.Run(format, func(t *testing.T) {
			img, got, err := Decode(encode(t, format, sample()))
			require.NoError(t, err)
			assert.Equal(t, format, got)
			assert.Equal(t, 8, img.Bounds().Dx())
			assert.Equal(t, 4, img.Bounds().Dy())
		})
	}
}

func TestDecode_Invalid(t *testing.T) {
	_, _, err := Decode(nil)
	assert.True(t, domain.IsType(err, domain.ErrorTypeEngine))

	_, _, err = Decode([]byte("not an image"))
	assert.True(t, domain.IsType(err, domain.ErrorTypeEngine))
}

func TestToPNG(t *testing.T) {
	src := encode(t, "png", sample())
	out, err := ToPNG(src)
	require.NoError(t, err)
	assert.Equal(t, src, out, "png input passes through")

	out, err = ToPNG(encode(t, "bmp", sample()))
	require.NoError(t, err)
	_, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
}

func TestIsBlank(t *testing.T) {
	assert.False(t, IsBlank(sample()))

	white := image.NewRGBA(image.Rect(0, 0, 5, 5))
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			white.Set(x, y, color.White)
		}
	}
	assert.True(t, IsBlank(white))
	assert.True(t, IsBlank(image.NewRGBA(image.Rectangle{})))
}
