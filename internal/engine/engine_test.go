package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tom832/MinerU/internal/domain"
)

func TestImageWriter_Write(t *testing.T) {
	dir := t.TempDir()
	w := NewImageWriter(dir)

	p, err := w.Write("fig_1.png", []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "fig_1.png"), p)
	assert.FileExists(t, p)
	assert.Equal(t, dir, w.Dir())
}

func TestImageWriter_RejectsEscapes(t *testing.T) {
	w := NewImageWriter(t.TempDir())
	for _, name := range []string{"", ".", "..", "../x.png", "a/b.png", `a\b.png`} {
		_, err := w.Write(name, []byte("x"))
		require.Error(t, err, name)
		assert.True(t, domain.IsType(err, domain.ErrorTypeValidation), name)
	}
}

func TestImageWriter_Copy(t *testing.T) {
	src := filepath.Join(t.TempDir(), "src.jpg")
	require.NoError(t, os.WriteFile(src, []byte("jpeg"), 0o644))

	w := NewImageWriter(t.TempDir())
	p, err := w.Copy("out.jpg", src)
	require.NoError(t, err)

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(data))

	_, err = w.Copy("missing.jpg", filepath.Join(t.TempDir(), "nope"))
	assert.True(t, domain.IsType(err, domain.ErrorTypeIO))
}

func TestPages_Markdown(t *testing.T) {
	pages := Pages{
		{Figures: []string{"page_001.png"}, Text: "Title  \r\nline two\n\n\n\nnext"},
		{Text: "   "},
		{Text: "second\fpage"},
	}

	md, err := pages.Markdown("images")
	require.NoError(t, err)
	assert.Equal(t, "![](images/page_001.png)\n\nTitle\nline two\n\nnext\n\nsecond\n\npage\n", md)

	md, err = Pages{}.Markdown("images")
	require.NoError(t, err)
	assert.Empty(t, md)
}

func TestRewriteImageRefs(t *testing.T) {
	md := "![](images/a.jpg)\ntext images/b.jpg\n![fig](images/c.png)"
	got := RewriteImageRefs(md, "images", "assets")
	assert.Equal(t, "![](assets/a.jpg)\ntext images/b.jpg\n![fig](assets/c.png)", got)
	assert.Equal(t, md, RewriteImageRefs(md, "images", "images"))
}
