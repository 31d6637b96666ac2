package textlayer

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tom832/MinerU/internal/domain"
)

func TestDecide(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name   string
		counts []int
		want   domain.Pipeline
	}{
		{name: "no pages", counts: nil, want: domain.PipelineOCR},
		{name: "native text", counts: []int{1200, 900, 1500}, want: domain.PipelineText},
		{name: "scanned", counts: []int{0, 0, 0}, want: domain.PipelineOCR},
		{name: "sparse captions only", counts: []int{12, 8, 0}, want: domain.PipelineOCR},
		{name: "mostly scanned with one dense page", counts: []int{3000, 0, 0, 0}, want: domain.PipelineOCR},
		{name: "half pages with text", counts: []int{400, 0}, want: domain.PipelineText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.counts, th))
		})
	}
}

func TestCountVisible(t *testing.T) {
	assert.Equal(t, 0, countVisible(" \n\t"))
	assert.Equal(t, 5, countVisible("a b\nc d e"))
	assert.Equal(t, 4, countVisible("文档 解析"))
}

func TestClassify_InvalidInput(t *testing.T) {
	_, err := Classify(nil, DefaultThresholds())
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeEngine))

	_, err = Classify([]byte("definitely not a pdf"), DefaultThresholds())
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeEngine))
}

// buildPDF writes a minimal PDF with one page per entry of pages. A non-empty
// entry is drawn as a single Helvetica text run; an empty one only fills a
// rectangle.
func buildPDF(t *testing.T, pages ...string) []byte {
	t.Helper()

	objs := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"", // page tree, filled below
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}
	kids := make([]string, 0, len(pages))
	for _, text := range pages {
		content := "0 0 10 10 re f"
		if text != "" {
			content = fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		}
		pageID := len(objs) + 1
		kids = append(kids, fmt.Sprintf("%d 0 R", pageID))
		objs = append(objs,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", pageID+1),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		)
	}
	objs[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages))

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, obj := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

func TestPageCharCounts_TextLayer(t *testing.T) {
	data := buildPDF(t, strings.Repeat("Lorem ipsum ", 10), "")

	counts, err := PageCharCounts(data)
	require.NoError(t, err)
	assert.Equal(t, []int{100, 0}, counts)
}

func TestClassify_WellFormedPDF(t *testing.T) {
	text := buildPDF(t, strings.Repeat("Lorem ipsum ", 10))
	got, err := Classify(text, DefaultThresholds())
	require.NoError(t, err)
	assert.Equal(t, domain.PipelineText, got)

	scanned := buildPDF(t, "", "")
	got, err = Classify(scanned, DefaultThresholds())
	require.NoError(t, err)
	assert.Equal(t, domain.PipelineOCR, got)
}
