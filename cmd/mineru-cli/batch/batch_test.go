package batch

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tom832/MinerU/internal/domain"
)

type fakeProcessor struct {
	inFlight atomic.Int32
	peak     atomic.Int32

	mu   sync.Mutex
	seen []domain.ProcessingRequest
}

func (p *fakeProcessor) Process(ctx context.Context, req domain.ProcessingRequest) domain.ProcessingResult {
	n := p.inFlight.Add(1)
	defer p.inFlight.Add(-1)
	for {
		old := p.peak.Load()
		if n <= old || p.peak.CompareAndSwap(old, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)

	p.mu.Lock()
	p.seen = append(p.seen, req)
	p.mu.Unlock()

	if filepath.Base(req.Path) == "broken.pdf" {
		return domain.Failed(req.Kind, domain.EngineError("bad xref", nil))
	}
	var images []domain.ImageRecord
	if req.ReturnImages {
		images = []domain.ImageRecord{{
			Filename: "fig.png",
			Content:  base64.StdEncoding.EncodeToString([]byte("png-bytes")),
			Format:   "png",
		}}
	}
	return domain.Succeeded(req.Kind, "# "+req.Filename+"\n\n![](images/fig.png)\n", images)
}

func TestRun(t *testing.T) {
	out := t.TempDir()
	files := []string{"/in/a.pdf", "/in/scan.PNG", "/in/broken.pdf", "/in/notes.txt", "/other/a.pdf"}
	proc := &fakeProcessor{}

	var mu sync.Mutex
	var done int
	items := Run(context.Background(), proc, files, Options{
		OutDir:       out,
		ReturnImages: true,
		Concurrency:  2,
	}, func(Item) {
		mu.Lock()
		done++
		mu.Unlock()
	})

	require.Len(t, items, len(files))
	assert.Equal(t, len(files), done)
	assert.LessOrEqual(t, proc.peak.Load(), int32(2))

	for i, f := range files {
		assert.Equal(t, f, items[i].Source)
	}

	require.NoError(t, items[0].Err)
	assert.Equal(t, filepath.Join(out, "a", "a.md"), items[0].Markdown)
	assert.Equal(t, 1, items[0].Images)
	md, err := os.ReadFile(items[0].Markdown)
	require.NoError(t, err)
	assert.Equal(t, "# a.pdf\n\n![](images/fig.png)\n", string(md))
	img, err := os.ReadFile(filepath.Join(out, "a", "images", "fig.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(img))

	require.NoError(t, items[1].Err)
	assert.Equal(t, filepath.Join(out, "scan", "scan.md"), items[1].Markdown)

	require.Error(t, items[2].Err)
	assert.Equal(t, "PDF processing failed: bad xref", items[2].Err.Error())

	require.Error(t, items[3].Err)
	assert.Contains(t, items[3].Err.Error(), "unsupported file type")
	assert.True(t, domain.IsType(items[3].Err, domain.ErrorTypeValidation))

	require.NoError(t, items[4].Err)
	assert.Equal(t, filepath.Join(out, "a_2", "a_2.md"), items[4].Markdown)

	// notes.txt never reaches the processor
	assert.Len(t, proc.seen, 4)
	for _, req := range proc.seen {
		assert.True(t, req.ReturnImages)
	}
}

func TestRun_WithoutImages(t *testing.T) {
	out := t.TempDir()
	items := Run(context.Background(), &fakeProcessor{}, []string{"x.pdf"}, Options{OutDir: out}, nil)

	require.Len(t, items, 1)
	require.NoError(t, items[0].Err)
	assert.Zero(t, items[0].Images)
	assert.NoDirExists(t, filepath.Join(out, "x", "images"))
}

func TestWrite_BadBase64(t *testing.T) {
	res := domain.Succeeded(domain.KindPDF, "x", []domain.ImageRecord{{Filename: "a.png", Content: "!!", Format: "png"}})
	_, _, err := Write(t.TempDir(), "doc", "images", res)
	assert.Error(t, err)
}

func TestOutputNames(t *testing.T) {
	got := OutputNames([]string{"a/report.pdf", "b/report.pdf", "report_2.pdf", "c/report.png", ".pdf"})
	assert.Equal(t, []string{"report", "report_2", "report_2_2", "report_3", "document"}, got)
}
