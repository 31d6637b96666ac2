package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tom832/MinerU/internal/domain"
)

func TestAcquireRelease(t *testing.T) {
	base := t.TempDir()
	m := NewManager(base, "", nil)

	ws, err := m.Acquire("mineru_pdf_")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(filepath.Base(ws.Root()), "mineru_pdf_"))
	assert.Equal(t, base, filepath.Dir(ws.Root()))
	assert.Equal(t, "images", ws.ImageDirName())
	assert.DirExists(t, ws.ImageDir())

	require.NoError(t, os.WriteFile(filepath.Join(ws.ImageDir(), "a.png"), []byte("x"), 0o644))

	m.Release(ws)
	assert.NoDirExists(t, ws.Root())

	// second release is a no-op
	m.Release(ws)
	m.Release(nil)
}

func TestAcquire_CustomSubdir(t *testing.T) {
	m := NewManager(t.TempDir(), "assets", nil)
	ws, err := m.Acquire("x_")
	require.NoError(t, err)
	defer m.Release(ws)

	assert.Equal(t, "assets", ws.ImageDirName())
}

func TestAcquire_Unique(t *testing.T) {
	m := NewManager(t.TempDir(), "", nil)

	const n = 32
	roots := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ws, err := m.Acquire("mineru_image_")
			if err != nil {
				return
			}
			roots[i] = ws.Root()
			m.Release(ws)
		}(i)
	}
	wg.Wait()

	seen := make(map[string]struct{}, n)
	for _, r := range roots {
		require.NotEmpty(t, r)
		seen[r] = struct{}{}
		assert.NoDirExists(t, r)
	}
	assert.Len(t, seen, n)
}

func TestAcquire_BaseIsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	m := NewManager(file, "", nil)
	_, err := m.Acquire("x_")
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeResource))
}
