// Package workspace allocates per-request temporary directory trees.
package workspace

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/tom832/MinerU/internal/domain"
	"github.com/tom832/MinerU/internal/observability"
)

// DefaultImageSubdir is the name of the image directory inside a workspace.
const DefaultImageSubdir = "images"

// Workspace is one request's private directory tree.
type Workspace struct {
	root     string
	imageDir string
	once     sync.Once
}

// Root returns the workspace root directory.
func (w *Workspace) Root() string { return w.root }

// ImageDir returns the full path of the image subdirectory.
func (w *Workspace) ImageDir() string { return w.imageDir }

// ImageDirName returns the image subdirectory's base name, the form Markdown
// asset references are relative to.
func (w *Workspace) ImageDirName() string { return filepath.Base(w.imageDir) }

// Manager creates and removes workspaces.
type Manager struct {
	baseDir     string
	imageSubdir string
	logger      *observability.Logger
}

// NewManager returns a Manager rooted at baseDir (os.TempDir when empty).
func NewManager(baseDir, imageSubdir string, logger *observability.Logger) *Manager {
	if imageSubdir == "" {
		imageSubdir = DefaultImageSubdir
	}
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Manager{baseDir: baseDir, imageSubdir: imageSubdir, logger: logger}
}

// Acquire creates a uniquely named root directory beginning with prefix and
// the image subdirectory inside it. Nothing is left on disk if it fails.
func (m *Manager) Acquire(prefix string) (*Workspace, error) {
	if m.baseDir != "" {
		if err := os.MkdirAll(m.baseDir, 0o755); err != nil {
			return nil, domain.ResourceError("create workspace base directory", err)
		}
	}

	root, err := os.MkdirTemp(m.baseDir, prefix+"*")
	if err != nil {
		return nil, domain.ResourceError("create workspace", err)
	}

	imageDir := filepath.Join(root, m.imageSubdir)
	if err := os.Mkdir(imageDir, 0o755); err != nil {
		_ = os.RemoveAll(root)
		return nil, domain.ResourceError("create image directory", err)
	}

	m.logger.Debug().Str("workspace", root).Msg("workspace acquired")
	return &Workspace{root: root, imageDir: imageDir}, nil
}

// Release removes the workspace tree. Only the first call does anything and
// deletion errors are logged, never returned.
func (m *Manager) Release(w *Workspace) {
	if w == nil {
		return
	}
	w.once.Do(func() {
		if err := os.RemoveAll(w.root); err != nil {
			m.logger.Warn().Err(err).Str("workspace", w.root).Msg("failed to remove workspace")
			return
		}
		m.logger.Debug().Str("workspace", w.root).Msg("workspace released")
	})
}
