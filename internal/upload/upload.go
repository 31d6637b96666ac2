// Package upload stages uploaded files on disk for the length of a request.
package upload

import (
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/tom832/MinerU/internal/domain"
	"github.com/tom832/MinerU/internal/observability"
)

// Stager writes uploads into one shared directory. Every staged file gets a
// fresh UUID prefix, so concurrent uploads with the same name never collide.
type Stager struct {
	dir    string
	logger *observability.Logger
}

// NewStager returns a Stager writing into dir (os.TempDir when empty).
func NewStager(dir string, logger *observability.Logger) *Stager {
	if dir == "" {
		dir = os.TempDir()
	}
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Stager{dir: dir, logger: logger}
}

// Stage copies r to <dir>/<uuid>_<base filename>. The returned cleanup
// removes the file and must be called once processing is over; it is safe to
// call when Stage failed.
func (s *Stager) Stage(filename string, r io.Reader) (string, func(), error) {
	noop := func() {}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", noop, domain.IOError("create upload directory", err)
	}

	path := filepath.Join(s.dir, uuid.NewString()+"_"+filepath.Base(filename))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", noop, domain.IOError("create upload file", err)
	}

	cleanup := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.logger.Warn().Err(err).Str("path", path).Msg("failed to remove staged upload")
		}
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		cleanup()
		return "", noop, domain.IOError("write upload file", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", noop, domain.IOError("write upload file", err)
	}
	return path, cleanup, nil
}
