package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tom832/MinerU/internal/domain"
)

// ImageWriter stores extracted figures in a single flat directory.
type ImageWriter struct {
	dir string
}

// NewImageWriter returns a writer targeting dir, which must already exist.
func NewImageWriter(dir string) *ImageWriter {
	return &ImageWriter{dir: dir}
}

// Dir returns the target directory.
func (w *ImageWriter) Dir() string { return w.dir }

// Write stores data under name and returns the full path.
func (w *ImageWriter) Write(name string, data []byte) (string, error) {
	path, err := w.resolve(name)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", domain.IOError(fmt.Sprintf("write image %s", name), err)
	}
	return path, nil
}

// Copy copies the file at src into the directory under name.
func (w *ImageWriter) Copy(name, src string) (string, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return "", domain.IOError(fmt.Sprintf("read image %s", src), err)
	}
	return w.Write(name, data)
}

func (w *ImageWriter) resolve(name string) (string, error) {
	clean := filepath.Base(filepath.Clean(name))
	if name == "" || clean != name || clean == "." || clean == ".." || strings.ContainsAny(name, `/\`) {
		return "", domain.ValidationError(fmt.Sprintf("invalid image name %q", name), nil)
	}
	return filepath.Join(w.dir, clean), nil
}
