// Package normalize turns engine image output into transport-safe records.
package normalize

import (
	"encoding/base64"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tom832/MinerU/internal/domain"
	"github.com/tom832/MinerU/internal/observability"
)

// Normalizer collects and encodes image assets.
type Normalizer struct {
	logger *observability.Logger
}

// New returns a Normalizer.
func New(logger *observability.Logger) *Normalizer {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Normalizer{logger: logger}
}

// CollectImages returns a record for every regular file in dir whose
// extension is in domain.SupportedImageFormats, in os.ReadDir (filename) order.
// A missing directory yields an empty slice. Files that cannot be read, or
// that are empty, are skipped.
func (n *Normalizer) CollectImages(dir string) []domain.ImageRecord {
	records := []domain.ImageRecord{}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			n.logger.Warn().Err(err).Str("dir", dir).Msg("failed to list image directory")
		}
		return records
	}

	for _, ent := range entries {
		if !ent.Type().IsRegular() {
			continue
		}
		format, ok := domain.ImageFormat(ent.Name())
		if !ok {
			continue
		}
		content := n.EncodeFile(filepath.Join(dir, ent.Name()))
		if content == "" {
			n.logger.Warn().Str("file", ent.Name()).Msg("skipping unreadable image")
			continue
		}
		records = append(records, domain.ImageRecord{
			Filename: ent.Name(),
			Content:  content,
			Format:   format,
		})
	}
	return records
}

// EncodeFile returns the base64 encoding of the file at path, or "" if it
// cannot be read.
func (n *Normalizer) EncodeFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		n.logger.Warn().Err(domain.AssetError("read image", err)).Str("path", path).Msg("failed to encode image")
		return ""
	}
	return base64.StdEncoding.EncodeToString(data)
}
