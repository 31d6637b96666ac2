package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DocumentKind is the kind of document a request carries.
type DocumentKind string

const (
	KindPDF   DocumentKind = "pdf"
	KindImage DocumentKind = "image"
)

// Label is the display name used in status messages.
func (k DocumentKind) Label() string {
	switch k {
	case KindPDF:
		return "PDF"
	case KindImage:
		return "Image"
	default:
		return string(k)
	}
}

// Pipeline is the processing mode applied to a document.
type Pipeline string

const (
	PipelineText Pipeline = "txt"
	PipelineOCR  Pipeline = "ocr"
)

// SupportedImageFormats is the allow-list for both uploaded images and
// collected image assets (lowercase, no dot).
var SupportedImageFormats = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"bmp":  {},
	"tiff": {},
	"webp": {},
}

// imageUploadExtensions keeps the order used in error messages.
var imageUploadExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".tiff", ".webp"}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// ImageFormat returns the normalized extension of filename and whether it is
// in SupportedImageFormats.
func ImageFormat(filename string) (string, bool) {
	ext := NormalizeExt(filepath.Ext(filename))
	_, ok := SupportedImageFormats[ext]
	return ext, ok
}

// ValidateUpload checks that filename is acceptable for the given kind.
func ValidateUpload(kind DocumentKind, filename string) error {
	if strings.TrimSpace(filename) == "" {
		return ValidationError("file is required", nil)
	}
	switch kind {
	case KindPDF:
		if NormalizeExt(filepath.Ext(filename)) != "pdf" {
			return ValidationError("only PDF files are supported", nil)
		}
	case KindImage:
		if _, ok := ImageFormat(filename); !ok {
			return ValidationError(fmt.Sprintf("only the following formats are supported: %s",
				strings.Join(imageUploadExtensions, ", ")), nil)
		}
	default:
		return ValidationError(fmt.Sprintf("unsupported document kind %q", kind), nil)
	}
	return nil
}

// KindFromFilename maps a filename to a document kind by extension.
func KindFromFilename(filename string) (DocumentKind, error) {
	if NormalizeExt(filepath.Ext(filename)) == "pdf" {
		return KindPDF, nil
	}
	if _, ok := ImageFormat(filename); ok {
		return KindImage, nil
	}
	return "", ValidationError(fmt.Sprintf("unsupported file type: %s", filepath.Base(filename)), nil)
}

// ProcessingRequest is one document to convert. Either Path or Data must be
// set; Filename is used to name Data when it has to be written to disk.
type ProcessingRequest struct {
	Kind         DocumentKind
	Path         string
	Data         []byte
	Filename     string
	ReturnImages bool
}

// Validate checks the request before any workspace is allocated.
func (r ProcessingRequest) Validate() error {
	if r.Kind != KindPDF && r.Kind != KindImage {
		return ValidationError(fmt.Sprintf("unsupported document kind %q", r.Kind), nil)
	}
	if r.Path == "" && len(r.Data) == 0 {
		return ValidationError("document content is required", nil)
	}
	if r.Path == "" && r.Kind == KindImage {
		if _, ok := ImageFormat(r.Filename); !ok {
			return ValidationError("image filename with a supported extension is required", nil)
		}
	}
	return nil
}

// ImageRecord is one extracted image, base64 encoded.
type ImageRecord struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
	Format   string `json:"format"`
}

// ProcessingResult is the only output of the orchestrator. Images is nil
// unless images were requested and processing succeeded.
type ProcessingResult struct {
	Success         bool          `json:"success"`
	MarkdownContent string        `json:"markdown_content"`
	Images          []ImageRecord `json:"images"`
	Message         string        `json:"message"`
}

// Succeeded builds a success result.
func Succeeded(kind DocumentKind, markdown string, images []ImageRecord) ProcessingResult {
	return ProcessingResult{
		Success:         true,
		MarkdownContent: markdown,
		Images:          images,
		Message:         fmt.Sprintf("%s processing completed", kind.Label()),
	}
}

// Failed builds a failure result; markdown and images are always empty.
func Failed(kind DocumentKind, err error) ProcessingResult {
	return ProcessingResult{
		Success: false,
		Message: fmt.Sprintf("%s processing failed: %s", kind.Label(), Describe(err)),
	}
}
