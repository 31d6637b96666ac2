// Package handlers provides HTTP handlers for the MinerU API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tom832/MinerU/internal/domain"
	"github.com/tom832/MinerU/internal/observability"
	"github.com/tom832/MinerU/internal/upload"
)

// multipartMemory is how much of a multipart body is held in memory before
// the rest spills to temporary files.
const multipartMemory = 32 << 20

// Processor converts one staged document.
type Processor interface {
	Process(ctx context.Context, req domain.ProcessingRequest) domain.ProcessingResult
}

// ProcessHandler handles document upload requests.
type ProcessHandler struct {
	logger         *observability.Logger
	processor      Processor
	stager         *upload.Stager
	maxUploadBytes int64
}

// NewProcessHandler creates a new process handler.
func NewProcessHandler(logger *observability.Logger, processor Processor, stager *upload.Stager, maxUploadBytes int64) *ProcessHandler {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &ProcessHandler{
		logger:         logger,
		processor:      processor,
		stager:         stager,
		maxUploadBytes: maxUploadBytes,
	}
}

// ProcessPDF handles POST /process/pdf.
func (h *ProcessHandler) ProcessPDF(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, domain.KindPDF)
}

// ProcessImage handles POST /process/image.
func (h *ProcessHandler) ProcessImage(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, domain.KindImage)
}

func (h *ProcessHandler) handle(w http.ResponseWriter, r *http.Request, kind domain.DocumentKind) {
	ctx := r.Context()
	log := h.logger.WithContext(ctx)

	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if tooLarge(err) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload too large",
				fmt.Sprintf("limit is %d bytes", h.maxUploadBytes))
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form", err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required", "")
		return
	}
	defer file.Close()

	returnImages, err := parseFormBool(r.FormValue("return_images"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid return_images", err.Error())
		return
	}

	if err := domain.ValidateUpload(kind, header.Filename); err != nil {
		log.Warn().Str("filename", header.Filename).Err(err).Msg("rejected upload")
		writeError(w, http.StatusBadRequest, domain.Describe(err), "")
		return
	}

	path, cleanup, err := h.stager.Stage(header.Filename, file)
	defer cleanup()
	if err != nil {
		log.Error().Err(err).Str("filename", header.Filename).Msg("failed to stage upload")
		writeError(w, http.StatusInternalServerError, "processing failed", domain.Describe(err))
		return
	}

	log.Info().
		Str("kind", string(kind)).
		Str("filename", header.Filename).
		Int64("size", header.Size).
		Bool("return_images", returnImages).
		Msg("processing upload")

	result := h.processor.Process(ctx, domain.ProcessingRequest{
		Kind:         kind,
		Path:         path,
		Filename:     header.Filename,
		ReturnImages: returnImages,
	})

	writeJSON(w, http.StatusOK, result)
}

func tooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

// parseFormBool accepts the usual spellings of a form boolean. An empty
// value means false.
func parseFormBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0", "false", "f", "no", "n", "off":
		return false, nil
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	default:
		return false, fmt.Errorf("%q is not a valid boolean", v)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message, detail string) {
	resp := map[string]string{
		"error":   strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_")),
		"message": message,
	}
	if detail != "" {
		resp["detail"] = detail
	}
	writeJSON(w, status, resp)
}
