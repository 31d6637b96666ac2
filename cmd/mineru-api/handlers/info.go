package handlers

import "net/http"

// Version is the API version reported by the descriptor.
const Version = "2.0.0"

// InfoHandler serves the unauthenticated descriptor and liveness endpoints.
type InfoHandler struct {
	port int
}

// NewInfoHandler creates a new info handler. port is the configured listen
// port, reported by the descriptor.
func NewInfoHandler(port int) *InfoHandler {
	return &InfoHandler{port: port}
}

// ServiceInfo is the GET / payload.
type ServiceInfo struct {
	Message        string            `json:"message"`
	Description    string            `json:"description"`
	Version        string            `json:"version"`
	Endpoints      map[string]string `json:"endpoints"`
	Authentication string            `json:"authentication"`
	Port           int               `json:"port"`
}

// Root handles GET /.
func (h *InfoHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ServiceInfo{
		Message:     "MinerU API service v" + Version,
		Description: "Converts PDF and image documents to Markdown",
		Version:     Version,
		Endpoints: map[string]string{
			"process_pdf":   "POST /process/pdf",
			"process_image": "POST /process/image",
		},
		Authentication: "Bearer token",
		Port:           h.port,
	})
}

// Health handles GET /health.
func (h *InfoHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "MinerU API",
	})
}
