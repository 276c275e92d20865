package handler

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/http"

	"sigs.k8s.io/yaml"

	"github.com/privatechef/concierge/internal/api/middleware"
	"github.com/privatechef/concierge/internal/api/response"
)

// OpenAPIHandler serves the embedded OpenAPI document as JSON. The document
// is converted and hashed once, when the handler is built.
type OpenAPIHandler struct {
	doc  []byte
	etag string
	err  error
}

// NewOpenAPIHandler converts yamlDoc to JSON. A conversion failure is logged
// here and reported as a 500 on every request.
func NewOpenAPIHandler(yamlDoc []byte) *OpenAPIHandler {
	doc, err := yaml.YAMLToJSON(yamlDoc)
	if err != nil {
		slog.Error("OpenAPI document is not valid YAML", "error", err)
		return &OpenAPIHandler{err: err}
	}
	sum := sha256.Sum256(doc)
	return &OpenAPIHandler{
		doc:  doc,
		etag: `"` + hex.EncodeToString(sum[:8]) + `"`,
	}
}

// ETag returns the strong validator served with the document, or "" when the
// document could not be converted.
func (h *OpenAPIHandler) ETag() string {
	return h.etag
}

func (h *OpenAPIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.err != nil {
		response.Err(w, http.StatusInternalServerError, response.CodeInternal, "Failed to render OpenAPI document", middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("ETag", h.etag)
	w.Header().Set("Cache-Control", "public, max-age=300")
	if r.Header.Get("If-None-Match") == h.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(h.doc); err != nil {
		slog.Error("failed to write OpenAPI response", "error", err)
	}
}
