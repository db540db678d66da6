package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/docsync/server/internal/models"
	"github.com/docsync/server/internal/services"
)

// DocumentHandler handles direct document-store endpoints
type DocumentHandler struct {
	documentService *services.DocumentService
	maxUploadBytes  int64
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documentService *services.DocumentService, maxUploadBytes int64) *DocumentHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 50 << 20
	}
	return &DocumentHandler{
		documentService: documentService,
		maxUploadBytes:  maxUploadBytes,
	}
}

// Upload handles POST /api/documents/upload. Duplicates by content hash are
// reported in the outcome rather than rejected; pass force=true to store a
// second copy anyway.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		h.respondError(w, http.StatusBadRequest, "Request must be multipart/form-data.")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "No file provided or file is empty.")
		return
	}
	defer file.Close()

	storeID := r.FormValue("storeId")
	if storeID == "" {
		h.respondError(w, http.StatusBadRequest, "storeId form value is required.")
		return
	}

	filename := r.FormValue("filename")
	if filename == "" {
		filename = header.Filename
	}

	mimeType := header.Header.Get("Content-Type")
	force := r.URL.Query().Get("force") == "true" || r.FormValue("force") == "true"

	content, err := io.ReadAll(file)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to read file.")
		return
	}

	outcome, err := h.documentService.Upload(r.Context(), storeID, content, filename, mimeType, force)
	if err != nil {
		log.Printf("Error uploading document: %v", err)
		h.respondError(w, http.StatusBadGateway, "Destination index rejected the upload.")
		return
	}

	status := http.StatusCreated
	if outcome.IsConflict() {
		status = http.StatusOK
	}
	h.respondJSON(w, status, outcome)
}

// List handles GET /api/documents
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	storeID := r.URL.Query().Get("storeId")

	docs, err := h.documentService.List(r.Context(), storeID)
	if err != nil {
		log.Printf("Error listing documents: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Database error.")
		return
	}

	h.respondJSON(w, http.StatusOK, models.DocumentListResponse{
		Documents:  docs,
		TotalCount: len(docs),
	})
}

// Delete handles DELETE /api/documents/{id}
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	found, err := h.documentService.Delete(r.Context(), id)
	if err != nil {
		log.Printf("Error deleting document: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Database error.")
		return
	}
	if !found {
		h.respondError(w, http.StatusNotFound, "Document not found.")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

func (h *DocumentHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *DocumentHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, models.ErrorResponse{Error: message})
}
