package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/docsync/server/internal/models"
	"github.com/docsync/server/internal/repository"
	"github.com/docsync/server/internal/services"
)

// LinkHandler handles sync-link endpoints
type LinkHandler struct {
	syncService    *services.SyncService
	versionService *services.VersionService
	maxUploadBytes int64
}

// NewLinkHandler creates a new LinkHandler
func NewLinkHandler(syncService *services.SyncService, versionService *services.VersionService, maxUploadBytes int64) *LinkHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 50 << 20
	}
	return &LinkHandler{
		syncService:    syncService,
		versionService: versionService,
		maxUploadBytes: maxUploadBytes,
	}
}

// Create handles POST /api/links
func (h *LinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	link, err := h.syncService.CreateLink(r.Context(), req)
	if err != nil {
		h.respondSyncError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, link)
}

// List handles GET /api/links
func (h *LinkHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repository.LinkFilter{
		StoreID:     r.URL.Query().Get("storeId"),
		SourceClass: models.SourceClass(r.URL.Query().Get("sourceClass")),
	}

	links, err := h.syncService.ListLinks(r.Context(), filter)
	if err != nil {
		log.Printf("Error listing links: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Database error.")
		return
	}

	h.respondJSON(w, http.StatusOK, models.LinkListResponse{
		Links:      links,
		TotalCount: len(links),
	})
}

// Get handles GET /api/links/{id}
func (h *LinkHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	link, err := h.syncService.GetLink(r.Context(), id)
	if err != nil {
		h.respondSyncError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, link)
}

// Sync handles POST /api/links/{id}/sync
func (h *LinkHandler) Sync(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	force := r.URL.Query().Get("force") == "true"

	link, err := h.syncService.Sync(r.Context(), id, force)
	if err != nil {
		h.respondSyncError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, link)
}

// SyncAll handles POST /api/links/sync-all
func (h *LinkHandler) SyncAll(w http.ResponseWriter, r *http.Request) {
	storeID := r.URL.Query().Get("storeId")
	class := models.SourceClass(r.URL.Query().Get("sourceClass"))

	links, err := h.syncService.SyncAll(r.Context(), storeID, class, false)
	if err != nil {
		log.Printf("Error in sync-all: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Database error.")
		return
	}

	resp := models.SyncAllResponse{
		Links:      links,
		TotalCount: len(links),
	}
	for _, link := range links {
		if link.Status == models.StatusError {
			resp.Failed++
		} else {
			resp.Synced++
		}
	}

	h.respondJSON(w, http.StatusOK, resp)
}

// Replace handles POST /api/links/{id}/replace. The uploaded file becomes
// the link's new content and the version counter advances.
func (h *LinkHandler) Replace(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

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

	content, err := io.ReadAll(file)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to read file.")
		return
	}

	result, err := h.versionService.Replace(r.Context(), id, content, header.Filename)
	if err != nil {
		h.respondSyncError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// Versions handles GET /api/links/{id}/versions
func (h *LinkHandler) Versions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	history, err := h.versionService.GetVersionHistory(r.Context(), id)
	if err != nil {
		h.respondSyncError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, history)
}

// Delete handles DELETE /api/links/{id}
func (h *LinkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	deleteFromStore := r.URL.Query().Get("deleteFromStore") != "false"

	resp, err := h.syncService.DeleteLink(r.Context(), id, deleteFromStore)
	if err != nil {
		h.respondSyncError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}

// respondSyncError maps service errors onto HTTP status codes
func (h *LinkHandler) respondSyncError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrLinkNotFound):
		h.respondError(w, http.StatusNotFound, "Sync link not found.")
	case errors.Is(err, models.ErrDuplicateLink):
		h.respondError(w, http.StatusConflict, "A link for this source already exists in the store.")
	case errors.Is(err, models.ErrNotYetSynced):
		h.respondError(w, http.StatusConflict, "Link has never completed a sync; nothing to replace.")
	case errors.Is(err, models.ErrSourceUnavailable):
		h.respondError(w, http.StatusBadGateway, "Source is missing or unreadable.")
	case errors.Is(err, models.ErrUploadTimeout):
		h.respondError(w, http.StatusGatewayTimeout, "Destination index did not confirm the upload in time.")
	case errors.Is(err, models.ErrUploadFailed):
		h.respondError(w, http.StatusBadGateway, "Destination index rejected the upload.")
	case errors.Is(err, models.ErrInvalidSourceClass),
		errors.Is(err, models.ErrInvalidSyncMode),
		errors.Is(err, models.ErrInvalidInterval),
		errors.Is(err, models.ErrEmptyLocator),
		errors.Is(err, models.ErrEmptyStoreID):
		h.respondError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("Unhandled link error: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Internal server error.")
	}
}

func (h *LinkHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *LinkHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, models.ErrorResponse{Error: message})
}
