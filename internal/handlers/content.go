package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"linkmark-backend/internal/middleware"
	"linkmark-backend/internal/models"
	"linkmark-backend/internal/services"
)

type ContentHandler struct {
	contentService *services.ContentService
}

func NewContentHandler(contentService *services.ContentService) *ContentHandler {
	return &ContentHandler{contentService: contentService}
}

// parseContentType reads the content_type query parameter. The empty string
// is returned as-is so callers can treat it as "not specified".
func parseContentType(r *http.Request) (models.ContentType, bool) {
	raw := r.URL.Query().Get("content_type")
	contentType := models.ContentType(raw)
	return contentType, raw == "" || contentType.Valid()
}

// pathUUID parses a UUID path parameter, writing a 400 on failure.
func pathUUID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid "+param, r))
		return uuid.Nil, false
	}
	return id, true
}

// requirePathUser ensures the user_id path parameter names the token's user.
func requirePathUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	pathUser, ok := pathUUID(w, r, "user_id")
	if !ok {
		return uuid.Nil, false
	}
	if pathUser != middleware.GetUserID(r.Context()) {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Access denied", r))
		return uuid.Nil, false
	}
	return pathUser, true
}

func (h *ContentHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	contentType, ok := parseContentType(r)
	if !ok || contentType == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "content_type must be 'video' or 'post'", r))
		return
	}

	var req models.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	metadata, err := h.contentService.Analyze(r.Context(), contentType, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, metadata)
}

func (h *ContentHandler) Save(w http.ResponseWriter, r *http.Request) {
	contentType, ok := parseContentType(r)
	if !ok || contentType == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "content_type must be 'video' or 'post'", r))
		return
	}

	var req models.SaveContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	userID := middleware.GetUserID(r.Context())
	resp, err := h.contentService.Save(r.Context(), userID, contentType, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *ContentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	contentID, ok := pathUUID(w, r, "content_id")
	if !ok {
		return
	}

	if err := h.contentService.Delete(r.Context(), contentID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Content deleted"})
}

func (h *ContentHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePathUser(w, r)
	if !ok {
		return
	}

	contents, err := h.contentService.ListAll(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, contents)
}

func (h *ContentHandler) ListByType(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePathUser(w, r)
	if !ok {
		return
	}

	contentType, typeOK := parseContentType(r)
	if !typeOK || contentType == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "content_type must be 'video' or 'post'", r))
		return
	}

	contents, err := h.contentService.ListByType(r.Context(), userID, contentType)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, contents)
}

func (h *ContentHandler) ListBookmarked(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePathUser(w, r)
	if !ok {
		return
	}

	contents, err := h.contentService.ListBookmarked(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, contents)
}

func (h *ContentHandler) ToggleBookmark(w http.ResponseWriter, r *http.Request) {
	contentID, ok := pathUUID(w, r, "content_id")
	if !ok {
		return
	}

	if err := h.contentService.ToggleBookmark(r.Context(), contentID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Bookmark toggled"})
}

func (h *ContentHandler) Edit(w http.ResponseWriter, r *http.Request) {
	contentID, ok := pathUUID(w, r, "content_id")
	if !ok {
		return
	}
	userID, ok := requirePathUser(w, r)
	if !ok {
		return
	}

	var req models.EditContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	tags, err := h.contentService.Edit(r.Context(), userID, contentID, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.EditContentResponse{Tags: tags})
}

func (h *ContentHandler) Search(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePathUser(w, r)
	if !ok {
		return
	}

	keyword := chi.URLParam(r, "keyword")
	contents, err := h.contentService.Search(r.Context(), userID, keyword)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, contents)
}
