package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"linkmark-backend/internal/models"
	"linkmark-backend/internal/services"
)

type TagHandler struct {
	tagService *services.TagService
}

func NewTagHandler(tagService *services.TagService) *TagHandler {
	return &TagHandler{tagService: tagService}
}

func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePathUser(w, r)
	if !ok {
		return
	}

	tags, err := h.tagService.ListUserTags(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tags)
}

func (h *TagHandler) ListContents(w http.ResponseWriter, r *http.Request) {
	tagID, err := uuid.Parse(chi.URLParam(r, "tag_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid tag_id", r))
		return
	}

	var contentType *models.ContentType
	if raw := r.URL.Query().Get("content_type"); raw != "" {
		ct := models.ContentType(raw)
		if !ct.Valid() {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "content_type must be 'video' or 'post'", r))
			return
		}
		contentType = &ct
	}

	contents, err := h.tagService.ListTagContents(r.Context(), tagID, contentType)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, contents)
}

func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePathUser(w, r)
	if !ok {
		return
	}

	var req models.CreateTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	tag, err := h.tagService.Create(r.Context(), userID, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, tag)
}

func (h *TagHandler) Update(w http.ResponseWriter, r *http.Request) {
	tagID, err := uuid.Parse(chi.URLParam(r, "tag_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid tag_id", r))
		return
	}
	userID, ok := requirePathUser(w, r)
	if !ok {
		return
	}

	var req models.UpdateTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if err := h.tagService.Update(r.Context(), userID, tagID, req); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Tag updated"})
}

func (h *TagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePathUser(w, r)
	if !ok {
		return
	}

	var req models.DeleteTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	tagID, err := h.tagService.Delete(r.Context(), userID, req.Tagname)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Tag deleted",
		"tag_id":  tagID,
	})
}
