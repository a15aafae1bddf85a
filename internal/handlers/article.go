package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"linkmark-backend/internal/middleware"
	"linkmark-backend/internal/models"
	"linkmark-backend/internal/services"
)

type ArticleHandler struct {
	articleService *services.ArticleService
}

func NewArticleHandler(articleService *services.ArticleService) *ArticleHandler {
	return &ArticleHandler{articleService: articleService}
}

func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	userID := middleware.GetUserID(r.Context())
	articleID, err := h.articleService.Create(r.Context(), userID, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"article_id": articleID})
}

func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	articleID, ok := pathUUID(w, r, "article_id")
	if !ok {
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := h.articleService.Delete(r.Context(), userID, articleID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Article deleted"})
}

func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	articles, err := h.articleService.List(r.Context(), limit, offset)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if articles == nil {
		articles = []models.ArticleResponse{}
	}

	writeJSON(w, http.StatusOK, articles)
}

func (h *ArticleHandler) Download(w http.ResponseWriter, r *http.Request) {
	articleID, ok := pathUUID(w, r, "article_id")
	if !ok {
		return
	}

	userID := middleware.GetUserID(r.Context())
	resp, err := h.articleService.Download(r.Context(), userID, articleID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
