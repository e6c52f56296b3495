package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/serkansentuna34/serkan-ai-api/internal/model"
	"github.com/serkansentuna34/serkan-ai-api/internal/repository"
)

type libraryItemResponse struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	Type        string   `json:"type"`
	URL         *string  `json:"url"`
	FileURL     *string  `json:"fileUrl"`
	Content     *string  `json:"content"`
	Tags        []string `json:"tags"`
	Category    *string  `json:"category"`
	IsPublic    bool     `json:"isPublic"`
	Downloads   int      `json:"downloads"`
	CreatorName *string  `json:"creatorName,omitempty"`
	CreatedAt   string   `json:"createdAt"`
}

func mapLibraryItem(item model.LibraryItem) libraryItemResponse {
	return libraryItemResponse{
		ID:          item.ID,
		Title:       item.Title,
		Description: item.Description,
		Type:        item.Type,
		URL:         item.URL,
		FileURL:     item.FileURL,
		Content:     item.Content,
		Tags:        item.Tags,
		Category:    item.Category,
		IsPublic:    item.IsPublic,
		Downloads:   item.Downloads,
		CreatorName: item.CreatorName,
		CreatedAt:   item.CreatedAt.Format(time.RFC3339),
	}
}

var libraryTypes = map[string]bool{
	"document": true,
	"video":    true,
	"link":     true,
	"article":  true,
	"tool":     true,
}

func (s *Server) handleListLibrary(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := repository.LibraryFilter{
		Type:     query.Get("type"),
		Category: query.Get("category"),
		Search:   query.Get("search"),
	}
	items, err := s.store.ListLibraryItems(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	resp := make([]libraryItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, mapLibraryItem(item))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetLibraryItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemId")
	if !validUUID(itemID) {
		writeError(w, http.StatusBadRequest, "invalid_item_id")
		return
	}
	item, err := s.store.GetLibraryItem(r.Context(), itemID)
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, "item_not_found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, mapLibraryItem(item))
}

type libraryItemRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Type        *string  `json:"type"`
	URL         *string  `json:"url"`
	FileURL     *string  `json:"fileUrl"`
	Content     *string  `json:"content"`
	Tags        []string `json:"tags"`
	Category    *string  `json:"category"`
	IsPublic    *bool    `json:"isPublic"`
}

func (s *Server) handleCreateLibraryItem(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	var req libraryItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" || req.Type == nil {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}
	if !libraryTypes[*req.Type] {
		writeError(w, http.StatusBadRequest, "invalid_type")
		return
	}
	item := model.LibraryItem{
		Title:       strings.TrimSpace(*req.Title),
		Description: req.Description,
		Type:        *req.Type,
		URL:         req.URL,
		FileURL:     req.FileURL,
		Content:     req.Content,
		Tags:        req.Tags,
		Category:    req.Category,
		IsPublic:    true,
		CreatedBy:   claims.UserID,
	}
	if req.IsPublic != nil {
		item.IsPublic = *req.IsPublic
	}
	created, err := s.store.CreateLibraryItem(r.Context(), item)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusCreated, mapLibraryItem(created))
}

func (s *Server) handleUpdateLibraryItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemId")
	if !validUUID(itemID) {
		writeError(w, http.StatusBadRequest, "invalid_item_id")
		return
	}
	var req libraryItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	item, err := s.store.UpdateLibraryItem(r.Context(), itemID, req.Title, req.Description, req.URL, req.FileURL, req.Content, req.Category, req.Tags, req.IsPublic)
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, "item_not_found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, mapLibraryItem(item))
}

func (s *Server) handleDeleteLibraryItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemId")
	if !validUUID(itemID) {
		writeError(w, http.StatusBadRequest, "invalid_item_id")
		return
	}
	found, err := s.store.DeleteLibraryItem(r.Context(), itemID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "item_not_found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLibraryDownload(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemId")
	if !validUUID(itemID) {
		writeError(w, http.StatusBadRequest, "invalid_item_id")
		return
	}
	item, err := s.store.GetLibraryItem(r.Context(), itemID)
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, "item_not_found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if item.FileURL == nil && item.URL == nil {
		writeError(w, http.StatusNotFound, "no_downloadable_content")
		return
	}
	if err := s.store.IncrementLibraryDownloads(r.Context(), itemID); err != nil {
		s.logger.Warn("increment library downloads", zap.String("item_id", itemID), zap.Error(err))
	}
	resp := map[string]any{"downloads": item.Downloads + 1}
	if item.FileURL != nil {
		resp["fileUrl"] = *item.FileURL
	} else {
		resp["url"] = *item.URL
	}
	writeJSON(w, http.StatusOK, resp)
}
