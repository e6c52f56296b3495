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
)

type noteResponse struct {
	ID          string   `json:"id"`
	LessonID    *string  `json:"lessonId"`
	LessonTitle *string  `json:"lessonTitle"`
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Tags        []string `json:"tags"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

func mapNote(note model.Note) noteResponse {
	return noteResponse{
		ID:          note.ID,
		LessonID:    note.LessonID,
		LessonTitle: note.LessonTitle,
		Title:       note.Title,
		Content:     note.Content,
		Tags:        note.Tags,
		CreatedAt:   note.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   note.UpdatedAt.Format(time.RFC3339),
	}
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	notes, err := s.store.ListNotes(r.Context(), claims.UserID, r.URL.Query().Get("search"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	resp := make([]noteResponse, 0, len(notes))
	for _, note := range notes {
		resp = append(resp, mapNote(note))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	noteID := chi.URLParam(r, "noteId")
	if !validUUID(noteID) {
		writeError(w, http.StatusBadRequest, "invalid_note_id")
		return
	}
	note, err := s.store.GetNote(r.Context(), noteID, claims.UserID)
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, "note_not_found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, mapNote(note))
}

type noteRequest struct {
	LessonID *string  `json:"lessonId"`
	Title    *string  `json:"title"`
	Content  *string  `json:"content"`
	Tags     []string `json:"tags"`
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	var req noteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" || req.Content == nil {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}
	if req.LessonID != nil && !validUUID(*req.LessonID) {
		writeError(w, http.StatusBadRequest, "invalid_lesson_id")
		return
	}
	note, err := s.store.CreateNote(r.Context(), claims.UserID, req.LessonID, strings.TrimSpace(*req.Title), *req.Content, req.Tags)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusCreated, mapNote(note))
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	noteID := chi.URLParam(r, "noteId")
	if !validUUID(noteID) {
		writeError(w, http.StatusBadRequest, "invalid_note_id")
		return
	}
	var req noteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	note, err := s.store.UpdateNote(r.Context(), noteID, claims.UserID, req.Title, req.Content, req.Tags)
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, "note_not_found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, mapNote(note))
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	noteID := chi.URLParam(r, "noteId")
	if !validUUID(noteID) {
		writeError(w, http.StatusBadRequest, "invalid_note_id")
		return
	}
	found, err := s.store.DeleteNote(r.Context(), noteID, claims.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "note_not_found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEmailNotes(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	var req struct {
		NoteIDs []string `json:"noteIds"`
	}
	if err := decodeJSON(r, &req); err != nil || len(req.NoteIDs) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	for _, id := range req.NoteIDs {
		if !validUUID(id) {
			writeError(w, http.StatusBadRequest, "invalid_note_id")
			return
		}
	}
	notes, err := s.store.NotesByIDs(r.Context(), claims.UserID, req.NoteIDs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if len(notes) == 0 {
		writeError(w, http.StatusNotFound, "notes_not_found")
		return
	}

	user, err := s.store.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if err := s.mailer.SendNotes(user.Email, user.Name, notes); err != nil {
		s.logger.Error("send notes email", zap.String("user_id", user.ID), zap.Error(err))
		writeError(w, http.StatusBadGateway, "email_failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sent": len(notes)})
}
