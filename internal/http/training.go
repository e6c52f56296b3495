package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/serkansentuna34/serkan-ai-api/internal/model"
	"github.com/serkansentuna34/serkan-ai-api/internal/training"
)

func (s *Server) handleCertificateStatus(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	status, err := s.engine.CertificateStatus(r.Context(), claims.UserID)
	if err != nil {
		s.logger.Error("certificate status", zap.String("user_id", claims.UserID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	var req struct {
		ScheduleID string `json:"scheduleId"`
	}
	if err := decodeJSON(r, &req); err != nil || !validUUID(req.ScheduleID) {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	log, err := s.engine.CheckIn(r.Context(), claims.UserID, req.ScheduleID)
	switch {
	case errors.Is(err, training.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session_not_found")
		return
	case errors.Is(err, training.ErrAlreadyCheckedIn):
		writeError(w, http.StatusConflict, "already_checked_in")
		return
	case err != nil:
		s.logger.Error("check-in", zap.String("user_id", claims.UserID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"scheduleId":  log.ScheduleID,
		"status":      string(log.Status),
		"checkInTime": log.CheckInTime.Format(time.RFC3339),
	})
}

func (s *Server) handleTodaySchedule(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	schedule, err := s.engine.TodaySchedule(r.Context(), claims.UserID)
	if err != nil {
		s.logger.Error("today schedule", zap.String("user_id", claims.UserID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, schedule)
}

func (s *Server) handleDayTracking(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	tracking, err := s.engine.DayTracking(r.Context(), claims.UserID)
	if err != nil {
		s.logger.Error("day tracking", zap.String("user_id", claims.UserID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, tracking)
}

func (s *Server) handleTrainingMaterials(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	materials, err := s.engine.Materials(r.Context(), claims.UserID)
	if errors.Is(err, training.ErrNoActiveClass) {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	if err != nil {
		s.logger.Error("training materials", zap.String("user_id", claims.UserID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	type materialResponse struct {
		ID          string  `json:"id"`
		Title       string  `json:"title"`
		Description *string `json:"description"`
		FileURL     string  `json:"fileUrl"`
		FileType    *string `json:"fileType"`
		FileSize    *int64  `json:"fileSize"`
		OrderIndex  int     `json:"orderIndex"`
	}
	resp := make([]materialResponse, 0, len(materials))
	for _, mat := range materials {
		resp = append(resp, materialResponse{
			ID:          mat.ID,
			Title:       mat.Title,
			Description: mat.Description,
			FileURL:     mat.FileURL,
			FileType:    mat.FileType,
			FileSize:    mat.FileSize,
			OrderIndex:  mat.OrderIndex,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type quickNoteResponse struct {
	ID         string  `json:"id"`
	ClassID    *string `json:"classId"`
	ScheduleID *string `json:"scheduleId"`
	Content    string  `json:"content"`
	Color      string  `json:"color"`
	CreatedAt  string  `json:"createdAt"`
}

func mapQuickNote(note model.QuickNote) quickNoteResponse {
	return quickNoteResponse{
		ID:         note.ID,
		ClassID:    note.ClassID,
		ScheduleID: note.ScheduleID,
		Content:    note.Content,
		Color:      note.Color,
		CreatedAt:  note.CreatedAt.Format(time.RFC3339),
	}
}

func (s *Server) handleListQuickNotes(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	notes, err := s.store.ListQuickNotes(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	resp := make([]quickNoteResponse, 0, len(notes))
	for _, note := range notes {
		resp = append(resp, mapQuickNote(note))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateQuickNote(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	var req struct {
		Content    string  `json:"content"`
		Color      string  `json:"color"`
		ClassID    *string `json:"classId"`
		ScheduleID *string `json:"scheduleId"`
	}
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.ClassID != nil && !validUUID(*req.ClassID) {
		writeError(w, http.StatusBadRequest, "invalid_class_id")
		return
	}
	if req.ScheduleID != nil && !validUUID(*req.ScheduleID) {
		writeError(w, http.StatusBadRequest, "invalid_schedule_id")
		return
	}
	color := req.Color
	if color == "" {
		color = "yellow"
	}
	note, err := s.store.CreateQuickNote(r.Context(), claims.UserID, req.ClassID, req.ScheduleID, strings.TrimSpace(req.Content), color)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusCreated, mapQuickNote(note))
}

func (s *Server) handleDeleteQuickNote(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	noteID := chi.URLParam(r, "noteId")
	if !validUUID(noteID) {
		writeError(w, http.StatusBadRequest, "invalid_note_id")
		return
	}
	found, err := s.store.DeleteQuickNote(r.Context(), noteID, claims.UserID)
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
