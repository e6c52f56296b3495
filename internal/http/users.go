package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/serkansentuna34/serkan-ai-api/internal/crypto"
	"github.com/serkansentuna34/serkan-ai-api/internal/excel"
	"github.com/serkansentuna34/serkan-ai-api/internal/model"
	"github.com/serkansentuna34/serkan-ai-api/internal/repository"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListUsers(r.Context(), repository.UserFilter{
		Role:   r.URL.Query().Get("role"),
		Search: r.URL.Query().Get("search"),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	resp := make([]userResponse, 0, len(users))
	for _, user := range users {
		resp = append(resp, mapUser(user))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if !validUUID(userID) {
		writeError(w, http.StatusBadRequest, "invalid_user_id")
		return
	}
	user, err := s.store.GetUserByID(r.Context(), userID)
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, "user_not_found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, mapUser(user))
}

type createUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}
	if len(req.Password) < 6 {
		writeError(w, http.StatusBadRequest, "password_too_short")
		return
	}
	if req.Role == "" {
		req.Role = string(model.RoleStudent)
	}
	if !model.ValidRole(req.Role) {
		writeError(w, http.StatusBadRequest, "invalid_role")
		return
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	user, err := s.store.CreateUser(r.Context(), req.Email, hash, req.Name, model.Role(req.Role))
	if repository.IsUniqueViolation(err) {
		writeError(w, http.StatusConflict, "email_exists")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusCreated, mapUser(user))
}

type updateUserRequest struct {
	Name      *string `json:"name"`
	Email     *string `json:"email"`
	AvatarURL *string `json:"avatarUrl"`
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if !validUUID(userID) {
		writeError(w, http.StatusBadRequest, "invalid_user_id")
		return
	}
	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.Email != nil {
		normalized := strings.ToLower(strings.TrimSpace(*req.Email))
		req.Email = &normalized
	}

	user, err := s.store.UpdateUser(r.Context(), userID, req.Email, req.Name, req.AvatarURL)
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, "user_not_found")
		return
	}
	if repository.IsUniqueViolation(err) {
		writeError(w, http.StatusConflict, "email_exists")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, mapUser(user))
}

func (s *Server) handleUpdateUserRole(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if !validUUID(userID) {
		writeError(w, http.StatusBadRequest, "invalid_user_id")
		return
	}
	var req struct {
		Role string `json:"role"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if !model.ValidRole(req.Role) {
		writeError(w, http.StatusBadRequest, "invalid_role")
		return
	}
	user, err := s.store.UpdateUserRole(r.Context(), userID, model.Role(req.Role))
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, "user_not_found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, mapUser(user))
}

func (s *Server) handleUpdateUserStatus(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if !validUUID(userID) {
		writeError(w, http.StatusBadRequest, "invalid_user_id")
		return
	}
	var req struct {
		IsActive *bool `json:"isActive"`
	}
	if err := decodeJSON(r, &req); err != nil || req.IsActive == nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	user, err := s.store.UpdateUserStatus(r.Context(), userID, *req.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, "user_not_found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, mapUser(user))
}

func (s *Server) handleResetUserPassword(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if !validUUID(userID) {
		writeError(w, http.StatusBadRequest, "invalid_user_id")
		return
	}
	var req struct {
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if len(req.Password) < 6 {
		writeError(w, http.StatusBadRequest, "password_too_short")
		return
	}
	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	user, err := s.store.UpdateUserPassword(r.Context(), userID, hash)
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, "user_not_found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	// Invalidate existing sessions so the old credentials stop working.
	_ = s.store.RevokeRefreshSessionsByUser(r.Context(), user.ID, time.Now().UTC())
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if !validUUID(userID) {
		writeError(w, http.StatusBadRequest, "invalid_user_id")
		return
	}
	claims := claimsFromContext(r.Context())
	if claims != nil && claims.UserID == userID {
		writeError(w, http.StatusBadRequest, "cannot_delete_self")
		return
	}
	found, err := s.store.DeleteUser(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "user_not_found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUserStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetUserStatistics(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleUserTemplate(w http.ResponseWriter, r *http.Request) {
	file, err := excel.Template()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="user-import-template.xlsx"`)
	if err := file.Write(w); err != nil {
		s.logger.Warn("template write failed", zap.Error(err))
	}
}

type importResultResponse struct {
	Imported int              `json:"imported"`
	Skipped  []excel.RowError `json:"skipped"`
}

func (s *Server) handleImportUsers(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing_file")
		return
	}
	defer file.Close()

	rows, skipped, err := excel.ParseUsers(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_workbook")
		return
	}

	imported := 0
	for _, row := range rows {
		hash, err := crypto.HashPassword(row.Password)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "server_error")
			return
		}
		_, err = s.store.CreateUser(r.Context(), row.Email, hash, row.Name, row.Role)
		if repository.IsUniqueViolation(err) {
			skipped = append(skipped, excel.RowError{Row: row.Row, Reason: "email already exists"})
			continue
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "server_error")
			return
		}
		imported++
	}
	writeJSON(w, http.StatusOK, importResultResponse{Imported: imported, Skipped: skipped})
}
