package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/serkansentuna34/serkan-ai-api/internal/model"
)

type assignmentResponse struct {
	ID           string  `json:"id"`
	CourseID     *string `json:"courseId"`
	CourseTitle  *string `json:"courseTitle,omitempty"`
	Title        string  `json:"title"`
	Description  *string `json:"description"`
	Instructions *string `json:"instructions"`
	Deadline     *string `json:"deadline"`
	MaxPoints    int     `json:"maxPoints"`
	IsPublished  bool    `json:"isPublished"`
	CreatedAt    string  `json:"createdAt"`
}

func mapAssignment(assignment model.Assignment) assignmentResponse {
	resp := assignmentResponse{
		ID:           assignment.ID,
		CourseID:     assignment.CourseID,
		Title:        assignment.Title,
		Description:  assignment.Description,
		Instructions: assignment.Instructions,
		MaxPoints:    assignment.MaxPoints,
		IsPublished:  assignment.IsPublished,
		CreatedAt:    assignment.CreatedAt.Format(time.RFC3339),
	}
	if assignment.Deadline != nil {
		formatted := assignment.Deadline.Format(time.RFC3339)
		resp.Deadline = &formatted
	}
	return resp
}

type submissionResponse struct {
	ID          string   `json:"id"`
	UserID      string   `json:"userId"`
	UserName    string   `json:"userName,omitempty"`
	Content     *string  `json:"content"`
	FileURLs    []string `json:"fileUrls"`
	Status      string   `json:"status"`
	Score       *int     `json:"score"`
	Feedback    *string  `json:"feedback"`
	SubmittedAt string   `json:"submittedAt"`
	GradedAt    *string  `json:"gradedAt"`
}

func mapSubmission(sub model.Submission) submissionResponse {
	resp := submissionResponse{
		ID:          sub.ID,
		UserID:      sub.UserID,
		Content:     sub.Content,
		FileURLs:    sub.FileURLs,
		Status:      string(sub.Status),
		Score:       sub.Score,
		Feedback:    sub.Feedback,
		SubmittedAt: sub.SubmittedAt.Format(time.RFC3339),
	}
	if sub.GradedAt != nil {
		formatted := sub.GradedAt.Format(time.RFC3339)
		resp.GradedAt = &formatted
	}
	return resp
}

func (s *Server) handleListAssignments(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	assignments, err := s.store.ListAssignmentsForUser(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	type listEntry struct {
		assignmentResponse
		Submission *submissionResponse `json:"submission"`
	}
	resp := make([]listEntry, 0, len(assignments))
	for _, entry := range assignments {
		item := listEntry{assignmentResponse: mapAssignment(entry.Assignment)}
		item.CourseTitle = entry.CourseTitle
		if entry.Submission != nil {
			mapped := mapSubmission(*entry.Submission)
			item.Submission = &mapped
		}
		resp = append(resp, item)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetAssignment(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	assignmentID := chi.URLParam(r, "assignmentId")
	if !validUUID(assignmentID) {
		writeError(w, http.StatusBadRequest, "invalid_assignment_id")
		return
	}
	assignment, err := s.store.GetAssignment(r.Context(), assignmentID)
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, "assignment_not_found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	// Students only see published assignments; staff see drafts too.
	if claims.Role == string(model.RoleStudent) && !assignment.IsPublished {
		writeError(w, http.StatusNotFound, "assignment_not_found")
		return
	}
	writeJSON(w, http.StatusOK, mapAssignment(assignment))
}

type assignmentRequest struct {
	CourseID     *string `json:"courseId"`
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	Instructions *string `json:"instructions"`
	Deadline     *string `json:"deadline"`
	MaxPoints    *int    `json:"maxPoints"`
	IsPublished  *bool   `json:"isPublished"`
}

func (s *Server) handleCreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req assignmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		writeError(w, http.StatusBadRequest, "missing_title")
		return
	}
	if req.CourseID != nil && !validUUID(*req.CourseID) {
		writeError(w, http.StatusBadRequest, "invalid_course_id")
		return
	}
	var deadline *time.Time
	if req.Deadline != nil {
		parsed, err := time.Parse(time.RFC3339, *req.Deadline)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_deadline")
			return
		}
		deadline = &parsed
	}
	maxPoints := 100
	if req.MaxPoints != nil {
		if *req.MaxPoints <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_max_points")
			return
		}
		maxPoints = *req.MaxPoints
	}

	assignment, err := s.store.CreateAssignment(r.Context(), req.CourseID, strings.TrimSpace(*req.Title), req.Description, req.Instructions, deadline, maxPoints)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusCreated, mapAssignment(assignment))
}

func (s *Server) handleUpdateAssignment(w http.ResponseWriter, r *http.Request) {
	assignmentID := chi.URLParam(r, "assignmentId")
	if !validUUID(assignmentID) {
		writeError(w, http.StatusBadRequest, "invalid_assignment_id")
		return
	}
	var req assignmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	var deadline *time.Time
	if req.Deadline != nil {
		parsed, err := time.Parse(time.RFC3339, *req.Deadline)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_deadline")
			return
		}
		deadline = &parsed
	}

	assignment, err := s.store.UpdateAssignment(r.Context(), assignmentID, req.Title, req.Description, req.Instructions, deadline, req.MaxPoints, req.IsPublished)
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, "assignment_not_found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, mapAssignment(assignment))
}

func (s *Server) handleDeleteAssignment(w http.ResponseWriter, r *http.Request) {
	assignmentID := chi.URLParam(r, "assignmentId")
	if !validUUID(assignmentID) {
		writeError(w, http.StatusBadRequest, "invalid_assignment_id")
		return
	}
	found, err := s.store.DeleteAssignment(r.Context(), assignmentID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "assignment_not_found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSubmitAssignment(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	assignmentID := chi.URLParam(r, "assignmentId")
	if !validUUID(assignmentID) {
		writeError(w, http.StatusBadRequest, "invalid_assignment_id")
		return
	}
	var req struct {
		Content  *string  `json:"content"`
		FileURLs []string `json:"fileUrls"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if (req.Content == nil || strings.TrimSpace(*req.Content) == "") && len(req.FileURLs) == 0 {
		writeError(w, http.StatusBadRequest, "empty_submission")
		return
	}
	if _, err := s.store.GetAssignment(r.Context(), assignmentID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "assignment_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	sub, err := s.store.SubmitAssignment(r.Context(), assignmentID, claims.UserID, req.Content, req.FileURLs, time.Now().UTC())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusCreated, mapSubmission(sub))
}

func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	assignmentID := chi.URLParam(r, "assignmentId")
	if !validUUID(assignmentID) {
		writeError(w, http.StatusBadRequest, "invalid_assignment_id")
		return
	}
	rows, err := s.store.ListSubmissions(r.Context(), assignmentID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	resp := make([]submissionResponse, 0, len(rows))
	for _, row := range rows {
		entry := mapSubmission(row.Submission)
		entry.UserName = row.UserName
		resp = append(resp, entry)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGradeSubmission(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	submissionID := chi.URLParam(r, "submissionId")
	if !validUUID(submissionID) {
		writeError(w, http.StatusBadRequest, "invalid_submission_id")
		return
	}
	var req struct {
		Score    *int    `json:"score"`
		Feedback *string `json:"feedback"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Score == nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if *req.Score < 0 {
		writeError(w, http.StatusBadRequest, "invalid_score")
		return
	}

	sub, err := s.store.GradeSubmission(r.Context(), submissionID, *req.Score, req.Feedback, claims.UserID, time.Now().UTC())
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, "submission_not_found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, mapSubmission(sub))
}
