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

type courseResponse struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Description  *string `json:"description"`
	Content      *string `json:"content,omitempty"`
	ThumbnailURL *string `json:"thumbnailUrl"`
	InstructorID *string `json:"instructorId"`
	IsPublished  bool    `json:"isPublished"`
	OrderIndex   int     `json:"orderIndex"`
	CreatedAt    string  `json:"createdAt"`
}

func mapCourse(course model.Course) courseResponse {
	return courseResponse{
		ID:           course.ID,
		Title:        course.Title,
		Description:  course.Description,
		Content:      course.Content,
		ThumbnailURL: course.ThumbnailURL,
		InstructorID: course.InstructorID,
		IsPublished:  course.IsPublished,
		OrderIndex:   course.OrderIndex,
		CreatedAt:    course.CreatedAt.Format(time.RFC3339),
	}
}

type enrolledCourseResponse struct {
	courseResponse
	Enrolled    bool   `json:"enrolled"`
	Progress    int    `json:"progress"`
	CompletedAt string `json:"completedAt,omitempty"`
}

func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	courses, err := s.store.ListPublishedCourses(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	resp := make([]enrolledCourseResponse, 0, len(courses))
	for _, entry := range courses {
		item := enrolledCourseResponse{
			courseResponse: mapCourse(entry.Course),
			Enrolled:       entry.Enrolled,
			Progress:       entry.ProgressPercentage,
		}
		if entry.CompletedAt != nil {
			item.CompletedAt = entry.CompletedAt.Format(time.RFC3339)
		}
		resp = append(resp, item)
	}
	writeJSON(w, http.StatusOK, resp)
}

type lessonResponse struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Content    *string `json:"content"`
	OrderIndex int     `json:"orderIndex"`
}

type moduleResponse struct {
	ID         string           `json:"id"`
	Title      string           `json:"title"`
	OrderIndex int              `json:"orderIndex"`
	Lessons    []lessonResponse `json:"lessons"`
}

type courseDetailResponse struct {
	courseResponse
	Modules  []moduleResponse `json:"modules"`
	Enrolled bool             `json:"enrolled"`
	Progress int              `json:"progress"`
}

func (s *Server) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	courseID := chi.URLParam(r, "courseId")
	if !validUUID(courseID) {
		writeError(w, http.StatusBadRequest, "invalid_course_id")
		return
	}
	course, err := s.store.GetCourse(r.Context(), courseID)
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, "course_not_found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	modules, err := s.store.ListCourseModules(r.Context(), courseID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	resp := courseDetailResponse{
		courseResponse: mapCourse(course),
		Modules:        make([]moduleResponse, 0, len(modules)),
	}
	for _, mod := range modules {
		entry := moduleResponse{
			ID:         mod.Module.ID,
			Title:      mod.Module.Title,
			OrderIndex: mod.Module.OrderIndex,
			Lessons:    make([]lessonResponse, 0, len(mod.Lessons)),
		}
		for _, lesson := range mod.Lessons {
			entry.Lessons = append(entry.Lessons, lessonResponse{
				ID:         lesson.ID,
				Title:      lesson.Title,
				Content:    lesson.Content,
				OrderIndex: lesson.OrderIndex,
			})
		}
		resp.Modules = append(resp.Modules, entry)
	}

	enrollment, err := s.store.GetEnrollment(r.Context(), claims.UserID, courseID)
	switch {
	case err == nil:
		resp.Enrolled = true
		resp.Progress = enrollment.ProgressPercentage
	case errors.Is(err, pgx.ErrNoRows):
		// not enrolled
	default:
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type courseRequest struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	Content      *string `json:"content"`
	ThumbnailURL *string `json:"thumbnailUrl"`
	IsPublished  *bool   `json:"isPublished"`
	OrderIndex   *int    `json:"orderIndex"`
}

func (s *Server) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	var req courseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		writeError(w, http.StatusBadRequest, "missing_title")
		return
	}
	published := false
	if req.IsPublished != nil {
		published = *req.IsPublished
	}
	orderIndex := 0
	if req.OrderIndex != nil {
		orderIndex = *req.OrderIndex
	}
	instructorID := claims.UserID
	course, err := s.store.CreateCourse(r.Context(), strings.TrimSpace(*req.Title), req.Description, req.Content, req.ThumbnailURL, &instructorID, published, orderIndex)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusCreated, mapCourse(course))
}

func (s *Server) handleUpdateCourse(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseId")
	if !validUUID(courseID) {
		writeError(w, http.StatusBadRequest, "invalid_course_id")
		return
	}
	var req courseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	course, err := s.store.UpdateCourse(r.Context(), courseID, req.Title, req.Description, req.Content, req.ThumbnailURL, req.IsPublished, req.OrderIndex)
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, "course_not_found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, mapCourse(course))
}

func (s *Server) handleDeleteCourse(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseId")
	if !validUUID(courseID) {
		writeError(w, http.StatusBadRequest, "invalid_course_id")
		return
	}
	found, err := s.store.DeleteCourse(r.Context(), courseID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "course_not_found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCompleteCourse(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	courseID := chi.URLParam(r, "courseId")
	if !validUUID(courseID) {
		writeError(w, http.StatusBadRequest, "invalid_course_id")
		return
	}
	if _, err := s.store.GetCourse(r.Context(), courseID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "course_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	enrollment, err := s.store.CompleteCourse(r.Context(), claims.UserID, courseID, time.Now().UTC())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	resp := map[string]any{
		"courseId": enrollment.CourseID,
		"progress": enrollment.ProgressPercentage,
	}
	if enrollment.CompletedAt != nil {
		resp["completedAt"] = enrollment.CompletedAt.Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCourseStats(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	stats, err := s.store.GetCourseUserStatistics(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
