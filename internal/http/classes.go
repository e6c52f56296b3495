package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/serkansentuna34/serkan-ai-api/internal/model"
	"github.com/serkansentuna34/serkan-ai-api/internal/repository"
)

type classResponse struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Description    *string `json:"description"`
	InstructorID   *string `json:"instructorId"`
	InstructorName *string `json:"instructorName,omitempty"`
	StartDate      string  `json:"startDate"`
	EndDate        string  `json:"endDate"`
	IsActive       bool    `json:"isActive"`
	MemberCount    *int64  `json:"memberCount,omitempty"`
	CourseCount    *int64  `json:"courseCount,omitempty"`
}

func mapClass(class model.Class) classResponse {
	return classResponse{
		ID:           class.ID,
		Name:         class.Name,
		Description:  class.Description,
		InstructorID: class.InstructorID,
		StartDate:    class.StartDate.Format("2006-01-02"),
		EndDate:      class.EndDate.Format("2006-01-02"),
		IsActive:     class.IsActive,
	}
}

func (s *Server) handleListClasses(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.store.ListClasses(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	resp := make([]classResponse, 0, len(summaries))
	for _, summary := range summaries {
		entry := mapClass(summary.Class)
		entry.InstructorName = summary.InstructorName
		members, courses := summary.MemberCount, summary.CourseCount
		entry.MemberCount = &members
		entry.CourseCount = &courses
		resp = append(resp, entry)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetClass(w http.ResponseWriter, r *http.Request) {
	classID := chi.URLParam(r, "classId")
	if !validUUID(classID) {
		writeError(w, http.StatusBadRequest, "invalid_class_id")
		return
	}
	class, err := s.store.GetClass(r.Context(), classID)
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, "class_not_found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, mapClass(class))
}

type classRequest struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	InstructorID *string `json:"instructorId"`
	StartDate    *string `json:"startDate"`
	EndDate      *string `json:"endDate"`
	IsActive     *bool   `json:"isActive"`
}

func parseDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}

func (s *Server) handleCreateClass(w http.ResponseWriter, r *http.Request) {
	var req classRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" || req.StartDate == nil || req.EndDate == nil {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}
	start, err := parseDate(*req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_start_date")
		return
	}
	end, err := parseDate(*req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_end_date")
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "end_before_start")
		return
	}
	if req.InstructorID != nil && !validUUID(*req.InstructorID) {
		writeError(w, http.StatusBadRequest, "invalid_instructor_id")
		return
	}

	class, err := s.store.CreateClass(r.Context(), strings.TrimSpace(*req.Name), req.Description, req.InstructorID, start, end)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusCreated, mapClass(class))
}

func (s *Server) handleUpdateClass(w http.ResponseWriter, r *http.Request) {
	classID := chi.URLParam(r, "classId")
	if !validUUID(classID) {
		writeError(w, http.StatusBadRequest, "invalid_class_id")
		return
	}
	var req classRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	var start, end *time.Time
	if req.StartDate != nil {
		parsed, err := parseDate(*req.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_start_date")
			return
		}
		start = &parsed
	}
	if req.EndDate != nil {
		parsed, err := parseDate(*req.EndDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_end_date")
			return
		}
		end = &parsed
	}

	class, err := s.store.UpdateClass(r.Context(), classID, req.Name, req.Description, req.InstructorID, start, end, req.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, "class_not_found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, mapClass(class))
}

func (s *Server) handleDeleteClass(w http.ResponseWriter, r *http.Request) {
	classID := chi.URLParam(r, "classId")
	if !validUUID(classID) {
		writeError(w, http.StatusBadRequest, "invalid_class_id")
		return
	}
	found, err := s.store.DeleteClass(r.Context(), classID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "class_not_found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClassStats(w http.ResponseWriter, r *http.Request) {
	classID := chi.URLParam(r, "classId")
	if !validUUID(classID) {
		writeError(w, http.StatusBadRequest, "invalid_class_id")
		return
	}
	if _, err := s.store.GetClass(r.Context(), classID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "class_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	stats, err := s.store.GetClassStatistics(r.Context(), classID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type classMemberResponse struct {
	UserID     string `json:"userId"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	EnrolledAt string `json:"enrolledAt"`
}

func (s *Server) handleListClassMembers(w http.ResponseWriter, r *http.Request) {
	classID := chi.URLParam(r, "classId")
	if !validUUID(classID) {
		writeError(w, http.StatusBadRequest, "invalid_class_id")
		return
	}
	members, err := s.store.ListClassMembers(r.Context(), classID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	resp := make([]classMemberResponse, 0, len(members))
	for _, member := range members {
		resp = append(resp, classMemberResponse{
			UserID:     member.UserID,
			Name:       member.Name,
			Email:      member.Email,
			Role:       string(member.Role),
			EnrolledAt: member.EnrolledAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddClassMember(w http.ResponseWriter, r *http.Request) {
	classID := chi.URLParam(r, "classId")
	if !validUUID(classID) {
		writeError(w, http.StatusBadRequest, "invalid_class_id")
		return
	}
	var req struct {
		UserID string `json:"userId"`
	}
	if err := decodeJSON(r, &req); err != nil || !validUUID(req.UserID) {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	err := s.store.AddClassMember(r.Context(), classID, req.UserID)
	if repository.IsUniqueViolation(err) {
		writeError(w, http.StatusConflict, "member_exists")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]bool{"success": true})
}

func (s *Server) handleRemoveClassMember(w http.ResponseWriter, r *http.Request) {
	classID := chi.URLParam(r, "classId")
	userID := chi.URLParam(r, "userId")
	if !validUUID(classID) || !validUUID(userID) {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	found, err := s.store.RemoveClassMember(r.Context(), classID, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "member_not_found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type classCourseResponse struct {
	CourseID    string  `json:"courseId"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	OrderIndex  int     `json:"orderIndex"`
	StartDate   *string `json:"startDate"`
	EndDate     *string `json:"endDate"`
}

func (s *Server) handleListClassCourses(w http.ResponseWriter, r *http.Request) {
	classID := chi.URLParam(r, "classId")
	if !validUUID(classID) {
		writeError(w, http.StatusBadRequest, "invalid_class_id")
		return
	}
	assigned, err := s.store.ListClassCourses(r.Context(), classID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	resp := make([]classCourseResponse, 0, len(assigned))
	for _, entry := range assigned {
		course := classCourseResponse{
			CourseID:    entry.Course.ID,
			Title:       entry.Course.Title,
			Description: entry.Course.Description,
			OrderIndex:  entry.OrderIndex,
		}
		if entry.StartDate != nil {
			formatted := entry.StartDate.Format("2006-01-02")
			course.StartDate = &formatted
		}
		if entry.EndDate != nil {
			formatted := entry.EndDate.Format("2006-01-02")
			course.EndDate = &formatted
		}
		resp = append(resp, course)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAssignClassCourse(w http.ResponseWriter, r *http.Request) {
	classID := chi.URLParam(r, "classId")
	if !validUUID(classID) {
		writeError(w, http.StatusBadRequest, "invalid_class_id")
		return
	}
	var req struct {
		CourseID   string  `json:"courseId"`
		OrderIndex int     `json:"orderIndex"`
		StartDate  *string `json:"startDate"`
		EndDate    *string `json:"endDate"`
	}
	if err := decodeJSON(r, &req); err != nil || !validUUID(req.CourseID) {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	var start, end *time.Time
	if req.StartDate != nil {
		parsed, err := parseDate(*req.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_start_date")
			return
		}
		start = &parsed
	}
	if req.EndDate != nil {
		parsed, err := parseDate(*req.EndDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_end_date")
			return
		}
		end = &parsed
	}

	err := s.store.AssignCourseToClass(r.Context(), classID, req.CourseID, req.OrderIndex, start, end)
	if repository.IsUniqueViolation(err) {
		writeError(w, http.StatusConflict, "course_already_assigned")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]bool{"success": true})
}

func (s *Server) handleRemoveClassCourse(w http.ResponseWriter, r *http.Request) {
	classID := chi.URLParam(r, "classId")
	courseID := chi.URLParam(r, "courseId")
	if !validUUID(classID) || !validUUID(courseID) {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	found, err := s.store.RemoveCourseFromClass(r.Context(), classID, courseID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "course_not_assigned")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAssignClassAssignment(w http.ResponseWriter, r *http.Request) {
	classID := chi.URLParam(r, "classId")
	if !validUUID(classID) {
		writeError(w, http.StatusBadRequest, "invalid_class_id")
		return
	}
	var req struct {
		AssignmentID string `json:"assignmentId"`
	}
	if err := decodeJSON(r, &req); err != nil || !validUUID(req.AssignmentID) {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	err := s.store.AssignAssignmentToClass(r.Context(), classID, req.AssignmentID)
	if repository.IsUniqueViolation(err) {
		writeError(w, http.StatusConflict, "assignment_already_assigned")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]bool{"success": true})
}

func (s *Server) handleRemoveClassAssignment(w http.ResponseWriter, r *http.Request) {
	classID := chi.URLParam(r, "classId")
	assignmentID := chi.URLParam(r, "assignmentId")
	if !validUUID(classID) || !validUUID(assignmentID) {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	found, err := s.store.RemoveAssignmentFromClass(r.Context(), classID, assignmentID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "assignment_not_assigned")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
