package http

import (
	"net/http"
	"time"

	"github.com/serkansentuna34/serkan-ai-api/internal/model"
	"github.com/serkansentuna34/serkan-ai-api/internal/repository"
)

type studentDashboardResponse struct {
	Stats               repository.StudentDashboard     `json:"stats"`
	RecentCourses       []repository.RecentCourse       `json:"recentCourses"`
	UpcomingAssignments []repository.UpcomingAssignment `json:"upcomingAssignments"`
	RecentActivities    []activityResponse              `json:"recentActivities"`
}

type activityResponse struct {
	Action    string  `json:"action"`
	Detail    *string `json:"detail"`
	CreatedAt string  `json:"createdAt"`
}

func (s *Server) handleStudentDashboard(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	ctx := r.Context()

	stats, err := s.store.GetStudentDashboard(ctx, claims.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	recent, err := s.store.ListRecentCourses(ctx, claims.UserID, parseLimit(r, 5))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	upcoming, err := s.store.ListUpcomingAssignments(ctx, claims.UserID, parseLimit(r, 5))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	activities, err := s.store.ListRecentActivities(ctx, claims.UserID, parseLimit(r, 10))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	resp := studentDashboardResponse{
		Stats:               stats,
		RecentCourses:       recent,
		UpcomingAssignments: upcoming,
		RecentActivities:    mapActivities(activities),
	}
	if resp.RecentCourses == nil {
		resp.RecentCourses = []repository.RecentCourse{}
	}
	if resp.UpcomingAssignments == nil {
		resp.UpcomingAssignments = []repository.UpcomingAssignment{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func mapActivities(logs []model.ActivityLog) []activityResponse {
	resp := make([]activityResponse, 0, len(logs))
	for _, entry := range logs {
		resp = append(resp, activityResponse{
			Action:    entry.Action,
			Detail:    entry.Detail,
			CreatedAt: entry.CreatedAt.Format(time.RFC3339),
		})
	}
	return resp
}

func (s *Server) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	overview, err := s.store.GetAdminOverview(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, overview)
}
