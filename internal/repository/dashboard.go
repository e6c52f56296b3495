package repository

import (
	"context"
	"time"

	"github.com/serkansentuna34/serkan-ai-api/internal/model"
)

// StudentDashboard aggregates the figures shown on a student's landing page.
type StudentDashboard struct {
	EnrolledCourses     int64 `json:"enrolledCourses"`
	CompletedCourses    int64 `json:"completedCourses"`
	PendingAssignments  int64 `json:"pendingAssignments"`
	AttendedSessions    int64 `json:"attendedSessions"`
	NotesCount          int64 `json:"notesCount"`
	AverageProgress     int64 `json:"averageProgress"`
	TimeSpentMinutesAll int64 `json:"timeSpentMinutes"`
}

func (s *Store) GetStudentDashboard(ctx context.Context, userID string) (StudentDashboard, error) {
	var dash StudentDashboard
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM enrollments WHERE user_id = $1),
			(SELECT COUNT(*) FROM enrollments WHERE user_id = $1 AND completed_at IS NOT NULL),
			(SELECT COUNT(*) FROM class_assignments ca
			 JOIN class_members cm ON cm.class_id = ca.class_id
			 JOIN assignments a ON a.id = ca.assignment_id
			 WHERE cm.user_id = $1 AND a.is_published = true
			   AND NOT EXISTS (SELECT 1 FROM assignment_submissions sub
			                   WHERE sub.assignment_id = ca.assignment_id AND sub.user_id = $1)),
			(SELECT COUNT(*) FROM attendance_logs WHERE user_id = $1),
			(SELECT COUNT(*) FROM notes WHERE user_id = $1),
			(SELECT COALESCE(ROUND(AVG(progress_percentage)), 0) FROM enrollments WHERE user_id = $1),
			(SELECT COALESCE(SUM(time_spent_minutes), 0) FROM user_progress WHERE user_id = $1)
	`, userID).Scan(
		&dash.EnrolledCourses,
		&dash.CompletedCourses,
		&dash.PendingAssignments,
		&dash.AttendedSessions,
		&dash.NotesCount,
		&dash.AverageProgress,
		&dash.TimeSpentMinutesAll,
	)
	return dash, err
}

// RecentCourse is an enrollment row shaped for the dashboard's recent list.
type RecentCourse struct {
	CourseID           string     `json:"courseId"`
	Title              string     `json:"title"`
	ThumbnailURL       *string    `json:"thumbnailUrl"`
	ProgressPercentage int        `json:"progressPercentage"`
	EnrolledAt         time.Time  `json:"enrolledAt"`
	CompletedAt        *time.Time `json:"completedAt"`
}

func (s *Store) ListRecentCourses(ctx context.Context, userID string, limit int) ([]RecentCourse, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT c.id, c.title, c.thumbnail_url, e.progress_percentage, e.enrolled_at, e.completed_at
		FROM enrollments e
		JOIN courses c ON c.id = e.course_id
		WHERE e.user_id = $1
		ORDER BY e.enrolled_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []RecentCourse
	for rows.Next() {
		var course RecentCourse
		err := rows.Scan(&course.CourseID, &course.Title, &course.ThumbnailURL,
			&course.ProgressPercentage, &course.EnrolledAt, &course.CompletedAt)
		if err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}
	return courses, rows.Err()
}

// UpcomingAssignment is an unsubmitted assignment with a future deadline.
type UpcomingAssignment struct {
	AssignmentID string    `json:"assignmentId"`
	Title        string    `json:"title"`
	CourseTitle  *string   `json:"courseTitle"`
	Deadline     time.Time `json:"deadline"`
	MaxPoints    int       `json:"maxPoints"`
}

func (s *Store) ListUpcomingAssignments(ctx context.Context, userID string, limit int) ([]UpcomingAssignment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT a.id, a.title, c.title, a.deadline, a.max_points
		FROM class_assignments ca
		JOIN class_members cm ON cm.class_id = ca.class_id
		JOIN assignments a ON a.id = ca.assignment_id
		LEFT JOIN courses c ON c.id = a.course_id
		WHERE cm.user_id = $1 AND a.is_published = true
		  AND a.deadline IS NOT NULL AND a.deadline > now()
		  AND NOT EXISTS (SELECT 1 FROM assignment_submissions sub
		                  WHERE sub.assignment_id = a.id AND sub.user_id = $1)
		ORDER BY a.deadline
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []UpcomingAssignment
	for rows.Next() {
		var assignment UpcomingAssignment
		err := rows.Scan(&assignment.AssignmentID, &assignment.Title, &assignment.CourseTitle,
			&assignment.Deadline, &assignment.MaxPoints)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, assignment)
	}
	return assignments, rows.Err()
}

func (s *Store) ListRecentActivities(ctx context.Context, userID string, limit int) ([]model.ActivityLog, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, action, detail, created_at
		FROM activity_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []model.ActivityLog
	for rows.Next() {
		var activity model.ActivityLog
		err := rows.Scan(&activity.ID, &activity.UserID, &activity.Action, &activity.Detail, &activity.CreatedAt)
		if err != nil {
			return nil, err
		}
		activities = append(activities, activity)
	}
	return activities, rows.Err()
}

// AdminOverview aggregates the platform-wide figures for the admin dashboard.
type AdminOverview struct {
	TotalUsers        int64 `json:"totalUsers"`
	TotalCourses      int64 `json:"totalCourses"`
	TotalClasses      int64 `json:"totalClasses"`
	ActiveClasses     int64 `json:"activeClasses"`
	TotalEnrollments  int64 `json:"totalEnrollments"`
	TotalSubmissions  int64 `json:"totalSubmissions"`
	UngradedCount     int64 `json:"ungradedCount"`
	CertificatesReady int64 `json:"certificatesReady"`
}

func (s *Store) GetAdminOverview(ctx context.Context) (AdminOverview, error) {
	var overview AdminOverview
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM courses),
			(SELECT COUNT(*) FROM classes),
			(SELECT COUNT(*) FROM classes WHERE is_active = true),
			(SELECT COUNT(*) FROM enrollments),
			(SELECT COUNT(*) FROM assignment_submissions),
			(SELECT COUNT(*) FROM assignment_submissions WHERE status = 'submitted'),
			(SELECT COUNT(*) FROM certificates WHERE status = 'requirements_met')
	`).Scan(
		&overview.TotalUsers,
		&overview.TotalCourses,
		&overview.TotalClasses,
		&overview.ActiveClasses,
		&overview.TotalEnrollments,
		&overview.TotalSubmissions,
		&overview.UngradedCount,
		&overview.CertificatesReady,
	)
	return overview, err
}
