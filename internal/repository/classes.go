package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/serkansentuna34/serkan-ai-api/internal/model"
)

const classColumns = `id, name, description, instructor_id, start_date, end_date, is_active, created_at`

func scanClass(row interface{ Scan(...any) error }) (model.Class, error) {
	var class model.Class
	err := row.Scan(
		&class.ID,
		&class.Name,
		&class.Description,
		&class.InstructorID,
		&class.StartDate,
		&class.EndDate,
		&class.IsActive,
		&class.CreatedAt,
	)
	return class, err
}

// ClassSummary is a class row together with its membership and course counts,
// used by the admin class list.
type ClassSummary struct {
	Class          model.Class
	InstructorName *string
	MemberCount    int64
	CourseCount    int64
}

func (s *Store) ListClasses(ctx context.Context) ([]ClassSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT c.id, c.name, c.description, c.instructor_id, c.start_date, c.end_date, c.is_active, c.created_at,
		       u.name,
		       (SELECT COUNT(*) FROM class_members cm WHERE cm.class_id = c.id),
		       (SELECT COUNT(*) FROM class_courses cc WHERE cc.class_id = c.id)
		FROM classes c
		LEFT JOIN users u ON u.id = c.instructor_id
		ORDER BY c.start_date DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []ClassSummary
	for rows.Next() {
		var summary ClassSummary
		err := rows.Scan(
			&summary.Class.ID,
			&summary.Class.Name,
			&summary.Class.Description,
			&summary.Class.InstructorID,
			&summary.Class.StartDate,
			&summary.Class.EndDate,
			&summary.Class.IsActive,
			&summary.Class.CreatedAt,
			&summary.InstructorName,
			&summary.MemberCount,
			&summary.CourseCount,
		)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

func (s *Store) GetClass(ctx context.Context, classID string) (model.Class, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+classColumns+` FROM classes WHERE id = $1`, classID)
	return scanClass(row)
}

func (s *Store) CreateClass(ctx context.Context, name string, description *string, instructorID *string, startDate, endDate time.Time) (model.Class, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO classes (name, description, instructor_id, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+classColumns, name, description, instructorID, startDate, endDate)
	return scanClass(row)
}

func (s *Store) UpdateClass(ctx context.Context, classID string, name, description, instructorID *string, startDate, endDate *time.Time, isActive *bool) (model.Class, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE classes
		SET name = COALESCE($1, name),
		    description = COALESCE($2, description),
		    instructor_id = COALESCE($3, instructor_id),
		    start_date = COALESCE($4, start_date),
		    end_date = COALESCE($5, end_date),
		    is_active = COALESCE($6, is_active)
		WHERE id = $7
		RETURNING `+classColumns, name, description, instructorID, startDate, endDate, isActive, classID)
	return scanClass(row)
}

func (s *Store) DeleteClass(ctx context.Context, classID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM classes WHERE id = $1`, classID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ActiveClassForUser returns the user's current active class: the active
// membership whose class has the most recent start date. Ties on start date
// break on the newer class row.
func (s *Store) ActiveClassForUser(ctx context.Context, userID string) (model.Class, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT c.id, c.name, c.description, c.instructor_id, c.start_date, c.end_date, c.is_active, c.created_at
		FROM classes c
		JOIN class_members cm ON cm.class_id = c.id
		WHERE cm.user_id = $1 AND c.is_active = true
		ORDER BY c.start_date DESC, c.created_at DESC
		LIMIT 1
	`, userID)
	return scanClass(row)
}

// ClassMemberRow is a membership joined with the member's user record.
type ClassMemberRow struct {
	MemberID   string
	UserID     string
	Name       string
	Email      string
	Role       model.Role
	EnrolledAt time.Time
}

func (s *Store) ListClassMembers(ctx context.Context, classID string) ([]ClassMemberRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT cm.id, u.id, u.name, u.email, u.role, cm.enrolled_at
		FROM class_members cm
		JOIN users u ON u.id = cm.user_id
		WHERE cm.class_id = $1
		ORDER BY u.name
	`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []ClassMemberRow
	for rows.Next() {
		var member ClassMemberRow
		err := rows.Scan(&member.MemberID, &member.UserID, &member.Name, &member.Email, &member.Role, &member.EnrolledAt)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return members, rows.Err()
}

// AddClassMember adds a user to a class and enrolls them into every course
// already assigned to the class, in one transaction.
func (s *Store) AddClassMember(ctx context.Context, classID, userID string) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO class_members (class_id, user_id) VALUES ($1, $2)
		`, classID, userID)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO enrollments (user_id, course_id)
			SELECT $1, cc.course_id FROM class_courses cc WHERE cc.class_id = $2
			ON CONFLICT (user_id, course_id) DO NOTHING
		`, userID, classID)
		return err
	})
}

func (s *Store) RemoveClassMember(ctx context.Context, classID, userID string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM class_members WHERE class_id = $1 AND user_id = $2`, classID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ClassCourseRow is a class-course assignment joined with the course record.
type ClassCourseRow struct {
	AssignmentID string
	Course       model.Course
	OrderIndex   int
	StartDate    *time.Time
	EndDate      *time.Time
}

func (s *Store) ListClassCourses(ctx context.Context, classID string) ([]ClassCourseRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT cc.id, cc.order_index, cc.start_date, cc.end_date,
		       co.id, co.title, co.description, co.content, co.thumbnail_url, co.attachments,
		       co.instructor_id, co.is_published, co.order_index, co.created_at, co.updated_at
		FROM class_courses cc
		JOIN courses co ON co.id = cc.course_id
		WHERE cc.class_id = $1
		ORDER BY cc.order_index, cc.assigned_at
	`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assigned []ClassCourseRow
	for rows.Next() {
		var entry ClassCourseRow
		err := rows.Scan(
			&entry.AssignmentID,
			&entry.OrderIndex,
			&entry.StartDate,
			&entry.EndDate,
			&entry.Course.ID,
			&entry.Course.Title,
			&entry.Course.Description,
			&entry.Course.Content,
			&entry.Course.ThumbnailURL,
			&entry.Course.Attachments,
			&entry.Course.InstructorID,
			&entry.Course.IsPublished,
			&entry.Course.OrderIndex,
			&entry.Course.CreatedAt,
			&entry.Course.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		assigned = append(assigned, entry)
	}
	return assigned, rows.Err()
}

// AssignCourseToClass links a course to a class and enrolls every current
// member of the class into the course, in one transaction.
func (s *Store) AssignCourseToClass(ctx context.Context, classID, courseID string, orderIndex int, startDate, endDate *time.Time) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO class_courses (class_id, course_id, order_index, start_date, end_date)
			VALUES ($1, $2, $3, $4, $5)
		`, classID, courseID, orderIndex, startDate, endDate)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO enrollments (user_id, course_id)
			SELECT cm.user_id, $1 FROM class_members cm WHERE cm.class_id = $2
			ON CONFLICT (user_id, course_id) DO NOTHING
		`, courseID, classID)
		return err
	})
}

func (s *Store) RemoveCourseFromClass(ctx context.Context, classID, courseID string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM class_courses WHERE class_id = $1 AND course_id = $2`, classID, courseID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) AssignAssignmentToClass(ctx context.Context, classID, assignmentID string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO class_assignments (class_id, assignment_id) VALUES ($1, $2)
	`, classID, assignmentID)
	return err
}

func (s *Store) RemoveAssignmentFromClass(ctx context.Context, classID, assignmentID string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM class_assignments WHERE class_id = $1 AND assignment_id = $2`, classID, assignmentID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ClassStatistics aggregates per-class counts for the admin class view.
type ClassStatistics struct {
	Students           int64 `json:"students"`
	Courses            int64 `json:"courses"`
	Assignments        int64 `json:"assignments"`
	PendingSubmissions int64 `json:"pendingSubmissions"`
}

func (s *Store) GetClassStatistics(ctx context.Context, classID string) (ClassStatistics, error) {
	var stats ClassStatistics
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM class_members WHERE class_id = $1),
			(SELECT COUNT(*) FROM class_courses WHERE class_id = $1),
			(SELECT COUNT(*) FROM class_assignments WHERE class_id = $1),
			(SELECT COUNT(*)
			 FROM assignment_submissions sub
			 JOIN class_assignments ca ON ca.assignment_id = sub.assignment_id
			 WHERE ca.class_id = $1 AND sub.status = 'submitted')
	`, classID).Scan(&stats.Students, &stats.Courses, &stats.Assignments, &stats.PendingSubmissions)
	return stats, err
}

// CloseExpiredClasses deactivates active classes whose end date has passed
// and returns how many were closed.
func (s *Store) CloseExpiredClasses(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE classes SET is_active = false
		WHERE is_active = true AND end_date < $1::date
	`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
