package repository

import (
	"context"
	"time"

	"github.com/serkansentuna34/serkan-ai-api/internal/model"
)

const courseColumns = `id, title, description, content, thumbnail_url, attachments, instructor_id, is_published, order_index, created_at, updated_at`

func scanCourse(row interface{ Scan(...any) error }) (model.Course, error) {
	var course model.Course
	err := row.Scan(
		&course.ID,
		&course.Title,
		&course.Description,
		&course.Content,
		&course.ThumbnailURL,
		&course.Attachments,
		&course.InstructorID,
		&course.IsPublished,
		&course.OrderIndex,
		&course.CreatedAt,
		&course.UpdatedAt,
	)
	return course, err
}

// CourseWithEnrollment is a published course merged with the requesting
// user's enrollment, if any.
type CourseWithEnrollment struct {
	Course             model.Course
	InstructorName     *string
	Enrolled           bool
	ProgressPercentage int
	CompletedAt        *time.Time
}

func (s *Store) ListPublishedCourses(ctx context.Context, userID string) ([]CourseWithEnrollment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT c.id, c.title, c.description, c.content, c.thumbnail_url, c.attachments,
		       c.instructor_id, c.is_published, c.order_index, c.created_at, c.updated_at,
		       u.name,
		       e.id IS NOT NULL,
		       COALESCE(e.progress_percentage, 0),
		       e.completed_at
		FROM courses c
		LEFT JOIN users u ON u.id = c.instructor_id
		LEFT JOIN enrollments e ON e.course_id = c.id AND e.user_id = $1
		WHERE c.is_published = true
		ORDER BY c.order_index, c.created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []CourseWithEnrollment
	for rows.Next() {
		var entry CourseWithEnrollment
		err := rows.Scan(
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
			&entry.InstructorName,
			&entry.Enrolled,
			&entry.ProgressPercentage,
			&entry.CompletedAt,
		)
		if err != nil {
			return nil, err
		}
		courses = append(courses, entry)
	}
	return courses, rows.Err()
}

func (s *Store) GetCourse(ctx context.Context, courseID string) (model.Course, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, courseID)
	return scanCourse(row)
}

// ModuleWithLessons is a course module and its lessons in order.
type ModuleWithLessons struct {
	Module  model.CourseModule
	Lessons []model.Lesson
}

func (s *Store) ListCourseModules(ctx context.Context, courseID string) ([]ModuleWithLessons, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT m.id, m.course_id, m.title, m.order_index,
		       l.id, l.module_id, l.title, l.content, l.order_index, l.is_published
		FROM course_modules m
		LEFT JOIN lessons l ON l.module_id = m.id
		WHERE m.course_id = $1
		ORDER BY m.order_index, l.order_index
	`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var modules []ModuleWithLessons
	index := map[string]int{}
	for rows.Next() {
		var (
			module model.CourseModule
			lesson model.Lesson
			// lesson columns are NULL when a module has no lessons
			lessonID    *string
			lessonTitle *string
			content     *string
			orderIndex  *int
			published   *bool
			moduleID    *string
		)
		err := rows.Scan(
			&module.ID, &module.CourseID, &module.Title, &module.OrderIndex,
			&lessonID, &moduleID, &lessonTitle, &content, &orderIndex, &published,
		)
		if err != nil {
			return nil, err
		}
		pos, ok := index[module.ID]
		if !ok {
			pos = len(modules)
			index[module.ID] = pos
			modules = append(modules, ModuleWithLessons{Module: module})
		}
		if lessonID != nil {
			lesson = model.Lesson{
				ID:         *lessonID,
				ModuleID:   *moduleID,
				Title:      *lessonTitle,
				Content:    content,
				OrderIndex: *orderIndex,
			}
			if published != nil {
				lesson.IsPublished = *published
			}
			modules[pos].Lessons = append(modules[pos].Lessons, lesson)
		}
	}
	return modules, rows.Err()
}

func (s *Store) GetEnrollment(ctx context.Context, userID, courseID string) (model.Enrollment, error) {
	var enrollment model.Enrollment
	row := s.pool.QueryRow(ctx, `
		SELECT id, user_id, course_id, progress_percentage, enrolled_at, completed_at
		FROM enrollments
		WHERE user_id = $1 AND course_id = $2
	`, userID, courseID)
	err := row.Scan(&enrollment.ID, &enrollment.UserID, &enrollment.CourseID,
		&enrollment.ProgressPercentage, &enrollment.EnrolledAt, &enrollment.CompletedAt)
	return enrollment, err
}

func (s *Store) CreateCourse(ctx context.Context, title string, description, content, thumbnailURL *string, instructorID *string, isPublished bool, orderIndex int) (model.Course, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO courses (title, description, content, thumbnail_url, instructor_id, is_published, order_index)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+courseColumns, title, description, content, thumbnailURL, instructorID, isPublished, orderIndex)
	return scanCourse(row)
}

func (s *Store) UpdateCourse(ctx context.Context, courseID string, title, description, content, thumbnailURL *string, isPublished *bool, orderIndex *int) (model.Course, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE courses
		SET title = COALESCE($1, title),
		    description = COALESCE($2, description),
		    content = COALESCE($3, content),
		    thumbnail_url = COALESCE($4, thumbnail_url),
		    is_published = COALESCE($5, is_published),
		    order_index = COALESCE($6, order_index),
		    updated_at = now()
		WHERE id = $7
		RETURNING `+courseColumns, title, description, content, thumbnailURL, isPublished, orderIndex, courseID)
	return scanCourse(row)
}

func (s *Store) DeleteCourse(ctx context.Context, courseID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, courseID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// CompleteCourse marks the user's enrollment complete, creating it first if
// the user was never enrolled.
func (s *Store) CompleteCourse(ctx context.Context, userID, courseID string, at time.Time) (model.Enrollment, error) {
	var enrollment model.Enrollment
	row := s.pool.QueryRow(ctx, `
		INSERT INTO enrollments (user_id, course_id, progress_percentage, completed_at)
		VALUES ($1, $2, 100, $3)
		ON CONFLICT (user_id, course_id)
		DO UPDATE SET progress_percentage = 100, completed_at = $3
		RETURNING id, user_id, course_id, progress_percentage, enrolled_at, completed_at
	`, userID, courseID, at)
	err := row.Scan(&enrollment.ID, &enrollment.UserID, &enrollment.CourseID,
		&enrollment.ProgressPercentage, &enrollment.EnrolledAt, &enrollment.CompletedAt)
	return enrollment, err
}

// CourseUserStatistics summarizes a user's course progress for the student
// dashboard.
type CourseUserStatistics struct {
	EnrolledCourses  int64 `json:"enrolledCourses"`
	CompletedCourses int64 `json:"completedCourses"`
	AverageProgress  int64 `json:"averageProgress"`
}

func (s *Store) GetCourseUserStatistics(ctx context.Context, userID string) (CourseUserStatistics, error) {
	var stats CourseUserStatistics
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE completed_at IS NOT NULL),
		       COALESCE(ROUND(AVG(progress_percentage)), 0)
		FROM enrollments
		WHERE user_id = $1
	`, userID).Scan(&stats.EnrolledCourses, &stats.CompletedCourses, &stats.AverageProgress)
	return stats, err
}
