package repository

import (
	"context"
	"time"

	"github.com/serkansentuna34/serkan-ai-api/internal/model"
)

const assignmentColumns = `id, course_id, title, description, instructions, deadline, max_points, attachments, is_published, created_at, updated_at`

func scanAssignment(row interface{ Scan(...any) error }) (model.Assignment, error) {
	var assignment model.Assignment
	err := row.Scan(
		&assignment.ID,
		&assignment.CourseID,
		&assignment.Title,
		&assignment.Description,
		&assignment.Instructions,
		&assignment.Deadline,
		&assignment.MaxPoints,
		&assignment.Attachments,
		&assignment.IsPublished,
		&assignment.CreatedAt,
		&assignment.UpdatedAt,
	)
	return assignment, err
}

// AssignmentWithSubmission is a published assignment merged with the
// requesting user's submission, if any.
type AssignmentWithSubmission struct {
	Assignment  model.Assignment
	CourseTitle *string
	Submission  *model.Submission
}

// ListAssignmentsForUser returns published assignments visible to the user:
// assignments attached to any of the user's classes plus unattached ones.
func (s *Store) ListAssignmentsForUser(ctx context.Context, userID string) ([]AssignmentWithSubmission, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT a.id, a.course_id, a.title, a.description, a.instructions, a.deadline,
		       a.max_points, a.attachments, a.is_published, a.created_at, a.updated_at,
		       c.title,
		       sub.id, sub.content, sub.file_urls, sub.status, sub.score, sub.feedback,
		       sub.submitted_at, sub.graded_at, sub.graded_by
		FROM assignments a
		LEFT JOIN courses c ON c.id = a.course_id
		LEFT JOIN assignment_submissions sub ON sub.assignment_id = a.id AND sub.user_id = $1
		WHERE a.is_published = true
		  AND (NOT EXISTS (SELECT 1 FROM class_assignments ca WHERE ca.assignment_id = a.id)
		       OR EXISTS (SELECT 1
		                  FROM class_assignments ca
		                  JOIN class_members cm ON cm.class_id = ca.class_id
		                  WHERE ca.assignment_id = a.id AND cm.user_id = $1))
		ORDER BY a.deadline NULLS LAST, a.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []AssignmentWithSubmission
	for rows.Next() {
		var (
			entry       AssignmentWithSubmission
			submissionID *string
			content      *string
			fileURLs     []string
			status       *string
			score        *int
			feedback     *string
			submittedAt  *time.Time
			gradedAt     *time.Time
			gradedBy     *string
		)
		err := rows.Scan(
			&entry.Assignment.ID,
			&entry.Assignment.CourseID,
			&entry.Assignment.Title,
			&entry.Assignment.Description,
			&entry.Assignment.Instructions,
			&entry.Assignment.Deadline,
			&entry.Assignment.MaxPoints,
			&entry.Assignment.Attachments,
			&entry.Assignment.IsPublished,
			&entry.Assignment.CreatedAt,
			&entry.Assignment.UpdatedAt,
			&entry.CourseTitle,
			&submissionID, &content, &fileURLs, &status, &score, &feedback,
			&submittedAt, &gradedAt, &gradedBy,
		)
		if err != nil {
			return nil, err
		}
		if submissionID != nil {
			entry.Submission = &model.Submission{
				ID:           *submissionID,
				AssignmentID: entry.Assignment.ID,
				UserID:       userID,
				Content:      content,
				FileURLs:     fileURLs,
				Status:       model.SubmissionState(*status),
				Score:        score,
				Feedback:     feedback,
				SubmittedAt:  *submittedAt,
				GradedAt:     gradedAt,
				GradedBy:     gradedBy,
			}
		}
		assignments = append(assignments, entry)
	}
	return assignments, rows.Err()
}

func (s *Store) GetAssignment(ctx context.Context, assignmentID string) (model.Assignment, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+assignmentColumns+` FROM assignments WHERE id = $1`, assignmentID)
	return scanAssignment(row)
}

func (s *Store) CreateAssignment(ctx context.Context, courseID *string, title string, description, instructions *string, deadline *time.Time, maxPoints int) (model.Assignment, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO assignments (course_id, title, description, instructions, deadline, max_points)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+assignmentColumns, courseID, title, description, instructions, deadline, maxPoints)
	return scanAssignment(row)
}

func (s *Store) UpdateAssignment(ctx context.Context, assignmentID string, title, description, instructions *string, deadline *time.Time, maxPoints *int, isPublished *bool) (model.Assignment, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE assignments
		SET title = COALESCE($1, title),
		    description = COALESCE($2, description),
		    instructions = COALESCE($3, instructions),
		    deadline = COALESCE($4, deadline),
		    max_points = COALESCE($5, max_points),
		    is_published = COALESCE($6, is_published),
		    updated_at = now()
		WHERE id = $7
		RETURNING `+assignmentColumns, title, description, instructions, deadline, maxPoints, isPublished, assignmentID)
	return scanAssignment(row)
}

func (s *Store) DeleteAssignment(ctx context.Context, assignmentID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM assignments WHERE id = $1`, assignmentID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

const submissionColumns = `id, assignment_id, user_id, content, file_urls, status, score, feedback, submitted_at, graded_at, graded_by`

func scanSubmission(row interface{ Scan(...any) error }) (model.Submission, error) {
	var submission model.Submission
	err := row.Scan(
		&submission.ID,
		&submission.AssignmentID,
		&submission.UserID,
		&submission.Content,
		&submission.FileURLs,
		&submission.Status,
		&submission.Score,
		&submission.Feedback,
		&submission.SubmittedAt,
		&submission.GradedAt,
		&submission.GradedBy,
	)
	return submission, err
}

// SubmitAssignment upserts the user's submission. Resubmitting replaces the
// content and resets the grade.
func (s *Store) SubmitAssignment(ctx context.Context, assignmentID, userID string, content *string, fileURLs []string, at time.Time) (model.Submission, error) {
	if fileURLs == nil {
		fileURLs = []string{}
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO assignment_submissions (assignment_id, user_id, content, file_urls, submitted_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (assignment_id, user_id)
		DO UPDATE SET content = $3, file_urls = $4, status = 'submitted',
		              score = NULL, feedback = NULL, submitted_at = $5,
		              graded_at = NULL, graded_by = NULL
		RETURNING `+submissionColumns, assignmentID, userID, content, fileURLs, at)
	return scanSubmission(row)
}

// SubmissionRow is a submission joined with the submitting user.
type SubmissionRow struct {
	Submission model.Submission
	UserName   string
	UserEmail  string
}

func (s *Store) ListSubmissions(ctx context.Context, assignmentID string) ([]SubmissionRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT sub.id, sub.assignment_id, sub.user_id, sub.content, sub.file_urls, sub.status,
		       sub.score, sub.feedback, sub.submitted_at, sub.graded_at, sub.graded_by,
		       u.name, u.email
		FROM assignment_submissions sub
		JOIN users u ON u.id = sub.user_id
		WHERE sub.assignment_id = $1
		ORDER BY sub.submitted_at DESC
	`, assignmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var submissions []SubmissionRow
	for rows.Next() {
		var entry SubmissionRow
		err := rows.Scan(
			&entry.Submission.ID,
			&entry.Submission.AssignmentID,
			&entry.Submission.UserID,
			&entry.Submission.Content,
			&entry.Submission.FileURLs,
			&entry.Submission.Status,
			&entry.Submission.Score,
			&entry.Submission.Feedback,
			&entry.Submission.SubmittedAt,
			&entry.Submission.GradedAt,
			&entry.Submission.GradedBy,
			&entry.UserName,
			&entry.UserEmail,
		)
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, entry)
	}
	return submissions, rows.Err()
}

func (s *Store) GradeSubmission(ctx context.Context, submissionID string, score int, feedback *string, gradedBy string, at time.Time) (model.Submission, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE assignment_submissions
		SET score = $1, feedback = $2, status = 'graded', graded_at = $3, graded_by = $4
		WHERE id = $5
		RETURNING `+submissionColumns, score, feedback, at, gradedBy, submissionID)
	return scanSubmission(row)
}
