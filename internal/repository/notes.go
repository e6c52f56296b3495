package repository

import (
	"context"

	"github.com/serkansentuna34/serkan-ai-api/internal/model"
)

const noteColumns = `n.id, n.user_id, n.lesson_id, l.title, n.title, n.content, n.tags, n.created_at, n.updated_at`

func scanNote(row interface{ Scan(...any) error }) (model.Note, error) {
	var note model.Note
	err := row.Scan(
		&note.ID,
		&note.UserID,
		&note.LessonID,
		&note.LessonTitle,
		&note.Title,
		&note.Content,
		&note.Tags,
		&note.CreatedAt,
		&note.UpdatedAt,
	)
	return note, err
}

func (s *Store) ListNotes(ctx context.Context, userID string, search string) ([]model.Note, error) {
	query := `
		SELECT ` + noteColumns + `
		FROM notes n
		LEFT JOIN lessons l ON l.id = n.lesson_id
		WHERE n.user_id = $1`
	args := []any{userID}
	if search != "" {
		args = append(args, "%"+search+"%")
		query += ` AND (n.title ILIKE $2 OR n.content ILIKE $2)`
	}
	query += ` ORDER BY n.updated_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []model.Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

func (s *Store) GetNote(ctx context.Context, noteID, userID string) (model.Note, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+noteColumns+`
		FROM notes n
		LEFT JOIN lessons l ON l.id = n.lesson_id
		WHERE n.id = $1 AND n.user_id = $2
	`, noteID, userID)
	return scanNote(row)
}

// NotesByIDs returns the user's notes matching ids, for the email export.
func (s *Store) NotesByIDs(ctx context.Context, userID string, ids []string) ([]model.Note, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+noteColumns+`
		FROM notes n
		LEFT JOIN lessons l ON l.id = n.lesson_id
		WHERE n.user_id = $1 AND n.id = ANY($2)
		ORDER BY n.created_at
	`, userID, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []model.Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

func (s *Store) CreateNote(ctx context.Context, userID string, lessonID *string, title, content string, tags []string) (model.Note, error) {
	if tags == nil {
		tags = []string{}
	}
	var noteID string
	err := s.pool.QueryRow(ctx, `
		INSERT INTO notes (user_id, lesson_id, title, content, tags)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, userID, lessonID, title, content, tags).Scan(&noteID)
	if err != nil {
		return model.Note{}, err
	}
	return s.GetNote(ctx, noteID, userID)
}

func (s *Store) UpdateNote(ctx context.Context, noteID, userID string, title, content *string, tags []string) (model.Note, error) {
	_, err := s.pool.Exec(ctx, `
		UPDATE notes
		SET title = COALESCE($1, title),
		    content = COALESCE($2, content),
		    tags = COALESCE($3, tags),
		    updated_at = now()
		WHERE id = $4 AND user_id = $5
	`, title, content, tags, noteID, userID)
	if err != nil {
		return model.Note{}, err
	}
	return s.GetNote(ctx, noteID, userID)
}

func (s *Store) DeleteNote(ctx context.Context, noteID, userID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM notes WHERE id = $1 AND user_id = $2`, noteID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

const quickNoteColumns = `id, user_id, class_id, schedule_id, content, color, created_at`

func scanQuickNote(row interface{ Scan(...any) error }) (model.QuickNote, error) {
	var note model.QuickNote
	err := row.Scan(
		&note.ID,
		&note.UserID,
		&note.ClassID,
		&note.ScheduleID,
		&note.Content,
		&note.Color,
		&note.CreatedAt,
	)
	return note, err
}

func (s *Store) ListQuickNotes(ctx context.Context, userID string) ([]model.QuickNote, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+quickNoteColumns+` FROM quick_notes
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []model.QuickNote
	for rows.Next() {
		note, err := scanQuickNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

func (s *Store) CreateQuickNote(ctx context.Context, userID string, classID, scheduleID *string, content, color string) (model.QuickNote, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO quick_notes (user_id, class_id, schedule_id, content, color)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+quickNoteColumns, userID, classID, scheduleID, content, color)
	return scanQuickNote(row)
}

func (s *Store) DeleteQuickNote(ctx context.Context, noteID, userID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM quick_notes WHERE id = $1 AND user_id = $2`, noteID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
