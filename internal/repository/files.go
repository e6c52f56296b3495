package repository

import (
	"context"

	"github.com/serkansentuna34/serkan-ai-api/internal/model"
)

func (s *Store) CreateUploadedFile(ctx context.Context, file model.UploadedFile) (model.UploadedFile, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO uploaded_files (filename, original_name, mimetype, size, path, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, file.Filename, file.OriginalName, file.MimeType, file.Size, file.Path, file.UploadedBy)
	err := row.Scan(&file.ID, &file.CreatedAt)
	return file, err
}

func (s *Store) ListCourseMaterials(ctx context.Context, classID string) ([]model.CourseMaterial, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT cm.id, cm.class_id, cm.title, cm.description, cm.file_url, cm.file_type,
		       cm.file_size, cm.qr_code_url, cm.uploaded_by, u.name, cm.order_index, cm.created_at
		FROM course_materials cm
		LEFT JOIN users u ON u.id = cm.uploaded_by
		WHERE cm.class_id = $1 AND cm.is_public = true
		ORDER BY cm.order_index, cm.created_at
	`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var materials []model.CourseMaterial
	for rows.Next() {
		var material model.CourseMaterial
		err := rows.Scan(
			&material.ID,
			&material.ClassID,
			&material.Title,
			&material.Description,
			&material.FileURL,
			&material.FileType,
			&material.FileSize,
			&material.QRCodeURL,
			&material.UploadedBy,
			&material.UploadedByName,
			&material.OrderIndex,
			&material.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		materials = append(materials, material)
	}
	return materials, rows.Err()
}

func (s *Store) CreateCourseMaterial(ctx context.Context, material model.CourseMaterial) (model.CourseMaterial, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO course_materials (class_id, title, description, file_url, file_type, file_size, qr_code_url, uploaded_by, order_index)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`, material.ClassID, material.Title, material.Description, material.FileURL,
		material.FileType, material.FileSize, material.QRCodeURL, material.UploadedBy, material.OrderIndex)
	err := row.Scan(&material.ID, &material.CreatedAt)
	return material, err
}

func (s *Store) RecordActivity(ctx context.Context, userID, action string, detail *string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO activity_logs (user_id, action, detail) VALUES ($1, $2, $3)
	`, userID, action, detail)
	return err
}
