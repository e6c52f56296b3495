package repository

import (
	"context"

	"github.com/serkansentuna34/serkan-ai-api/internal/model"
)

const certificateColumns = `id, user_id, class_id, certificate_code, status, completion_percentage, requirements_met, created_at, updated_at`

func scanCertificate(row interface{ Scan(...any) error }) (model.Certificate, error) {
	var cert model.Certificate
	err := row.Scan(
		&cert.ID,
		&cert.UserID,
		&cert.ClassID,
		&cert.Code,
		&cert.Status,
		&cert.CompletionPercentage,
		&cert.RequirementsMet,
		&cert.CreatedAt,
		&cert.UpdatedAt,
	)
	return cert, err
}

func (s *Store) GetCertificate(ctx context.Context, userID, classID string) (model.Certificate, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+certificateColumns+` FROM certificates WHERE user_id = $1 AND class_id = $2
	`, userID, classID)
	return scanCertificate(row)
}

func (s *Store) CreateCertificate(ctx context.Context, userID, classID, code string) (model.Certificate, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO certificates (user_id, class_id, certificate_code)
		VALUES ($1, $2, $3)
		RETURNING `+certificateColumns, userID, classID, code)
	return scanCertificate(row)
}

// UpdateCertificateEvaluation overwrites the stored evaluation with the
// latest recomputed result. Status may move in either direction.
func (s *Store) UpdateCertificateEvaluation(ctx context.Context, certificateID string, status model.CertificateState, completionPercentage int, requirementsMet []byte) (model.Certificate, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE certificates
		SET status = $1, completion_percentage = $2, requirements_met = $3, updated_at = now()
		WHERE id = $4
		RETURNING `+certificateColumns, status, completionPercentage, requirementsMet, certificateID)
	return scanCertificate(row)
}
