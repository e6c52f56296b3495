package repository

import (
	"context"
	"time"

	"github.com/serkansentuna34/serkan-ai-api/internal/model"
)

const userColumns = `id, email, password_hash, name, role, avatar_url, is_active, last_login, created_at`

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.Role,
		&user.AvatarURL,
		&user.IsActive,
		&user.LastLogin,
		&user.CreatedAt,
	)
	return user, err
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (s *Store) GetUserByID(ctx context.Context, userID string) (model.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	return scanUser(row)
}

type UserFilter struct {
	Role   string
	Search string
}

func (s *Store) ListUsers(ctx context.Context, filter UserFilter) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	var (
		conditions []string
		args       []any
	)
	if filter.Role != "" {
		args = append(args, filter.Role)
		conditions = append(conditions, `role = $1`)
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		placeholder := "$1"
		if len(args) == 2 {
			placeholder = "$2"
		}
		conditions = append(conditions, `(name ILIKE `+placeholder+` OR email ILIKE `+placeholder+`)`)
	}
	for i, cond := range conditions {
		if i == 0 {
			query += ` WHERE ` + cond
		} else {
			query += ` AND ` + cond
		}
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (s *Store) CreateUser(ctx context.Context, email, passwordHash, name string, role model.Role) (model.User, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, name, role)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns, email, passwordHash, name, role)
	return scanUser(row)
}

func (s *Store) UpdateUser(ctx context.Context, userID string, email, name, avatarURL *string) (model.User, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE users
		SET email = COALESCE($1, email),
		    name = COALESCE($2, name),
		    avatar_url = COALESCE($3, avatar_url)
		WHERE id = $4
		RETURNING `+userColumns, email, name, avatarURL, userID)
	return scanUser(row)
}

func (s *Store) UpdateUserRole(ctx context.Context, userID string, role model.Role) (model.User, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE users SET role = $1 WHERE id = $2 RETURNING `+userColumns, role, userID)
	return scanUser(row)
}

func (s *Store) UpdateUserStatus(ctx context.Context, userID string, isActive bool) (model.User, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE users SET is_active = $1 WHERE id = $2 RETURNING `+userColumns, isActive, userID)
	return scanUser(row)
}

func (s *Store) UpdateUserPassword(ctx context.Context, userID, passwordHash string) (model.User, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE users SET password_hash = $1 WHERE id = $2 RETURNING `+userColumns, passwordHash, userID)
	return scanUser(row)
}

func (s *Store) TouchLastLogin(ctx context.Context, userID string, at time.Time) error {
	_, err := s.pool.Exec(ctx, `UPDATE users SET last_login = $1 WHERE id = $2`, at, userID)
	return err
}

func (s *Store) DeleteUser(ctx context.Context, userID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

type UserStatistics struct {
	TotalUsers         int64 `json:"totalUsers"`
	ActiveUsers        int64 `json:"activeUsers"`
	StudentCount       int64 `json:"studentCount"`
	InstructorCount    int64 `json:"instructorCount"`
	AdminCount         int64 `json:"adminCount"`
	PendingAssignments int64 `json:"pendingAssignments"`
	RecentlyActive     int64 `json:"recentlyActive"`
	NewUsersThisMonth  int64 `json:"newUsersThisMonth"`
}

func (s *Store) GetUserStatistics(ctx context.Context) (UserStatistics, error) {
	var stats UserStatistics
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM users WHERE is_active = true),
			(SELECT COUNT(*) FROM users WHERE role = 'student'),
			(SELECT COUNT(*) FROM users WHERE role = 'instructor'),
			(SELECT COUNT(*) FROM users WHERE role = 'admin'),
			(SELECT COUNT(*) FROM assignment_submissions WHERE status = 'submitted'),
			(SELECT COUNT(*) FROM users WHERE last_login >= now() - INTERVAL '7 days'),
			(SELECT COUNT(*) FROM users WHERE created_at >= DATE_TRUNC('month', CURRENT_DATE))
	`).Scan(
		&stats.TotalUsers,
		&stats.ActiveUsers,
		&stats.StudentCount,
		&stats.InstructorCount,
		&stats.AdminCount,
		&stats.PendingAssignments,
		&stats.RecentlyActive,
		&stats.NewUsersThisMonth,
	)
	return stats, err
}
