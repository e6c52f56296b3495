package repository

import (
	"context"
	"fmt"

	"github.com/serkansentuna34/serkan-ai-api/internal/model"
)

const libraryColumns = `li.id, li.title, li.description, li.type, li.url, li.file_url, li.content, li.tags, li.category, li.is_public, li.downloads, li.created_by, u.name, li.created_at`

func scanLibraryItem(row interface{ Scan(...any) error }) (model.LibraryItem, error) {
	var item model.LibraryItem
	err := row.Scan(
		&item.ID,
		&item.Title,
		&item.Description,
		&item.Type,
		&item.URL,
		&item.FileURL,
		&item.Content,
		&item.Tags,
		&item.Category,
		&item.IsPublic,
		&item.Downloads,
		&item.CreatedBy,
		&item.CreatorName,
		&item.CreatedAt,
	)
	return item, err
}

type LibraryFilter struct {
	Type     string
	Category string
	Search   string
}

func (s *Store) ListLibraryItems(ctx context.Context, filter LibraryFilter) ([]model.LibraryItem, error) {
	query := `
		SELECT ` + libraryColumns + `
		FROM library_items li
		LEFT JOIN users u ON u.id = li.created_by
		WHERE li.is_public = true`
	var args []any
	if filter.Type != "" {
		args = append(args, filter.Type)
		query += fmt.Sprintf(` AND li.type = $%d`, len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(` AND li.category = $%d`, len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(` AND (li.title ILIKE $%d OR li.description ILIKE $%d)`, len(args), len(args))
	}
	query += ` ORDER BY li.created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.LibraryItem
	for rows.Next() {
		item, err := scanLibraryItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Store) GetLibraryItem(ctx context.Context, itemID string) (model.LibraryItem, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+libraryColumns+`
		FROM library_items li
		LEFT JOIN users u ON u.id = li.created_by
		WHERE li.id = $1
	`, itemID)
	return scanLibraryItem(row)
}

func (s *Store) CreateLibraryItem(ctx context.Context, item model.LibraryItem) (model.LibraryItem, error) {
	if item.Tags == nil {
		item.Tags = []string{}
	}
	var itemID string
	err := s.pool.QueryRow(ctx, `
		INSERT INTO library_items (title, description, type, url, file_url, content, tags, category, is_public, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`, item.Title, item.Description, item.Type, item.URL, item.FileURL, item.Content,
		item.Tags, item.Category, item.IsPublic, item.CreatedBy).Scan(&itemID)
	if err != nil {
		return model.LibraryItem{}, err
	}
	return s.GetLibraryItem(ctx, itemID)
}

func (s *Store) UpdateLibraryItem(ctx context.Context, itemID string, title, description, url, fileURL, content, category *string, tags []string, isPublic *bool) (model.LibraryItem, error) {
	_, err := s.pool.Exec(ctx, `
		UPDATE library_items
		SET title = COALESCE($1, title),
		    description = COALESCE($2, description),
		    url = COALESCE($3, url),
		    file_url = COALESCE($4, file_url),
		    content = COALESCE($5, content),
		    category = COALESCE($6, category),
		    tags = COALESCE($7, tags),
		    is_public = COALESCE($8, is_public)
		WHERE id = $9
	`, title, description, url, fileURL, content, category, tags, isPublic, itemID)
	if err != nil {
		return model.LibraryItem{}, err
	}
	return s.GetLibraryItem(ctx, itemID)
}

func (s *Store) DeleteLibraryItem(ctx context.Context, itemID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM library_items WHERE id = $1`, itemID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) IncrementLibraryDownloads(ctx context.Context, itemID string) error {
	_, err := s.pool.Exec(ctx, `UPDATE library_items SET downloads = downloads + 1 WHERE id = $1`, itemID)
	return err
}
