package sqlstore

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/MrSnakeDoc/favorg/internal/domain"
)

const categoriesTable = "categories"

type categoryRow struct {
	Name           string `db:"name"`
	ParentCategory string `db:"parent_category"`
}

// ListCategories returns the explicit categories ordered by name.
func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	query, args, err := s.sb.Select("name", "parent_category").
		From(categoriesTable).
		OrderBy("name", "parent_category").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var rows []categoryRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	out := make([]domain.Category, len(rows))
	for i, r := range rows {
		out[i] = domain.Category{Name: r.Name, ParentCategory: r.ParentCategory}
	}
	return out, nil
}

// SaveCategory inserts a category; saving it again is a no-op.
func (s *Store) SaveCategory(ctx context.Context, c domain.Category) error {
	query, args, err := s.sb.Insert(categoriesTable).
		Columns("name", "parent_category").
		Values(c.Name, c.ParentCategory).
		Suffix("ON CONFLICT (parent_category, name) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to save category: %w", err)
	}
	return nil
}

// DeleteCategory removes a category.
func (s *Store) DeleteCategory(ctx context.Context, c domain.Category) error {
	query, args, err := s.sb.Delete(categoriesTable).
		Where(squirrel.Eq{"name": c.Name, "parent_category": c.ParentCategory}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to count deleted categories: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: category %s", domain.ErrNotFound, c.Name)
	}
	return nil
}
