package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MrSnakeDoc/favorg/internal/domain"
)

// ListCategories returns the explicit categories
func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	fields, err := s.client.HGetAll(ctx, CategoriesKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}

	out := make([]domain.Category, 0, len(fields))
	for _, raw := range fields {
		var c domain.Category
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return nil, fmt.Errorf("failed to unmarshal category: %w", err)
		}
		out = append(out, c)
	}
	domain.SortCategories(out)
	return out, nil
}

// SaveCategory stores a category; saving it again is a no-op
func (s *Store) SaveCategory(ctx context.Context, c domain.Category) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal category: %w", err)
	}
	if err := s.client.HSet(ctx, CategoriesKey(), c.Key(), data).Err(); err != nil {
		return fmt.Errorf("failed to save category: %w", err)
	}
	return nil
}

// DeleteCategory removes a category
func (s *Store) DeleteCategory(ctx context.Context, c domain.Category) error {
	n, err := s.client.HDel(ctx, CategoriesKey(), c.Key()).Result()
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: category %s", domain.ErrNotFound, c.Name)
	}
	return nil
}
