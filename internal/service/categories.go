package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/favorg/internal/domain"
)

// CategoryTree renders stored and implied categories with their counts.
func (s *Service) CategoryTree(ctx context.Context) ([]*domain.CategoryNode, error) {
	stored, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	return domain.BuildCategoryTree(stored, records), nil
}

// CreateCategory stores a category. The parent must exist and the new
// edge must not close a cycle.
func (s *Service) CreateCategory(ctx context.Context, c domain.Category) (domain.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.ParentCategory = strings.TrimSpace(c.ParentCategory)
	if c.Name == "" {
		return c, fmt.Errorf("%w: category name is empty", domain.ErrInvalidInput)
	}

	all, err := s.allCategories(ctx)
	if err != nil {
		return c, err
	}

	if c.ParentCategory != "" && !domain.CategoryExists(all, c.ParentCategory) {
		return c, fmt.Errorf("%w: parent category %q", domain.ErrNotFound, c.ParentCategory)
	}
	if domain.WouldCycle(all, c.Name, c.ParentCategory) {
		return c, fmt.Errorf("%w: %q under %q", domain.ErrCategoryCycle, c.Name, c.ParentCategory)
	}

	if err := s.store.SaveCategory(ctx, c); err != nil {
		return c, fmt.Errorf("save category: %w", err)
	}
	return c, nil
}

// DeleteCategory removes a stored category. It is refused while a bookmark
// still uses it; child categories move up to the deleted one's parent.
func (s *Service) DeleteCategory(ctx context.Context, c domain.Category) error {
	stored, err := s.store.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	found := false
	for _, sc := range stored {
		if sc.Key() == c.Key() {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: category %q", domain.ErrNotFound, c.Name)
	}

	records, err := s.store.List(ctx)
	if err != nil {
		return fmt.Errorf("list bookmarks: %w", err)
	}
	for _, b := range records {
		if usesCategory(b, c) {
			return fmt.Errorf("%w: %q", domain.ErrCategoryInUse, c.Name)
		}
	}

	for _, child := range stored {
		if child.ParentCategory != c.Name {
			continue
		}
		if err := s.store.DeleteCategory(ctx, child); err != nil {
			return fmt.Errorf("re-parent category %q: %w", child.Name, err)
		}
		child.ParentCategory = c.ParentCategory
		if err := s.store.SaveCategory(ctx, child); err != nil {
			return fmt.Errorf("re-parent category %q: %w", child.Name, err)
		}
	}

	return s.store.DeleteCategory(ctx, c)
}

func (s *Service) allCategories(ctx context.Context) ([]domain.Category, error) {
	stored, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	return domain.MergeCategories(stored, domain.DeriveCategories(records)), nil
}

// usesCategory reports whether c appears on the category path of b.
func usesCategory(b *domain.Bookmark, c domain.Category) bool {
	path := append([]string{domain.CategoryOrDefault(b.Category)}, domain.SplitSubcategory(b.Subcategory)...)
	for i, p := range path {
		if p != c.Name {
			continue
		}
		if i == 0 && c.ParentCategory == "" {
			return true
		}
		if i > 0 && path[i-1] == c.ParentCategory {
			return true
		}
	}
	return false
}
