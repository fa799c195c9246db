package service

import (
	"context"

	"github.com/MrSnakeDoc/favorg/internal/domain"
)

// Store persists bookmarks and explicit categories.
// Implementations copy records in and out and report missing
// records with domain.ErrNotFound.
type Store interface {
	List(ctx context.Context) ([]*domain.Bookmark, error)
	Get(ctx context.Context, id string) (*domain.Bookmark, error)
	Save(ctx context.Context, b *domain.Bookmark) error
	SaveMany(ctx context.Context, bookmarks []*domain.Bookmark) error
	Delete(ctx context.Context, id string) error

	// DeleteUnlocked and SetStatuses re-check the lock at write time, so a
	// record locked while a bulk operation runs is never touched.
	DeleteUnlocked(ctx context.Context, ids []string) (int, error)
	SetStatuses(ctx context.Context, statuses map[string]domain.Status) (int, error)

	ListCategories(ctx context.Context) ([]domain.Category, error)
	SaveCategory(ctx context.Context, c domain.Category) error
	DeleteCategory(ctx context.Context, c domain.Category) error

	Ping(ctx context.Context) error
	Close() error
}
