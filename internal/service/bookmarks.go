package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/favorg/internal/domain"
	"github.com/MrSnakeDoc/favorg/internal/logger"
	"github.com/MrSnakeDoc/favorg/internal/urlnorm"
	"github.com/MrSnakeDoc/favorg/internal/validator"
)

// ListFilter narrows List. Zero values match everything.
type ListFilter struct {
	Category    string
	Subcategory string
	Status      domain.Status
	Tag         string

	// Query is a free-text search over title, host, tags, category and
	// description. When set, results are ranked by relevance.
	Query string
}

func (f ListFilter) match(b *domain.Bookmark) bool {
	if f.Category != "" && !strings.EqualFold(b.Category, f.Category) {
		return false
	}
	if f.Subcategory != "" && !strings.EqualFold(b.Subcategory, f.Subcategory) {
		return false
	}
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	if f.Tag != "" {
		found := false
		for _, t := range b.Tags {
			if strings.EqualFold(t, f.Tag) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// List returns the records matching f, oldest first, or best match first
// when f.Query is set.
func (s *Service) List(ctx context.Context, f ListFilter) ([]*domain.Bookmark, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	out := make([]*domain.Bookmark, 0, len(all))
	for _, b := range all {
		if f.match(b) {
			out = append(out, b)
		}
	}
	if strings.TrimSpace(f.Query) != "" {
		return domain.RankBookmarks(f.Query, out), nil
	}
	return out, nil
}

// Get returns one record.
func (s *Service) Get(ctx context.Context, id string) (*domain.Bookmark, error) {
	return s.store.Get(ctx, id)
}

// Create adds a record typed in by the user.
func (s *Service) Create(ctx context.Context, in domain.BookmarkInput) (*domain.Bookmark, error) {
	b, err := domain.NewBookmark(in, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, b); err != nil {
		return nil, fmt.Errorf("save bookmark: %w", err)
	}
	if err := s.ensureCategories(ctx, []*domain.Bookmark{b}); err != nil {
		return nil, err
	}
	s.log.Debug("bookmark created", logger.String("id", b.ID), logger.String("url", b.URL))
	return b, nil
}

// Update replaces the user-editable fields. Locked records are refused.
// A changed URL resets the link status to unchecked.
func (s *Service) Update(ctx context.Context, id string, in domain.BookmarkInput) (*domain.Bookmark, error) {
	b, err := s.mutable(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := domain.NewBookmark(in, b.DateAdded)
	if err != nil {
		return nil, err
	}
	if !urlnorm.Equal(b.URL, next.URL) {
		b.Status = domain.StatusUnchecked
	}
	b.Title = next.Title
	b.URL = next.URL
	b.Category = next.Category
	b.Subcategory = next.Subcategory
	b.Description = next.Description
	b.Tags = next.Tags
	if next.BrowserSource != "" {
		b.BrowserSource = next.BrowserSource
	}

	if err := s.store.Save(ctx, b); err != nil {
		return nil, fmt.Errorf("save bookmark: %w", err)
	}
	if err := s.ensureCategories(ctx, []*domain.Bookmark{b}); err != nil {
		return nil, err
	}
	return b, nil
}

// Delete removes a record. Locked records are refused.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.mutable(ctx, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

// SetLock locks or unlocks a record. Unlocking resets the status to unchecked.
func (s *Service) SetLock(ctx context.Context, id string, locked bool) (*domain.Bookmark, error) {
	b, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if locked == b.Locked() {
		return b, nil
	}
	if locked {
		b.Lock()
	} else {
		b.Unlock()
	}
	if err := s.store.Save(ctx, b); err != nil {
		return nil, fmt.Errorf("save bookmark: %w", err)
	}
	return b, nil
}

// ToggleLock flips the lock of a record.
func (s *Service) ToggleLock(ctx context.Context, id string) (*domain.Bookmark, error) {
	b, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.SetLock(ctx, id, !b.Locked())
}

// SetStatus sets the link status by hand. Locking goes through SetLock.
func (s *Service) SetStatus(ctx context.Context, id string, st domain.Status) (*domain.Bookmark, error) {
	if !st.Valid() || st == domain.StatusLocked {
		return nil, fmt.Errorf("%w: status %q cannot be set directly", domain.ErrInvalidInput, st)
	}
	b, err := s.mutable(ctx, id)
	if err != nil {
		return nil, err
	}
	b.Status = st
	if err := s.store.Save(ctx, b); err != nil {
		return nil, fmt.Errorf("save bookmark: %w", err)
	}
	return b, nil
}

// Move changes the category of a record. Locked records are refused.
func (s *Service) Move(ctx context.Context, id, category, subcategory string) (*domain.Bookmark, error) {
	b, err := s.mutable(ctx, id)
	if err != nil {
		return nil, err
	}
	b.Category = domain.CategoryOrDefault(category)
	b.Subcategory = domain.CleanSubcategory(subcategory)
	if err := s.store.Save(ctx, b); err != nil {
		return nil, fmt.Errorf("save bookmark: %w", err)
	}
	if err := s.ensureCategories(ctx, []*domain.Bookmark{b}); err != nil {
		return nil, err
	}
	return b, nil
}

// CheckLink validates a single record now. A locked record keeps its
// status; the result still carries the would-be status.
func (s *Service) CheckLink(ctx context.Context, id string) (*validator.Result, error) {
	b, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	r := s.validator.Check(ctx, b.URL)
	r.ID = b.ID
	r.Locked = b.Locked()

	if !r.Locked && !r.Canceled {
		n, err := s.store.SetStatuses(context.WithoutCancel(ctx), map[string]domain.Status{b.ID: r.Status})
		if err != nil {
			return nil, fmt.Errorf("save link status: %w", err)
		}
		r.Applied = n == 1
	}
	return &r, nil
}

func (s *Service) mutable(ctx context.Context, id string) (*domain.Bookmark, error) {
	b, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Locked() {
		return nil, fmt.Errorf("%w: %s", domain.ErrLocked, id)
	}
	return b, nil
}
