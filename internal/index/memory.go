package index

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/favorg/internal/domain"
)

// MemoryIndex is an in-memory bookmark store.
// Records are copied on the way in and on the way out, so callers may
// mutate what they get without touching the index.
type MemoryIndex struct {
	mu         sync.RWMutex
	bookmarks  map[string]*domain.Bookmark // ID -> Bookmark
	categories map[string]domain.Category  // (parent, name) key -> Category
	lastChange time.Time
}

// NewMemoryIndex creates a new memory index
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		bookmarks:  make(map[string]*domain.Bookmark),
		categories: make(map[string]domain.Category),
	}
}

// ─────────────────────────────────────────────────────────────────
// Bookmark methods
// ─────────────────────────────────────────────────────────────────

// Replace swaps the whole bookmark set.
func (idx *MemoryIndex) Replace(bookmarks []*domain.Bookmark) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.bookmarks = make(map[string]*domain.Bookmark, len(bookmarks))
	for _, b := range bookmarks {
		idx.bookmarks[b.ID] = b.Clone()
	}
	idx.lastChange = time.Now()
}

// List returns all bookmarks, oldest first.
func (idx *MemoryIndex) List(_ context.Context) ([]*domain.Bookmark, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]*domain.Bookmark, 0, len(idx.bookmarks))
	for _, b := range idx.bookmarks {
		out = append(out, b.Clone())
	}
	domain.SortByDateAdded(out)
	return out, nil
}

// Get retrieves a bookmark by ID.
func (idx *MemoryIndex) Get(_ context.Context, id string) (*domain.Bookmark, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	b, ok := idx.bookmarks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return b.Clone(), nil
}

// Save adds or updates a single bookmark.
func (idx *MemoryIndex) Save(_ context.Context, b *domain.Bookmark) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.bookmarks[b.ID] = b.Clone()
	idx.lastChange = time.Now()
	return nil
}

// SaveMany adds or updates bookmarks in one critical section.
func (idx *MemoryIndex) SaveMany(_ context.Context, bookmarks []*domain.Bookmark) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for _, b := range bookmarks {
		idx.bookmarks[b.ID] = b.Clone()
	}
	idx.lastChange = time.Now()
	return nil
}

// Delete removes a bookmark from the index.
func (idx *MemoryIndex) Delete(_ context.Context, id string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, ok := idx.bookmarks[id]; !ok {
		return domain.ErrNotFound
	}
	delete(idx.bookmarks, id)
	idx.lastChange = time.Now()
	return nil
}

// DeleteMany removes the given bookmarks and returns how many existed.
func (idx *MemoryIndex) DeleteMany(_ context.Context, ids []string) (int, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	n := 0
	for _, id := range ids {
		if _, ok := idx.bookmarks[id]; ok {
			delete(idx.bookmarks, id)
			n++
		}
	}
	idx.lastChange = time.Now()
	return n, nil
}

// DeleteUnlocked removes the given bookmarks unless they are locked at the
// time of the call and returns how many were removed.
func (idx *MemoryIndex) DeleteUnlocked(_ context.Context, ids []string) (int, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	n := 0
	for _, id := range ids {
		if b, ok := idx.bookmarks[id]; ok && !b.Locked() {
			delete(idx.bookmarks, id)
			n++
		}
	}
	if n > 0 {
		idx.lastChange = time.Now()
	}
	return n, nil
}

// SetStatuses writes link-health statuses to the unlocked bookmarks among
// the keys and returns how many matched.
func (idx *MemoryIndex) SetStatuses(_ context.Context, statuses map[string]domain.Status) (int, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	n := 0
	for id, st := range statuses {
		b, ok := idx.bookmarks[id]
		if !ok || b.Locked() {
			continue
		}
		b.Status = st
		n++
	}
	if n > 0 {
		idx.lastChange = time.Now()
	}
	return n, nil
}

// BookmarkCount returns the number of bookmarks in the index
func (idx *MemoryIndex) BookmarkCount() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.bookmarks)
}

// LastChange returns the time of the last write.
func (idx *MemoryIndex) LastChange() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastChange
}

// ─────────────────────────────────────────────────────────────────
// Category methods
// ─────────────────────────────────────────────────────────────────

func (idx *MemoryIndex) ListCategories(_ context.Context) ([]domain.Category, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]domain.Category, 0, len(idx.categories))
	for _, c := range idx.categories {
		out = append(out, c)
	}
	domain.SortCategories(out)
	return out, nil
}

func (idx *MemoryIndex) SaveCategory(_ context.Context, c domain.Category) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.categories[c.Key()] = c
	return nil
}

func (idx *MemoryIndex) DeleteCategory(_ context.Context, c domain.Category) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, ok := idx.categories[c.Key()]; !ok {
		return domain.ErrNotFound
	}
	delete(idx.categories, c.Key())
	return nil
}

// Ping always succeeds.
func (idx *MemoryIndex) Ping(context.Context) error { return nil }

// Close is a no-op.
func (idx *MemoryIndex) Close() error { return nil }
