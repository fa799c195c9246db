package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/favorg/internal/urlnorm"
)

// DefaultCategory is assigned to records imported or created without a category.
const DefaultCategory = "Uncategorized"

// Bookmark is the canonical bookmark record.
//
// It is NOT tied to any storage backend or file format.
// Every import path and every store converts into this structure.
type Bookmark struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is an opaque unique identifier assigned at creation time.
	ID string `json:"id"`

	// DateAdded is set once at creation and never mutated.
	DateAdded time.Time `json:"date_added"`

	// ─────────────────────────────
	// User-facing description
	// ─────────────────────────────

	// Title is the display string. Never empty.
	Title string `json:"title"`

	// URL is an absolute URL that always normalizes (see urlnorm).
	URL string `json:"url"`

	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags"`

	// ─────────────────────────────
	// Health & protection
	// ─────────────────────────────

	// Status is exactly one value of the status taxonomy.
	Status Status `json:"status_type"`

	// IsLocked protects the record against edit and delete operations.
	IsLocked bool `json:"is_locked"`

	// ─────────────────────────────
	// Provenance
	// ─────────────────────────────

	// BrowserSource names the origin browser/format of an imported record.
	// Example: chrome, firefox, homepage
	BrowserSource string `json:"browser_source,omitempty"`
}

// BookmarkInput carries the user-provided fields of a new record.
type BookmarkInput struct {
	Title         string   `json:"title"`
	URL           string   `json:"url"`
	Category      string   `json:"category"`
	Subcategory   string   `json:"subcategory"`
	Description   string   `json:"description"`
	Tags          []string `json:"tags"`
	BrowserSource string   `json:"browser_source"`
}

// NewID returns a fresh opaque record identifier.
func NewID() string {
	return uuid.New().String()
}

// NewBookmark validates input and builds an unchecked record.
// A missing title falls back to the URL.
func NewBookmark(in BookmarkInput, now time.Time) (*Bookmark, error) {
	rawURL := strings.TrimSpace(in.URL)
	if _, err := urlnorm.Normalize(rawURL); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = rawURL
	}

	return &Bookmark{
		ID:            NewID(),
		DateAdded:     now,
		Title:         title,
		URL:           rawURL,
		Category:      CategoryOrDefault(in.Category),
		Subcategory:   CleanSubcategory(in.Subcategory),
		Description:   strings.TrimSpace(in.Description),
		Tags:          CleanTags(in.Tags),
		Status:        StatusUnchecked,
		BrowserSource: strings.TrimSpace(in.BrowserSource),
	}, nil
}

// NormalizedURL returns the canonical comparison form of the record URL.
func (b *Bookmark) NormalizedURL() (string, error) {
	return urlnorm.Normalize(b.URL)
}

// Locked reports whether the record is protected against mutation.
// Lock wins over any link-health status.
func (b *Bookmark) Locked() bool {
	return b.IsLocked || b.Status == StatusLocked
}

// CanMutate reports whether edit/delete operations may touch the record.
func (b *Bookmark) CanMutate() bool {
	return !b.Locked()
}

// Lock protects the record.
func (b *Bookmark) Lock() {
	b.IsLocked = true
	b.Status = StatusLocked
}

// Unlock releases the record. Its health is unknown again.
func (b *Bookmark) Unlock() {
	b.IsLocked = false
	b.Status = StatusUnchecked
}

// Clone returns a deep copy.
func (b *Bookmark) Clone() *Bookmark {
	if b == nil {
		return nil
	}
	c := *b
	if b.Tags != nil {
		c.Tags = append([]string(nil), b.Tags...)
	}
	return &c
}

// CategoryPath returns "Category / Subcategory" (or just the category).
func (b *Bookmark) CategoryPath() string {
	if b.Subcategory == "" {
		return b.Category
	}
	return b.Category + SubcategorySeparator + b.Subcategory
}

// CategoryOrDefault trims name and substitutes DefaultCategory when empty.
func CategoryOrDefault(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultCategory
	}
	return name
}

// CleanTags trims tags and drops empty and repeated entries, keeping order.
func CleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// SortByDateAdded orders records oldest first, ID breaking ties.
func SortByDateAdded(records []*Bookmark) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].DateAdded.Equal(records[j].DateAdded) {
			return records[i].DateAdded.Before(records[j].DateAdded)
		}
		return records[i].ID < records[j].ID
	})
}
