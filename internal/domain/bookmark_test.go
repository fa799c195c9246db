package domain

import (
	"errors"
	"testing"
	"time"
)

func TestNewBookmark(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	b, err := NewBookmark(BookmarkInput{
		URL:  "  https://go.dev/doc  ",
		Tags: []string{"go", " ", "go", "docs"},
	}, now)
	if err != nil {
		t.Fatalf("NewBookmark() unexpected error: %v", err)
	}

	if b.ID == "" {
		t.Error("ID is empty")
	}
	if b.Title != "https://go.dev/doc" {
		t.Errorf("Title = %q, want url fallback", b.Title)
	}
	if b.Category != DefaultCategory {
		t.Errorf("Category = %q, want %q", b.Category, DefaultCategory)
	}
	if b.Status != StatusUnchecked {
		t.Errorf("Status = %q, want unchecked", b.Status)
	}
	if !b.DateAdded.Equal(now) {
		t.Errorf("DateAdded = %v, want %v", b.DateAdded, now)
	}
	if len(b.Tags) != 2 || b.Tags[0] != "go" || b.Tags[1] != "docs" {
		t.Errorf("Tags = %v, want [go docs]", b.Tags)
	}
}

func TestCleanSubcategory(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  Tools  ", "Tools"},
		{"Go /  Tools", "Go / Tools"},
		{" / Go /  / Tools / ", "Go / Tools"},
		{"Go/Tools", "Go/Tools"},
	}
	for _, tt := range tests {
		if got := CleanSubcategory(tt.in); got != tt.want {
			t.Errorf("CleanSubcategory(%q) = %q, want %q", tt.in, got, tt.want)
		}
		b, err := NewBookmark(BookmarkInput{URL: "https://go.dev", Subcategory: tt.in}, time.Now())
		if err != nil {
			t.Fatalf("NewBookmark() unexpected error: %v", err)
		}
		if b.Subcategory != tt.want {
			t.Errorf("NewBookmark(subcategory %q).Subcategory = %q, want %q", tt.in, b.Subcategory, tt.want)
		}
	}
}

func TestNewBookmarkInvalidURL(t *testing.T) {
	for _, raw := range []string{"", "example.com/no-scheme", "http://"} {
		_, err := NewBookmark(BookmarkInput{Title: "x", URL: raw}, time.Now())
		if !errors.Is(err, ErrInvalidURL) {
			t.Errorf("NewBookmark(%q) error = %v, want ErrInvalidURL", raw, err)
		}
	}
}

func TestLockPrecedence(t *testing.T) {
	b := &Bookmark{URL: "https://example.com", Status: StatusDead}
	if !b.CanMutate() {
		t.Fatal("fresh record should be mutable")
	}

	b.Lock()
	if !b.Locked() || b.Status != StatusLocked {
		t.Errorf("after Lock: Locked()=%v Status=%q", b.Locked(), b.Status)
	}

	// A lock flag alone is enough, whatever the health status says.
	b.Status = StatusActive
	if b.CanMutate() {
		t.Error("is_locked record reported mutable")
	}

	b.Unlock()
	if b.Locked() || b.Status != StatusUnchecked {
		t.Errorf("after Unlock: Locked()=%v Status=%q", b.Locked(), b.Status)
	}
}

func TestCloneIsDeep(t *testing.T) {
	b := &Bookmark{Tags: []string{"a"}}
	c := b.Clone()
	c.Tags[0] = "b"
	if b.Tags[0] != "a" {
		t.Error("Clone shares the tags slice")
	}
}

func TestCategoryPath(t *testing.T) {
	b := &Bookmark{Category: "Dev", Subcategory: "Go / Tools"}
	if got := b.CategoryPath(); got != "Dev / Go / Tools" {
		t.Errorf("CategoryPath() = %q", got)
	}
	b.Subcategory = ""
	if got := b.CategoryPath(); got != "Dev" {
		t.Errorf("CategoryPath() = %q", got)
	}
}
