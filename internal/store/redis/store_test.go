package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/favorg/internal/domain"
)

func TestBookmarkKeys(t *testing.T) {
	key := BookmarkKey("abc")
	if key != "favorg:bookmark:abc" {
		t.Fatalf("BookmarkKey() = %q", key)
	}
	id, err := ExtractBookmarkID(key)
	if err != nil || id != "abc" {
		t.Errorf("ExtractBookmarkID() = %q, %v", id, err)
	}

	for _, bad := range []string{"", "favorg:bookmark:", "jump:service:abc"} {
		if _, err := ExtractBookmarkID(bad); err == nil {
			t.Errorf("ExtractBookmarkID(%q) error = nil", bad)
		}
	}
}

func TestBookmarkCodec(t *testing.T) {
	in := &domain.Bookmark{
		ID:        "1",
		DateAdded: time.Date(2024, 1, 2, 3, 4, 5, 6, time.UTC),
		Title:     "Go",
		URL:       "https://go.dev",
		Category:  "Dev",
		Status:    domain.StatusActive,
	}
	data, err := encodeBookmark(in)
	if err != nil {
		t.Fatalf("encodeBookmark() error = %v", err)
	}
	out, err := decodeBookmark(data)
	if err != nil {
		t.Fatalf("decodeBookmark() error = %v", err)
	}
	if !out.DateAdded.Equal(in.DateAdded) || out.URL != in.URL || out.Status != in.Status {
		t.Errorf("decoded = %+v", out)
	}
	if out.Tags == nil {
		t.Error("Tags = nil, want empty slice")
	}

	if _, err := decodeBookmark([]byte("{")); err == nil {
		t.Error("decodeBookmark(garbage) error = nil")
	}
}

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client), mr
}

func testBookmark(id string, offset time.Duration) *domain.Bookmark {
	return &domain.Bookmark{
		ID:        id,
		DateAdded: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(offset),
		Title:     id,
		URL:       "https://" + id + ".example.com",
		Category:  "Dev",
		Tags:      []string{},
		Status:    domain.StatusUnchecked,
	}
}

func listIDs(t *testing.T, s *Store) string {
	t.Helper()
	all, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	var ids string
	for _, b := range all {
		ids += b.ID
	}
	return ids
}

func TestSaveManyAndList(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	err := s.SaveMany(ctx, []*domain.Bookmark{
		testBookmark("c", 2*time.Hour), testBookmark("a", 0), testBookmark("b", time.Hour),
	})
	if err != nil {
		t.Fatalf("SaveMany() error = %v", err)
	}
	if got := listIDs(t, s); got != "abc" {
		t.Errorf("List() order = %q, want abc", got)
	}

	b, err := s.Get(ctx, "b")
	if err != nil || b.URL != "https://b.example.com" {
		t.Errorf("Get() = %+v, %v", b, err)
	}
	if _, err := s.Get(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestDeleteMany(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)
	_ = s.SaveMany(ctx, []*domain.Bookmark{testBookmark("a", 0), testBookmark("b", 0), testBookmark("c", 0)})

	n, err := s.DeleteMany(ctx, []string{"a", "missing", "c"})
	if err != nil || n != 2 {
		t.Errorf("DeleteMany() = %d, %v; want 2", n, err)
	}
	if got := listIDs(t, s); got != "b" {
		t.Errorf("List() = %q, want b", got)
	}
	if members, _ := mr.Members(AllBookmarksKey()); len(members) != 1 {
		t.Errorf("bookmark set = %v, want [b]", members)
	}

	if err := s.Delete(ctx, "a"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Delete(a) error = %v, want ErrNotFound", err)
	}
}

func TestListPrunesStaleIDs(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)
	_ = s.SaveMany(ctx, []*domain.Bookmark{testBookmark("a", 0), testBookmark("b", time.Hour)})

	mr.Del(BookmarkKey("a"))

	if got := listIDs(t, s); got != "b" {
		t.Errorf("List() = %q, want b", got)
	}
	if ok, _ := mr.IsMember(AllBookmarksKey(), "a"); ok {
		t.Error("stale id a still in bookmark set")
	}
}

func TestConditionalWritesSkipLocked(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	locked := testBookmark("locked", 0)
	locked.Lock()
	statusOnly := testBookmark("status-only", 0)
	statusOnly.Status = domain.StatusLocked
	_ = s.SaveMany(ctx, []*domain.Bookmark{locked, statusOnly, testBookmark("free", 0), testBookmark("dup", 0)})

	n, err := s.SetStatuses(ctx, map[string]domain.Status{
		"locked":      domain.StatusDead,
		"status-only": domain.StatusDead,
		"free":        domain.StatusDead,
		"missing":     domain.StatusDead,
	})
	if err != nil || n != 1 {
		t.Errorf("SetStatuses() = %d, %v; want 1", n, err)
	}
	if b, _ := s.Get(ctx, "locked"); b.Status != domain.StatusLocked {
		t.Errorf("locked status = %q, want locked", b.Status)
	}
	if b, _ := s.Get(ctx, "free"); b.Status != domain.StatusDead {
		t.Errorf("free status = %q, want dead", b.Status)
	}

	n, err = s.DeleteUnlocked(ctx, []string{"locked", "status-only", "dup", "missing"})
	if err != nil || n != 1 {
		t.Errorf("DeleteUnlocked() = %d, %v; want 1", n, err)
	}
	all, err := s.List(ctx)
	if err != nil || len(all) != 3 {
		t.Errorf("List() = %d records, %v; want 3", len(all), err)
	}
	if _, err := s.Get(ctx, "dup"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get(dup) error = %v, want ErrNotFound", err)
	}
}
