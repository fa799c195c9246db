package sqlstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/MrSnakeDoc/favorg/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), DriverSQLite, filepath.Join(t.TempDir(), "favorg.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func record(id string, added time.Time) *domain.Bookmark {
	return &domain.Bookmark{
		ID:            id,
		DateAdded:     added,
		Title:         "Title " + id,
		URL:           "https://example.com/" + id,
		Category:      "Dev",
		Subcategory:   "Go",
		Tags:          []string{"a", "b"},
		Status:        domain.StatusUnchecked,
		BrowserSource: "chrome",
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 123456789, time.UTC)

	if err := s.SaveMany(ctx, []*domain.Bookmark{
		record("b", base.Add(time.Second)),
		record("a", base),
	}); err != nil {
		t.Fatalf("SaveMany() error = %v", err)
	}

	all, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 2 || all[0].ID != "a" || all[1].ID != "b" {
		t.Fatalf("List() order = %v", all)
	}
	got := all[0]
	if !got.DateAdded.Equal(base) {
		t.Errorf("DateAdded = %v, want %v", got.DateAdded, base)
	}
	if len(got.Tags) != 2 || got.Tags[1] != "b" || got.Subcategory != "Go" || got.BrowserSource != "chrome" {
		t.Errorf("record = %+v", got)
	}

	got.Lock()
	got.Title = "Renamed"
	got.DateAdded = base.Add(time.Hour)
	if err := s.Save(ctx, got); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	again, err := s.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if again.Title != "Renamed" || !again.IsLocked || again.Status != domain.StatusLocked {
		t.Errorf("after upsert = %+v", again)
	}
	if !again.DateAdded.Equal(base) {
		t.Errorf("date_added overwritten: %v", again.DateAdded)
	}
}

func TestSQLiteDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_ = s.SaveMany(ctx, []*domain.Bookmark{record("a", now), record("b", now), record("c", now)})

	n, err := s.DeleteMany(ctx, []string{"a", "b", "missing"})
	if err != nil || n != 2 {
		t.Fatalf("DeleteMany() = %d, %v; want 2", n, err)
	}
	if err := s.Delete(ctx, "a"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Delete(missing) error = %v, want ErrNotFound", err)
	}
	if _, err := s.Get(ctx, "b"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get(deleted) error = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, "c"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
}

func TestSQLiteConditionalWritesSkipLocked(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	flagged := record("flagged", now)
	flagged.Lock()
	marked := record("marked", now)
	marked.Status = domain.StatusLocked
	_ = s.SaveMany(ctx, []*domain.Bookmark{flagged, marked, record("free", now), record("dup", now)})

	n, err := s.SetStatuses(ctx, map[string]domain.Status{
		"flagged": domain.StatusDead,
		"marked":  domain.StatusDead,
		"free":    domain.StatusDead,
		"missing": domain.StatusDead,
	})
	if err != nil || n != 1 {
		t.Errorf("SetStatuses() = %d, %v; want 1", n, err)
	}
	for id, want := range map[string]domain.Status{
		"flagged": domain.StatusLocked,
		"marked":  domain.StatusLocked,
		"free":    domain.StatusDead,
	} {
		if b, _ := s.Get(ctx, id); b == nil || b.Status != want {
			t.Errorf("%s status = %v, want %q", id, b, want)
		}
	}

	n, err = s.DeleteUnlocked(ctx, []string{"flagged", "marked", "dup", "missing"})
	if err != nil || n != 1 {
		t.Errorf("DeleteUnlocked() = %d, %v; want 1", n, err)
	}
	all, _ := s.List(ctx)
	if len(all) != 3 {
		t.Errorf("List() = %d records, want 3", len(all))
	}
}

func TestSQLiteCategories(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, c := range []domain.Category{
		{Name: "Work"},
		{Name: "Projects", ParentCategory: "Work"},
		{Name: "Work"},
	} {
		if err := s.SaveCategory(ctx, c); err != nil {
			t.Fatalf("SaveCategory(%v) error = %v", c, err)
		}
	}

	cats, err := s.ListCategories(ctx)
	if err != nil {
		t.Fatalf("ListCategories() error = %v", err)
	}
	if len(cats) != 2 || cats[0].Name != "Projects" || cats[0].ParentCategory != "Work" {
		t.Errorf("ListCategories() = %v", cats)
	}

	if err := s.DeleteCategory(ctx, domain.Category{Name: "Projects", ParentCategory: "Work"}); err != nil {
		t.Errorf("DeleteCategory() error = %v", err)
	}
	if err := s.DeleteCategory(ctx, domain.Category{Name: "Projects"}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("DeleteCategory(missing) error = %v, want ErrNotFound", err)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), "mysql", "dsn"); err == nil {
		t.Error("Open(mysql) error = nil")
	}
}

func newMockStore(t *testing.T, driver string) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return New(sqlx.NewDb(db, driver)), mock
}

func TestGetNotFound(t *testing.T) {
	tests := []struct {
		driver string
		query  string
	}{
		{DriverSQLite, `SELECT .* FROM bookmarks WHERE id = \?`},
		{DriverPostgres, `SELECT .* FROM bookmarks WHERE id = \$1`},
	}
	for _, tc := range tests {
		t.Run(tc.driver, func(t *testing.T) {
			s, mock := newMockStore(t, tc.driver)
			mock.ExpectQuery(tc.query).
				WithArgs("x").
				WillReturnRows(sqlmock.NewRows(bookmarkColumns))

			if _, err := s.Get(context.Background(), "x"); !errors.Is(err, domain.ErrNotFound) {
				t.Errorf("Get() error = %v, want ErrNotFound", err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestDeleteManyUsesSingleStatement(t *testing.T) {
	s, mock := newMockStore(t, DriverPostgres)
	mock.ExpectExec(`DELETE FROM bookmarks WHERE id IN \(\$1,\$2\)`).
		WithArgs("a", "b").
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := s.DeleteMany(context.Background(), []string{"a", "b"})
	if err != nil || n != 2 {
		t.Errorf("DeleteMany() = %d, %v", n, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestDeleteUnlockedFiltersInStatement(t *testing.T) {
	s, mock := newMockStore(t, DriverPostgres)
	mock.ExpectExec(`DELETE FROM bookmarks WHERE id IN \(\$1,\$2\) AND \(is_locked = \$3 AND status_type <> \$4\)`).
		WithArgs("a", "b", false, "locked").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := s.DeleteUnlocked(context.Background(), []string{"a", "b"})
	if err != nil || n != 1 {
		t.Errorf("DeleteUnlocked() = %d, %v", n, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSaveManyRollsBack(t *testing.T) {
	s, mock := newMockStore(t, DriverSQLite)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO bookmarks .* ON CONFLICT \(id\) DO UPDATE`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO bookmarks`).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	now := time.Now()
	err := s.SaveMany(context.Background(), []*domain.Bookmark{record("a", now), record("b", now)})
	if err == nil {
		t.Fatal("SaveMany() error = nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
