package service

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrSnakeDoc/favorg/internal/domain"
	"github.com/MrSnakeDoc/favorg/internal/formats"
	"github.com/MrSnakeDoc/favorg/internal/index"
	"github.com/MrSnakeDoc/favorg/internal/logger"
	"github.com/MrSnakeDoc/favorg/internal/validator"
)

var testNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

// newTestService wires a memory store and a validator whose every dial lands
// on a local server: /gone answers 404, /slow never answers, the rest 200.
func newTestService(t *testing.T) (*Service, *index.MemoryIndex, *atomic.Int64) {
	t.Helper()
	release := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/gone":
			w.WriteHeader(http.StatusNotFound)
		case "/slow":
			select {
			case <-r.Context().Done():
			case <-release:
			}
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	var dials atomic.Int64
	addr := srv.Listener.Addr().String()
	client := &http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, network, _ string) (net.Conn, error) {
				dials.Add(1)
				var d net.Dialer
				return d.DialContext(ctx, network, addr)
			},
			DisableKeepAlives: true,
		},
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}

	log := logger.New("error", false)
	v := validator.New(validator.Options{Timeout: 200 * time.Millisecond}, log, validator.WithHTTPClient(client))
	store := index.NewMemoryIndex()
	return New(store, v, log, WithClock(func() time.Time { return testNow })), store, &dials
}

func importCSV(t *testing.T, s *Service, data string) *ImportResult {
	t.Helper()
	res, err := s.Import(context.Background(), "bookmarks.csv", []byte(data))
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	return res
}

func byURL(t *testing.T, s *Service) map[string]*domain.Bookmark {
	t.Helper()
	all, err := s.List(context.Background(), ListFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	out := make(map[string]*domain.Bookmark, len(all))
	for _, b := range all {
		out[b.URL] = b
	}
	return out
}

func TestImportThenFindDuplicates(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	res := importCSV(t, s, "title,url,category\nOne,https://Example.com/a,Dev\nTwo,https://example.com/a,Dev\n")
	if res.Summary.ImportedCount != 2 {
		t.Errorf("ImportedCount = %d, want 2", res.Summary.ImportedCount)
	}
	if res.Summary.Format != "csv" || res.Summary.BrowserSource != formats.SourceCSV {
		t.Errorf("format/source = %q/%q", res.Summary.Format, res.Summary.BrowserSource)
	}
	if res.Summary.DuplicatesFoundCount != 1 {
		t.Errorf("DuplicatesFoundCount = %d, want 1", res.Summary.DuplicatesFoundCount)
	}

	found, err := s.FindDuplicates(ctx)
	if err != nil {
		t.Fatalf("FindDuplicates() error = %v", err)
	}
	if found.DuplicateGroups != 1 || found.MarkedCount != 1 {
		t.Errorf("FindDuplicates() = groups %d marked %d, want 1 1", found.DuplicateGroups, found.MarkedCount)
	}

	got := byURL(t, s)
	if got["https://Example.com/a"].Status != domain.StatusUnchecked {
		t.Errorf("first copy status = %s, want unchecked", got["https://Example.com/a"].Status)
	}
	if got["https://example.com/a"].Status != domain.StatusDuplicate {
		t.Errorf("second copy status = %s, want duplicate", got["https://example.com/a"].Status)
	}

	del, err := s.DeleteDuplicates(ctx)
	if err != nil {
		t.Fatalf("DeleteDuplicates() error = %v", err)
	}
	if del.RemovedCount != 1 {
		t.Errorf("RemovedCount = %d, want 1", del.RemovedCount)
	}
	if n := len(byURL(t, s)); n != 1 {
		t.Errorf("records left = %d, want 1", n)
	}

	// A second delete finds nothing left to do.
	del, err = s.DeleteDuplicates(ctx)
	if err != nil {
		t.Fatalf("DeleteDuplicates() error = %v", err)
	}
	if del.RemovedCount != 0 {
		t.Errorf("second RemovedCount = %d, want 0", del.RemovedCount)
	}
}

func TestImportKeepsExistingOriginal(t *testing.T) {
	s, _, _ := newTestService(t)

	importCSV(t, s, "title,url\nOld,https://example.org/\n")
	res := importCSV(t, s, "title,url\nNew,https://EXAMPLE.org\n")
	if res.Summary.DuplicatesFoundCount != 1 {
		t.Errorf("DuplicatesFoundCount = %d, want 1", res.Summary.DuplicatesFoundCount)
	}
	if res.Created[0].Status != domain.StatusDuplicate {
		t.Errorf("imported copy status = %s, want duplicate", res.Created[0].Status)
	}
	if st := s.state(domain.BulkDuplicates); st.Phase != domain.PhaseMarked || len(st.MarkedIDs) != 1 {
		t.Errorf("duplicates state = %s %v", st.Phase, st.MarkedIDs)
	}
}

func TestImportSkipsInvalidURLs(t *testing.T) {
	s, _, _ := newTestService(t)

	res := importCSV(t, s, "title,url\nGood,https://example.com\nBad,not a url\n")
	if res.Summary.ImportedCount != 1 || res.Summary.SkippedCount != 1 {
		t.Errorf("imported %d skipped %d, want 1 1", res.Summary.ImportedCount, res.Summary.SkippedCount)
	}
	found := false
	for _, w := range res.Summary.Warnings {
		if w.Reason == "invalid url" && w.Value == "not a url" {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v, want an invalid url warning", res.Summary.Warnings)
	}
}

func TestImportRejectsUnknownFormat(t *testing.T) {
	s, store, _ := newTestService(t)

	_, err := s.Import(context.Background(), "notes.bin", []byte{0x00, 0x01, 0x02})
	if !errors.Is(err, domain.ErrUnsupportedFormat) {
		t.Fatalf("Import() error = %v, want ErrUnsupportedFormat", err)
	}
	if store.BookmarkCount() != 0 {
		t.Errorf("BookmarkCount() = %d, want 0", store.BookmarkCount())
	}
}

func TestImportCreatesCategories(t *testing.T) {
	s, store, _ := newTestService(t)

	importCSV(t, s, "title,url,category,subcategory\nA,https://a.example,Dev,Go\n")
	cats, _ := store.ListCategories(context.Background())
	want := map[string]bool{
		domain.Category{Name: "Dev"}.Key():                       true,
		domain.Category{Name: "Go", ParentCategory: "Dev"}.Key(): true,
	}
	if len(cats) != len(want) {
		t.Fatalf("categories = %v", cats)
	}
	for _, c := range cats {
		if !want[c.Key()] {
			t.Errorf("unexpected category %+v", c)
		}
	}
}

func TestDeleteDuplicatesSkipsLocked(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	res := importCSV(t, s, "title,url\nA,https://dup.example/x\nB,https://dup.example/x\nC,https://dup.example/x\n")
	locked := res.Created[2].ID
	if _, err := s.SetLock(ctx, locked, true); err != nil {
		t.Fatalf("SetLock() error = %v", err)
	}

	found, err := s.FindDuplicates(ctx)
	if err != nil {
		t.Fatalf("FindDuplicates() error = %v", err)
	}
	if found.MarkedCount != 1 || found.LockedCount != 1 {
		t.Errorf("marked %d locked %d, want 1 1", found.MarkedCount, found.LockedCount)
	}

	del, err := s.DeleteDuplicates(ctx)
	if err != nil {
		t.Fatalf("DeleteDuplicates() error = %v", err)
	}
	if del.RemovedCount != 1 || del.SkippedLockedCount != 1 || del.SkippedLockedIDs[0] != locked {
		t.Errorf("DeleteDuplicates() = %+v", del)
	}

	b, err := s.Get(ctx, locked)
	if err != nil {
		t.Fatalf("locked record gone: %v", err)
	}
	if b.Status != domain.StatusLocked {
		t.Errorf("locked record status = %s", b.Status)
	}
}

func TestValidateAndRemoveDeadLinks(t *testing.T) {
	s, _, dials := newTestService(t)
	ctx := context.Background()

	res := importCSV(t, s, strings.Join([]string{
		"title,url",
		"ok,https://site.example/ok",
		"gone,https://site.example/gone",
		"gone-locked,https://other.example/gone",
		"slow,https://site.example/slow",
		"local,http://localhost:3000/app",
		"loop,http://127.0.0.1/x",
	}, "\n"))
	ids := make(map[string]string)
	for _, b := range res.Created {
		ids[b.Title] = b.ID
	}
	if _, err := s.SetLock(ctx, ids["gone-locked"], true); err != nil {
		t.Fatalf("SetLock() error = %v", err)
	}

	rep, err := s.ValidateLinks(ctx)
	if err != nil {
		t.Fatalf("ValidateLinks() error = %v", err)
	}
	if rep.TotalChecked != 6 || rep.DeadLinksFound != 2 || rep.LockedCount != 1 {
		t.Errorf("report = total %d dead %d locked %d", rep.TotalChecked, rep.DeadLinksFound, rep.LockedCount)
	}
	if n := dials.Load(); n != 4 {
		t.Errorf("dials = %d, want 4 (no call for localhost records)", n)
	}

	want := map[string]domain.Status{
		"ok":          domain.StatusActive,
		"gone":        domain.StatusDead,
		"gone-locked": domain.StatusLocked,
		"slow":        domain.StatusTimeout,
		"local":       domain.StatusLocalhost,
		"loop":        domain.StatusLocalhost,
	}
	for title, st := range want {
		b, err := s.Get(ctx, ids[title])
		if err != nil {
			t.Fatalf("Get(%s) error = %v", title, err)
		}
		if b.Status != st {
			t.Errorf("%s status = %s, want %s", title, b.Status, st)
		}
	}

	removed, err := s.RemoveDeadLinks(ctx)
	if err != nil {
		t.Fatalf("RemoveDeadLinks() error = %v", err)
	}
	if removed.RemovedCount != 1 || removed.SkippedLockedCount != 1 {
		t.Errorf("RemoveDeadLinks() = %+v", removed)
	}
	if _, err := s.Get(ctx, ids["slow"]); err != nil {
		t.Errorf("timeout record removed: %v", err)
	}
	if _, err := s.Get(ctx, ids["gone"]); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("dead record still present: %v", err)
	}

	var dead *domain.BulkState
	for _, st := range s.BulkStates() {
		if st.Operation == domain.BulkDeadLinks {
			dead = st
		}
	}
	if dead.Phase != domain.PhaseRemoved || dead.RemovedCount != 1 {
		t.Errorf("dead links state = %+v", dead)
	}
}

func TestBulkOperationsAreExclusive(t *testing.T) {
	s, _, _ := newTestService(t)

	release, err := s.acquire(context.Background())
	if err != nil {
		t.Fatalf("acquire() error = %v", err)
	}
	if !s.Busy() {
		t.Error("Busy() = false while held")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := s.FindDuplicates(ctx); !errors.Is(err, domain.ErrBusy) {
		t.Errorf("FindDuplicates() error = %v, want ErrBusy", err)
	}

	release()
	if _, err := s.FindDuplicates(context.Background()); err != nil {
		t.Errorf("FindDuplicates() after release error = %v", err)
	}
}

func TestAcquireRefusesExpiredContext(t *testing.T) {
	s, _, _ := newTestService(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 50; i++ {
		if _, err := s.FindDuplicates(ctx); !errors.Is(err, domain.ErrBusy) {
			t.Fatalf("FindDuplicates(canceled) attempt %d error = %v, want ErrBusy", i, err)
		}
	}
	if s.Busy() {
		t.Error("Busy() = true after refused acquire")
	}
}

// interleavedStore runs before() ahead of every conditional write, the way a
// user request landing in the middle of a bulk operation would.
type interleavedStore struct {
	*index.MemoryIndex
	before func()
}

func (st *interleavedStore) DeleteUnlocked(ctx context.Context, ids []string) (int, error) {
	if st.before != nil {
		st.before()
	}
	return st.MemoryIndex.DeleteUnlocked(ctx, ids)
}

func (st *interleavedStore) SetStatuses(ctx context.Context, statuses map[string]domain.Status) (int, error) {
	if st.before != nil {
		st.before()
	}
	return st.MemoryIndex.SetStatuses(ctx, statuses)
}

func newInterleavedService(t *testing.T) (*Service, *interleavedStore) {
	t.Helper()
	log := logger.New("error", false)
	store := &interleavedStore{MemoryIndex: index.NewMemoryIndex()}
	v := validator.New(validator.Options{}, log)
	return New(store, v, log, WithClock(func() time.Time { return testNow })), store
}

func TestLockDuringBulkRunWins(t *testing.T) {
	ctx := context.Background()

	t.Run("delete duplicates", func(t *testing.T) {
		s, store := newInterleavedService(t)
		importCSV(t, s, "title,url,category\nOne,https://example.com/a,Dev\nTwo,https://example.com/a,Dev\n")
		dups, err := s.List(ctx, ListFilter{Status: domain.StatusDuplicate})
		if err != nil || len(dups) != 1 {
			t.Fatalf("List(duplicate) = %d, %v; want 1", len(dups), err)
		}
		dup := dups[0]

		store.before = func() {
			if _, err := s.SetLock(ctx, dup.ID, true); err != nil {
				t.Errorf("SetLock() error = %v", err)
			}
		}
		res, err := s.DeleteDuplicates(ctx)
		if err != nil {
			t.Fatalf("DeleteDuplicates() error = %v", err)
		}
		if res.RemovedCount != 0 || res.SkippedLockedCount != 1 || res.SkippedLockedIDs[0] != dup.ID {
			t.Errorf("DeleteDuplicates() = %+v, want nothing removed and %s skipped", res, dup.ID)
		}
		got, err := s.Get(ctx, dup.ID)
		if err != nil || !got.Locked() {
			t.Errorf("Get() = %+v, %v; want the locked record", got, err)
		}
	})

	t.Run("find duplicates", func(t *testing.T) {
		s, store := newInterleavedService(t)
		older := &domain.Bookmark{ID: "old", URL: "https://example.com/a", Category: "Dev", Status: domain.StatusUnchecked, DateAdded: testNow}
		newer := &domain.Bookmark{ID: "new", URL: "https://example.com/a", Category: "Dev", Status: domain.StatusUnchecked, DateAdded: testNow.Add(time.Second)}
		_ = store.SaveMany(ctx, []*domain.Bookmark{older, newer})

		store.before = func() {
			if _, err := s.SetLock(ctx, "new", true); err != nil {
				t.Errorf("SetLock() error = %v", err)
			}
		}
		if _, err := s.FindDuplicates(ctx); err != nil {
			t.Fatalf("FindDuplicates() error = %v", err)
		}
		got, _ := s.Get(ctx, "new")
		if !got.IsLocked || got.Status != domain.StatusLocked {
			t.Errorf("after find: is_locked=%v status=%s, want locked", got.IsLocked, got.Status)
		}
	})

	t.Run("remove dead links", func(t *testing.T) {
		s, store := newInterleavedService(t)
		dead := &domain.Bookmark{ID: "dead", URL: "https://gone.example", Category: "Dev", Status: domain.StatusDead, DateAdded: testNow}
		_ = store.SaveMany(ctx, []*domain.Bookmark{dead})

		store.before = func() {
			if _, err := s.SetLock(ctx, "dead", true); err != nil {
				t.Errorf("SetLock() error = %v", err)
			}
		}
		res, err := s.RemoveDeadLinks(ctx)
		if err != nil {
			t.Fatalf("RemoveDeadLinks() error = %v", err)
		}
		if res.RemovedCount != 0 || res.SkippedLockedCount != 1 {
			t.Errorf("RemoveDeadLinks() = %+v, want nothing removed and 1 skipped", res)
		}
		if _, err := s.Get(ctx, "dead"); err != nil {
			t.Errorf("Get() error = %v, want the locked record kept", err)
		}
	})
}

func TestLockedRecordsRefuseMutation(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	b, err := s.Create(ctx, domain.BookmarkInput{Title: "Docs", URL: "https://go.dev/doc"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := s.ToggleLock(ctx, b.ID); err != nil {
		t.Fatalf("ToggleLock() error = %v", err)
	}

	if _, err := s.Update(ctx, b.ID, domain.BookmarkInput{Title: "x", URL: "https://go.dev"}); !errors.Is(err, domain.ErrLocked) {
		t.Errorf("Update() error = %v, want ErrLocked", err)
	}
	if err := s.Delete(ctx, b.ID); !errors.Is(err, domain.ErrLocked) {
		t.Errorf("Delete() error = %v, want ErrLocked", err)
	}
	if _, err := s.SetStatus(ctx, b.ID, domain.StatusDead); !errors.Is(err, domain.ErrLocked) {
		t.Errorf("SetStatus() error = %v, want ErrLocked", err)
	}
	if _, err := s.Move(ctx, b.ID, "Elsewhere", ""); !errors.Is(err, domain.ErrLocked) {
		t.Errorf("Move() error = %v, want ErrLocked", err)
	}

	unlocked, err := s.ToggleLock(ctx, b.ID)
	if err != nil {
		t.Fatalf("ToggleLock() error = %v", err)
	}
	if unlocked.Locked() || unlocked.Status != domain.StatusUnchecked {
		t.Errorf("after unlock = locked %v status %s", unlocked.Locked(), unlocked.Status)
	}
	if err := s.Delete(ctx, b.ID); err != nil {
		t.Errorf("Delete() after unlock error = %v", err)
	}
}

func TestUpdateResetsStatusOnURLChange(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	b, _ := s.Create(ctx, domain.BookmarkInput{Title: "Go", URL: "https://go.dev"})
	if _, err := s.SetStatus(ctx, b.ID, domain.StatusActive); err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}

	same, err := s.Update(ctx, b.ID, domain.BookmarkInput{Title: "Go site", URL: "HTTPS://GO.DEV/"})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if same.Status != domain.StatusActive {
		t.Errorf("status after equivalent URL = %s, want active", same.Status)
	}

	moved, err := s.Update(ctx, b.ID, domain.BookmarkInput{Title: "Go", URL: "https://go.dev/blog"})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if moved.Status != domain.StatusUnchecked {
		t.Errorf("status after URL change = %s, want unchecked", moved.Status)
	}
	if !moved.DateAdded.Equal(b.DateAdded) || moved.ID != b.ID {
		t.Error("identity changed on update")
	}
}

func TestSetStatusRejectsLocked(t *testing.T) {
	s, _, _ := newTestService(t)
	b, _ := s.Create(context.Background(), domain.BookmarkInput{URL: "https://go.dev"})

	if _, err := s.SetStatus(context.Background(), b.ID, domain.StatusLocked); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("SetStatus(locked) error = %v, want ErrInvalidInput", err)
	}
}

func TestCheckLink(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	b, _ := s.Create(ctx, domain.BookmarkInput{URL: "https://site.example/gone"})
	r, err := s.CheckLink(ctx, b.ID)
	if err != nil {
		t.Fatalf("CheckLink() error = %v", err)
	}
	if r.Status != domain.StatusDead || !r.Applied {
		t.Errorf("CheckLink() = %s applied %v", r.Status, r.Applied)
	}
	got, _ := s.Get(ctx, b.ID)
	if got.Status != domain.StatusDead {
		t.Errorf("stored status = %s, want dead", got.Status)
	}
}

func TestListFilter(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	_, _ = s.Create(ctx, domain.BookmarkInput{Title: "Go", URL: "https://go.dev", Category: "Dev", Tags: []string{"lang"}})
	_, _ = s.Create(ctx, domain.BookmarkInput{Title: "News", URL: "https://news.example", Category: "Read"})

	tests := []struct {
		name   string
		filter ListFilter
		want   int
	}{
		{"all", ListFilter{}, 2},
		{"category", ListFilter{Category: "dev"}, 1},
		{"tag", ListFilter{Tag: "LANG"}, 1},
		{"query", ListFilter{Query: "news"}, 1},
		{"status", ListFilter{Status: domain.StatusDead}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := s.List(ctx, tc.filter)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(got) != tc.want {
				t.Errorf("List() = %d records, want %d", len(got), tc.want)
			}
		})
	}
}

func TestCategories(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := s.CreateCategory(ctx, domain.Category{Name: " "}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("empty name error = %v", err)
	}
	if _, err := s.CreateCategory(ctx, domain.Category{Name: "Child", ParentCategory: "Missing"}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing parent error = %v", err)
	}

	for _, c := range []domain.Category{
		{Name: "Work"},
		{Name: "Projects", ParentCategory: "Work"},
		{Name: "Archive", ParentCategory: "Projects"},
	} {
		if _, err := s.CreateCategory(ctx, c); err != nil {
			t.Fatalf("CreateCategory(%s) error = %v", c.Name, err)
		}
	}
	if _, err := s.CreateCategory(ctx, domain.Category{Name: "Work", ParentCategory: "Archive"}); !errors.Is(err, domain.ErrCategoryCycle) {
		t.Errorf("cycle error = %v, want ErrCategoryCycle", err)
	}

	b, _ := s.Create(ctx, domain.BookmarkInput{URL: "https://jira.example", Category: "Work", Subcategory: "Projects"})
	if err := s.DeleteCategory(ctx, domain.Category{Name: "Projects", ParentCategory: "Work"}); !errors.Is(err, domain.ErrCategoryInUse) {
		t.Errorf("DeleteCategory(in use) error = %v", err)
	}

	if _, err := s.Move(ctx, b.ID, "Work", ""); err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if err := s.DeleteCategory(ctx, domain.Category{Name: "Projects", ParentCategory: "Work"}); err != nil {
		t.Fatalf("DeleteCategory() error = %v", err)
	}

	tree, err := s.CategoryTree(ctx)
	if err != nil {
		t.Fatalf("CategoryTree() error = %v", err)
	}
	var work *domain.CategoryNode
	for _, n := range tree {
		if n.Name == "Work" {
			work = n
		}
	}
	if work == nil || len(work.Children) != 1 || work.Children[0].Name != "Archive" {
		t.Fatalf("Work node = %+v, want Archive re-parented under it", work)
	}
	if work.BookmarkCount != 1 {
		t.Errorf("Work BookmarkCount = %d, want 1", work.BookmarkCount)
	}

	if err := s.DeleteCategory(ctx, domain.Category{Name: "Nope"}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("DeleteCategory(missing) error = %v", err)
	}
}

func TestExport(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	_, _ = s.Create(ctx, domain.BookmarkInput{Title: "Go", URL: "https://go.dev", Category: "Dev"})
	_, _ = s.Create(ctx, domain.BookmarkInput{Title: "News", URL: "https://news.example", Category: "Read"})

	res, err := s.Export(ctx, formats.JSON, formats.ExportOptions{Category: "Dev"})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if res.Count != 1 {
		t.Errorf("Count = %d, want 1", res.Count)
	}
	if res.FileName != "favoriten_2024-03-15.json" {
		t.Errorf("FileName = %q", res.FileName)
	}
	if !strings.Contains(string(res.Data), "https://go.dev") || strings.Contains(string(res.Data), "news.example") {
		t.Errorf("Data = %s", res.Data)
	}
}

func TestStats(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	importCSV(t, s, "title,url,category\nA,https://a.example,Dev\nB,https://a.example,Dev\nC,https://c.example,Read\n")

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if st.Total != 3 || st.ByCategory["Dev"] != 2 || st.ByStatus[domain.StatusDuplicate] != 1 {
		t.Errorf("Stats() = %+v", st)
	}
	if st.ByBrowser[formats.SourceCSV] != 3 {
		t.Errorf("ByBrowser = %v", st.ByBrowser)
	}
}
