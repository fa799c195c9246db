package dedup

import (
	"testing"
	"time"

	"github.com/MrSnakeDoc/favorg/internal/domain"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func rec(id, url string, offset time.Duration, status domain.Status) *domain.Bookmark {
	return &domain.Bookmark{ID: id, URL: url, DateAdded: t0.Add(offset), Status: status}
}

func TestFindMarksAllButEarliest(t *testing.T) {
	records := []*domain.Bookmark{
		rec("c", "https://example.com/?b=2&a=1", 3*time.Hour, domain.StatusActive),
		rec("a", "HTTPS://Example.com:443/?a=1&b=2", 1*time.Hour, domain.StatusActive),
		rec("b", "https://example.com?a=1&b=2", 2*time.Hour, domain.StatusUnchecked),
		rec("d", "https://example.com/other", 0, domain.StatusActive),
	}

	res := Find(records)

	if res.DuplicateGroups != 1 || res.MarkedCount != 2 || res.LockedCount != 0 {
		t.Fatalf("Find() = groups %d marked %d locked %d, want 1/2/0", res.DuplicateGroups, res.MarkedCount, res.LockedCount)
	}
	if res.Groups[0].KeptID != "a" {
		t.Errorf("KeptID = %q, want a", res.Groups[0].KeptID)
	}

	want := map[string]domain.Status{
		"a": domain.StatusActive,
		"b": domain.StatusDuplicate,
		"c": domain.StatusDuplicate,
		"d": domain.StatusActive,
	}
	for _, b := range records {
		if b.Status != want[b.ID] {
			t.Errorf("%s status = %q, want %q", b.ID, b.Status, want[b.ID])
		}
	}
	if len(res.Changed) != 2 {
		t.Errorf("len(Changed) = %d, want 2", len(res.Changed))
	}
}

func TestFindNGroup(t *testing.T) {
	const n = 6
	var records []*domain.Bookmark
	for i := n - 1; i >= 0; i-- {
		records = append(records, rec(string(rune('a'+i)), "https://same.example/", time.Duration(i)*time.Minute, domain.StatusUnchecked))
	}

	res := Find(records)
	if res.MarkedCount != n-1 {
		t.Errorf("MarkedCount = %d, want %d", res.MarkedCount, n-1)
	}
	for _, b := range records {
		if b.ID == "a" && b.Status == domain.StatusDuplicate {
			t.Error("earliest record marked duplicate")
		}
	}
}

func TestFindTieKeepsInputOrder(t *testing.T) {
	existing := rec("existing", "https://tie.example", 0, domain.StatusActive)
	fresh := rec("fresh", "https://tie.example/", 0, domain.StatusUnchecked)

	Find([]*domain.Bookmark{existing, fresh})
	if existing.Status != domain.StatusActive || fresh.Status != domain.StatusDuplicate {
		t.Errorf("statuses = %q/%q, want active/duplicate", existing.Status, fresh.Status)
	}
}

func TestFindLockedNeverRemarked(t *testing.T) {
	kept := rec("kept", "https://lock.example", 0, domain.StatusActive)
	locked := rec("locked", "https://lock.example", time.Hour, domain.StatusLocked)
	locked.IsLocked = true

	res := Find([]*domain.Bookmark{kept, locked})
	if locked.Status != domain.StatusLocked {
		t.Errorf("locked status = %q", locked.Status)
	}
	if res.MarkedCount != 0 || res.LockedCount != 1 || res.DuplicateGroups != 1 {
		t.Errorf("Find() = %+v", res)
	}
}

func TestFindResetsStaleMarks(t *testing.T) {
	alone := rec("alone", "https://alone.example", 0, domain.StatusDuplicate)
	res := Find([]*domain.Bookmark{alone})
	if alone.Status != domain.StatusUnchecked {
		t.Errorf("status = %q, want unchecked", alone.Status)
	}
	if len(res.Changed) != 1 {
		t.Errorf("len(Changed) = %d, want 1", len(res.Changed))
	}
}

func TestFindIsIdempotent(t *testing.T) {
	records := []*domain.Bookmark{
		rec("a", "https://x.example", 0, domain.StatusActive),
		rec("b", "https://x.example", time.Hour, domain.StatusActive),
	}
	Find(records)
	second := Find(records)
	if len(second.Changed) != 0 || second.MarkedCount != 1 {
		t.Errorf("second pass = %+v", second)
	}
}

func TestPlanDelete(t *testing.T) {
	kept := rec("kept", "https://p.example", 0, domain.StatusActive)
	dup := rec("dup", "https://p.example", time.Hour, domain.StatusDuplicate)
	locked := rec("locked", "https://p.example", 2*time.Hour, domain.StatusDuplicate)
	locked.IsLocked = true
	other := rec("other", "https://q.example", 0, domain.StatusDead)

	plan := PlanDelete([]*domain.Bookmark{kept, dup, locked, other})
	if len(plan.Remove) != 1 || plan.Remove[0] != "dup" {
		t.Errorf("Remove = %v, want [dup]", plan.Remove)
	}
	if len(plan.SkippedLocked) != 1 || plan.SkippedLocked[0] != "locked" {
		t.Errorf("SkippedLocked = %v, want [locked]", plan.SkippedLocked)
	}
}

func TestPlanDeleteKeepsLastCopy(t *testing.T) {
	orphan := rec("orphan", "https://gone-original.example", 0, domain.StatusDuplicate)
	plan := PlanDelete([]*domain.Bookmark{orphan})
	if len(plan.Remove) != 0 {
		t.Errorf("Remove = %v, want none", plan.Remove)
	}
}
