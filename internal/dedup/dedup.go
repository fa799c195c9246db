// Package dedup groups bookmarks by normalized URL and marks every
// member but the earliest one as a duplicate.
package dedup

import (
	"sort"

	"github.com/MrSnakeDoc/favorg/internal/domain"
	"github.com/MrSnakeDoc/favorg/internal/urlnorm"
)

// Group is a set of records sharing one normalized URL.
type Group struct {
	NormalizedURL string   `json:"normalized_url"`
	KeptID        string   `json:"kept_id"`
	MemberIDs     []string `json:"member_ids"` // kept first, then by date_added
}

// FindResult summarizes a marking pass.
type FindResult struct {
	DuplicateGroups int `json:"duplicate_groups"`

	// MarkedCount is the number of records carrying the duplicate status
	// after the pass. Locked members are excluded.
	MarkedCount int `json:"marked_count"`

	// LockedCount counts locked non-kept members: duplicates that keep
	// their lock.
	LockedCount int `json:"locked_count"`

	Groups []Group `json:"groups"`

	// Changed lists the records whose status was modified, for persistence.
	Changed []*domain.Bookmark `json:"-"`
}

// DeletePlan lists what a delete pass may remove.
type DeletePlan struct {
	Remove        []string `json:"remove"`
	SkippedLocked []string `json:"skipped_locked"`
}

type group struct {
	key     string
	members []*domain.Bookmark
}

// groupByURL returns groups of size > 1 in order of first appearance.
// Members are sorted by date_added; ties keep input order.
func groupByURL(records []*domain.Bookmark) []group {
	index := make(map[string]int)
	var all []group
	for _, b := range records {
		key, err := urlnorm.Normalize(b.URL)
		if err != nil {
			continue
		}
		i, ok := index[key]
		if !ok {
			i = len(all)
			index[key] = i
			all = append(all, group{key: key})
		}
		all[i].members = append(all[i].members, b)
	}

	out := all[:0]
	for _, g := range all {
		if len(g.members) < 2 {
			continue
		}
		sort.SliceStable(g.members, func(i, j int) bool {
			return g.members[i].DateAdded.Before(g.members[j].DateAdded)
		})
		out = append(out, g)
	}
	return out
}

// Find marks duplicates in place. Pass existing records before new ones
// so that an equal date_added keeps the existing record.
//
// Stale duplicate marks (the record is unique now, or became the kept one)
// are reset to unchecked. Locked records never change status.
func Find(records []*domain.Bookmark) FindResult {
	var res FindResult

	want := make(map[*domain.Bookmark]bool, len(records))
	for _, g := range groupByURL(records) {
		res.DuplicateGroups++
		grp := Group{NormalizedURL: g.key, KeptID: g.members[0].ID}
		for i, b := range g.members {
			grp.MemberIDs = append(grp.MemberIDs, b.ID)
			if i == 0 {
				continue
			}
			if b.Locked() {
				res.LockedCount++
				continue
			}
			want[b] = true
			res.MarkedCount++
		}
		res.Groups = append(res.Groups, grp)
	}

	for _, b := range records {
		if b.Locked() {
			continue
		}
		switch {
		case want[b] && b.Status != domain.StatusDuplicate:
			b.Status = domain.StatusDuplicate
			res.Changed = append(res.Changed, b)
		case !want[b] && b.Status == domain.StatusDuplicate:
			b.Status = domain.StatusUnchecked
			res.Changed = append(res.Changed, b)
		}
	}

	return res
}

// PlanDelete selects the records currently marked duplicate, excluding
// locked ones. A mark is only honoured while the record still has an
// earlier original; the last copy of a URL is never removed.
// Locked non-kept group members are reported as skipped.
func PlanDelete(records []*domain.Bookmark) DeletePlan {
	var plan DeletePlan
	for _, g := range groupByURL(records) {
		for _, b := range g.members[1:] {
			switch {
			case b.Locked():
				plan.SkippedLocked = append(plan.SkippedLocked, b.ID)
			case b.Status == domain.StatusDuplicate:
				plan.Remove = append(plan.Remove, b.ID)
			}
		}
	}
	return plan
}
