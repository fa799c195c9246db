package service

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/favorg/internal/dedup"
	"github.com/MrSnakeDoc/favorg/internal/domain"
	"github.com/MrSnakeDoc/favorg/internal/logger"
	"github.com/MrSnakeDoc/favorg/internal/validator"
)

// DuplicatesResult is the outcome of the find phase.
type DuplicatesResult struct {
	DuplicateGroups int              `json:"duplicate_groups"`
	MarkedCount     int              `json:"marked_count"`
	LockedCount     int              `json:"locked_count"`
	Groups          []dedup.Group    `json:"groups"`
	Phase           domain.BulkPhase `json:"phase"`
}

// RemoveResult is the outcome of a delete phase.
type RemoveResult struct {
	RemovedCount       int              `json:"removed_count"`
	SkippedLockedCount int              `json:"skipped_locked_count"`
	SkippedLockedIDs   []string         `json:"skipped_locked_ids"`
	Phase              domain.BulkPhase `json:"phase"`
}

// FindDuplicates marks duplicates without deleting anything.
func (s *Service) FindDuplicates(ctx context.Context) (*DuplicatesResult, error) {
	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	records, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}

	found := dedup.Find(records)
	if _, err := s.store.SetStatuses(ctx, statusesOf(found.Changed)); err != nil {
		return nil, fmt.Errorf("save duplicate marks: %w", err)
	}
	s.markDuplicates(records)

	s.log.Info("duplicates marked",
		logger.Int("groups", found.DuplicateGroups),
		logger.Int("marked", found.MarkedCount),
		logger.Int("locked", found.LockedCount))

	return &DuplicatesResult{
		DuplicateGroups: found.DuplicateGroups,
		MarkedCount:     found.MarkedCount,
		LockedCount:     found.LockedCount,
		Groups:          found.Groups,
		Phase:           domain.PhaseMarked,
	}, nil
}

func (s *Service) markDuplicates(records []*domain.Bookmark) {
	plan := dedup.PlanDelete(records)
	s.updateState(domain.BulkDuplicates, func(st *domain.BulkState) {
		st.Mark(plan.Remove, plan.SkippedLocked, s.now())
	})
}

// DeleteDuplicates removes records currently marked duplicate. Locked
// records are never removed; they are reported instead.
func (s *Service) DeleteDuplicates(ctx context.Context) (*RemoveResult, error) {
	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	records, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}

	plan := dedup.PlanDelete(records)
	removed, err := s.store.DeleteUnlocked(ctx, plan.Remove)
	if err != nil {
		return nil, fmt.Errorf("delete duplicates: %w", err)
	}
	skipped, err := s.lockedAmong(ctx, plan.SkippedLocked, plan.Remove)
	if err != nil {
		return nil, err
	}

	s.updateState(domain.BulkDuplicates, func(st *domain.BulkState) {
		st.LockedIDs = skipped
		st.Remove(removed, s.now())
	})

	s.log.Info("duplicates removed",
		logger.Int("removed", removed),
		logger.Int("skipped_locked", len(skipped)))

	return &RemoveResult{
		RemovedCount:       removed,
		SkippedLockedCount: len(skipped),
		SkippedLockedIDs:   nonNil(skipped),
		Phase:              domain.PhaseRemoved,
	}, nil
}

// ValidateLinks checks every record and stores the new statuses of the
// unlocked ones. The store re-checks the lock at write time, so a lock or a
// delete that happened during the run wins. Records the run never reached
// because the caller went away keep their status.
func (s *Service) ValidateLinks(ctx context.Context) (*validator.Report, error) {
	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	records, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}

	rep := s.validator.Validate(ctx, records)

	statuses := make(map[string]domain.Status, len(rep.Results))
	var dead, lockedDead []string
	for _, r := range rep.Results {
		if r.Applied {
			statuses[r.ID] = r.Status
		}
		if r.Status == domain.StatusDead {
			if r.Locked {
				lockedDead = append(lockedDead, r.ID)
			} else {
				dead = append(dead, r.ID)
			}
		}
	}

	// The write-back must survive a caller that gave up waiting.
	if _, err := s.store.SetStatuses(context.WithoutCancel(ctx), statuses); err != nil {
		return nil, fmt.Errorf("save link statuses: %w", err)
	}

	s.updateState(domain.BulkDeadLinks, func(st *domain.BulkState) {
		st.Mark(dead, lockedDead, s.now())
	})

	return rep, nil
}

func statusesOf(records []*domain.Bookmark) map[string]domain.Status {
	out := make(map[string]domain.Status, len(records))
	for _, b := range records {
		out[b.ID] = b.Status
	}
	return out
}

// lockedAmong returns the ids, from every list, of records that exist and
// are locked now.
func (s *Service) lockedAmong(ctx context.Context, lists ...[]string) ([]string, error) {
	current, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	locked := make(map[string]bool)
	for _, b := range current {
		if b.Locked() {
			locked[b.ID] = true
		}
	}

	var out []string
	for _, ids := range lists {
		for _, id := range ids {
			if locked[id] {
				out = append(out, id)
				delete(locked, id)
			}
		}
	}
	return out, nil
}

// RemoveDeadLinks removes unlocked records whose status is dead. Timeouts
// are kept. Locked records whose last check was dead are reported.
func (s *Service) RemoveDeadLinks(ctx context.Context) (*RemoveResult, error) {
	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	records, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}

	var ids []string
	for _, b := range records {
		if b.Status == domain.StatusDead && !b.Locked() {
			ids = append(ids, b.ID)
		}
	}

	removed, err := s.store.DeleteUnlocked(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("delete dead links: %w", err)
	}
	skipped, err := s.lockedAmong(ctx, s.state(domain.BulkDeadLinks).LockedIDs, ids)
	if err != nil {
		return nil, err
	}

	s.updateState(domain.BulkDeadLinks, func(st *domain.BulkState) {
		st.LockedIDs = skipped
		st.Remove(removed, s.now())
	})

	s.log.Info("dead links removed",
		logger.Int("removed", removed),
		logger.Int("skipped_locked", len(skipped)))

	return &RemoveResult{
		RemovedCount:       removed,
		SkippedLockedCount: len(skipped),
		SkippedLockedIDs:   nonNil(skipped),
		Phase:              domain.PhaseRemoved,
	}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
