package domain

import "time"

// BulkOperation names a two-phase mark-then-act operation.
type BulkOperation string

const (
	BulkDuplicates BulkOperation = "duplicates"
	BulkDeadLinks  BulkOperation = "dead_links"
)

// BulkPhase is the position of a bulk operation in its state machine:
//
//	unmarked --Mark--> marked --Remove--> removed
//	    ^                 |                  |
//	    +------Reset------+------------------+
//
// Mark may be repeated from any phase; it replaces the marked set.
type BulkPhase string

const (
	PhaseUnmarked BulkPhase = "unmarked"
	PhaseMarked   BulkPhase = "marked"
	PhaseRemoved  BulkPhase = "removed"
)

// BulkState is the persisted-in-memory progress of one bulk operation.
type BulkState struct {
	Operation BulkOperation `json:"operation"`
	Phase     BulkPhase     `json:"phase"`

	// MarkedIDs are the records the mark phase flagged for removal.
	MarkedIDs []string `json:"marked_ids"`

	// LockedIDs matched the removal criteria but are protected.
	LockedIDs []string `json:"locked_ids"`

	RemovedCount int       `json:"removed_count"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewBulkState returns an unmarked state for op.
func NewBulkState(op BulkOperation) *BulkState {
	return &BulkState{Operation: op, Phase: PhaseUnmarked}
}

// Mark records the outcome of the mark phase.
func (s *BulkState) Mark(ids, locked []string, now time.Time) {
	s.Phase = PhaseMarked
	s.MarkedIDs = append([]string(nil), ids...)
	s.LockedIDs = append([]string(nil), locked...)
	s.RemovedCount = 0
	s.UpdatedAt = now
}

// Remove records the outcome of the act phase.
// The locked set is kept so callers can report what was skipped.
func (s *BulkState) Remove(removed int, now time.Time) {
	s.Phase = PhaseRemoved
	s.MarkedIDs = nil
	s.RemovedCount = removed
	s.UpdatedAt = now
}

// Reset returns the operation to its initial phase.
func (s *BulkState) Reset(now time.Time) {
	s.Phase = PhaseUnmarked
	s.MarkedIDs = nil
	s.LockedIDs = nil
	s.RemovedCount = 0
	s.UpdatedAt = now
}

// Clone returns a deep copy.
func (s *BulkState) Clone() *BulkState {
	c := *s
	c.MarkedIDs = append([]string(nil), s.MarkedIDs...)
	c.LockedIDs = append([]string(nil), s.LockedIDs...)
	return &c
}
