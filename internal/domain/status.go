package domain

import (
	"fmt"
	"strings"
)

// Status is the link-health / protection state of a record.
type Status string

const (
	StatusActive    Status = "active"
	StatusDead      Status = "dead"
	StatusLocalhost Status = "localhost"
	StatusDuplicate Status = "duplicate"
	StatusTimeout   Status = "timeout"
	StatusUnchecked Status = "unchecked"
	StatusLocked    Status = "locked"
)

// AllStatuses lists the taxonomy in display order.
var AllStatuses = []Status{
	StatusActive,
	StatusDead,
	StatusLocalhost,
	StatusDuplicate,
	StatusTimeout,
	StatusUnchecked,
	StatusLocked,
}

// Valid reports whether s belongs to the taxonomy.
func (s Status) Valid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func (s Status) String() string { return string(s) }

// ParseStatus parses a status token (case-insensitive).
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidInput, raw)
	}
	return s, nil
}
