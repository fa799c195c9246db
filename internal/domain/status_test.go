package domain

import (
	"errors"
	"testing"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Status
		wantErr bool
	}{
		{name: "lower case", input: "active", want: StatusActive},
		{name: "mixed case with spaces", input: "  Dead ", want: StatusDead},
		{name: "locked", input: "LOCKED", want: StatusLocked},
		{name: "unknown", input: "broken", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStatus(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Errorf("ParseStatus(%q) error = %v, want ErrInvalidInput", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseStatus(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseStatus(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestAllStatusesValid(t *testing.T) {
	if len(AllStatuses) != 7 {
		t.Fatalf("len(AllStatuses) = %d, want 7", len(AllStatuses))
	}
	for _, s := range AllStatuses {
		if !s.Valid() {
			t.Errorf("%q.Valid() = false", s)
		}
	}
	if Status("pending").Valid() {
		t.Error(`Status("pending").Valid() = true, want false`)
	}
}
