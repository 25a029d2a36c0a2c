package task

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDraftFields(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	f, err := Draft{Text: "  Buy milk ", Deadline: "2025-03-01 18:30", Priority: "2", Description: "2L"}.Fields(loc)
	if err != nil {
		t.Fatalf("Fields: %v", err)
	}
	if f.Text != "Buy milk" || f.Priority != 2 || f.Description != "2L" || f.Completed {
		t.Fatalf("unexpected fields: %#v", f)
	}
	want := time.Date(2025, 3, 1, 18, 30, 0, 0, loc)
	if !f.Deadline.Equal(want) {
		t.Fatalf("deadline = %v, want %v", f.Deadline, want)
	}
}

func TestDraftValidation(t *testing.T) {
	tests := []struct {
		name  string
		draft Draft
		want  error
	}{
		{"missing name", Draft{Text: " ", Deadline: "2025-03-01 10:00"}, ErrTextRequired},
		{"missing deadline", Draft{Text: "x"}, ErrDeadlineRequired},
		{"bad deadline", Draft{Text: "x", Deadline: "tomorrow"}, ErrDeadlineInvalid},
		{"long description", Draft{Text: "x", Deadline: "2025-03-01 10:00", Description: strings.Repeat("a", 201)}, ErrDescriptionTooLong},
		{"bad priority", Draft{Text: "x", Deadline: "2025-03-01 10:00", Priority: "7"}, ErrPriorityInvalid},
		{"ok at limit", Draft{Text: "x", Deadline: "2025-03-01 10:00", Description: strings.Repeat("é", 200)}, nil},
		{"past deadline ok", Draft{Text: "x", Deadline: "1999-01-01T00:00"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.draft.Validate(); !errors.Is(err, tt.want) {
				t.Fatalf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDraftFromRoundTrip(t *testing.T) {
	orig := Task{ID: "abc", Text: "Report", Deadline: time.Date(2025, 5, 4, 9, 15, 0, 0, time.Local), Priority: 3, Description: "q2"}
	f, err := DraftFrom(orig).Fields(time.Local)
	if err != nil {
		t.Fatalf("Fields: %v", err)
	}
	got := f.WithID("abc")
	if !got.Deadline.Equal(orig.Deadline) {
		t.Fatalf("deadline = %v, want %v", got.Deadline, orig.Deadline)
	}
	got.Deadline, orig.Deadline = time.Time{}, time.Time{}
	if got != orig {
		t.Fatalf("round trip = %#v, want %#v", got, orig)
	}
}

func TestParseDeadlineLayouts(t *testing.T) {
	loc := time.UTC
	for _, v := range []string{
		"2025-03-01T10:00:00Z",
		"2025-03-01T10:00",
		"2025-03-01T10:00:00",
		"2025-03-01 10:00",
	} {
		got, err := ParseDeadlineIn(v, loc)
		if err != nil {
			t.Fatalf("ParseDeadlineIn(%q): %v", v, err)
		}
		if !got.Equal(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)) {
			t.Fatalf("ParseDeadlineIn(%q) = %v", v, got)
		}
	}
	if _, err := ParseDeadline("not a date"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestPatchApply(t *testing.T) {
	done := true
	text := "new"
	got := Patch{Completed: &done, Text: &text}.Apply(Task{ID: "a", Text: "old", Priority: 2})
	if !got.Completed || got.Text != "new" || got.Priority != 2 || got.ID != "a" {
		t.Fatalf("unexpected patched task: %#v", got)
	}
	if !(Patch{}).Empty() || (Patch{Completed: &done}).Empty() {
		t.Fatal("Empty() wrong")
	}
}
