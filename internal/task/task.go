package task

import (
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// MaxDescriptionLen is the form limit for descriptions, counted in runes.
	MaxDescriptionLen = 200
	MinPriority       = 1
	MaxPriority       = 3
)

var (
	ErrTextRequired       = errors.New("task name is required")
	ErrDeadlineRequired   = errors.New("deadline is required")
	ErrDeadlineInvalid    = errors.New("deadline is not a valid date/time")
	ErrDescriptionTooLong = errors.New("description is limited to 200 characters")
	ErrPriorityInvalid    = errors.New("priority must be 1, 2 or 3")
)

// Task is a single to-do item. Priority 0 means unranked.
type Task struct {
	ID          string
	Text        string
	Completed   bool
	Deadline    time.Time
	Priority    int
	Description string
}

// Fields is a task as sent to the store on insert, before it has an ID.
type Fields struct {
	Text        string
	Completed   bool
	Deadline    time.Time
	Priority    int
	Description string
}

// WithID attaches a store-assigned id.
func (f Fields) WithID(id string) Task {
	return Task{
		ID:          id,
		Text:        f.Text,
		Completed:   f.Completed,
		Deadline:    f.Deadline,
		Priority:    f.Priority,
		Description: f.Description,
	}
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Text        *string
	Completed   *bool
	Deadline    *time.Time
	Priority    *int
	Description *string
}

// Empty reports whether the patch would write nothing.
func (p Patch) Empty() bool {
	return p.Text == nil && p.Completed == nil && p.Deadline == nil && p.Priority == nil && p.Description == nil
}

// Apply returns a copy of t with the patch applied.
func (p Patch) Apply(t Task) Task {
	if p.Text != nil {
		t.Text = *p.Text
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Deadline != nil {
		t.Deadline = *p.Deadline
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	return t
}

// Draft holds raw form input for adding or editing a task.
type Draft struct {
	Text        string
	Deadline    string
	Description string
	Priority    string
}

// DraftFrom pre-fills a form with an existing task.
func DraftFrom(t Task) Draft {
	d := Draft{
		Text:        t.Text,
		Description: t.Description,
	}
	if !t.Deadline.IsZero() {
		d.Deadline = t.Deadline.Local().Format(InputLayout)
	}
	if t.Priority != 0 {
		d.Priority = strconv.Itoa(t.Priority)
	}
	return d
}

// Fields validates the draft and converts it. Validation happens before any
// store call.
func (d Draft) Fields(loc *time.Location) (Fields, error) {
	text := strings.TrimSpace(d.Text)
	if text == "" {
		return Fields{}, ErrTextRequired
	}
	if strings.TrimSpace(d.Deadline) == "" {
		return Fields{}, ErrDeadlineRequired
	}
	deadline, err := ParseDeadlineIn(d.Deadline, loc)
	if err != nil {
		return Fields{}, ErrDeadlineInvalid
	}
	if utf8.RuneCountInString(d.Description) > MaxDescriptionLen {
		return Fields{}, ErrDescriptionTooLong
	}
	priority, err := ParsePriority(d.Priority)
	if err != nil {
		return Fields{}, err
	}
	return Fields{
		Text:        text,
		Deadline:    deadline,
		Priority:    priority,
		Description: d.Description,
	}, nil
}

// Validate reports the first validation error, if any.
func (d Draft) Validate() error {
	_, err := d.Fields(time.Local)
	return err
}

// ParsePriority accepts "" (unranked) or 1..3.
func ParsePriority(v string) (int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < MinPriority || n > MaxPriority {
		return 0, ErrPriorityInvalid
	}
	return n, nil
}
