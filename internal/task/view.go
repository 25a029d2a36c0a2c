package task

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// StatusFilter selects tasks by completion.
type StatusFilter string

const (
	StatusAll     StatusFilter = "all"
	StatusDone    StatusFilter = "done"
	StatusNotDone StatusFilter = "not_done"
)

var statusCycle = []StatusFilter{StatusAll, StatusDone, StatusNotDone}

// ParseStatusFilter accepts the config spellings. Empty means all.
func ParseStatusFilter(v string) (StatusFilter, error) {
	switch StatusFilter(strings.ToLower(strings.TrimSpace(v))) {
	case "", StatusAll:
		return StatusAll, nil
	case StatusDone:
		return StatusDone, nil
	case StatusNotDone, "pending":
		return StatusNotDone, nil
	}
	return StatusAll, fmt.Errorf("unknown status filter %q", v)
}

// Next cycles all -> done -> not_done -> all.
func (f StatusFilter) Next() StatusFilter {
	i := slices.Index(statusCycle, f)
	return statusCycle[(i+1)%len(statusCycle)]
}

func (f StatusFilter) match(t Task) bool {
	switch f {
	case StatusDone:
		return t.Completed
	case StatusNotDone:
		return !t.Completed
	default:
		return true
	}
}

// PriorityFilter selects tasks by priority. PriorityAll matches every task;
// a concrete priority never matches unranked tasks.
type PriorityFilter int

const PriorityAll PriorityFilter = 0

// ParsePriorityFilter accepts "all", "" or 1..3.
func ParsePriorityFilter(v string) (PriorityFilter, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" || v == "all" {
		return PriorityAll, nil
	}
	p, err := ParsePriority(v)
	if err != nil {
		return PriorityAll, err
	}
	return PriorityFilter(p), nil
}

// Next cycles all -> 1 -> 2 -> 3 -> all.
func (f PriorityFilter) Next() PriorityFilter {
	if f >= MaxPriority {
		return PriorityAll
	}
	return f + 1
}

func (f PriorityFilter) String() string {
	if f == PriorityAll {
		return "all"
	}
	return fmt.Sprintf("P%d", int(f))
}

func (f PriorityFilter) match(t Task) bool {
	return f == PriorityAll || t.Priority == int(f)
}

// Filter keeps the tasks matching both filters, in input order.
func Filter(tasks []Task, status StatusFilter, priority PriorityFilter) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if status.match(t) && priority.match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Sort returns a sorted copy: incomplete before completed, completed by
// latest deadline, incomplete with expired first and then soonest deadline.
// Ties keep their input order.
func Sort(tasks []Task, now time.Time) []Task {
	out := slices.Clone(tasks)
	slices.SortStableFunc(out, func(a, b Task) int {
		return compare(a, b, now)
	})
	return out
}

// View is the derived list the UI renders.
func View(tasks []Task, status StatusFilter, priority PriorityFilter, now time.Time) []Task {
	return Sort(Filter(tasks, status, priority), now)
}

func compare(a, b Task, now time.Time) int {
	if a.Completed != b.Completed {
		if a.Completed {
			return 1
		}
		return -1
	}
	if a.Completed {
		return b.Deadline.Compare(a.Deadline)
	}
	aLeft := a.Deadline.Sub(now)
	bLeft := b.Deadline.Sub(now)
	if aLeft < 0 && bLeft >= 0 {
		return -1
	}
	if aLeft >= 0 && bLeft < 0 {
		return 1
	}
	return a.Deadline.Compare(b.Deadline)
}
