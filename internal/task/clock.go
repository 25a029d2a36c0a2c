package task

import (
	"fmt"
	"time"
)

// ExpiredMarker is shown in place of a countdown once the deadline passes.
const ExpiredMarker = "Time's up!"

// DueSoonWindow is how close a deadline has to be for a task to be due soon.
const DueSoonWindow = 24 * time.Hour

// Remaining renders the time left until deadline as "{h}h {m}m {s}s".
// Hours are not folded into days. Values are truncated, never rounded.
func Remaining(deadline, now time.Time) string {
	diff := deadline.Sub(now)
	if diff <= 0 {
		return ExpiredMarker
	}
	total := int64(diff / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}

// Expired reports whether the deadline is at or before now.
func Expired(deadline, now time.Time) bool {
	return !deadline.After(now)
}

// DueSoon reports whether deadline is still ahead of now but within
// DueSoonWindow. Completion is the caller's concern.
func DueSoon(deadline, now time.Time) bool {
	left := deadline.Sub(now)
	return left > 0 && left < DueSoonWindow
}

// Countdowns computes the countdown string for every task, keyed by id.
func Countdowns(tasks []Task, now time.Time) map[string]string {
	out := make(map[string]string, len(tasks))
	for _, t := range tasks {
		out[t.ID] = Remaining(t.Deadline, now)
	}
	return out
}
