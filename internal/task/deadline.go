package task

import (
	"strings"
	"time"
)

// InputLayout is the layout used in the add/edit form.
const InputLayout = "2006-01-02 15:04"

// Layouts without a zone are read in the caller's location. The web client
// wrote datetime-local values ("2006-01-02T15:04").
var localLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
	InputLayout,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDeadline parses a stored deadline string in the local time zone.
func ParseDeadline(v string) (time.Time, error) {
	return ParseDeadlineIn(v, time.Local)
}

// ParseDeadlineIn parses RFC 3339 first, then the zone-less layouts in loc.
func ParseDeadlineIn(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	if loc == nil {
		loc = time.Local
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err == nil {
		return t, nil
	}
	for _, layout := range localLayouts {
		if parsed, perr := time.ParseInLocation(layout, v, loc); perr == nil {
			return parsed, nil
		}
	}
	return time.Time{}, err
}

// FormatDeadline is the stored form of a deadline.
func FormatDeadline(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
