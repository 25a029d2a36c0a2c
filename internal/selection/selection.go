// Package selection tracks multi-select state for bulk actions.
package selection

import (
	"slices"
	"time"
)

// LongPressDelay is how long a row must be held before selection mode starts.
const LongPressDelay = 500 * time.Millisecond

// Set is the selected task ids plus the selection-mode flag.
type Set struct {
	ids    map[string]struct{}
	active bool
}

func New() *Set {
	return &Set{ids: map[string]struct{}{}}
}

// Toggle adds id if absent and removes it if present.
func (s *Set) Toggle(id string) {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return
	}
	s.ids[id] = struct{}{}
}

// Enter switches selection mode on and toggles id.
func (s *Set) Enter(id string) {
	s.active = true
	s.Toggle(id)
}

// Activate switches selection mode on without changing the set.
func (s *Set) Activate() {
	s.active = true
}

// SelectAll replaces the set with ids.
func (s *Set) SelectAll(ids []string) {
	s.ids = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
}

// Clear empties the set and leaves selection mode.
func (s *Set) Clear() {
	s.ids = map[string]struct{}{}
	s.active = false
}

// AllSelected reports whether every id in ids is selected.
func (s *Set) AllSelected(ids []string) bool {
	if len(ids) == 0 || len(s.ids) < len(ids) {
		return false
	}
	for _, id := range ids {
		if !s.Has(id) {
			return false
		}
	}
	return true
}

// ToggleAll selects every id, or clears the selection if all were selected.
func (s *Set) ToggleAll(ids []string) {
	if s.AllSelected(ids) {
		s.Clear()
		return
	}
	s.SelectAll(ids)
}

// Remove drops ids that no longer exist.
func (s *Set) Remove(ids ...string) {
	for _, id := range ids {
		delete(s.ids, id)
	}
}

// Retain drops every selected id not in live.
func (s *Set) Retain(live []string) {
	keep := make(map[string]struct{}, len(live))
	for _, id := range live {
		keep[id] = struct{}{}
	}
	for id := range s.ids {
		if _, ok := keep[id]; !ok {
			delete(s.ids, id)
		}
	}
}

func (s *Set) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *Set) Len() int { return len(s.ids) }

func (s *Set) Active() bool { return s.active }

// IDs returns the selection in sorted order.
func (s *Set) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
