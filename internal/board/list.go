// Package board owns the client-side task list and applies store results to
// it. The list only changes after the store confirms a write.
package board

import (
	"slices"

	"duelist/internal/task"
)

// List is the in-memory copy of the task collection, in load order.
type List struct {
	tasks []task.Task
}

func NewList(tasks []task.Task) *List {
	l := &List{}
	l.Replace(tasks)
	return l
}

// Replace swaps the whole list, as after a full reload.
func (l *List) Replace(tasks []task.Task) {
	l.tasks = slices.Clone(tasks)
}

func (l *List) Append(t task.Task) {
	l.tasks = append(l.tasks, t)
}

// Put replaces the task with the same id. It reports whether it was found.
func (l *List) Put(t task.Task) bool {
	for i := range l.tasks {
		if l.tasks[i].ID == t.ID {
			l.tasks[i] = t
			return true
		}
	}
	return false
}

// Remove drops every task whose id is listed.
func (l *List) Remove(ids ...string) {
	if len(ids) == 0 {
		return
	}
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	l.tasks = slices.DeleteFunc(l.tasks, func(t task.Task) bool {
		_, ok := drop[t.ID]
		return ok
	})
}

func (l *List) Get(id string) (task.Task, bool) {
	for _, t := range l.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return task.Task{}, false
}

// All returns a copy of the tasks.
func (l *List) All() []task.Task {
	return slices.Clone(l.tasks)
}

func (l *List) IDs() []string {
	out := make([]string, 0, len(l.tasks))
	for _, t := range l.tasks {
		out = append(out, t.ID)
	}
	return out
}

func (l *List) Len() int { return len(l.tasks) }
