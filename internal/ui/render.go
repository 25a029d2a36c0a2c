package ui

import (
	"fmt"
	"strings"
	"time"

	"duelist/internal/config"
	"duelist/internal/task"
)

const deadlineDisplayLayout = "Mon 02 Jan 2006 15:04"

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(strings.Join(m.headerLines(), "\n"))
	b.WriteString("\n")

	if m.mode == modeForm && m.form != nil {
		b.WriteString(m.renderForm())
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(m.renderTaskList())
	b.WriteString("\n")
	b.WriteString(m.renderDetail())
	b.WriteString("\n\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.styles.muted.Render(renderHelp(m.cfg.Keys, m.sel.Active())))
	return b.String()
}

// headerLines are the lines above the first task row. Mouse hit testing
// relies on their count.
func (m Model) headerLines() []string {
	lines := []string{
		m.styles.title.Render("To-Do List"),
		m.styles.subtitle.Render("Manage your tasks with ease"),
		"",
		m.renderFilterBar(),
	}
	if m.sel.Active() && m.mode != modeForm {
		lines = append(lines, m.renderSelectionBar())
	}
	return append(lines, "")
}

func (m Model) renderFilterBar() string {
	return m.styles.muted.Render(fmt.Sprintf("Status: %s • Priority: %s • Theme: %s • %d tasks",
		statusLabel(m.status), m.priority, m.theme, m.list.Len()))
}

func (m Model) renderSelectionBar() string {
	k := m.cfg.Keys
	all := "select all"
	if m.sel.AllSelected(m.list.IDs()) {
		all = "clear all"
	}
	return m.styles.selected.Render(fmt.Sprintf("%d selected • %s %s • %s delete selected • %s exit selection",
		m.sel.Len(), k.SelectAll, all, k.DeleteSelected, k.Cancel))
}

func (m Model) renderTaskList() string {
	if m.loading && m.list.Len() == 0 {
		return m.styles.muted.Render("Loading...")
	}
	if m.list.Len() == 0 {
		return m.styles.muted.Render(fmt.Sprintf("No tasks yet. Press '%s' to add one.", m.cfg.Keys.Add))
	}
	if len(m.view) == 0 {
		return m.styles.muted.Render("No tasks match the current filters.")
	}
	var b strings.Builder
	for i, t := range m.view {
		b.WriteString(m.renderRow(i, t))
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (m Model) renderRow(i int, t task.Task) string {
	cursor := " "
	if i == m.cursor && m.mode == modeList {
		cursor = m.styles.cursor.Render(">")
	}

	var mark string
	switch {
	case m.sel.Active() && m.sel.Has(t.ID):
		mark = m.styles.selected.Render("(•)")
	case m.sel.Active():
		mark = "( )"
	case t.Completed:
		mark = m.styles.success.Render("[x]")
	default:
		mark = "[ ]"
	}

	var title string
	switch rowStateOf(t, m.now) {
	case rowDone:
		title = m.styles.done.Render(t.Text)
	case rowExpired:
		title = m.styles.expired.Render(t.Text)
	case rowDueSoon:
		title = m.styles.dueSoon.Render(t.Text)
	default:
		title = m.styles.text.Render(t.Text)
	}

	return strings.Join([]string{cursor, mark, title, m.styles.priorityBadge(t.Priority), m.renderCountdown(t)}, " ")
}

type rowState int

const (
	rowNormal rowState = iota
	rowDueSoon
	rowExpired
	rowDone
)

// rowStateOf picks the row colour. Completion wins over expiry, and expiry
// over due soon.
func rowStateOf(t task.Task, now time.Time) rowState {
	switch {
	case t.Completed:
		return rowDone
	case task.Expired(t.Deadline, now):
		return rowExpired
	case task.DueSoon(t.Deadline, now):
		return rowDueSoon
	default:
		return rowNormal
	}
}

func (m Model) renderCountdown(t task.Task) string {
	if t.Completed {
		return m.styles.muted.Render("completed")
	}
	left, ok := m.countdown[t.ID]
	if !ok {
		left = task.Remaining(t.Deadline, m.now)
	}
	switch rowStateOf(t, m.now) {
	case rowExpired:
		return m.styles.expired.Render(left)
	case rowDueSoon:
		return m.styles.dueSoon.Render("⏱ " + left)
	}
	return m.styles.countdown.Render("⏱ " + left)
}

func (m Model) renderDetail() string {
	t, ok := m.current()
	if !ok {
		return ""
	}
	deadline := "(none)"
	if !t.Deadline.IsZero() {
		deadline = t.Deadline.Local().Format(deadlineDisplayLayout)
	}
	priority := "unranked"
	if t.Priority != 0 {
		priority = fmt.Sprintf("%d", t.Priority)
	}
	rows := [][2]string{
		{"Task", t.Text},
		{"Status", humanDone(t.Completed)},
		{"Priority", priority},
		{"Deadline", deadline},
		{"Remaining", task.Remaining(t.Deadline, m.now)},
		{"Description", emptyPlaceholder(t.Description)},
	}
	var b strings.Builder
	for i, r := range rows {
		b.WriteString(m.styles.label.Render(r[0]))
		b.WriteString(r[1])
		if i < len(rows)-1 {
			b.WriteString("\n")
		}
	}
	return m.styles.panel.Render(b.String())
}

func (m Model) renderStatus() string {
	switch m.mode {
	case modeConfirmDelete:
		if m.pendingDel != nil {
			return m.styles.warning.Render(fmt.Sprintf("Delete \"%s\"? This cannot be undone. y/n", m.pendingDel.Text))
		}
	case modeConfirmBulk:
		return m.styles.warning.Render(fmt.Sprintf("Delete %d tasks? This cannot be undone. y/n", m.sel.Len()))
	}
	if m.notice == "" {
		return ""
	}
	if m.noticeErr {
		return m.styles.failure.Render(m.notice)
	}
	return m.styles.success.Render(m.notice)
}

func renderHelp(k config.Keymap, selecting bool) string {
	if selecting {
		return fmt.Sprintf("%s/%s move • space/%s select • %s select all • %s delete selected • %s exit • %s quit",
			k.Up, k.Down, k.SelectMode, k.SelectAll, k.DeleteSelected, k.Cancel, k.Quit)
	}
	return fmt.Sprintf("%s/%s move • %s add • %s edit • space toggle • %s delete • %s status • %s priority • %s select • hold click select • %s theme • %s reload • %s quit",
		k.Up, k.Down, k.Add, k.Edit, k.Delete, k.FilterStatus, k.FilterPriority, k.SelectMode, k.Theme, k.Reload, k.Quit)
}

func statusLabel(f task.StatusFilter) string {
	switch f {
	case task.StatusDone:
		return "done"
	case task.StatusNotDone:
		return "not done"
	default:
		return "all"
	}
}

func emptyPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return "(empty)"
	}
	return v
}

func humanDone(done bool) string {
	if done {
		return "done"
	}
	return "pending"
}
