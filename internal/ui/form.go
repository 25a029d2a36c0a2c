package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"duelist/internal/task"
)

const (
	fieldText = iota
	fieldDeadline
	fieldDescription
	fieldPriority
	fieldCount
)

var formLabels = [fieldCount]string{
	"Task name",
	"Deadline",
	"Description",
	"Priority",
}

// formState is the add/edit dialog. editing is nil when adding.
type formState struct {
	editing *task.Task
	inputs  [fieldCount]textinput.Model
	index   int
	err     error
}

func newForm(editing *task.Task, width int) *formState {
	d := task.Draft{Priority: "2"}
	if editing != nil {
		d = task.DraftFrom(*editing)
	}
	values := [fieldCount]string{d.Text, d.Deadline, d.Description, d.Priority}
	placeholders := [fieldCount]string{
		"What needs doing?",
		task.InputLayout,
		fmt.Sprintf("optional, up to %d characters", task.MaxDescriptionLen),
		"1, 2, 3 or empty",
	}
	f := &formState{editing: editing}
	for i := range f.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 256
		ti.Width = formWidth(width)
		ti.SetValue(values[i])
		f.inputs[i] = ti
	}
	// The limit is checked on submit so the message can be shown.
	f.inputs[fieldDescription].CharLimit = 0
	f.inputs[fieldPriority].CharLimit = 1
	f.inputs[0].Focus()
	return f
}

func formWidth(width int) int {
	if width <= 0 {
		return 40
	}
	return max(20, width-20)
}

func (f *formState) title() string {
	if f.editing != nil {
		return "Edit task"
	}
	return "New task"
}

func (f *formState) draft() task.Draft {
	return task.Draft{
		Text:        f.inputs[fieldText].Value(),
		Deadline:    f.inputs[fieldDeadline].Value(),
		Description: f.inputs[fieldDescription].Value(),
		Priority:    f.inputs[fieldPriority].Value(),
	}
}

func (f *formState) focus(idx int) tea.Cmd {
	f.inputs[f.index].Blur()
	f.index = wrapIndex(idx, fieldCount)
	return f.inputs[f.index].Focus()
}

func (f *formState) last() bool {
	return f.index == fieldCount-1
}

func (f *formState) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.index], cmd = f.inputs[f.index].Update(msg)
	return cmd
}

func (f *formState) setWidth(width int) {
	for i := range f.inputs {
		f.inputs[i].Width = formWidth(width)
	}
}

func (m Model) renderForm() string {
	f := m.form
	var b strings.Builder
	b.WriteString(m.styles.title.Render(f.title()))
	b.WriteString("\n\n")
	for i, label := range formLabels {
		prefix := "  "
		if i == f.index {
			prefix = m.styles.cursor.Render("> ")
		}
		b.WriteString(prefix)
		b.WriteString(m.styles.label.Render(label))
		b.WriteString(f.inputs[i].View())
		if i == fieldDescription {
			n := len([]rune(f.inputs[i].Value()))
			counter := fmt.Sprintf(" %d/%d", n, task.MaxDescriptionLen)
			if n > task.MaxDescriptionLen {
				b.WriteString(m.styles.failure.Render(counter))
			} else {
				b.WriteString(m.styles.muted.Render(counter))
			}
		}
		b.WriteString("\n")
	}
	if f.err != nil {
		b.WriteString("\n")
		b.WriteString(m.styles.failure.Render(f.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.styles.muted.Render("tab/shift+tab move • enter next/save • esc cancel"))
	return m.styles.panel.Render(b.String())
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}
