package ui

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"

	"duelist/internal/board"
	"duelist/internal/config"
	"duelist/internal/prefs"
	"duelist/internal/selection"
	"duelist/internal/task"
)

type mode int

const (
	modeList mode = iota
	modeForm
	modeConfirmDelete
	modeConfirmBulk
)

// Options wires the program to its collaborators.
type Options struct {
	Service   *board.Service
	Config    config.Config
	PrefsPath string
	Theme     prefs.Theme
	Logger    *log.Entry
	// Clock defaults to time.Now.
	Clock func() time.Time
}

type Model struct {
	svc       *board.Service
	cfg       config.Config
	log       *log.Entry
	prefsPath string
	clock     func() time.Time

	list  *board.List
	view  []task.Task
	sel   *selection.Set
	press selection.Press

	status   task.StatusFilter
	priority task.PriorityFilter

	now       time.Time
	countdown map[string]string
	tickGen   uint64

	cursor     int
	cursorID   string
	mode       mode
	form       *formState
	pendingDel *task.Task

	theme  prefs.Theme
	styles styles

	notice    string
	noticeErr bool
	noticeSeq uint64
	loading   bool

	width int
}

func New(opts Options) Model {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		l := log.New()
		l.SetOutput(io.Discard)
		logger = log.NewEntry(l)
	}
	theme := opts.Theme
	if theme == "" {
		theme = prefs.ThemeLight
	}
	return Model{
		svc:       opts.Service,
		cfg:       opts.Config,
		log:       logger,
		prefsPath: opts.PrefsPath,
		clock:     clock,
		list:      board.NewList(nil),
		sel:       selection.New(),
		status:    opts.Config.StatusFilter(),
		priority:  opts.Config.PriorityFilter(),
		now:       clock(),
		countdown: map[string]string{},
		theme:     theme,
		styles:    newStyles(theme),
		notice:    "Loading tasks...",
		loading:   true,
		mode:      modeList,
	}
}

func Run(opts Options) error {
	program := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(loadCmd(m.svc, m.cfg.Timeout()), tickCmd(m.tickGen))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.mode {
		case modeForm:
			return m.updateFormMode(msg)
		case modeConfirmDelete, modeConfirmBulk:
			return m.updateConfirm(msg.String())
		}
		return m.updateListMode(msg.String())
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if m.form != nil {
			m.form.setWidth(msg.Width)
		}
	case tickMsg:
		if msg.gen != m.tickGen {
			return m, nil
		}
		m.now = msg.at
		m.refresh()
		return m, tickCmd(m.tickGen)
	case longPressMsg:
		if id, ok := m.press.Fire(msg.token); ok && m.mode == modeList {
			m.sel.Enter(id)
			m.cursorID = id
			m.refresh()
		}
	case noticeExpiredMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
			m.noticeErr = false
		}
	default:
		return m.applyResult(msg)
	}
	return m, nil
}

// applyResult folds a finished store call into local state. Nothing changes
// locally when the call failed.
func (m Model) applyResult(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			return m, m.notify("Failed to load tasks.", true)
		}
		m.list.Replace(msg.tasks)
		m.sel.Retain(m.list.IDs())
		// A new list restarts the countdown; the old tick chain stops.
		m.tickGen++
		m.now = m.clock()
		m.refresh()
		return m, tea.Batch(m.notify("Tasks loaded!", false), tickCmd(m.tickGen))
	case addedMsg:
		if msg.err != nil {
			return m, m.notify(failure("Failed to add task", msg.err), true)
		}
		m.list.Append(msg.task)
		m.cursorID = msg.task.ID
		m.refresh()
		return m, m.notify("Task added!", false)
	case editedMsg:
		if msg.err != nil {
			return m, m.notify(failure("Failed to update task", msg.err), true)
		}
		// Merge into the current entry; a toggle confirmed while the form
		// was open must survive.
		if t, ok := m.list.Get(msg.id); ok {
			m.list.Put(msg.patch.Apply(t))
		}
		m.refresh()
		return m, m.notify("Task updated!", false)
	case toggledMsg:
		if msg.err != nil {
			return m, m.notify(failure("Failed to update status", msg.err), true)
		}
		if t, ok := m.list.Get(msg.id); ok {
			t.Completed = msg.completed
			m.list.Put(t)
		}
		m.refresh()
		return m, m.notify("Task status updated!", false)
	case deletedMsg:
		if msg.err != nil {
			return m, m.notify(failure("Failed to delete task", msg.err), true)
		}
		m.list.Remove(msg.id)
		m.sel.Remove(msg.id)
		m.refresh()
		return m, m.notify("Task deleted!", false)
	case bulkDeletedMsg:
		m.list.Remove(msg.deleted...)
		if msg.err != nil {
			m.sel.Remove(msg.deleted...)
			m.refresh()
			text := fmt.Sprintf("Deleted %d of %d tasks: %v", len(msg.deleted), msg.requested, firstErr(msg.err))
			return m, m.notify(text, true)
		}
		m.sel.Clear()
		m.refresh()
		return m, m.notify(fmt.Sprintf("%d selected tasks deleted!", len(msg.deleted)), false)
	}
	return m, nil
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	k := m.cfg.Keys
	switch key {
	case "ctrl+c", k.Quit:
		return m.quit()
	case k.Down, "down":
		m.move(1)
	case k.Up, "up":
		m.move(-1)
	case k.Add:
		m.form = newForm(nil, m.width)
		m.mode = modeForm
		return m, textinput.Blink
	case k.Edit:
		t, ok := m.current()
		if !ok {
			return m, m.notify("No task to edit", true)
		}
		m.form = newForm(&t, m.width)
		m.mode = modeForm
		return m, textinput.Blink
	case k.Toggle:
		t, ok := m.current()
		if !ok {
			return m, nil
		}
		if m.sel.Active() {
			m.sel.Toggle(t.ID)
			return m, nil
		}
		return m, toggleCmd(m.svc, m.cfg.Timeout(), t.ID, !t.Completed)
	case k.Delete:
		t, ok := m.current()
		if !ok {
			return m, nil
		}
		m.pendingDel = &t
		m.mode = modeConfirmDelete
	case k.Reload:
		m.loading = true
		m.notice = "Loading tasks..."
		m.noticeErr = false
		return m, loadCmd(m.svc, m.cfg.Timeout())
	case k.FilterStatus:
		m.status = m.status.Next()
		m.refresh()
	case k.FilterPriority:
		m.priority = m.priority.Next()
		m.refresh()
	case k.Theme:
		return m.toggleTheme()
	case k.SelectMode:
		t, ok := m.current()
		if !ok {
			return m, nil
		}
		if m.sel.Active() {
			m.sel.Toggle(t.ID)
		} else {
			m.sel.Enter(t.ID)
		}
	case k.SelectAll:
		if m.sel.Active() {
			m.sel.ToggleAll(m.list.IDs())
		}
	case k.DeleteSelected:
		if !m.sel.Active() {
			return m, nil
		}
		if m.sel.Len() == 0 {
			return m, m.notify("No tasks selected", false)
		}
		m.mode = modeConfirmBulk
	case k.Cancel, "esc":
		if m.sel.Active() {
			m.sel.Clear()
		}
	}
	return m, nil
}

func (m Model) updateFormMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.form
	switch msg.String() {
	case m.cfg.Keys.Cancel, "esc":
		m.form = nil
		m.mode = modeList
		return m, m.notify("Cancelled", false)
	case "tab", "down":
		return m, f.focus(f.index + 1)
	case "shift+tab", "up":
		return m, f.focus(f.index - 1)
	case "ctrl+s":
		return m.submitForm()
	case m.cfg.Keys.Confirm, "enter":
		if !f.last() {
			return m, f.focus(f.index + 1)
		}
		return m.submitForm()
	default:
		return m, f.update(msg)
	}
}

// submitForm validates in the form and only then issues the store call.
func (m Model) submitForm() (tea.Model, tea.Cmd) {
	f := m.form
	d := f.draft()
	if err := d.Validate(); err != nil {
		f.err = err
		return m, f.focus(fieldFor(err))
	}
	m.form = nil
	m.mode = modeList
	m.notice = "Saving..."
	m.noticeErr = false
	if f.editing != nil {
		return m, editCmd(m.svc, m.cfg.Timeout(), f.editing.ID, d)
	}
	return m, addCmd(m.svc, m.cfg.Timeout(), d)
}

func fieldFor(err error) int {
	switch {
	case errors.Is(err, task.ErrDeadlineRequired), errors.Is(err, task.ErrDeadlineInvalid):
		return fieldDeadline
	case errors.Is(err, task.ErrDescriptionTooLong):
		return fieldDescription
	case errors.Is(err, task.ErrPriorityInvalid):
		return fieldPriority
	default:
		return fieldText
	}
}

func (m Model) updateConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "y", "Y":
		current := m.mode
		m.mode = modeList
		if current == modeConfirmBulk {
			ids := m.sel.IDs()
			return m, bulkDeleteCmd(m.svc, m.cfg.Timeout(), ids)
		}
		if m.pendingDel == nil {
			return m, nil
		}
		id := m.pendingDel.ID
		m.pendingDel = nil
		return m, deleteCmd(m.svc, m.cfg.Timeout(), id)
	case "n", "N", "esc", "ctrl+c":
		m.mode = modeList
		m.pendingDel = nil
		return m, m.notify("Delete cancelled", false)
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.mode != modeList {
		return m, nil
	}
	row := m.rowAt(msg.Y)
	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.move(-1)
		case tea.MouseButtonWheelDown:
			m.move(1)
		case tea.MouseButtonLeft:
			if row < 0 {
				return m, nil
			}
			m.cursor = row
			m.cursorID = m.view[row].ID
			return m, longPressCmd(m.press.Begin(m.cursorID))
		}
	case tea.MouseActionRelease:
		// A release before the long-press delay is a click.
		if id, clicked := m.press.Cancel(); clicked && m.sel.Active() {
			m.sel.Toggle(id)
		}
	case tea.MouseActionMotion:
		if m.press.Held() && (row < 0 || m.view[row].ID != m.press.Target()) {
			m.press.Cancel()
		}
	}
	return m, nil
}

func (m Model) toggleTheme() (tea.Model, tea.Cmd) {
	m.theme = m.theme.Toggle()
	m.styles = newStyles(m.theme)
	if m.prefsPath == "" {
		return m, nil
	}
	if err := prefs.Save(m.prefsPath, m.theme); err != nil {
		m.log.WithError(err).Warn("save theme")
		return m, m.notify("Could not save theme", true)
	}
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.tickGen++
	m.press.Cancel()
	return m, tea.Quit
}

// refresh recomputes the derived list and countdowns and keeps the cursor on
// the same task where possible.
func (m *Model) refresh() {
	all := m.list.All()
	m.view = task.View(all, m.status, m.priority, m.now)
	m.countdown = task.Countdowns(all, m.now)
	m.cursor = clampCursor(m.cursor, len(m.view))
	for i, t := range m.view {
		if t.ID == m.cursorID {
			m.cursor = i
			break
		}
	}
	if len(m.view) > 0 {
		m.cursorID = m.view[m.cursor].ID
	} else {
		m.cursorID = ""
	}
}

func (m *Model) move(delta int) {
	if len(m.view) == 0 {
		return
	}
	m.cursor = clampCursor(m.cursor+delta, len(m.view))
	m.cursorID = m.view[m.cursor].ID
}

func (m *Model) notify(text string, isErr bool) tea.Cmd {
	m.noticeSeq++
	m.notice = text
	m.noticeErr = isErr
	return noticeCmd(m.noticeSeq, m.cfg.NotifyFor())
}

func (m Model) current() (task.Task, bool) {
	if len(m.view) == 0 {
		return task.Task{}, false
	}
	return m.view[clampCursor(m.cursor, len(m.view))], true
}

func (m Model) rowAt(y int) int {
	idx := y - len(m.headerLines())
	if idx < 0 || idx >= len(m.view) {
		return -1
	}
	return idx
}

func failure(prefix string, err error) string {
	return fmt.Sprintf("%s: %v", prefix, firstErr(err))
}

// firstErr unwraps a joined error to its first member for the status line.
func firstErr(err error) error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		if errs := joined.Unwrap(); len(errs) > 0 {
			return errs[0]
		}
	}
	return err
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
