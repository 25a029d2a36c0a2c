package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"duelist/internal/board"
	"duelist/internal/selection"
	"duelist/internal/task"
)

type (
	loadedMsg struct {
		tasks []task.Task
		err   error
	}
	addedMsg struct {
		task task.Task
		err  error
	}
	editedMsg struct {
		id    string
		patch task.Patch
		err   error
	}
	toggledMsg struct {
		id        string
		completed bool
		err       error
	}
	deletedMsg struct {
		id  string
		err error
	}
	bulkDeletedMsg struct {
		requested int
		deleted   []string
		err       error
	}
	// tickMsg drives the countdown. Ticks from an older generation are
	// dropped and not re-armed.
	tickMsg struct {
		gen uint64
		at  time.Time
	}
	longPressMsg struct {
		token uint64
	}
	noticeExpiredMsg struct {
		seq uint64
	}
)

const tickInterval = time.Second

func tickCmd(gen uint64) tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg{gen: gen, at: t}
	})
}

func longPressCmd(token uint64) tea.Cmd {
	return tea.Tick(selection.LongPressDelay, func(time.Time) tea.Msg {
		return longPressMsg{token: token}
	})
}

func noticeCmd(seq uint64, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}

// call runs fn off the event loop with the request timeout applied.
func call(timeout time.Duration, fn func(ctx context.Context) tea.Msg) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return fn(ctx)
	}
}

func loadCmd(svc *board.Service, timeout time.Duration) tea.Cmd {
	return call(timeout, func(ctx context.Context) tea.Msg {
		tasks, err := svc.Load(ctx)
		return loadedMsg{tasks: tasks, err: err}
	})
}

func addCmd(svc *board.Service, timeout time.Duration, d task.Draft) tea.Cmd {
	return call(timeout, func(ctx context.Context) tea.Msg {
		t, err := svc.Add(ctx, d)
		return addedMsg{task: t, err: err}
	})
}

func editCmd(svc *board.Service, timeout time.Duration, id string, d task.Draft) tea.Cmd {
	return call(timeout, func(ctx context.Context) tea.Msg {
		p, err := svc.Edit(ctx, id, d)
		return editedMsg{id: id, patch: p, err: err}
	})
}

func toggleCmd(svc *board.Service, timeout time.Duration, id string, completed bool) tea.Cmd {
	return call(timeout, func(ctx context.Context) tea.Msg {
		err := svc.SetCompleted(ctx, id, completed)
		return toggledMsg{id: id, completed: completed, err: err}
	})
}

func deleteCmd(svc *board.Service, timeout time.Duration, id string) tea.Cmd {
	return call(timeout, func(ctx context.Context) tea.Msg {
		return deletedMsg{id: id, err: svc.Delete(ctx, id)}
	})
}

func bulkDeleteCmd(svc *board.Service, timeout time.Duration, ids []string) tea.Cmd {
	return call(timeout, func(ctx context.Context) tea.Msg {
		deleted, err := svc.DeleteMany(ctx, ids)
		return bulkDeletedMsg{requested: len(ids), deleted: deleted, err: err}
	})
}
