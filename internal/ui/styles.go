package ui

import (
	"github.com/charmbracelet/lipgloss"

	"duelist/internal/prefs"
)

type styles struct {
	title     lipgloss.Style
	subtitle  lipgloss.Style
	muted     lipgloss.Style
	cursor    lipgloss.Style
	text      lipgloss.Style
	done      lipgloss.Style
	countdown lipgloss.Style
	expired   lipgloss.Style
	dueSoon   lipgloss.Style
	priority  [4]lipgloss.Style
	selected  lipgloss.Style
	success   lipgloss.Style
	failure   lipgloss.Style
	panel     lipgloss.Style
	label     lipgloss.Style
	warning   lipgloss.Style
}

func newStyles(theme prefs.Theme) styles {
	accent := lipgloss.Color("#059669")
	fg := lipgloss.Color("#1f2937")
	muted := lipgloss.Color("#6b7280")
	border := lipgloss.Color("#d1d5db")
	purple := lipgloss.Color("#7c3aed")
	if theme.Dark() {
		accent = lipgloss.Color("#34d399")
		fg = lipgloss.Color("#f3f4f6")
		muted = lipgloss.Color("#9ca3af")
		border = lipgloss.Color("#4b5563")
		purple = lipgloss.Color("#a78bfa")
	}
	red := lipgloss.Color("#ef4444")
	base := lipgloss.NewStyle().Foreground(fg)
	return styles{
		title:     lipgloss.NewStyle().Foreground(accent).Bold(true),
		subtitle:  lipgloss.NewStyle().Foreground(muted),
		muted:     lipgloss.NewStyle().Foreground(muted),
		cursor:    lipgloss.NewStyle().Foreground(accent).Bold(true),
		text:      base,
		done:      lipgloss.NewStyle().Foreground(muted).Strikethrough(true),
		countdown: lipgloss.NewStyle().Foreground(accent),
		expired:   lipgloss.NewStyle().Foreground(red).Bold(true),
		dueSoon:   lipgloss.NewStyle().Foreground(purple),
		priority: [4]lipgloss.Style{
			lipgloss.NewStyle().Foreground(muted),
			lipgloss.NewStyle().Foreground(red).Bold(true),
			lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b")),
			lipgloss.NewStyle().Foreground(lipgloss.Color("#3b82f6")),
		},
		selected: lipgloss.NewStyle().Foreground(accent).Bold(true),
		success:  lipgloss.NewStyle().Foreground(accent),
		failure:  lipgloss.NewStyle().Foreground(red),
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1),
		label:   lipgloss.NewStyle().Foreground(muted).Width(12),
		warning: lipgloss.NewStyle().Foreground(red).Bold(true),
	}
}

// priorityBadge renders P1..P3, or a muted P- for unranked tasks.
func (s styles) priorityBadge(p int) string {
	if p < 1 || p > 3 {
		return s.priority[0].Render("P-")
	}
	return s.priority[p].Render("P" + string(rune('0'+p)))
}
