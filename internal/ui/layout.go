package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/theme"
)

// Layout holds the terminal dimensions and the fixed bar heights around
// the content area.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with one-line header and status bars.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height left between the header and the
// status bar.
func (l Layout) ContentHeight() int {
	return max(l.Height-l.HeaderHeight-l.StatusBarHeight, 0)
}

// RenderHeader renders the title on the left and the reload state on the
// right.
func (l Layout) RenderHeader(title, syncStatus string) string {
	return l.bar(theme.HeaderStyle, title, syncStatus)
}

// RenderStatusBar renders the key hints.
func (l Layout) RenderStatusBar(hints string) string {
	return l.bar(theme.StatusBarStyle, hints, "")
}

// RenderErrorBar renders message in the error style. Esc in the list
// clears it.
func (l Layout) RenderErrorBar(message string) string {
	return l.bar(theme.ErrorBarStyle, message, "esc dismiss")
}

// bar fills one line of the layout width with style. The left text is
// cut to fit when the line overflows; the right text is kept.
func (l Layout) bar(style lipgloss.Style, left, right string) string {
	var rightRendered string
	if right != "" {
		rightRendered = style.Render(right)
	}
	room := max(l.Width-lipgloss.Width(rightRendered), 0)
	leftRendered := style.MaxWidth(room).Render(left)

	gap := max(room-lipgloss.Width(leftRendered), 0)
	filler := lipgloss.NewStyle().
		Width(gap).
		Background(style.GetBackground()).
		Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, leftRendered, filler, rightRendered)
}

// RenderWithFrame stacks the header, content area and status bar.
func (l Layout) RenderWithFrame(header, content, statusBar string) string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		content,
		statusBar,
	)
}
