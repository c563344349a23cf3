package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/crmterm/internal/theme"
)

// Layout splits the terminal into a header line, a content area and a
// status line, and places modals over the content area.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
// HeaderHeight and StatusBarHeight default to 1.
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

// ContentHeight returns the height available for the main content area,
// accounting for the header and status bar.
func (l Layout) ContentHeight() int {
	return max(l.Height-l.HeaderHeight-l.StatusBarHeight, 0)
}

// ModalSize is the size given to a modal: most of the content area, but
// never wider than reads comfortably.
func (l Layout) ModalSize() (int, int) {
	w := min(l.ContentWidth()*4/5, 100)
	h := l.ContentHeight() * 4 / 5
	return max(w, 20), max(h, 6)
}

// RenderHeader renders the title on the left and status on the right.
func (l Layout) RenderHeader(title, status string) string {
	return l.fillLine(theme.HeaderStyle, title, status)
}

// RenderStatusBar renders the bottom line with keyboard hints.
func (l Layout) RenderStatusBar(hints string) string {
	return l.fillLine(theme.StatusBarStyle, hints, "")
}

// RenderBanner renders a one-line message in place of the hints, in red
// when it reports a failure.
func (l Layout) RenderBanner(text string, isErr bool) string {
	fg := theme.ColorGreen
	if isErr {
		fg = theme.ColorRed
	}
	return l.fillLine(theme.StatusBarStyle.Bold(true).Foreground(fg), text, "")
}

// RenderOverlay centers modal in the content area.
func (l Layout) RenderOverlay(modal string) string {
	return lipgloss.Place(
		l.ContentWidth(),
		l.ContentHeight(),
		lipgloss.Center,
		lipgloss.Center,
		modal,
		lipgloss.WithWhitespaceChars(" "),
	)
}

// RenderWithFrame composes a full terminal view by vertically joining
// the header, content area, and status bar. The content is clipped to the
// content area so a tall view never pushes the status bar off screen.
func (l Layout) RenderWithFrame(header, content, statusBar string) string {
	content = lipgloss.NewStyle().
		MaxHeight(l.ContentHeight()).
		MaxWidth(l.ContentWidth()).
		Render(content)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		content,
		statusBar,
	)
}

// fillLine renders left and right aligned text on one full width line in
// style.
func (l Layout) fillLine(style lipgloss.Style, left, right string) string {
	leftRendered := style.Render(left)
	rightRendered := ""
	if right != "" {
		rightRendered = style.Render(right)
	}

	gap := max(l.Width-lipgloss.Width(leftRendered)-lipgloss.Width(rightRendered), 0)
	filler := lipgloss.NewStyle().
		Width(gap).
		Background(style.GetBackground()).
		Render("")

	line := lipgloss.JoinHorizontal(lipgloss.Top, leftRendered, filler, rightRendered)
	return lipgloss.NewStyle().MaxWidth(l.Width).Render(line)
}
