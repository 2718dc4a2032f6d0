package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/callsheet/internal/theme"
)

// Layout splits the terminal into a header line, the content area and a
// status bar line.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
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

// ContentHeight returns the height left between header and status bar.
func (l Layout) ContentHeight() int {
	h := l.Height - l.HeaderHeight - l.StatusBarHeight
	if h < 0 {
		return 0
	}
	return h
}

// RenderHeader renders the title on the left and info, usually the data
// file, on the right. Info is cut from the left when it does not fit.
func (l Layout) RenderHeader(title, info string) string {
	titleRendered := theme.HeaderStyle.Render(title)

	room := l.Width - lipgloss.Width(titleRendered) - 2
	if r := []rune(info); room > 1 && len(r) > room {
		info = "…" + string(r[len(r)-room+1:])
	}
	infoRendered := theme.HeaderStyle.Bold(false).Render(info)

	gap := l.Width - lipgloss.Width(titleRendered) - lipgloss.Width(infoRendered)
	return lipgloss.JoinHorizontal(lipgloss.Top, titleRendered, fill(theme.HeaderStyle, gap), infoRendered)
}

// RenderStatusBar renders the bottom bar with keyboard hints or a message.
func (l Layout) RenderStatusBar(text string) string {
	rendered := theme.StatusBarStyle.Render(text)
	gap := l.Width - lipgloss.Width(rendered)
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered, fill(theme.StatusBarStyle, gap))
}

// RenderWithFrame stacks header, content and status bar.
func (l Layout) RenderWithFrame(header, content, statusBar string) string {
	content = lipgloss.NewStyle().Height(l.ContentHeight()).MaxHeight(l.ContentHeight()).Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

func fill(style lipgloss.Style, width int) string {
	if width <= 0 {
		return ""
	}
	return lipgloss.NewStyle().
		Width(width).
		Background(style.GetBackground()).
		Render("")
}
