// Package terminal renders session listings as ANSI-colored cards.
package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
	"github.com/sonnes/graphview/core"
	"github.com/sonnes/graphview/view"
)

const defaultWidth = 100

// Renderer pretty-prints sessions as cards to the terminal.
type Renderer struct {
	// Width overrides terminal width detection. Zero means auto-detect.
	Width int
}

// New creates a terminal Renderer.
func New() *Renderer {
	return &Renderer{}
}

// Render writes one card per session to w.
func (r *Renderer) Render(w io.Writer, sessions []view.SessionInfo) error {
	width := r.termWidth()

	if len(sessions) == 0 {
		fmt.Fprintln(w, styleMeta.Render("No open graph views."))
		return nil
	}

	for i, s := range sessions {
		if i > 0 {
			writeSeparator(w, width)
		}
		writeSession(w, s, width)
	}
	fmt.Fprintln(w)
	return nil
}

func (r *Renderer) termWidth() int {
	if r.Width > 0 {
		return r.Width
	}
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		return w
	}
	return defaultWidth
}

// writeSession renders a session card: id, title and state, then identity,
// then port, age and panel link.
func writeSession(w io.Writer, s view.SessionInfo, width int) {
	contentWidth := max(width-4, 40)

	fmt.Fprintln(w, fmt.Sprintf("#%d ", s.ID)+styleTitle.Render(truncate(s.Title, contentWidth/2))+"  "+stateBadge(s.State))
	fmt.Fprintln(w, "  "+styleMeta.Render(truncate(s.Identity.Endpoint+"  "+s.Identity.Database+"/"+s.Identity.Graph, contentWidth)))

	var parts []string
	if s.Port > 0 {
		parts = append(parts, fmt.Sprintf("port %d", s.Port))
	}
	if !s.OpenedAt.IsZero() {
		parts = append(parts, "opened "+core.RelativeTime(s.OpenedAt))
	}
	if len(parts) > 0 {
		fmt.Fprintln(w, "  "+styleMeta.Render(strings.Join(parts, "  ")))
	}
	if s.PanelURL != "" {
		fmt.Fprintln(w, "  "+styleLink.Render(s.PanelURL))
	}
}

// writeSeparator renders a horizontal rule.
func writeSeparator(w io.Writer, width int) {
	n := min(width, 72)
	fmt.Fprintln(w, styleSeparator.Render(strings.Repeat("─", n)))
}

func stateBadge(state string) string {
	label := strings.ToUpper(state)
	switch state {
	case view.StateActive.String():
		return styleActiveBadge.Render(label)
	case view.StateStarting.String():
		return styleStartingBadge.Render(label)
	default:
		return styleInactiveBadge.Render(label)
	}
}

// truncate shortens text to maxWidth, appending "..." if needed.
func truncate(s string, maxWidth int) string {
	if maxWidth < 4 {
		maxWidth = 4
	}
	s = strings.TrimSpace(s)
	if lipgloss.Width(s) <= maxWidth {
		return s
	}

	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+3 > maxWidth {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
