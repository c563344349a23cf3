// Package review holds the confirm/edit/reject state for generated content
// before it reaches the user's outgoing mail or their pipeline. The gate
// itself never calls the backend: approving only hands content back.
package review

import (
	"errors"
	"strings"
)

// ErrEmptyContent is returned when opening a gate with nothing to review.
var ErrEmptyContent = errors.New("nothing to review: content is empty")

// Gate is the review state for one piece of generated text. The zero value
// is a closed gate.
type Gate struct {
	open     bool
	title    string
	original string
	current  string
	editing  bool
}

// Open stages content for review. Opening an already open gate replaces
// its content and discards pending edits.
func (g *Gate) Open(title, content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyContent
	}
	*g = Gate{
		open:     true,
		title:    title,
		original: content,
		current:  content,
	}
	return nil
}

// IsOpen reports whether content is staged for review.
func (g *Gate) IsOpen() bool { return g.open }

// Title returns the heading the gate was opened with.
func (g *Gate) Title() string { return g.title }

// Content returns the content as currently edited.
func (g *Gate) Content() string { return g.current }

// Original returns the content as generated.
func (g *Gate) Original() string { return g.original }

// Edited reports whether the content differs from what was generated.
func (g *Gate) Edited() bool { return g.current != g.original }

// Editing reports whether the gate is in edit mode rather than preview.
func (g *Gate) Editing() bool { return g.editing }

// ToggleEdit switches between preview and edit mode.
func (g *Gate) ToggleEdit() {
	if g.open {
		g.editing = !g.editing
	}
}

// SetContent records a local edit. It has no effect on a closed gate.
func (g *Gate) SetContent(content string) {
	if g.open {
		g.current = content
	}
}

// Approve returns the possibly edited content. The gate stays open; the
// caller closes it once it has acted on the content. ok is false when the
// gate is closed or the edit left nothing to approve.
func (g *Gate) Approve() (content string, ok bool) {
	if !g.open || strings.TrimSpace(g.current) == "" {
		return "", false
	}
	return g.current, true
}

// Reject discards the content and any edits and closes the gate.
func (g *Gate) Reject() {
	*g = Gate{}
}

// Close is Reject under the name callers use after a successful approve.
func (g *Gate) Close() {
	g.Reject()
}
