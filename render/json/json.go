// Package json renders session listings as JSON.
package json

import (
	"encoding/json"
	"io"

	"github.com/sonnes/graphview/view"
)

// Renderer renders a session listing to JSON.
type Renderer struct {
	// Indent controls pretty-printing. When true, output is indented.
	Indent bool
}

// New creates an indenting JSON Renderer.
func New() *Renderer {
	return &Renderer{Indent: true}
}

// Render writes sessions as a JSON array. An empty listing is written as [].
func (r *Renderer) Render(w io.Writer, sessions []view.SessionInfo) error {
	if sessions == nil {
		sessions = []view.SessionInfo{}
	}
	enc := json.NewEncoder(w)
	if r.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(sessions)
}
