// Package render defines the interface for rendering graph view session
// listings into various output formats.
package render

import (
	"io"

	"github.com/sonnes/graphview/view"
)

// Renderer writes a session listing to the given writer in a specific format.
type Renderer interface {
	Render(w io.Writer, sessions []view.SessionInfo) error
}
