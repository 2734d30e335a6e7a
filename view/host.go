package view

import (
	"context"

	"github.com/sonnes/graphview/core"
)

// Server is the embedded per-session backend the panel's client talks to.
type Server interface {
	// Start binds the server. It may block on network setup.
	Start(ctx context.Context) error
	// Dispose stops the server. Must be idempotent.
	Dispose()
	// Port is the assigned port once started.
	Port() int
}

// ServerFactory builds an unstarted Server for a configuration.
type ServerFactory func(cfg core.GraphConfig) Server

// Column is a placement slot for a panel.
type Column int

// ColumnOne is the leftmost placement.
const ColumnOne Column = 1

// ShowOptions controls where a new panel appears.
type ShowOptions struct {
	Column        Column
	PreserveFocus bool
}

// PanelOptions are the capability flags requested for a panel.
type PanelOptions struct {
	EnableScripts           bool
	EnableCommandURIs       bool
	EnableFindWidget        bool
	RetainContextWhenHidden bool
	LocalResourceRoots      []string
}

// Panel is a UI surface hosting a rendered graph client.
type Panel interface {
	// SetHTML replaces the panel's markup.
	SetHTML(html string)
	// Reveal brings the panel to the foreground.
	Reveal()
	// OnDidDispose registers fn to run when the panel closes. The close
	// notification fires at most once.
	OnDidDispose(fn func())
	// Dispose closes the panel, firing its close notification.
	Dispose()
	// ResourceBaseURI is the base URI the panel resolves local resources
	// against.
	ResourceBaseURI() string
	// URL is where the panel can be reached.
	URL() string
}

// PanelHost creates panels.
type PanelHost interface {
	CreatePanel(viewType, title string, show ShowOptions, opts PanelOptions) (Panel, error)
	// ActiveColumn is the placement new panels should use.
	ActiveColumn() Column
	// ResourceRoot is the local resource root panels may load from.
	ResourceRoot() string
}

// Notifier surfaces messages to the user.
type Notifier interface {
	ShowErrorMessage(msg string)
}
