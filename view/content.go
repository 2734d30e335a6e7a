package view

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
)

// ErrNoLongerAvailable is returned when rendering content for a session that
// has already been disposed.
var ErrNoLongerAvailable = errors.New("this resource is no longer available")

// Template placeholders replaced by Substitute.
const (
	PortPlaceholder    = "$CLIENTPORT"
	BaseURIPlaceholder = "$BASEURI"
)

// DefaultTemplatePath is the graph client template inside the resources FS.
const DefaultTemplatePath = "graphClient/graphClient.html"

// ServerProvider resolves a session id to its live server.
type ServerProvider interface {
	FindServerByID(id int) (Server, bool)
}

// ContentRenderer produces the initial panel markup for a session.
type ContentRenderer struct {
	servers      ServerProvider
	resources    fs.FS
	templatePath string
}

// NewContentRenderer creates a renderer reading the graph client template
// from resources.
func NewContentRenderer(servers ServerProvider, resources fs.FS) *ContentRenderer {
	return &ContentRenderer{
		servers:      servers,
		resources:    resources,
		templatePath: DefaultTemplatePath,
	}
}

// Render returns the graph client page for session id with resources
// resolved against baseURI.
func (c *ContentRenderer) Render(id int, baseURI string) (string, error) {
	srv, ok := c.servers.FindServerByID(id)
	if !ok {
		return "", fmt.Errorf("session %d: %w", id, ErrNoLongerAvailable)
	}

	tmpl, err := fs.ReadFile(c.resources, c.templatePath)
	if err != nil {
		return "", fmt.Errorf("read template %s: %w", c.templatePath, err)
	}
	return Substitute(string(tmpl), srv.Port(), baseURI), nil
}

// Substitute replaces every port and base URI placeholder in tmpl.
func Substitute(tmpl string, port int, baseURI string) string {
	out := strings.ReplaceAll(tmpl, PortPlaceholder, strconv.Itoa(port))
	return strings.ReplaceAll(out, BaseURIPlaceholder, baseURI)
}
