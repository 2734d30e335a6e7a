// Package html renders the daemon's index page: the open graph views, recent
// notifications and a form for opening a new view.
package html

import (
	"embed"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/sonnes/graphview/core"
	"github.com/sonnes/graphview/view"
)

//go:embed templates/*.html
var content embed.FS

// Notice is a user-visible message shown above the session list.
type Notice struct {
	Message string
	At      time.Time
}

// Renderer renders the index page.
type Renderer struct {
	tmpl *template.Template
}

// New creates an HTML Renderer from the embedded templates.
func New() *Renderer {
	tmpl := template.Must(
		template.New("index.html").
			Funcs(funcMap()).
			ParseFS(content, "templates/*.html"),
	)
	return &Renderer{tmpl: tmpl}
}

// indexData is the template data passed to index.html.
type indexData struct {
	Sessions []view.SessionInfo
	Notices  []Notice
}

// RenderIndex writes the index page to w. Notices are shown newest first.
func (r *Renderer) RenderIndex(w io.Writer, sessions []view.SessionInfo, notices []Notice) error {
	reversed := make([]Notice, len(notices))
	for i, n := range notices {
		reversed[len(notices)-1-i] = n
	}
	return r.tmpl.ExecuteTemplate(w, "index.html", indexData{Sessions: sessions, Notices: reversed})
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"relativeTime": core.RelativeTime,
		"upper":        strings.ToUpper,
		"formatTime": func(t time.Time) string {
			return t.Format("Jan 2, 2006 3:04 PM")
		},
	}
}
