// Package host implements a panel host whose panels are pages served by the
// local daemon and opened in a browser.
package host

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sonnes/graphview/view"
)

// maxNotifications bounds the notification history kept for the index page.
const maxNotifications = 20

// ErrEmptyTitle is returned by CreatePanel when no title is given.
var ErrEmptyTitle = errors.New("panel title is required")

// ErrResourceRoot is returned by CreatePanel when a panel asks for local
// resource roots the host does not serve.
var ErrResourceRoot = errors.New("resource root not served by this host")

// Options configures a Host.
type Options struct {
	// BaseURL is the externally reachable URL of the daemon, without a
	// trailing slash.
	BaseURL string
	// Resources holds the static client assets served under /resources/.
	Resources fs.FS
	// ResourceRoot names where Resources came from (a directory, or
	// "embedded").
	ResourceRoot string
	// Open launches a panel URL when it is revealed. Nil only logs the URL.
	Open   func(url string) error
	Logger *log.Logger
	Now    func() time.Time
}

// Notification is a user-visible message raised by the registry.
type Notification struct {
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Host creates and serves browser panels.
type Host struct {
	baseURL      string
	resources    fs.FS
	resourceRoot string
	open         func(url string) error
	logger       *log.Logger
	now          func() time.Time

	mu            sync.Mutex
	panels        map[string]*Panel
	active        view.Column
	notifications []Notification
}

// New creates a Host.
func New(opts Options) *Host {
	h := &Host{
		baseURL:      strings.TrimSuffix(opts.BaseURL, "/"),
		resources:    opts.Resources,
		resourceRoot: opts.ResourceRoot,
		open:         opts.Open,
		logger:       opts.Logger,
		now:          opts.Now,
		panels:       make(map[string]*Panel),
	}
	if h.resourceRoot == "" {
		h.resourceRoot = "embedded"
	}
	if h.logger == nil {
		h.logger = log.Default()
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h
}

// CreatePanel implements view.PanelHost.
func (h *Host) CreatePanel(viewType, title string, show view.ShowOptions, opts view.PanelOptions) (view.Panel, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrEmptyTitle
	}

	if len(opts.LocalResourceRoots) > 0 && !slices.Contains(opts.LocalResourceRoots, h.resourceRoot) {
		return nil, fmt.Errorf("%w: want one of %v, serving %s", ErrResourceRoot, opts.LocalResourceRoots, h.resourceRoot)
	}

	column := show.Column
	if column < view.ColumnOne {
		column = view.ColumnOne
	}

	p := &Panel{
		host:     h,
		handle:   uuid.NewString(),
		viewType: viewType,
		title:    title,
		column:   column,
		opts:     opts,
	}

	h.mu.Lock()
	h.panels[p.handle] = p
	h.mu.Unlock()

	h.logger.Debug("panel created", "handle", p.handle, "title", title, "column", int(column))
	return p, nil
}

// ActiveColumn implements view.PanelHost. It is the column of the most
// recently revealed panel.
func (h *Host) ActiveColumn() view.Column {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.active == 0 {
		return view.ColumnOne
	}
	return h.active
}

// ResourceRoot implements view.PanelHost.
func (h *Host) ResourceRoot() string {
	return h.resourceRoot
}

// ShowErrorMessage implements view.Notifier.
func (h *Host) ShowErrorMessage(msg string) {
	h.logger.Error(msg)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.notifications = append(h.notifications, Notification{Message: msg, At: h.now()})
	if n := len(h.notifications); n > maxNotifications {
		h.notifications = append([]Notification(nil), h.notifications[n-maxNotifications:]...)
	}
}

// Notifications returns the retained notifications, oldest first.
func (h *Host) Notifications() []Notification {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Notification(nil), h.notifications...)
}

// Panel returns the open panel with the given handle.
func (h *Host) Panel(handle string) (*Panel, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.panels[handle]
	return p, ok
}

func (h *Host) remove(handle string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.panels, handle)
}

func (h *Host) reveal(p *Panel) {
	h.mu.Lock()
	h.active = p.column
	h.mu.Unlock()

	url := p.URL()
	h.logger.Info("graph view ready", "title", p.title, "url", url)
	if h.open == nil {
		return
	}
	if err := h.open(url); err != nil {
		h.logger.Warn("open browser", "url", url, "error", err)
	}
}

// Register adds the panel and resource routes to r.
func (h *Host) Register(r chi.Router) {
	r.Get("/panels/{handle}", h.handleGetPanel)
	r.Delete("/panels/{handle}", h.handleDeletePanel)
	if h.resources != nil {
		r.Handle("/resources/*", http.StripPrefix("/resources/", http.FileServer(http.FS(h.resources))))
	}
}

func (h *Host) handleGetPanel(w http.ResponseWriter, req *http.Request) {
	p, ok := h.Panel(chi.URLParam(req, "handle"))
	if !ok {
		http.NotFound(w, req)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if !p.opts.EnableScripts {
		w.Header().Set("Content-Security-Policy", "script-src 'none'")
	}
	if _, err := w.Write([]byte(p.HTML())); err != nil {
		h.logger.Debug("write panel", "handle", p.handle, "error", err)
	}
}

func (h *Host) handleDeletePanel(w http.ResponseWriter, req *http.Request) {
	p, ok := h.Panel(chi.URLParam(req, "handle"))
	if !ok {
		http.NotFound(w, req)
		return
	}
	p.Dispose()
	w.WriteHeader(http.StatusNoContent)
}
