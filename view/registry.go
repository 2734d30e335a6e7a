// Package view keeps at most one graph view session per graph identity. A
// session pairs an embedded server with the panel displaying it; closing the
// panel disposes the server and forgets the session.
package view

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sonnes/graphview/core"
	"golang.org/x/sync/singleflight"
)

// ViewType identifies graph explorer panels to the host.
const ViewType = "graphview.GraphExplorer"

// ErrSessionNotFound is returned when no live session has the requested id.
var ErrSessionNotFound = errors.New("session not found")

// State is a session's lifecycle stage.
type State int

const (
	StateStarting State = iota
	StateActive
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateActive:
		return "active"
	case StateDisposed:
		return "disposed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type session struct {
	id       int
	identity core.Identity
	cfg      core.GraphConfig
	server   Server
	state    State
	openedAt time.Time
}

// SessionInfo is a read-only snapshot of a session.
type SessionInfo struct {
	ID       int           `json:"id"`
	Identity core.Identity `json:"identity"`
	Title    string        `json:"title"`
	Port     int           `json:"port"`
	State    string        `json:"state"`
	OpenedAt time.Time     `json:"opened_at"`
	PanelURL string        `json:"panel_url,omitempty"`
}

// Options configures a Registry. Host, Servers and Resources are required.
type Options struct {
	Host      PanelHost
	Servers   ServerFactory
	Resources fs.FS
	// Notifier receives user-visible errors from Open. Defaults to Host when
	// it implements Notifier.
	Notifier Notifier
	Logger   *log.Logger
	// Namespace prefixes metric names. Defaults to "graphview".
	Namespace string
	Now       func() time.Time
}

// Registry owns every live session and panel binding.
type Registry struct {
	host      PanelHost
	newServer ServerFactory
	content   *ContentRenderer
	notifier  Notifier
	logger    *log.Logger
	metrics   *metrics
	now       func() time.Time

	flight singleflight.Group

	mu         sync.Mutex
	lastID     int
	sessions   map[int]*session
	byIdentity map[core.Identity]int
	panels     map[int]Panel
}

// NewRegistry creates an empty Registry.
func NewRegistry(opts Options) *Registry {
	r := &Registry{
		host:       opts.Host,
		newServer:  opts.Servers,
		notifier:   opts.Notifier,
		logger:     opts.Logger,
		now:        opts.Now,
		sessions:   make(map[int]*session),
		byIdentity: make(map[core.Identity]int),
		panels:     make(map[int]Panel),
	}
	if r.notifier == nil {
		if n, ok := opts.Host.(Notifier); ok {
			r.notifier = n
		}
	}
	if r.logger == nil {
		r.logger = log.Default()
	}
	if r.now == nil {
		r.now = time.Now
	}
	ns := opts.Namespace
	if ns == "" {
		ns = "graphview"
	}
	r.metrics = newMetrics(ns)
	r.content = NewContentRenderer(r, opts.Resources)
	return r
}

// Metrics exposes the registry's session metrics.
func (r *Registry) Metrics() prometheus.Gatherer {
	return r.metrics.registry
}

// Open shows a graph view for cfg and reports any failure through the
// notifier instead of returning it.
func (r *Registry) Open(ctx context.Context, cfg core.GraphConfig) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("open graph view panicked", "panic", p)
			r.notify(fmt.Sprintf("Unable to open graph view: %v", p))
		}
	}()

	if _, err := r.RequestView(ctx, cfg); err != nil {
		r.logger.Error("open graph view", "config", cfg.Redacted(), "error", err)
		r.notify(err.Error())
	}
}

func (r *Registry) notify(msg string) {
	if r.notifier != nil {
		r.notifier.ShowErrorMessage(msg)
	}
}

// RequestView reveals the panel of the session matching cfg's identity, or
// starts a new server and panel for it. Concurrent requests for the same
// identity share a single creation.
func (r *Registry) RequestView(ctx context.Context, cfg core.GraphConfig) (SessionInfo, error) {
	if err := cfg.Validate(); err != nil {
		return SessionInfo{}, err
	}

	// Joined callers share this call, so one caller going away must not
	// fail the others.
	shared := context.WithoutCancel(ctx)
	v, err, _ := r.flight.Do(cfg.Identity().Key(), func() (any, error) {
		return r.requestView(shared, cfg)
	})
	if err != nil {
		return SessionInfo{}, err
	}
	return v.(SessionInfo), nil
}

func (r *Registry) requestView(ctx context.Context, cfg core.GraphConfig) (SessionInfo, error) {
	identity := cfg.Identity()

	r.mu.Lock()
	if s, p, ok := r.lookup(identity); ok {
		info := r.infoLocked(s)
		r.mu.Unlock()

		p.Reveal()
		r.metrics.revealed.Inc()
		r.logger.Debug("revealed existing panel", "id", s.id, "graph", identity.String())
		return info, nil
	}

	// The id is consumed even if the server fails to start.
	r.lastID++
	id := r.lastID
	r.mu.Unlock()

	s := &session{
		id:       id,
		identity: identity,
		cfg:      cfg,
		server:   r.newServer(cfg),
		state:    StateStarting,
	}

	if err := s.server.Start(ctx); err != nil {
		s.server.Dispose()
		r.metrics.startFailures.Inc()
		return SessionInfo{}, fmt.Errorf("start graph server for %s: %w", identity, err)
	}

	r.mu.Lock()
	s.state = StateActive
	s.openedAt = r.now()
	r.sessions[id] = s
	r.byIdentity[identity] = id
	r.mu.Unlock()

	r.metrics.opened.Inc()
	r.metrics.active.Inc()
	r.logger.Info("session opened", "id", id, "graph", identity.String(), "port", s.server.Port())

	return r.attachPanel(s)
}

// lookup returns the session for identity and its bound panel. A session is
// only visible to lookup once its panel is bound, since creation for one
// identity never runs twice at once. Must be called with r.mu held.
func (r *Registry) lookup(identity core.Identity) (*session, Panel, bool) {
	id, ok := r.byIdentity[identity]
	if !ok {
		return nil, nil, false
	}
	s, ok := r.sessions[id]
	if !ok {
		return nil, nil, false
	}
	p, ok := r.panels[id]
	return s, p, ok
}

// attachPanel creates, renders and binds a panel for a freshly started
// session. On failure the session is disposed so nothing stays
// half-registered.
func (r *Registry) attachPanel(s *session) (SessionInfo, error) {
	show := ShowOptions{Column: r.host.ActiveColumn(), PreserveFocus: true}
	opts := PanelOptions{
		EnableScripts:           true,
		EnableCommandURIs:       true,
		EnableFindWidget:        true,
		RetainContextWhenHidden: true,
		LocalResourceRoots:      []string{r.host.ResourceRoot()},
	}

	panel, err := r.host.CreatePanel(ViewType, s.cfg.Title(), show, opts)
	if err != nil {
		r.dispose(s.id)
		return SessionInfo{}, fmt.Errorf("create panel: %w", err)
	}

	html, err := r.content.Render(s.id, panel.ResourceBaseURI())
	if err != nil {
		panel.Dispose()
		r.dispose(s.id)
		return SessionInfo{}, fmt.Errorf("render panel content: %w", err)
	}
	panel.SetHTML(html)

	id := s.id
	panel.OnDidDispose(func() { r.dispose(id) })

	r.mu.Lock()
	if s.state == StateDisposed {
		r.mu.Unlock()
		panel.Dispose()
		return SessionInfo{}, fmt.Errorf("session %d: %w", id, ErrNoLongerAvailable)
	}
	r.panels[id] = panel
	info := r.infoLocked(s)
	r.mu.Unlock()

	panel.Reveal()
	return info, nil
}

// dispose stops the session's server, then removes the session and its panel
// binding. Calling it for an unknown or already disposed id does nothing.
func (r *Registry) dispose(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok || s.state == StateDisposed {
		return
	}
	s.state = StateDisposed
	s.server.Dispose()

	delete(r.sessions, id)
	delete(r.byIdentity, s.identity)
	delete(r.panels, id)

	r.metrics.closed.Inc()
	r.metrics.active.Dec()
	r.logger.Info("session closed", "id", id, "graph", s.identity.String())
}

// FindServerByID returns the live server for id.
func (r *Registry) FindServerByID(id int) (Server, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok || s.state != StateActive {
		return nil, false
	}
	return s.server, true
}

// Sessions returns a snapshot of live sessions ordered by id.
func (r *Registry) Sessions() []SessionInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]SessionInfo, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, r.infoLocked(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Registry) infoLocked(s *session) SessionInfo {
	info := SessionInfo{
		ID:       s.id,
		Identity: s.identity,
		Title:    s.cfg.Title(),
		Port:     s.server.Port(),
		State:    s.state.String(),
		OpenedAt: s.openedAt,
	}
	if p, ok := r.panels[s.id]; ok {
		info.PanelURL = p.URL()
	}
	return info
}

// CloseView closes the panel bound to id, which disposes its session.
func (r *Registry) CloseView(id int) error {
	r.mu.Lock()
	p, bound := r.panels[id]
	_, live := r.sessions[id]
	r.mu.Unlock()

	if !live {
		return fmt.Errorf("session %d: %w", id, ErrSessionNotFound)
	}
	if bound {
		p.Dispose()
	}
	r.dispose(id)
	return nil
}

// Close disposes every session. Used on shutdown.
func (r *Registry) Close() {
	r.mu.Lock()
	ids := make([]int, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	for _, id := range ids {
		if err := r.CloseView(id); err != nil && !errors.Is(err, ErrSessionNotFound) {
			r.logger.Warn("close session", "id", id, "error", err)
		}
	}
}
