// Package control exposes the daemon's HTTP surface: the JSON API used by the
// CLI, the index page, metrics, and the panel host's routes.
package control

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sonnes/graphview/core"
	"github.com/sonnes/graphview/host"
	htmlrender "github.com/sonnes/graphview/render/html"
	"github.com/sonnes/graphview/view"
)

// Registry is the session registry as seen by the control API.
type Registry interface {
	RequestView(ctx context.Context, cfg core.GraphConfig) (view.SessionInfo, error)
	Open(ctx context.Context, cfg core.GraphConfig)
	Sessions() []view.SessionInfo
	CloseView(id int) error
	Metrics() prometheus.Gatherer
}

// PanelHost is the part of the panel host the control API mounts and reads.
type PanelHost interface {
	Register(r chi.Router)
	Notifications() []host.Notification
}

// Handler serves the control API.
type Handler struct {
	registry Registry
	host     PanelHost
	index    *htmlrender.Renderer
	logger   *log.Logger
}

// NewHandler creates a Handler. A nil logger uses the default logger.
func NewHandler(registry Registry, h PanelHost, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{
		registry: registry,
		host:     h,
		index:    htmlrender.New(),
		logger:   logger,
	}
}

// errorResponse is the JSON body of every non-2xx API response.
type errorResponse struct {
	Error string `json:"error"`
}

// Routes builds the router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(h.logger))

	r.Get("/", h.handleIndex)
	r.Post("/open", h.handleOpenForm)
	r.Handle("/metrics", promhttp.HandlerFor(h.registry.Metrics(), promhttp.HandlerOpts{}))

	r.Route("/api/views", func(r chi.Router) {
		r.Get("/", h.handleListViews)
		r.Post("/", h.handleOpenView)
		r.Delete("/{id}", h.handleCloseView)
	})

	h.host.Register(r)
	return r
}

func (h *Handler) handleIndex(w http.ResponseWriter, req *http.Request) {
	notes := h.host.Notifications()
	notices := make([]htmlrender.Notice, len(notes))
	for i, n := range notes {
		notices[i] = htmlrender.Notice{Message: n.Message, At: n.At}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.index.RenderIndex(w, h.registry.Sessions(), notices); err != nil {
		h.logger.Error("render index", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// handleOpenForm opens a view from the index page form. Failures surface as
// notifications on the index page.
func (h *Handler) handleOpenForm(w http.ResponseWriter, req *http.Request) {
	if err := req.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	cfg := core.GraphConfig{
		DocumentEndpoint: req.PostForm.Get("document_endpoint"),
		GremlinEndpoint:  req.PostForm.Get("gremlin_endpoint"),
		DatabaseName:     req.PostForm.Get("database_name"),
		GraphName:        req.PostForm.Get("graph_name"),
		Key:              req.PostForm.Get("key"),
		TabTitle:         req.PostForm.Get("tab_title"),
	}
	h.registry.Open(req.Context(), cfg)
	http.Redirect(w, req, "/", http.StatusSeeOther)
}

func (h *Handler) handleListViews(w http.ResponseWriter, req *http.Request) {
	h.writeJSON(w, http.StatusOK, h.registry.Sessions())
}

func (h *Handler) handleOpenView(w http.ResponseWriter, req *http.Request) {
	var cfg core.GraphConfig
	if err := json.NewDecoder(req.Body).Decode(&cfg); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "decode request: " + err.Error()})
		return
	}

	info, err := h.registry.RequestView(req.Context(), cfg)
	switch {
	case errors.Is(err, core.ErrInvalidConfig):
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case err != nil:
		h.logger.Error("open view", "config", cfg.Redacted(), "error", err)
		h.writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
	default:
		h.writeJSON(w, http.StatusOK, info)
	}
}

func (h *Handler) handleCloseView(w http.ResponseWriter, req *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(req, "id"))
	if err != nil || id <= 0 {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid session id"})
		return
	}

	if err := h.registry.CloseView(id); err != nil {
		if errors.Is(err, view.ErrSessionNotFound) {
			h.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
			return
		}
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Debug("write response", "error", err)
	}
}
