package view

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing/fstest"

	"github.com/sonnes/graphview/core"
)

const testTemplate = `<body data-port="$CLIENTPORT"><script src="$BASEURI/app.js"></script>` +
	`<script>var port = $CLIENTPORT;</script></body>`

func testResources() fstest.MapFS {
	return fstest.MapFS{
		DefaultTemplatePath: &fstest.MapFile{Data: []byte(testTemplate)},
	}
}

type fakeServer struct {
	cfg      core.GraphConfig
	port     int
	startErr error
	block    chan struct{}
	onStart  func()

	starts   atomic.Int32
	disposes atomic.Int32
}

func (s *fakeServer) Start(ctx context.Context) error {
	s.starts.Add(1)
	if s.onStart != nil {
		s.onStart()
	}
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return s.startErr
}

func (s *fakeServer) Dispose() { s.disposes.Add(1) }

func (s *fakeServer) Port() int { return s.port }

// serverFactory hands out fakeServers with sequential ports and remembers
// every server it built.
type serverFactory struct {
	mu       sync.Mutex
	servers  []*fakeServer
	nextPort int
	startErr error
	block    chan struct{}

	// started is closed when the first server enters Start.
	started     chan struct{}
	startedOnce sync.Once
}

func newBlockingFactory() *serverFactory {
	return &serverFactory{
		block:   make(chan struct{}),
		started: make(chan struct{}),
	}
}

func (f *serverFactory) markStarted() {
	if f.started != nil {
		f.startedOnce.Do(func() { close(f.started) })
	}
}

func (f *serverFactory) New(cfg core.GraphConfig) Server {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.nextPort == 0 {
		f.nextPort = 40000
	}
	f.nextPort++
	s := &fakeServer{cfg: cfg, port: f.nextPort, startErr: f.startErr, block: f.block, onStart: f.markStarted}
	f.servers = append(f.servers, s)
	return s
}

func (f *serverFactory) totalStarts() int {
	n := 0
	for _, s := range f.built() {
		n += int(s.starts.Load())
	}
	return n
}

func (f *serverFactory) built() []*fakeServer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*fakeServer(nil), f.servers...)
}

type fakePanel struct {
	title string
	show  ShowOptions
	opts  PanelOptions
	n     int

	mu       sync.Mutex
	html     string
	reveals  int
	disposed bool
	handlers []func()
}

func (p *fakePanel) SetHTML(html string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.html = html
}

func (p *fakePanel) Reveal() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reveals++
}

func (p *fakePanel) OnDidDispose(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers = append(p.handlers, fn)
}

func (p *fakePanel) Dispose() {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return
	}
	p.disposed = true
	handlers := p.handlers
	p.mu.Unlock()

	for _, fn := range handlers {
		fn()
	}
}

// fireClose invokes the close handlers regardless of prior disposal, to
// simulate a host delivering a duplicate close signal.
func (p *fakePanel) fireClose() {
	p.mu.Lock()
	handlers := p.handlers
	p.mu.Unlock()
	for _, fn := range handlers {
		fn()
	}
}

func (p *fakePanel) ResourceBaseURI() string { return "http://host/resources" }

func (p *fakePanel) URL() string { return fmt.Sprintf("http://host/panels/%d", p.n) }

func (p *fakePanel) state() (html string, reveals int, disposed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.html, p.reveals, p.disposed
}

type fakeHost struct {
	mu        sync.Mutex
	panels    []*fakePanel
	createErr error
	errors    []string
}

func (h *fakeHost) CreatePanel(viewType, title string, show ShowOptions, opts PanelOptions) (Panel, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.createErr != nil {
		return nil, h.createErr
	}
	if viewType != ViewType {
		return nil, errors.New("unexpected view type " + viewType)
	}
	p := &fakePanel{title: title, show: show, opts: opts, n: len(h.panels) + 1}
	h.panels = append(h.panels, p)
	return p, nil
}

func (h *fakeHost) ActiveColumn() Column { return ColumnOne }

func (h *fakeHost) ResourceRoot() string { return "/ext" }

func (h *fakeHost) ShowErrorMessage(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors = append(h.errors, msg)
}

func (h *fakeHost) created() []*fakePanel {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*fakePanel(nil), h.panels...)
}

func (h *fakeHost) messages() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.errors...)
}
