package host

import (
	"sync"

	"github.com/sonnes/graphview/view"
)

// Panel is a browser page served at /panels/{handle}.
type Panel struct {
	host     *Host
	handle   string
	viewType string
	title    string
	column   view.Column
	opts     view.PanelOptions

	mu       sync.Mutex
	html     string
	disposed bool
	handlers []func()
}

// Handle is the panel's address under /panels/.
func (p *Panel) Handle() string { return p.handle }

// Title is the title the panel was created with.
func (p *Panel) Title() string { return p.title }

// Options returns the capability flags the panel was created with.
func (p *Panel) Options() view.PanelOptions { return p.opts }

// HTML returns the current markup.
func (p *Panel) HTML() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.html
}

// SetHTML implements view.Panel.
func (p *Panel) SetHTML(html string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.html = html
}

// Reveal implements view.Panel.
func (p *Panel) Reveal() {
	if p.Disposed() {
		return
	}
	p.host.reveal(p)
}

// OnDidDispose implements view.Panel. Registering on a panel that is already
// closed runs fn immediately.
func (p *Panel) OnDidDispose(fn func()) {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		fn()
		return
	}
	p.handlers = append(p.handlers, fn)
	p.mu.Unlock()
}

// Dispose implements view.Panel. Handlers run once, on the first call.
func (p *Panel) Dispose() {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return
	}
	p.disposed = true
	handlers := p.handlers
	p.handlers = nil
	p.mu.Unlock()

	p.host.remove(p.handle)
	p.host.logger.Debug("panel closed", "handle", p.handle, "title", p.title)

	for _, fn := range handlers {
		fn()
	}
}

// Disposed reports whether the panel has been closed.
func (p *Panel) Disposed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.disposed
}

// ResourceBaseURI implements view.Panel.
func (p *Panel) ResourceBaseURI() string {
	return p.host.baseURL + "/resources"
}

// URL implements view.Panel.
func (p *Panel) URL() string {
	return p.host.baseURL + "/panels/" + p.handle
}
