package host

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/sonnes/graphview/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHost(t *testing.T, opened *[]string) (*Host, *httptest.Server) {
	t.Helper()
	h := New(Options{
		BaseURL: "http://127.0.0.1:7411/",
		Resources: fstest.MapFS{
			"graphClient/graphClient.js": &fstest.MapFile{Data: []byte("console.log(1)")},
		},
		Open: func(url string) error {
			if opened != nil {
				*opened = append(*opened, url)
			}
			return nil
		},
		Logger: log.New(io.Discard),
	})
	r := chi.NewRouter()
	h.Register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return h, srv
}

func createPanel(t *testing.T, h *Host, title string, column view.Column) *Panel {
	t.Helper()
	p, err := h.CreatePanel(view.ViewType, title, view.ShowOptions{Column: column}, view.PanelOptions{EnableScripts: true})
	require.NoError(t, err)
	return p.(*Panel)
}

func TestCreatePanel(t *testing.T) {
	h, _ := newTestHost(t, nil)

	p := createPanel(t, h, "people", 2)
	assert.NotEmpty(t, p.Handle())
	assert.Equal(t, "people", p.Title())
	assert.True(t, p.Options().EnableScripts)
	assert.Equal(t, "http://127.0.0.1:7411/panels/"+p.Handle(), p.URL())
	assert.Equal(t, "http://127.0.0.1:7411/resources", p.ResourceBaseURI())

	got, ok := h.Panel(p.Handle())
	require.True(t, ok)
	assert.Same(t, p, got)

	other := createPanel(t, h, "places", 0)
	assert.NotEqual(t, p.Handle(), other.Handle())
	assert.Equal(t, view.ColumnOne, other.column)
}

func TestCreatePanelRequiresTitle(t *testing.T) {
	h, _ := newTestHost(t, nil)

	_, err := h.CreatePanel(view.ViewType, "  ", view.ShowOptions{}, view.PanelOptions{})
	assert.ErrorIs(t, err, ErrEmptyTitle)
}

func TestCreatePanelChecksResourceRoots(t *testing.T) {
	h, _ := newTestHost(t, nil)

	_, err := h.CreatePanel(view.ViewType, "people", view.ShowOptions{},
		view.PanelOptions{LocalResourceRoots: []string{"/elsewhere"}})
	assert.ErrorIs(t, err, ErrResourceRoot)

	_, err = h.CreatePanel(view.ViewType, "people", view.ShowOptions{},
		view.PanelOptions{LocalResourceRoots: []string{"/elsewhere", h.ResourceRoot()}})
	assert.NoError(t, err)
}

func TestServePanelScriptPolicy(t *testing.T) {
	h, srv := newTestHost(t, nil)

	tests := []struct {
		name    string
		scripts bool
		wantCSP string
	}{
		{name: "scripts enabled", scripts: true, wantCSP: ""},
		{name: "scripts disabled", scripts: false, wantCSP: "script-src 'none'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := h.CreatePanel(view.ViewType, "people", view.ShowOptions{},
				view.PanelOptions{EnableScripts: tt.scripts})
			require.NoError(t, err)

			resp, err := http.Get(srv.URL + "/panels/" + p.(*Panel).Handle())
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, tt.wantCSP, resp.Header.Get("Content-Security-Policy"))
		})
	}
}

func TestRevealTracksColumnAndOpens(t *testing.T) {
	var opened []string
	h, _ := newTestHost(t, &opened)
	assert.Equal(t, view.ColumnOne, h.ActiveColumn())

	p := createPanel(t, h, "people", 3)
	p.Reveal()

	assert.Equal(t, view.Column(3), h.ActiveColumn())
	assert.Equal(t, []string{p.URL()}, opened)

	p.Dispose()
	p.Reveal()
	assert.Len(t, opened, 1)
}

func TestRevealIgnoresOpenErrors(t *testing.T) {
	h := New(Options{
		BaseURL: "http://127.0.0.1:7411",
		Open:    func(string) error { return errors.New("no display") },
		Logger:  log.New(io.Discard),
	})
	p := createPanel(t, h, "people", 1)
	assert.NotPanics(t, p.Reveal)
}

func TestServePanelHTML(t *testing.T) {
	h, srv := newTestHost(t, nil)
	p := createPanel(t, h, "people", 1)
	p.SetHTML("<html>graph</html>")

	resp, err := http.Get(srv.URL + "/panels/" + p.Handle())
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, "<html>graph</html>", string(body))
}

func TestServeUnknownPanel(t *testing.T) {
	_, srv := newTestHost(t, nil)

	resp, err := http.Get(srv.URL + "/panels/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeletePanelFiresCloseOnce(t *testing.T) {
	h, srv := newTestHost(t, nil)
	p := createPanel(t, h, "people", 1)

	calls := 0
	p.OnDidDispose(func() { calls++ })

	del := func() int {
		req, err := http.NewRequest(http.MethodDelete, srv.URL+"/panels/"+p.Handle(), nil)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusNoContent, del())
	assert.Equal(t, http.StatusNotFound, del())
	p.Dispose()

	assert.Equal(t, 1, calls)
	assert.True(t, p.Disposed())
	_, ok := h.Panel(p.Handle())
	assert.False(t, ok)
}

func TestOnDidDisposeAfterClose(t *testing.T) {
	h, _ := newTestHost(t, nil)
	p := createPanel(t, h, "people", 1)
	p.Dispose()

	calls := 0
	p.OnDidDispose(func() { calls++ })
	assert.Equal(t, 1, calls)
}

func TestServeResources(t *testing.T) {
	_, srv := newTestHost(t, nil)

	resp, err := http.Get(srv.URL + "/resources/graphClient/graphClient.js")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "console.log(1)", string(body))

	missing, err := http.Get(srv.URL + "/resources/graphClient/missing.js")
	require.NoError(t, err)
	missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestNotificationsBounded(t *testing.T) {
	h, _ := newTestHost(t, nil)

	for i := 0; i < maxNotifications+5; i++ {
		h.ShowErrorMessage(fmt.Sprintf("err %d", i))
	}

	notes := h.Notifications()
	require.Len(t, notes, maxNotifications)
	assert.Equal(t, "err 5", notes[0].Message)
	assert.Equal(t, fmt.Sprintf("err %d", maxNotifications+4), notes[len(notes)-1].Message)
}

func TestResourceRootDefault(t *testing.T) {
	h := New(Options{})
	assert.Equal(t, "embedded", h.ResourceRoot())

	h = New(Options{ResourceRoot: "/srv/graphview"})
	assert.Equal(t, "/srv/graphview", h.ResourceRoot())
}
