package control

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sonnes/graphview/core"
	"github.com/sonnes/graphview/view"
)

// Client talks to a running daemon's control API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient creates a Client for the daemon at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is a non-2xx response from the daemon.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("daemon returned %d: %s", e.Status, e.Message)
}

// Open asks the daemon to open or reveal a view for cfg.
func (c *Client) Open(ctx context.Context, cfg core.GraphConfig) (view.SessionInfo, error) {
	body, err := json.Marshal(cfg)
	if err != nil {
		return view.SessionInfo{}, err
	}
	var info view.SessionInfo
	err = c.do(ctx, http.MethodPost, "/api/views", bytes.NewReader(body), &info)
	return info, err
}

// List returns the daemon's live sessions.
func (c *Client) List(ctx context.Context) ([]view.SessionInfo, error) {
	var sessions []view.SessionInfo
	err := c.do(ctx, http.MethodGet, "/api/views", nil, &sessions)
	return sessions, err
}

// Close closes the session with the given id. Unknown ids yield an error
// matching view.ErrSessionNotFound.
func (c *Client) Close(ctx context.Context, id int) error {
	err := c.do(ctx, http.MethodDelete, "/api/views/"+strconv.Itoa(id), nil, nil)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return fmt.Errorf("session %d: %w", id, view.ErrSessionNotFound)
	}
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("contact daemon at %s: %w", c.BaseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var e errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
