package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"testing"

	"github.com/sonnes/graphview/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() core.GraphConfig {
	return core.GraphConfig{
		DocumentEndpoint: "https://acct.documents.azure.com:443/",
		GremlinEndpoint:  "acct.gremlin.cosmos.azure.com:443",
		DatabaseName:     "db1",
		GraphName:        "people",
		Key:              "secret",
	}
}

func baseURL(s *Server) string {
	return "http://127.0.0.1:" + strconv.Itoa(s.Port())
}

func TestStartAssignsPort(t *testing.T) {
	s := New(testConfig(), Options{})
	assert.Equal(t, 0, s.Port())

	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(s.Dispose)

	assert.Greater(t, s.Port(), 0)

	url := baseURL(s)

	resp, err := http.Get(url + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestStartTwiceKeepsPort(t *testing.T) {
	s := New(testConfig(), Options{})
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(s.Dispose)

	port := s.Port()
	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, port, s.Port())
}

func TestConfigEndpointHidesKey(t *testing.T) {
	s := New(testConfig(), Options{})
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(s.Dispose)

	url := baseURL(s)

	resp, err := http.Get(url + "/config")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "secret")

	var got configResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, testConfig().Identity(), got.Identity)
	assert.Equal(t, "db1/people", got.Title)
	assert.Equal(t, s.Port(), got.Port)
	assert.Equal(t, "acct.gremlin.cosmos.azure.com:443", got.GremlinEndpoint)
}

func TestCORSPreflight(t *testing.T) {
	s := New(testConfig(), Options{AllowedOrigins: []string{"http://127.0.0.1:7411"}})
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(s.Dispose)

	url := baseURL(s)

	req, err := http.NewRequest(http.MethodOptions, url+"/config", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://127.0.0.1:7411")
	req.Header.Set("Access-Control-Request-Method", "GET")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "http://127.0.0.1:7411", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestDisposeIdempotent(t *testing.T) {
	s := New(testConfig(), Options{})
	s.Dispose() // before start
	assert.ErrorIs(t, s.Start(context.Background()), ErrDisposed)

	s2 := New(testConfig(), Options{})
	require.NoError(t, s2.Start(context.Background()))
	url := baseURL(s2)

	s2.Dispose()
	s2.Dispose()

	_, err := http.Get(url + "/healthz")
	assert.Error(t, err)
}

func TestStartFailsOnBadHost(t *testing.T) {
	s := New(testConfig(), Options{Host: "192.0.2.1"})
	err := s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen on 192.0.2.1")
	assert.Equal(t, 0, s.Port())
}
