package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jira-mcp/internal/client"
	"jira-mcp/internal/config"
	"jira-mcp/internal/handler"
	"jira-mcp/internal/registry"
	"jira-mcp/internal/types"
)

const testKey = "key-acme"

func newTestServer(t *testing.T, cfg config.ServerConfig) *httptest.Server {
	t.Helper()
	jiraSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/rest/api/3/issue/PROJ-1" {
			_, _ = w.Write([]byte(`{"key":"PROJ-1","fields":{"summary":"Fix login"}}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(jiraSrv.Close)

	pool, err := client.NewPool(4, client.Options{BaseURL: jiraSrv.URL})
	require.NoError(t, err)

	resolver := registry.ResolverFunc(func(_ context.Context, apiKey string) (*registry.Credentials, error) {
		switch apiKey {
		case testKey:
			return &registry.Credentials{Tenant: "acme", Email: "bot@acme.com", APIToken: "t", Domain: "acme.atlassian.net"}, nil
		case "key-down":
			return nil, registry.ErrRegistryUnavailable
		default:
			return nil, registry.ErrUnknownAPIKey
		}
	})

	srv := httptest.NewServer(New(cfg, handler.New(resolver, pool, "test")).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, apiKey, body string) (*http.Response, types.Response) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url+"/mcp", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set(APIKeyHeader, apiKey)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var rpc types.Response
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, &rpc))
	}
	return resp, rpc
}

const getIssueCall = `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"jira_read","arguments":{"verb":"get_issue","param":"PROJ-1"}}}`

func TestMCP_Endpoint(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, config.ServerConfig{})

	tests := []struct {
		name       string
		apiKey     string
		body       string
		wantStatus int
		wantCode   int
	}{
		{name: "Tool_Call", apiKey: testKey, body: getIssueCall, wantStatus: http.StatusOK},
		{name: "Tools_List", apiKey: "key-anything", body: `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`, wantStatus: http.StatusOK},
		{name: "Notification", apiKey: testKey, body: `{"jsonrpc":"2.0","method":"notifications/initialized"}`, wantStatus: http.StatusAccepted},
		{name: "Missing_Key", body: getIssueCall, wantStatus: http.StatusUnauthorized, wantCode: handler.CodeUnauthorized},
		{name: "Unknown_Key", apiKey: "key-other", body: getIssueCall, wantStatus: http.StatusUnauthorized, wantCode: handler.CodeUnauthorized},
		{name: "Registry_Down", apiKey: "key-down", body: getIssueCall, wantStatus: http.StatusServiceUnavailable, wantCode: handler.CodeRegistryUnavailable},
		{name: "Parse_Error", apiKey: testKey, body: `{`, wantStatus: http.StatusOK, wantCode: types.CodeParseError},
		{name: "Too_Large", apiKey: testKey, body: `"` + strings.Repeat("a", maxBodyBytes+1) + `"`, wantStatus: http.StatusRequestEntityTooLarge, wantCode: types.CodeInvalidRequest},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			resp, rpc := post(t, srv.URL, tt.apiKey, tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))
			if tt.wantCode != 0 {
				require.NotNil(t, rpc.Error)
				assert.Equal(t, tt.wantCode, rpc.Error.Code)
			} else if tt.wantStatus == http.StatusOK {
				assert.Nil(t, rpc.Error)
				assert.NotNil(t, rpc.Result)
			}
		})
	}
}

func TestMCP_ToolCallResult(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, config.ServerConfig{})

	_, rpc := post(t, srv.URL, testKey, getIssueCall)
	result, ok := rpc.Result.(map[string]any)
	require.True(t, ok)
	content := result["content"].([]any)
	require.Len(t, content, 1)
	assert.Contains(t, content[0].(map[string]any)["text"], "# PROJ-1: Fix login")
	assert.NotContains(t, result, "isError")
}

func TestMCP_MethodNotAllowed(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, config.ServerConfig{})

	resp, err := http.Get(srv.URL + "/mcp")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, config.ServerConfig{})

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	// Produce at least one tool call sample.
	post(t, srv.URL, testKey, getIssueCall)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "jira_mcp_tool_calls_total")
}

func TestRequestID(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, config.ServerConfig{})

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, "abc-123")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get(RequestIDHeader))
}

func TestCORS(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, config.ServerConfig{CorsOrigins: []string{"https://app.example.com"}})

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/mcp", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "x-api-key")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "https://app.example.com", resp.Header.Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://evil.example.com")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRecovery(t *testing.T) {
	t.Parallel()
	h := RequestID(Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var rpc types.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rpc))
	require.NotNil(t, rpc.Error)
	assert.Equal(t, types.CodeInternalError, rpc.Error.Code)
}

func TestRun_Shutdown(t *testing.T) {
	t.Parallel()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	s := New(config.ServerConfig{Address: addr}, handler.New(registry.ResolverFunc(
		func(context.Context, string) (*registry.Credentials, error) { return nil, registry.ErrUnknownAPIKey },
	), nil, "test"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
