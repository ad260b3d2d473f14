package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rpggio/sitetrack/internal/domain/project"
	"github.com/rpggio/sitetrack/internal/mcp"
	"github.com/stretchr/testify/require"
)

type testHandler struct {
	method string
	params json.RawMessage
	err    error
}

func (h *testHandler) Handle(_ context.Context, method string, params json.RawMessage) (any, error) {
	h.method = method
	h.params = params
	if h.err != nil {
		return nil, h.err
	}
	return map[string]string{"method": method}, nil
}

func postRPC(t *testing.T, url, body string) Response {
	t.Helper()
	resp, err := http.Post(url+"/rpc", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHTTPServer_RPC(t *testing.T) {
	handler := &testHandler{}
	server := httptest.NewServer(NewServer(handler, nil))
	t.Cleanup(server.Close)

	out := postRPC(t, server.URL, `{"jsonrpc":"2.0","method":"list_projects","params":{"state":"all"},"id":1}`)
	require.Nil(t, out.Error)
	require.Equal(t, "list_projects", handler.method)
	require.JSONEq(t, `{"state":"all"}`, string(handler.params))
	require.Equal(t, float64(1), out.ID)
}

func TestHTTPServer_DomainErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		api  string
	}{
		{"invalid input", fmt.Errorf("%w: projectName required", project.ErrInvalidInput), ErrInvalidParams, mcp.CodeInvalidInput},
		{"not found", project.ErrProjectNotFound, ErrApplication, mcp.CodeNotFound},
		{"unknown method", mcp.ErrUnknownMethod, ErrMethodNotFound, mcp.CodeUnknownMethod},
		{"unexpected", fmt.Errorf("boom"), ErrInternal, mcp.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(NewServer(&testHandler{err: tt.err}, nil))
			t.Cleanup(server.Close)

			out := postRPC(t, server.URL, `{"jsonrpc":"2.0","method":"get_project","id":"a"}`)
			require.NotNil(t, out.Error)
			require.Equal(t, tt.code, out.Error.Code)
			data, ok := out.Error.Data.(map[string]any)
			require.True(t, ok)
			require.Equal(t, tt.api, data["code"])
		})
	}
}

func TestHTTPServer_InvalidRequest(t *testing.T) {
	server := httptest.NewServer(NewServer(&testHandler{}, nil))
	t.Cleanup(server.Close)

	out := postRPC(t, server.URL, `{"jsonrpc":"1.0","method":"x"}`)
	require.NotNil(t, out.Error)
	require.Equal(t, ErrInvalidReq, out.Error.Code)
}

func TestHTTPServer_Health(t *testing.T) {
	server := httptest.NewServer(NewServer(&testHandler{}, nil))
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHTTPServer_ParseError(t *testing.T) {
	server := httptest.NewServer(NewServer(&testHandler{}, nil))
	t.Cleanup(server.Close)

	out := postRPC(t, server.URL, `not json`)
	require.NotNil(t, out.Error)
	require.Equal(t, ErrParseCode, out.Error.Code)
}
