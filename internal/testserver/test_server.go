// Package testserver runs the full command stack behind an httptest server
// for end-to-end tests.
package testserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rpggio/sitetrack/internal/domain/metrics"
	"github.com/rpggio/sitetrack/internal/domain/project"
	"github.com/rpggio/sitetrack/internal/mcp"
	"github.com/rpggio/sitetrack/internal/notify"
	"github.com/rpggio/sitetrack/internal/remote"
	"github.com/rpggio/sitetrack/internal/sqlite"
	"github.com/rpggio/sitetrack/internal/transport"
	"github.com/stretchr/testify/require"
)

// States are the regions the test server accepts.
var States = []string{"Tamil Nadu", "Delhi", "Uttar Pradesh"}

type TestServer struct {
	Server   *httptest.Server
	DB       *sqlite.DB
	Remote   *remote.MemoryStore
	Store    *project.Store
	Recorder *notify.Recorder

	nextID atomic.Int64
}

// New starts a server whose clock is fixed at now.
func New(t *testing.T, now time.Time) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	ts := &TestServer{DB: db, Remote: remote.NewMemoryStore(), Recorder: notify.NewRecorder(100)}
	clock := func() time.Time { return now }

	ts.Store = project.NewStore(ts.Remote, sqlite.NewProjectCache(db, "hec-projects"),
		project.WithClock(clock),
		project.WithIDGenerator(func() string { return fmt.Sprintf("p%d", ts.nextID.Add(1)) }),
		project.WithNotifier(ts.Recorder),
	)
	engine := &metrics.Engine{Now: clock}
	handler := mcp.NewHandler(ts.Store, engine, ts.Recorder, mcp.HandlerOptions{States: States})
	ts.Server = httptest.NewServer(transport.NewServer(handler, nil))

	t.Cleanup(func() {
		ts.Server.Close()
		_ = db.Close()
	})
	return ts
}

// Call issues one JSON-RPC request and decodes the result into out. A
// JSON-RPC error is returned as *transport.Error.
func (ts *TestServer) Call(t *testing.T, method string, params any, out any) *transport.Error {
	t.Helper()

	body, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
		"id":      1,
	})
	require.NoError(t, err)

	resp, err := http.Post(ts.Server.URL+"/rpc", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var envelope struct {
		Result json.RawMessage  `json:"result"`
		Error  *transport.Error `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	if envelope.Error != nil {
		return envelope.Error
	}
	if out != nil {
		require.NoError(t, json.Unmarshal(envelope.Result, out))
	}
	return nil
}
