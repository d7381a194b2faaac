package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"domainlog/internal/config"
	"domainlog/internal/echo"
	"domainlog/internal/events"
	"domainlog/internal/logger"
	"domainlog/internal/output"
	"domainlog/internal/severity"
)

func newTestServer(t *testing.T) (*Server, *echo.Server, *httptest.Server) {
	t.Helper()
	rec := output.NewRecorder()
	reg := output.NewRegistry()
	reg.Register("memory", func() (output.Output, error) { return rec, nil })
	reg.Register("void", func() (output.Output, error) { return output.Void{}, nil })
	tree := config.NewNode(severity.Info, "memory", map[string]*config.Node{
		"echo-server": config.NewNode(severity.Debug, "void", nil),
	})
	root := logger.NewRoot(tree, reg)

	ctx, cancel := context.WithCancel(logger.WithHandle(context.Background(), root.Get("echo-server")))
	t.Cleanup(cancel)

	e := echo.NewServer(echo.Config{MaxConns: 1})
	s := NewServer("127.0.0.1:0", e)
	ts := httptest.NewServer(s.Handler(logger.Descend(ctx, Domain)))
	t.Cleanup(ts.Close)
	return s, e, ts
}

func getJSON(t *testing.T, url string, v any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestStatus(t *testing.T) {
	_, _, ts := newTestServer(t)

	var status StatusResponse
	getJSON(t, ts.URL+"/api/status", &status)

	require.Equal(t, 0, status.Sessions)
	require.Empty(t, status.SessionAddrs)
	require.GreaterOrEqual(t, status.UptimeSeconds, 0.0)
}

func TestMetrics(t *testing.T) {
	_, e, ts := newTestServer(t)
	e.Metrics().RecordAccepted()
	e.Metrics().RecordClosed(2*time.Millisecond, 10, nil)

	var m MetricsResponse
	getJSON(t, ts.URL+"/api/metrics", &m)

	require.Equal(t, uint64(1), m.AcceptedConnections)
	require.Equal(t, int64(0), m.ActiveConnections)
	require.Equal(t, uint64(10), m.BytesEchoed)
	require.InDelta(t, 2.0, m.P99LifetimeMs, 0.001)
}

func TestMethodNotAllowed(t *testing.T) {
	_, _, ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/status", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestLogDomains(t *testing.T) {
	_, _, ts := newTestServer(t)

	var domains []DomainInfo
	getJSON(t, ts.URL+"/api/log/domains", &domains)

	require.Equal(t, []DomainInfo{
		{Domain: "", Severity: "info", Output: "memory"},
		{Domain: "echo-server", Severity: "debug", Output: "void"},
	}, domains)
}

func TestLogResolve(t *testing.T) {
	_, _, ts := newTestServer(t)

	tests := []struct {
		query    string
		expected ResolveResponse
	}{
		{"echo-server/client/%23127.0.0.1:5000", ResolveResponse{
			Domain:  "echo-server/client/#127.0.0.1:5000",
			Matched: DomainInfo{Domain: "echo-server", Severity: "debug", Output: "void"},
		}},
		{"other", ResolveResponse{
			Domain:  "other",
			Matched: DomainInfo{Domain: "", Severity: "info", Output: "memory"},
		}},
	}

	for _, tt := range tests {
		var got ResolveResponse
		getJSON(t, ts.URL+"/api/log/resolve?domain="+tt.query, &got)
		require.Equal(t, tt.expected, got)
	}
}

func TestLogDomainsWithoutRoot(t *testing.T) {
	s := NewServer("127.0.0.1:0", echo.NewServer(echo.Config{}))
	ts := httptest.NewServer(s.Handler(context.Background()))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/log/domains")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func dialWebSocket(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	ws, err := websocket.Dial(url, "", ts.URL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func receive(t *testing.T, ws *websocket.Conn) map[string]json.RawMessage {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg string
	require.NoError(t, websocket.Message.Receive(ws, &msg))
	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(msg), &out))
	return out
}

func TestWebSocketStreamsEvents(t *testing.T) {
	s, e, ts := newTestServer(t)
	ws := dialWebSocket(t, ts)

	require.Eventually(t, func() bool {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return len(s.wsClients) == 1
	}, 2*time.Second, 5*time.Millisecond)

	e.Events().Publish(events.NewConnectedEvent("s1", "echo-server/client/#a", "a"))

	msg := receive(t, ws)
	require.JSONEq(t, `"event"`, string(msg["type"]))
	var event events.Event
	require.NoError(t, json.Unmarshal(msg["event"], &event))
	require.Equal(t, events.EventConnected, event.Type)
	require.Equal(t, "s1", event.SessionID)
}

func TestWebSocketBroadcastsMetrics(t *testing.T) {
	s, _, ts := newTestServer(t)
	ws := dialWebSocket(t, ts)

	require.Eventually(t, func() bool {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return len(s.wsClients) == 1
	}, 2*time.Second, 5*time.Millisecond)

	s.broadcast(context.Background(), map[string]interface{}{
		"type":    "metrics",
		"metrics": s.metrics(),
	})

	msg := receive(t, ws)
	require.JSONEq(t, `"metrics"`, string(msg["type"]))
	require.Contains(t, msg, "metrics")
}

func TestWebSocketUnsubscribesOnClose(t *testing.T) {
	s, e, ts := newTestServer(t)
	ws := dialWebSocket(t, ts)

	require.Eventually(t, func() bool { return e.Events().SubscriberCount() == 1 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, ws.Close())
	require.Eventually(t, func() bool { return e.Events().SubscriberCount() == 0 }, 2*time.Second, 5*time.Millisecond)

	s.mu.RLock()
	defer s.mu.RUnlock()
	require.Empty(t, s.wsClients)
}
