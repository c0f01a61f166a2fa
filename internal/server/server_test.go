package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialChat(ts *httptest.Server, header http.Header) (*websocket.Conn, *http.Response, error) {
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/chat"
	return websocket.DefaultDialer.Dial(wsURL, header)
}

func waitForConnections(t *testing.T, srv *Server, want int) {
	t.Helper()
	for i := 0; i < 100; i++ {
		if srv.hub.GetClientCount() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	require.Equal(t, want, srv.hub.GetClientCount())
}

func TestIndexPageServed(t *testing.T) {
	_, ts := newTestServer(t, testConfig())

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	assert.Contains(t, string(body), "chatrelay")
	assert.Contains(t, string(body), "/chat")
}

func TestUnknownRouteReturnsNotFound(t *testing.T) {
	_, ts := newTestServer(t, testConfig())

	status, payload := getJSON(t, ts.URL+"/nope")

	assert.Equal(t, http.StatusNotFound, status)
	assert.NotEmpty(t, payload["message"])
}

func TestStatsEndpoint(t *testing.T) {
	srv, ts := newTestServer(t, testConfig())

	status, payload := getJSON(t, ts.URL+"/api/stats")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0.0, payload["connections"])
	assert.Equal(t, 0.0, payload["unique_ips"])

	conn, _, err := dialChat(ts, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	waitForConnections(t, srv, 1)

	status, payload = getJSON(t, ts.URL+"/api/stats")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1.0, payload["connections"])
	assert.Equal(t, 1.0, payload["unique_ips"])
}

func TestMetricsEndpoint(t *testing.T) {
	_, ts := newTestServer(t, testConfig())

	// A page request first so the HTTP instruments have samples.
	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "chatrelay_websocket_connections_active 0")
	assert.Contains(t, string(body), "chatrelay_http_requests_total")
}

func TestChatBroadcastThroughServer(t *testing.T) {
	srv, ts := newTestServer(t, testConfig())

	sender, _, err := dialChat(ts, nil)
	require.NoError(t, err)
	t.Cleanup(func() { sender.Close() })

	receiver, _, err := dialChat(ts, nil)
	require.NoError(t, err)
	t.Cleanup(func() { receiver.Close() })

	waitForConnections(t, srv, 2)

	require.NoError(t, sender.WriteMessage(websocket.TextMessage, []byte(`{"Send":{"text":"hello"}}`)))

	require.NoError(t, receiver.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := receiver.ReadMessage()
	require.NoError(t, err)

	var envelope map[string]map[string]string
	require.NoError(t, json.Unmarshal(data, &envelope))
	assert.Equal(t, "someone", envelope["NewMessage"]["by"])
	assert.Equal(t, "hello", envelope["NewMessage"]["text"])
}

func TestChatRejectsForeignOrigin(t *testing.T) {
	cfg := testConfig()
	cfg.AppEnv = "production"
	_, ts := newTestServer(t, cfg)

	header := http.Header{}
	header.Set("Origin", "https://evil.example.com")

	_, resp, err := dialChat(ts, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestChatGlobalLimitRejectsWith503(t *testing.T) {
	cfg := testConfig()
	cfg.MaxConnections = 2
	srv, ts := newTestServer(t, cfg)

	for i := 0; i < 2; i++ {
		conn, _, err := dialChat(ts, nil)
		require.NoError(t, err)
		t.Cleanup(func() { conn.Close() })
	}
	waitForConnections(t, srv, 2)

	_, resp, err := dialChat(ts, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestChatPerIPLimitRejectsWith429(t *testing.T) {
	cfg := testConfig()
	cfg.MaxConnectionsPerIP = 2
	srv, ts := newTestServer(t, cfg)

	for i := 0; i < 2; i++ {
		conn, _, err := dialChat(ts, nil)
		require.NoError(t, err)
		t.Cleanup(func() { conn.Close() })
	}
	waitForConnections(t, srv, 2)

	_, resp, err := dialChat(ts, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestChatRateLimitRejectsWith429(t *testing.T) {
	cfg := testConfig()
	cfg.ConnectionRatePerIP = 2
	cfg.ConnectionBurstPerIP = 2
	_, ts := newTestServer(t, cfg)

	// Burst of 2 is consumed even though the connections close right away.
	for i := 0; i < 2; i++ {
		conn, _, err := dialChat(ts, nil)
		require.NoError(t, err)
		conn.Close()
	}

	_, resp, err := dialChat(ts, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestChatLimitSlotReleasedOnDisconnect(t *testing.T) {
	cfg := testConfig()
	cfg.MaxConnections = 1
	srv, ts := newTestServer(t, cfg)

	conn, _, err := dialChat(ts, nil)
	require.NoError(t, err)
	waitForConnections(t, srv, 1)

	_, resp, err := dialChat(ts, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	conn.Close()
	waitForConnections(t, srv, 0)

	// The released slot may lag the hub removal by a moment.
	var again *websocket.Conn
	for i := 0; i < 100; i++ {
		again, _, err = dialChat(ts, nil)
		if err == nil {
			break
		}
		time.Sleep(time.Millisecond)
	}
	require.NoError(t, err)
	t.Cleanup(func() { again.Close() })
}
