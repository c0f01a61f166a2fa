package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChatMetricsRegistersWithoutConflicts(t *testing.T) {
	reg := prometheus.NewRegistry()

	// Panics on duplicate names, so constructing is the assertion.
	m := NewChatMetrics(reg)
	require.NotNil(t, m)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, fam := range families {
		names = append(names, fam.GetName())
	}
	assert.Contains(t, names, "chatrelay_websocket_connections_active")
	assert.Contains(t, names, "chatrelay_chat_messages_broadcast_total")
}

func TestChatMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewChatMetrics(reg)

	m.ConnectionsActive.Inc()
	m.ConnectionsActive.Inc()
	m.ConnectionsActive.Dec()
	m.MessagesReceived.Inc()
	m.BroadcastDrops.Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConnectionsActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MessagesReceived))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BroadcastDrops))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.DecodeErrors))
}

func TestHandlerServesRegisteredMetrics(t *testing.T) {
	reg := NewRegistry()
	m := NewChatMetrics(reg)
	m.ConnectionsTotal.Inc()

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "chatrelay_websocket_connections_total 1")
	assert.Contains(t, string(body), "go_goroutines")
}
