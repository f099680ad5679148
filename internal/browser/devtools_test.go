package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDevTools serves the DevTools HTTP endpoints plus a websocket that
// accepts and drops connections.
func fakeDevTools(t *testing.T, readyAfter int) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{}
	calls := 0
	mux := http.NewServeMux()
	var srv *httptest.Server

	mux.HandleFunc("/json/version", func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls <= readyAfter {
			http.Error(w, "starting", http.StatusServiceUnavailable)
			return
		}
		wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/devtools/browser/abc"
		json.NewEncoder(w).Encode(VersionInfo{
			Browser:              "Chrome/131.0.0.0",
			ProtocolVersion:      "1.3",
			WebSocketDebuggerURL: wsURL,
		})
	})
	mux.HandleFunc("/json/list", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]Target{
			{ID: "sw", Type: "service_worker", URL: "https://music.youtube.com/sw.js"},
			{ID: "tab1", Type: "page", URL: "https://music.youtube.com/"},
		})
	})
	mux.HandleFunc("/devtools/browser/abc", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.Close()
	})

	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func addrOf(srv *httptest.Server) string {
	return strings.TrimPrefix(srv.URL, "http://")
}

func withProbeInterval(t *testing.T, d time.Duration) {
	t.Helper()
	old := probeInterval
	probeInterval = d
	t.Cleanup(func() { probeInterval = old })
}

func TestWaitForDebugger_ReadyAfterRetries(t *testing.T) {
	withProbeInterval(t, 10*time.Millisecond)
	srv := fakeDevTools(t, 3)

	info, err := WaitForDebugger(context.Background(), addrOf(srv), 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "Chrome/131.0.0.0", info.Browser)
	assert.Contains(t, info.WebSocketDebuggerURL, "/devtools/browser/abc")
}

func TestWaitForDebugger_TimesOutOnClosedPort(t *testing.T) {
	withProbeInterval(t, 10*time.Millisecond)
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := addrOf(srv)
	srv.Close()

	_, err := WaitForDebugger(context.Background(), addr, 100*time.Millisecond)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDebuggerNotReady))
}

func TestWaitForDebugger_RejectsMissingWebSocketURL(t *testing.T) {
	withProbeInterval(t, 10*time.Millisecond)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Browser":"Chrome"}`))
	}))
	defer srv.Close()

	for _, timeout := range []time.Duration{100 * time.Millisecond, 300 * time.Millisecond, time.Second} {
		_, err := WaitForDebugger(context.Background(), addrOf(srv), timeout)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDebuggerNotReady)
		assert.Contains(t, err.Error(), "webSocketDebuggerUrl")
		assert.NotContains(t, err.Error(), "context deadline exceeded")
	}
}

func TestWaitForDebugger_ReportsHandshakeFailure(t *testing.T) {
	withProbeInterval(t, 10*time.Millisecond)
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/json/version" {
			fmt.Fprintf(w, `{"Browser":"Chrome","webSocketDebuggerUrl":"ws://%s/devtools/browser/abc"}`, addrOf(srv))
			return
		}
		http.Error(w, "not a websocket", http.StatusForbidden)
	}))
	defer srv.Close()

	for _, timeout := range []time.Duration{100 * time.Millisecond, 300 * time.Millisecond} {
		_, err := WaitForDebugger(context.Background(), addrOf(srv), timeout)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDebuggerNotReady)
		assert.Contains(t, err.Error(), "websocket handshake failed")
		assert.NotContains(t, err.Error(), "context deadline exceeded")
	}
}

func TestWaitForDebugger_Cancelled(t *testing.T) {
	withProbeInterval(t, 10*time.Millisecond)
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := addrOf(srv)
	srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := WaitForDebugger(ctx, addr, time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestListTargets(t *testing.T) {
	srv := fakeDevTools(t, 0)

	targets, err := ListTargets(context.Background(), addrOf(srv))
	require.NoError(t, err)
	require.Len(t, targets, 2)
	assert.Equal(t, "page", targets[1].Type)
}

func TestPickPageTarget(t *testing.T) {
	targets := []Target{
		{ID: "bg", Type: "background_page", URL: "chrome-extension://x"},
		{ID: "blank", Type: "page", URL: "about:blank"},
		{ID: "ytm", Type: "page", URL: "https://music.youtube.com/watch?v=1"},
	}

	got, ok := pickPageTarget(targets, "music.youtube.com")
	require.True(t, ok)
	assert.Equal(t, "ytm", got.ID)

	got, ok = pickPageTarget(targets, "open.spotify.com")
	require.True(t, ok)
	assert.Equal(t, "blank", got.ID)

	_, ok = pickPageTarget(targets[:1], "")
	assert.False(t, ok)
}
