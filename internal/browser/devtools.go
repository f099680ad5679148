package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lance13c/ytmon/internal/logging"
)

// ErrDebuggerNotReady is returned when the debugging endpoint never answers.
var ErrDebuggerNotReady = errors.New("browser debugger not ready")

// probeInterval is the delay between readiness attempts.
var probeInterval = 500 * time.Millisecond

// VersionInfo is the payload of the /json/version endpoint
type VersionInfo struct {
	Browser              string `json:"Browser"`
	ProtocolVersion      string `json:"Protocol-Version"`
	UserAgent            string `json:"User-Agent"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}

// Target represents a Chrome DevTools target
type Target struct {
	ID                   string `json:"id"`
	Type                 string `json:"type"`
	Title                string `json:"title"`
	URL                  string `json:"url"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}

var devtoolsClient = &http.Client{Timeout: 2 * time.Second}

func getJSON(ctx context.Context, url string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := devtoolsClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to Chrome DevTools: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", url, err)
	}
	return nil
}

// GetVersion queries /json/version on addr (host:port)
func GetVersion(ctx context.Context, addr string) (*VersionInfo, error) {
	var info VersionInfo
	if err := getJSON(ctx, fmt.Sprintf("http://%s/json/version", addr), &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// ListTargets returns all DevTools targets on addr (host:port)
func ListTargets(ctx context.Context, addr string) ([]Target, error) {
	var targets []Target
	if err := getJSON(ctx, fmt.Sprintf("http://%s/json/list", addr), &targets); err != nil {
		return nil, err
	}
	return targets, nil
}

// WaitForDebugger polls addr until the browser exposes a debugger websocket
// that accepts a handshake, or timeout elapses.
func WaitForDebugger(ctx context.Context, addr string, timeout time.Duration) (*VersionInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(probeInterval)
	defer ticker.Stop()

	var lastErr error
	for attempt := 1; ; attempt++ {
		info, err := probeOnce(ctx, addr)
		if err == nil {
			logging.Info("Debugger ready on %s after %d attempt(s): %s", addr, attempt, info.Browser)
			return info, nil
		}
		// a probe cut short by the deadline says nothing about the browser
		if ctx.Err() == nil || lastErr == nil {
			lastErr = err
		}
		logging.Debug("debugger probe %d on %s: %v", attempt, addr, err)

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w on %s after %s: %v", ErrDebuggerNotReady, addr, timeout, lastErr)
		case <-ticker.C:
		}
	}
}

func probeOnce(ctx context.Context, addr string) (*VersionInfo, error) {
	info, err := GetVersion(ctx, addr)
	if err != nil {
		return nil, err
	}
	if info.WebSocketDebuggerURL == "" {
		return nil, errors.New("no webSocketDebuggerUrl advertised")
	}

	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, resp, err := dialer.DialContext(ctx, info.WebSocketDebuggerURL, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket handshake failed with status %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("websocket handshake failed: %w", err)
	}
	conn.Close()

	return info, nil
}
