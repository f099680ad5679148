package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lance13c/ytmon/internal/config"
)

// Classified per-poll failures. Backends wrap their native errors with one
// of these so the monitor can pick a policy with errors.Is.
var (
	ErrElementNotFound = errors.New("element not found")
	ErrConnectionLost  = errors.New("browser connection lost")
)

// Session is an attached remote-control session on a running browser
type Session interface {
	// CurrentURL returns the address of the controlled tab.
	CurrentURL(ctx context.Context) (string, error)
	// VisibleText waits up to timeout for selector to match a visible
	// element and returns its rendered text.
	VisibleText(ctx context.Context, selector string, timeout time.Duration) (string, error)
	// Close releases the session. It is safe to call more than once.
	Close() error
}

// Connect attaches to the browser described by cfg. version is the result of
// WaitForDebugger.
func Connect(ctx context.Context, cfg *config.Config, version *VersionInfo) (Session, error) {
	switch cfg.Driver.Backend {
	case config.BackendWebDriver:
		return newWebDriverSession(cfg.Driver.Path, cfg.Driver.Port, cfg.DebuggerAddr())
	case config.BackendCDP:
		return newCDPSession(ctx, cfg.DebuggerAddr(), version.WebSocketDebuggerURL, cfg.Monitor.ExpectedDomain)
	default:
		return nil, fmt.Errorf("unknown driver backend %q", cfg.Driver.Backend)
	}
}
