package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/lance13c/ytmon/internal/logging"
)

const (
	cdpCommandTimeout = 5 * time.Second
	cdpAttachTimeout  = 15 * time.Second
)

// cdpSession talks to the browser directly over the DevTools protocol,
// attached to an existing tab.
type cdpSession struct {
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc

	closeOnce sync.Once
}

func newCDPSession(ctx context.Context, addr, wsURL, domainHint string) (*cdpSession, error) {
	targets, err := ListTargets(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to list targets: %w", err)
	}
	page, ok := pickPageTarget(targets, domainHint)
	if !ok {
		return nil, fmt.Errorf("no page targets found on %s", addr)
	}
	logging.Debug("attaching to target %s (%s)", page.ID, page.URL)

	// The session outlives ctx; it is torn down by Close.
	allocCtx, allocCancel := chromedp.NewRemoteAllocator(context.Background(), wsURL)
	tabCtx, cancel := chromedp.NewContext(
		allocCtx,
		chromedp.WithTargetID(target.ID(page.ID)),
		chromedp.WithLogf(func(format string, v ...interface{}) {
			logging.Debug("[Chrome] "+format, v...)
		}),
	)

	// The first Run allocates the connection, so it cannot carry a deadline
	// itself; it is bounded from outside instead.
	err = awaitAttach(ctx, cdpAttachTimeout, func() error { return chromedp.Run(tabCtx) })
	if err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("failed to attach to %s: %w", wsURL, err)
	}

	return &cdpSession{allocCancel: allocCancel, ctx: tabCtx, cancel: cancel}, nil
}

// awaitAttach runs attach and gives up when ctx ends or timeout elapses. The
// caller tears the connection down on error, which unblocks attach.
func awaitAttach(ctx context.Context, timeout time.Duration, attach func() error) error {
	done := make(chan error, 1)
	go func() { done <- attach() }()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("%w: no response within %s", ErrConnectionLost, timeout)
	}
}

// pickPageTarget prefers the first page whose URL contains hint.
func pickPageTarget(targets []Target, hint string) (Target, bool) {
	var first *Target
	for i := range targets {
		t := &targets[i]
		if t.Type != "page" {
			continue
		}
		if hint != "" && strings.Contains(t.URL, hint) {
			return *t, true
		}
		if first == nil {
			first = t
		}
	}
	if first == nil {
		return Target{}, false
	}
	return *first, true
}

// runCtx derives a bounded context from the session that also ends when the
// caller's ctx does.
func (s *cdpSession) runCtx(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	rctx, cancel := context.WithTimeout(s.ctx, timeout)
	stop := context.AfterFunc(ctx, cancel)
	return rctx, func() {
		stop()
		cancel()
	}
}

func (s *cdpSession) CurrentURL(ctx context.Context) (string, error) {
	rctx, cancel := s.runCtx(ctx, cdpCommandTimeout)
	defer cancel()

	var u string
	if err := chromedp.Run(rctx, chromedp.Location(&u)); err != nil {
		return "", s.classify(ctx, err, "location")
	}
	return u, nil
}

func (s *cdpSession) VisibleText(ctx context.Context, selector string, timeout time.Duration) (string, error) {
	rctx, cancel := s.runCtx(ctx, timeout)
	defer cancel()

	var text string
	err := chromedp.Run(rctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Text(selector, &text, chromedp.ByQuery, chromedp.NodeVisible),
	)
	if err != nil {
		return "", s.classify(ctx, err, selector)
	}
	return strings.TrimSpace(text), nil
}

func (s *cdpSession) classify(ctx context.Context, err error, what string) error {
	switch {
	case ctx.Err() != nil:
		return ctx.Err()
	case s.ctx.Err() != nil:
		return fmt.Errorf("%w: %v", ErrConnectionLost, err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %s: %v", ErrElementNotFound, what, err)
	case strings.Contains(strings.ToLower(err.Error()), "websocket"):
		return fmt.Errorf("%w: %v", ErrConnectionLost, err)
	}
	return err
}

func (s *cdpSession) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		s.allocCancel()
	})
	return nil
}
