// Package monitor watches the player bar of an attached browser session and
// records every track change.
package monitor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/lance13c/ytmon/internal/browser"
	"github.com/lance13c/ytmon/internal/config"
	"github.com/lance13c/ytmon/internal/logging"
	"github.com/lance13c/ytmon/internal/tracklog"
	"github.com/lance13c/ytmon/internal/ui"
)

var (
	// ErrPageLoadTimeout means the tab never reached the expected domain.
	ErrPageLoadTimeout = errors.New("page did not load")
	// ErrBrowserGone means the connection failure limit was reached.
	ErrBrowserGone = errors.New("browser connection lost")
)

// Recorder persists detected tracks
type Recorder interface {
	Append(t tracklog.Track) error
}

// Options tunes the monitor
type Options struct {
	ExpectedDomain        string
	TitleSelector         string
	ArtistSelector        string
	PollInterval          time.Duration
	RetryInterval         time.Duration
	ElementTimeout        time.Duration
	PageLoadTimeout       time.Duration
	PageLoadPoll          time.Duration
	MaxConnectionFailures int // 0 = unlimited
}

// OptionsFromConfig maps the monitor section of the config file
func OptionsFromConfig(c config.MonitorConfig) Options {
	return Options{
		ExpectedDomain:        c.ExpectedDomain,
		TitleSelector:         c.TitleSelector,
		ArtistSelector:        c.ArtistSelector,
		PollInterval:          c.PollInterval,
		RetryInterval:         c.RetryInterval,
		ElementTimeout:        c.ElementTimeout,
		PageLoadTimeout:       c.PageLoadTimeout,
		PageLoadPoll:          500 * time.Millisecond,
		MaxConnectionFailures: c.MaxConnectionFailures,
	}
}

// Monitor runs the page-load wait, the start prompt and the polling loop
// against one session.
type Monitor struct {
	session browser.Session
	log     Recorder
	opts    Options
	in      io.Reader
	console *ui.Console
	sleep   func(ctx context.Context, d time.Duration) error

	state        State
	prevTitle    string
	seen         bool
	connFailures int
	recorded     int
}

// New creates a monitor. in is read once for the start confirmation.
func New(session browser.Session, log Recorder, opts Options, in io.Reader, console *ui.Console) *Monitor {
	return &Monitor{
		session: session,
		log:     log,
		opts:    opts,
		in:      in,
		console: console,
		sleep:   sleepContext,
	}
}

// State returns the current phase
func (m *Monitor) State() State {
	return m.state
}

// Recorded returns how many tracks were appended this run
func (m *Monitor) Recorded() int {
	return m.recorded
}

func (m *Monitor) setState(s State) {
	logging.Debug("monitor state %s -> %s", m.state, s)
	m.state = s
}

// Run blocks until ctx is cancelled or a fatal condition occurs. Cancelling
// ctx is the interrupt path and returns nil. Run never closes the session;
// call Close afterwards on every path.
func (m *Monitor) Run(ctx context.Context) error {
	m.setState(StateWaitingForPageLoad)
	m.console.Info("Waiting for %s to load...", m.opts.ExpectedDomain)
	if err := m.waitForPage(ctx); err != nil {
		return m.finish(ctx, err)
	}

	m.setState(StateWaitingForUserStart)
	m.console.Success("✔ %s loaded. Complete login manually and start playback.", m.opts.ExpectedDomain)
	if err := m.waitForUser(ctx); err != nil {
		return m.finish(ctx, err)
	}

	m.setState(StateMonitoring)
	m.console.Info("Monitoring playback (Ctrl+C to exit)...")
	return m.finish(ctx, m.loop(ctx))
}

func (m *Monitor) finish(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		m.setState(StateStopped)
		m.console.Info("Monitoring stopped by user.")
		return nil
	}
	return err
}

// Close releases the session and moves to CLOSED.
func (m *Monitor) Close() error {
	err := m.session.Close()
	m.setState(StateClosed)
	m.console.Info("Chrome connection closed.")
	return err
}

func (m *Monitor) waitForPage(ctx context.Context) error {
	attempts := int(m.opts.PageLoadTimeout/m.opts.PageLoadPoll) + 1

	var lastURL string
	var lastErr error
	for i := 0; i < attempts; i++ {
		u, err := m.session.CurrentURL(ctx)
		if err == nil && strings.Contains(u, m.opts.ExpectedDomain) {
			logging.Info("page loaded: %s", u)
			return nil
		}
		lastURL, lastErr = u, err

		if err := m.sleep(ctx, m.opts.PageLoadPoll); err != nil {
			return err
		}
	}

	if lastErr != nil {
		return fmt.Errorf("%w: %s not reached within %s: %v", ErrPageLoadTimeout, m.opts.ExpectedDomain, m.opts.PageLoadTimeout, lastErr)
	}
	return fmt.Errorf("%w: %s not reached within %s (at %q)", ErrPageLoadTimeout, m.opts.ExpectedDomain, m.opts.PageLoadTimeout, lastURL)
}

func (m *Monitor) waitForUser(ctx context.Context) error {
	m.console.Prompt("Press ENTER to start monitoring...")

	done := make(chan error, 1)
	go func() {
		_, err := bufio.NewReader(m.in).ReadString('\n')
		done <- err
	}()

	select {
	case <-ctx.Done():
		m.console.Info("")
		return ctx.Err()
	case err := <-done:
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		if errors.Is(err, io.EOF) {
			m.console.Info("")
			logging.Debug("start prompt input closed; starting")
		}
		return nil
	}
}

func (m *Monitor) loop(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		track, err := m.poll(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if fatal := m.handlePollError(err); fatal != nil {
				return fatal
			}
			if err := m.sleep(ctx, m.opts.RetryInterval); err != nil {
				return err
			}
			continue
		}

		m.connFailures = 0
		m.observe(ctx, track)

		if err := m.sleep(ctx, m.opts.PollInterval); err != nil {
			return err
		}
	}
}

func (m *Monitor) poll(ctx context.Context) (tracklog.Track, error) {
	title, err := m.session.VisibleText(ctx, m.opts.TitleSelector, m.opts.ElementTimeout)
	if err != nil {
		return tracklog.Track{}, fmt.Errorf("reading title: %w", err)
	}
	artist, err := m.session.VisibleText(ctx, m.opts.ArtistSelector, m.opts.ElementTimeout)
	if err != nil {
		return tracklog.Track{}, fmt.Errorf("reading artist: %w", err)
	}
	return tracklog.Track{Title: title, Artist: artist}, nil
}

// observe records t when its title differs from the last recorded one.
func (m *Monitor) observe(ctx context.Context, t tracklog.Track) {
	if m.seen && t.Title == m.prevTitle {
		return
	}
	if ctx.Err() != nil {
		return
	}

	m.console.NowPlaying(t.Artist, t.Title)
	if err := m.log.Append(t); err != nil {
		// prevTitle stays put so the next poll retries the write
		m.console.Warn("%v", err)
		logging.Error("track log append failed: %v", err)
		return
	}
	logging.Info("recorded %q by %q", t.Title, t.Artist)

	m.prevTitle = t.Title
	m.seen = true
	m.recorded++
}

// handlePollError reports a failed poll and returns non-nil when monitoring
// must stop.
func (m *Monitor) handlePollError(err error) error {
	switch {
	case errors.Is(err, browser.ErrConnectionLost):
		m.connFailures++
		limit := m.opts.MaxConnectionFailures
		if limit > 0 {
			m.console.Warn("connection to browser lost (%d/%d): %v", m.connFailures, limit, err)
		} else {
			m.console.Warn("connection to browser lost: %v", err)
		}
		logging.Error("connection lost (%d consecutive): %v", m.connFailures, err)
		if limit > 0 && m.connFailures >= limit {
			return fmt.Errorf("%w after %d consecutive failures: %v", ErrBrowserGone, m.connFailures, err)
		}

	case errors.Is(err, browser.ErrElementNotFound):
		// the session answered, so it is alive
		m.connFailures = 0
		m.console.Warn("%v", err)
		logging.Warn("player bar not readable: %v", err)

	default:
		m.console.Warn("%v", err)
		logging.Warn("poll failed: %v", err)
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
