package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lance13c/ytmon/internal/browser"
	"github.com/lance13c/ytmon/internal/config"
	"github.com/lance13c/ytmon/internal/logging"
	"github.com/lance13c/ytmon/internal/monitor"
	"github.com/lance13c/ytmon/internal/procs"
	"github.com/lance13c/ytmon/internal/tracklog"
	"github.com/lance13c/ytmon/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const totalSteps = 5

func registerMonitorFlags(cmd *cobra.Command) {
	d := config.DefaultConfig()
	f := cmd.Flags()

	f.String("chrome-binary", "", "path to the Chrome executable (required)")
	f.String("chromedriver", "", "path to the ChromeDriver executable (required)")
	f.String("user-data-dir", "", "Chrome profile directory, created if absent (required)")
	f.Int("debug-port", d.Chrome.DebugPort, "Chrome remote debugging port")
	f.String("log-file", d.LogFile, "track log file")
	f.Int("wait-time", d.Chrome.WaitTime, "seconds to wait for Chrome to initialize")
	f.String("backend", d.Driver.Backend, "session backend: webdriver or cdp")
	f.Int("driver-port", d.Driver.Port, "ChromeDriver service port")
	f.Int("max-connection-failures", d.Monitor.MaxConnectionFailures, "consecutive lost-connection polls before giving up (0 = never)")
	f.Bool("skip-cleanup", false, "do not terminate running Chrome and ChromeDriver processes")
}

// applyFlags overlays the flags the user actually set.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()

	strs := []struct {
		name string
		dst  *string
	}{
		{"chrome-binary", &cfg.Chrome.Binary},
		{"chromedriver", &cfg.Driver.Path},
		{"user-data-dir", &cfg.Chrome.UserDataDir},
		{"log-file", &cfg.LogFile},
		{"backend", &cfg.Driver.Backend},
	}
	for _, s := range strs {
		if f.Lookup(s.name) == nil || !f.Changed(s.name) {
			continue
		}
		v, err := f.GetString(s.name)
		if err != nil {
			return err
		}
		*s.dst = v
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"debug-port", &cfg.Chrome.DebugPort},
		{"wait-time", &cfg.Chrome.WaitTime},
		{"driver-port", &cfg.Driver.Port},
		{"max-connection-failures", &cfg.Monitor.MaxConnectionFailures},
	}
	for _, i := range ints {
		if f.Lookup(i.name) == nil || !f.Changed(i.name) {
			continue
		}
		v, err := f.GetInt(i.name)
		if err != nil {
			return err
		}
		*i.dst = v
	}

	if f.Lookup("skip-cleanup") != nil && f.Changed("skip-cleanup") {
		skip, err := f.GetBool("skip-cleanup")
		if err != nil {
			return err
		}
		cfg.Cleanup.Enabled = !skip
	}

	return nil
}

func runMonitor(cmd *cobra.Command, args []string) error {
	console := ui.NewConsole(cmd.OutOrStdout())

	cfg, err := loadConfig(cmd)
	if err != nil {
		console.Error("%v", err)
		return &exitError{code: 1}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := newPipeline(console, cmd.InOrStdin())
	if code := p.run(ctx, cfg); code != 0 {
		return &exitError{code: code}
	}
	return nil
}

// pipeline is the startup sequence followed by the monitoring loop. The
// side-effecting steps are fields so tests can replace them.
type pipeline struct {
	console    *ui.Console
	in         io.Reader
	isTerminal func() bool

	sweep     func(ctx context.Context, names []string) int
	launch    func(opts browser.LaunchOptions) (*browser.Process, error)
	waitReady func(ctx context.Context, addr string, timeout time.Duration) (*browser.VersionInfo, error)
	connect   func(ctx context.Context, cfg *config.Config, version *browser.VersionInfo) (browser.Session, error)
	newMon    func(s browser.Session, rec monitor.Recorder, opts monitor.Options, in io.Reader, c *ui.Console) runner
}

// runner is the part of *monitor.Monitor the pipeline drives
type runner interface {
	Run(ctx context.Context) error
	Close() error
	Recorded() int
}

func newPipeline(console *ui.Console, in io.Reader) *pipeline {
	return &pipeline{
		console: console,
		in:      in,
		isTerminal: func() bool {
			f, ok := in.(*os.File)
			return ok && term.IsTerminal(int(f.Fd()))
		},
		sweep: func(ctx context.Context, names []string) int {
			return procs.NewSweeper(names).Kill(ctx)
		},
		launch:    browser.Launch,
		waitReady: browser.WaitForDebugger,
		connect:   browser.Connect,
		newMon: func(s browser.Session, rec monitor.Recorder, opts monitor.Options, in io.Reader, c *ui.Console) runner {
			return monitor.New(s, rec, opts, in, c)
		},
	}
}

// run returns the process exit status.
func (p *pipeline) run(ctx context.Context, cfg *config.Config) int {
	c := p.console

	if err := cfg.Validate(); err != nil {
		c.Error("%v", err)
		return 1
	}

	if cfg.Cleanup.Enabled {
		c.Step(1, totalSteps, "Cleaning up existing Chrome instances...")
		names := cfg.Cleanup.ProcessNames
		if len(names) == 0 {
			names = procs.DefaultNames()
		}
		n := p.sweep(ctx, names)
		logging.Info("terminated %d existing browser/driver processes", n)
	} else {
		c.Step(1, totalSteps, "Skipping cleanup of existing Chrome instances")
	}

	c.Step(2, totalSteps, "Verifying provided paths...")
	if errs := cfg.ValidatePaths(); len(errs) > 0 {
		for _, err := range errs {
			c.Error("%v", err)
			logging.Error("path validation: %v", err)
		}
		return 1
	}

	c.Step(3, totalSteps, "Launching Chrome...")
	proc, err := p.launch(browser.LaunchOptions{
		Binary:      cfg.Chrome.Binary,
		UserDataDir: cfg.Chrome.UserDataDir,
		DebugPort:   cfg.Chrome.DebugPort,
		StartURL:    cfg.Chrome.StartURL,
	})
	if err != nil {
		c.Error("%v", err)
		logging.Error("launch failed: %v", err)
		return 1
	}
	if proc != nil {
		c.Muted("Chrome started (pid %d)", proc.PID())
	}

	c.Step(4, totalSteps, "Waiting up to %d seconds for Chrome to initialize...", cfg.Chrome.WaitTime)
	version, err := p.waitReady(ctx, cfg.DebuggerAddr(), cfg.WaitTimeout())
	if err != nil {
		if ctx.Err() != nil {
			c.Info("Monitoring stopped by user.")
			return 0
		}
		c.Error("Chrome did not become ready: %v", err)
		logging.Error("readiness probe failed: %v", err)
		return 1
	}
	logging.Info("debugger ready: %s (%s)", version.Browser, version.WebSocketDebuggerURL)

	if cfg.Driver.Backend == config.BackendCDP {
		c.Step(5, totalSteps, "Connecting to Chrome via DevTools Protocol...")
	} else {
		c.Step(5, totalSteps, "Connecting to Chrome via WebDriver...")
	}
	session, err := p.connect(ctx, cfg, version)
	if err != nil {
		c.Error("failed to connect to Chrome: %v", err)
		logging.Error("connect failed: %v", err)
		return 1
	}

	log := tracklog.NewFile(cfg.LogFile)
	mon := p.newMon(session, log, monitor.OptionsFromConfig(cfg.Monitor), p.in, c)
	defer func() {
		if err := mon.Close(); err != nil {
			logging.Warn("closing session: %v", err)
		}
	}()

	if !p.isTerminal() {
		logging.Debug("stdin is not a terminal; a line or end of input starts monitoring")
	}

	if err := mon.Run(ctx); err != nil {
		if errors.Is(err, monitor.ErrPageLoadTimeout) || errors.Is(err, monitor.ErrBrowserGone) {
			c.Error("%v", err)
		} else {
			c.Error("monitoring failed: %v", err)
		}
		logging.Error("monitor stopped: %v", err)
	}
	logging.Info("%d tracks recorded to %s", mon.Recorded(), log.Path())

	return 0
}
