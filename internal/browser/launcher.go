package browser

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync/atomic"

	"github.com/lance13c/ytmon/internal/logging"
)

// LaunchOptions describes the browser process to start
type LaunchOptions struct {
	Binary      string
	UserDataDir string
	DebugPort   int
	StartURL    string
}

// Process is a launched browser. ytmon does not own its lifetime beyond
// starting it; the next run's process sweep stops it.
type Process struct {
	cmd    *exec.Cmd
	exited atomic.Bool
}

// LaunchArgs returns the command-line flags passed to the browser.
func LaunchArgs(opts LaunchOptions) []string {
	return []string{
		fmt.Sprintf("--remote-debugging-port=%d", opts.DebugPort),
		fmt.Sprintf("--user-data-dir=%s", opts.UserDataDir),
		"--no-first-run",
		"--new-window",
		opts.StartURL,
	}
}

// Launch creates the profile directory and starts the browser, detached
// from ytmon's process group, without waiting for it to become ready. Use
// WaitForDebugger before connecting.
func Launch(opts LaunchOptions) (*Process, error) {
	if err := os.MkdirAll(opts.UserDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create user data directory: %w", err)
	}

	cmd := exec.Command(opts.Binary, LaunchArgs(opts)...)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	detach(cmd)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	logging.Info("Launched %s (pid %d) on debug port %d", opts.Binary, cmd.Process.Pid, opts.DebugPort)

	p := &Process{cmd: cmd}
	go func() {
		err := cmd.Wait()
		p.exited.Store(true)
		logging.Debug("browser process %d exited: %v", cmd.Process.Pid, err)
	}()

	return p, nil
}

// PID returns the operating system process id
func (p *Process) PID() int {
	return p.cmd.Process.Pid
}

// Exited reports whether the launched process has terminated
func (p *Process) Exited() bool {
	return p.exited.Load()
}
