// Package procs stops browser and driver processes left over from an earlier
// run so the debugging port and profile directory are free.
package procs

import (
	"context"
	"errors"
	"os"
	"runtime"
	"strings"

	"github.com/lance13c/ytmon/internal/logging"
	"github.com/shirou/gopsutil/v4/process"
)

// DefaultNames returns the executable names swept on this platform.
func DefaultNames() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{"chrome.exe", "chromedriver.exe"}
	case "darwin":
		return []string{"Google Chrome", "Chromium", "chromedriver"}
	default:
		return []string{"chrome", "google-chrome", "chromium", "chromium-browser", "chromedriver"}
	}
}

// candidate is the slice of *process.Process the sweeper needs.
type candidate interface {
	NameWithContext(ctx context.Context) (string, error)
	KillWithContext(ctx context.Context) error
}

// Sweeper kills processes by executable name.
type Sweeper struct {
	names map[string]struct{}
	list  func(ctx context.Context) ([]candidate, error)
}

// NewSweeper matches names case-insensitively. An empty list means
// DefaultNames.
func NewSweeper(names []string) *Sweeper {
	if len(names) == 0 {
		names = DefaultNames()
	}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[strings.ToLower(n)] = struct{}{}
	}
	return &Sweeper{names: set, list: listProcesses}
}

// Kill terminates every matching process and returns how many were killed.
// It never fails: listing errors, vanished processes and denied kills are
// logged and skipped.
func (s *Sweeper) Kill(ctx context.Context) int {
	procs, err := s.list(ctx)
	if err != nil {
		logging.Debug("process listing failed: %v", err)
		return 0
	}

	killed := 0
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		if _, ok := s.names[strings.ToLower(name)]; !ok {
			continue
		}

		if err := p.KillWithContext(ctx); err != nil {
			if !errors.Is(err, process.ErrorProcessNotRunning) {
				logging.Debug("failed to kill %s: %v", name, err)
			}
			continue
		}
		logging.Info("killed stale process %s", name)
		killed++
	}
	return killed
}

func listProcesses(ctx context.Context) ([]candidate, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	self := int32(os.Getpid())
	out := make([]candidate, 0, len(procs))
	for _, p := range procs {
		if p.Pid == self {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}
