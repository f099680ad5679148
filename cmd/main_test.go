package cmd

import (
	"fmt"
	"os"
	"testing"

	"github.com/lance13c/ytmon/internal/logging"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "ytmon-cmd-logs")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	// keeps initConfig from writing diagnostics to the real state directory
	if err := logging.Initialize(dir); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	code := m.Run()
	logging.GetLogger().Close()
	os.RemoveAll(dir)
	os.Exit(code)
}
