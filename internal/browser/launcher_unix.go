//go:build !windows

package browser

import (
	"os/exec"
	"syscall"
)

// detach puts the browser in its own process group so a terminal Ctrl+C
// reaches ytmon only.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
