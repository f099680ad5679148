//go:build windows

package browser

import (
	"os/exec"
	"syscall"
)

// detach starts the browser in a new process group so console Ctrl+C
// events reach ytmon only.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP}
}
