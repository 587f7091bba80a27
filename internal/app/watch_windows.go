//go:build windows

package app

import "os"

// shutdownSignals end a foreground watch or a daemon.
var shutdownSignals = []os.Signal{os.Interrupt}

// terminateProcess kills the daemon outright; there is no SIGTERM to send,
// so the daemon cannot remove its own PID file.
func terminateProcess(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return proc.Kill()
}

// processExists reports whether pid names a live process. FindProcess opens
// a process handle here and fails for unknown PIDs.
func processExists(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	_ = proc.Release()
	return true
}
