//go:build !windows

package app

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"
)

// shutdownSignals end a foreground watch or a daemon.
var shutdownSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

// daemonExitWait bounds how long --stop waits for the daemon to finish its
// current review and remove its PID file.
const daemonExitWait = 3 * time.Second

func terminateProcess(pid int) error {
	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
		return err
	}
	for deadline := time.Now().Add(daemonExitWait); time.Now().Before(deadline); {
		if !processExists(pid) {
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}
	return fmt.Errorf("still running %s after SIGTERM", daemonExitWait)
}

// processExists reports whether pid names a live process. EPERM means it
// exists but belongs to another user.
func processExists(pid int) bool {
	err := syscall.Kill(pid, 0)
	return err == nil || errors.Is(err, syscall.EPERM)
}
