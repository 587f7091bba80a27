package watcher

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
)

// Notifier delivers alerts as desktop notifications: osascript on macOS,
// notify-send on Linux. When neither works, or on other systems, alerts
// are written to Fallback.
type Notifier struct {
	// MinLevel drops alerts below it; empty delivers everything.
	MinLevel string

	// Fallback receives alerts that cannot be shown; nil means stderr.
	Fallback io.Writer

	goos string
	run  func(name string, args ...string) error
}

// NewNotifier returns a notifier for the current platform.
func NewNotifier(minLevel string) *Notifier {
	return &Notifier{
		MinLevel: minLevel,
		goos:     runtime.GOOS,
		run: func(name string, args ...string) error {
			if _, err := exec.LookPath(name); err != nil {
				return err
			}
			return exec.Command(name, args...).Run()
		},
	}
}

// Notify delivers one alert.
func (n *Notifier) Notify(alert Alert) error {
	if n.MinLevel != "" && levelRank(alert.Level) < levelRank(n.MinLevel) {
		return nil
	}
	var err error
	switch n.goos {
	case "darwin":
		script := fmt.Sprintf(`display notification %q with title "pspec" subtitle %q`, alert.Message, alert.Title)
		err = n.run("osascript", "-e", script)
	case "linux":
		err = n.run("notify-send", "pspec: "+alert.Title, alert.Message)
	default:
		err = fmt.Errorf("no desktop notifications on %s", n.goos)
	}
	if err != nil {
		return n.fallback(alert)
	}
	return nil
}

func (n *Notifier) fallback(alert Alert) error {
	w := n.Fallback
	if w == nil {
		w = os.Stderr
	}
	_, err := fmt.Fprintf(w, "[%s] %s: %s\n", alert.Level, alert.Title, alert.Message)
	return err
}
