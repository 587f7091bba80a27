package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dhirajnair/pspec/internal/config"
	"github.com/dhirajnair/pspec/internal/output"
	"github.com/dhirajnair/pspec/internal/review"
	"github.com/dhirajnair/pspec/internal/watcher"
)

var (
	watchDaemon      bool
	watchInterval    string
	watchStop        bool
	watchQuiet       bool
	watchSave        bool
	watchNotifyLevel string
)

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Re-review a file whenever it changes and alert on new results",
	Long: `Poll a Python file and review it again whenever its modification time
or size changes. New warnings raise critical alerts, new advisories and
issues raise warnings, and resolved results are reported as info.
Alerts at or above --notify-level are also sent as desktop notifications.

Examples:
  pspec watch app.py                   # run in foreground (ctrl-c to stop)
  pspec watch app.py --interval 10s    # poll every 10 seconds (default: 2s)
  pspec watch app.py --save            # record every review in history
  pspec watch app.py --daemon          # run in background, write PID file
  pspec watch --stop                   # stop the background daemon`,
	Args: func(cmd *cobra.Command, args []string) error {
		if watchStop {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchDaemon, "daemon", false, "Run in background mode (write PID file, log to file)")
	watchCmd.Flags().StringVar(&watchInterval, "interval", "2s", "Poll interval as duration string (e.g. 500ms, 10s)")
	watchCmd.Flags().BoolVar(&watchStop, "stop", false, "Stop a running background daemon")
	watchCmd.Flags().BoolVar(&watchQuiet, "quiet", false, "Suppress terminal output, only send notifications")
	watchCmd.Flags().BoolVar(&watchSave, "save", false, "Record every review in the history database")
	watchCmd.Flags().StringVar(&watchNotifyLevel, "notify-level", "warning", "Lowest alert level sent as a desktop notification: info, warning, critical")
	rootCmd.AddCommand(watchCmd)
}

// pidFilePath returns the path to the daemon PID file.
func pidFilePath() string {
	return filepath.Join(config.ConfigDir(), "watch.pid")
}

// logFilePath returns the path to the daemon log file.
func logFilePath() string {
	return filepath.Join(config.ConfigDir(), "watch.log")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchStop {
		return stopDaemon(cmd.OutOrStdout())
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	interval, err := time.ParseDuration(watchInterval)
	if err != nil {
		return fmt.Errorf("invalid interval %q: %w", watchInterval, err)
	}
	if interval < 100*time.Millisecond {
		return fmt.Errorf("interval must be at least 100ms, got %s", interval)
	}
	switch watchNotifyLevel {
	case "info", "warning", "critical":
	default:
		return fmt.Errorf("invalid --notify-level %q: want info, warning or critical", watchNotifyLevel)
	}

	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolving %s: %w", args[0], err)
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("watching %s: %w", args[0], err)
	}

	opts := cfg.ReviewOptions()
	if watchDaemon {
		return runDaemon(cmd.Context(), path, opts, interval)
	}
	return runForeground(cmd.Context(), cmd.OutOrStdout(), path, opts, interval)
}

// newFileWatcher wires a watcher to notifications, the alert sink and,
// with --save, the history database.
func newFileWatcher(path string, opts review.Options, interval time.Duration, sink func(watcher.Alert)) *watcher.Watcher {
	notifier := watcher.NewNotifier(watchNotifyLevel)
	notifier.Fallback = io.Discard
	w := watcher.New(path, interval, opts, func(a watcher.Alert) {
		if err := notifier.Notify(a); err != nil {
			slog.Debug("notification failed", "err", err)
		}
		sink(a)
	})
	if watchSave {
		dbPath := config.DBPath()
		w.OnReview = func(source string, res *review.Result) {
			if err := saveReview(dbPath, path, source, res); err != nil {
				slog.Warn("saving review", "err", err)
			}
		}
	}
	return w
}

// runForeground runs the watcher in the foreground with live terminal output.
func runForeground(parent context.Context, out io.Writer, path string, opts review.Options, interval time.Duration) error {
	ctx, stop := signal.NotifyContext(parent, shutdownSignals...)
	defer stop()

	if !watchQuiet {
		fmt.Fprintf(out, "pspec watching %s... (checking every %s)\n", path, interval)
	}

	w := newFileWatcher(path, opts, interval, func(a watcher.Alert) {
		if !watchQuiet {
			printAlert(out, a)
		}
	})

	initial, err := w.Baseline(ctx)
	if err != nil {
		return err
	}
	if !watchQuiet {
		sum := initial.Result().Summary
		fmt.Fprintf(out, "[%s] %s Baseline: %d issues, %d advisories, %d findings\n",
			time.Now().Format("15:04:05"),
			checkMark(),
			sum.Issues, sum.Advisories, sum.Findings)
	}

	err = w.Run(ctx)
	if errors.Is(err, context.Canceled) {
		if !watchQuiet {
			fmt.Fprintln(out, "\nStopped.")
		}
		return nil
	}
	return err
}

// runDaemon sets up PID and log files, then runs the watcher. The actual
// backgrounding should be done by the caller (nohup, &, etc.) since Go
// cannot reliably fork.
func runDaemon(parent context.Context, path string, opts review.Options, interval time.Duration) error {
	configDir := config.ConfigDir()
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	if pid, err := readPID(); err == nil {
		if processExists(pid) {
			return fmt.Errorf("daemon already running (PID %d). Use --stop to stop it", pid)
		}
		// Stale PID file.
		_ = os.Remove(pidFilePath())
	}

	pid := os.Getpid()
	if err := os.WriteFile(pidFilePath(), []byte(strconv.Itoa(pid)), 0o644); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer func() { _ = os.Remove(pidFilePath()) }()

	logFile, err := os.OpenFile(logFilePath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer func() { _ = logFile.Close() }()

	ctx, stop := signal.NotifyContext(parent, shutdownSignals...)
	defer stop()

	writeLog(logFile, "pspec daemon started (PID %d, file %s, interval %s)", pid, path, interval)

	w := newFileWatcher(path, opts, interval, func(a watcher.Alert) {
		writeLog(logFile, "[%s] %s: %s", a.Level, a.Title, a.Message)
	})

	err = w.Run(ctx)
	if errors.Is(err, context.Canceled) {
		writeLog(logFile, "daemon stopped")
		return nil
	}
	return err
}

// ErrNoDaemon is returned by watch --stop when no daemon is running.
var ErrNoDaemon = errors.New("no watch daemon running")

// stopDaemon stops the daemon named by the PID file. A PID file naming a
// dead process is removed.
func stopDaemon(out io.Writer) error {
	pid, err := readPID()
	if err != nil {
		return fmt.Errorf("%w: reading PID file: %v", ErrNoDaemon, err)
	}
	if !processExists(pid) {
		_ = os.Remove(pidFilePath())
		return fmt.Errorf("%w: PID %d is not active, removed stale PID file", ErrNoDaemon, pid)
	}
	if err := terminateProcess(pid); err != nil {
		return fmt.Errorf("stopping watch daemon (PID %d): %w", pid, err)
	}
	_ = os.Remove(pidFilePath())
	slog.Debug("watch daemon stopped", "pid", pid)
	_, err = fmt.Fprintf(out, "Stopped watch daemon (PID %d)\n", pid)
	return err
}

// readPID reads the daemon PID from the PID file.
func readPID() (int, error) {
	data, err := os.ReadFile(pidFilePath())
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

// writeLog writes a timestamped line to the log file.
func writeLog(f io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	_, _ = fmt.Fprintf(f, "[%s] %s\n", timestamp, msg)
}

// printAlert formats and prints an alert to the terminal.
func printAlert(out io.Writer, a watcher.Alert) {
	timestamp := a.Time.Format("15:04:05")
	fmt.Fprintf(out, "[%s] %s %s\n", timestamp, alertIcon(a.Level), a.Title)
	if a.Message != "" {
		fmt.Fprintf(out, "         %s\n", output.StyleMuted.Render(a.Message))
	}
}

// alertIcon returns the terminal indicator for an alert level.
func alertIcon(level string) string {
	switch level {
	case "critical":
		return output.StyleError.Render("●")
	case "warning":
		return output.StyleWarning.Render("▲")
	case "info":
		return output.StyleSuccess.Render("✓")
	default:
		return " "
	}
}

// checkMark returns a terminal check mark indicator.
func checkMark() string {
	return output.StyleSuccess.Render("✓")
}
