package app

import (
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/dhirajnair/pspec/internal/config"
	"github.com/dhirajnair/pspec/internal/output"
	"github.com/dhirajnair/pspec/internal/pysyntax"
	"github.com/dhirajnair/pspec/internal/review"
	"github.com/dhirajnair/pspec/internal/store"
)

var doctorJSON bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check whether the pspec setup is healthy",
	Long: `Run a series of health checks against your pspec configuration, the
Python grammar, the history database and the watch daemon. Prints a
pass/fail line for each check and a summary of how many checks passed.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(doctorCmd)
}

// doctorCheck holds the result of a single health check.
type doctorCheck struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// doctorOutput is the JSON-serializable result of the doctor command.
type doctorOutput struct {
	Checks      []doctorCheck `json:"checks"`
	PassedCount int           `json:"passed"`
	TotalCount  int           `json:"total"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	checks := []doctorCheck{
		checkConfigFile(flagConfig),
		checkGrammar(),
		checkRuleCatalogue(),
		checkDatabase(config.DBPath()),
		checkWatchDaemon(),
		checkNotifier(runtime.GOOS, exec.LookPath),
		checkServerAddr(cfg.Server.Addr),
		checkCORSOrigins(cfg.Server.CORSOrigins),
	}

	passed := 0
	for _, c := range checks {
		if c.Passed {
			passed++
		}
	}

	out := cmd.OutOrStdout()
	if doctorJSON {
		return output.WriteJSON(out, doctorOutput{
			Checks:      checks,
			PassedCount: passed,
			TotalCount:  len(checks),
		})
	}

	fmt.Fprintln(out, output.Section("Doctor"))
	fmt.Fprintln(out)
	for _, c := range checks {
		renderDoctorCheck(out, c)
	}
	fmt.Fprintln(out)
	summary := fmt.Sprintf("%d/%d checks passed", passed, len(checks))
	if passed == len(checks) {
		fmt.Fprintf(out, " %s\n\n", output.StyleSuccess.Render(summary))
	} else {
		fmt.Fprintf(out, " %s\n\n", output.StyleWarning.Render(summary))
	}
	return nil
}

// renderDoctorCheck prints a single check result line.
func renderDoctorCheck(out io.Writer, c doctorCheck) {
	indicator := output.StyleSuccess.Render("✓")
	if !c.Passed {
		indicator = output.StyleWarning.Render("✗")
	}
	label := output.StyleBold.Render(c.Name)
	detail := output.StyleMuted.Render(c.Message)
	fmt.Fprintf(out, "  %s  %-30s %s\n", indicator, label, detail)
}

// checkConfigFile reports which config file is in effect. Running on
// defaults passes.
func checkConfigFile(explicit string) doctorCheck {
	path := explicit
	if path == "" {
		path = filepath.Join(config.ConfigDir(), config.DefaultConfigFile)
	}
	if _, err := os.Stat(path); err != nil {
		if explicit != "" {
			return doctorCheck{Name: "Config file", Passed: false, Message: fmt.Sprintf("not found: %s", path)}
		}
		return doctorCheck{Name: "Config file", Passed: true, Message: "using defaults (no " + path + ")"}
	}
	return doctorCheck{Name: "Config file", Passed: true, Message: path}
}

// checkGrammar parses a small module to confirm the Python grammar is linked.
func checkGrammar() doctorCheck {
	tree, err := pysyntax.Parse("def ok(x):\n    return x\n")
	if err != nil {
		return doctorCheck{Name: "Python grammar", Passed: false, Message: err.Error()}
	}
	tree.Close()
	return doctorCheck{Name: "Python grammar", Passed: true, Message: "tree-sitter python parser loaded"}
}

func checkRuleCatalogue() doctorCheck {
	counts := map[string]int{}
	for _, d := range review.Catalog() {
		if d.Engine == review.EngineBestPractice {
			counts["best practice"]++
		} else {
			counts["analysis"]++
		}
	}
	return doctorCheck{
		Name:    "Rule catalogue",
		Passed:  counts["best practice"] > 0 && counts["analysis"] > 0,
		Message: fmt.Sprintf("%d analysis rules, %d best-practice rules", counts["analysis"], counts["best practice"]),
	}
}

// checkDatabase opens the history database and reports its schema version.
// A missing database passes; it is created on the first --save.
func checkDatabase(dbPath string) doctorCheck {
	if _, err := os.Stat(dbPath); err != nil {
		return doctorCheck{
			Name:    "History database",
			Passed:  true,
			Message: fmt.Sprintf("not created yet at %s (run 'pspec check <file> --save')", dbPath),
		}
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return doctorCheck{Name: "History database", Passed: false, Message: err.Error()}
	}
	defer func() { _ = db.Close() }()
	version, err := db.SchemaVersion()
	if err != nil {
		return doctorCheck{Name: "History database", Passed: false, Message: err.Error()}
	}
	reviews, err := db.ListReviews("", 0)
	if err != nil {
		return doctorCheck{Name: "History database", Passed: false, Message: err.Error()}
	}
	return doctorCheck{
		Name:    "History database",
		Passed:  true,
		Message: fmt.Sprintf("%s (schema v%d, %d reviews)", dbPath, version, len(reviews)),
	}
}

// checkWatchDaemon reports whether a watch daemon is running. Not running
// is not a failure; a stale PID file is.
func checkWatchDaemon() doctorCheck {
	pid, err := readPID()
	if err != nil {
		return doctorCheck{Name: "Watch daemon", Passed: true, Message: "not running"}
	}
	if !processExists(pid) {
		return doctorCheck{
			Name:    "Watch daemon",
			Passed:  false,
			Message: fmt.Sprintf("PID %d is not running (stale PID file %s)", pid, pidFilePath()),
		}
	}
	return doctorCheck{Name: "Watch daemon", Passed: true, Message: fmt.Sprintf("running (PID %d)", pid)}
}

// checkNotifier looks for the desktop notification command watch uses.
func checkNotifier(goos string, lookPath func(string) (string, error)) doctorCheck {
	var tool string
	switch goos {
	case "darwin":
		tool = "osascript"
	case "linux":
		tool = "notify-send"
	default:
		return doctorCheck{Name: "Desktop notifications", Passed: false, Message: "not supported on " + goos}
	}
	path, err := lookPath(tool)
	if err != nil {
		return doctorCheck{Name: "Desktop notifications", Passed: false, Message: tool + " not found on PATH"}
	}
	return doctorCheck{Name: "Desktop notifications", Passed: true, Message: path}
}

func checkServerAddr(addr string) doctorCheck {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return doctorCheck{Name: "Server address", Passed: false, Message: fmt.Sprintf("%q: %v", addr, err)}
	}
	return doctorCheck{Name: "Server address", Passed: true, Message: addr}
}

// checkCORSOrigins requires every origin to be "*" or scheme://host.
func checkCORSOrigins(origins []string) doctorCheck {
	if len(origins) == 0 {
		return doctorCheck{Name: "CORS origins", Passed: false, Message: "none configured; browsers cannot call the API"}
	}
	for _, o := range origins {
		if o == "*" {
			continue
		}
		u, err := url.Parse(o)
		if err != nil || u.Scheme == "" || u.Host == "" || (u.Path != "" && u.Path != "/") {
			return doctorCheck{Name: "CORS origins", Passed: false, Message: fmt.Sprintf("invalid origin %q", o)}
		}
	}
	return doctorCheck{Name: "CORS origins", Passed: true, Message: fmt.Sprintf("%d allowed", len(origins))}
}
