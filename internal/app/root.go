// Package app contains the Cobra command tree for pspec.
package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhirajnair/pspec/internal/config"
	"github.com/dhirajnair/pspec/internal/output"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

// Exit codes.
const (
	ExitSuccess  = 0
	ExitFindings = 1 // a check met its fail-on threshold
	ExitError    = 2
)

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

var (
	flagNoColor bool
	flagVerbose bool
	flagConfig  string
)

var rootCmd = &cobra.Command{
	Use:   "pspec",
	Short: "Review Python snippets against PEP 8, best practices and static analysis",
	Long: `pspec reviews Python source without running it. Every check reports
PEP 8 layout issues with the matching PEP 8 wording, best-practice
advisories with their authority, and findings from the type, data-flow,
error-handling, security and complexity engines, plus insights that
correlate them.

Examples:
  pspec check app.py
  cat snippet.py | pspec check --format json
  pspec check app.py --fail-on warning --save
  pspec rules pybp.func.excessive_length
  pspec serve`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(cmd.ErrOrStderr(), flagVerbose)
		if flagNoColor {
			output.SetNoColor(true)
		}
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(ExitError)
	}
	os.Exit(exitCode)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/pspec/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Show suggestions and debug logging")
}

// setupLogging installs the default slog logger: text on stderr, debug
// level when verbose.
func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// loadConfig reads the configuration and applies its color preference to
// stdout.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	output.AutoColor(os.Stdout, cfg.Output.Color && !flagNoColor)
	return cfg, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print pspec version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "pspec version %s\n", appVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
