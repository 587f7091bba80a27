package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhirajnair/pspec/internal/config"
	"github.com/dhirajnair/pspec/internal/output"
	"github.com/dhirajnair/pspec/internal/review"
	"github.com/dhirajnair/pspec/internal/store"
)

const stdinName = "<stdin>"

var (
	checkFormat         string
	checkDisable        []string
	checkNoBestPractice bool
	checkNoStyle        bool
	checkFailOn         string
	checkSave           bool
	checkMaxLineLength  int
	checkIgnore         []string
)

var checkCmd = &cobra.Command{
	Use:   "check [file|-]",
	Short: "Review a Python file or stdin",
	Long: `Review one Python source file, or stdin when no file or "-" is given.
The source is parsed, never executed.

Engines: types, dataflow, errors, security, metrics, insights,
best_practice and style. All run unless disabled in the config file or
with --disable.

Exit codes: 0 when nothing meets --fail-on, 1 when something does,
2 on errors.

Examples:
  pspec check app.py
  pspec check app.py --format sarif > pspec.sarif
  pspec check - --disable style,metrics < snippet.py
  pspec check app.py --fail-on advisory --save`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&checkFormat, "format", "f", "", "Output format: "+strings.Join(output.Formats, ", ")+" (default from config)")
	checkCmd.Flags().StringSliceVar(&checkDisable, "disable", nil, "Engines to turn off (comma-separated)")
	checkCmd.Flags().BoolVar(&checkNoBestPractice, "no-best-practice", false, "Skip best-practice advisories")
	checkCmd.Flags().BoolVar(&checkNoStyle, "no-style", false, "Skip PEP 8 style checks")
	checkCmd.Flags().StringVar(&checkFailOn, "fail-on", "", "Exit 1 when anything is at or above: "+strings.Join(review.FailOnLevels, ", ")+" (default from config)")
	checkCmd.Flags().BoolVar(&checkSave, "save", false, "Record the review in the history database")
	checkCmd.Flags().IntVar(&checkMaxLineLength, "max-line-length", 0, "E501 limit (default from config)")
	checkCmd.Flags().StringSliceVar(&checkIgnore, "ignore", nil, "Extra PEP 8 code prefixes to ignore (comma-separated)")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	name, source, err := readSource(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	opts, err := checkOptions(cfg)
	if err != nil {
		return err
	}

	format := checkFormat
	if format == "" {
		format = cfg.Output.Format
	}
	w, err := output.GetWriter(format)
	if err != nil {
		return err
	}
	if tw, ok := w.(*output.TextWriter); ok {
		tw.Verbose = flagVerbose
	}

	failOn := checkFailOn
	if failOn == "" {
		failOn = cfg.FailOn
	}
	if !slices.Contains(review.FailOnLevels, strings.ToLower(strings.TrimSpace(failOn))) {
		return fmt.Errorf("invalid --fail-on %q: want one of %s", failOn, strings.Join(review.FailOnLevels, ", "))
	}

	res, err := review.Run(cmd.Context(), source, opts)
	if err != nil {
		return fmt.Errorf("reviewing %s: %w", name, err)
	}

	if err := w.Write(cmd.OutOrStdout(), output.NewReport("pspec", appVersion, name, res)); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	if checkSave {
		if err := saveReview(config.DBPath(), name, source, res); err != nil {
			return err
		}
	}

	hit, err := res.MeetsThreshold(failOn)
	if err != nil {
		return err
	}
	if hit {
		slog.Debug("fail-on threshold met", "threshold", failOn, "highest", res.Summary.Highest)
		exitCode = ExitFindings
	}
	return nil
}

// checkOptions applies the check flags on top of the configured options.
func checkOptions(cfg *config.Config) (review.Options, error) {
	opts := cfg.ReviewOptions()
	if checkNoBestPractice {
		opts.BestPractice = false
	}
	if checkNoStyle {
		opts.Style = false
	}
	if err := opts.Disable(checkDisable...); err != nil {
		return opts, err
	}
	if checkMaxLineLength > 0 {
		opts.StyleOptions.MaxLineLength = checkMaxLineLength
	}
	opts.StyleOptions.Ignore = append(slices.Clone(opts.StyleOptions.Ignore), checkIgnore...)
	return opts, nil
}

// readSource returns the display name and contents of the file in args, or
// of stdin when args is empty or "-".
func readSource(stdin io.Reader, args []string) (string, string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", fmt.Errorf("reading stdin: %w", err)
		}
		return stdinName, string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", fmt.Errorf("reading %s: %w", args[0], err)
	}
	return filepath.Clean(args[0]), string(data), nil
}

// saveReview records res in the history database at dbPath.
func saveReview(dbPath, name, source string, res *review.Result) error {
	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.InsertReview(newStoreReview(name, source, res)); err != nil {
		return fmt.Errorf("saving review: %w", err)
	}
	slog.Debug("review saved", "run_id", res.RunID, "db", dbPath)
	return nil
}
