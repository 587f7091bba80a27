package app

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/dhirajnair/pspec/internal/config"
	"github.com/dhirajnair/pspec/internal/output"
	"github.com/dhirajnair/pspec/internal/review"
	"github.com/dhirajnair/pspec/internal/store"
)

var (
	historyLimit int
	historyShow  string
	historyRules bool
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history [file]",
	Short: "List saved reviews and how their counts moved",
	Long: `List reviews recorded with 'pspec check --save' or 'pspec watch --save',
newest first. The trend column compares each review's total with the
previous review of the same source.

Examples:
  pspec history
  pspec history app.py --limit 5
  pspec history --show 3f2a9c
  pspec history app.py --rules`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum reviews to list (0 for all)")
	historyCmd.Flags().StringVar(&historyShow, "show", "", "Print the items of the review whose run id starts with this prefix")
	historyCmd.Flags().BoolVar(&historyRules, "rules", false, "Tally rule ids across the listed source's reviews")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(historyCmd)
}

// newStoreReview converts a review result into history rows.
func newStoreReview(name, source string, res *review.Result) (*store.Review, []store.ReviewItem) {
	sum := sha256.Sum256([]byte(source))
	r := &store.Review{
		RunID:         res.RunID,
		ReviewedAt:    time.Now().UTC(),
		SourceName:    name,
		SourceSHA256:  hex.EncodeToString(sum[:]),
		IssueCount:    res.Summary.Issues,
		AdvisoryCount: res.Summary.Advisories,
		FindingCount:  res.Summary.Findings,
		Highest:       res.Summary.Highest,
		Version:       appVersion,
	}
	items := res.Items()
	rows := make([]store.ReviewItem, 0, len(items))
	for _, it := range items {
		rows = append(rows, store.ReviewItem{
			Kind:     it.Kind,
			RuleID:   it.RuleID,
			Domain:   it.Domain,
			Line:     it.Line,
			Severity: it.Severity,
			Title:    it.Title,
		})
	}
	return r, rows
}

func runHistory(cmd *cobra.Command, args []string) error {
	if _, err := loadConfig(); err != nil {
		return err
	}
	db, err := store.Open(config.DBPath())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	var source string
	if len(args) == 1 {
		source = args[0]
		if source == "-" {
			source = stdinName
		}
	}
	out := cmd.OutOrStdout()

	switch {
	case historyShow != "":
		return showReview(out, db, historyShow)
	case historyRules:
		return showRuleCounts(out, db, source)
	}

	reviews, err := db.ListReviews(source, historyLimit)
	if err != nil {
		return err
	}
	if historyJSON {
		if reviews == nil {
			reviews = []store.Review{}
		}
		return output.WriteJSON(out, reviews)
	}
	if len(reviews) == 0 {
		_, err := fmt.Fprintln(out, "No saved reviews. Run 'pspec check <file> --save' first.")
		return err
	}

	deltas := trendDeltas(reviews)
	tbl := output.NewTable("RUN", "WHEN", "SOURCE", "ISSUES", "ADVISORIES", "FINDINGS", "HIGHEST", "TREND").
		WithRole(output.RoleCount, "ISSUES", "ADVISORIES", "FINDINGS").
		WithRole(output.RoleSeverity, "HIGHEST")
	for i, r := range reviews {
		trend := output.StyleMuted.Render("new")
		if d, ok := deltas[i]; ok {
			trend = output.TrendArrow(d)
		}
		tbl.AddRow(
			shortRunID(r.RunID),
			r.ReviewedAt.Local().Format("2006-01-02 15:04"),
			r.SourceName,
			fmt.Sprint(r.IssueCount),
			fmt.Sprint(r.AdvisoryCount),
			fmt.Sprint(r.FindingCount),
			r.Highest,
			trend,
		)
	}
	_, err = fmt.Fprintln(out, output.Section("Review history"))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, tbl.String())
	return err
}

// trendDeltas maps the index of each review (newest first) to the change
// in total since the previous review of the same source, when there is one
// in the list.
func trendDeltas(reviews []store.Review) map[int]int {
	deltas := make(map[int]int)
	for i, r := range reviews {
		for j := i + 1; j < len(reviews); j++ {
			if reviews[j].SourceName == r.SourceName {
				deltas[i] = r.Total() - reviews[j].Total()
				break
			}
		}
	}
	return deltas
}

func showReview(out io.Writer, db *store.DB, prefix string) error {
	r, items, err := db.GetReview(prefix)
	if err != nil {
		return err
	}
	if r == nil {
		return fmt.Errorf("no saved review matches %q", prefix)
	}
	if historyJSON {
		if items == nil {
			items = []store.ReviewItem{}
		}
		return output.WriteJSON(out, map[string]any{"review": r, "items": items})
	}

	fmt.Fprintln(out, output.Section(fmt.Sprintf("Review %s", shortRunID(r.RunID))))
	fmt.Fprintf(out, " %s %s\n", output.StyleLabel.Render("Source"), r.SourceName)
	fmt.Fprintf(out, " %s %s\n", output.StyleLabel.Render("Reviewed"), r.ReviewedAt.Local().Format(time.RFC1123))
	fmt.Fprintf(out, " %s %s\n", output.StyleLabel.Render("SHA-256"), r.SourceSHA256)
	fmt.Fprintf(out, " %s %s\n\n", output.StyleLabel.Render("pspec"), r.Version)

	if len(items) == 0 {
		_, err := fmt.Fprintln(out, " No issues found.")
		return err
	}
	tbl := output.NewTable("LINE", "KIND", "SEVERITY", "RULE", "TITLE").
		WithRole(output.RoleCount, "LINE").
		WithRole(output.RoleSeverity, "SEVERITY")
	for _, it := range items {
		tbl.AddRow(
			fmt.Sprint(it.Line),
			it.Kind,
			it.Severity,
			it.RuleID,
			it.Title,
		)
	}
	_, err = fmt.Fprintln(out, tbl.String())
	return err
}

func showRuleCounts(out io.Writer, db *store.DB, source string) error {
	counts, err := db.RuleCounts(source)
	if err != nil {
		return err
	}
	if historyJSON {
		return output.WriteJSON(out, counts)
	}
	if len(counts) == 0 {
		_, err := fmt.Fprintln(out, "No saved reviews.")
		return err
	}

	ids := review.SortedKeys(counts)
	sort.SliceStable(ids, func(i, j int) bool { return counts[ids[i]] > counts[ids[j]] })
	tbl := output.NewTable("RULE", "COUNT").WithRole(output.RoleCount, "COUNT")
	for _, id := range ids {
		tbl.AddRow(id, fmt.Sprint(counts[id]))
	}
	_, err = fmt.Fprintln(out, tbl.String())
	return err
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

