package app

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dhirajnair/pspec/internal/output"
	"github.com/dhirajnair/pspec/internal/review"
)

var rulesJSON bool

var rulesCmd = &cobra.Command{
	Use:   "rules [rule-id]",
	Short: "List rules or explain one",
	Long: `Without arguments, list every analysis and best-practice rule. With a
rule id, print its rationale, authority and suggested fix. PEP 8 codes
such as E501 are accepted too.

Examples:
  pspec rules
  pspec rules pybp.error.swallow
  pspec rules E722 --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRules,
}

func init() {
	rulesCmd.Flags().BoolVar(&rulesJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(rulesCmd)
}

func runRules(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		doc, ok := review.Explain(args[0])
		if !ok {
			return fmt.Errorf("unknown rule: %s", args[0])
		}
		if rulesJSON {
			return output.WriteJSON(out, doc)
		}
		return printRuleDoc(out, doc)
	}

	docs := review.Catalog()
	if rulesJSON {
		return output.WriteJSON(out, docs)
	}
	tbl := output.NewTable("ENGINE", "RULE", "SEVERITY", "TITLE").WithRole(output.RoleSeverity, "SEVERITY")
	for _, d := range docs {
		tbl.AddRow(d.Engine, d.ID, d.Severity, d.Title)
	}
	if _, err := fmt.Fprintln(out, output.Section(fmt.Sprintf("Rules · %d", len(docs)))); err != nil {
		return err
	}
	_, err := fmt.Fprintln(out, tbl.String())
	return err
}

func printRuleDoc(out io.Writer, d review.RuleDoc) error {
	fmt.Fprintln(out, output.Section(d.ID))
	field := func(label, value string) {
		if value != "" {
			fmt.Fprintf(out, " %s %s\n", output.StyleLabel.Render(label), value)
		}
	}
	field("Title", d.Title)
	field("Engine", d.Engine)
	field("Category", d.Category)
	field("Severity", output.SeverityStyle(d.Severity).Render(d.Severity))
	field("Description", d.Description)
	field("Rationale", d.Rationale)
	field("Authority", d.Authority)
	field("Citation", d.Citation)
	field("Detection", d.DetectionStrategy)
	field("Thresholds", d.Thresholds)
	field("Suggestion", d.Suggestion)
	_, err := fmt.Fprintln(out)
	return err
}
