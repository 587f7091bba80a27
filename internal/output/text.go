package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhirajnair/pspec/internal/finding"
	"github.com/dhirajnair/pspec/internal/review"
)

// TextWriter outputs a human-readable, sectioned report.
type TextWriter struct {
	// Verbose adds explanations and suggestions under every entry.
	Verbose bool
}

func (t *TextWriter) Write(w io.Writer, report *Report) error {
	ew := &errWriter{w: w}
	r := &report.Result

	ew.printf(" %s %s\n", StyleBold.Render("pspec review:"), report.Source)
	ew.printf(" %s\n", StyleMuted.Render(fmt.Sprintf("run %s", r.RunID)))

	if len(r.Issues)+len(r.Advisories)+len(r.Findings) == 0 {
		ew.printf("\n %s\n", StyleSuccess.Render("No issues found."))
		return ew.err
	}

	if len(r.Issues) > 0 {
		ew.println(Section(fmt.Sprintf("Style (PEP 8) · %d", len(r.Issues))))
		for _, i := range r.Issues {
			ew.printf("  %s  %s  %s\n",
				StyleMuted.Render(position(i.Line, i.Column)),
				StyleError.Render(i.Code),
				i.Message)
			if t.Verbose {
				t.detail(ew, i.PEP8Section+": "+i.PEP8Quote, i.Suggestion)
			}
		}
	}

	if len(r.Advisories) > 0 {
		ew.println(Section(fmt.Sprintf("Best practice · %d", len(r.Advisories))))
		for _, a := range r.Advisories {
			ew.printf("  %s  %s  %s  %s%s\n",
				StyleMuted.Render(position(a.Line, nil)),
				SeverityStyle(string(a.Severity)).Render(string(a.Severity)),
				a.RuleID,
				a.Title,
				scope(a.Function, a.ClassName))
			if t.Verbose {
				t.detail(ew, a.Explanation, a.Suggestion)
				ew.printf("        %s\n", StyleMuted.Render(a.Authority+", "+a.Citation))
			}
		}
	}

	if len(r.Findings) > 0 {
		ew.println(Section(fmt.Sprintf("Analysis · %d", len(r.Findings))))
		for _, f := range r.Findings {
			ew.printf("  %s  %s  %s  %s%s\n",
				StyleMuted.Render(position(f.Location.Line, f.Location.Column)),
				SeverityStyle(string(f.Severity)).Render(string(f.Severity)),
				f.RuleID,
				f.Title,
				scope(f.Location.Function, f.Location.ClassName))
			if t.Verbose || f.Domain == finding.DomainMetrics || f.Domain == finding.DomainInsights {
				t.detail(ew, f.Explanation, "")
			}
			if t.Verbose {
				t.detail(ew, "", f.Suggestion)
			}
		}
	}

	ew.println(Section("Summary"))
	writeSummary(ew, r.Summary)
	return ew.err
}

func (t *TextWriter) detail(ew *errWriter, explanation, suggestion string) {
	for _, line := range wrapText(explanation, 70) {
		ew.printf("        %s\n", line)
	}
	for i, line := range wrapText(suggestion, 68) {
		prefix := "  "
		if i == 0 {
			prefix = "→ "
		}
		ew.printf("        %s%s\n", StyleMuted.Render(prefix), line)
	}
}

func writeSummary(ew *errWriter, s review.Summary) {
	ew.printf(" %s%s\n", StyleLabel.Render("Style issues"), StyleValue.Render(fmt.Sprint(s.Issues)))
	ew.printf(" %s%s\n", StyleLabel.Render("Advisories"), StyleValue.Render(fmt.Sprint(s.Advisories)))
	ew.printf(" %s%s\n", StyleLabel.Render("Findings"), StyleValue.Render(fmt.Sprint(s.Findings)))
	if len(s.BySeverity) > 0 {
		parts := make([]string, 0, len(s.BySeverity))
		for _, k := range review.SortedKeys(s.BySeverity) {
			parts = append(parts, SeverityStyle(k).Render(fmt.Sprintf("%s %d", k, s.BySeverity[k])))
		}
		ew.printf(" %s%s\n", StyleLabel.Render("By severity"), strings.Join(parts, ", "))
	}
}

func position(line int, col *int) string {
	if col == nil {
		return fmt.Sprintf("%4d", line)
	}
	return fmt.Sprintf("%4d:%d", line, *col)
}

func scope(function, class string) string {
	switch {
	case class != "" && function != "":
		return fmt.Sprintf(" (%s.%s)", class, function)
	case function != "":
		return fmt.Sprintf(" (%s)", function)
	case class != "":
		return fmt.Sprintf(" (%s)", class)
	}
	return ""
}

func wrapText(text string, width int) []string {
	if text == "" {
		return nil
	}
	if len(text) <= width {
		return []string{text}
	}
	var lines []string
	var current strings.Builder
	for _, word := range strings.Fields(text) {
		if current.Len()+len(word)+1 > width && current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
