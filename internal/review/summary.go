package review

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dhirajnair/pspec/internal/bestpractice"
	"github.com/dhirajnair/pspec/internal/finding"
)

// Summary counts a result's contents.
type Summary struct {
	Issues     int            `json:"issues" yaml:"issues"`
	Advisories int            `json:"advisories" yaml:"advisories"`
	Findings   int            `json:"findings" yaml:"findings"`
	BySeverity map[string]int `json:"by_severity" yaml:"by_severity"`
	ByDomain   map[string]int `json:"by_domain" yaml:"by_domain"`
	Highest    string         `json:"highest_severity,omitempty" yaml:"highest_severity,omitempty"`
}

// Item kinds.
const (
	KindIssue    = "issue"
	KindAdvisory = "advisory"
	KindFinding  = "finding"
)

// Item is a flattened view of any result entry, used for history and for
// diffing consecutive reviews.
type Item struct {
	Kind     string `json:"kind"`
	RuleID   string `json:"rule_id"`
	Domain   string `json:"domain,omitempty"`
	Line     int    `json:"line"`
	Severity string `json:"severity"`
	Title    string `json:"title"`
}

// Key identifies an item across reviews of the same file.
func (i Item) Key() string {
	return fmt.Sprintf("%s:%s:%d", i.Kind, i.RuleID, i.Line)
}

// Style issues count as warnings when thresholds are compared.
const issueSeverity = finding.SeverityWarning

// advisorySeverity maps the best-practice vocabulary onto finding
// severities; info has no counterpart and ranks below everything.
func advisorySeverity(s bestpractice.Severity) finding.Severity {
	switch s {
	case bestpractice.SeverityWarning:
		return finding.SeverityWarning
	case bestpractice.SeverityAdvisory:
		return finding.SeverityAdvisory
	}
	return ""
}

// Items flattens r in output order: issues, advisories, findings.
func (r *Result) Items() []Item {
	out := make([]Item, 0, len(r.Issues)+len(r.Advisories)+len(r.Findings))
	for _, i := range r.Issues {
		out = append(out, Item{Kind: KindIssue, RuleID: i.Code, Domain: "style", Line: i.Line, Severity: string(issueSeverity), Title: i.Message})
	}
	for _, a := range r.Advisories {
		out = append(out, Item{Kind: KindAdvisory, RuleID: a.RuleID, Domain: a.Category, Line: a.Line, Severity: string(a.Severity), Title: a.Title})
	}
	for _, f := range r.Findings {
		out = append(out, Item{Kind: KindFinding, RuleID: f.RuleID, Domain: string(f.Domain), Line: f.Location.Line, Severity: string(f.Severity), Title: f.Title})
	}
	return out
}

// Summarize counts r's entries per severity and per domain. Issues count
// under the "style" domain.
func Summarize(r *Result) Summary {
	s := Summary{
		Issues:     len(r.Issues),
		Advisories: len(r.Advisories),
		Findings:   len(r.Findings),
		BySeverity: map[string]int{},
		ByDomain:   map[string]int{},
	}
	bySev, byDomain := finding.CountBy(r.Findings)
	for k, v := range bySev {
		s.BySeverity[string(k)] += v
	}
	for k, v := range byDomain {
		s.ByDomain[string(k)] += v
	}
	for _, a := range r.Advisories {
		s.BySeverity[string(a.Severity)]++
	}
	if len(r.Issues) > 0 {
		s.ByDomain["style"] = len(r.Issues)
		s.BySeverity[string(issueSeverity)] += len(r.Issues)
	}
	if len(r.Advisories) > 0 {
		s.ByDomain["best_practice"] = len(r.Advisories)
	}

	best := 0
	for _, sev := range r.severities() {
		if rank := sev.Rank(); rank > best {
			best = rank
			s.Highest = string(sev)
		}
	}
	return s
}

func (r *Result) severities() []finding.Severity {
	out := make([]finding.Severity, 0, len(r.Findings)+len(r.Advisories)+1)
	for _, f := range r.Findings {
		out = append(out, f.Severity)
	}
	for _, a := range r.Advisories {
		out = append(out, advisorySeverity(a.Severity))
	}
	if len(r.Issues) > 0 {
		out = append(out, issueSeverity)
	}
	return out
}

// FailOnLevels lists the accepted fail-on thresholds.
var FailOnLevels = []string{"none", string(finding.SeverityAdvisory), string(finding.SeverityWarning), string(finding.SeverityViolation)}

// MeetsThreshold reports whether anything in r is at or above threshold.
// "none" and "" never match.
func (r *Result) MeetsThreshold(threshold string) (bool, error) {
	threshold = strings.ToLower(strings.TrimSpace(threshold))
	if threshold == "" || threshold == "none" {
		return false, nil
	}
	floor, err := finding.ParseSeverity(threshold)
	if err != nil {
		return false, fmt.Errorf("fail-on: %w", err)
	}
	for _, sev := range r.severities() {
		if sev.Rank() >= floor.Rank() {
			return true, nil
		}
	}
	return false, nil
}

// SortedKeys returns m's keys in order, for stable rendering of counts.
func SortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
