// Package finding defines the structured record every analysis engine emits
// and the ordering rules shared by all of them.
package finding

import (
	"errors"
	"fmt"
	"sort"
)

// ErrSeverity is returned when a severity name is outside the vocabulary.
var ErrSeverity = errors.New("unknown severity")

// Domain names the engine that produced a finding.
type Domain string

const (
	DomainTypes    Domain = "types"
	DomainDataflow Domain = "dataflow"
	DomainErrors   Domain = "errors"
	DomainSecurity Domain = "security"
	DomainMetrics  Domain = "metrics"
	DomainInsights Domain = "insights"
)

// Domains lists every domain in merge order.
var Domains = []Domain{DomainTypes, DomainDataflow, DomainErrors, DomainSecurity, DomainMetrics, DomainInsights}

// Severity grades a finding.
type Severity string

const (
	SeverityViolation Severity = "violation"
	SeverityWarning   Severity = "warning"
	SeverityAdvisory  Severity = "advisory"
)

// Rank orders severities; higher is more severe, 0 means unknown.
func (s Severity) Rank() int {
	switch s {
	case SeverityViolation:
		return 3
	case SeverityWarning:
		return 2
	case SeverityAdvisory:
		return 1
	}
	return 0
}

// ParseSeverity validates a severity name.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(s)
	if sev.Rank() == 0 {
		return "", fmt.Errorf("%w: %q", ErrSeverity, s)
	}
	return sev, nil
}

// Location anchors a finding in the snippet.
type Location struct {
	Line      int    `json:"line" yaml:"line"`
	Column    *int   `json:"column,omitempty" yaml:"column,omitempty"`
	Function  string `json:"function,omitempty" yaml:"function,omitempty"`
	ClassName string `json:"class_name,omitempty" yaml:"class_name,omitempty"`
}

// At returns a location on line with no column.
func At(line int) Location {
	return Location{Line: line}
}

// WithColumn returns a copy of l carrying col.
func (l Location) WithColumn(col int) Location {
	l.Column = &col
	return l
}

// Complexity is the metrics payload carried by metrics-domain findings.
type Complexity struct {
	Cyclomatic   int `json:"cyclomatic" yaml:"cyclomatic"`
	NestingDepth int `json:"nesting_depth" yaml:"nesting_depth"`
	LineSpan     int `json:"line_span" yaml:"line_span"`
}

// Finding is one diagnostic produced by an engine.
type Finding struct {
	Domain      Domain      `json:"domain" yaml:"domain"`
	RuleID      string      `json:"rule_id" yaml:"rule_id"`
	Title       string      `json:"title" yaml:"title"`
	Location    Location    `json:"location" yaml:"location"`
	Severity    Severity    `json:"severity" yaml:"severity"`
	Explanation string      `json:"explanation" yaml:"explanation"`
	Suggestion  string      `json:"suggestion" yaml:"suggestion"`
	Complexity  *Complexity `json:"complexity,omitempty" yaml:"complexity,omitempty"`
}

type key struct {
	rule string
	line int
}

// Normalize sorts findings by (line, rule id), keeping the relative order of
// ties, and drops every finding whose (rule id, line) pair was already seen.
// The result is never nil.
func Normalize(fs []Finding) []Finding {
	sorted := make([]Finding, len(fs))
	copy(sorted, fs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Location.Line != sorted[j].Location.Line {
			return sorted[i].Location.Line < sorted[j].Location.Line
		}
		return sorted[i].RuleID < sorted[j].RuleID
	})
	return Dedupe(sorted)
}

// Dedupe drops repeated (rule id, line) pairs, keeping the first occurrence
// and the input order otherwise. The result is never nil.
func Dedupe(fs []Finding) []Finding {
	seen := make(map[key]bool, len(fs))
	out := make([]Finding, 0, len(fs))
	for _, f := range fs {
		k := key{f.RuleID, f.Location.Line}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, f)
	}
	return out
}

// CountBy tallies findings per severity and per domain.
func CountBy(fs []Finding) (bySeverity map[Severity]int, byDomain map[Domain]int) {
	bySeverity = make(map[Severity]int)
	byDomain = make(map[Domain]int)
	for _, f := range fs {
		bySeverity[f.Severity]++
		byDomain[f.Domain]++
	}
	return bySeverity, byDomain
}
