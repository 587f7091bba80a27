// Package bestpractice provides the catalogue of cited Python best-practice
// rules and the engine that evaluates them over a parsed snippet.
package bestpractice

import (
	"errors"
	"fmt"

	"github.com/dhirajnair/pspec/internal/pysyntax"
)

// ErrIncompleteRule is returned when a rule is built with missing metadata
// or an unknown severity.
var ErrIncompleteRule = errors.New("incomplete rule")

// Severity grades an advisory. The vocabulary is closed.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityAdvisory Severity = "advisory"
	SeverityWarning  Severity = "warning"
)

// Valid reports whether s belongs to the vocabulary.
func (s Severity) Valid() bool {
	switch s {
	case SeverityInfo, SeverityAdvisory, SeverityWarning:
		return true
	}
	return false
}

// Rank orders severities; higher is more severe.
func (s Severity) Rank() int {
	switch s {
	case SeverityWarning:
		return 2
	case SeverityAdvisory:
		return 1
	}
	return 0
}

// Hit is one raw match reported by a detector. Empty Explanation and
// Suggestion fall back to the rule's description and suggestion. A hit
// with Line < 1 is malformed and dropped by the engine.
type Hit struct {
	Line        int
	Function    string
	ClassName   string
	Explanation string
	Suggestion  string
}

// Detector inspects one node and reports zero or more hits. It is called
// for every node of the tree.
type Detector func(n pysyntax.Node) []Hit

// Rule is a fully documented detection unit.
type Rule struct {
	// ID is the stable dotted rule identifier, e.g. "pybp.error.swallow".
	ID string `json:"rule_id" yaml:"rule_id"`

	// Title is a short human-readable name.
	Title string `json:"title" yaml:"title"`

	// Category groups related rules for display.
	Category string `json:"category" yaml:"category"`

	// Description is the default explanation attached to advisories.
	Description string `json:"description" yaml:"description"`

	// Rationale states why the practice matters.
	Rationale string `json:"rationale" yaml:"rationale"`

	// Authority names the source the practice comes from.
	Authority string `json:"authority" yaml:"authority"`

	// Citation points at the section or URL of the authority.
	Citation string `json:"citation" yaml:"citation"`

	// DetectionStrategy describes how the rule inspects code.
	DetectionStrategy string `json:"detection_strategy" yaml:"detection_strategy"`

	// Thresholds is the optional numeric trigger, e.g. "> 7".
	Thresholds string `json:"thresholds,omitempty" yaml:"thresholds,omitempty"`

	// Suggestion is the default remediation text.
	Suggestion string `json:"suggestion" yaml:"suggestion"`

	// Severity is the grade every advisory of this rule carries.
	Severity Severity `json:"severity" yaml:"severity"`

	// Detect is the detector function.
	Detect Detector `json:"-" yaml:"-"`
}

// NewRule validates r. Every metadata field except Thresholds must be
// non-empty, Severity must be in the vocabulary and Detect must be set.
func NewRule(r Rule) (Rule, error) {
	required := []struct {
		field, value string
	}{
		{"rule_id", r.ID},
		{"title", r.Title},
		{"category", r.Category},
		{"description", r.Description},
		{"rationale", r.Rationale},
		{"authority", r.Authority},
		{"citation", r.Citation},
		{"detection_strategy", r.DetectionStrategy},
		{"suggestion", r.Suggestion},
	}
	for _, f := range required {
		if f.value == "" {
			return Rule{}, fmt.Errorf("%w: %s missing %s", ErrIncompleteRule, r.ID, f.field)
		}
	}
	if !r.Severity.Valid() {
		return Rule{}, fmt.Errorf("%w: %s has severity %q", ErrIncompleteRule, r.ID, r.Severity)
	}
	if r.Detect == nil {
		return Rule{}, fmt.Errorf("%w: %s has no detector", ErrIncompleteRule, r.ID)
	}
	return r, nil
}

func mustRule(r Rule) Rule {
	r, err := NewRule(r)
	if err != nil {
		panic(err)
	}
	return r
}

// Advisory is one best-practice observation with its citation.
type Advisory struct {
	RuleID      string   `json:"rule_id" yaml:"rule_id"`
	Title       string   `json:"title" yaml:"title"`
	Category    string   `json:"category" yaml:"category"`
	Line        int      `json:"line" yaml:"line"`
	Function    string   `json:"function,omitempty" yaml:"function,omitempty"`
	ClassName   string   `json:"class_name,omitempty" yaml:"class_name,omitempty"`
	Explanation string   `json:"explanation" yaml:"explanation"`
	Authority   string   `json:"authority" yaml:"authority"`
	Citation    string   `json:"citation" yaml:"citation"`
	Suggestion  string   `json:"suggestion" yaml:"suggestion"`
	Severity    Severity `json:"severity" yaml:"severity"`
}
