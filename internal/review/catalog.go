package review

import (
	"strings"

	"github.com/dhirajnair/pspec/internal/analysis"
	"github.com/dhirajnair/pspec/internal/bestpractice"
	"github.com/dhirajnair/pspec/internal/style"
)

// RuleDoc is the printable description of any rule the review can report:
// a domain rule, a best-practice rule or a PEP 8 code.
type RuleDoc struct {
	Engine            string `json:"engine" yaml:"engine"`
	ID                string `json:"rule_id" yaml:"rule_id"`
	Title             string `json:"title" yaml:"title"`
	Severity          string `json:"severity" yaml:"severity"`
	Category          string `json:"category,omitempty" yaml:"category,omitempty"`
	Description       string `json:"description" yaml:"description"`
	Rationale         string `json:"rationale,omitempty" yaml:"rationale,omitempty"`
	Authority         string `json:"authority,omitempty" yaml:"authority,omitempty"`
	Citation          string `json:"citation,omitempty" yaml:"citation,omitempty"`
	DetectionStrategy string `json:"detection_strategy,omitempty" yaml:"detection_strategy,omitempty"`
	Thresholds        string `json:"thresholds,omitempty" yaml:"thresholds,omitempty"`
	Suggestion        string `json:"suggestion" yaml:"suggestion"`
}

func bestPracticeDoc(r bestpractice.Rule) RuleDoc {
	return RuleDoc{
		Engine:            EngineBestPractice,
		ID:                r.ID,
		Title:             r.Title,
		Severity:          string(r.Severity),
		Category:          r.Category,
		Description:       r.Description,
		Rationale:         r.Rationale,
		Authority:         r.Authority,
		Citation:          r.Citation,
		DetectionStrategy: r.DetectionStrategy,
		Thresholds:        r.Thresholds,
		Suggestion:        r.Suggestion,
	}
}

func domainDoc(r analysis.RuleInfo) RuleDoc {
	return RuleDoc{
		Engine:      string(r.Domain),
		ID:          r.ID,
		Title:       r.Title,
		Severity:    string(r.Severity),
		Description: r.Explanation,
		Suggestion:  r.Suggestion,
	}
}

// Catalog lists the domain rules in merge order followed by the
// best-practice catalogue. PEP 8 codes are only reachable through Explain.
func Catalog() []RuleDoc {
	var out []RuleDoc
	for _, r := range analysis.Rules() {
		out = append(out, domainDoc(r))
	}
	for _, r := range bestpractice.Catalogue() {
		out = append(out, bestPracticeDoc(r))
	}
	return out
}

// Explain finds a rule by id. PEP 8 codes such as "E501" are matched
// case-insensitively.
func Explain(id string) (RuleDoc, bool) {
	id = strings.TrimSpace(id)
	if r, ok := bestpractice.Lookup(id); ok {
		return bestPracticeDoc(r), true
	}
	if r, ok := analysis.LookupRule(id); ok {
		return domainDoc(r), true
	}
	code := strings.ToUpper(id)
	if quote, section, suggestion, ok := style.Lookup(code); ok {
		return RuleDoc{
			Engine:      EngineStyle,
			ID:          code,
			Title:       section,
			Severity:    string(issueSeverity),
			Category:    "PEP 8",
			Description: quote,
			Authority:   "PEP 8",
			Citation:    section,
			Suggestion:  suggestion,
		}, true
	}
	return RuleDoc{}, false
}
