package analysis

import "github.com/dhirajnair/pspec/internal/finding"

// RuleInfo describes one domain rule for listings.
type RuleInfo struct {
	Domain      finding.Domain   `json:"domain" yaml:"domain"`
	ID          string           `json:"rule_id" yaml:"rule_id"`
	Title       string           `json:"title" yaml:"title"`
	Severity    finding.Severity `json:"severity" yaml:"severity"`
	Explanation string           `json:"explanation" yaml:"explanation"`
	Suggestion  string           `json:"suggestion" yaml:"suggestion"`
}

var allRules = []rule{
	returnAny, paramAny,
	shadowing,
	bareExcept, caughtAndIgnored, silentCatch,
	dangerousEval, unsafeDeserialization, shellExec, hardcodedCredential,
	complexity,
	elevatedRisk, complexityContext,
}

// Rules lists every domain rule in merge order. Titles and explanations
// that vary per finding are given in their generic form.
func Rules() []RuleInfo {
	out := make([]RuleInfo, 0, len(allRules))
	for _, r := range allRules {
		info := RuleInfo{
			Domain:      r.domain,
			ID:          r.id,
			Title:       r.title,
			Severity:    r.severity,
			Explanation: r.explanation,
			Suggestion:  r.suggestion,
		}
		switch r.id {
		case unsafeDeserialization.id:
			info.Title = "Unsafe deserialization"
			info.Explanation = "Deserializing untrusted data can execute arbitrary code. Security signal."
		case shadowing.id:
			info.Explanation = "A function rebinds a name assigned at module scope."
		case hardcodedCredential.id:
			info.Title = "Hard-coded credential"
		case complexity.id:
			info.Explanation = "Reports cyclomatic complexity and maximum nesting depth for every function."
		case elevatedRisk.id:
			info.Explanation = "Multiple security signals in snippet; consider focused review."
		}
		out = append(out, info)
	}
	return out
}

// LookupRule finds a domain rule by id.
func LookupRule(id string) (RuleInfo, bool) {
	for _, r := range Rules() {
		if r.ID == id {
			return r, true
		}
	}
	return RuleInfo{}, false
}
