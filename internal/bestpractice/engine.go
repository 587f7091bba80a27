package bestpractice

import (
	"sort"

	"github.com/dhirajnair/pspec/internal/pysyntax"
)

// Engine evaluates a fixed rule set against source snippets. An Engine is
// read-only after construction and safe for concurrent use.
type Engine struct {
	rules []Rule
}

// NewEngine creates an engine over the built-in catalogue.
func NewEngine() *Engine {
	return &Engine{rules: Catalogue()}
}

// NewEngineWith creates an engine over the given rules only.
func NewEngineWith(rules ...Rule) *Engine {
	return &Engine{rules: append([]Rule(nil), rules...)}
}

// Rules returns a copy of the engine's rule set.
func (e *Engine) Rules() []Rule {
	return append([]Rule(nil), e.rules...)
}

// Run parses source and evaluates every rule on every node. Unparseable
// source and an empty rule set both yield an empty list. Advisories are
// sorted by (line, rule id) with (rule id, line) duplicates removed.
func (e *Engine) Run(source string) []Advisory {
	if len(e.rules) == 0 {
		return []Advisory{}
	}
	tree, err := pysyntax.Parse(source)
	if err != nil {
		return []Advisory{}
	}
	defer tree.Close()

	var all []Advisory
	for _, rule := range e.rules {
		if !rule.Severity.Valid() || rule.Detect == nil {
			continue
		}
		pysyntax.Walk(tree.Root(), func(n pysyntax.Node) bool {
			for _, hit := range rule.Detect(n) {
				if hit.Line < 1 {
					continue
				}
				all = append(all, rule.advisory(hit))
			}
			return true
		})
	}
	return normalize(all)
}

// Run evaluates rules against source with a one-off engine.
func Run(source string, rules []Rule) []Advisory {
	return NewEngineWith(rules...).Run(source)
}

func (r Rule) advisory(h Hit) Advisory {
	a := Advisory{
		RuleID:      r.ID,
		Title:       r.Title,
		Category:    r.Category,
		Line:        h.Line,
		Function:    h.Function,
		ClassName:   h.ClassName,
		Explanation: h.Explanation,
		Authority:   r.Authority,
		Citation:    r.Citation,
		Suggestion:  h.Suggestion,
		Severity:    r.Severity,
	}
	if a.Explanation == "" {
		a.Explanation = r.Description
	}
	if a.Suggestion == "" {
		a.Suggestion = r.Suggestion
	}
	return a
}

func normalize(all []Advisory) []Advisory {
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Line != all[j].Line {
			return all[i].Line < all[j].Line
		}
		return all[i].RuleID < all[j].RuleID
	})
	type key struct {
		rule string
		line int
	}
	seen := make(map[key]bool, len(all))
	out := make([]Advisory, 0, len(all))
	for _, a := range all {
		k := key{a.RuleID, a.Line}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, a)
	}
	return out
}
