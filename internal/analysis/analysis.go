// Package analysis holds the per-domain engines. Each engine is a pure
// function of the source text: it parses its own tree, walks it and returns
// findings sorted by (line, rule id) with (rule id, line) duplicates removed.
// Unparseable input yields an empty list.
package analysis

import (
	"github.com/dhirajnair/pspec/internal/finding"
	"github.com/dhirajnair/pspec/internal/pysyntax"
)

// Engine is the signature shared by every source-driven engine.
type Engine func(source string) []finding.Finding

// rule is the fixed text of one rule id.
type rule struct {
	domain      finding.Domain
	id          string
	title       string
	severity    finding.Severity
	explanation string
	suggestion  string
}

func (r rule) at(loc finding.Location) finding.Finding {
	return finding.Finding{
		Domain:      r.domain,
		RuleID:      r.id,
		Title:       r.title,
		Location:    loc,
		Severity:    r.severity,
		Explanation: r.explanation,
		Suggestion:  r.suggestion,
	}
}

// run parses source and hands the root to walk. Parse failures produce an
// empty result.
func run(source string, walk func(root pysyntax.Node) []finding.Finding) []finding.Finding {
	tree, err := pysyntax.Parse(source)
	if err != nil {
		return []finding.Finding{}
	}
	defer tree.Close()
	return finding.Normalize(walk(tree.Root()))
}

// nodeLocation anchors a finding at n with its column and scope names.
func nodeLocation(n pysyntax.Node) finding.Location {
	fn, class := pysyntax.Scope(n)
	loc := finding.At(n.Line()).WithColumn(n.Column())
	loc.Function = fn
	loc.ClassName = class
	return loc
}

// definitionLocation anchors a finding at a function definition, naming the
// function itself and its owning class.
func definitionLocation(def pysyntax.Node) finding.Location {
	loc := finding.At(def.Line()).WithColumn(def.Column())
	loc.Function = pysyntax.Name(def)
	if cls, ok := pysyntax.EnclosingClass(def); ok {
		loc.ClassName = pysyntax.Name(cls)
	}
	return loc
}
