package analysis

import (
	"fmt"

	"github.com/dhirajnair/pspec/internal/finding"
	"github.com/dhirajnair/pspec/internal/measure"
	"github.com/dhirajnair/pspec/internal/pysyntax"
)

var complexity = rule{
	domain:     finding.DomainMetrics,
	id:         "metrics.complexity",
	title:      "Function complexity metrics",
	severity:   finding.SeverityAdvisory,
	suggestion: "High values may indicate need for simplification or extraction.",
}

// Metrics reports one complexity finding per function, methods and nested
// helpers included, whatever the values. The numbers travel both in the
// explanation text and in the structured Complexity payload.
func Metrics(source string) []finding.Finding {
	return run(source, func(root pysyntax.Node) []finding.Finding {
		var out []finding.Finding
		for _, fn := range pysyntax.Collect(root, pysyntax.KindFunction) {
			m := measure.Of(fn)
			f := complexity.at(definitionLocation(fn))
			f.Explanation = fmt.Sprintf("Cyclomatic complexity: %d; max nesting depth: %d. Reported for review.",
				m.Cyclomatic, m.NestingDepth)
			f.Complexity = &finding.Complexity{
				Cyclomatic:   m.Cyclomatic,
				NestingDepth: m.NestingDepth,
				LineSpan:     m.LineSpan,
			}
			out = append(out, f)
		}
		return out
	})
}
