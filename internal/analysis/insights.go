package analysis

import (
	"fmt"

	"github.com/dhirajnair/pspec/internal/finding"
)

// Thresholds above which a metrics finding earns a complexity insight.
const (
	insightComplexity = 5
	insightNesting    = 2
	elevatedRiskCount = 2
)

var (
	elevatedRisk = rule{
		domain:     finding.DomainInsights,
		id:         "insights.elevated_risk",
		title:      "Elevated risk profile",
		severity:   finding.SeverityAdvisory,
		suggestion: "Address security findings and re-run analysis.",
	}
	complexityContext = rule{
		domain:      finding.DomainInsights,
		id:          "insights.complexity_context",
		title:       "Complexity context",
		severity:    finding.SeverityAdvisory,
		explanation: "Metrics indicate non-trivial complexity; function may have multiple responsibilities.",
		suggestion:  "Consider splitting or simplifying; use metrics to prioritize review.",
	}
)

// Insights derives cross-domain findings from findings other engines already
// produced. It never reads source and never alters its input. Both insights
// describe the whole snippet and sit on line 1.
func Insights(prior []finding.Finding) []finding.Finding {
	var out []finding.Finding

	security := 0
	for _, f := range prior {
		if f.Domain == finding.DomainSecurity {
			security++
		}
	}
	if security >= elevatedRiskCount {
		f := elevatedRisk.at(finding.At(1))
		f.Explanation = fmt.Sprintf("Multiple security signals (%d) in snippet; consider focused review.", security)
		out = append(out, f)
	}

	for _, f := range prior {
		c := f.Complexity
		if f.Domain != finding.DomainMetrics || c == nil {
			continue
		}
		if c.Cyclomatic > insightComplexity || c.NestingDepth > insightNesting {
			out = append(out, complexityContext.at(finding.At(1)))
			break
		}
	}
	return finding.Normalize(out)
}
