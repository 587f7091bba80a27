package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhirajnair/pspec/internal/finding"
)

func securityFinding(line int) finding.Finding {
	return finding.Finding{Domain: finding.DomainSecurity, RuleID: "security.dangerous_eval", Location: finding.At(line)}
}

func metricsFinding(line, cyclo, depth int) finding.Finding {
	return finding.Finding{
		Domain:   finding.DomainMetrics,
		RuleID:   "metrics.complexity",
		Location: finding.Location{Line: line, Function: "f"},
		Complexity: &finding.Complexity{
			Cyclomatic:   cyclo,
			NestingDepth: depth,
		},
	}
}

func TestInsights_ElevatedRisk(t *testing.T) {
	out := Insights([]finding.Finding{securityFinding(1), securityFinding(2)})
	require.Len(t, out, 1)
	assert.Equal(t, "insights.elevated_risk", out[0].RuleID)
	assert.Equal(t, finding.DomainInsights, out[0].Domain)
	assert.Contains(t, out[0].Explanation, "2")
	assert.Equal(t, 1, out[0].Location.Line)
}

func TestInsights_SingleSecuritySignal(t *testing.T) {
	assert.Empty(t, Insights([]finding.Finding{securityFinding(1)}))
	assert.Empty(t, Insights(nil))
}

func TestInsights_ComplexityContextAtMostOnce(t *testing.T) {
	prior := []finding.Finding{
		metricsFinding(3, 2, 1),
		metricsFinding(10, 6, 0),
		metricsFinding(20, 1, 3),
	}
	out := Insights(prior)
	require.Len(t, out, 1)
	assert.Equal(t, "insights.complexity_context", out[0].RuleID)
	assert.Equal(t, 1, out[0].Location.Line, "snippet-level insight")
	assert.Empty(t, out[0].Location.Function)
}

func TestInsights_ThresholdsAreStrict(t *testing.T) {
	assert.Empty(t, Insights([]finding.Finding{metricsFinding(1, 5, 2)}))
	assert.Len(t, Insights([]finding.Finding{metricsFinding(1, 5, 3)}), 1)
}

func TestInsights_IgnoresMetricsWithoutPayload(t *testing.T) {
	f := metricsFinding(1, 9, 9)
	f.Complexity = nil
	f.Explanation = "Cyclomatic complexity: 9; max nesting depth: 9. Reported for review."
	assert.Empty(t, Insights([]finding.Finding{f}))
}

func TestInsights_DoesNotMutateInput(t *testing.T) {
	prior := []finding.Finding{securityFinding(2), securityFinding(1), metricsFinding(4, 8, 0)}
	snapshot := append([]finding.Finding(nil), prior...)
	Insights(prior)
	assert.Equal(t, snapshot, prior)
}

func TestInsights_FromEngineOutput(t *testing.T) {
	src := `def busy(x):
    if x:
        for i in x:
            if i:
                while i:
                    i -= 1
    eval(x)
    exec(x)
`
	var prior []finding.Finding
	prior = append(prior, Security(src)...)
	prior = append(prior, Metrics(src)...)
	out := Insights(prior)
	assert.Equal(t, []string{"insights.complexity_context", "insights.elevated_risk"}, ruleIDs(out))
}
