package analysis

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhirajnair/pspec/internal/finding"
)

var engines = map[string]Engine{
	"types":    Types,
	"dataflow": Dataflow,
	"errors":   Errors,
	"security": Security,
	"metrics":  Metrics,
}

// busy exercises every engine at least once.
const busy = `import os
import pickle
from typing import Any

name = 'global'
password = "hunter2"

def handler(payload: Any, flag: Any) -> Any:
    name = 'local'
    try:
        eval(payload)
        os.system("ls")
        pickle.loads(payload)
    except:
        pass
    try:
        pass
    except Exception:
        pass
    if payload and flag:
        for x in payload:
            if x:
                while x:
                    x -= 1
    return name
`

func ruleIDs(fs []finding.Finding) []string {
	ids := make([]string, 0, len(fs))
	for _, f := range fs {
		ids = append(ids, f.RuleID)
	}
	return ids
}

func TestEngines_EmptyAndInvalidInput(t *testing.T) {
	inputs := []string{
		"", "   ", "\n\t\n", "def (", "class :\n", "if x\n  y",
		"print 'x'\npassword = 'hunter2'\n",
		"exec 'x'\n",
		"if 1 <> 2:\n    eval('1')\n",
		"x = `1`\n",
		"mode = 0777\n",
		"f(x for x in y, 1)\n",
		"f(**k, *a)\n",
		"def f():\n    eval('1')\n  x = 2\n",
	}
	for name, run := range engines {
		for _, src := range inputs {
			out := run(src)
			assert.NotNil(t, out, "%s(%q)", name, src)
			assert.Empty(t, out, "%s(%q)", name, src)
		}
	}
}

func TestEngines_DeterministicSortedAndUnique(t *testing.T) {
	for name, run := range engines {
		first := run(busy)
		second := run(busy)
		assert.Equal(t, first, second, name)

		seen := make(map[string]bool)
		for i, f := range first {
			k := fmt.Sprintf("%s@%d", f.RuleID, f.Location.Line)
			assert.False(t, seen[k], "%s: duplicate %s", name, k)
			seen[k] = true
			assert.Equal(t, string(f.Domain), name)
			assert.NotEmpty(t, f.Explanation)
			assert.NotEmpty(t, f.Suggestion)
			assert.GreaterOrEqual(t, f.Location.Line, 1)
			if i == 0 {
				continue
			}
			prev := first[i-1]
			ordered := prev.Location.Line < f.Location.Line ||
				(prev.Location.Line == f.Location.Line && prev.RuleID <= f.RuleID)
			assert.True(t, ordered, "%s: %v before %v", name, prev, f)
		}
	}
}

func TestTypes(t *testing.T) {
	src := `from typing import Any, List, Optional

def a(x: Any, y: int) -> Any:
    return x

def b(x: List[Any], y: Optional[int]) -> typing.Any:
    return x

async def c(*args: Any):
    pass
`
	out := Types(src)
	require.Len(t, out, 3)

	assert.Equal(t, "types.param_any", out[0].RuleID)
	assert.Equal(t, 3, out[0].Location.Line)
	assert.Equal(t, "a", out[0].Location.Function)
	assert.Equal(t, "types.return_any", out[1].RuleID)
	assert.Equal(t, 3, out[1].Location.Line)
	assert.Equal(t, "types.param_any", out[2].RuleID)
	assert.Equal(t, 9, out[2].Location.Line)
	for _, f := range out {
		assert.Equal(t, finding.SeverityAdvisory, f.Severity)
	}
}

func TestTypes_TwoAnyParamsOnOneLineCollapse(t *testing.T) {
	out := Types("def f(a: Any, b: Any):\n    pass\n")
	require.Len(t, out, 1)
	assert.Equal(t, "types.param_any", out[0].RuleID)
}

func TestDataflow_ShadowingScenario(t *testing.T) {
	out := Dataflow("name = 'global'\ndef greet():\n    name = 'local'\n    return name")
	require.Len(t, out, 1)
	f := out[0]
	assert.Equal(t, "dataflow.shadowing", f.RuleID)
	assert.Equal(t, 3, f.Location.Line)
	assert.Equal(t, "greet", f.Location.Function)
	assert.Equal(t, "'name' shadows a name from module scope.", f.Explanation)
	assert.Equal(t, finding.SeverityAdvisory, f.Severity)
}

func TestDataflow_OuterFunctionAttribution(t *testing.T) {
	src := `count = 0

def outer():
    def inner():
        count = 1
        return count
    return inner()
`
	out := Dataflow(src)
	require.Len(t, out, 1)
	assert.Equal(t, 5, out[0].Location.Line)
	assert.Equal(t, "outer", out[0].Location.Function)
}

func TestDataflow_IgnoresNonPlainAssignments(t *testing.T) {
	src := `a = b = 1
c: int = 2
d, e = 3, 4

def f():
    a = 1
    b = 2
    c = 3
    d = 4
    x: int = 5
    a += 1
    lam = lambda: 0
    return [a for a in range(3)]
`
	out := Dataflow(src)
	require.Len(t, out, 2)
	assert.Equal(t, 6, out[0].Location.Line)
	assert.Equal(t, 7, out[1].Location.Line)
}

func TestDataflow_NoModuleNames(t *testing.T) {
	assert.Empty(t, Dataflow("def f():\n    x = 1\n"))
}

func TestErrors_BareExceptPassScenario(t *testing.T) {
	out := Errors("try:\n    foo()\nexcept:\n    pass")
	require.Len(t, out, 2)
	assert.Equal(t, []string{"errors.bare_except", "errors.silent_catch"}, ruleIDs(out))
	assert.Equal(t, finding.SeverityWarning, out[0].Severity)
	assert.Equal(t, finding.SeverityAdvisory, out[1].Severity)
	for _, f := range out {
		assert.Equal(t, 3, f.Location.Line)
	}
}

func TestErrors_GenericExceptionIgnored(t *testing.T) {
	out := Errors("try:\n    foo()\nexcept Exception:\n    pass\n")
	assert.Equal(t, []string{"errors.caught_and_ignored", "errors.silent_catch"}, ruleIDs(out))

	out = Errors("try:\n    foo()\nexcept Exception as exc:\n    ...\n")
	assert.Equal(t, []string{"errors.caught_and_ignored", "errors.silent_catch"}, ruleIDs(out))

	out = Errors("try:\n    pass\nexcept (Exception):\n    pass")
	assert.Equal(t, []string{"errors.caught_and_ignored", "errors.silent_catch"}, ruleIDs(out))
}

func TestErrors_SpecificTypes(t *testing.T) {
	out := Errors("try:\n    foo()\nexcept ValueError:\n    pass\n")
	assert.Equal(t, []string{"errors.silent_catch"}, ruleIDs(out))

	assert.Empty(t, Errors("try:\n    foo()\nexcept ValueError:\n    log(1)\n"))
	assert.Empty(t, Errors("try:\n    foo()\nexcept Exception:\n    raise\n"))
}

func TestErrors_ScopeNames(t *testing.T) {
	src := `class Repo:
    def load(self):
        try:
            return 1
        except:
            return None
`
	out := Errors(src)
	require.Len(t, out, 1)
	assert.Equal(t, "load", out[0].Location.Function)
	assert.Equal(t, "Repo", out[0].Location.ClassName)
	require.NotNil(t, out[0].Location.Column)
	assert.Equal(t, 8, *out[0].Location.Column)
}

func TestSecurity_Scenario(t *testing.T) {
	out := Security("eval('1')\nimport pickle\npickle.loads(b'x')\npassword = 'x'")
	require.GreaterOrEqual(t, len(out), 3)
	ids := ruleIDs(out)
	assert.Contains(t, ids, "security.dangerous_eval")
	assert.Contains(t, ids, "security.unsafe_deserialization")
	assert.Contains(t, ids, "security.hardcoded_credential")
	for _, f := range out {
		assert.Equal(t, finding.SeverityAdvisory, f.Severity)
	}
}

func TestSecurity_EntryPoints(t *testing.T) {
	src := `import os, subprocess
exec("x")
os.system("ls")
os.popen("ls")
subprocess.check_output(["ls"])
subprocess.run(["ls"])
marshal.loads(data)
self.eval(x)
json.loads(s)
`
	out := Security(src)
	want := []string{
		"security.dangerous_eval",
		"security.shell_exec",
		"security.shell_exec",
		"security.shell_exec",
		"security.shell_exec",
		"security.unsafe_deserialization",
	}
	assert.Equal(t, want, ruleIDs(out))
	assert.Equal(t, "Unsafe deserialization (marshal)", out[5].Title)
}

func TestSecurity_CredentialFirstPatternPerLine(t *testing.T) {
	src := "PASSWORD = 'a'; secret = 'b'\napi_key = \"k\"\nSECRET=\"s\"\npassword = ''\n"
	out := Security(src)
	require.Len(t, out, 3)
	assert.Equal(t, "Hard-coded password", out[0].Title)
	assert.Equal(t, "Hard-coded API key", out[1].Title)
	assert.Equal(t, "Hard-coded secret", out[2].Title)
	assert.Equal(t, []int{1, 2, 3}, []int{out[0].Location.Line, out[1].Location.Line, out[2].Location.Line})
}

func TestSecurity_CredentialLinesCountFromFileStart(t *testing.T) {
	out := Security("\n\n# config\ntoken = 1\napikey = 'abc'\n")
	require.Len(t, out, 1)
	assert.Equal(t, 5, out[0].Location.Line)
}

func TestMetrics_Scenario(t *testing.T) {
	out := Metrics("def f(): return 42")
	require.Len(t, out, 1)
	f := out[0]
	assert.Equal(t, "metrics.complexity", f.RuleID)
	assert.Equal(t, "f", f.Location.Function)
	assert.Equal(t, "Cyclomatic complexity: 1; max nesting depth: 0. Reported for review.", f.Explanation)
	require.NotNil(t, f.Complexity)
	assert.Equal(t, 1, f.Complexity.Cyclomatic)
	assert.Equal(t, 0, f.Complexity.NestingDepth)
}

func TestMetrics_EveryFunction(t *testing.T) {
	src := `class A:
    def m(self):
        pass

    async def n(self):
        if self:
            return 1

def top():
    def nested():
        pass
    return nested
`
	out := Metrics(src)
	require.Len(t, out, 4)
	assert.Equal(t, "m", out[0].Location.Function)
	assert.Equal(t, "A", out[0].Location.ClassName)
	assert.Equal(t, "n", out[1].Location.Function)
	assert.Equal(t, 2, out[1].Complexity.Cyclomatic)
	assert.Equal(t, 1, out[1].Complexity.NestingDepth)
	assert.Equal(t, "top", out[2].Location.Function)
	assert.Equal(t, "nested", out[3].Location.Function)
	assert.Empty(t, Metrics("x = 1\n"))
}

func TestRules_UniqueAndComplete(t *testing.T) {
	seen := map[string]bool{}
	for _, r := range Rules() {
		assert.False(t, seen[r.ID], "duplicate rule id %s", r.ID)
		seen[r.ID] = true
		assert.NotEmpty(t, r.Title, r.ID)
		assert.NotEmpty(t, r.Explanation, r.ID)
		assert.NotEmpty(t, r.Suggestion, r.ID)
		assert.Contains(t, r.ID, string(r.Domain)+".")
	}
	assert.Len(t, seen, 13)

	r, ok := LookupRule("security.shell_exec")
	require.True(t, ok)
	assert.Equal(t, finding.DomainSecurity, r.Domain)
	_, ok = LookupRule("security.nope")
	assert.False(t, ok)
}
