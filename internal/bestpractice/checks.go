package bestpractice

import (
	"fmt"
	"strings"

	"github.com/dhirajnair/pspec/internal/measure"
	"github.com/dhirajnair/pspec/internal/pysyntax"
)

// Thresholds for the metric-driven rules. A rule fires when the measured
// value is strictly greater.
const (
	maxFunctionSpan  = 50
	maxNesting       = 4
	maxComplexity    = 10
	maxParameters    = 7
	maxClassMethods  = 15
	maxModuleDefines = 25
)

var flagNames = map[string]bool{"flag": true, "enabled": true, "disabled": true}

// functionHit anchors a hit on a function definition.
func functionHit(fn pysyntax.Node, explanation string) Hit {
	h := Hit{Line: fn.Line(), Function: pysyntax.Name(fn), Explanation: explanation}
	if cls, ok := pysyntax.OwningClass(fn); ok {
		h.ClassName = pysyntax.Name(cls)
	}
	return h
}

func checkBareExcept(n pysyntax.Node) []Hit {
	if n.Kind() != pysyntax.KindExcept || pysyntax.HandlerType(n).Valid() {
		return nil
	}
	return []Hit{{
		Line:        n.Line(),
		Explanation: "Bare except: catches all exceptions including BaseException and system exits.",
		Suggestion:  "Catch a specific exception type (e.g. except ValueError:) or at least 'except Exception:'.",
	}}
}

func checkLongFunction(n pysyntax.Node) []Hit {
	if n.Kind() != pysyntax.KindFunction {
		return nil
	}
	span := measure.LineSpan(n)
	if span <= maxFunctionSpan {
		return nil
	}
	return []Hit{functionHit(n, fmt.Sprintf(
		"Function spans %d lines; long functions are harder to test and maintain.", span))}
}

func checkDeepNesting(n pysyntax.Node) []Hit {
	if n.Kind() != pysyntax.KindFunction {
		return nil
	}
	depth := measure.MaxNesting(n)
	if depth <= maxNesting {
		return nil
	}
	return []Hit{functionHit(n, fmt.Sprintf(
		"Nesting depth up to %d levels; deep nesting reduces readability.", depth))}
}

func checkCyclomaticComplexity(n pysyntax.Node) []Hit {
	if n.Kind() != pysyntax.KindFunction {
		return nil
	}
	c := measure.Cyclomatic(n)
	if c <= maxComplexity {
		return nil
	}
	return []Hit{functionHit(n, fmt.Sprintf(
		"Cyclomatic complexity is %d; high complexity makes testing and reasoning harder.", c))}
}

// checkTooManyParams counts every declared parameter. For a method declared
// directly in a class body the implicit receiver is not counted, unless the
// method is a staticmethod or has no positional parameter to receive it.
func checkTooManyParams(n pysyntax.Node) []Hit {
	if n.Kind() != pysyntax.KindFunction {
		return nil
	}
	params := pysyntax.Params(n)
	count := len(params)
	if hasImplicitReceiver(n, params) {
		count--
	}
	if count <= maxParameters {
		return nil
	}
	return []Hit{functionHit(n, fmt.Sprintf(
		"Function has %d parameters; many parameters complicate the API and call sites.", count))}
}

func hasImplicitReceiver(fn pysyntax.Node, params []pysyntax.Param) bool {
	if _, ok := pysyntax.OwningClass(fn); !ok {
		return false
	}
	if pysyntax.HasDecorator(fn, "staticmethod") {
		return false
	}
	return len(params) > 0 && !params[0].Variadic && !params[0].KeywordOnly
}

func checkBooleanFlags(n pysyntax.Node) []Hit {
	if n.Kind() != pysyntax.KindFunction {
		return nil
	}
	var flags []string
	for _, p := range pysyntax.Params(n) {
		if p.Variadic || p.KeywordOnly || p.Name == "self" || p.Name == "cls" {
			continue
		}
		byName := strings.HasPrefix(p.Name, "is_") || strings.HasPrefix(p.Name, "has_") || flagNames[p.Name]
		byDefault := p.Default.Kind() == pysyntax.KindTrue || p.Default.Kind() == pysyntax.KindFalse
		if byName || byDefault {
			flags = append(flags, p.Name)
		}
	}
	if len(flags) == 0 {
		return nil
	}
	return []Hit{functionHit(n, fmt.Sprintf(
		"Boolean-like parameter(s): %s; flag arguments often indicate two code paths.", strings.Join(flags, ", ")))}
}

// checkElseAfterReturn looks at an if (or elif) whose branch ends in a
// return and whose next alternative is a plain else. The hit is anchored on
// the first statement of the else body.
func checkElseAfterReturn(n pysyntax.Node) []Hit {
	var alts []pysyntax.Node
	switch n.Kind() {
	case pysyntax.KindIf:
		alts = alternatives(n)
	case pysyntax.KindElif:
		siblings := alternatives(n.Parent())
		for i, s := range siblings {
			if s.Equal(n) {
				alts = siblings[i+1:]
				break
			}
		}
	default:
		return nil
	}
	if len(alts) == 0 || alts[0].Kind() != pysyntax.KindElse {
		return nil
	}
	branch := pysyntax.Statements(n.Field("consequence"))
	if len(branch) == 0 || branch[len(branch)-1].Kind() != pysyntax.KindReturn {
		return nil
	}
	elseBody := pysyntax.Statements(pysyntax.Body(alts[0]))
	if len(elseBody) == 0 {
		return nil
	}
	return []Hit{{
		Line:        elseBody[0].Line(),
		Explanation: "An 'else' block after an 'if' that returns can often be flattened for readability.",
		Suggestion:  "Move the else body to the same level as the if; use early return in the if.",
	}}
}

// alternatives returns the elif and else clauses of an if statement.
func alternatives(ifStmt pysyntax.Node) []pysyntax.Node {
	var out []pysyntax.Node
	for _, c := range ifStmt.Children() {
		if k := c.Kind(); k == pysyntax.KindElif || k == pysyntax.KindElse {
			out = append(out, c)
		}
	}
	return out
}

func checkLoopAppend(n pysyntax.Node) []Hit {
	if n.Kind() != pysyntax.KindFor {
		return nil
	}
	found := false
	pysyntax.Walk(n, func(c pysyntax.Node) bool {
		if found {
			return false
		}
		if c.Kind() != pysyntax.KindExpressionStatement {
			return true
		}
		kids := c.Children()
		if len(kids) == 1 && isAppendCall(kids[0]) {
			found = true
		}
		return !found
	})
	if !found {
		return nil
	}
	return []Hit{{
		Line:        n.Line(),
		Explanation: "Building a list in a loop with .append() can often be a list comprehension.",
		Suggestion:  "Consider a list comprehension [f(x) for x in iterable] if the body is simple.",
	}}
}

func isAppendCall(n pysyntax.Node) bool {
	if n.Kind() != pysyntax.KindCall {
		return false
	}
	receiver, name, ok := pysyntax.CallTarget(n)
	if !ok || receiver == "" || name != "append" {
		return false
	}
	return len(n.Field("arguments").Children()) > 0
}

func checkLargeClass(n pysyntax.Node) []Hit {
	if n.Kind() != pysyntax.KindClass {
		return nil
	}
	methods := 0
	for _, d := range pysyntax.Definitions(pysyntax.Body(n)) {
		if d.Kind() == pysyntax.KindFunction && !pysyntax.IsDunder(pysyntax.Name(d)) {
			methods++
		}
	}
	if methods <= maxClassMethods {
		return nil
	}
	return []Hit{{
		Line:        n.Line(),
		ClassName:   pysyntax.Name(n),
		Explanation: fmt.Sprintf("Class has %d public methods; large classes often have too many responsibilities.", methods),
	}}
}

func checkOverloadedModule(n pysyntax.Node) []Hit {
	if n.Kind() != pysyntax.KindModule {
		return nil
	}
	count := len(pysyntax.Definitions(n))
	if count <= maxModuleDefines {
		return nil
	}
	return []Hit{{
		Line:        1,
		Explanation: fmt.Sprintf("Module has %d top-level classes/functions; consider splitting into smaller modules.", count),
	}}
}

// doesNothing reports whether a handler body is empty or a lone no-op.
func doesNothing(handler pysyntax.Node) bool {
	stmts := pysyntax.Statements(pysyntax.Body(handler))
	return len(stmts) == 0 || pysyntax.IsNoOp(stmts)
}

func checkSwallow(n pysyntax.Node) []Hit {
	if n.Kind() != pysyntax.KindExcept || !pysyntax.HandlerType(n).Valid() || !doesNothing(n) {
		return nil
	}
	return []Hit{{
		Line:        n.Line(),
		Explanation: "Exception is caught but not logged or re-raised; failures can be hard to diagnose.",
	}}
}

func checkBroadCatch(n pysyntax.Node) []Hit {
	if n.Kind() != pysyntax.KindExcept {
		return nil
	}
	typ := pysyntax.HandlerType(n)
	name := ""
	switch typ.Kind() {
	case pysyntax.KindIdentifier:
		name = typ.Text()
	case pysyntax.KindAttribute:
		name = typ.Field("attribute").Text()
	}
	if name != "Exception" || !doesNothing(n) {
		return nil
	}
	return []Hit{{
		Line:        n.Line(),
		Explanation: "Catching Exception with no handling can hide bugs; prefer specific exception types.",
	}}
}

// checkStringConcat reports the first name += expression inside a loop,
// searching breadth first.
func checkStringConcat(n pysyntax.Node) []Hit {
	if k := n.Kind(); k != pysyntax.KindFor && k != pysyntax.KindWhile {
		return nil
	}
	var hit pysyntax.Node
	pysyntax.WalkBreadth(n, func(c pysyntax.Node) bool {
		if c.Kind() == pysyntax.KindAugAssign &&
			c.Field("operator").Text() == "+=" &&
			c.Field("left").Kind() == pysyntax.KindIdentifier {
			hit = c
			return false
		}
		return true
	})
	if !hit.Valid() {
		return nil
	}
	return []Hit{{
		Line:        hit.Line(),
		Explanation: "Repeated += on a string in a loop allocates many intermediate strings.",
	}}
}

func checkGlobalState(n pysyntax.Node) []Hit {
	if n.Kind() != pysyntax.KindFunction {
		return nil
	}
	for _, s := range pysyntax.Statements(pysyntax.Body(n)) {
		if s.Kind() == pysyntax.KindGlobal {
			return []Hit{functionHit(n,
				"Function modifies global state; this makes testing and reasoning about behavior harder.")}
		}
	}
	return nil
}
