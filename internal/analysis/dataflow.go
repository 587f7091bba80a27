package analysis

import (
	"fmt"

	"github.com/dhirajnair/pspec/internal/finding"
	"github.com/dhirajnair/pspec/internal/pysyntax"
)

var shadowing = rule{
	domain:     finding.DomainDataflow,
	id:         "dataflow.shadowing",
	title:      "Variable shadowing",
	severity:   finding.SeverityAdvisory,
	suggestion: "Rename the inner variable to avoid confusion.",
}

// Dataflow reports plain assignments inside functions that rebind a name
// assigned at module scope. Each finding names the outermost function being
// scanned, so a rebinding inside a nested helper is attributed to its outer
// function.
func Dataflow(source string) []finding.Finding {
	return run(source, func(root pysyntax.Node) []finding.Finding {
		module := make(map[string]bool)
		for _, stmt := range pysyntax.Statements(root) {
			for _, name := range assignedNames(stmt) {
				module[name] = true
			}
		}
		if len(module) == 0 {
			return nil
		}

		var out []finding.Finding
		// Pre-order: outer functions are scanned before the helpers they
		// contain, so after dedup the outer attribution wins.
		for _, fn := range pysyntax.Collect(root, pysyntax.KindFunction) {
			fnName := pysyntax.Name(fn)
			pysyntax.Walk(pysyntax.Body(fn), func(n pysyntax.Node) bool {
				if n.Kind() != pysyntax.KindExpressionStatement {
					return true
				}
				for _, name := range assignedNames(n) {
					if !module[name] {
						continue
					}
					f := shadowing.at(finding.Location{Line: n.Line(), Function: fnName})
					f.Explanation = fmt.Sprintf("'%s' shadows a name from module scope.", name)
					out = append(out, f)
				}
				return true
			})
		}
		return out
	})
}

// assignedNames returns the plain-name targets of an unannotated assignment
// statement, following chains such as a = b = 1. Tuple, attribute and
// subscript targets are ignored.
func assignedNames(stmt pysyntax.Node) []string {
	if stmt.Kind() != pysyntax.KindExpressionStatement {
		return nil
	}
	kids := stmt.Children()
	if len(kids) != 1 || kids[0].Kind() != pysyntax.KindAssign {
		return nil
	}
	var names []string
	for a := kids[0]; a.Kind() == pysyntax.KindAssign; a = a.Field("right") {
		if a.Field("type").Valid() {
			break
		}
		if left := a.Field("left"); left.Kind() == pysyntax.KindIdentifier {
			names = append(names, left.Text())
		}
	}
	return names
}
