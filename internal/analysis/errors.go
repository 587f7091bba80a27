package analysis

import (
	"github.com/dhirajnair/pspec/internal/finding"
	"github.com/dhirajnair/pspec/internal/pysyntax"
)

var (
	bareExcept = rule{
		domain:      finding.DomainErrors,
		id:          "errors.bare_except",
		title:       "Bare except clause",
		severity:    finding.SeverityWarning,
		explanation: "Bare except catches all exceptions including BaseException and system exits.",
		suggestion:  "Catch a specific exception type or at least 'except Exception:'.",
	}
	caughtAndIgnored = rule{
		domain:      finding.DomainErrors,
		id:          "errors.caught_and_ignored",
		title:       "Exception caught and ignored",
		severity:    finding.SeverityWarning,
		explanation: "Exception is caught but not logged or re-raised.",
		suggestion:  "Log the exception or re-raise; avoid silent failure.",
	}
	silentCatch = rule{
		domain:      finding.DomainErrors,
		id:          "errors.silent_catch",
		title:       "Silent exception handler",
		severity:    finding.SeverityAdvisory,
		explanation: "Handler body is only pass; exceptions are swallowed.",
		suggestion:  "At least log; consider re-raising or handling specifically.",
	}
)

// Errors inspects every exception handler. One handler may produce several
// findings: a bare "except: pass" is both a bare except and a silent catch.
func Errors(source string) []finding.Finding {
	return run(source, func(root pysyntax.Node) []finding.Finding {
		var out []finding.Finding
		for _, h := range pysyntax.Collect(root, pysyntax.KindExcept) {
			loc := nodeLocation(h)
			typ := pysyntax.HandlerType(h)
			stmts := pysyntax.Statements(pysyntax.Body(h))
			noop := pysyntax.IsNoOp(stmts)

			switch {
			case !typ.Valid():
				out = append(out, bareExcept.at(loc))
			case isNamed(typ, "Exception") && (len(stmts) == 0 || noop):
				out = append(out, caughtAndIgnored.at(loc))
			}
			if noop {
				out = append(out, silentCatch.at(loc))
			}
		}
		return out
	})
}

// isNamed reports whether expr is the bare identifier name.
func isNamed(expr pysyntax.Node, name string) bool {
	return expr.Kind() == pysyntax.KindIdentifier && expr.Text() == name
}
