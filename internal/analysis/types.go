package analysis

import (
	"github.com/dhirajnair/pspec/internal/finding"
	"github.com/dhirajnair/pspec/internal/pysyntax"
)

var (
	returnAny = rule{
		domain:      finding.DomainTypes,
		id:          "types.return_any",
		title:       "Return type is Any",
		severity:    finding.SeverityAdvisory,
		explanation: "Return type annotated as Any loses type safety and intent.",
		suggestion:  "Use a concrete return type where possible.",
	}
	paramAny = rule{
		domain:      finding.DomainTypes,
		id:          "types.param_any",
		title:       "Parameter typed as Any",
		severity:    finding.SeverityAdvisory,
		explanation: "Parameter annotated as Any reduces type checking benefit.",
		suggestion:  "Use a more specific type if possible.",
	}
)

// Types reports return and parameter annotations that are exactly the bare
// name Any. Generic forms such as List[Any] or typing.Any do not match.
func Types(source string) []finding.Finding {
	return run(source, func(root pysyntax.Node) []finding.Finding {
		var out []finding.Finding
		for _, fn := range pysyntax.Collect(root, pysyntax.KindFunction) {
			if pysyntax.IsBareName(fn.Field("return_type"), "Any") {
				out = append(out, returnAny.at(definitionLocation(fn)))
			}
			name := pysyntax.Name(fn)
			for _, p := range pysyntax.Params(fn) {
				if !pysyntax.IsBareName(p.Annotation, "Any") {
					continue
				}
				loc := finding.At(p.Line).WithColumn(p.Column)
				loc.Function = name
				out = append(out, paramAny.at(loc))
			}
		}
		return out
	})
}
