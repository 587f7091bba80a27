package analysis

import (
	"fmt"
	"regexp"

	"github.com/dhirajnair/pspec/internal/finding"
	"github.com/dhirajnair/pspec/internal/pysyntax"
)

var (
	dangerousEval = rule{
		domain:      finding.DomainSecurity,
		id:          "security.dangerous_eval",
		title:       "Use of eval/exec",
		severity:    finding.SeverityAdvisory,
		explanation: "eval/exec can execute arbitrary code; security risk if input is untrusted.",
		suggestion:  "Avoid eval/exec; use ast.literal_eval or structured parsing where possible.",
	}
	unsafeDeserialization = rule{
		domain:      finding.DomainSecurity,
		id:          "security.unsafe_deserialization",
		severity:    finding.SeverityAdvisory,
		explanation: "Deserializing with %s can execute arbitrary code. Security signal.",
		suggestion:  "Prefer JSON or other safe formats; if pickle is required, ensure trusted source only.",
	}
	shellExec = rule{
		domain:      finding.DomainSecurity,
		id:          "security.shell_exec",
		title:       "Shell execution",
		severity:    finding.SeverityAdvisory,
		explanation: "Shell execution without sanitization can be dangerous with user input.",
		suggestion:  "Validate/sanitize input; prefer subprocess with list args over shell=True.",
	}
	hardcodedCredential = rule{
		domain:      finding.DomainSecurity,
		id:          "security.hardcoded_credential",
		severity:    finding.SeverityAdvisory,
		explanation: "Possible hard-coded credential detected. Security signal.",
		suggestion:  "Use environment variables or a secrets manager; never commit credentials.",
	}
)

// Receiver module -> called names.
var (
	evalBuiltins = map[string]bool{"eval": true, "exec": true}

	deserializers = map[string]map[string]bool{
		"pickle":  {"load": true, "loads": true},
		"cPickle": {"load": true, "loads": true},
		"dill":    {"load": true, "loads": true},
		"marshal": {"load": true, "loads": true},
	}

	shellEntryPoints = map[string]map[string]bool{
		"os": {"system": true, "popen": true, "call": true},
		"subprocess": {
			"call": true, "run": true, "Popen": true,
			"check_call": true, "check_output": true,
			"getoutput": true, "getstatusoutput": true,
		},
	}
)

type credentialPattern struct {
	re    *regexp.Regexp
	title string
}

// Checked in order; only the first match on a line is reported.
var credentialPatterns = []credentialPattern{
	{regexp.MustCompile(`(?i)(password|passwd|pwd)\s*=\s*['"][^'"]+['"]`), "Hard-coded password"},
	{regexp.MustCompile(`(?i)(api[_-]?key|apikey)\s*=\s*['"][^'"]+['"]`), "Hard-coded API key"},
	{regexp.MustCompile(`(?i)(secret)\s*=\s*['"][^'"]+['"]`), "Hard-coded secret"},
}

// Security reports dynamic evaluation, unsafe deserialization and shell
// calls found in the tree, then scans each physical line for hard-coded
// credentials.
func Security(source string) []finding.Finding {
	return run(source, func(root pysyntax.Node) []finding.Finding {
		var out []finding.Finding
		for _, call := range pysyntax.Collect(root, pysyntax.KindCall) {
			receiver, name, ok := pysyntax.CallTarget(call)
			if !ok {
				continue
			}
			loc := nodeLocation(call)
			switch {
			case receiver == "" && evalBuiltins[name]:
				out = append(out, dangerousEval.at(loc))
			case deserializers[receiver][name]:
				f := unsafeDeserialization.at(loc)
				f.Title = fmt.Sprintf("Unsafe deserialization (%s)", receiver)
				f.Explanation = fmt.Sprintf(unsafeDeserialization.explanation, receiver)
				out = append(out, f)
			case shellEntryPoints[receiver][name]:
				out = append(out, shellExec.at(loc))
			}
		}
		out = append(out, scanCredentials(source)...)
		return out
	})
}

func scanCredentials(source string) []finding.Finding {
	var out []finding.Finding
	for i, line := range pysyntax.Lines(source) {
		for _, p := range credentialPatterns {
			if p.re.MatchString(line) {
				f := hardcodedCredential.at(finding.At(i + 1))
				f.Title = p.title
				out = append(out, f)
				break
			}
		}
	}
	return out
}
