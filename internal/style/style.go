// Package style checks Python source against a subset of the PEP 8 layout
// rules, using pycodestyle's codes and messages, and attaches the matching
// PEP 8 wording to each issue.
package style

import (
	"sort"
	"strings"

	"github.com/dhirajnair/pspec/internal/pysyntax"
)

// DefaultPEP8URL is the canonical PEP 8 document.
const DefaultPEP8URL = "https://peps.python.org/pep-0008/"

// DefaultMaxLineLength is PEP 8's limit for code lines.
const DefaultMaxLineLength = 79

// DefaultIgnore lists the codes pycodestyle disables unless asked for.
// Entries match by prefix, so "E24" covers E241 and E242.
var DefaultIgnore = []string{"E121", "E123", "E126", "E226", "E24", "E704", "W503", "W504"}

// Options tunes a style check.
type Options struct {
	// MaxLineLength is the E501 limit; zero means DefaultMaxLineLength.
	MaxLineLength int

	// Ignore holds code prefixes to suppress on top of DefaultIgnore.
	Ignore []string

	// PEP8URL is the base for section links; empty means DefaultPEP8URL.
	PEP8URL string
}

// Issue is one PEP 8 violation.
type Issue struct {
	Code           string `json:"code" yaml:"code"`
	Message        string `json:"message" yaml:"message"`
	Line           int    `json:"line" yaml:"line"`
	Column         *int   `json:"column,omitempty" yaml:"column,omitempty"`
	PEP8Quote      string `json:"pep8_quote" yaml:"pep8_quote"`
	PEP8Section    string `json:"pep8_section" yaml:"pep8_section"`
	PEP8SectionURL string `json:"pep8_section_url,omitempty" yaml:"pep8_section_url,omitempty"`
	Suggestion     string `json:"suggestion" yaml:"suggestion"`
}

// raw is an issue before enrichment; col is 0-based.
type raw struct {
	code    string
	message string
	line    int
	col     int
}

// Check runs every enabled check over source. Physical-line checks always
// run; checks that need the syntax tree are skipped when it does not parse.
// Issues are sorted by (line, column).
func Check(source string, opts Options) []Issue {
	if opts.MaxLineLength <= 0 {
		opts.MaxLineLength = DefaultMaxLineLength
	}
	if opts.PEP8URL == "" {
		opts.PEP8URL = DefaultPEP8URL
	}
	if source == "" {
		return []Issue{}
	}

	lines := physicalLines(source)
	found := checkPhysical(lines, opts.MaxLineLength)

	if tree, err := pysyntax.Parse(source); err == nil {
		found = append(found, checkTree(tree.Root(), lines)...)
		tree.Close()
	}

	ignore := append(append([]string(nil), DefaultIgnore...), opts.Ignore...)
	out := make([]Issue, 0, len(found))
	seen := make(map[raw]bool, len(found))
	for _, r := range found {
		if ignored(r.code, ignore) || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, enrich(r, opts.PEP8URL))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Line != out[j].Line {
			return out[i].Line < out[j].Line
		}
		return column(out[i]) < column(out[j])
	})
	return out
}

func column(i Issue) int {
	if i.Column == nil {
		return 0
	}
	return *i.Column
}

func ignored(code string, prefixes []string) bool {
	for _, p := range prefixes {
		p = strings.TrimSpace(p)
		if p != "" && strings.HasPrefix(code, p) {
			return true
		}
	}
	return false
}

// enrich attaches PEP 8 wording. Unknown codes get a generic pointer to the
// whole document and keep their own message as the suggestion.
func enrich(r raw, baseURL string) Issue {
	issue := Issue{Code: r.code, Message: r.message, Line: r.line}
	if r.col > 0 {
		col := r.col
		issue.Column = &col
	}
	entry, ok := pep8Map[r.code]
	if !ok {
		issue.PEP8Quote = "This style issue is reported by pycodestyle; see PEP 8 for the full style guide."
		issue.PEP8Section = "PEP 8"
		issue.Suggestion = r.message
		if issue.Suggestion == "" {
			issue.Suggestion = "Review PEP 8 and correct the reported issue."
		}
		return issue
	}
	issue.PEP8Quote = entry.quote
	issue.PEP8Section = entry.section
	issue.Suggestion = entry.suggestion
	if frag := sectionFragments[entry.section]; frag != "" {
		issue.PEP8SectionURL = baseURL + "#" + frag
	}
	return issue
}

// Lookup returns the PEP 8 quote, section and suggestion for a code.
func Lookup(code string) (quote, section, suggestion string, ok bool) {
	e, ok := pep8Map[code]
	return e.quote, e.section, e.suggestion, ok
}
