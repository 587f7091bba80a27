package style

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dhirajnair/pspec/internal/pysyntax"
)

// Node types whose later lines continue the line they start on.
var bracketed = map[string]bool{
	"argument_list":            true,
	"parameters":               true,
	"list":                     true,
	"dictionary":               true,
	"set":                      true,
	"tuple":                    true,
	"parenthesized_expression": true,
	"subscript":                true,
	"list_comprehension":       true,
	"dictionary_comprehension": true,
	"set_comprehension":        true,
	"generator_expression":     true,
	"string":                   true,
	"concatenated_string":      true,
	"import_from_statement":    true,
	"with_clause":              true,
}

var ambiguousNames = map[string]bool{"l": true, "O": true, "I": true}

func checkTree(root pysyntax.Node, lines []physicalLine) []raw {
	cont := continuationLines(root, lines)
	out := checkBlankLines(lines, cont, oneLinerDefs(root))
	out = append(out, checkIndentation(lines, cont)...)
	out = append(out, checkImportPosition(root)...)
	out = append(out, checkTokens(root, lines, cont)...)
	pysyntax.Walk(root, func(n pysyntax.Node) bool {
		out = append(out, checkNode(n)...)
		return true
	})
	return out
}

// continuationLines marks, by 1-based line number, lines that continue a
// logical line started earlier: the inside of brackets and strings, and the
// line after a backslash.
func continuationLines(root pysyntax.Node, lines []physicalLine) []bool {
	cont := make([]bool, len(lines)+2)
	mark := func(from, to int) {
		for l := from; l <= to && l < len(cont); l++ {
			cont[l] = true
		}
	}
	pysyntax.Walk(root, func(n pysyntax.Node) bool {
		if bracketed[n.Type()] && n.EndLine() > n.Line() {
			mark(n.Line()+1, n.EndLine())
		}
		return true
	})
	for i, l := range lines {
		if strings.HasSuffix(strings.TrimRight(l.text, " \t"), "\\") {
			mark(i+2, i+2)
		}
	}
	return cont
}

func isTopLevelStart(logical string) bool {
	return strings.HasPrefix(logical, "def ") ||
		strings.HasPrefix(logical, "async def ") ||
		strings.HasPrefix(logical, "class ") ||
		strings.HasPrefix(logical, "@")
}

func isDefStart(logical string) bool {
	return strings.HasPrefix(logical, "def ") || strings.HasPrefix(logical, "async def ")
}

// oneLinerDefs marks the lines of definitions whose body shares the header
// line. A run of them needs no blank lines in between.
func oneLinerDefs(root pysyntax.Node) map[int]bool {
	out := map[int]bool{}
	pysyntax.Walk(root, func(n pysyntax.Node) bool {
		if n.Kind() == pysyntax.KindFunction || n.Kind() == pysyntax.KindClass {
			if body := pysyntax.Body(n); body.Valid() && body.Line() == n.Line() {
				out[n.Line()] = true
			}
		}
		return true
	})
	return out
}

var docstringStart = regexp.MustCompile(`^u?r?["']`)

// checkBlankLines follows pycodestyle's blank_lines check for E301 to E306.
// Comment-only lines are logical lines with empty text.
func checkBlankLines(lines []physicalLine, cont []bool, oneLiners map[int]bool) []raw {
	var out []raw
	blankLines, blankBefore := 0, 0
	previousLogical, previousUnindented := "", ""
	previousIndent, previousLine := 0, 0
	for i, l := range lines {
		n := i + 1
		if cont[n] {
			continue
		}
		stripped := strings.TrimSpace(l.text)
		if stripped == "" {
			blankLines++
			continue
		}
		if blankLines > blankBefore {
			blankBefore = blankLines
		}
		indent := expandIndent(l.text)
		comment := strings.HasPrefix(stripped, "#")
		logical := stripped
		if comment {
			logical = ""
		}

		switch {
		case previousLogical == "" && blankBefore < 2:
		case strings.HasPrefix(previousLogical, "@"):
			if blankLines > 0 {
				out = append(out, raw{"E304", fmt.Sprintf("blank lines found after function decorator (%d)", blankLines), n, 0})
			}
		case blankLines > 2 || (indent > 0 && blankLines == 2):
			out = append(out, raw{"E303", fmt.Sprintf("too many blank lines (%d)", blankLines), n, 0})
		case logical != "" && isTopLevelStart(logical):
			switch {
			case oneLiners[n] && blankBefore == 0 && oneLiners[previousLine]:
			case indent > 0:
				if blankBefore != 1 && previousIndent >= indent && !docstringStart.MatchString(previousLogical) {
					if nestedDefinition(lines, i, indent) {
						out = append(out, raw{"E306", "expected 1 blank line before a nested definition, found 0", n, 0})
					} else {
						out = append(out, raw{"E301", "expected 1 blank line, found 0", n, 0})
					}
				}
			case blankBefore != 2:
				out = append(out, raw{"E302", fmt.Sprintf("expected 2 blank lines, found %d", blankBefore), n, 0})
			}
		case logical != "" && indent == 0 && blankBefore != 2 &&
			(isDefStart(previousUnindented) || strings.HasPrefix(previousUnindented, "class ")):
			out = append(out, raw{"E305", fmt.Sprintf("expected 2 blank lines after class or function definition, found %d", blankBefore), n, 0})
		}

		if !comment {
			previousLogical, previousIndent, previousLine = logical, indent, n
			if indent == 0 {
				previousUnindented = logical
			}
			blankBefore = 0
		}
		blankLines = 0
	}
	return out
}

// nestedDefinition walks back from line index i to the nearest less
// indented line and reports whether it opens a def.
func nestedDefinition(lines []physicalLine, i, indent int) bool {
	ancestor := indent
	for j := i - 1; j >= 0; j-- {
		text := lines[j].text
		if strings.TrimSpace(text) == "" {
			continue
		}
		if level := expandIndent(text); level < ancestor {
			ancestor = level
			if isDefStart(strings.TrimLeft(text, " \t")) {
				return true
			}
			if ancestor == 0 {
				return false
			}
		}
	}
	return false
}

var dunderAssignment = regexp.MustCompile(`^__([^\s]+)__(?::\s*[a-zA-Z.]+)? = `)

// checkImportPosition reports E402 for a module-level import after code.
// Docstrings, dunder assignments and conditional blocks may come first.
func checkImportPosition(root pysyntax.Node) []raw {
	var out []raw
	seenDocstring, seenCode := false, false
	prevEnd := 0
	for _, stmt := range root.Children() {
		if stmt.Kind() == pysyntax.KindComment || stmt.Line() <= prevEnd {
			continue
		}
		prevEnd = stmt.EndLine()
		text := stmt.Text()
		switch {
		case stmt.Kind() == pysyntax.KindImport || stmt.Kind() == pysyntax.KindImportFrom:
			if seenCode {
				out = append(out, raw{"E402", "module level import not at top of file", stmt.Line(), 0})
			}
		case dunderAssignment.MatchString(text):
		case hasAnyPrefix(text, "try", "except", "else", "finally", "with", "if", "elif"):
		case isStringLiteral(text):
			if seenDocstring {
				seenCode = true
			}
			seenDocstring = true
		default:
			seenCode = true
		}
	}
	return out
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func isStringLiteral(s string) bool {
	if s != "" && strings.ContainsRune("uUbB", rune(s[0])) {
		s = s[1:]
	}
	if s != "" && (s[0] == 'r' || s[0] == 'R') {
		s = s[1:]
	}
	return s != "" && (s[0] == '"' || s[0] == '\'')
}

func checkIndentation(lines []physicalLine, cont []bool) []raw {
	var out []raw
	for i, l := range lines {
		n := i + 1
		stripped := strings.TrimSpace(l.text)
		if cont[n] || stripped == "" || strings.HasPrefix(stripped, "#") {
			continue
		}
		if expandIndent(l.text)%4 != 0 {
			out = append(out, raw{"E111", "indentation is not a multiple of 4", n, 0})
		}
	}
	return out
}

func checkNode(n pysyntax.Node) []raw {
	switch n.Kind() {
	case pysyntax.KindModule, pysyntax.KindBlock:
		return checkSemicolons(n)
	case pysyntax.KindImport:
		return checkImport(n)
	case pysyntax.KindComparison:
		return append(checkSingletonComparison(n), checkTypeComparison(n)...)
	case pysyntax.KindAssign:
		return checkAssignment(n)
	case pysyntax.KindFor:
		out := checkCompound(n)
		return append(out, ambiguousTargets(n.Field("left"))...)
	case pysyntax.KindExcept:
		out := checkCompound(n)
		if !pysyntax.HandlerType(n).Valid() {
			out = append(out, raw{"E722", "do not use bare 'except'", n.Line(), n.Column()})
		}
		return out
	case pysyntax.KindFunction:
		out := checkCompound(n)
		if name := n.Field("name"); ambiguousNames[name.Text()] {
			out = append(out, raw{"E743", fmt.Sprintf("ambiguous function definition '%s'", name.Text()), name.Line(), name.Column()})
		}
		for _, p := range pysyntax.Params(n) {
			if ambiguousNames[p.Name] {
				out = append(out, raw{"E741", fmt.Sprintf("ambiguous variable name '%s'", p.Name), p.Line, p.Column})
			}
		}
		return out
	case pysyntax.KindClass:
		out := checkCompound(n)
		if name := n.Field("name"); ambiguousNames[name.Text()] {
			out = append(out, raw{"E742", fmt.Sprintf("ambiguous class definition '%s'", name.Text()), name.Line(), name.Column()})
		}
		return out
	case pysyntax.KindIf, pysyntax.KindElif, pysyntax.KindElse,
		pysyntax.KindWhile, pysyntax.KindWith, pysyntax.KindTry, pysyntax.KindFinally:
		return checkCompound(n)
	}
	if n.Type() == "not_operator" {
		return checkNegativeComparison(n)
	}
	return nil
}

// checkCompound reports a clause whose body starts on the header line.
func checkCompound(n pysyntax.Node) []raw {
	body := pysyntax.Body(n)
	if !body.Valid() {
		return nil
	}
	var colon pysyntax.Node
	for _, tok := range n.Tokens() {
		if tok.Equal(body) {
			break
		}
		if tok.Type() == ":" {
			colon = tok
		}
	}
	if !colon.Valid() || body.Line() != colon.Line() {
		return nil
	}
	if n.Kind() == pysyntax.KindFunction {
		return []raw{{"E704", "statement on same line as def", colon.Line(), colon.Column()}}
	}
	return []raw{{"E701", "multiple statements on one line (colon)", colon.Line(), colon.Column()}}
}

func checkSemicolons(n pysyntax.Node) []raw {
	var out []raw
	toks := n.Tokens()
	for i, tok := range toks {
		if tok.Type() != ";" {
			continue
		}
		followed := i+1 < len(toks) &&
			toks[i+1].Kind() != pysyntax.KindComment &&
			toks[i+1].Type() != ";" &&
			toks[i+1].Line() == tok.Line()
		if followed {
			out = append(out, raw{"E702", "multiple statements on one line (semicolon)", tok.Line(), tok.Column()})
		} else {
			out = append(out, raw{"E703", "statement ends with a semicolon", tok.Line(), tok.Column()})
		}
	}
	return out
}

func checkImport(n pysyntax.Node) []raw {
	if len(n.Children()) < 2 {
		return nil
	}
	for _, tok := range n.Tokens() {
		if tok.Type() == "," {
			return []raw{{"E401", "multiple imports on one line", tok.Line(), tok.Column()}}
		}
	}
	return nil
}

func checkSingletonComparison(n pysyntax.Node) []raw {
	var out []raw
	toks := n.Tokens()
	for i, tok := range toks {
		op := tok.Type()
		if (op != "==" && op != "!=") || i == 0 || i+1 >= len(toks) {
			continue
		}
		singleton := singletonName(toks[i+1])
		if singleton == "" {
			singleton = singletonName(toks[i-1])
		}
		if singleton == "" {
			continue
		}
		same := op == "=="
		neg := "not "
		if same {
			neg = ""
		}
		msg := fmt.Sprintf("'if cond is %s%s:'", neg, singleton)
		code := "E711"
		if singleton != "None" {
			code = "E712"
			nonzero := (singleton == "True" && same) || (singleton == "False" && !same)
			prefix := "not "
			if nonzero {
				prefix = ""
			}
			msg += fmt.Sprintf(" or 'if %scond:'", prefix)
		}
		out = append(out, raw{code, fmt.Sprintf("comparison to %s should be %s", singleton, msg), tok.Line(), tok.Column()})
	}
	return out
}

// checkNegativeComparison reports "not x in y" and "not x is y" where x is a
// single bracket-free operand.
func checkNegativeComparison(n pysyntax.Node) []raw {
	cmp := n.Field("argument")
	if cmp.Kind() != pysyntax.KindComparison {
		return nil
	}
	toks := cmp.Tokens()
	if len(toks) < 3 {
		return nil
	}
	left := toks[0]
	if left.Kind() != pysyntax.KindString && strings.ContainsAny(left.Text(), "[](){} \t\n") {
		return nil
	}
	switch toks[1].Type() {
	case "in":
		return []raw{{"E713", "test for membership should be 'not in'", n.Line(), n.Column()}}
	case "is":
		return []raw{{"E714", "test for object identity should be 'is not'", n.Line(), n.Column()}}
	}
	return nil
}

const typeComparisonMessage = "do not compare types, for exact checks use `is` / `is not`, for instance checks use `isinstance()`"

// checkTypeComparison reports "type(x) == y". "y == type(x)" is allowed when
// x is a plain name.
func checkTypeComparison(n pysyntax.Node) []raw {
	toks := n.Tokens()
	for i := 1; i+1 < len(toks); i++ {
		op := toks[i]
		if op.Type() != "==" && op.Type() != "!=" {
			continue
		}
		left, right := toks[i-1], toks[i+1]
		if _, ok := typeCallArgument(left); ok && left.EndLine() == op.Line() {
			if _, col := left.End(); col < op.Column() {
				return []raw{{"E721", typeComparisonMessage, left.Line(), left.Column()}}
			}
		}
		if arg, ok := typeCallArgument(right); ok && right.Column() > op.Column()+len(op.Type()) {
			if arg.Kind() == pysyntax.KindIdentifier {
				return nil
			}
			return []raw{{"E721", typeComparisonMessage, op.Line(), op.Column()}}
		}
	}
	return nil
}

// typeCallArgument returns the argument of a bare type(...) call with one
// argument that contains no closing parenthesis.
func typeCallArgument(n pysyntax.Node) (pysyntax.Node, bool) {
	if n.Kind() != pysyntax.KindCall {
		return pysyntax.Node{}, false
	}
	fn := n.Field("function")
	if fn.Kind() != pysyntax.KindIdentifier || fn.Text() != "type" {
		return pysyntax.Node{}, false
	}
	args := n.Field("arguments").Children()
	if len(args) != 1 || strings.Contains(args[0].Text(), ")") {
		return pysyntax.Node{}, false
	}
	return args[0], true
}

func singletonName(n pysyntax.Node) string {
	switch n.Kind() {
	case pysyntax.KindNone:
		return "None"
	case pysyntax.KindTrue:
		return "True"
	case pysyntax.KindFalse:
		return "False"
	}
	return ""
}

func checkAssignment(n pysyntax.Node) []raw {
	var out []raw
	left := n.Field("left")
	if left.Kind() == pysyntax.KindIdentifier && n.Field("right").Kind() == pysyntax.KindLambda {
		out = append(out, raw{"E731", "do not assign a lambda expression, use a def", n.Line(), 0})
	}
	return append(out, ambiguousTargets(left)...)
}

// ambiguousTargets reports l, O and I bound as plain names or inside a
// tuple or list target.
func ambiguousTargets(target pysyntax.Node) []raw {
	var out []raw
	switch target.Type() {
	case "identifier":
		if ambiguousNames[target.Text()] {
			out = append(out, raw{"E741", fmt.Sprintf("ambiguous variable name '%s'", target.Text()), target.Line(), target.Column()})
		}
	case "pattern_list", "tuple_pattern", "list_pattern", "expression_list", "tuple", "list":
		for _, c := range target.Children() {
			out = append(out, ambiguousTargets(c)...)
		}
	}
	return out
}
