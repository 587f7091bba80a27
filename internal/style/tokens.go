package style

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dhirajnair/pspec/internal/pysyntax"
)

type tokenClass int

const (
	tokOp tokenClass = iota
	tokName
	tokNumber
	tokString
	tokComment
)

// token is one lexical token recovered from the tree's leaves. Lines are
// 1-based and columns 0-based byte offsets.
type token struct {
	class           tokenClass
	text            string
	parent          string
	line, col       int
	endLine, endCol int
}

func (t token) op(texts ...string) bool {
	if t.class != tokOp {
		return false
	}
	for _, s := range texts {
		if t.text == s {
			return true
		}
	}
	return false
}

// touches reports whether next starts exactly where t ends.
func (t token) touches(next token) bool {
	return t.endLine == next.line && t.endCol == next.col
}

var pyKeywords = setOf("False", "None", "True", "and", "as", "assert", "async", "await",
	"break", "class", "continue", "def", "del", "elif", "else", "except", "finally",
	"for", "from", "global", "if", "import", "in", "is", "lambda", "nonlocal", "not",
	"or", "pass", "raise", "return", "try", "while", "with", "yield")

var softKeywords = setOf("_", "case", "match", "type")

var singletons = setOf("False", "None", "True")

var (
	wsNeeded = setOf("**=", "*=", "/=", "//=", "+=", "-=", "!=", "<", ">", "%=", "^=",
		"&=", "|=", "==", "<=", ">=", "<<=", ">>=", "=", "@=", "->", ":=")
	arithmetic = setOf("**", "*", "/", "//", "+", "-", "@")
	wsOptional = setOf("**", "*", "/", "//", "+", "-", "@", "^", "&", "|", "<<", ">>", "%")
	unary      = setOf(">>", "**", "*", "+", "-")
)

func setOf(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

func isKeyword(t token) bool { return t.class == tokName && pyKeywords[t.text] }

// spacedKeyword is pycodestyle's KEYWORDS set: the hard keywords plus print,
// without the singletons.
func spacedKeyword(t token) bool {
	return t.class == tokName && (t.text == "print" || pyKeywords[t.text]) && !singletons[t.text]
}

// lexTokens flattens the tree into tokens in source order. Strings and
// comments are single tokens; backslash continuations are dropped.
func lexTokens(root pysyntax.Node) []token {
	var out []token
	var visit func(n pysyntax.Node)
	visit = func(n pysyntax.Node) {
		var class tokenClass
		switch n.Type() {
		case "line_continuation":
			return
		case "string":
			class = tokString
		case "comment":
			class = tokComment
		default:
			if kids := n.Tokens(); len(kids) > 0 {
				for _, c := range kids {
					visit(c)
				}
				return
			}
			class = classify(n.Text())
		}
		endLine, endCol := n.End()
		if endLine == n.Line() && endCol == n.Column() {
			return
		}
		out = append(out, token{
			class:   class,
			text:    n.Text(),
			parent:  n.Parent().Type(),
			line:    n.Line(),
			col:     n.Column(),
			endLine: endLine,
			endCol:  endCol,
		})
	}
	visit(root)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].line != out[j].line {
			return out[i].line < out[j].line
		}
		return out[i].col < out[j].col
	})
	return out
}

func classify(text string) tokenClass {
	r, _ := utf8.DecodeRuneInString(text)
	switch {
	case r == '_' || unicode.IsLetter(r):
		return tokName
	case unicode.IsDigit(r) || (r == '.' && len(text) > 1 && text[1] >= '0' && text[1] <= '9'):
		return tokNumber
	}
	return tokOp
}

// logicalLines groups tokens the way the tokenizer's NEWLINE does: a token
// on a fresh physical line that is not a continuation starts a new group.
func logicalLines(toks []token, cont []bool) [][]token {
	var out [][]token
	var cur []token
	for i, t := range toks {
		if i > 0 && t.line != toks[i-1].endLine && t.line < len(cont) && !cont[t.line] {
			out = append(out, cur)
			cur = nil
		}
		cur = append(cur, t)
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

func withoutComments(toks []token) []token {
	out := make([]token, 0, len(toks))
	for _, t := range toks {
		if t.class != tokComment {
			out = append(out, t)
		}
	}
	return out
}

// gap returns the source text between two tokens on one physical line.
func gap(lines []physicalLine, a, b token) (string, bool) {
	if a.endLine != b.line || b.line-1 >= len(lines) {
		return "", false
	}
	text := lines[b.line-1].text
	if a.endCol > b.col || b.col > len(text) {
		return "", false
	}
	return text[a.endCol:b.col], true
}

// nextChar is the character right after t on its last line, or "".
func nextChar(lines []physicalLine, t token) string {
	if t.endLine-1 >= len(lines) {
		return ""
	}
	text := lines[t.endLine-1].text
	if t.endCol >= len(text) {
		return ""
	}
	r, _ := utf8.DecodeRuneInString(text[t.endCol:])
	return string(r)
}

func checkTokens(root pysyntax.Node, lines []physicalLine, cont []bool) []raw {
	toks := lexTokens(root)
	out := checkComments(toks, lines)
	for _, logical := range logicalLines(toks, cont) {
		code := withoutComments(logical)
		if len(code) == 0 {
			continue
		}
		out = append(out, extraneousWhitespace(code, lines)...)
		out = append(out, whitespaceBeforeParameters(code)...)
		out = append(out, whitespaceAroundOperator(code, lines)...)
		out = append(out, missingWhitespace(code, lines)...)
		out = append(out, whitespaceAroundKeywords(code, lines)...)
		out = append(out, missingWhitespaceAfterKeyword(code)...)
		out = append(out, whitespaceAroundDefaultEquals(code)...)
	}
	return append(out, invalidEscapes(toks)...)
}

// extraneousWhitespace reports E201, E202 and E203. Whitespace before a
// slice colon is allowed, as PEP 8 shows for ham[lower + offset : upper].
func extraneousWhitespace(code []token, lines []physicalLine) []raw {
	var out []raw
	for i, t := range code {
		if t.op("(", "[", "{") && i+1 < len(code) {
			if ws, ok := gap(lines, t, code[i+1]); ok && ws != "" {
				out = append(out, raw{"E201", fmt.Sprintf("whitespace after '%s'", t.text), t.line, t.endCol})
			}
		}
		if !t.op(")", "]", "}", ",", ";", ":") || i == 0 {
			continue
		}
		prev := code[i-1]
		ws, ok := gap(lines, prev, t)
		if !ok || ws == "" || (prev.text == "," && len(ws) == 1) {
			continue
		}
		if t.text == ":" && t.parent == "slice" {
			continue
		}
		c := "E203"
		if t.op(")", "]", "}") {
			c = "E202"
		}
		out = append(out, raw{c, fmt.Sprintf("whitespace before '%s'", t.text), t.line, t.col - 1})
	}
	return out
}

// whitespaceBeforeParameters reports E211 for "f (x)" and "d [k]".
func whitespaceBeforeParameters(code []token) []raw {
	var out []raw
	for i := 1; i < len(code); i++ {
		t, prev := code[i], code[i-1]
		if !t.op("(", "[") || prev.touches(t) {
			continue
		}
		if !(prev.class == tokName || prev.op(")", "]", "}")) {
			continue
		}
		if (i >= 2 && code[i-2].text == "class") || isKeyword(prev) || softKeywords[prev.text] {
			continue
		}
		out = append(out, raw{"E211", fmt.Sprintf("whitespace before '%s'", t.text), prev.endLine, prev.endCol})
	}
	return out
}

func operatorChars(text string) bool {
	if text == ":=" {
		return true
	}
	return text != "" && strings.Trim(text, "-+*/|!<=>%&^") == ""
}

// whitespaceAroundOperator reports E221 to E224. An operator directly after
// another operator or a comma is skipped, matching the regular expression
// pycodestyle scans the logical line with.
func whitespaceAroundOperator(code []token, lines []physicalLine) []raw {
	var out []raw
	for i := 1; i < len(code); i++ {
		t, prev := code[i], code[i-1]
		if t.class != tokOp || !operatorChars(t.text) {
			continue
		}
		if prev.text == "," || (prev.class == tokOp && operatorChars(prev.text)) {
			continue
		}
		if ws, ok := gap(lines, prev, t); ok {
			switch {
			case strings.Contains(ws, "\t"):
				out = append(out, raw{"E223", "tab before operator", prev.endLine, prev.endCol})
			case len(ws) > 1:
				out = append(out, raw{"E221", "multiple spaces before operator", prev.endLine, prev.endCol})
			}
		}
		if i+1 >= len(code) {
			continue
		}
		if ws, ok := gap(lines, t, code[i+1]); ok {
			switch {
			case strings.Contains(ws, "\t"):
				out = append(out, raw{"E224", "tab after operator", t.endLine, t.endCol})
			case len(ws) > 1:
				out = append(out, raw{"E222", "multiple spaces after operator", t.endLine, t.endCol})
			}
		}
	}
	return out
}

type spaceNeed int

const (
	needNone spaceNeed = iota
	needRequired
	needOptional
)

// missingWhitespace reports E225 to E228 and E231 with pycodestyle's bracket
// tracking: "=" inside parentheses or a lambda is a keyword or default, and
// a colon directly inside brackets is a slice.
func missingWhitespace(code []token, lines []physicalLine) []raw {
	var out []raw
	var stack []string
	need := needNone
	var needLine, needCol int
	var hadSpace bool
	top := func() string {
		if len(stack) == 0 {
			return ""
		}
		return stack[len(stack)-1]
	}

	for i, t := range code {
		switch {
		case t.op("[", "(", "{"):
			stack = append(stack, t.text)
		case t.class == tokName && t.text == "lambda":
			stack = append(stack, "l")
		case len(stack) > 0:
			if t.op("]", ")", "}") || (top() == "l" && t.op(":")) {
				stack = stack[:len(stack)-1]
			}
		}

		if t.op(",", ";", ":") {
			next := nextChar(lines, t)
			spaced := next == "" || next == " " || next == "\t" || next == "\u00a0"
			switch {
			case spaced:
			case t.text == ":" && top() == "[":
			case t.text == "," && (next == ")" || next == "]"):
			default:
				out = append(out, raw{"E231", fmt.Sprintf("missing whitespace after '%s'", t.text), t.line, t.col})
			}
		}

		if i == 0 {
			continue
		}
		prev := code[i-1]
		switch {
		case need != needNone:
			switch {
			case !prev.touches(t):
				if need == needOptional && !hadSpace {
					out = append(out, raw{"E225", "missing whitespace around operator", needLine, needCol})
				}
			case (prev.text == "/" && t.op(",", ")", ":")) || (prev.text == ")" && t.text == ":"):
			case need == needRequired || hadSpace:
				out = append(out, raw{"E225", "missing whitespace around operator", prev.endLine, prev.endCol})
			case prev.text != "**":
				c, kind := "E226", "arithmetic"
				switch {
				case prev.text == "%":
					c, kind = "E228", "modulo"
				case !arithmetic[prev.text]:
					c, kind = "E227", "bitwise or shift"
				}
				out = append(out, raw{c, fmt.Sprintf("missing whitespace around %s operator", kind), needLine, needCol})
			}
			need = needNone
		case t.class == tokOp:
			switch {
			case t.text == "=" && (top() == "l" || top() == "("):
			case wsNeeded[t.text]:
				need = needRequired
			case unary[t.text]:
				binary := (prev.class == tokOp && prev.op("}", "]", ")")) ||
					(prev.class != tokOp && !spacedKeyword(prev) && !softKeywords[prev.text])
				if binary {
					need = needOptional
				}
			case wsOptional[t.text]:
				need = needOptional
			}
			switch {
			case need == needOptional:
				needLine, needCol, hadSpace = prev.endLine, prev.endCol, !prev.touches(t)
			case need == needRequired && prev.touches(t):
				out = append(out, raw{"E225", "missing whitespace around operator", prev.endLine, prev.endCol})
				need = needNone
			}
		}
	}
	return out
}

// whitespaceAroundKeywords reports E271 to E274.
func whitespaceAroundKeywords(code []token, lines []physicalLine) []raw {
	var out []raw
	for i, t := range code {
		if !spacedKeyword(t) {
			continue
		}
		if i > 0 && !spacedKeyword(code[i-1]) {
			if ws, ok := gap(lines, code[i-1], t); ok {
				switch {
				case strings.Contains(ws, "\t"):
					out = append(out, raw{"E274", "tab before keyword", code[i-1].endLine, code[i-1].endCol})
				case len(ws) > 1:
					out = append(out, raw{"E272", "multiple spaces before keyword", code[i-1].endLine, code[i-1].endCol})
				}
			}
		}
		if i+1 < len(code) {
			if ws, ok := gap(lines, t, code[i+1]); ok {
				switch {
				case strings.Contains(ws, "\t"):
					out = append(out, raw{"E273", "tab after keyword", t.endLine, t.endCol})
				case len(ws) > 1:
					out = append(out, raw{"E271", "multiple spaces after keyword", t.endLine, t.endCol})
				}
			}
		}
	}
	return out
}

// missingWhitespaceAfterKeyword reports E275 for "if(x)" and "not(y)".
func missingWhitespaceAfterKeyword(code []token) []raw {
	var out []raw
	for i := 0; i+1 < len(code); i++ {
		t0, t1 := code[i], code[i+1]
		if !t0.touches(t1) || !isKeyword(t0) || singletons[t0.text] {
			continue
		}
		if (t0.text == "except" && t1.text == "*") || (t0.text == "yield" && t1.text == ")") || t1.text == ":" {
			continue
		}
		out = append(out, raw{"E275", "missing whitespace after keyword", t0.endLine, t0.endCol})
	}
	return out
}

// whitespaceAroundDefaultEquals reports E251 for spaces around a keyword
// argument or default "=", and E252 for a missing space around the "=" of
// an annotated parameter.
func whitespaceAroundDefaultEquals(code []token) []raw {
	var out []raw
	inDef := code[0].text == "def" || (code[0].text == "async" && len(code) > 1 && code[1].text == "def")
	parens := 0
	noSpace, requireSpace, annotated := false, false, false
	for i, t := range code {
		if i > 0 {
			prev := code[i-1]
			if noSpace {
				noSpace = false
				if !prev.touches(t) {
					out = append(out, raw{"E251", "unexpected spaces around keyword / parameter equals", prev.endLine, prev.endCol})
				}
			}
			if requireSpace {
				requireSpace = false
				if prev.touches(t) {
					out = append(out, raw{"E252", "missing whitespace around parameter equals", prev.endLine, prev.endCol})
				}
			}
		}
		if t.class != tokOp {
			continue
		}
		switch {
		case t.op("(", "["):
			parens++
		case t.op(")", "]"):
			parens--
		case inDef && t.text == ":" && parens == 1:
			annotated = true
		case parens == 1 && t.text == ",":
			annotated = false
		case parens > 0 && t.text == "=" && i > 0:
			prev := code[i-1]
			if annotated && parens == 1 {
				requireSpace = true
				if prev.touches(t) {
					out = append(out, raw{"E252", "missing whitespace around parameter equals", prev.endLine, prev.endCol})
				}
			} else {
				noSpace = true
				if !prev.touches(t) {
					out = append(out, raw{"E251", "unexpected spaces around keyword / parameter equals", prev.endLine, prev.endCol})
				}
			}
		}
		if parens == 0 {
			annotated = false
		}
	}
	return out
}

// checkComments reports E261, E262, E265 and E266.
func checkComments(toks []token, lines []physicalLine) []raw {
	var out []raw
	var prev token
	hasPrev := false
	for _, t := range toks {
		if t.class != tokComment {
			prev, hasPrev = t, true
			continue
		}
		inline := false
		if t.line-1 < len(lines) {
			text := lines[t.line-1].text
			inline = t.col <= len(text) && strings.TrimSpace(text[:t.col]) != ""
		}
		if inline && hasPrev && prev.endLine == t.line && t.col < prev.endCol+2 {
			out = append(out, raw{"E261", "at least two spaces before inline comment", prev.endLine, prev.endCol})
		}

		symbol, rest, _ := strings.Cut(t.text, " ")
		bad := ""
		if symbol != "#" && symbol != "#:" {
			bad = "#"
			if s := strings.TrimLeft(symbol, "#"); s != "" {
				r, _ := utf8.DecodeRuneInString(s)
				bad = string(r)
			}
		}
		switch {
		case inline:
			if bad != "" || strings.HasPrefix(rest, " ") || strings.HasPrefix(rest, "\t") {
				out = append(out, raw{"E262", "inline comment should start with '# '", t.line, t.col})
			}
		case bad != "" && (bad != "!" || t.line > 1):
			if bad != "#" {
				out = append(out, raw{"E265", "block comment should start with '# '", t.line, t.col})
			} else if rest != "" {
				out = append(out, raw{"E266", "too many leading '#' for block comment", t.line, t.col})
			}
		}
	}
	return out
}

var validEscapes = "\n\\'\"abfnrtv01234567xNuU"

// invalidEscapes reports W605 for each backslash in a non-raw string that
// does not start a recognised escape.
func invalidEscapes(toks []token) []raw {
	var out []raw
	for _, t := range toks {
		if t.class != tokString {
			continue
		}
		quoteAt := strings.IndexAny(t.text, `'"`)
		if quoteAt < 0 || strings.ContainsAny(t.text[:quoteAt], "rR") {
			continue
		}
		body := t.text[quoteAt:]
		quote := body[:1]
		if strings.HasPrefix(body, `"""`) || strings.HasPrefix(body, "'''") {
			quote = body[:3]
		}
		if len(body) < 2*len(quote) {
			continue
		}
		body = body[len(quote) : len(body)-len(quote)]
		line, col := t.line, t.col+quoteAt+len(quote)
		for i := 0; i < len(body); i++ {
			switch body[i] {
			case '\n':
				line, col = line+1, 0
				continue
			case '\\':
				if i+1 >= len(body) {
					continue
				}
				r, size := utf8.DecodeRuneInString(body[i+1:])
				if !strings.ContainsRune(validEscapes, r) {
					out = append(out, raw{"W605", fmt.Sprintf("invalid escape sequence '\\%c'", r), line, col})
				}
				i += size
				if r == '\n' {
					line, col = line+1, 0
					continue
				}
				col += 1 + size
				continue
			}
			col++
		}
	}
	return out
}
