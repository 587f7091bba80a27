package pysyntax

import "strings"

// python3Violation returns a description of the first construct that the
// grammar accepts but Python 3 rejects, or "" when the tree is clean. The
// grammar still carries Python 2 statements and operators, and its
// indentation scanner tolerates dedents that match no outer level.
func python3Violation(root Node) string {
	var found string
	var visit func(n Node)
	visit = func(n Node) {
		if found != "" {
			return
		}
		if found = checkPython3(n); found != "" {
			return
		}
		for _, c := range n.Tokens() {
			visit(c)
		}
	}
	visit(root)
	return found
}

func checkPython3(n Node) string {
	switch n.Type() {
	case "print_statement":
		return "print statement"
	case "exec_statement":
		return "exec statement"
	case "<>":
		return "<> operator"
	case "string_start":
		if strings.Contains(n.Text(), "`") {
			return "backtick repr"
		}
	case "integer":
		if legacyInteger(n.Text()) {
			return "legacy integer literal " + n.Text()
		}
	case "for_in_clause":
		if tokenAfter(n, "in", ",") {
			return "unparenthesized tuple in comprehension"
		}
	case "except_clause", "except_group_clause":
		if tokenAfter(n, "except", ",") {
			return "except with comma"
		}
		for _, c := range n.Children() {
			if c.Type() == "expression_list" {
				return "except with comma"
			}
		}
	case "raise_statement":
		for _, c := range n.Children() {
			if c.Type() == "expression_list" {
				return "raise with comma"
			}
		}
	case "argument_list":
		return checkArguments(n)
	case "parameters", "lambda_parameters":
		return checkParameterOrder(n)
	case "module":
		return checkIndent(n, true)
	case "block":
		return checkIndent(n, false)
	}
	return ""
}

// legacyInteger reports Python 2 literals: 0777 octals and the L suffix.
func legacyInteger(text string) bool {
	t := strings.ToLower(strings.ReplaceAll(text, "_", ""))
	if strings.HasSuffix(t, "j") {
		return false
	}
	if strings.HasSuffix(t, "l") {
		return true
	}
	if len(t) < 2 || t[0] != '0' || t[1] < '0' || t[1] > '9' {
		return false
	}
	return strings.Trim(t, "0") != ""
}

// tokenAfter reports whether n has a direct want token after its first
// marker token.
func tokenAfter(n Node, marker, want string) bool {
	seen := false
	for _, tok := range n.Tokens() {
		switch {
		case tok.Type() == marker:
			seen = true
		case seen && tok.Type() == want:
			return true
		}
	}
	return false
}

func checkArguments(n Node) string {
	keyword, dictSplat := false, false
	names := map[string]bool{}
	for _, c := range n.Children() {
		switch c.Type() {
		case "comment":
		case "keyword_argument":
			keyword = true
			name := c.Field("name").Text()
			if names[name] {
				return "keyword argument repeated: " + name
			}
			names[name] = true
		case "dictionary_splat":
			dictSplat = true
		case "list_splat", "parenthesized_list_splat":
			if dictSplat {
				return "iterable unpacking follows keyword unpacking"
			}
		default:
			if keyword || dictSplat {
				return "positional argument follows keyword argument"
			}
		}
	}
	return ""
}

// checkParameterOrder rejects a positional parameter without a default after
// one with a default. Parameters after * or *args are keyword-only and exempt.
func checkParameterOrder(n Node) string {
	defaulted := false
	for _, p := range n.Children() {
		switch p.Type() {
		case "default_parameter", "typed_default_parameter":
			defaulted = true
		case "list_splat_pattern", "dictionary_splat_pattern", "keyword_separator":
			return ""
		case "typed_parameter":
			if kids := p.Children(); len(kids) > 0 && strings.HasSuffix(kids[0].Type(), "splat_pattern") {
				return ""
			}
			if defaulted {
				return "non-default argument follows default argument"
			}
		case "identifier":
			if defaulted {
				return "non-default argument follows default argument"
			}
		}
	}
	return ""
}

// checkIndent requires the statements that start a line in one block to
// share a column; module statements must start at column 0.
func checkIndent(n Node, module bool) string {
	col, prevEnd := -1, 0
	if module {
		col = 0
	}
	for _, c := range n.Children() {
		if c.Kind() == KindComment || c.Line() <= prevEnd {
			continue
		}
		prevEnd = c.EndLine()
		switch {
		case col < 0:
			col = c.Column()
		case c.Column() != col:
			if module {
				return "unexpected indent"
			}
			return "unindent does not match any outer indentation level"
		}
	}
	return ""
}
