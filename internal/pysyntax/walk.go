package pysyntax

// Walk visits n and its named descendants in pre-order. Returning false from
// fn skips the children of the node just visited.
func Walk(n Node, fn func(Node) bool) {
	if !n.Valid() {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children() {
		Walk(c, fn)
	}
}

// WalkBreadth visits n and its named descendants level by level. Returning
// false from fn stops the walk.
func WalkBreadth(n Node, fn func(Node) bool) {
	if !n.Valid() {
		return
	}
	queue := []Node{n}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if !fn(cur) {
			return
		}
		queue = append(queue, cur.Children()...)
	}
}

// Collect returns every node under n (n included) of the given kind, in
// pre-order.
func Collect(n Node, kind Kind) []Node {
	var out []Node
	Walk(n, func(c Node) bool {
		if c.Kind() == kind {
			out = append(out, c)
		}
		return true
	})
	return out
}

// Body returns the statement block of a compound node.
func Body(n Node) Node {
	for _, field := range []string{"body", "consequence"} {
		if b := n.Field(field); b.Valid() && b.Kind() == KindBlock {
			return b
		}
	}
	for _, c := range n.Children() {
		if c.Kind() == KindBlock {
			return c
		}
	}
	return Node{}
}

// Statements returns the statements of a block, skipping comments.
func Statements(block Node) []Node {
	var out []Node
	for _, c := range block.Children() {
		if c.Kind() == KindComment {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Unwrap returns the definition inside a decorated_definition, or n itself.
func Unwrap(n Node) Node {
	if n.Kind() == KindDecorated {
		return n.Field("definition")
	}
	return n
}

// Definitions returns the functions and classes declared directly in block,
// looking through decorators.
func Definitions(block Node) []Node {
	var out []Node
	for _, s := range Statements(block) {
		if d := Unwrap(s); d.Kind().IsDefinition() {
			out = append(out, d)
		}
	}
	return out
}

// IsNoOp reports whether stmts is a body that does nothing: a lone pass or a
// lone ellipsis.
func IsNoOp(stmts []Node) bool {
	if len(stmts) != 1 {
		return false
	}
	s := stmts[0]
	if s.Kind() == KindPass {
		return true
	}
	if s.Kind() == KindExpressionStatement {
		kids := s.Children()
		return len(kids) == 1 && kids[0].Kind() == KindEllipsis
	}
	return false
}
