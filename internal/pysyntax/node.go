package pysyntax

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Kind classifies a node into the constructs the engines care about.
type Kind int

const (
	KindOther Kind = iota
	KindModule
	KindFunction
	KindClass
	KindDecorated
	KindDecorator
	KindBlock
	KindIf
	KindElif
	KindElse
	KindFor
	KindWhile
	KindWith
	KindTry
	KindExcept
	KindFinally
	KindExpressionStatement
	KindAssign
	KindAugAssign
	KindCall
	KindAttribute
	KindIdentifier
	KindBoolOp
	KindComprehensionFor
	KindComprehensionIf
	KindReturn
	KindPass
	KindGlobal
	KindLambda
	KindComparison
	KindImport
	KindImportFrom
	KindComment
	KindEllipsis
	KindTrue
	KindFalse
	KindNone
	KindString
	KindParameters
	KindType
	KindAsPattern
)

var kindsByType = map[string]Kind{
	"module":                  KindModule,
	"function_definition":     KindFunction,
	"class_definition":        KindClass,
	"decorated_definition":    KindDecorated,
	"decorator":               KindDecorator,
	"block":                   KindBlock,
	"if_statement":            KindIf,
	"elif_clause":             KindElif,
	"else_clause":             KindElse,
	"for_statement":           KindFor,
	"while_statement":         KindWhile,
	"with_statement":          KindWith,
	"try_statement":           KindTry,
	"except_clause":           KindExcept,
	"except_group_clause":     KindExcept,
	"finally_clause":          KindFinally,
	"expression_statement":    KindExpressionStatement,
	"assignment":              KindAssign,
	"augmented_assignment":    KindAugAssign,
	"call":                    KindCall,
	"attribute":               KindAttribute,
	"identifier":              KindIdentifier,
	"boolean_operator":        KindBoolOp,
	"for_in_clause":           KindComprehensionFor,
	"if_clause":               KindComprehensionIf,
	"return_statement":        KindReturn,
	"pass_statement":          KindPass,
	"global_statement":        KindGlobal,
	"lambda":                  KindLambda,
	"comparison_operator":     KindComparison,
	"import_statement":        KindImport,
	"import_from_statement":   KindImportFrom,
	"future_import_statement": KindImportFrom,
	"comment":                 KindComment,
	"ellipsis":                KindEllipsis,
	"true":                    KindTrue,
	"false":                   KindFalse,
	"none":                    KindNone,
	"string":                  KindString,
	"parameters":              KindParameters,
	"type":                    KindType,
	"as_pattern":              KindAsPattern,
}

// IsControl reports whether the kind opens a compound control construct that
// counts toward nesting depth. elif is nested inside its if chain rather
// than opening a construct of its own; measure.MaxNesting counts it there.
func (k Kind) IsControl() bool {
	switch k {
	case KindIf, KindFor, KindWhile, KindWith, KindTry:
		return true
	}
	return false
}

// IsDefinition reports whether the kind is a function or class definition.
func (k Kind) IsDefinition() bool {
	return k == KindFunction || k == KindClass
}

// Node is a lightweight handle on a syntax tree node. The zero Node is
// invalid; every accessor on it returns a zero value.
type Node struct {
	n   *sitter.Node
	src []byte
}

func (n Node) wrap(c *sitter.Node) Node {
	if c == nil {
		return Node{}
	}
	return Node{n: c, src: n.src}
}

// Valid reports whether n refers to a real node.
func (n Node) Valid() bool { return n.n != nil }

// Type returns the grammar's node type name.
func (n Node) Type() string {
	if n.n == nil {
		return ""
	}
	return n.n.Type()
}

// Kind returns the classified kind of n.
func (n Node) Kind() Kind {
	if n.n == nil {
		return KindOther
	}
	return kindsByType[n.n.Type()]
}

// Line is the 1-based line the node starts on.
func (n Node) Line() int {
	if n.n == nil {
		return 0
	}
	return int(n.n.StartPoint().Row) + 1
}

// EndLine is the 1-based line of the node's last character.
func (n Node) EndLine() int {
	if n.n == nil {
		return 0
	}
	end := n.n.EndPoint()
	// A node ending at column 0 stops at the newline of the previous row.
	if end.Column == 0 && end.Row > n.n.StartPoint().Row {
		return int(end.Row)
	}
	return int(end.Row) + 1
}

// Column is the 0-based byte column the node starts at.
func (n Node) Column() int {
	if n.n == nil {
		return 0
	}
	return int(n.n.StartPoint().Column)
}

// End is the position just past the node's last byte: a 1-based line and a
// 0-based byte column.
func (n Node) End() (line, column int) {
	if n.n == nil {
		return 0, 0
	}
	end := n.n.EndPoint()
	return int(end.Row) + 1, int(end.Column)
}

// Named reports whether n is a named grammar node rather than an anonymous
// token such as an operator or keyword.
func (n Node) Named() bool {
	return n.n != nil && n.n.IsNamed()
}

// Text returns the source text spanned by n.
func (n Node) Text() string {
	if n.n == nil {
		return ""
	}
	return n.n.Content(n.src)
}

// Field returns the child stored under the grammar field name.
func (n Node) Field(name string) Node {
	if n.n == nil {
		return Node{}
	}
	return n.wrap(n.n.ChildByFieldName(name))
}

// Parent returns the enclosing node, invalid for the root.
func (n Node) Parent() Node {
	if n.n == nil {
		return Node{}
	}
	return n.wrap(n.n.Parent())
}

// Children returns the named children of n in source order.
func (n Node) Children() []Node {
	if n.n == nil {
		return nil
	}
	count := int(n.n.NamedChildCount())
	out := make([]Node, 0, count)
	for i := 0; i < count; i++ {
		if c := n.n.NamedChild(i); c != nil {
			out = append(out, Node{n: c, src: n.src})
		}
	}
	return out
}

// Tokens returns every child of n including anonymous tokens such as
// operators and keywords.
func (n Node) Tokens() []Node {
	if n.n == nil {
		return nil
	}
	count := int(n.n.ChildCount())
	out := make([]Node, 0, count)
	for i := 0; i < count; i++ {
		if c := n.n.Child(i); c != nil {
			out = append(out, Node{n: c, src: n.src})
		}
	}
	return out
}

// Equal reports whether a and b are the same tree node.
func (n Node) Equal(o Node) bool {
	if n.n == nil || o.n == nil {
		return n.n == nil && o.n == nil
	}
	return n.n.StartByte() == o.n.StartByte() &&
		n.n.EndByte() == o.n.EndByte() &&
		n.n.Type() == o.n.Type()
}
