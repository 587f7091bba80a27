// Package measure computes size and complexity metrics over syntax trees.
package measure

import "github.com/dhirajnair/pspec/internal/pysyntax"

// Cyclomatic returns 1 plus one per decision point under n (n included):
// if, elif, for, while, except, each boolean operator node, and each
// comprehension for/if clause.
func Cyclomatic(n pysyntax.Node) int {
	total := 1
	pysyntax.Walk(n, func(c pysyntax.Node) bool {
		switch c.Kind() {
		case pysyntax.KindIf, pysyntax.KindElif,
			pysyntax.KindFor, pysyntax.KindWhile,
			pysyntax.KindExcept, pysyntax.KindBoolOp,
			pysyntax.KindComprehensionFor, pysyntax.KindComprehensionIf:
			total++
		}
		return true
	})
	return total
}

// MaxNesting returns the depth of the deepest chain of nested if, for,
// while, with and try constructs under n, counting n itself when it is one.
// Each elif sits one level below the clause before it, so the k-th elif of
// a chain and an else after k elifs are k levels inside their if.
func MaxNesting(n pysyntax.Node) int {
	if !n.Valid() {
		return 0
	}
	if n.Kind() == pysyntax.KindIf {
		return ifChainNesting(n)
	}
	deepest := maxChildNesting(n)
	if n.Kind().IsControl() {
		return deepest + 1
	}
	return deepest
}

func maxChildNesting(n pysyntax.Node) int {
	deepest := 0
	for _, c := range n.Children() {
		if d := MaxNesting(c); d > deepest {
			deepest = d
		}
	}
	return deepest
}

func ifChainNesting(n pysyntax.Node) int {
	deepest, elifs := 0, 0
	for _, c := range n.Children() {
		var d int
		switch c.Kind() {
		case pysyntax.KindElif:
			elifs++
			d = elifs + maxChildNesting(c)
		case pysyntax.KindElse:
			d = elifs + maxChildNesting(c)
		default:
			d = MaxNesting(c)
		}
		if d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}

// LineSpan is the number of lines between a node's first and last line.
// A one-line definition has span 0.
func LineSpan(n pysyntax.Node) int {
	if !n.Valid() {
		return 0
	}
	return n.EndLine() - n.Line()
}

// Metrics bundles the three function metrics.
type Metrics struct {
	Cyclomatic   int `json:"cyclomatic"`
	NestingDepth int `json:"nesting_depth"`
	LineSpan     int `json:"line_span"`
}

// Of computes all metrics for a node.
func Of(n pysyntax.Node) Metrics {
	return Metrics{
		Cyclomatic:   Cyclomatic(n),
		NestingDepth: MaxNesting(n),
		LineSpan:     LineSpan(n),
	}
}
