// Package pysyntax parses Python source into a syntax tree and exposes the
// small node vocabulary the analysis engines switch over.
package pysyntax

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// ErrParseFailure is returned for empty input, for source the grammar
// rejects and for Python 2 constructs the grammar still accepts.
var ErrParseFailure = errors.New("source does not parse as Python")

// Tree is a parsed Python snippet. A Tree is not safe for concurrent use;
// callers that analyse in parallel parse their own copy.
type Tree struct {
	src  []byte
	tree *sitter.Tree
}

// Parse parses source into a Tree. Empty, whitespace-only and syntactically
// invalid input all yield ErrParseFailure.
func Parse(source string) (*Tree, error) {
	return ParseContext(context.Background(), source)
}

// ParseContext is Parse with a cancellation context.
func ParseContext(ctx context.Context, source string) (*Tree, error) {
	if strings.TrimSpace(source) == "" {
		return nil, ErrParseFailure
	}
	src := []byte(NormalizeNewlines(strings.TrimPrefix(source, "\ufeff")))

	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}
	if tree == nil {
		return nil, ErrParseFailure
	}
	if tree.RootNode().HasError() {
		tree.Close()
		return nil, ErrParseFailure
	}
	t := &Tree{src: src, tree: tree}
	if msg := python3Violation(t.Root()); msg != "" {
		t.Close()
		return nil, fmt.Errorf("%w: %s", ErrParseFailure, msg)
	}
	return t, nil
}

// Root returns the module node.
func (t *Tree) Root() Node {
	return Node{n: t.tree.RootNode(), src: t.src}
}

// Source returns the text the tree was parsed from.
func (t *Tree) Source() string {
	return string(t.src)
}

// Close releases the underlying parser tree.
func (t *Tree) Close() {
	if t != nil && t.tree != nil {
		t.tree.Close()
	}
}

// NormalizeNewlines rewrites \r\n and lone \r line endings as \n. Line
// numbers are unchanged.
func NormalizeNewlines(source string) string {
	if !strings.ContainsRune(source, '\r') {
		return source
	}
	return strings.ReplaceAll(strings.ReplaceAll(source, "\r\n", "\n"), "\r", "\n")
}

// Lines splits source into physical lines without their terminators. Any
// of \n, \r\n and \r ends a line.
func Lines(source string) []string {
	lines := strings.Split(NormalizeNewlines(source), "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
