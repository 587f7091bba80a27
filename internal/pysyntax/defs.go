package pysyntax

import "strings"

// Param is one declared parameter of a function definition.
type Param struct {
	Name        string
	Line        int
	Column      int
	Annotation  Node // invalid when unannotated
	Default     Node // invalid when no default
	Variadic    bool // *args or **kwargs
	KeywordOnly bool
}

// Name returns the declared name of a function or class definition.
func Name(def Node) string {
	return Unwrap(def).Field("name").Text()
}

// IsDunder reports whether name is a double-underscore special name.
func IsDunder(name string) bool {
	return len(name) > 4 && strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__")
}

// Params returns the parameters of fn in declaration order, including
// positional-only, variadic and keyword-only ones.
func Params(fn Node) []Param {
	var out []Param
	kwOnly := false
	for _, p := range fn.Field("parameters").Children() {
		switch p.Type() {
		case "identifier":
			out = append(out, Param{Name: p.Text(), Line: p.Line(), Column: p.Column(), KeywordOnly: kwOnly})
		case "default_parameter":
			name := p.Field("name")
			out = append(out, Param{
				Name: name.Text(), Line: name.Line(), Column: name.Column(),
				Default: p.Field("value"), KeywordOnly: kwOnly,
			})
		case "typed_parameter":
			param := Param{Line: p.Line(), Column: p.Column(), Annotation: p.Field("type"), KeywordOnly: kwOnly}
			if kids := p.Children(); len(kids) > 0 {
				first := kids[0]
				switch first.Type() {
				case "list_splat_pattern", "dictionary_splat_pattern":
					param.Variadic = true
					param.Name = splatName(first)
					if first.Type() == "list_splat_pattern" {
						kwOnly = true
					}
				default:
					param.Name = first.Text()
				}
			}
			out = append(out, param)
		case "typed_default_parameter":
			name := p.Field("name")
			out = append(out, Param{
				Name: name.Text(), Line: name.Line(), Column: name.Column(),
				Annotation: p.Field("type"), Default: p.Field("value"), KeywordOnly: kwOnly,
			})
		case "list_splat_pattern":
			out = append(out, Param{Name: splatName(p), Line: p.Line(), Column: p.Column(), Variadic: true})
			kwOnly = true
		case "dictionary_splat_pattern":
			out = append(out, Param{Name: splatName(p), Line: p.Line(), Column: p.Column(), Variadic: true})
		case "keyword_separator":
			kwOnly = true
		case "positional_separator", "comment":
		default:
			out = append(out, Param{Name: p.Text(), Line: p.Line(), Column: p.Column(), KeywordOnly: kwOnly})
		}
	}
	return out
}

func splatName(n Node) string {
	for _, c := range n.Children() {
		if c.Kind() == KindIdentifier {
			return c.Text()
		}
	}
	return strings.TrimLeft(n.Text(), "*")
}

// IsBareName reports whether an annotation is exactly the identifier name,
// with no subscript, attribute or union around it.
func IsBareName(annotation Node, name string) bool {
	if !annotation.Valid() {
		return false
	}
	n := annotation
	if n.Kind() == KindType {
		kids := n.Children()
		if len(kids) != 1 {
			return false
		}
		n = kids[0]
	}
	return n.Kind() == KindIdentifier && n.Text() == name
}

// Decorators returns the source text of each decorator expression on def,
// without the leading '@'.
func Decorators(def Node) []string {
	parent := def.Parent()
	if parent.Kind() != KindDecorated {
		return nil
	}
	var out []string
	for _, c := range parent.Children() {
		if c.Kind() == KindDecorator {
			out = append(out, strings.TrimSpace(strings.TrimPrefix(c.Text(), "@")))
		}
	}
	return out
}

// HasDecorator reports whether def is decorated with name.
func HasDecorator(def Node, name string) bool {
	for _, d := range Decorators(def) {
		if d == name {
			return true
		}
	}
	return false
}

// OwningClass returns the class whose body directly declares def, looking
// through decorators. Nested helpers inside methods have no owning class.
func OwningClass(def Node) (Node, bool) {
	outer := def
	if p := def.Parent(); p.Kind() == KindDecorated {
		outer = p
	}
	block := outer.Parent()
	if block.Kind() != KindBlock {
		return Node{}, false
	}
	class := block.Parent()
	if class.Kind() != KindClass {
		return Node{}, false
	}
	return class, true
}

// EnclosingFunction returns the innermost function containing n.
func EnclosingFunction(n Node) (Node, bool) {
	for p := n.Parent(); p.Valid(); p = p.Parent() {
		if p.Kind() == KindFunction {
			return p, true
		}
	}
	return Node{}, false
}

// EnclosingClass returns the innermost class containing n.
func EnclosingClass(n Node) (Node, bool) {
	for p := n.Parent(); p.Valid(); p = p.Parent() {
		if p.Kind() == KindClass {
			return p, true
		}
	}
	return Node{}, false
}

// Scope returns the innermost function and class names around n, either of
// which may be empty.
func Scope(n Node) (function, class string) {
	if fn, ok := EnclosingFunction(n); ok {
		function = Name(fn)
	}
	if cls, ok := EnclosingClass(n); ok {
		class = Name(cls)
	}
	return function, class
}

// HandlerType returns the exception type expression of an except clause,
// invalid for a bare "except:". Redundant parentheses are removed, so
// "except (Exception):" yields the Exception name.
func HandlerType(handler Node) Node {
	for _, c := range handler.Children() {
		switch c.Kind() {
		case KindBlock, KindComment:
			continue
		case KindAsPattern:
			if kids := c.Children(); len(kids) > 0 {
				return unparen(kids[0])
			}
			return Node{}
		}
		return unparen(c)
	}
	return Node{}
}

// unparen strips parentheses around a single expression.
func unparen(n Node) Node {
	for n.Type() == "parenthesized_expression" {
		var inner []Node
		for _, c := range n.Children() {
			if c.Kind() != KindComment {
				inner = append(inner, c)
			}
		}
		if len(inner) != 1 {
			return n
		}
		n = inner[0]
	}
	return n
}

// CallTarget splits the callee of a call into an optional receiver name and
// the called name: eval(x) gives ("", "eval"), os.system(x) gives
// ("os", "system"). Receivers that are not plain names yield ok=false.
func CallTarget(call Node) (receiver, name string, ok bool) {
	fn := call.Field("function")
	switch fn.Kind() {
	case KindIdentifier:
		return "", fn.Text(), true
	case KindAttribute:
		obj := fn.Field("object")
		if obj.Kind() != KindIdentifier {
			return "", "", false
		}
		return obj.Text(), fn.Field("attribute").Text(), true
	}
	return "", "", false
}
