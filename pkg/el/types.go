// Package el is the declarative element DSL for authoring page renders.
//
// Trees built here are the structured alternative to returning raw markup
// from Page.Render; the normalizer (package canon) converts both into the
// same canonical form. Event-handler props are pulled out as exposures, and
// non-string prop values travel as inert value descriptors.
package el

// NodeKind is the node type discriminator.
type NodeKind uint8

const (
	KindElement NodeKind = iota
	KindText
)

// Attr is a declared prop. Order of declaration is preserved; the
// normalizer resolves duplicate names last-write-wins.
//
// Prop values may be:
//   - string: rendered as an HTML attribute
//   - bool: attribute presence (true renders the attribute, false omits it)
//   - anything else: carried as an inert value-descriptor attribute (JSON)
//
// Props whose name starts with "on" are event handlers, not attributes.
// Their value must be a handler name (string) or a bridge.Exposure script.
type Attr struct {
	Name  string
	Value any
}

// Node is a declarative element-tree node.
type Node struct {
	Kind     NodeKind
	Tag      string
	Attrs    []Attr
	Children []*Node
	Text     string
}

// El builds an element node. Arguments may be Attr values, *Node children,
// or strings (appended as text children). Nil children are skipped.
func El(tag string, args ...any) *Node {
	n := &Node{Kind: KindElement, Tag: tag}
	for _, arg := range args {
		switch v := arg.(type) {
		case Attr:
			n.Attrs = append(n.Attrs, v)
		case *Node:
			if v != nil {
				n.Children = append(n.Children, v)
			}
		case string:
			n.Children = append(n.Children, Text(v))
		case []*Node:
			for _, c := range v {
				if c != nil {
					n.Children = append(n.Children, c)
				}
			}
		}
	}
	return n
}

// Text builds a text node.
func Text(s string) *Node {
	return &Node{Kind: KindText, Text: s}
}
