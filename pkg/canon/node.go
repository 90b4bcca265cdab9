package canon

import "strings"

// NodeKind is the node type discriminator.
type NodeKind uint8

const (
	KindElement NodeKind = iota // <div>, <button>, etc.
	KindText                    // plain text run
)

// String returns the string representation of the NodeKind.
func (k NodeKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	default:
		return "Unknown"
	}
}

// EventsAttr is the inert attribute that carries event bindings after
// normalization, as "event=handler" pairs separated by ";".
const EventsAttr = "data-events"

// ValueDescriptorPrefix prefixes inert attributes that carry serialized
// non-string prop values. The client resolves them into live properties
// after applying patches.
const ValueDescriptorPrefix = "data-value-"

// Attr is a single attribute. Attribute order on a node follows declaration
// order; duplicate declarations resolve last-write-wins.
type Attr struct {
	Name  string
	Value string
}

// Node is one node of a canonical tree: an element or a text run.
// Parent links are maintained by AppendChild and used for structural
// equivalence checks and patch addressing.
type Node struct {
	Kind     NodeKind
	Tag      string
	Attrs    []Attr
	Children []*Node
	Text     string
	Parent   *Node
}

// NewElement returns an element node with the given tag.
func NewElement(tag string) *Node {
	return &Node{Kind: KindElement, Tag: strings.ToLower(tag)}
}

// NewText returns a text run node.
func NewText(text string) *Node {
	return &Node{Kind: KindText, Text: text}
}

// AppendChild appends a child node and sets its parent link.
func (n *Node) AppendChild(child *Node) {
	if child == nil {
		return
	}
	child.Parent = n
	n.Children = append(n.Children, child)
}

// SetAttr sets an attribute, replacing in place when the name is already
// declared (last-write-wins) and appending otherwise.
func (n *Node) SetAttr(name, value string) {
	name = strings.ToLower(name)
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// IsBody reports whether the node is the body root of its tree.
func (n *Node) IsBody() bool {
	return n.Parent == nil
}

// Elements returns every element in the subtree below n in document order,
// excluding n itself.
func (n *Node) Elements() []*Node {
	var out []*Node
	var walk func(node *Node)
	walk = func(node *Node) {
		for _, c := range node.Children {
			if c.Kind == KindElement {
				out = append(out, c)
				walk(c)
			}
		}
	}
	walk(n)
	return out
}

// IndexPath returns the element-child index path from the body root down to
// n. The body root itself has the empty path. Text runs do not participate
// in indexing; the client descends element children only.
func (n *Node) IndexPath() []int {
	var path []int
	for cur := n; cur.Parent != nil; cur = cur.Parent {
		idx := 0
		for _, sib := range cur.Parent.Children {
			if sib == cur {
				break
			}
			if sib.Kind == KindElement {
				idx++
			}
		}
		path = append(path, idx)
	}
	// Reverse into body-first order.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Document is a normalized render: the canonical body tree plus the handler
// names the markup referenced through event-binding shorthand.
type Document struct {
	Body       *Node
	References []string
}

// HTML returns the canonical serialization of the document body.
func (d *Document) HTML() string {
	if d == nil || d.Body == nil {
		return ""
	}
	return d.Body.OuterHTML()
}
