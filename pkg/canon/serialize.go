package canon

import "strings"

// voidElements is the standard void-element set. These never receive a
// closing tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// IsVoidElement reports whether tag is a void element.
func IsVoidElement(tag string) bool {
	return voidElements[strings.ToLower(tag)]
}

// OuterHTML returns the full canonical serialization of the node, including
// listener-binding attributes. This is the form shipped to the client in
// content patches.
func (n *Node) OuterHTML() string {
	var b strings.Builder
	n.serialize(&b, true)
	return b.String()
}

// InnerHTML returns the canonical serialization of the node's children.
func (n *Node) InnerHTML() string {
	var b strings.Builder
	for _, c := range n.Children {
		c.serialize(&b, true)
	}
	return b.String()
}

// IdentityHTML serializes the node excluding listener-binding attributes at
// every level. Byte-equality of this form is what makes two nodes identical
// for diffing purposes: handler names are stable across renders and a
// binding-only difference must not produce a patch.
func (n *Node) IdentityHTML() string {
	var b strings.Builder
	n.serialize(&b, false)
	return b.String()
}

func (n *Node) serialize(b *strings.Builder, withListeners bool) {
	if n.Kind == KindText {
		// script/style hold raw text; entity-escaping would corrupt it.
		if n.Parent != nil && (n.Parent.Tag == "script" || n.Parent.Tag == "style") {
			b.WriteString(n.Text)
		} else {
			b.WriteString(escapeHTML(n.Text))
		}
		return
	}

	b.WriteByte('<')
	b.WriteString(n.Tag)
	for _, a := range n.Attrs {
		if !withListeners && a.Name == EventsAttr {
			continue
		}
		b.WriteByte(' ')
		b.WriteString(a.Name)
		b.WriteString(`="`)
		b.WriteString(escapeAttr(a.Value))
		b.WriteByte('"')
	}
	b.WriteByte('>')

	if IsVoidElement(n.Tag) {
		return
	}

	for _, c := range n.Children {
		c.serialize(b, withListeners)
	}

	b.WriteString("</")
	b.WriteString(n.Tag)
	b.WriteByte('>')
}

// escapeHTML escapes text for safe inclusion in HTML content.
func escapeHTML(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))

	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		case '\'':
			buf.WriteString("&#39;")
		default:
			buf.WriteRune(r)
		}
	}

	return buf.String()
}

// escapeAttr escapes text for safe inclusion in HTML attribute values.
// In addition to the standard HTML entities, it escapes whitespace
// characters that could break attribute parsing.
func escapeAttr(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))

	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		case '\'':
			buf.WriteString("&#39;")
		case '\n':
			buf.WriteString("&#10;")
		case '\r':
			buf.WriteString("&#13;")
		case '\t':
			buf.WriteString("&#9;")
		default:
			buf.WriteRune(r)
		}
	}

	return buf.String()
}
