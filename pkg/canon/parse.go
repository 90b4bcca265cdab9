package canon

import (
	"strings"

	"golang.org/x/net/html"
)

// eventShorthandPrefix marks event-binding shorthand in raw markup:
// @on<event>=<handlerName>.
const eventShorthandPrefix = "@on"

// ParseDocument canonicalizes raw markup text. Any author-supplied <head> is
// dropped (the fixed minimal head is re-injected at serve time), the body
// subtree is converted to canonical nodes, and event-binding shorthand is
// folded into a single data-events attribute per element. Handler names the
// shorthand referenced are collected on the document.
//
// Whitespace-only text runs between elements are dropped, including the
// space between adjacent inline elements. Spacing that must survive
// canonicalization belongs inside an element's text or in CSS.
func ParseDocument(markup string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, &RenderError{Reason: "markup does not parse", Err: err}
	}

	src := findBody(root)
	if src == nil {
		return nil, renderErrorf("markup has no body")
	}

	doc := &Document{Body: NewElement("body")}
	seen := map[string]bool{}
	for c := src.FirstChild; c != nil; c = c.NextSibling {
		convertHTML(c, doc.Body, &doc.References, seen)
	}
	return doc, nil
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findBody(c); found != nil {
			return found
		}
	}
	return nil
}

func convertHTML(hn *html.Node, parent *Node, refs *[]string, seen map[string]bool) {
	switch hn.Type {
	case html.TextNode:
		// Whitespace-only runs between elements are formatting, not
		// content; dropping them keeps the canonical form stable.
		if strings.TrimSpace(hn.Data) == "" {
			return
		}
		parent.AppendChild(NewText(hn.Data))

	case html.ElementNode:
		n := NewElement(hn.Data)
		var events []string
		bound := map[string]int{}
		for _, a := range hn.Attr {
			key := strings.ToLower(a.Key)
			if ev, ok := strings.CutPrefix(key, eventShorthandPrefix); ok && ev != "" {
				pair := ev + "=" + a.Val
				if i, dup := bound[ev]; dup {
					events[i] = pair
				} else {
					bound[ev] = len(events)
					events = append(events, pair)
				}
				if !seen[a.Val] {
					seen[a.Val] = true
					*refs = append(*refs, a.Val)
				}
				continue
			}
			n.SetAttr(key, a.Val)
		}
		if len(events) > 0 {
			n.SetAttr(EventsAttr, strings.Join(events, ";"))
		}
		parent.AppendChild(n)
		for c := hn.FirstChild; c != nil; c = c.NextSibling {
			convertHTML(c, n, refs, seen)
		}
	}
}
