package canon

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/frescoui/fresco/pkg/bridge"
	"github.com/frescoui/fresco/pkg/el"
)

// Normalize converts a page's render output into canonical form.
//
// output is either raw markup text (string) or a declarative element tree
// (*el.Node). The returned exposures map holds handler scripts discovered in
// the tree; handler names referenced by markup shorthand are recorded on the
// document and checked against resolve when it is non-nil.
//
// A malformed render degrades instead of failing: the returned document
// carries the error description as literal page content, and the RenderError
// is returned alongside for logging.
func Normalize(output any, resolve func(name string) bool) (*Document, map[string]bridge.Exposure, error) {
	doc, exposures, err := normalize(output)
	if err == nil && resolve != nil {
		for _, name := range doc.References {
			if _, local := exposures[name]; local {
				continue
			}
			if !resolve(name) {
				err = renderErrorf("event handler %q does not resolve to a registered endpoint or exposure", name)
				break
			}
		}
	}
	if err != nil {
		return ErrorDocument(err), nil, err
	}
	return doc, exposures, nil
}

func normalize(output any) (*Document, map[string]bridge.Exposure, error) {
	switch v := output.(type) {
	case string:
		doc, err := ParseDocument(v)
		if err != nil {
			return nil, nil, err
		}
		return doc, map[string]bridge.Exposure{}, nil
	case *el.Node:
		if v == nil {
			return nil, nil, renderErrorf("render returned a nil element tree")
		}
		return buildFromTree(v)
	case nil:
		return nil, nil, renderErrorf("render returned nothing")
	default:
		return nil, nil, renderErrorf("render returned unsupported type %T", output)
	}
}

// buildFromTree walks a declarative element tree depth-first, pulling event
// handlers out as exposures and folding them into data-events attributes.
func buildFromTree(root *el.Node) (*Document, map[string]bridge.Exposure, error) {
	doc := &Document{Body: NewElement("body")}
	exposures := map[string]bridge.Exposure{}
	seen := map[string]bool{}

	content := treeBodyContent(root)
	for _, c := range content {
		if err := convertTree(c, doc.Body, exposures, &doc.References, seen); err != nil {
			return nil, nil, err
		}
	}
	return doc, exposures, nil
}

// treeBodyContent unwraps an author-supplied html/body wrapper; any declared
// head is dropped in favor of the fixed head injected at serve time.
func treeBodyContent(root *el.Node) []*el.Node {
	if root.Kind != el.KindElement {
		return []*el.Node{root}
	}
	tag := strings.ToLower(root.Tag)
	if tag == "html" {
		for _, c := range root.Children {
			if c.Kind == el.KindElement && strings.ToLower(c.Tag) == "body" {
				return c.Children
			}
		}
		// html with no body: keep everything that is not a head.
		var out []*el.Node
		for _, c := range root.Children {
			if c.Kind == el.KindElement && strings.ToLower(c.Tag) == "head" {
				continue
			}
			out = append(out, c)
		}
		return out
	}
	if tag == "body" {
		return root.Children
	}
	return []*el.Node{root}
}

func convertTree(tn *el.Node, parent *Node, exposures map[string]bridge.Exposure, refs *[]string, seen map[string]bool) error {
	if tn == nil {
		return nil
	}
	if tn.Kind == el.KindText {
		parent.AppendChild(NewText(tn.Text))
		return nil
	}

	n := NewElement(tn.Tag)
	var events []string
	bound := map[string]int{}

	for _, a := range tn.Attrs {
		name := strings.ToLower(a.Name)

		if ev, ok := strings.CutPrefix(name, "on"); ok && ev != "" {
			handler, err := resolveHandler(tn, name, a.Value, exposures)
			if err != nil {
				return err
			}
			pair := ev + "=" + handler
			if i, dup := bound[ev]; dup {
				events[i] = pair
			} else {
				bound[ev] = len(events)
				events = append(events, pair)
			}
			if !seen[handler] {
				seen[handler] = true
				*refs = append(*refs, handler)
			}
			continue
		}

		switch v := a.Value.(type) {
		case string:
			n.SetAttr(name, v)
		case bool:
			if v {
				n.SetAttr(name, "")
			}
		case nil:
			// Skip.
		default:
			// Non-string props reach the DOM through an inert value
			// descriptor the client resolves after patching, instead
			// of being stringified into the attribute.
			raw, err := json.Marshal(v)
			if err != nil {
				return &RenderError{
					Reason: fmt.Sprintf("prop %q on <%s> cannot be serialized", a.Name, tn.Tag),
					Err:    err,
				}
			}
			n.SetAttr(ValueDescriptorPrefix+name, string(raw))
		}
	}

	if len(events) > 0 {
		n.SetAttr(EventsAttr, strings.Join(events, ";"))
	}
	parent.AppendChild(n)

	if IsVoidElement(tn.Tag) {
		return nil
	}
	for _, c := range tn.Children {
		if err := convertTree(c, n, exposures, refs, seen); err != nil {
			return err
		}
	}
	return nil
}

// resolveHandler turns an event-handler prop value into a handler name,
// registering script exposures under their declared or synthesized name.
// The synthesized name derives from tag plus declared-children count so
// repeated synthesis stays idempotent across renders of the same structural
// position.
func resolveHandler(tn *el.Node, prop string, value any, exposures map[string]bridge.Exposure) (string, error) {
	switch v := value.(type) {
	case string:
		if v == "" {
			return "", renderErrorf("prop handler %q on <%s> names no function", prop, tn.Tag)
		}
		return v, nil
	case bridge.Exposure:
		if v.Kind != bridge.KindScript {
			return "", renderErrorf("prop handler %q on <%s> is a value, not a function", prop, tn.Tag)
		}
		name := v.Name
		if name == "" {
			name = fmt.Sprintf("%s_%d", strings.ToLower(tn.Tag), len(tn.Children))
		}
		exposures[name] = v
		return name, nil
	default:
		return "", renderErrorf("prop handler %q on <%s> lacks a resolvable function", prop, tn.Tag)
	}
}
