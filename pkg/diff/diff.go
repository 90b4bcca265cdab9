// Package diff is the reconciliation engine: it compares the canonical tree
// last sent to a client against a fresh render and emits the minimal ordered
// patch list that transforms one into the other in place.
//
// The engine never re-sends unchanged subtrees and tolerates stable nodes
// moving sibling position: any element whose serialized form is byte-equal
// to a same-tag element of the old tree counts as unchanged regardless of
// where it sits. Only elements whose own or descendant content differs
// become patch candidates, and of those only the innermost uncovered ones
// survive.
package diff

import (
	"github.com/frescoui/fresco/pkg/canon"
)

// Diff computes the patches that turn oldBody into newBody. Both arguments
// are canonical body roots. A path is never patched more than once per call.
func Diff(oldBody, newBody *canon.Node) []Patch {
	if oldBody == nil || newBody == nil {
		return nil
	}

	d := &differ{
		oldByTag: map[string][]*canon.Node{},
		identity: map[*canon.Node]string{},
		claimed:  map[*canon.Node]bool{},
	}
	for _, e := range oldBody.Elements() {
		d.oldByTag[e.Tag] = append(d.oldByTag[e.Tag], e)
	}

	pending := d.collectChanged(newBody)
	alive := d.pruneCovered(pending)

	var patches []Patch
	seen := map[string]bool{}
	for _, e := range pending {
		if !alive[e] {
			continue
		}
		newN, oldN := d.counterpart(e, oldBody, newBody)
		path := oldN.IndexPath()
		key := pathKey(path)
		if seen[key] {
			// Overlapping candidates from the coverage pass can land on
			// the same region; one patch per path per cycle.
			continue
		}
		seen[key] = true

		if p, ok := buildPatch(path, oldN, newN); ok {
			patches = append(patches, p)
		}
	}
	return patches
}

type differ struct {
	oldByTag map[string][]*canon.Node
	identity map[*canon.Node]string
	claimed  map[*canon.Node]bool
}

func (d *differ) identityOf(n *canon.Node) string {
	s, ok := d.identity[n]
	if !ok {
		s = n.IdentityHTML()
		d.identity[n] = s
	}
	return s
}

// collectChanged returns the new-tree elements with no byte-identical
// counterpart in the old tree's same-tag subset, in document order. Each
// old element is consumable by at most one identity match, so surviving
// old elements remain available as counterparts for the changed set.
//
// The scan is element-scoped: text runs that are direct children of body
// have no element to carry them and are not tracked, so a change confined
// to bare body-level text yields no patch. Pages keep live text inside an
// element.
func (d *differ) collectChanged(newBody *canon.Node) []*canon.Node {
	var pending []*canon.Node
	for _, e := range newBody.Elements() {
		id := d.identityOf(e)
		matched := false
		for _, o := range d.oldByTag[e.Tag] {
			if d.claimed[o] {
				continue
			}
			if d.identityOf(o) == id {
				d.claimed[o] = true
				matched = true
				break
			}
		}
		if !matched {
			pending = append(pending, e)
		}
	}
	return pending
}

// pruneCovered drops pending elements whose region is already covered by a
// surviving descendant: when a pending element's ancestor is structurally
// equivalent to another pending element, patching both would overlap, so
// the outer one is removed and the innermost change wins.
func (d *differ) pruneCovered(pending []*canon.Node) map[*canon.Node]bool {
	alive := make(map[*canon.Node]bool, len(pending))
	for _, e := range pending {
		alive[e] = true
	}
	for _, e := range pending {
		if !alive[e] {
			continue
		}
		for a := e.Parent; a != nil && !a.IsBody(); a = a.Parent {
			for _, f := range pending {
				if f == e || !alive[f] {
					continue
				}
				if canon.StructurallyEquivalent(a, f) {
					alive[f] = false
				}
			}
		}
	}
	return alive
}

// counterpart finds the old-tree region to patch for a changed element:
// walking the element's ancestor chain outward, the first unclaimed old
// element structurally equivalent at that level wins. This picks the
// smallest replaceable DOM region, escalating only when no node at a given
// level existed before. With no match up to the body, the counterpart is
// the old body itself.
func (d *differ) counterpart(e, oldBody, newBody *canon.Node) (newN, oldN *canon.Node) {
	for n := e; n != nil && !n.IsBody(); n = n.Parent {
		for _, o := range d.oldByTag[n.Tag] {
			if d.claimed[o] {
				continue
			}
			if canon.StructurallyEquivalent(n, o) {
				d.claimed[o] = true
				return n, o
			}
		}
	}
	return newBody, oldBody
}

// buildPatch decides the patch kind. Matching inner content means only
// attributes moved: emit the attribute delta, excluding "value", which
// reflects live user input and is never patched. Otherwise the whole region
// is replaced with the new element's canonical outer markup.
func buildPatch(path []int, oldN, newN *canon.Node) (Patch, bool) {
	if oldN.InnerHTML() != newN.InnerHTML() {
		content := newN.OuterHTML()
		return Patch{Path: path, Content: &content}, true
	}

	changes := attrChanges(oldN, newN)
	if len(changes) == 0 {
		return Patch{}, false
	}
	return Patch{Path: path, Attrs: changes}, true
}

func attrChanges(oldN, newN *canon.Node) []AttrChange {
	var changes []AttrChange
	for _, a := range newN.Attrs {
		if a.Name == "value" {
			continue
		}
		old, ok := oldN.Attr(a.Name)
		if !ok || old != a.Value {
			changes = append(changes, AttrChange{Action: ActionSet, Name: a.Name, Value: a.Value})
		}
	}
	for _, a := range oldN.Attrs {
		if a.Name == "value" {
			continue
		}
		if _, ok := newN.Attr(a.Name); !ok {
			changes = append(changes, AttrChange{Action: ActionRemove, Name: a.Name})
		}
	}
	return changes
}
