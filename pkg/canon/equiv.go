package canon

// transientAttr reports whether an attribute is excluded from structural
// matching: listener bindings (stable names, not identity) and "value"
// (live client state, not server state).
func transientAttr(name string) bool {
	return name == EventsAttr || name == "value"
}

// StructurallyEquivalent reports whether two elements are candidates for
// being the same logical node across renders: same tag, and at every
// ancestor level up to (not including) the body root the tags and
// non-transient attribute sets match. The elements' own attributes are not
// compared; attribute-only changes must still find their counterpart.
//
// When multiple same-tag siblings share identical ancestry and attributes
// this cannot distinguish them. That is a documented fidelity limit of the
// matching scheme, resolved downstream by first-match selection.
func StructurallyEquivalent(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != KindElement || b.Kind != KindElement {
		return false
	}
	if a.Tag != b.Tag {
		return false
	}

	a, b = a.Parent, b.Parent
	for {
		aBody := a == nil || a.IsBody()
		bBody := b == nil || b.IsBody()
		if aBody || bBody {
			return aBody && bBody
		}
		if a.Tag != b.Tag || !attrsEquivalent(a, b) {
			return false
		}
		a, b = a.Parent, b.Parent
	}
}

// attrsEquivalent compares the non-transient attribute sets of two nodes.
func attrsEquivalent(a, b *Node) bool {
	am := make(map[string]string, len(a.Attrs))
	for _, at := range a.Attrs {
		if !transientAttr(at.Name) {
			am[at.Name] = at.Value
		}
	}
	n := 0
	for _, bt := range b.Attrs {
		if transientAttr(bt.Name) {
			continue
		}
		v, ok := am[bt.Name]
		if !ok || v != bt.Value {
			return false
		}
		n++
	}
	return n == len(am)
}
