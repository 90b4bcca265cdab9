package el

import "testing"

func TestElArguments(t *testing.T) {
	n := Div(
		Class("row"),
		Span("a"),
		"text",
		[]*Node{Li("1"), nil, Li("2")},
		(*Node)(nil),
	)

	if n.Tag != "div" || n.Kind != KindElement {
		t.Fatalf("node = %+v", n)
	}
	if len(n.Attrs) != 1 || n.Attrs[0].Name != "class" {
		t.Errorf("attrs = %v", n.Attrs)
	}
	if len(n.Children) != 4 {
		t.Fatalf("children = %d, want 4 (nil skipped)", len(n.Children))
	}
	if n.Children[1].Kind != KindText || n.Children[1].Text != "text" {
		t.Errorf("string argument not converted to text child: %+v", n.Children[1])
	}
}

func TestAttrOrderPreserved(t *testing.T) {
	n := Input(Type("text"), Name("q"), Placeholder("search"))

	want := []string{"type", "name", "placeholder"}
	for i, a := range n.Attrs {
		if a.Name != want[i] {
			t.Errorf("attr %d = %s, want %s", i, a.Name, want[i])
		}
	}
}

func TestOnProp(t *testing.T) {
	a := On("click", "save")
	if a.Name != "onclick" {
		t.Errorf("name = %q, want onclick", a.Name)
	}
	if a.Value != "save" {
		t.Errorf("value = %v, want save", a.Value)
	}
}

func TestBoolAttrs(t *testing.T) {
	n := Input(Disabled(true))
	if v, ok := n.Attrs[0].Value.(bool); !ok || !v {
		t.Errorf("disabled value = %v", n.Attrs[0].Value)
	}
}
