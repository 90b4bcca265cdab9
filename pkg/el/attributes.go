package el

// Prop declares an arbitrary prop.
func Prop(name string, value any) Attr {
	return Attr{Name: name, Value: value}
}

// On declares an event handler prop for the given event (without the "on"
// prefix). The handler is a registered endpoint/exposure name (string) or a
// bridge script exposure.
func On(event string, handler any) Attr {
	return Attr{Name: "on" + event, Value: handler}
}

func Class(v string) Attr       { return Attr{Name: "class", Value: v} }
func ID(v string) Attr          { return Attr{Name: "id", Value: v} }
func Name(v string) Attr        { return Attr{Name: "name", Value: v} }
func Type(v string) Attr        { return Attr{Name: "type", Value: v} }
func Value(v string) Attr       { return Attr{Name: "value", Value: v} }
func Href(v string) Attr        { return Attr{Name: "href", Value: v} }
func Src(v string) Attr         { return Attr{Name: "src", Value: v} }
func Alt(v string) Attr         { return Attr{Name: "alt", Value: v} }
func Title(v string) Attr       { return Attr{Name: "title", Value: v} }
func Placeholder(v string) Attr { return Attr{Name: "placeholder", Value: v} }
func Style(v string) Attr       { return Attr{Name: "style", Value: v} }
func For(v string) Attr         { return Attr{Name: "for", Value: v} }
func Disabled(v bool) Attr      { return Attr{Name: "disabled", Value: v} }
func Checked(v bool) Attr       { return Attr{Name: "checked", Value: v} }
