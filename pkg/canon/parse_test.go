package canon

import (
	"reflect"
	"testing"
)

func TestParseDocumentEventShorthand(t *testing.T) {
	doc, err := ParseDocument(`<div @onclick=save @onmouseover=hint>x</div>`)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}

	div := doc.Body.Children[0]
	got, ok := div.Attr(EventsAttr)
	if !ok {
		t.Fatalf("no %s attribute", EventsAttr)
	}
	if want := "click=save;mouseover=hint"; got != want {
		t.Errorf("events = %q, want %q", got, want)
	}
	if want := []string{"save", "hint"}; !reflect.DeepEqual(doc.References, want) {
		t.Errorf("references = %v, want %v", doc.References, want)
	}
}

func TestParseDocumentDuplicateEventBinding(t *testing.T) {
	doc, err := ParseDocument(`<button @onclick=first @onclick=second>go</button>`)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}

	got, _ := doc.Body.Children[0].Attr(EventsAttr)
	if want := "click=second"; got != want {
		t.Errorf("events = %q, want %q", got, want)
	}
}

func TestParseDocumentStripsHead(t *testing.T) {
	doc, err := ParseDocument(`<html><head><title>ignored</title><meta charset="x"></head><body><p>kept</p></body></html>`)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}

	if got, want := doc.Body.OuterHTML(), "<body><p>kept</p></body>"; got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}

func TestParseDocumentDropsFormattingWhitespace(t *testing.T) {
	doc, err := ParseDocument("<div>\n  <span>a</span>\n  <span>b</span>\n</div>")
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}

	if got, want := doc.Body.InnerHTML(), "<div><span>a</span><span>b</span></div>"; got != want {
		t.Errorf("inner = %q, want %q", got, want)
	}

	// The drop applies between inline siblings too; spacing that matters
	// goes inside an element's text or into CSS.
	doc, err = ParseDocument("<div><span>a</span> <span>b</span></div>")
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if got, want := doc.Body.InnerHTML(), "<div><span>a</span><span>b</span></div>"; got != want {
		t.Errorf("inline siblings: inner = %q, want %q", got, want)
	}
}

func TestParseDocumentLowercasesAttributes(t *testing.T) {
	doc, err := ParseDocument(`<div CLASS="big">x</div>`)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}

	if _, ok := doc.Body.Children[0].Attr("class"); !ok {
		t.Error("expected lowercased class attribute")
	}
}

func TestParseDocumentBareText(t *testing.T) {
	doc, err := ParseDocument("hello")
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if got, want := doc.Body.InnerHTML(), "hello"; got != want {
		t.Errorf("inner = %q, want %q", got, want)
	}
}
