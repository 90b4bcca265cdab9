package fresco

import (
	"errors"
	"strings"
	"testing"

	"github.com/frescoui/fresco/pkg/bridge"
	"github.com/frescoui/fresco/pkg/canon"
	"github.com/frescoui/fresco/pkg/page"
)

func TestNormalizePath(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", "/"},
		{"/", "/"},
		{"dash", "/dash"},
		{"/dash", "/dash"},
		{"/dash/", "/dash"},
	}
	for _, c := range cases {
		if got := normalizePath(c.in); got != c.want {
			t.Errorf("normalizePath(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestRoutePath(t *testing.T) {
	if got := routePath("/", "socket"); got != "/socket" {
		t.Errorf("root socket route = %q", got)
	}
	if got := routePath("/dash", "api/{endpoint}"); got != "/dash/api/{endpoint}" {
		t.Errorf("dash endpoint route = %q", got)
	}
}

func TestETagMatches(t *testing.T) {
	etag := `"abc123"`
	cases := []struct {
		header string
		want   bool
	}{
		{"", false},
		{`"abc123"`, true},
		{`W/"abc123"`, true},
		{`"other", "abc123"`, true},
		{`"other"`, false},
		{`W/"other"`, false},
	}
	for _, c := range cases {
		if got := etagMatches(c.header, etag); got != c.want {
			t.Errorf("etagMatches(%q) = %v, want %v", c.header, got, c.want)
		}
	}
}

func TestComposePage(t *testing.T) {
	doc, err := canon.ParseDocument("<p>hi</p>")
	if err != nil {
		t.Fatal(err)
	}
	desc, dropped := bridge.Build("/", map[string]bridge.Exposure{
		"closer": bridge.Value("</script><script>alert(1)</script>"),
	}, []string{"go"})
	if len(dropped) != 0 {
		t.Fatalf("dropped: %v", dropped)
	}

	html := composePage("a <b> title", doc, desc)

	if !strings.HasPrefix(html, "<!doctype html>\n<html><head>") {
		t.Errorf("prefix wrong: %q", html[:40])
	}
	if !strings.Contains(html, "<title>a &lt;b&gt; title</title>") {
		t.Error("title not escaped")
	}
	if strings.Contains(html, "</script><script>alert") {
		t.Error("descriptor script not inert against embedded close tags")
	}
	if !strings.Contains(html, `<\/script>`) {
		t.Error("close tags not rewritten in descriptor payload")
	}
	if !strings.Contains(html, "</head><body><p>hi</p></body></html>") {
		t.Errorf("body placement wrong: %q", html)
	}
}

func TestComposePageNoTitle(t *testing.T) {
	doc, err := canon.ParseDocument("<p>x</p>")
	if err != nil {
		t.Fatal(err)
	}
	html := composePage("", doc, nil)
	if strings.Contains(html, "<title>") {
		t.Error("empty title still emitted a tag")
	}
	if !strings.Contains(html, ClientScriptPath) {
		t.Error("runtime tag missing without a descriptor")
	}
}

type panicker struct{}

func (p *panicker) Render(ctx *page.Context) any { panic("nope") }

func TestRenderOutputContainsPanic(t *testing.T) {
	out, err := renderOutput(&panicker{}, nil)
	if out != nil {
		t.Errorf("out = %v", out)
	}
	if err == nil || !strings.Contains(err.Error(), "nope") {
		t.Fatalf("err = %v", err)
	}
	var rerr *canon.RenderError
	if !errors.As(err, &rerr) {
		t.Fatalf("err %T is not a RenderError", err)
	}
}
