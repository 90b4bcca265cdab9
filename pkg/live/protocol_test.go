package live

import (
	"bytes"
	"strings"
	"testing"

	"github.com/frescoui/fresco/pkg/diff"
)

func TestEncodeMessagePadding(t *testing.T) {
	msg, err := EncodeMessage(nil)
	if err != nil {
		t.Fatalf("EncodeMessage: %v", err)
	}
	if len(msg) < MinMessageBytes {
		t.Errorf("message length %d below minimum %d", len(msg), MinMessageBytes)
	}
	if !bytes.HasPrefix(msg, []byte(MessagePrefix+MessageSeparator)) {
		t.Errorf("message %q lacks prefix", msg)
	}
	if !bytes.HasSuffix(msg, []byte(" ")) {
		t.Errorf("short message %q not space-padded", msg)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	content := "<span>B</span>"
	in := []diff.Patch{
		{Path: []int{0, 0}, Content: &content},
		{Path: []int{1}, Attrs: []diff.AttrChange{
			{Action: diff.ActionSet, Name: "class", Value: "big"},
			{Action: diff.ActionRemove, Name: "title"},
		}},
	}

	msg, err := EncodeMessage(in)
	if err != nil {
		t.Fatalf("EncodeMessage: %v", err)
	}
	out, err := DecodeMessage(msg)
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}

	if len(out) != 2 {
		t.Fatalf("decoded %d patches, want 2", len(out))
	}
	if out[0].Content == nil || *out[0].Content != content {
		t.Errorf("content = %v, want %q", out[0].Content, content)
	}
	if out[1].Attrs[0].Action != diff.ActionSet || out[1].Attrs[1].Action != diff.ActionRemove {
		t.Errorf("attr actions = %v, want set then remove", out[1].Attrs)
	}
}

func TestEncodeMessageLongPayloadUnpadded(t *testing.T) {
	content := strings.Repeat("<b>x</b>", 64)
	msg, err := EncodeMessage([]diff.Patch{{Path: []int{0}, Content: &content}})
	if err != nil {
		t.Fatalf("EncodeMessage: %v", err)
	}
	if bytes.HasSuffix(msg, []byte(" ")) {
		t.Error("long message should not be padded")
	}
}

func TestDecodeMessageRejectsForeignPrefix(t *testing.T) {
	if _, err := DecodeMessage([]byte("other\n[]")); err == nil {
		t.Error("expected error for foreign prefix")
	}
}
