// Package live streams reconciliation patches to a connected browser over a
// websocket. Each connection owns its own render baseline and a poll timer;
// a tick re-renders the page, diffs against the baseline, and pushes the
// resulting patches in a single text message.
package live

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/frescoui/fresco/pkg/diff"
)

const (
	// MessagePrefix tags a patch message on the wire.
	MessagePrefix = "update_content"

	// MessageSeparator sits between the prefix and the patch payload.
	MessageSeparator = "\n"

	// MinMessageBytes is the minimum encoded message size. Short messages
	// are padded with trailing spaces so intermediaries that mishandle tiny
	// text frames never see one.
	MinMessageBytes = 128
)

// EncodeMessage renders a patch list as a wire message: prefix, separator,
// JSON payload, padded to MinMessageBytes.
func EncodeMessage(patches []diff.Patch) ([]byte, error) {
	payload, err := json.Marshal(patches)
	if err != nil {
		return nil, fmt.Errorf("encode patches: %w", err)
	}

	var b bytes.Buffer
	b.Grow(MinMessageBytes)
	b.WriteString(MessagePrefix)
	b.WriteString(MessageSeparator)
	b.Write(payload)
	for b.Len() < MinMessageBytes {
		b.WriteByte(' ')
	}
	return b.Bytes(), nil
}

// DecodeMessage parses a wire message back into its patch list. Padding is
// trimmed before the payload is decoded.
func DecodeMessage(msg []byte) ([]diff.Patch, error) {
	prefix := []byte(MessagePrefix + MessageSeparator)
	if !bytes.HasPrefix(msg, prefix) {
		return nil, fmt.Errorf("decode message: missing %q prefix", MessagePrefix)
	}
	payload := bytes.TrimRight(msg[len(prefix):], " ")

	var patches []diff.Patch
	if err := json.Unmarshal(payload, &patches); err != nil {
		return nil, fmt.Errorf("decode patches: %w", err)
	}
	return patches, nil
}
