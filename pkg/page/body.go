package page

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Body is the decoded payload of an endpoint invocation: a JSON object, or
// the field set of the multipart fallback. Files uploaded through the
// multipart fallback are parked in the upload store and surface here as
// temp IDs.
type Body struct {
	fields map[string]any

	// Files holds upload temp IDs, claimable through Context.Uploads.
	Files []string
}

// NewBody wraps decoded endpoint fields.
func NewBody(fields map[string]any, files []string) *Body {
	if fields == nil {
		fields = map[string]any{}
	}
	return &Body{fields: fields, Files: files}
}

// Get returns a raw field value.
func (b *Body) Get(key string) (any, bool) {
	v, ok := b.fields[key]
	return v, ok
}

// String returns a field as a string, with numeric values formatted.
func (b *Body) String(key string) string {
	switch v := b.fields[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Int returns a field as an int, tolerating JSON numbers and numeric
// strings. Missing or non-numeric fields yield 0.
func (b *Body) Int(key string) int {
	switch v := b.fields[key].(type) {
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	default:
		return 0
	}
}

// Bool returns a field as a bool.
func (b *Body) Bool(key string) bool {
	switch v := b.fields[key].(type) {
	case bool:
		return v
	case string:
		ok, _ := strconv.ParseBool(v)
		return ok
	default:
		return false
	}
}

// Decode re-marshals the field set into v for pages that prefer typed
// request structs.
func (b *Body) Decode(v any) error {
	raw, err := json.Marshal(b.fields)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// Len returns the number of fields.
func (b *Body) Len() int { return len(b.fields) }
