package canon

import "fmt"

// RenderError reports a markup or tree construction failure. It degrades to
// a visible error page rather than failing the request: Normalize returns a
// document carrying the error description alongside the error itself.
type RenderError struct {
	Reason string
	Err    error
}

// Error implements error.
func (e *RenderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("canon: render failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("canon: render failed: %s", e.Reason)
}

// Unwrap returns the underlying cause, if any.
func (e *RenderError) Unwrap() error { return e.Err }

func renderErrorf(format string, args ...any) *RenderError {
	return &RenderError{Reason: fmt.Sprintf(format, args...)}
}

// ErrorDocument builds the degraded error page served when a render fails.
func ErrorDocument(err error) *Document {
	body := NewElement("body")
	pre := NewElement("pre")
	pre.SetAttr("class", "fresco-error")
	pre.AppendChild(NewText(err.Error()))
	body.AppendChild(pre)
	return &Document{Body: body}
}
