package fresco

import (
	"fmt"

	"github.com/frescoui/fresco/pkg/bridge"
	"github.com/frescoui/fresco/pkg/canon"
	"github.com/frescoui/fresco/pkg/live"
)

// NotFoundError reports an unknown page path or endpoint name. It maps to a
// 404 response with a literal explanatory body.
type NotFoundError struct {
	// Kind is "page" or "endpoint".
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Name)
}

// Error types from subpackages, re-exported so applications can errors.As
// against the root package alone.
type (
	// RenderError is a markup or tree construction failure. The request
	// still succeeds at the transport level with an error page body.
	RenderError = canon.RenderError

	// SerializationError reports an exposure that could not be turned into
	// client-callable form. The exposure is dropped, the render continues.
	SerializationError = bridge.SerializationError

	// ConnectionError reports a live-channel failure. It terminates that
	// connection's poll loop; other connections are unaffected.
	ConnectionError = live.ConnectionError
)
