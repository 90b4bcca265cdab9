// Package bridge serializes a page's client surface: the exposures (named
// values and client scripts) and endpoint names that the browser runtime
// needs to dispatch events and call back into the server.
//
// Server-side functions are never shipped as source. A handler that must run
// in the browser is authored as JavaScript (Script/NamedScript); everything
// else is a literal value or an endpoint name the client invokes remotely.
package bridge

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Kind discriminates exposure payloads.
type Kind uint8

const (
	KindValue  Kind = iota // literal value, JSON-marshaled
	KindScript             // client-side function source
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindScript:
		return "script"
	default:
		return "unknown"
	}
}

// Exposure is a named unit of client-visible logic or data.
type Exposure struct {
	Kind   Kind
	Name   string // optional declared name; blank scripts get synthesized names
	Value  any    // KindValue payload
	Source string // KindScript payload: a JavaScript function expression
}

// Value returns a literal-value exposure.
func Value(v any) Exposure {
	return Exposure{Kind: KindValue, Value: v}
}

// Script returns an anonymous client-script exposure. When used as an event
// handler in an element tree it receives a synthesized stable name.
func Script(source string) Exposure {
	return Exposure{Kind: KindScript, Source: source}
}

// NamedScript returns a client-script exposure with a declared name.
func NamedScript(name, source string) Exposure {
	return Exposure{Kind: KindScript, Name: name, Source: source}
}

// SerializationError reports an exposure that could not be reduced to
// client-deliverable form. The exposure is dropped; the render continues.
type SerializationError struct {
	Name string
	Err  error
}

// Error implements error.
func (e *SerializationError) Error() string {
	return fmt.Sprintf("bridge: exposure %q cannot be serialized: %v", e.Name, e.Err)
}

// Unwrap returns the underlying cause.
func (e *SerializationError) Unwrap() error { return e.Err }

// Descriptor is the client runtime description embedded in the served page.
// The client reconstructs value exposures, compiles script exposures, and
// synthesizes a remote-invocation stub per endpoint name.
type Descriptor struct {
	Path      string                     `json:"path"`
	Values    map[string]json.RawMessage `json:"values"`
	Scripts   map[string]string          `json:"scripts"`
	Endpoints []string                   `json:"endpoints"`
}

// Build assembles the descriptor for one page render. Exposures that cannot
// be serialized are dropped and reported in the returned error list; the
// descriptor is always usable.
func Build(path string, exposures map[string]Exposure, endpoints []string) (*Descriptor, []error) {
	d := &Descriptor{
		Path:      path,
		Values:    make(map[string]json.RawMessage),
		Scripts:   make(map[string]string),
		Endpoints: append([]string(nil), endpoints...),
	}
	sort.Strings(d.Endpoints)

	var dropped []error
	for name, exp := range exposures {
		switch exp.Kind {
		case KindScript:
			d.Scripts[name] = RewriteSelfRefs(exp.Source)
		default:
			raw, err := json.Marshal(exp.Value)
			if err != nil {
				dropped = append(dropped, &SerializationError{Name: name, Err: err})
				continue
			}
			d.Values[name] = raw
		}
	}
	return d, dropped
}

// JSON encodes the descriptor. encoding/json escapes <, > and & by default,
// which keeps the payload safe inside an inline <script> element.
func (d *Descriptor) JSON() ([]byte, error) {
	return json.Marshal(d)
}

// RewriteSelfRefs rewrites a script's self-references so that, once
// reconstructed client-side, free references to the owning page resolve to
// the client aggregate object holding all exposures and endpoint stubs.
func RewriteSelfRefs(source string) string {
	return strings.ReplaceAll(source, "this.", "$page.")
}
