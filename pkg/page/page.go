// Package page defines the contract between the framework and page authors:
// the Page interface, the explicit endpoint/exposure registration surface,
// and the context handed to renders and endpoint invocations.
//
// Registration is an explicit step, not reflection: a page type that wants
// endpoints or exposures implements EndpointProvider / ExposureProvider and
// the tables are scanned exactly once when the page is instantiated for a
// session.
package page

import (
	"context"
	"log/slog"

	"github.com/frescoui/fresco/pkg/bridge"
	"github.com/frescoui/fresco/pkg/upload"
)

// Page is a server-side page object. Render returns either raw markup text
// (string) or a declarative element tree (*el.Node); both are normalized
// into the same canonical form before serving or diffing.
//
// Change detection is element-scoped: bare text at the top level of the
// body is served but never patched, so any text that changes between
// renders must live inside an element.
type Page interface {
	Render(ctx *Context) any
}

// EndpointFunc is a named server-side operation invokable from the client
// via POST <path>/api/<name>. The implementation never ships to the client.
type EndpointFunc func(ctx *Context, body *Body) (any, error)

// EndpointProvider is implemented by pages that expose endpoints. Scanned
// once at instantiation.
type EndpointProvider interface {
	Endpoints() map[string]EndpointFunc
}

// ExposureProvider is implemented by pages that expose values or client
// scripts. Scanned once at instantiation.
type ExposureProvider interface {
	Exposures() map[string]bridge.Exposure
}

// Definition binds a path to a page factory. One page object is constructed
// per (session, path) pair, on first access.
type Definition struct {
	// Path is the exact request path the page answers on.
	Path string

	// New constructs a fresh page object for a session.
	New func() Page

	// Title is the document title; defaults to the path when empty.
	Title string
}

// Storage is the session-scoped key/value area visible to one page path.
// Reads never see entries owned exclusively by another path; writes tag the
// entry with the writing path.
type Storage interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	Delete(key string)
	Keys() []string
}

// Context carries per-invocation state into Render and endpoint calls.
type Context struct {
	// Path is the page path being rendered or invoked.
	Path string

	// Token is the opaque session token.
	Token string

	// Storage is the path-scoped session storage.
	Storage Storage

	// Uploads is the configured upload store, nil when uploads are not
	// configured.
	Uploads upload.Store

	// Logger is a request-scoped structured logger.
	Logger *slog.Logger

	ctx context.Context
}

// NewContext builds a Context. The std context covers the lifetime of the
// triggering request or poll tick.
func NewContext(ctx context.Context, path, token string, storage Storage, uploads upload.Store, logger *slog.Logger) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Context{
		Path:    path,
		Token:   token,
		Storage: storage,
		Uploads: uploads,
		Logger:  logger,
		ctx:     ctx,
	}
}

// Context returns the std context of the triggering request or tick.
func (c *Context) Context() context.Context { return c.ctx }
