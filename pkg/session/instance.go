package session

import (
	"sort"
	"sync"

	"github.com/frescoui/fresco/pkg/bridge"
	"github.com/frescoui/fresco/pkg/canon"
	"github.com/frescoui/fresco/pkg/page"
)

// PageInstance is one session's live copy of a page: the constructed Page
// value, its endpoint table, its declared exposures, and the last document
// served over HTTP. The served snapshot seeds the baseline when a live
// connection opens and backs conditional GETs.
type PageInstance struct {
	Path    string
	Title   string
	Page    page.Page
	Storage page.Storage

	endpoints map[string]page.EndpointFunc
	exposures map[string]bridge.Exposure

	mu         sync.Mutex
	servedDoc  *canon.Document
	servedHTML string
	servedETag string
}

// Endpoint looks up a named endpoint handler.
func (pi *PageInstance) Endpoint(name string) (page.EndpointFunc, bool) {
	fn, ok := pi.endpoints[name]
	return fn, ok
}

// EndpointNames returns the declared endpoint names in sorted order.
func (pi *PageInstance) EndpointNames() []string {
	names := make([]string, 0, len(pi.endpoints))
	for name := range pi.endpoints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Exposures returns the page's declared exposures. Callers must not mutate
// the returned map.
func (pi *PageInstance) Exposures() map[string]bridge.Exposure {
	return pi.exposures
}

// Resolves reports whether name is backed by an endpoint or an exposure on
// this instance. It is the resolver handed to markup normalization.
func (pi *PageInstance) Resolves(name string) bool {
	if _, ok := pi.endpoints[name]; ok {
		return true
	}
	_, ok := pi.exposures[name]
	return ok
}

// SetServed records the document most recently served for the page along
// with its full-page rendering and entity tag.
func (pi *PageInstance) SetServed(doc *canon.Document, html, etag string) {
	pi.mu.Lock()
	defer pi.mu.Unlock()
	pi.servedDoc = doc
	pi.servedHTML = html
	pi.servedETag = etag
}

// Served returns the last served document, rendering, and entity tag. The
// document is nil before the first full render.
func (pi *PageInstance) Served() (*canon.Document, string, string) {
	pi.mu.Lock()
	defer pi.mu.Unlock()
	return pi.servedDoc, pi.servedHTML, pi.servedETag
}
