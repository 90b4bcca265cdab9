// Package fresco is a server-driven UI framework. Pages render on the
// server into a canonical HTML form; connected browsers receive the initial
// document over HTTP and subsequent changes as index-path-addressed patches
// over a websocket, computed by diffing re-renders against a per-connection
// baseline.
//
// A minimal application registers a page and serves it:
//
//	app := fresco.New(fresco.Config{Addr: ":8080"})
//	app.RegisterPage(page.Definition{
//	    Path:  "/",
//	    Title: "Counter",
//	    New:   func() page.Page { return &CounterPage{} },
//	})
//	log.Fatal(app.Run(context.Background()))
//
// A page implements page.Page by returning either markup text or an el.Node
// tree from Render. Event handlers referenced from markup resolve against
// the page's declared endpoints and exposures; the browser runtime calls
// endpoints over POST <path>/api/<endpoint> and applies patches streamed
// from <path>/socket.
package fresco
