// Package canon holds the canonical tree representation of rendered markup
// and the normalizer that produces it.
//
// A page render returns either raw markup text or a declarative element tree
// (package el). Normalize converts both into the same canonical form: a body
// tree of elements and text runs with ordered attributes, event-binding
// shorthand folded into a single inert data-events attribute, and non-string
// props carried as inert value-descriptor attributes. The canonical form is
// what the reconciliation engine (package diff) compares and what the client
// receives, so its serialization must be byte-stable for identical input.
package canon
