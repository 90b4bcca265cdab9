// Package clientdist embeds the browser runtime bundle.
package clientdist

import _ "embed"

// FrescoJS is the browser runtime served at "/_fresco/client.js".
//
//go:embed fresco.js
var FrescoJS []byte
