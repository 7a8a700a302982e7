// Package web embeds the static chat page for single-binary distribution.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static
var assets embed.FS

// Assets returns the static site rooted at its top directory, so index.html
// is served at "/".
func Assets() fs.FS {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		panic(err) // static is embedded at build time
	}
	return sub
}
