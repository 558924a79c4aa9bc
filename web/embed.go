// Package web holds the browser UI served by meald.
package web

import (
	"embed"
	"io/fs"
)

//go:embed index.html app.js style.css
var files embed.FS

// FS returns the embedded UI assets.
func FS() fs.FS {
	return files
}

// Index returns the UI entry page.
func Index() []byte {
	b, err := files.ReadFile("index.html")
	if err != nil {
		panic(err)
	}
	return b
}
