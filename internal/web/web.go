// Package web holds the editor page and the thin client that forwards
// browser events to the server.
package web

import (
	"bytes"
	"embed"
	"io/fs"

	"catalog/internal/dom"
)

//go:embed index.html
var page []byte

//go:embed static
var static embed.FS

// NewDocument разбирает страницу редактора в свежий headless-документ
func NewDocument() (*dom.Document, error) {
	return dom.Parse(bytes.NewReader(page))
}

// Static assets served under /static
func Static() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
