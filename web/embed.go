// Package web provides the embedded static assets served at /static/:
// the storefront stylesheet and the preview sync client injected into
// edit-mode pages.
package web

import "embed"

// StaticFS embeds the web/static/ directory tree.
//
//go:embed all:static
var StaticFS embed.FS
