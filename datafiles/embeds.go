// Package datafiles carries the static files served by the web package.
package datafiles

import "embed"

// Templates holds the HTML templates, by file name.
//
//go:embed index.html
var Templates embed.FS
