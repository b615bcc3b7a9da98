// Package web holds the embedded front-end page. The page is a thin client
// for the conversion API; all enforcement lives server-side.
package web

import _ "embed"

//go:embed index.html
var IndexHTML []byte
