// Package web holds the HTML templates and stylesheet of the search page.
package web

import "embed"

// Templates holds the page, results and pagination templates.
//
//go:embed templates/*.html
var Templates embed.FS

// Stylesheet is served at /static/leadsearch.css.
//
//go:embed leadsearch.css
var Stylesheet []byte
