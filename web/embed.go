// Package web holds the embedded templates and static assets of the site.
package web

import "embed"

// TemplateFS contains all HTML templates.
//
//go:embed templates
var TemplateFS embed.FS

// StaticFS contains compiled CSS, JS, and other static assets.
//
//go:embed static
var StaticFS embed.FS
