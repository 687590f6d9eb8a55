// Package web embeds the page templates shipped with the function.
package web

import "embed"

// Templates holds templates/layouts/*.html and one page template per route.
//
//go:embed templates
var Templates embed.FS
