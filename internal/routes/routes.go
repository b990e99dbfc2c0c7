// Package routes defines HTTP route constants for the application.
package routes

// Chrome
const (
	Robots      = "/robots.txt"
	ThemeToggle = "/theme/toggle"
	SyntaxTheme = "/syntax-theme/{theme}"
)

// Editor page and form events
const (
	Root      = "/{$}"
	Editor    = "/sermon/edit"
	NewSermon = "/new/sermon"
	Field     = "/sermon/field"
	Blocks    = "/sermon/blocks"
	Block     = "/sermon/blocks/{id}"
	Submit    = "/sermon/submit"
	Sync      = "/sermon/sync"
	Export    = "/sermon/export"
	Preview   = "/sermon/preview"
	SSE       = "/sse"
)

// Partials
const (
	PreviewPartial = "/partials/sermon/preview"
	ExportPartial  = "/partials/sermon/export"
)
