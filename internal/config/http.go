package config

const (
	HCType              = "Content-Type"
	HETag               = "ETag"
	HCacheControl       = "Cache-Control"
	HContentDisposition = "Content-Disposition"

	HHxRedirect = "HX-Redirect"
	HHxTrigger  = "HX-Trigger"
	HHxRequest  = "HX-Request"

	CTypeCSS   = "text/css"
	CTypeHTML  = "text/html; charset=utf-8"
	CTypePlain = "text/plain; charset=utf-8"
)

const (
	HTTPErrMethodNotAllowed = "Method not allowed"
)

const (
	CookieTheme       = "theme"
	CookieSyntaxTheme = "syntax-theme"
	CookieDraftID     = "draft-id"
)
