// Package model holds the data shared by every rendered page.
package model

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/debemdeboas/churchhelp/internal/cache"
	"github.com/debemdeboas/churchhelp/internal/config"
	"github.com/debemdeboas/churchhelp/internal/routes"
	"github.com/debemdeboas/churchhelp/internal/theme"
)

type PageData struct {
	SiteName string
	Tagline  string
	Footer   string

	PageURL string

	Theme          string
	ThemeIcon      template.HTML
	AllowSwitching bool

	SyntaxCSS   template.CSS
	SyntaxTheme string

	LivePreview bool
}

func NewPageData(r *http.Request) *PageData {
	cfg := config.AppConfig
	current := theme.GetThemeFromRequest(r)
	syntaxTheme := theme.GetSyntaxThemeFromRequest(r)

	return &PageData{
		SiteName:       cfg.Site.Name,
		Tagline:        cfg.Site.Tagline,
		Footer:         cfg.Site.Footer,
		PageURL:        r.URL.Path,
		Theme:          current,
		ThemeIcon:      template.HTML(theme.GetThemeIcon(current)),
		AllowSwitching: cfg.Theme.AllowSwitching,
		SyntaxCSS:      theme.GenerateSyntaxCSS(syntaxTheme),
		SyntaxTheme:    syntaxTheme,
		LivePreview:    cfg.Editor.LivePreview,
	}
}

func (pd *PageData) IsEditor() bool {
	return pd.PageURL == "/" || strings.HasPrefix(pd.PageURL, routes.Editor)
}

// Static returns the URL of an embedded static file with its content hash
// attached, so browsers refetch it after a deploy.
func (pd *PageData) Static(name string) string {
	urlPath := config.StaticUrlPath + name
	if hash, ok := cache.GetStaticHash(urlPath); ok {
		return urlPath + "?v=" + hash
	}
	return urlPath
}
