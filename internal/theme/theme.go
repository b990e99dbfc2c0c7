// Package theme resolves the page theme and the chroma style used for the export view.
package theme

import (
	"html/template"
	"net/http"
	"slices"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/debemdeboas/churchhelp/internal/cache"
	"github.com/debemdeboas/churchhelp/internal/config"
)

func GetThemeFromRequest(r *http.Request) string {
	if config.AppConfig.Theme.AllowSwitching {
		if cookie, err := r.Cookie(config.CookieTheme); err == nil {
			return config.ThemeClass(cookie.Value)
		}
	}
	return config.ThemeClass(config.AppConfig.Theme.Default)
}

func GetDefaultSyntaxTheme(theme string) string {
	if config.ThemeClass(theme) == config.DarkTheme {
		return config.AppConfig.Theme.SyntaxHighlighting.DefaultDark
	}
	return config.AppConfig.Theme.SyntaxHighlighting.DefaultLight
}

// GetSyntaxThemeFromRequest ignores cookie values that do not name a chroma style.
func GetSyntaxThemeFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(config.CookieSyntaxTheme); err == nil {
		if _, ok := styles.Registry[cookie.Value]; ok {
			return cookie.Value
		}
	}
	return GetDefaultSyntaxTheme(GetThemeFromRequest(r))
}

func GetSyntaxThemes() []string {
	styleNames := styles.Names()
	slices.Sort(styleNames)
	return styleNames
}

func GetFormatter() *html.Formatter {
	return html.New(
		html.WithClasses(true),
		html.TabWidth(4),
		html.WithLineNumbers(true),
		html.WrapLongLines(true),
	)
}

func GenerateSyntaxCSS(theme string) template.CSS {
	if css, ok := cache.GetSyntaxCSS(theme); ok {
		return css
	}

	var buf strings.Builder
	formatter := GetFormatter()
	style := styles.Get(theme)

	bg := style.Get(chroma.Background)
	if !bg.Colour.IsSet() {
		// Pick readable text for styles that only set a background
		luminance := (0.299*float64(bg.Background.Red()) +
			0.587*float64(bg.Background.Green()) +
			0.114*float64(bg.Background.Blue())) / 255
		if luminance > 0.5 {
			buf.WriteString(".chroma { color: #181818; }\n")
		}
	}

	if err := formatter.WriteCSS(&buf, style); err != nil {
		return ""
	}
	css := template.CSS(buf.String())
	cache.SetSyntaxCSS(theme, css)
	return css
}

func GetThemeIcon(theme string) string {
	if theme == config.LightTheme {
		return config.DarkThemeIcon
	}
	return config.LightThemeIcon
}

// Toggle returns the theme opposite to current.
func Toggle(current string) string {
	if config.ThemeClass(current) == config.DarkTheme {
		return config.LightTheme
	}
	return config.DarkTheme
}
