package model

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/debemdeboas/churchhelp/internal/cache"
	"github.com/debemdeboas/churchhelp/internal/config"
)

func TestNewPageData(t *testing.T) {
	original := config.AppConfig
	defer func() { config.AppConfig = original }()

	cfg := config.Defaults()
	cfg.Site.Name = "Grace Chapel"
	cfg.Site.Footer = "Sunday 10am"
	config.AppConfig = cfg

	t.Run("defaults from config", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/sermon/edit", nil)
		pd := NewPageData(r)

		if pd.SiteName != "Grace Chapel" {
			t.Errorf("Expected site name from config, got %q", pd.SiteName)
		}
		if pd.Tagline != "Create a New Sermon" {
			t.Errorf("Expected default tagline, got %q", pd.Tagline)
		}
		if pd.Footer != "Sunday 10am" {
			t.Errorf("Expected footer from config, got %q", pd.Footer)
		}
		if pd.Theme != config.LightTheme {
			t.Errorf("Expected light theme, got %q", pd.Theme)
		}
		if string(pd.ThemeIcon) != config.DarkThemeIcon {
			t.Errorf("Expected dark icon on light theme, got %q", pd.ThemeIcon)
		}
		if pd.SyntaxTheme != config.DefaultLightSyntaxTheme {
			t.Errorf("Expected %q, got %q", config.DefaultLightSyntaxTheme, pd.SyntaxTheme)
		}
		if !strings.Contains(string(pd.SyntaxCSS), ".chroma") {
			t.Error("Expected chroma CSS")
		}
		if !pd.LivePreview {
			t.Error("Expected live preview enabled")
		}
	})

	t.Run("theme cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: config.CookieTheme, Value: config.DarkTheme})
		pd := NewPageData(r)

		if pd.Theme != config.DarkTheme {
			t.Errorf("Expected dark theme from cookie, got %q", pd.Theme)
		}
		if pd.SyntaxTheme != config.DefaultDarkSyntaxTheme {
			t.Errorf("Expected dark syntax theme, got %q", pd.SyntaxTheme)
		}
	})
}

func TestIsEditor(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/", true},
		{"/sermon/edit", true},
		{"/partials/sermon/preview", false},
		{"/robots.txt", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			pd := &PageData{PageURL: tt.path}
			if got := pd.IsEditor(); got != tt.want {
				t.Errorf("IsEditor(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestStatic(t *testing.T) {
	pd := &PageData{}
	cache.SetStaticHash("/static/style.css", "abc123")

	if got := pd.Static("style.css"); got != "/static/style.css?v=abc123" {
		t.Errorf("Unexpected static URL %q", got)
	}
	if got := pd.Static("missing.js"); got != "/static/missing.js" {
		t.Errorf("Unexpected static URL %q", got)
	}
}
