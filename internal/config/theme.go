package config

const (
	LightTheme string = "light-theme"
	DarkTheme  string = "dark-theme"

	LightThemeIcon string = `<i class="fas fa-sun"></i>`
	DarkThemeIcon  string = `<i class="fas fa-moon"></i>`

	DefaultDarkSyntaxTheme  string = "gruvbox"
	DefaultLightSyntaxTheme string = "catppuccin-latte"

	DefaultTheme string = LightTheme
)

// ThemeClass maps the short names used in config.yaml to the CSS body classes.
func ThemeClass(name string) string {
	switch name {
	case "dark", DarkTheme:
		return DarkTheme
	case "light", LightTheme:
		return LightTheme
	}
	return DefaultTheme
}
