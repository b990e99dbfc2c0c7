package cache

import "html/template"

var (
	staticHashes = NewCache[string, string]()
	syntaxStyles = NewCache[string, template.CSS]()
)

// GetStaticHash returns the ETag recorded for an embedded static file URL.
func GetStaticHash(urlPath string) (string, bool) {
	return staticHashes.Get(urlPath)
}

func SetStaticHash(urlPath, hash string) {
	staticHashes.Set(urlPath, hash)
}

func GetSyntaxCSS(style string) (template.CSS, bool) {
	return syntaxStyles.Get(style)
}

func SetSyntaxCSS(style string, css template.CSS) {
	syntaxStyles.Set(style, css)
}
