package render

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/debemdeboas/churchhelp/internal/cache"
	"github.com/debemdeboas/churchhelp/internal/theme"
	"github.com/debemdeboas/churchhelp/internal/util"
)

// ExportLexer tokenises the flattened sermon text: header keys, block labels
// and their values. Every rule consumes a whole line, so each match starts
// at the beginning of a line.
var ExportLexer = chroma.MustNewLexer(
	&chroma.Config{
		Name:      "Sermon Export",
		Aliases:   []string{"sermon"},
		Filenames: []string{"*_sermon.txt"},
		MimeTypes: []string{"text/x-sermon"},
	},
	func() chroma.Rules {
		return chroma.Rules{
			"root": {
				{Pattern: `(Title|Scripture|Date)(:)([^\n]*\n?)`, Type: chroma.ByGroups(chroma.NameTag, chroma.Punctuation, chroma.GenericHeading)},
				{Pattern: `(Note|Verse|Image)(:)([^\n]*\n?)`, Type: chroma.ByGroups(chroma.Keyword, chroma.Punctuation, chroma.LiteralString)},
				{Pattern: `[^\n]+\n?`, Type: chroma.Text},
				{Pattern: `\n`, Type: chroma.TextWhitespace},
			},
		}
	},
)

// HighlightExport renders the flattened text as chroma HTML under style.
// Results are cached by content hash and style.
func HighlightExport(text, style string) (string, error) {
	hash := util.ContentHashString(text)
	if html, ok := cache.GetHighlightedExport(hash, style); ok {
		renderLogger.Debug().Str("contentHash", hash).Str("style", style).Msg("Cache hit for highlighted export")
		return html, nil
	}

	iterator, err := chroma.Coalesce(ExportLexer).Tokenise(nil, text)
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	if err := theme.GetFormatter().Format(&buf, styles.Get(style), iterator); err != nil {
		return "", err
	}

	html := buf.String()
	cache.SetHighlightedExport(hash, style, html)
	return html, nil
}
