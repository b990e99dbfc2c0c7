// Package render turns a sermon draft into its preview HTML and its highlighted export view.
package render

import (
	"bytes"
	"html/template"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/churchhelp/internal/sermon"
)

var renderLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	renderLogger = l
}

var previewTemplates = template.Must(template.New("preview").Parse(`
{{- define "header" -}}
<h3 class="preview-title">{{.Title}}</h3>
<p class="preview-meta">Scripture: {{.Scripture}}</p>
<p class="preview-meta">Date: {{.Date}}</p>
{{- end -}}
{{- define "note" -}}
<div class="preview-block" data-block="{{.ID}}"><p class="block-note">{{.Content}}</p></div>
{{- end -}}
{{- define "verse" -}}
<div class="preview-block" data-block="{{.ID}}"><p class="block-verse">{{.Content}}</p></div>
{{- end -}}
{{- define "image" -}}
<div class="preview-block" data-block="{{.ID}}"><img class="block-image" src="{{.Content}}" alt="Sermon image {{.Position}}"></div>
{{- end -}}
`))

type blockView struct {
	sermon.Block
	Position int
}

// htmlRenderer writes one fragment per block kind.
type htmlRenderer struct {
	buf *bytes.Buffer
	pos int
	err error
}

func (r *htmlRenderer) VisitNote(b sermon.Block)  { r.exec("note", b) }
func (r *htmlRenderer) VisitVerse(b sermon.Block) { r.exec("verse", b) }
func (r *htmlRenderer) VisitImage(b sermon.Block) { r.exec("image", b) }

func (r *htmlRenderer) exec(name string, b sermon.Block) {
	if r.err != nil {
		return
	}
	r.err = previewTemplates.ExecuteTemplate(r.buf, name, blockView{Block: b, Position: r.pos})
}

// Preview renders the structured on-screen view of d. Block order is kept and
// an empty block list renders an empty container.
func Preview(d sermon.Draft) (template.HTML, error) {
	var buf bytes.Buffer
	if err := previewTemplates.ExecuteTemplate(&buf, "header", d); err != nil {
		return "", err
	}

	buf.WriteString(`<div class="preview-blocks">`)
	r := &htmlRenderer{buf: &buf}
	for i, b := range d.Blocks {
		r.pos = i + 1
		b.Accept(r)
	}
	if r.err != nil {
		return "", r.err
	}
	buf.WriteString(`</div>`)

	return template.HTML(buf.String()), nil
}
