package sermon

import (
	"regexp"
	"strings"
)

const (
	ExportSuffix      = "_sermon.txt"
	ExportContentType = "text/plain; charset=utf-8"
)

// Matches whitespace runs the way a browser's \s does, Unicode spaces included.
var whitespaceRun = regexp.MustCompile(`[\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}]+`)

// Artifact is the downloadable plain-text export of a draft.
type Artifact struct {
	Name        string
	ContentType string
	Body        []byte
}

func Export(d Draft) Artifact {
	return Artifact{
		Name:        ExportFilename(d.Title),
		ContentType: ExportContentType,
		Body:        []byte(Flatten(d)),
	}
}

func ExportFilename(title string) string {
	return whitespaceRun.ReplaceAllString(title, "_") + ExportSuffix
}

// Flatten renders d as the plain-text export document.
func Flatten(d Draft) string {
	var sb strings.Builder
	sb.WriteString("Title: " + d.Title + "\n")
	sb.WriteString("Scripture: " + d.Scripture + "\n")
	sb.WriteString("Date: " + d.Date + "\n\n")

	f := textFlattener{sb: &sb}
	for i, b := range d.Blocks {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		b.Accept(f)
	}

	return strings.TrimSpace(sb.String())
}

type textFlattener struct {
	sb *strings.Builder
}

func (f textFlattener) VisitNote(b Block)  { f.line(KindNote, b.Content) }
func (f textFlattener) VisitVerse(b Block) { f.line(KindVerse, b.Content) }
func (f textFlattener) VisitImage(b Block) { f.line(KindImage, b.Content) }

func (f textFlattener) line(k Kind, content string) {
	f.sb.WriteString(k.Label() + ": " + content)
}
