package sermon

import "fmt"

// Kind is the closed set of block variants. Renderers never switch on it
// directly; they implement BlockVisitor and let Block.Accept dispatch.
type Kind uint8

const (
	KindNote Kind = iota + 1
	KindVerse
	KindImage
)

var Kinds = []Kind{KindNote, KindVerse, KindImage}

func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown block kind %q", s)
}

func (k Kind) String() string {
	switch k {
	case KindNote:
		return "note"
	case KindVerse:
		return "verse"
	case KindImage:
		return "image"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Label is the capitalised name used in the text export.
func (k Kind) Label() string {
	switch k {
	case KindNote:
		return "Note"
	case KindVerse:
		return "Verse"
	case KindImage:
		return "Image"
	}
	return k.String()
}

// Multiline reports whether the editor offers a text area for the kind. Image
// references are a single URL or path.
func (k Kind) Multiline() bool {
	return k != KindImage
}

// Placeholder is the hint shown in an empty editor field.
func (k Kind) Placeholder() string {
	switch k {
	case KindNote:
		return "Notes"
	case KindVerse:
		return "Verse text"
	case KindImage:
		return "Image URL or path"
	}
	return ""
}

func (k Kind) MarshalText() ([]byte, error) {
	switch k {
	case KindNote, KindVerse, KindImage:
		return []byte(k.String()), nil
	}
	return nil, fmt.Errorf("cannot marshal %s", k)
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// BlockVisitor has one method per Kind. Adding a kind adds a method here,
// which breaks every renderer until it handles the new variant.
type BlockVisitor interface {
	VisitNote(b Block)
	VisitVerse(b Block)
	VisitImage(b Block)
}

func (b Block) Accept(v BlockVisitor) {
	switch b.Kind {
	case KindNote:
		v.VisitNote(b)
	case KindVerse:
		v.VisitVerse(b)
	case KindImage:
		v.VisitImage(b)
	}
}
