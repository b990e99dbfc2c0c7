// Package sermon holds the in-memory sermon draft and the pure transforms that edit it.
package sermon

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"
)

// DateLayout is the calendar date format used for drafts and the HTML date input.
const DateLayout = "2006-01-02"

type BlockID uint64

func (id BlockID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// FormName is the form field carrying the block's content. Every block field
// lives in one form, so the name must differ per block.
func (id BlockID) FormName() string {
	return "content-" + id.String()
}

func ParseBlockID(s string) (BlockID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid block id %q", s)
	}
	return BlockID(n), nil
}

type Block struct {
	ID      BlockID `yaml:"id" toml:"id"`
	Kind    Kind    `yaml:"kind" toml:"kind"`
	Content string  `yaml:"content" toml:"content"`
}

// Draft is a sermon being authored. Transforms return a new value and never
// share the Blocks backing array with their input.
type Draft struct {
	Title     string  `yaml:"title" toml:"title"`
	Scripture string  `yaml:"scripture" toml:"scripture"`
	Date      string  `yaml:"date" toml:"date"`
	Blocks    []Block `yaml:"blocks" toml:"blocks"`

	// Highest id handed out by AddBlock, so removed ids are never reused.
	lastID BlockID
}

func NewDraft(now time.Time) Draft {
	return Draft{
		Date:   now.Format(DateLayout),
		Blocks: []Block{},
	}
}

type Field string

const (
	FieldTitle     Field = "title"
	FieldScripture Field = "scripture"
	FieldDate      Field = "date"
)

func ParseField(name string) (Field, error) {
	switch f := Field(name); f {
	case FieldTitle, FieldScripture, FieldDate:
		return f, nil
	}
	return "", fmt.Errorf("unknown field %q", name)
}

// SetField replaces one header field. No validation happens here.
func SetField(d Draft, field Field, value string) Draft {
	switch field {
	case FieldTitle:
		d.Title = value
	case FieldScripture:
		d.Scripture = value
	case FieldDate:
		d.Date = value
	default:
		return d
	}
	d.Blocks = slices.Clone(d.Blocks)
	return d
}

// AddBlock appends an empty block of the given kind and returns its id.
func AddBlock(d Draft, kind Kind) (Draft, BlockID) {
	next := d.lastID
	for _, b := range d.Blocks {
		if b.ID > next {
			next = b.ID
		}
	}
	next++

	blocks := make([]Block, len(d.Blocks), len(d.Blocks)+1)
	copy(blocks, d.Blocks)
	d.Blocks = append(blocks, Block{ID: next, Kind: kind})
	d.lastID = next
	return d, next
}

// UpdateBlockContent replaces the content of block id. Unknown ids are ignored.
func UpdateBlockContent(d Draft, id BlockID, content string) Draft {
	i := indexOf(d, id)
	if i < 0 {
		return d
	}
	d.Blocks = slices.Clone(d.Blocks)
	d.Blocks[i].Content = content
	return d
}

// RemoveBlock drops block id, keeping the order of the rest. Unknown ids are ignored.
func RemoveBlock(d Draft, id BlockID) Draft {
	i := indexOf(d, id)
	if i < 0 {
		return d
	}
	d.Blocks = slices.Delete(slices.Clone(d.Blocks), i, i+1)
	return d
}

func HasBlock(d Draft, id BlockID) bool {
	return indexOf(d, id) >= 0
}

// Clone returns a copy of d that shares no memory with it.
func Clone(d Draft) Draft {
	d.Blocks = slices.Clone(d.Blocks)
	if d.Blocks == nil {
		d.Blocks = []Block{}
	}
	return d
}

func indexOf(d Draft, id BlockID) int {
	return slices.IndexFunc(d.Blocks, func(b Block) bool { return b.ID == id })
}

var ErrMissingField = errors.New("missing required field")

// Validate is the submission gate: title and scripture must be non-empty.
func Validate(d Draft) error {
	var errs []error
	if d.Title == "" {
		errs = append(errs, fmt.Errorf("%w: %s", ErrMissingField, FieldTitle))
	}
	if d.Scripture == "" {
		errs = append(errs, fmt.Errorf("%w: %s", ErrMissingField, FieldScripture))
	}
	return errors.Join(errs...)
}
