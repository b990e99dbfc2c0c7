package editor

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrDraftNotFound = errors.New("draft not found")

type Repository interface {
	CreateEditor() (*Editor, error)
	GetEditor(id DraftID) (*Editor, error)
	DeleteEditor(id DraftID) error
	// Sweep drops editors untouched for longer than maxIdle and returns how many went.
	Sweep(maxIdle time.Duration) int
}

type MemoryRepository struct {
	editors sync.Map

	previewOpen bool
	onChange    func(DraftID)
	clock       func() time.Time
}

// NewMemoryRepository keeps editors in process memory. New editors inherit
// previewOpen and the onChange hook.
func NewMemoryRepository(previewOpen bool, onChange func(DraftID)) *MemoryRepository {
	return &MemoryRepository{
		previewOpen: previewOpen,
		onChange:    onChange,
		clock:       time.Now,
	}
}

func (m *MemoryRepository) CreateEditor() (*Editor, error) {
	id := DraftID(uuid.New().String())
	e := NewEditor(id, m.clock(), m.previewOpen)
	e.clock = m.clock
	e.onChange = m.onChange
	m.editors.Store(id, e)
	return e, nil
}

func (m *MemoryRepository) GetEditor(id DraftID) (*Editor, error) {
	if e, ok := m.editors.Load(id); ok {
		editor := e.(*Editor)
		editor.touch()
		return editor, nil
	}
	return nil, ErrDraftNotFound
}

func (m *MemoryRepository) DeleteEditor(id DraftID) error {
	m.editors.Delete(id)
	return nil
}

func (m *MemoryRepository) Sweep(maxIdle time.Duration) int {
	if maxIdle <= 0 {
		return 0
	}

	now := m.clock()
	removed := 0
	m.editors.Range(func(key, value any) bool {
		if value.(*Editor).idleSince(now) > maxIdle {
			m.editors.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

func (m *MemoryRepository) Len() int {
	n := 0
	m.editors.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
