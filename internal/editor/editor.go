// Package editor owns the live drafts behind each browser session and the
// HTTP handlers that change them.
package editor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/debemdeboas/churchhelp/internal/sermon"
	"github.com/debemdeboas/churchhelp/internal/sink"
)

type DraftID string

// Editor is the only place a draft changes. Every mutation goes through one of
// its methods under mu.
type Editor struct {
	id DraftID

	mu          sync.Mutex
	draft       sermon.Draft
	previewOpen bool
	lastSeen    time.Time

	onChange func(DraftID)
	clock    func() time.Time
}

func NewEditor(id DraftID, now time.Time, previewOpen bool) *Editor {
	return &Editor{
		id:          id,
		draft:       sermon.NewDraft(now),
		previewOpen: previewOpen,
		lastSeen:    now,
		clock:       time.Now,
	}
}

func (e *Editor) ID() DraftID {
	return e.id
}

// OnChange registers fn to run after every draft mutation. It runs outside the lock.
func (e *Editor) OnChange(fn func(DraftID)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onChange = fn
}

func (e *Editor) mutate(fn func(d sermon.Draft) sermon.Draft) {
	e.mu.Lock()
	e.draft = fn(e.draft)
	e.lastSeen = e.clock()
	notify := e.onChange
	e.mu.Unlock()

	if notify != nil {
		notify(e.id)
	}
}

func (e *Editor) SetField(field sermon.Field, value string) {
	e.mutate(func(d sermon.Draft) sermon.Draft {
		return sermon.SetField(d, field, value)
	})
}

func (e *Editor) AddBlock(kind sermon.Kind) sermon.BlockID {
	var id sermon.BlockID
	e.mutate(func(d sermon.Draft) sermon.Draft {
		d, id = sermon.AddBlock(d, kind)
		return d
	})
	return id
}

// UpdateBlock reports whether id named a block. An unknown id leaves the draft as it was.
func (e *Editor) UpdateBlock(id sermon.BlockID, content string) bool {
	found := false
	e.mutate(func(d sermon.Draft) sermon.Draft {
		found = sermon.HasBlock(d, id)
		return sermon.UpdateBlockContent(d, id, content)
	})
	return found
}

// RemoveBlock reports whether id named a block.
func (e *Editor) RemoveBlock(id sermon.BlockID) bool {
	found := false
	e.mutate(func(d sermon.Draft) sermon.Draft {
		found = sermon.HasBlock(d, id)
		return sermon.RemoveBlock(d, id)
	})
	return found
}

// Snapshot returns a copy of the draft that shares nothing with the editor.
func (e *Editor) Snapshot() sermon.Draft {
	e.mu.Lock()
	defer e.mu.Unlock()
	return sermon.Clone(e.draft)
}

// Submit validates the draft and hands a snapshot to s. A draft missing its
// title or scripture never reaches the sink.
func (e *Editor) Submit(ctx context.Context, s sink.Sink) error {
	d := e.Snapshot()
	if err := sermon.Validate(d); err != nil {
		return err
	}
	if err := s.Submit(ctx, d); err != nil {
		return fmt.Errorf("submitting %q: %w", d.Title, err)
	}
	return nil
}

func (e *Editor) Export() sermon.Artifact {
	return sermon.Export(e.Snapshot())
}

// TogglePreview flips preview visibility and returns the new state. The draft is untouched.
func (e *Editor) TogglePreview() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.previewOpen = !e.previewOpen
	return e.previewOpen
}

func (e *Editor) PreviewOpen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.previewOpen
}

func (e *Editor) touch() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastSeen = e.clock()
}

func (e *Editor) idleSince(now time.Time) time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return now.Sub(e.lastSeen)
}
