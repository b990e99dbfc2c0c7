package sink

import (
	"context"
	"errors"
	"fmt"

	"github.com/debemdeboas/churchhelp/internal/sermon"
)

// Fanout submits to every sink in order. One failing sink does not stop the rest.
type Fanout struct {
	sinks []Sink
}

func NewFanout(sinks ...Sink) *Fanout {
	return &Fanout{sinks: sinks}
}

func (f *Fanout) Submit(ctx context.Context, d sermon.Draft) error {
	var errs []error
	for i, s := range f.sinks {
		if err := s.Submit(ctx, d); err != nil {
			errs = append(errs, fmt.Errorf("sink %d (%T): %w", i, s, err))
		}
	}
	return errors.Join(errs...)
}
