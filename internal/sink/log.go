package sink

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/churchhelp/internal/sermon"
)

// LogSink records each submission as a structured log line.
type LogSink struct {
	logger zerolog.Logger
}

func NewLogSink(l zerolog.Logger) *LogSink {
	return &LogSink{logger: l}
}

func (s *LogSink) Submit(_ context.Context, d sermon.Draft) error {
	sub, artifact := newSubmission(d)

	blocks := zerolog.Arr()
	for _, b := range d.Blocks {
		blocks.Dict(zerolog.Dict().
			Stringer("id", b.ID).
			Str("kind", b.Kind.String()).
			Str("content", b.Content))
	}

	s.logger.Info().
		Str("submission_id", sub.ID).
		Str("title", d.Title).
		Str("scripture", d.Scripture).
		Str("date", d.Date).
		Array("blocks", blocks).
		Str("export_name", artifact.Name).
		Str("content_hash", sub.ContentHash).
		Msg("Sermon saved")
	return nil
}
