// Package sink delivers submitted sermons to their configured destinations.
package sink

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/churchhelp/internal/config"
	"github.com/debemdeboas/churchhelp/internal/db"
	"github.com/debemdeboas/churchhelp/internal/sermon"
	"github.com/debemdeboas/churchhelp/internal/util"
)

// Sink receives a validated snapshot of a draft.
type Sink interface {
	Submit(ctx context.Context, d sermon.Draft) error
}

// Func adapts a plain function to a Sink.
type Func func(ctx context.Context, d sermon.Draft) error

func (f Func) Submit(ctx context.Context, d sermon.Draft) error {
	return f(ctx, d)
}

var ErrNoSinks = errors.New("no sinks configured")

var sinkLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	sinkLogger = l
}

var now = time.Now

var newID = func() string { return uuid.New().String() }

const stampLayout = "20060102T150405Z"

// Submission is the record every sink writes for one submitted draft.
type Submission struct {
	ID          string       `toml:"id"`
	SubmittedAt time.Time    `toml:"submitted_at"`
	ExportName  string       `toml:"export_name"`
	ContentHash string       `toml:"content_hash"`
	Draft       sermon.Draft `toml:"draft"`
}

func newSubmission(d sermon.Draft) (Submission, sermon.Artifact) {
	artifact := sermon.Export(d)
	return Submission{
		ID:          newID(),
		SubmittedAt: now().UTC(),
		ExportName:  artifact.Name,
		ContentHash: util.ContentHash(artifact.Body),
		Draft:       sermon.Clone(d),
	}, artifact
}

// objectName names the file or object a submission is stored under. The
// timestamp keeps listings in order; the id keeps two submissions of one title
// within the same second apart.
func objectName(sub Submission) string {
	return sub.SubmittedAt.Format(stampLayout) + "-" + sub.ID + "-" + sanitizeName(sub.ExportName)
}

// New builds the sinks named in cfg.Types. More than one sink is wrapped in a Fanout.
// The returned closer releases any database the sinks opened.
func New(ctx context.Context, cfg config.SinkConfig) (Sink, func() error, error) {
	var sinks []Sink
	var closers []func() error

	closeAll := func() error {
		var errs []error
		for _, c := range closers {
			errs = append(errs, c())
		}
		return errors.Join(errs...)
	}

	for _, t := range cfg.Types {
		switch t {
		case config.SinkLog:
			sinks = append(sinks, NewLogSink(sinkLogger))
		case config.SinkSQLite:
			database := db.NewSQLite(cfg.SQLite.Path)
			if err := database.InitDB(); err != nil {
				closeAll()
				return nil, nil, fmt.Errorf("sqlite sink: %w", err)
			}
			closers = append(closers, database.Close)
			sinks = append(sinks, NewSQLiteSink(database))
		case config.SinkFS:
			fsSink, err := NewFSSink(cfg.FS.Dir)
			if err != nil {
				closeAll()
				return nil, nil, fmt.Errorf("fs sink: %w", err)
			}
			sinks = append(sinks, fsSink)
		case config.SinkS3:
			s3Sink, err := NewS3Sink(ctx, cfg.S3,
				os.Getenv(config.EnvS3AccessKeyID), os.Getenv(config.EnvS3SecretAccessKey))
			if err != nil {
				closeAll()
				return nil, nil, fmt.Errorf("s3 sink: %w", err)
			}
			sinks = append(sinks, s3Sink)
		default:
			closeAll()
			return nil, nil, fmt.Errorf("unknown sink type %q", t)
		}
		sinkLogger.Info().Str("sink", t).Msg("Submission sink ready")
	}

	switch len(sinks) {
	case 0:
		return nil, nil, ErrNoSinks
	case 1:
		return sinks[0], closeAll, nil
	}
	return NewFanout(sinks...), closeAll, nil
}
