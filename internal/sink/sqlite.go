package sink

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/debemdeboas/churchhelp/internal/db"
	"github.com/debemdeboas/churchhelp/internal/sermon"
	"github.com/debemdeboas/churchhelp/internal/util/compression"
)

const insertSermon = `INSERT INTO sermons
    (id, title, scripture, sermon_date, block_count, snapshot, export, export_name, content_hash, submitted_at)
    VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const selectSermons = `SELECT id, snapshot, export_name, content_hash, submitted_at
    FROM sermons ORDER BY submitted_at DESC LIMIT ?`

// SQLiteSink stores the YAML snapshot and the flattened export of each
// submission, both zstd compressed.
type SQLiteSink struct {
	db         db.DB
	compressor compression.Compressor
}

func NewSQLiteSink(database db.DB) *SQLiteSink {
	return &SQLiteSink{
		db:         database,
		compressor: compression.ZstdCompressor{},
	}
}

func (s *SQLiteSink) Submit(ctx context.Context, d sermon.Draft) error {
	sub, artifact := newSubmission(d)

	snapshot, err := yaml.Marshal(sub.Draft)
	if err != nil {
		return fmt.Errorf("error encoding snapshot: %w", err)
	}

	compressedSnapshot, err := s.compressor.Compress(snapshot)
	if err != nil {
		return fmt.Errorf("error compressing snapshot: %w", err)
	}

	compressedExport, err := s.compressor.Compress(artifact.Body)
	if err != nil {
		return fmt.Errorf("error compressing export: %w", err)
	}

	res, err := s.db.ExecContext(ctx, insertSermon,
		sub.ID, d.Title, d.Scripture, d.Date, len(d.Blocks),
		compressedSnapshot, compressedExport, sub.ExportName, sub.ContentHash, sub.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("error saving sermon: %w", err)
	}

	sinkLogger.Debug().Str("submission_id", sub.ID).Interface("result", res).Msg("Sermon stored")
	return nil
}

// Recent returns up to limit stored submissions, newest first.
func (s *SQLiteSink) Recent(ctx context.Context, limit int) ([]Submission, error) {
	rows, err := s.db.QueryContext(ctx, selectSermons, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying sermons: %w", err)
	}
	defer rows.Close()

	var subs []Submission
	for rows.Next() {
		var sub Submission
		var compressed []byte

		if err := rows.Scan(&sub.ID, &compressed, &sub.ExportName, &sub.ContentHash, &sub.SubmittedAt); err != nil {
			return nil, fmt.Errorf("error scanning sermon: %w", err)
		}

		snapshot, err := s.compressor.Decompress(compressed)
		if err != nil {
			return nil, fmt.Errorf("error decompressing snapshot: %w", err)
		}
		if err := yaml.Unmarshal(snapshot, &sub.Draft); err != nil {
			return nil, fmt.Errorf("error decoding snapshot: %w", err)
		}

		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// ExportBody returns the stored flattened text of submission id.
func (s *SQLiteSink) ExportBody(ctx context.Context, id string) (string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT export FROM sermons WHERE id = ?`, id)
	if err != nil {
		return "", fmt.Errorf("error querying sermon: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("sermon not found: %s", id)
	}

	var compressed []byte
	if err := rows.Scan(&compressed); err != nil {
		return "", fmt.Errorf("error scanning sermon: %w", err)
	}

	body, err := s.compressor.Decompress(compressed)
	if err != nil {
		return "", fmt.Errorf("error decompressing export: %w", err)
	}
	return string(body), nil
}
