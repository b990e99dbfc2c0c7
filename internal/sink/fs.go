package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/debemdeboas/churchhelp/internal/sermon"
)

// FSSink writes the export text and a TOML record of each submission into a directory.
type FSSink struct {
	dir string
}

func NewFSSink(dir string) (*FSSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FSSink{dir: dir}, nil
}

func (s *FSSink) Dir() string {
	return s.dir
}

func (s *FSSink) Submit(ctx context.Context, d sermon.Draft) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sub, artifact := newSubmission(d)
	base := objectName(sub)

	textPath := filepath.Join(s.dir, base)
	if err := os.WriteFile(textPath, artifact.Body, 0o644); err != nil {
		return fmt.Errorf("error writing export: %w", err)
	}

	recordPath := filepath.Join(s.dir, strings.TrimSuffix(base, ".txt")+".toml")
	f, err := os.Create(recordPath)
	if err != nil {
		return fmt.Errorf("error creating record: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(sub); err != nil {
		return fmt.Errorf("error encoding record: %w", err)
	}

	sinkLogger.Debug().Str("path", textPath).Str("submission_id", sub.ID).Msg("Sermon written")
	return f.Close()
}

// ReadRecord decodes a TOML record written by Submit.
func ReadRecord(path string) (Submission, error) {
	var sub Submission
	if _, err := toml.DecodeFile(path, &sub); err != nil {
		return Submission{}, err
	}
	return sub, nil
}

// sanitizeName keeps the export name inside the target directory.
func sanitizeName(name string) string {
	return strings.NewReplacer("/", "-", "\\", "-").Replace(name)
}
