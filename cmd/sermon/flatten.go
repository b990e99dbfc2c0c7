package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/debemdeboas/churchhelp/internal/sermon"
)

var exportLabels = []string{"Title", "Scripture", "Date", "Note", "Verse", "Image"}

func newFlattenCmd() *cobra.Command {
	var (
		write  bool
		dir    string
		pretty bool
	)
	cmd := &cobra.Command{
		Use:   "flatten <draft.yaml>",
		Short: "Print the plain-text export of a YAML draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDraft(args[0], time.Now())
			if err != nil {
				return printErr(cmd, err)
			}

			artifact := sermon.Export(d)
			if write {
				path := filepath.Join(dir, artifact.Name)
				if err := os.WriteFile(path, artifact.Body, 0o644); err != nil {
					return printErr(cmd, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			}

			text := string(artifact.Body)
			if pretty {
				text = prettify(text)
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write the export file instead of printing it")
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory for --write")
	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "Highlight the export labels")
	return cmd
}

// loadDraft reads a YAML draft and rebuilds it through the draft transforms,
// so hand-written files get fresh, unique block ids.
func loadDraft(path string, now time.Time) (sermon.Draft, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return sermon.Draft{}, err
	}

	var doc sermon.Draft
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return sermon.Draft{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	d := sermon.NewDraft(now)
	d = sermon.SetField(d, sermon.FieldTitle, doc.Title)
	d = sermon.SetField(d, sermon.FieldScripture, doc.Scripture)
	if doc.Date != "" {
		d = sermon.SetField(d, sermon.FieldDate, doc.Date)
	}
	for _, b := range doc.Blocks {
		var id sermon.BlockID
		d, id = sermon.AddBlock(d, b.Kind)
		d = sermon.UpdateBlockContent(d, id, b.Content)
	}
	return d, nil
}

func prettify(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		for _, label := range exportLabels {
			if rest, ok := strings.CutPrefix(line, label+":"); ok {
				lines[i] = labelStyle.Render(label+":") + rest
				break
			}
		}
	}
	return strings.Join(lines, "\n")
}
