// Command sermon works with sermon drafts outside the web editor: it flattens
// YAML drafts into the text export, prints export file names, and lists and
// prints submissions stored by the SQLite sink.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var version = "dev"

func buildVersion() string {
	if version != "dev" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return version
}

var (
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	headStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func main() {
	if err := fang.Execute(context.Background(), newRootCmd(), fang.WithVersion(buildVersion())); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sermon",
		Short: "Work with ChurchHelp sermon drafts from the terminal",
		Long: `Work with ChurchHelp sermon drafts from the terminal.

Examples:
  sermon flatten draft.yaml            # Print the text export of a YAML draft
  sermon flatten draft.yaml --write    # Save it as <Title>_sermon.txt
  sermon filename "Hope  & Grace"      # Print Hope_&_Grace_sermon.txt
  sermon list --db ./sermons.db        # Show recent submissions
  sermon show <id> --db ./sermons.db   # Print a submission's stored export`,
		Version:       buildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newFlattenCmd(), newFilenameCmd(), newListCmd(), newShowCmd())
	return cmd
}

func printErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err)
	return err
}
