package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/debemdeboas/churchhelp/internal/sermon"
)

func newFilenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "filename <title>",
		Short: "Print the export file name for a sermon title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), sermon.ExportFilename(args[0]))
			return nil
		},
	}
}
