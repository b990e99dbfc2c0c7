package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/debemdeboas/churchhelp/internal/config"
	"github.com/debemdeboas/churchhelp/internal/sink"
)

func newShowCmd() *cobra.Command {
	var (
		path   string
		pretty bool
	)
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print the text export stored for a submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := openDatabase(path)
			if err != nil {
				return printErr(cmd, err)
			}
			defer database.Close()

			body, err := sink.NewSQLiteSink(database).ExportBody(cmd.Context(), args[0])
			if err != nil {
				return printErr(cmd, err)
			}

			if pretty {
				body = prettify(body)
			}
			fmt.Fprintln(cmd.OutOrStdout(), body)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "db", config.DefaultSQLitePath, "SQLite database written by the sqlite sink")
	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "Style labels in the output")
	return cmd
}
