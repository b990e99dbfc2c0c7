package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/debemdeboas/churchhelp/internal/config"
	"github.com/debemdeboas/churchhelp/internal/db"
	"github.com/debemdeboas/churchhelp/internal/sink"
)

func newListCmd() *cobra.Command {
	var (
		path  string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sermons stored by the SQLite sink",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			database, err := openDatabase(path)
			if err != nil {
				return printErr(cmd, err)
			}
			defer database.Close()

			subs, err := sink.NewSQLiteSink(database).Recent(cmd.Context(), limit)
			if err != nil {
				return printErr(cmd, err)
			}

			out := cmd.OutOrStdout()
			if len(subs) == 0 {
				fmt.Fprintln(out, mutedStyle.Render("No sermons submitted yet."))
				return nil
			}

			for _, s := range subs {
				fmt.Fprintln(out, headStyle.Render(s.Draft.Title))
				fmt.Fprintf(out, "  %s %s\n", labelStyle.Render("Scripture:"), s.Draft.Scripture)
				fmt.Fprintf(out, "  %s %s\n", labelStyle.Render("Date:"), s.Draft.Date)
				fmt.Fprintf(out, "  %s %d\n", labelStyle.Render("Blocks:"), len(s.Draft.Blocks))
				fmt.Fprintln(out, "  "+mutedStyle.Render(s.ExportName+"  "+s.SubmittedAt.Format("2006-01-02 15:04")))
				fmt.Fprintln(out, "  "+mutedStyle.Render(s.ID))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "db", config.DefaultSQLitePath, "SQLite database written by the sqlite sink")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of sermons to show")
	return cmd
}

// openDatabase opens an existing sink database. A missing file is an error
// rather than a fresh empty database.
func openDatabase(path string) (*db.SQLite, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("no sermon database at %s", path)
	}
	database := db.NewSQLite(path)
	if err := database.InitDB(); err != nil {
		return nil, err
	}
	return database, nil
}
