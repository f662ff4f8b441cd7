package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/baxromumarov/jobfeeds/internal/scraper"
)

func newSourcesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the supported job boards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tBASE URL\tPER PAGE\tPAGINATION")
			for _, src := range scraper.Registry() {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", src.Name, src.BaseURL, src.PerPage, src.Pagination)
			}
			return w.Flush()
		},
	}
}
