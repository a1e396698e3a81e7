package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fpang/portrait-retouch/internal/portrait"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the fix templates usable with --fix issue:templateID",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printTemplates(cmd.OutOrStdout(), portrait.DefaultCatalogue())
	},
}

func printTemplates(w io.Writer, cat *portrait.Catalogue) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ISSUE\tTEMPLATE\tDEFAULT\tDESCRIPTION")
	for _, t := range cat.All() {
		def := ""
		if t.IsDefault {
			def = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.Issue, t.ID, def, t.Description)
	}
	return tw.Flush()
}
