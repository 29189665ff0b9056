package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newVariantsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "variants",
		Short: "List the configured dataset variants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.service()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "Name\tTitle\tMode\tFacets\tSort keys\n")
			fmt.Fprintf(w, "----\t-----\t----\t------\t---------\n")
			for _, v := range svc.Variants() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					v.Name, v.Title, v.Mode, strings.Join(v.Facets, ","), strings.Join(v.SortKeys, ","))
			}
			return w.Flush()
		},
	}
}
