package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mind-engage/mathviz/internal/browse"
)

func newFacetsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "facets <variant> [facet]",
		Short: "Show the distinct values of a variant's facets",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.service()
			if err != nil {
				return err
			}
			v, ds, err := svc.LoadDataset(args[0])
			if err != nil {
				return err
			}
			facets := v.Facets
			if len(args) == 2 {
				facets = []string{args[1]}
			}
			out := cmd.OutOrStdout()
			for _, f := range facets {
				vals := browse.ListFacetValues(ds.Records, f)
				shown := make([]string, len(vals))
				for i, val := range vals {
					shown[i] = fmt.Sprintf("%q", val)
				}
				fmt.Fprintf(out, "%s (%d): %s\n", label(f), len(vals), strings.Join(shown, ", "))
			}
			return nil
		},
	}
}
