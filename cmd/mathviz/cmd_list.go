package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mind-engage/mathviz/internal/browse"
	"github.com/mind-engage/mathviz/internal/filter"
)

func newListCmd(opts *options) *cobra.Command {
	var (
		filters []string
		search  string
		sortKey string
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "list <variant>",
		Short: "List records matching facet filters and a search term",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			facets, err := parseFilters(filters)
			if err != nil {
				return err
			}
			svc, err := opts.service()
			if err != nil {
				return err
			}
			v, ds, err := svc.LoadDataset(args[0])
			if err != nil {
				return err
			}
			view, err := svc.Query(args[0], browse.Query{
				Filter: filter.Spec{Facets: facets, Search: search},
				Sort:   sortKey,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "ID")
			for _, f := range v.Facets {
				fmt.Fprintf(w, "\t%s", f)
			}
			fmt.Fprintf(w, "\tProblem\n")
			for i, id := range view.Order {
				if limit > 0 && i >= limit {
					break
				}
				rec := ds.Records[id]
				fmt.Fprintf(w, "%s", id)
				for _, f := range v.Facets {
					val, _ := rec.Facet(f)
					fmt.Fprintf(w, "\t%s", orDash(truncate(val, 20)))
				}
				fmt.Fprintf(w, "\t%s\n", truncate(rec.ProblemText(), 60))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\nShowing %d of %d problems (%.1f%%), sorted by %s\n",
				view.Filtered, view.Total, view.Percentage, view.Sort)
			if n := len(ds.Warnings); n > 0 {
				fmt.Fprintln(out, warning(fmt.Sprintf("%d file(s) skipped while loading", n)))
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&filters, "filter", "f", nil, "facet=value, repeatable; values of one facet are ORed")
	cmd.Flags().StringVarP(&search, "search", "s", "", "case-insensitive substring of problem or solution")
	cmd.Flags().StringVar(&sortKey, "sort", "", "sort key (default: the variant's)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "print at most n rows (0: all)")
	return cmd
}
