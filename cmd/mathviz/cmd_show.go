package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/mind-engage/mathviz/internal/problem"
)

func newShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <variant> <record-id>",
		Short: "Print one record with its problem, solution and fields",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.service()
			if err != nil {
				return err
			}
			v, ds, rec, err := svc.Record(args[0], args[1])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  %s\n\n", heading(rec.ID().String()), rec.Family())
			for _, f := range v.Facets {
				val, _ := rec.Facet(f)
				fmt.Fprintf(out, "%s: %s\n", label(f), orDash(val))
			}
			fmt.Fprintf(out, "\n%s\n%s\n\n%s\n%s\n", heading("Problem"), rec.ProblemText(), heading("Solution"), rec.SolutionText())

			scale := v.ResolveScale(ds.Records)
			current, _ := rec.Facet(currentRatingFacet(v.Scale.FromFacet))
			fmt.Fprintf(out, "\n%s %s (suggested: %s)\n", label("Scale:"), scale.Name, orDash(scale.Initial(current)))

			if extra := extraFields(rec, v.Facets); len(extra) > 0 {
				fmt.Fprintf(out, "\n%s\n", heading("Other fields"))
				for _, k := range extra {
					val, _ := rec.Facet(k)
					fmt.Fprintf(out, "%s: %s\n", label(k), truncate(val, 80))
				}
			}
			return nil
		},
	}
}

func currentRatingFacet(fromFacet string) string {
	if fromFacet != "" {
		return fromFacet
	}
	return "difficulty"
}

var shownFields = []string{"problem", "solution", "question", "answer", "analysis"}

func extraFields(rec problem.Record, facets []string) []string {
	var out []string
	for k := range rec.Fields() {
		if slices.Contains(facets, k) || slices.Contains(shownFields, k) {
			continue
		}
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
