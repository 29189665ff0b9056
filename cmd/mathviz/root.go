package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mind-engage/mathviz/internal/browse"
	"github.com/mind-engage/mathviz/internal/config"
	"github.com/mind-engage/mathviz/internal/logging"
	"github.com/mind-engage/mathviz/internal/variants"
)

// version is set at build time via -ldflags.
var version = "dev"

type options struct {
	dataRoot     string
	variantsFile string
	logLevel     string
}

func newRootCmd() *cobra.Command {
	cfg := config.FromEnv()
	opts := &options{}

	root := &cobra.Command{
		Use:   "mathviz",
		Short: "Browse, filter and annotate math problem datasets",
		Long:  "mathviz loads MATH and GAOKAO problem collections, narrows them by facets\nand search, and writes difficulty annotations as JSON documents.",
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Init(logging.ParseLevel(opts.logLevel), "text", cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&opts.dataRoot, "data-root", cfg.DataRoot, "directory the variant paths are relative to")
	root.PersistentFlags().StringVar(&opts.variantsFile, "variants", cfg.VariantsFile, "variants YAML file (default: built-in)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "debug|info|warn|error")

	root.AddCommand(
		newVariantsCmd(opts),
		newFacetsCmd(opts),
		newListCmd(opts),
		newShowCmd(opts),
		newAnnotateCmd(opts, cfg),
	)
	root.Version = version
	return root
}

func (o *options) service() (*browse.Service, error) {
	reg, err := variants.Load(o.variantsFile)
	if err != nil {
		return nil, err
	}
	return browse.New(reg, o.dataRoot), nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
