package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mind-engage/mathviz/internal/annotate"
	"github.com/mind-engage/mathviz/internal/config"
	"github.com/mind-engage/mathviz/internal/db"
	"github.com/mind-engage/mathviz/internal/export"
	"github.com/mind-engage/mathviz/internal/ledger"
	"github.com/mind-engage/mathviz/internal/storage"
)

func newAnnotateCmd(opts *options, cfg config.Config) *cobra.Command {
	var (
		form annotate.Form
		out  string
		save bool
	)
	cmd := &cobra.Command{
		Use:   "annotate <variant> <record-id>",
		Short: "Assemble an annotation document for one record",
		Long: "Assemble an annotation document for one record and print it, write it to\n" +
			"--out (a file, or a directory that receives the default file name), or\n" +
			"store it in the export store with --save.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.service()
			if err != nil {
				return err
			}
			if form.Annotator == "" {
				form.Annotator = os.Getenv("USER")
			}
			doc, filename, err := svc.AssembleAnnotation(args[0], args[1], form)
			if err != nil {
				return err
			}

			if save {
				e, err := saveExport(cmd.Context(), cfg, args[0], filename, doc)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %s (export %s)\n", heading("stored"), e.BlobKey, e.ID)
			}

			var buf bytes.Buffer
			if err := annotate.Encode(&buf, doc); err != nil {
				return err
			}
			if out == "" {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			dst := out
			if !strings.HasSuffix(strings.ToLower(out), ".json") {
				dst = filepath.Join(out, filename)
			}
			if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(dst, buf.Bytes(), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", heading("wrote"), dst)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringArrayVar(&form.Hints, "hint", nil, "hint text, repeatable; blank hints are dropped")
	f.StringVarP(&form.Difficulty, "difficulty", "d", "", "difficulty rating on the variant's scale")
	f.StringVar(&form.DifficultyReason, "reason", "", "why the rating was chosen")
	f.StringVar(&form.Annotator, "annotator", "", "annotator name (default: $USER)")
	f.StringVar(&form.Date, "date", "", "annotation date YYYY-MM-DD (default: today)")
	f.StringVarP(&out, "out", "o", "", "output file or directory (default: stdout)")
	f.BoolVar(&save, "save", false, "store in BLOB_BASE_PATH and record in the export ledger")
	return cmd
}

func saveExport(ctx context.Context, cfg config.Config, variant, filename string, doc annotate.Document) (ledger.Export, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		return ledger.Export{}, fmt.Errorf("open ledger: %w", err)
	}
	defer dbh.Close()
	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		return ledger.Export{}, err
	}
	return export.NewSink(bs, ledger.NewRepo(dbh)).Save(ctx, variant, filename, os.Getenv("USER"), doc)
}
