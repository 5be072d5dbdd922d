package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/redjonzaci/union-bank-statement-extractor/internal/converter"
	"github.com/redjonzaci/union-bank-statement-extractor/internal/logging"
	"github.com/redjonzaci/union-bank-statement-extractor/internal/writer"
)

type fileResult struct {
	input   string
	count   int
	pages   int
	outputs []string
	err     error
}

func newConvertCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <input.pdf> [input2.pdf ...]",
		Short: "Convert statement PDFs to CSV, text or XLSX",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConvert(cmd, args)
		},
	}
	cmd.Flags().StringSlice("format", []string{"csv", "txt"}, "output formats: csv, txt, xlsx")
	cmd.Flags().String("output-dir", "", "write outputs here instead of next to each input")
	cmd.Flags().Int("workers", 4, "number of files converted in parallel")
	cmd.Flags().Bool("resync", false, "stop a card-payment block at an unexpected date line")
	return cmd
}

func (a *app) runConvert(cmd *cobra.Command, inputs []string) error {
	formats, err := a.cfg.OutputFormats()
	if err != nil {
		return err
	}
	outDir := a.cfg.Convert.OutputDir
	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Each input is converted once, so there is nothing to memoize.
	conv, err := a.newConverter(0)
	if err != nil {
		return err
	}

	results := make([]fileResult, len(inputs))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(a.cfg.Convert.Workers)
	for i, input := range inputs {
		i, input := i, input
		g.Go(func() error {
			results[i] = a.convertOne(ctx, conv, input, formats, outDir)
			// one bad file must not stop the others
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			fmt.Fprintf(out, "%s: FAILED: %v\n", r.input, r.err)
			continue
		}
		fmt.Fprintf(out, "%s: %d transaction(s) from %d page(s) -> %s\n",
			r.input, r.count, r.pages, strings.Join(r.outputs, ", "))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed", failed, len(inputs))
	}
	return nil
}

func (a *app) convertOne(ctx context.Context, conv *converter.Converter, input string, formats []writer.Format, outDir string) fileResult {
	res := fileResult{input: input}
	log := a.log.WithField(logging.FieldFile, input)

	if ext := strings.ToLower(filepath.Ext(input)); ext != ".pdf" {
		res.err = fmt.Errorf("expected .pdf file, got %q", ext)
		return res
	}

	doc, err := conv.ConvertFile(ctx, input)
	if err != nil {
		res.err = err
		return res
	}
	res.count, res.pages = len(doc.Transactions), doc.Pages

	for _, f := range formats {
		path := f.OutputPath(input, outDir)
		if err := writer.WriteToFile(path, f, doc); err != nil {
			res.err = fmt.Errorf("%s write failed: %w", f, err)
			return res
		}
		log.WithFields(logrus.Fields{
			logging.FieldOutput: path,
			logging.FieldCount:  res.count,
		}).Info("Wrote output")
		res.outputs = append(res.outputs, path)
	}
	return res
}
