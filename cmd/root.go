// Package cmd implements the ubextract command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/redjonzaci/union-bank-statement-extractor/internal/cache"
	"github.com/redjonzaci/union-bank-statement-extractor/internal/config"
	"github.com/redjonzaci/union-bank-statement-extractor/internal/converter"
	"github.com/redjonzaci/union-bank-statement-extractor/internal/extractor"
	"github.com/redjonzaci/union-bank-statement-extractor/internal/logging"
	"github.com/redjonzaci/union-bank-statement-extractor/internal/parser"
)

// app is the state shared by the subcommands once flags are parsed.
type app struct {
	cfgFile string
	cfg     *config.Config
	log     *logrus.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "ubextract",
		Short: "Union Bank statement PDF to CSV converter",
		Long: `Converts Union Bank account statement PDFs into structured transaction
tables (CSV, XLSX) and the cleaned statement text.

Examples:
  # Convert a statement next to the PDF
  ubextract convert statement.pdf

  # Convert several statements into one directory, as CSV and Excel
  ubextract convert --format csv,xlsx --output-dir out/ jan.pdf feb.pdf mar.pdf

  # Serve the upload API
  ubextract serve --port 8080`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ./config.yaml or $HOME/.ubextract/config.yaml)")
	root.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	root.PersistentFlags().String("log-format", "text", "log format: text or json")

	root.AddCommand(
		newConvertCmd(a),
		newServeCmd(a),
		newVersionCmd(),
		newConfigCmd(),
	)
	return root
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	bootstrap := logrus.New()
	bootstrap.SetOutput(cmd.ErrOrStderr())
	config.LoadEnv(bootstrap)

	cfg, err := config.Load(a.cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	log, err := logging.NewWithOutput(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	a.cfg, a.log = cfg, log
	return nil
}

// newConverter wires extraction, parsing and the result cache from config.
func (a *app) newConverter(cacheEntries int) (*converter.Converter, error) {
	ex := extractor.NewPDFExtractor(a.log)
	ex.CharWidth = a.cfg.Extractor.CharWidth
	ex.PdftotextFallback = a.cfg.Extractor.PdftotextFallback

	p := parser.New(
		parser.WithResync(a.cfg.Parser.Resync),
		parser.WithExtraHeaders(a.cfg.Parser.ExtraHeaders...),
		parser.WithLogger(a.log),
	)

	c, err := cache.New(cacheEntries, a.log)
	if err != nil {
		return nil, err
	}
	return converter.New(ex, p, c, a.log), nil
}
