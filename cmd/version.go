package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/redjonzaci/union-bank-statement-extractor/internal/parser"
)

// Version is set at build time with -ldflags "-X .../cmd.Version=...".
var Version = "1.0.0"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and exit",
		Args:  cobra.NoArgs,
		// no config needed
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ubextract v%s\n", Version)
			fmt.Fprintf(out, "Statement layout: %s\n", parser.BankName)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
		},
	}
}
