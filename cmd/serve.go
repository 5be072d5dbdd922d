package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/redjonzaci/union-bank-statement-extractor/internal/api"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the statement upload API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conv, err := a.newConverter(a.cfg.Server.CacheEntries)
			if err != nil {
				return err
			}
			h := &api.Handler{
				Converter:      conv,
				Log:            a.log,
				Version:        Version,
				MaxUploadBytes: int64(a.cfg.Server.MaxUploadMB) << 20,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return h.Listen(ctx, a.cfg.Addr())
		},
	}
	cmd.Flags().String("host", "0.0.0.0", "listen host")
	cmd.Flags().Int("port", 8080, "listen port")
	return cmd
}
