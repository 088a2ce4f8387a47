package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/turbolytics/arquivo/internal/server"
)

func newServeCommand(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serves the canonical arquivos API in front of the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, l, err := a.setup("serve")
			if err != nil {
				return err
			}
			defer l.Sync()

			api, err := newClient(c, l)
			if err != nil {
				return err
			}

			if addr == "" {
				addr = c.Server.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s := server.New(api,
				server.WithLogger(l),
				server.WithPageSize(c.API.PageSize),
			)

			l.Info("using backend", zap.String("api_url", c.API.BaseURL))
			return s.Start(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to server.addr)")
	return cmd
}
