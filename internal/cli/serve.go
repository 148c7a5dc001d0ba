package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/issuetracker/internal/feedback"
	"github.com/idilsaglam/issuetracker/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr    string
		origins []string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the backend: recommendations, print documents, feedback, metrics",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = a.cfg.ServerAddr
			}
			db, err := feedback.Open(a.cfg.FeedbackDB)
			if err != nil {
				return fmt.Errorf("open feedback db: %w", err)
			}
			defer db.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := server.New(server.Options{
				Feedback:     feedback.NewRepository(db),
				Registry:     a.registry,
				Logger:       a.logger,
				AllowOrigins: origins,
			})
			return srv.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from server.addr)")
	cmd.Flags().StringSliceVar(&origins, "origin", nil, "allowed CORS origins (default any)")
	return cmd
}
