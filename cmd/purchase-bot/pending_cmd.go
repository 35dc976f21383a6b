package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/garyjia/purchase-bot/internal/application/service"
	"github.com/garyjia/purchase-bot/internal/container"
	"github.com/garyjia/purchase-bot/pkg/utils"
)

func newPendingCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "Print the unapproved purchase requests and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			store, err := container.ProvideRequestStore(cmd.Context(), &cfg.Redis, logger)
			if err != nil {
				return err
			}
			defer store.Store.Close()

			lifecycle := service.NewLifecycleService(store.Requests, nil, utils.NewKVLogger(logger))
			pending, err := lifecycle.Pending(cmd.Context())
			if err != nil {
				return err
			}

			if len(pending) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "There are no unapproved purchase requests.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), service.FormatPending(pending))
			return nil
		},
	}
}
