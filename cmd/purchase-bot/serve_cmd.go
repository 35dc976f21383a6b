package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/garyjia/purchase-bot/internal/container"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Watch the purchase channel and answer approver commands",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger.Info("Starting purchase bot",
				zap.String("channel_id", cfg.Lark.ChannelID),
				zap.String("redis_addr", cfg.Redis.Addr),
				zap.Bool("http_enabled", cfg.Server.Enabled))

			c, err := container.NewContainer(cfg, opts.debug, logger)
			if err != nil {
				return err
			}
			if err := c.Start(ctx); err != nil {
				logger.Error("Failed to start container", zap.Error(err))
				c.Close()
				return err
			}
			defer c.Close()

			if err := c.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error("Purchase bot stopped with error", zap.Error(err))
				return err
			}

			logger.Info("Purchase bot stopped")
			return nil
		},
	}
}

