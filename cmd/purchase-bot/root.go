package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/garyjia/purchase-bot/internal/config"
	"github.com/garyjia/purchase-bot/pkg/utils"
)

type rootOptions struct {
	configPath string
	debug      bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "purchase-bot",
		Short:        "Lark bot that tracks purchase requests and their approval",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "configs/config.yaml", "path to the YAML config file; empty uses defaults and environment only")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	serve := newServeCmd(opts)
	cmd.AddCommand(serve, newPendingCmd(opts))
	// running without a subcommand serves
	cmd.RunE = serve.RunE
	return cmd
}

// load reads the configuration and builds the logger
func (o *rootOptions) load() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	level := cfg.Logger.Level
	if o.debug {
		level = "debug"
	}
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logger, nil
}
