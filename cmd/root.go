package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tradersecho/tradersecho/config"
	"github.com/tradersecho/tradersecho/logger"
)

var cfg *config.Config

var rootCMD = &cobra.Command{
	Use:   "tradersecho",
	Short: "Social sentiment aggregation for tickers",
	Long: `Tradersecho collects ticker mentions from social sources, rolls them
up into daily per-ticker sentiment aggregates with interest and z-scores,
and serves them through a REST/websocket API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		return logger.Init(cfg.App.LogLevel, cfg.App.Env)
	},
}

func Execute() {
	defer func() { _ = logger.Sync() }()
	if err := rootCMD.Execute(); err != nil {
		os.Exit(1)
	}
}
