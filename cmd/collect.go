package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tradersecho/tradersecho/database"
	"github.com/tradersecho/tradersecho/ingest"
	"github.com/tradersecho/tradersecho/logger"
)

var collectOnce bool

var collectCMD = &cobra.Command{
	Use:   "collect",
	Short: "Run the ingestion adapters",
	Long:  `Poll the configured adapters (stocktwits, reddit, simulator) and write mentions into the event store. Runs continuously unless --once is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := database.InitDB(cfg.DB); err != nil {
			return err
		}

		adapters, err := buildAdapters()
		if err != nil {
			return err
		}

		collector := ingest.NewCollector(
			ingest.NewRecorder(database.DB),
			adapters,
			cfg.Adapters.Tickers,
			cfg.Collector.Interval,
		)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if collectOnce {
			collector.RunOnce(ctx)
			return nil
		}
		collector.Run(ctx)
		return nil
	},
}

func buildAdapters() ([]ingest.Fetcher, error) {
	var adapters []ingest.Fetcher
	for _, name := range cfg.Adapters.Enabled {
		switch name {
		case "stocktwits":
			adapters = append(adapters, ingest.NewStockTwitsAdapter(cfg.Adapters.StockTwitsRatePerMin))
		case "reddit":
			adapters = append(adapters, ingest.NewRedditAdapter(cfg.Adapters.RedditUserAgent))
		case "simulator", "synthetic":
			adapters = append(adapters, ingest.NewSimulator("synthetic"))
		default:
			return nil, fmt.Errorf("unknown adapter %q", name)
		}
	}
	if len(adapters) == 0 {
		return nil, fmt.Errorf("no adapters enabled")
	}
	logger.Infof("Enabled adapters: %v", cfg.Adapters.Enabled)
	return adapters, nil
}

func init() {
	collectCMD.Flags().BoolVar(&collectOnce, "once", false, "run a single collection cycle and exit")
	rootCMD.AddCommand(collectCMD)
}
