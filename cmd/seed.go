package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/tradersecho/tradersecho/database"
	"github.com/tradersecho/tradersecho/ingest"
	"github.com/tradersecho/tradersecho/logger"
)

var (
	seedDays    int
	seedTickers string
)

var seedCMD = &cobra.Command{
	Use:   "seed",
	Short: "Backfill synthetic mention data",
	Long:  `Generate synthetic mentions over the trailing N days and write them through the event store. Useful for demos and local development.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := database.InitDB(cfg.DB); err != nil {
			return err
		}

		tickers := cfg.Adapters.Tickers
		if seedTickers != "" {
			tickers = strings.Split(strings.ToUpper(seedTickers), ",")
		}

		simulator := ingest.NewSimulator("synthetic")
		mentions := simulator.GenerateRange(seedDays, tickers)

		inserted, skipped, err := ingest.NewRecorder(database.DB).RecordAll(mentions)
		if err != nil {
			return err
		}
		logger.Infof("Seeded %d mentions over %d days (%d duplicates skipped)", inserted, seedDays, skipped)
		return nil
	},
}

func init() {
	seedCMD.Flags().IntVar(&seedDays, "days", 7, "number of trailing days to backfill")
	seedCMD.Flags().StringVar(&seedTickers, "tickers", "", "comma-separated tickers (default from config)")
	rootCMD.AddCommand(seedCMD)
}
