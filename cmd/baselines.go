package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tradersecho/tradersecho/baseline"
	"github.com/tradersecho/tradersecho/database"
	"github.com/tradersecho/tradersecho/logger"
)

var baselineWindow int

var baselinesCMD = &cobra.Command{
	Use:   "baselines",
	Short: "Recompute rolling mention baselines",
	Long:  `Recompute the rolling mean/std of daily mention volume for every ticker observed in the trailing window. A full rebuild; safe to re-run at any time.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := database.InitDB(cfg.DB); err != nil {
			return err
		}

		window := baselineWindow
		if window == 0 {
			window = cfg.Baseline.WindowDays
		}

		updated, err := baseline.NewTracker(database.DB).Recompute(window)
		if err != nil {
			return err
		}
		logger.Infof("Baselines updated for %d tickers", updated)
		return nil
	},
}

func init() {
	baselinesCMD.Flags().IntVar(&baselineWindow, "window", 0, "lookback window in days (default from config)")
	rootCMD.AddCommand(baselinesCMD)
}
