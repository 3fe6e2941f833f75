package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tradersecho/tradersecho/database"
	"github.com/tradersecho/tradersecho/logger"
	"github.com/tradersecho/tradersecho/rollup"
)

var (
	rollupDays   int
	rollupDate   string
	rollupFrom   string
	rollupTo     string
	rollupSource string
)

var rollupCMD = &cobra.Command{
	Use:   "rollup",
	Short: "Aggregate daily rollups across a date range",
	Long:  `Aggregate event-store rows into daily per-ticker rollups. Exactly one of --days, --date or --from/--to selects the range; --source restricts the rollup to a single adapter.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := resolveRange()
		if err != nil {
			return err
		}

		if err := database.InitDB(cfg.DB); err != nil {
			return err
		}

		engine, err := rollup.NewEngine(database.DB, cfg.Baseline.DefaultMean, cfg.Baseline.DefaultStd)
		if err != nil {
			return err
		}

		written, err := engine.RollupRange(r, rollupSource)
		if err != nil {
			return err
		}
		logger.Infof("Rollup complete: %d rows written for %s..%s",
			written, r.From.Format("2006-01-02"), r.To.Format("2006-01-02"))
		return nil
	},
}

func resolveRange() (rollup.Range, error) {
	selected := 0
	if rollupDays > 0 {
		selected++
	}
	if rollupDate != "" {
		selected++
	}
	if rollupFrom != "" || rollupTo != "" {
		selected++
	}
	if selected != 1 {
		return rollup.Range{}, fmt.Errorf("exactly one of --days, --date or --from/--to is required")
	}

	switch {
	case rollupDays > 0:
		return rollup.LastDays(rollupDays), nil
	case rollupDate != "":
		return rollup.SingleDay(rollupDate)
	default:
		if rollupFrom == "" || rollupTo == "" {
			return rollup.Range{}, fmt.Errorf("--from requires --to as well")
		}
		return rollup.Between(rollupFrom, rollupTo)
	}
}

func init() {
	rollupCMD.Flags().IntVar(&rollupDays, "days", 0, "recompute the last N days including today")
	rollupCMD.Flags().StringVar(&rollupDate, "date", "", "recompute a single YYYY-MM-DD date")
	rollupCMD.Flags().StringVar(&rollupFrom, "from", "", "start date YYYY-MM-DD (inclusive)")
	rollupCMD.Flags().StringVar(&rollupTo, "to", "", "end date YYYY-MM-DD (inclusive)")
	rollupCMD.Flags().StringVar(&rollupSource, "source", "", "optional source filter (e.g. stocktwits)")
	rootCMD.AddCommand(rollupCMD)
}
