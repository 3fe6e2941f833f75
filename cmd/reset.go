package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tradersecho/tradersecho/database"
	"github.com/tradersecho/tradersecho/ingest"
	"github.com/tradersecho/tradersecho/logger"
)

var (
	resetFrom string
	resetTo   string
)

var resetCMD = &cobra.Command{
	Use:   "reset",
	Short: "Delete event rows in a date range",
	Long:  `Delete event-store rows with --from <= ts < --to (half-open). Backfill tooling only; rollups and baselines are left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := time.Parse("2006-01-02", resetFrom)
		if err != nil {
			return fmt.Errorf("invalid --from date: %w", err)
		}
		to, err := time.Parse("2006-01-02", resetTo)
		if err != nil {
			return fmt.Errorf("invalid --to date: %w", err)
		}
		if !to.After(from) {
			return fmt.Errorf("--to must be after --from")
		}

		if err := database.InitDB(cfg.DB); err != nil {
			return err
		}

		deleted, err := ingest.NewRecorder(database.DB).DeleteRange(from, to)
		if err != nil {
			return err
		}
		logger.Infof("Deleted %d event rows in [%s, %s)", deleted, resetFrom, resetTo)
		return nil
	},
}

func init() {
	resetCMD.Flags().StringVar(&resetFrom, "from", "", "start date YYYY-MM-DD (inclusive)")
	resetCMD.Flags().StringVar(&resetTo, "to", "", "end date YYYY-MM-DD (exclusive)")
	_ = resetCMD.MarkFlagRequired("from")
	_ = resetCMD.MarkFlagRequired("to")
	rootCMD.AddCommand(resetCMD)
}
