package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/tradersecho/tradersecho/baseline"
	"github.com/tradersecho/tradersecho/database"
	"github.com/tradersecho/tradersecho/ingest"
	"github.com/tradersecho/tradersecho/logger"
	"github.com/tradersecho/tradersecho/rollup"
)

// worker runs the collector, rollup and baseline jobs in one process on
// a cron schedule, for deployments without an external scheduler.
var workerCMD = &cobra.Command{
	Use:   "worker",
	Short: "Run collect, rollup and baseline jobs on a schedule",
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
		tracker := baseline.NewTracker(database.DB)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// Slow cycles must not overlap the next tick.
		c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

		every := func(d time.Duration) string { return fmt.Sprintf("@every %s", d) }

		if _, err := c.AddFunc(every(cfg.Collector.Interval), func() {
			collector.RunOnce(ctx)
		}); err != nil {
			return err
		}

		if _, err := c.AddFunc(every(cfg.Collector.RollupInterval), func() {
			// The engine is rebuilt per run so schema detection tracks
			// live migrations.
			engine, err := rollup.NewEngine(database.DB, cfg.Baseline.DefaultMean, cfg.Baseline.DefaultStd)
			if err != nil {
				logger.Errorf("worker: rollup init failed: %v", err)
				return
			}
			if _, err := engine.RollupRange(rollup.LastDays(1), ""); err != nil {
				logger.Errorf("worker: rollup failed: %v", err)
			}
		}); err != nil {
			return err
		}

		if _, err := c.AddFunc(cfg.Collector.BaselineAt, func() {
			if _, err := tracker.Recompute(cfg.Baseline.WindowDays); err != nil {
				logger.Errorf("worker: baseline recompute failed: %v", err)
			}
		}); err != nil {
			return err
		}

		logger.Infof("worker: scheduled collect=%s rollup=%s baselines=%q",
			cfg.Collector.Interval, cfg.Collector.RollupInterval, cfg.Collector.BaselineAt)
		c.Start()
		<-ctx.Done()
		<-c.Stop().Done()
		logger.Infof("worker: stopped")
		return nil
	},
}

func init() {
	rootCMD.AddCommand(workerCMD)
}
