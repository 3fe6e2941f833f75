package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tradersecho/tradersecho/api"
	"github.com/tradersecho/tradersecho/database"
	"github.com/tradersecho/tradersecho/logger"
)

var serverCMD = &cobra.Command{
	Use:   "server",
	Short: "Start the API server",
	Long:  `Start the HTTP API server serving auth, the free daily table, the pro snapshot and the realtime websocket push.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Infof("Initializing database...")
		if err := database.InitDB(cfg.DB); err != nil {
			return err
		}

		r := api.NewServer(database.DB, cfg).SetupRoutes()

		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		logger.Infof("Starting server on %s", addr)
		return r.Run(addr)
	},
}

func init() {
	rootCMD.AddCommand(serverCMD)
}
